// Package format converts raw free-text payload fields (OS version, device
// model, operator name, country, locale) into canonical category values.
//
// The conversions are driven by ordered tables of substitution rules. Each
// rule pairs a compiled pattern with a pure replacement function of the match
// groups. Device and operator names from partners vary wildly in case and
// punctuation; the rules collapse the variants onto one canonical label so
// that records belonging to the same segment aggregate together.
package format

import (
	"regexp"
	"strings"
)

// Sentinel categories for fields that could not be classified.
const (
	Unknown = "Unknown"
	Other   = "Other"
)

// Substitution pairs a pattern with a replacement computed from the match
// groups. At most one occurrence is replaced per application.
type Substitution struct {
	re     *regexp.Regexp
	expand func(groups []string) string
}

func sub(pattern, repl string) Substitution {
	return Substitution{
		re:     regexp.MustCompile(pattern),
		expand: func([]string) string { return repl },
	}
}

func subg(pattern string, expand func(groups []string) string) Substitution {
	return Substitution{re: regexp.MustCompile(pattern), expand: expand}
}

// apply replaces the first match in val, leaving surrounding text intact.
func (s Substitution) apply(val string) (string, bool) {
	loc := s.re.FindStringSubmatchIndex(val)
	if loc == nil {
		return val, false
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		start, end := loc[2*i], loc[2*i+1]
		if start >= 0 {
			groups[i] = val[start:end]
		}
	}
	return val[:loc[0]] + s.expand(groups) + val[loc[1]:], true
}

// ApplyAll applies every substitution in order, each to the result of the
// previous one. A rule that does not match leaves the value unchanged.
func ApplyAll(val string, subs []Substitution) string {
	for _, s := range subs {
		val, _ = s.apply(val)
	}
	return val
}

// ApplyFirst applies at most one substitution: rules are tried in order and
// scanning stops at the first match.
func ApplyFirst(val string, subs []Substitution) string {
	for _, s := range subs {
		if out, ok := s.apply(val); ok {
			return out
		}
	}
	return val
}

func addSuffix(name, suffix string) string {
	if suffix != "" {
		return name + " " + suffix
	}
	return name
}

// DefaultValidOS matches the recognized OS version labels: 1.3, 1.3T, 1.4,
// 2.x or 3.x, optionally tagged as pre-release. The pattern is configuration;
// see config.Config.ValidOSPattern.
const DefaultValidOS = `^(1\.[34]|2\.[0-9]|3\.[0-9])(T|\s\(pre-release\))?$`

// CompileValidOS compiles a valid-OS pattern, falling back to DefaultValidOS
// when pattern is empty.
func CompileValidOS(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = DefaultValidOS
	}
	return regexp.Compile(pattern)
}

// standardChannels picks out the standard release channel embedded in custom
// channel strings.
var standardChannels = regexp.MustCompile(`release|beta|aurora|nightly|default`)

// localeRegion strips the region identifier from a locale code.
var localeRegion = regexp.MustCompile(`-.+$`)

// osRules reformat raw OS version strings. All rules apply in sequence: the
// prerelease suffix is rewritten first, then dotted versions are truncated to
// at most 3 significant components with trailing ".0" segments dropped, and
// vendor-prefixed Tarako build identifiers map to the fixed 1.3T label.
var osRules = []Substitution{
	sub(`(?i)[.-]prerelease$`, ` (pre-release)`),
	subg(`(?i)^(?P<num>[1-9]\.[0-9](\.[1-9]){0,2})(\.0){0,2}`, func(groups []string) string {
		return groups[1]
	}),
	sub(`(?i)^(ind|intex)_.+$`, `1.3T`),
}

// deviceRules map the many observed spellings of each device model onto one
// canonical label. First match wins; the patterns are mutually exclusive in
// practice. Unmatched names pass through unchanged and are filtered against
// the device whitelist afterwards.
var deviceRules = []Substitution{
	// One Touch Fire, with optional C/E suffix.
	subg(`(?i)^.*one\s*touch.*fire\s*(?P<suffix>[ce]?)(?:\s+\S*)?$`, func(groups []string) string {
		return addSuffix("One Touch Fire", strings.ToUpper(groups[1]))
	}),
	// ZTE Open 2/C.
	subg(`(?i)^.*open\s*(?P<suffix>[2c])(?:\s+\S*)?$`, func(groups []string) string {
		return "ZTE Open " + strings.ToUpper(groups[1])
	}),
	sub(`(?i)^.*open\s*$`, "ZTE Open"),
	sub(`(?i)^.*flame.*$`, "Flame"),
	sub(`(?i)^.*(keon|peak|revolution).*$`, "Geeksphone"),
	// Emulators and dev builds.
	sub(`(?i)^.*(android|aosp).*$`, "Emulator/Android"),
	// Tarako family.
	sub(`(?i)^.*clou.?d\s*fx.*$`, "Intex Cloud FX"),
	subg(`(?i)^.*spice(\s*|_)mi-?fx(?P<ver>[12]).*$`, func(groups []string) string {
		return "Spice MIFX" + groups[2]
	}),
	sub(`(?i)^ace\s*f100.*$`, "Ace F100"),
	// Fire C variant sold in Peru.
	sub(`(?i)^4019a$`, "One Touch Fire C"),
	sub(`(?i)^.*u105.*$`, "Zen U105"),
	sub(`(?i)^lgl25.*$`, "Fx0"),
	sub(`(?i)^.*pixi\s*3(\s+\(?|\()3\.5\)?.*$`, "Pixi 3 (3.5)"),
	sub(`(?i)^.*klif.*$`, "Orange Klif"),
	sub(`(?i)^ptv-.*$`, "Panasonic TV"),
	sub(`(?i)^.*xperia\s*z3\s*c(ompact)?(\W+.*)?$`, "Xperia Z3C"),
}
