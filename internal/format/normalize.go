package format

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dzeber/fxos-metrics/internal/lookup"
)

// foldText applies a unicode compatibility normalization so that visually
// equivalent partner strings (full-width letters, ligatures, odd spaces)
// match the same rules.
func foldText(s string) string {
	return norm.NFKC.String(s)
}

// FormatOS reformats a raw OS version string: prerelease suffix rewriting,
// version truncation, and Tarako build identifiers. All rules apply in
// sequence.
func FormatOS(val string) string {
	return ApplyAll(val, osRules)
}

// SummarizeOS classifies a formatted OS string against the valid-version
// pattern, mapping unrecognized values to Other. Canonical values pass
// through unchanged.
func SummarizeOS(val string, validOS *regexp.Regexp) string {
	if !validOS.MatchString(val) {
		return Other
	}
	return val
}

// OSVersion formats and classifies a raw OS version in one step, as the
// activation-counting job does. A nil value is a missing-field reject;
// malformed values classify as Other rather than rejecting, since malformed
// OS strings are common in the wild and discarding them would skew counts.
func OSVersion(val *string, validOS *regexp.Regexp) (string, *Reject) {
	if val == nil {
		return "", rejectf(MissingField, "no os version")
	}
	return SummarizeOS(FormatOS(*val), validOS), nil
}

// FormatDevice canonicalizes a raw device model string. At most one rule
// applies; unmatched names pass through unchanged.
func FormatDevice(val string) string {
	return ApplyFirst(foldText(val), deviceRules)
}

// SummarizeDevice maps a formatted device name to its dashboard value. An
// empty name is Unknown; names not starting with a whitelisted prefix
// collapse to Other.
func SummarizeDevice(val string, tables *lookup.Tables) string {
	if val == "" {
		return Unknown
	}
	if !tables.WhitelistedDevice(val) {
		return Other
	}
	return val
}

// DeviceName formats and classifies a raw device model in one step. A nil
// value is Unknown, not a reject.
func DeviceName(val *string, tables *lookup.Tables) string {
	if val == nil {
		return Unknown
	}
	device := FormatDevice(*val)
	if !tables.WhitelistedDevice(device) {
		return Other
	}
	return device
}

// FormatOperator canonicalizes a raw operator name string. At most one rule
// applies.
func FormatOperator(val string) string {
	return ApplyFirst(foldText(val), operatorRules)
}

// SIMInfo carries the identification fields reported for one SIM or network:
// the numeric codes and the free-text name (SPN for the SIM, operator for
// the network).
type SIMInfo struct {
	Present bool
	MCC     string
	MNC     string
	Name    string
}

// resolveOperator walks the fallback chain for the raw operator name.
// Device-reported numeric codes are more reliable than free-text names, and
// SIM info is more reliable than the visited network's, so the order is:
// ICC codes, ICC SPN, network codes, network operator string.
func resolveOperator(icc, network SIMInfo, tables *lookup.Tables) string {
	if icc.Present {
		if op, ok := tables.MobileOperator(icc.MCC, icc.MNC); ok {
			return op
		}
		if name := strings.TrimSpace(icc.Name); name != "" {
			return name
		}
	}
	if network.Present {
		if op, ok := tables.MobileOperator(network.MCC, network.MNC); ok {
			return op
		}
		if name := strings.TrimSpace(network.Name); name != "" {
			return name
		}
	}
	return ""
}

// Operator resolves and classifies the carrier for a record. Unresolvable
// operators are Unknown; resolved names are canonicalized and checked
// against the operator whitelist, collapsing non-members to Other.
func Operator(icc, network SIMInfo, tables *lookup.Tables) string {
	raw := resolveOperator(icc, network, tables)
	if raw == "" {
		return Unknown
	}
	op := FormatOperator(raw)
	if !tables.WhitelistedOperator(op) {
		return Other
	}
	return op
}

// SummarizeOperator is the postprocessing variant operating on the four
// already-formatted operator columns of a dumped row, in preference order.
func SummarizeOperator(iccNetwork, iccName, netNetwork, netName string, tables *lookup.Tables) string {
	operator := ""
	for _, v := range []string{iccNetwork, iccName, netNetwork, netName} {
		if v != "" {
			operator = v
			break
		}
	}
	if operator == "" {
		return Unknown
	}
	if !tables.WhitelistedOperator(operator) {
		return Other
	}
	return operator
}

// Country resolves a 2-letter geo code to a classified country name. The
// function is idempotent on already-resolved names: a value that is a known
// country name skips code lookup. Unresolvable values are Unknown and
// non-launch countries collapse to Other.
func Country(val *string, tables *lookup.Tables) string {
	if val == nil {
		return Unknown
	}
	geo := strings.TrimSpace(*val)
	if geo == "" {
		return Unknown
	}
	if !tables.KnownCountryName(geo) {
		name, ok := tables.CountryName(geo)
		if !ok {
			return Unknown
		}
		geo = name
	}
	if !tables.WhitelistedCountry(geo) {
		return Other
	}
	return geo
}

// LookupCountry resolves a geo code to a readable name without whitelist
// classification, as the dump job does; the raw code is kept when the lookup
// fails.
func LookupCountry(code string, tables *lookup.Tables) string {
	if name, ok := tables.CountryName(code); ok {
		return name
	}
	return code
}

// BaseLocale strips the region identifier from a locale code ("en-US" →
// "en").
func BaseLocale(locale string) string {
	return localeRegion.ReplaceAllString(strings.TrimSpace(locale), "")
}

// Language resolves a locale code to a language name via the lookup table.
func Language(locale string, tables *lookup.Tables) (string, bool) {
	return tables.Language(BaseLocale(locale))
}

// StandardChannel maps a custom update-channel string to one of the standard
// channels, or "other" when none is embedded in it.
func StandardChannel(val string) string {
	if std := standardChannels.FindString(val); std != "" {
		return std
	}
	return "other"
}
