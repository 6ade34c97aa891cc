// Package lookup wraps the static reference tables used to resolve short
// codes in device payloads (country codes, mobile network codes, locale
// codes) and the whitelists of field values retained in dashboards.
//
// Tables are read from JSON files in a lookup directory and cached on first
// use. Lookups never fail: a missing key reports ok=false. All numeric codes
// are matched with leading zeros stripped.
package lookup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	countryCodesFile  = "countrycodes.json"
	mobileCodesFile   = "mobile-codes.json"
	languageCodesFile = "language-codes.json"
	whitelistFile     = "ftu-fields.json"
)

type countryEntry struct {
	Name string `json:"name"`
}

type mobileEntry struct {
	Country   string            `json:"country"`
	Operators map[string]string `json:"operators"`
}

type whitelistData struct {
	Country  []string `json:"country"`
	Device   []string `json:"device"`
	Operator []string `json:"operator"`
}

// Tables resolves reference data for the field normalizers. Construct with
// Open to read tables lazily from a directory, or with NewFromData to inject
// fixture tables directly. A single Tables value is safe for concurrent use;
// each table loads at most once.
type Tables struct {
	dir string

	countryOnce  sync.Once
	countryCodes map[string]countryEntry
	countryNames map[string]struct{}

	mobileOnce  sync.Once
	mobileCodes map[string]mobileEntry

	langOnce  sync.Once
	langCodes map[string]string

	wlOnce         sync.Once
	countryList    map[string]struct{}
	devicePrefixes []string
	operatorList   map[string]struct{}

	mu      sync.Mutex
	loadErr error
}

// Open returns a Tables reading from the JSON files in dir. No file is
// touched until the first lookup that needs it.
func Open(dir string) *Tables {
	return &Tables{dir: dir}
}

// Data holds fixture tables for NewFromData.
type Data struct {
	// CountryCodes maps 2-letter geo codes to country names.
	CountryCodes map[string]string
	// MobileCountries maps MCC to country name.
	MobileCountries map[string]string
	// MobileOperators maps "mcc/mnc" to operator name.
	MobileOperators map[string]string
	// Languages maps base locale codes to language names.
	Languages map[string]string

	CountryWhitelist  []string
	DevicePrefixes    []string
	OperatorWhitelist []string
}

// NewFromData builds a fully-populated Tables from fixture data, bypassing
// file loading. Intended for tests and embedded defaults.
func NewFromData(d Data) *Tables {
	t := &Tables{}
	t.countryCodes = make(map[string]countryEntry, len(d.CountryCodes))
	t.countryNames = make(map[string]struct{}, len(d.CountryCodes))
	for code, name := range d.CountryCodes {
		t.countryCodes[code] = countryEntry{Name: name}
		t.countryNames[name] = struct{}{}
	}
	t.mobileCodes = make(map[string]mobileEntry)
	for mcc, country := range d.MobileCountries {
		t.mobileCodes[mcc] = mobileEntry{Country: country, Operators: map[string]string{}}
	}
	for key, op := range d.MobileOperators {
		mcc, mnc, ok := strings.Cut(key, "/")
		if !ok {
			continue
		}
		entry, ok := t.mobileCodes[mcc]
		if !ok {
			entry = mobileEntry{Operators: map[string]string{}}
		}
		if entry.Operators == nil {
			entry.Operators = map[string]string{}
		}
		entry.Operators[mnc] = op
		t.mobileCodes[mcc] = entry
	}
	t.langCodes = make(map[string]string, len(d.Languages))
	for code, name := range d.Languages {
		t.langCodes[code] = name
	}
	t.countryList = toSet(d.CountryWhitelist)
	t.devicePrefixes = append([]string(nil), d.DevicePrefixes...)
	t.operatorList = toSet(d.OperatorWhitelist)

	// Mark every table as loaded.
	t.countryOnce.Do(func() {})
	t.mobileOnce.Do(func() {})
	t.langOnce.Do(func() {})
	t.wlOnce.Do(func() {})
	return t
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

// Err reports the first table-load failure, if any. Lookups themselves never
// fail; callers that want to distinguish "table missing" from "key missing"
// can check this after a run.
func (t *Tables) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadErr
}

func (t *Tables) recordErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loadErr == nil {
		t.loadErr = err
	}
}

func (t *Tables) loadJSON(name string, into any) error {
	data, err := os.ReadFile(filepath.Join(t.dir, name))
	if err != nil {
		return fmt.Errorf("lookup: reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("lookup: parsing %s: %w", name, err)
	}
	return nil
}

func (t *Tables) ensureCountry() {
	t.countryOnce.Do(func() {
		codes := map[string]countryEntry{}
		if err := t.loadJSON(countryCodesFile, &codes); err != nil {
			t.recordErr(err)
		}
		t.countryCodes = codes
		t.countryNames = make(map[string]struct{}, len(codes))
		for _, entry := range codes {
			t.countryNames[entry.Name] = struct{}{}
		}
	})
}

func (t *Tables) ensureMobile() {
	t.mobileOnce.Do(func() {
		codes := map[string]mobileEntry{}
		if err := t.loadJSON(mobileCodesFile, &codes); err != nil {
			t.recordErr(err)
		}
		t.mobileCodes = codes
	})
}

func (t *Tables) ensureLanguages() {
	t.langOnce.Do(func() {
		codes := map[string]string{}
		if err := t.loadJSON(languageCodesFile, &codes); err != nil {
			t.recordErr(err)
		}
		t.langCodes = codes
	})
}

func (t *Tables) ensureWhitelist() {
	t.wlOnce.Do(func() {
		var wl whitelistData
		if err := t.loadJSON(whitelistFile, &wl); err != nil {
			t.recordErr(err)
		}
		t.countryList = toSet(wl.Country)
		t.devicePrefixes = append([]string(nil), wl.Device...)
		t.operatorList = toSet(wl.Operator)
	})
}

// StripLeadingZeros trims leading zeros from a string of digits. A string of
// all zeros becomes "0"; an empty or blank string stays empty.
func StripLeadingZeros(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return ""
	}
	trimmed := strings.TrimLeft(val, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// CountryName resolves a 2-letter geo code to a country name.
func (t *Tables) CountryName(code string) (string, bool) {
	t.ensureCountry()
	entry, ok := t.countryCodes[strings.TrimSpace(code)]
	if !ok {
		return "", false
	}
	return entry.Name, true
}

// KnownCountryName reports whether name is the resolved name of any country
// code. Used to keep country summarization idempotent on already-resolved
// values.
func (t *Tables) KnownCountryName(name string) bool {
	t.ensureCountry()
	_, ok := t.countryNames[name]
	return ok
}

// MobileCountry resolves an MCC to the country it is assigned to.
func (t *Tables) MobileCountry(mcc string) (string, bool) {
	t.ensureMobile()
	entry, ok := t.mobileCodes[StripLeadingZeros(mcc)]
	if !ok {
		return "", false
	}
	return entry.Country, true
}

// MobileOperator resolves an (MCC, MNC) pair to an operator name. Both codes
// are needed: MNC values are only unique within a country.
func (t *Tables) MobileOperator(mcc, mnc string) (string, bool) {
	t.ensureMobile()
	entry, ok := t.mobileCodes[StripLeadingZeros(mcc)]
	if !ok {
		return "", false
	}
	op, ok := entry.Operators[StripLeadingZeros(mnc)]
	if !ok || op == "" {
		return "", false
	}
	return op, true
}

// Language resolves a base locale code (region suffix already stripped) to a
// language name.
func (t *Tables) Language(code string) (string, bool) {
	t.ensureLanguages()
	name, ok := t.langCodes[strings.TrimSpace(code)]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// WhitelistedCountry reports whether a resolved country name is in the list
// of launch countries retained in dashboards.
func (t *Tables) WhitelistedCountry(name string) bool {
	t.ensureWhitelist()
	_, ok := t.countryList[name]
	return ok
}

// WhitelistedDevice reports whether a canonicalized device name starts with
// one of the recognized device-name prefixes.
func (t *Tables) WhitelistedDevice(name string) bool {
	t.ensureWhitelist()
	for _, prefix := range t.devicePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// WhitelistedOperator reports whether a canonicalized operator name is in
// the list of operators retained in dashboards.
func (t *Tables) WhitelistedOperator(name string) bool {
	t.ensureWhitelist()
	_, ok := t.operatorList[name]
	return ok
}
