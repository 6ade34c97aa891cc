package lookup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func fixtureTables() *Tables {
	return NewFromData(Data{
		CountryCodes: map[string]string{
			"US": "United States",
			"IN": "India",
			"PE": "Peru",
		},
		MobileCountries: map[string]string{
			"310": "United States",
			"404": "India",
		},
		MobileOperators: map[string]string{
			"310/410": "AT&T",
			"404/45":  "Airtel",
		},
		Languages: map[string]string{
			"en": "English",
			"hi": "Hindi",
		},
		CountryWhitelist:  []string{"India", "Peru"},
		DevicePrefixes:    []string{"One Touch Fire", "ZTE Open", "Flame"},
		OperatorWhitelist: []string{"AT&T", "Airtel"},
	})
}

func TestStripLeadingZeros(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0044", "44"},
		{"44", "44"},
		{"000", "0"},
		{"0", "0"},
		{"", ""},
		{"  07 ", "7"},
	}
	for _, tt := range tests {
		if got := StripLeadingZeros(tt.in); got != tt.want {
			t.Errorf("StripLeadingZeros(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountryName(t *testing.T) {
	tables := fixtureTables()

	name, ok := tables.CountryName("US")
	if !ok || name != "United States" {
		t.Fatalf("CountryName(US) = %q, %v", name, ok)
	}
	if _, ok := tables.CountryName("ZZ"); ok {
		t.Fatal("expected miss for unknown code")
	}
	if !tables.KnownCountryName("India") {
		t.Fatal("expected India to be a known country name")
	}
	if tables.KnownCountryName("IN") {
		t.Fatal("raw codes must not count as country names")
	}
}

func TestMobileLookupsStripLeadingZeros(t *testing.T) {
	tables := fixtureTables()

	op, ok := tables.MobileOperator("0310", "0410")
	if !ok || op != "AT&T" {
		t.Fatalf("MobileOperator(0310, 0410) = %q, %v", op, ok)
	}
	country, ok := tables.MobileCountry("0404")
	if !ok || country != "India" {
		t.Fatalf("MobileCountry(0404) = %q, %v", country, ok)
	}
	if _, ok := tables.MobileOperator("310", "999"); ok {
		t.Fatal("expected miss for unknown MNC")
	}
	if _, ok := tables.MobileOperator("999", "410"); ok {
		t.Fatal("expected miss for unknown MCC")
	}
}

func TestWhitelists(t *testing.T) {
	tables := fixtureTables()

	if !tables.WhitelistedCountry("India") {
		t.Error("India should be whitelisted")
	}
	if tables.WhitelistedCountry("United States") {
		t.Error("United States is not in the launch-country list")
	}
	if !tables.WhitelistedDevice("One Touch Fire C") {
		t.Error("prefix match should whitelist One Touch Fire C")
	}
	if tables.WhitelistedDevice("Galaxy S2") {
		t.Error("unrecognized device prefix should not be whitelisted")
	}
	if !tables.WhitelistedOperator("Airtel") {
		t.Error("Airtel should be whitelisted")
	}
}

func TestOpenLoadsFromDirectoryOnce(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, countryCodesFile), map[string]countryEntry{
		"BR": {Name: "Brazil"},
	})
	writeJSON(t, filepath.Join(dir, mobileCodesFile), map[string]mobileEntry{
		"724": {Country: "Brazil", Operators: map[string]string{"6": "Vivo"}},
	})
	writeJSON(t, filepath.Join(dir, languageCodesFile), map[string]string{"pt": "Portuguese"})
	writeJSON(t, filepath.Join(dir, whitelistFile), whitelistData{
		Country:  []string{"Brazil"},
		Device:   []string{"Flame"},
		Operator: []string{"Vivo"},
	})

	tables := Open(dir)

	// Concurrent first use must load each table exactly once without racing.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if name, ok := tables.CountryName("BR"); !ok || name != "Brazil" {
				t.Errorf("CountryName(BR) = %q, %v", name, ok)
			}
			if op, ok := tables.MobileOperator("724", "06"); !ok || op != "Vivo" {
				t.Errorf("MobileOperator(724, 06) = %q, %v", op, ok)
			}
			if lang, ok := tables.Language("pt"); !ok || lang != "Portuguese" {
				t.Errorf("Language(pt) = %q, %v", lang, ok)
			}
			if !tables.WhitelistedOperator("Vivo") {
				t.Error("Vivo should be whitelisted")
			}
		}()
	}
	wg.Wait()

	if err := tables.Err(); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
}

func TestOpenMissingFilesReportMissesNotErrors(t *testing.T) {
	tables := Open(t.TempDir())

	if _, ok := tables.CountryName("US"); ok {
		t.Fatal("expected miss when table file is absent")
	}
	if tables.WhitelistedCountry("India") {
		t.Fatal("expected false when whitelist file is absent")
	}
	if tables.Err() == nil {
		t.Fatal("expected Err to surface the load failure")
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}
