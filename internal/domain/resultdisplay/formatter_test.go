package resultdisplay

import "testing"

func testConfig() Config {
	return Config{
		LowThreshold:            25,
		PermittedRoles:          []string{"DATA_LDS", " DATA_PROT"},
		FloorThresholdNumber:    10,
		FloorThresholdText:      "Less Than ",
		ObfuscatedDisplayNumber: 3,
	}
}

var (
	plainUser     = []string{"USER", "DATA_OBFSC"}
	permittedUser = []string{"USER", "DATA_PROT"}
)

func TestDisplay_NoMasking(t *testing.T) {
	f := NewFormatter(testConfig())

	tests := map[string]string{
		"0":       "0",
		"42":      "42",
		" 7 rows": "7",
		"-3":      "-3",
		"abc":     "Unknown Value",
		"":        "Unknown Value",
	}
	for in, want := range tests {
		if got := f.Display(in, plainUser, false); got != want {
			t.Errorf("Display(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplay_LessThanPassesThrough(t *testing.T) {
	cfg := testConfig()
	cfg.UseFloorThreshold = true
	f := NewFormatter(cfg)

	if got := f.Display("Less Than 10", plainUser, true); got != "Less Than 10" {
		t.Errorf("got %q", got)
	}
}

func TestDisplay_FloorThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.UseFloorThreshold = true
	f := NewFormatter(cfg)

	tests := []struct {
		name       string
		value      string
		roles      []string
		obfuscated bool
		want       string
	}{
		{"below floor", "4", plainUser, false, "Less Than 10"},
		{"at floor", "10", plainUser, false, "10"},
		{"permitted below floor", "4", permittedUser, false, "4"},
		{"no roles below floor", "4", nil, false, "Less Than 10"},
		{"zero", "0", plainUser, false, "0"},
		{"negative", "-2", plainUser, false, "0"},
		{"obfuscated below floor", "4", plainUser, true, "Less Than 10"},
		{"obfuscated above floor", "40", plainUser, true, "40&plusmn;3"},
		{"permitted obfuscated", "40", permittedUser, true, "40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Display(tt.value, tt.roles, tt.obfuscated); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplay_ObfuscatedWithoutFloor(t *testing.T) {
	f := NewFormatter(testConfig())

	if got := f.Display("4", plainUser, true); got != "4&plusmn;3" {
		t.Errorf("got %q", got)
	}
	if got := f.Display("0", plainUser, true); got != "0" {
		t.Errorf("zero: got %q", got)
	}
}

func TestDisplay_MaskZero(t *testing.T) {
	cfg := testConfig()
	cfg.UseFloorThreshold = true
	cfg.MaskZero = true
	f := NewFormatter(cfg)

	if got := f.Display("0", plainUser, false); got != "0" {
		t.Errorf("masked zero = %q", got)
	}
	if got := f.Display("5", plainUser, false); got != "Less Than 10" {
		t.Errorf("masked 5 = %q", got)
	}
	if f.Display("0", plainUser, false) == f.Display("5", plainUser, false) {
		t.Error("zero and a count under the floor render alike")
	}
	if got := f.Display("0", plainUser, true); got != "0" {
		t.Errorf("masked obfuscated zero = %q", got)
	}
	if got := f.Display("0", permittedUser, false); got != "0" {
		t.Errorf("permitted zero = %q", got)
	}
	// Masking never reveals more than the unmasked display.
	if got := f.Display("25", plainUser, false); got == f.Display("0", plainUser, false) {
		t.Errorf("zero and 25 render alike: %q", got)
	}

	cfg.UseFloorThreshold = false
	if got := NewFormatter(cfg).Display("0", plainUser, false); got != "0" {
		t.Errorf("mask zero without floor = %q", got)
	}
}

func TestStyle(t *testing.T) {
	f := NewFormatter(testConfig())

	tests := map[string]string{
		"0":            StyleZero,
		"":             StyleZero,
		"3":            StyleLow,
		"24":           StyleLow,
		"25":           StyleGood,
		"1000":         StyleGood,
		"Less Than 10": StyleLow,
		"n/a":          StyleGood,
	}
	for in, want := range tests {
		if got := f.Style(in); got != want {
			t.Errorf("Style(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStyle_LowThresholdDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.LowThreshold = 0
	f := NewFormatter(cfg)

	if got := f.Style("3"); got != StyleGood {
		t.Errorf("got %q", got)
	}
}
