package resultdisplay

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ehr/querybuilder/internal/platform/auth"
)

// Severity classes applied to a query count.
const (
	StyleZero = "crcCountResZero"
	StyleLow  = "crcCountResLow"
	StyleGood = "crcCountResGood"
)

const (
	lessThanMarker = "Less Than"
	unknownValue   = "Unknown Value"
	obfuscatedSign = "&plusmn;"
)

// Config controls how query counts are shown.
type Config struct {
	// MaskZero marks zero counts as hidden from users without a permitted
	// role. A zero still renders as "0" so it never reads the same as a
	// small positive count under the floor text.
	MaskZero bool
	// LowThreshold is the count below which a non-zero result is styled low.
	// Zero disables the low style.
	LowThreshold int
	// PermittedRoles may see exact counts.
	PermittedRoles          []string
	UseFloorThreshold       bool
	FloorThresholdNumber    int
	FloorThresholdText      string
	ObfuscatedDisplayNumber int
}

// Formatter renders query result counts for a caller.
type Formatter struct {
	cfg Config
}

// NewFormatter creates a formatter.
func NewFormatter(cfg Config) *Formatter {
	return &Formatter{cfg: cfg}
}

// Display returns the text shown for a raw result value. Values that are
// already a "Less Than" sentinel pass through unchanged. Callers holding a
// permitted role see exact counts; everyone else gets the floor text below
// the floor threshold and, when their session is obfuscated, a ± suffix.
func (f *Formatter) Display(value string, roles []string, obfuscated bool) string {
	if strings.Contains(value, lessThanMarker) {
		return value
	}
	size, ok := leadingInt(value)
	if !ok {
		return unknownValue
	}
	masked := !auth.HasRole(f.cfg.PermittedRoles, roles)

	if !obfuscated && !f.cfg.UseFloorThreshold {
		return strconv.Itoa(size)
	}
	if size <= 0 {
		return "0"
	}
	belowFloor := f.cfg.UseFloorThreshold && size < f.cfg.FloorThresholdNumber
	if masked && belowFloor {
		return f.floorText()
	}
	if masked && obfuscated {
		return strconv.Itoa(size) + obfuscatedSign + strconv.Itoa(f.cfg.ObfuscatedDisplayNumber)
	}
	return strconv.Itoa(size)
}

func (f *Formatter) floorText() string {
	return f.cfg.FloorThresholdText + strconv.Itoa(f.cfg.FloorThresholdNumber)
}

// Style returns the severity class of a result value.
func (f *Formatter) Style(value string) string {
	n, ok := numeric(value)
	if !ok {
		if strings.Contains(value, lessThanMarker) {
			return StyleLow
		}
		return StyleGood
	}
	switch {
	case n == 0:
		return StyleZero
	case f.cfg.LowThreshold > 0 && n < float64(f.cfg.LowThreshold):
		return StyleLow
	}
	return StyleGood
}

// leadingInt parses the optionally signed decimal integer at the start of
// s, ignoring leading whitespace and anything after the digits.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// numeric reports whether the whole value is a number. A blank value
// counts as zero.
func numeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
