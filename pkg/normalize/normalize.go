// Package normalize provides pure string and numeric normalization for
// establishment rows: phone and fax digit canonicalization, whitespace
// cleanup, and the address comparison key used to decide whether two rows
// describe the same physical location.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// countryCode is prepended to bare 10-digit North American numbers.
const countryCode = "1"

var (
	nonDigitPattern   = regexp.MustCompile(`\D`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	// Canadian postal code: letter digit letter, optional space, digit letter digit.
	postalCodePattern    = regexp.MustCompile(`\b[A-Z]\d[A-Z]\s*\d[A-Z]\d\b`)
	trailingCommaPattern = regexp.MustCompile(`,\s*$`)
)

// Phone normalizes a phone or fax number to a canonical digit string.
// Bare 10-digit numbers get the North American country code prepended;
// 11-digit numbers already carrying it pass through. Anything else is
// returned as the trimmed original so unrecognized formats are preserved
// rather than discarded. When keepPrefix is set the result carries a
// leading "+". Empty input yields the empty string.
func Phone(raw string, keepPrefix bool) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	digits := nonDigitPattern.ReplaceAllString(trimmed, "")

	var result string
	switch {
	case len(digits) == 10:
		result = countryCode + digits
	case len(digits) == 11 && strings.HasPrefix(digits, countryCode):
		result = digits
	default:
		return trimmed
	}

	if keepPrefix {
		return "+" + result
	}
	return result
}

// CleanString trims and collapses internal whitespace runs to one space.
func CleanString(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return whitespacePattern.ReplaceAllString(trimmed, " ")
}

// Keyer derives address comparison keys. The zero value (via NewKeyer
// with no options) implements the plain key contract: uppercase, trim,
// postal code stripped, trailing comma stripped, whitespace collapsed.
type Keyer struct {
	foldAccents bool
	fold        transform.Transformer
}

// KeyerOption configures a Keyer.
type KeyerOption func(*Keyer)

// WithAccentFolding strips diacritics before key comparison, so addresses
// captured with and without accents land in the same group.
func WithAccentFolding() KeyerOption {
	return func(k *Keyer) {
		k.foldAccents = true
		k.fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}
}

// NewKeyer creates a Keyer with the given options.
func NewKeyer(opts ...KeyerOption) *Keyer {
	k := &Keyer{}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// AddressKey computes the comparison key for an address string.
// The key is used only for group-internal equality, never shown to users.
func (k *Keyer) AddressKey(raw string) string {
	addr := strings.ToUpper(strings.TrimSpace(raw))
	if addr == "" {
		return ""
	}

	if k.foldAccents {
		if folded, _, err := transform.String(k.fold, addr); err == nil {
			addr = folded
		}
	}

	addr = postalCodePattern.ReplaceAllString(addr, "")
	addr = trailingCommaPattern.ReplaceAllString(addr, "")
	addr = whitespacePattern.ReplaceAllString(addr, " ")

	return strings.TrimSpace(addr)
}

// AddressKey computes the comparison key with default settings.
func AddressKey(raw string) string {
	return defaultKeyer.AddressKey(raw)
}

var defaultKeyer = NewKeyer()

// ParseCoordinate parses a latitude or longitude permissively. The second
// return value reports presence: unparsable input is absent, not zero.
func ParseCoordinate(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseTimestamp parses a unix timestamp, defaulting to zero on failure.
func ParseTimestamp(raw string) int64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	if value, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return value
	}
	// Some exports carry timestamps as floats.
	if value, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return int64(value)
	}
	return 0
}

// ParseFlag parses a 0/1 flag permissively, defaulting to zero.
func ParseFlag(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	if value, err := strconv.ParseFloat(trimmed, 64); err == nil && value != 0 {
		return 1
	}
	return 0
}
