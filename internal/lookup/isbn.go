package lookup

import (
	"errors"
	"strings"
)

// ErrInvalidISBN is returned when the input cannot be interpreted as an
// ISBN-10, ISBN-13 or 13-digit EAN after normalization.
var ErrInvalidISBN = errors.New("invalid isbn")

// NormalizeISBN strips hyphens and whitespace, upper-cases a trailing X and
// validates the result as an ISBN-10 (mod-11 check digit) or a 13-digit EAN
// (mod-10 check digit, which covers ISBN-13). The normalized string is
// returned; the caller stores and queries by this form only.
func NormalizeISBN(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		case r == '-' || r == ' ' || r == '\t':
			// separators are dropped
		default:
			return "", ErrInvalidISBN
		}
	}
	s := b.String()
	switch len(s) {
	case 10:
		if !validISBN10(s) {
			return "", ErrInvalidISBN
		}
		return s, nil
	case 13:
		if strings.ContainsRune(s, 'X') || !validEAN13(s) {
			return "", ErrInvalidISBN
		}
		return s, nil
	}
	return "", ErrInvalidISBN
}

// validISBN10 checks the weighted mod-11 sum. An 'X' is only legal as the
// final check character, where it stands for the value 10.
func validISBN10(s string) bool {
	sum := 0
	for i, r := range s {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += (i + 1) * v
	}
	return sum%11 == 0
}

// validEAN13 checks the alternating 1/3-weighted mod-10 sum used by both
// EAN-13 barcodes and ISBN-13.
func validEAN13(s string) bool {
	sum := 0
	for i, r := range s {
		v := int(r - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}
