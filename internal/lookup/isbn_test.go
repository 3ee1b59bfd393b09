package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeISBN(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"9780140449136", "9780140449136", false},
		{"978-0-14-044913-6", "9780140449136", false},
		{" 978 0140449136 ", "9780140449136", false},
		{"0140449132", "0140449132", false},
		{"0-14-044913-2", "0140449132", false},
		{"080442957X", "080442957X", false},
		{"080442957x", "080442957X", false}, // lowercase check char
		{"9780140449137", "", true},         // bad EAN check digit
		{"0140449131", "", true},            // bad ISBN-10 check digit
		{"978014044913", "", true},          // 12 digits
		{"abcdefghij", "", true},
		{"", "", true},
		{"97801404491360", "", true}, // 14 digits
		{"978014044913X", "", true},  // X illegal in EAN-13
	}
	for _, tc := range cases {
		got, err := NormalizeISBN(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidISBN, "input %q", tc.in)
			continue
		}
		assert.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
