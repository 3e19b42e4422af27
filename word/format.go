package word

import (
	"errors"
	"fmt"
)

// Conversion errors, wrapped with the offending input.
var (
	// ErrSyntax indicates the text is not an optionally signed decimal number
	ErrSyntax = errors.New("invalid syntax")

	// ErrRange indicates the value does not fit in 32 bits
	ErrRange = errors.New("value out of range")
)

var (
	ten = Word{Lo: 10}

	// maxTenth is MaxUnsigned / 10; one more digit after it overflows
	// unless that digit is at most maxLastDigit.
	maxTenth     = Word{Hi: 0x1999, Lo: 0x9999}
	maxLastDigit = uint16(5)
)

// Parse converts decimal text to a Word.
//
// Accepted forms are an optional '+' or '-' followed by at least one decimal
// digit. Unsigned values up to 4,294,967,295 and negative values down to
// -2,147,483,648 are accepted.
//
// Example:
//
//	w, err := word.Parse("-1")
//	// w.Int32() == -1, w.Uint32() == 4294967295
func Parse(s string) (Word, error) {
	if s == "" {
		return Zero, fmt.Errorf("word: parsing %q: %w", s, ErrSyntax)
	}

	i := 0
	negative := false
	switch s[0] {
	case '+':
		i++
	case '-':
		negative = true
		i++
	}
	if i == len(s) {
		return Zero, fmt.Errorf("word: parsing %q: %w", s, ErrSyntax)
	}

	var w Word
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return Zero, fmt.Errorf("word: parsing %q: %w", s, ErrSyntax)
		}
		digit := uint16(c - '0')
		if cmp := w.CmpU(maxTenth); cmp > 0 || (cmp == 0 && digit > maxLastDigit) {
			return Zero, fmt.Errorf("word: parsing %q: %w", s, ErrRange)
		}
		w = w.Mul(ten).Add(Word{Lo: digit})
	}

	if negative {
		if w.CmpU(MinSigned) > 0 {
			return Zero, fmt.Errorf("word: parsing %q: %w", s, ErrRange)
		}
		w = w.Neg()
	}

	return w, nil
}

// MustParse is like Parse but panics on error. It is intended for constants
// in tests and examples.
func MustParse(s string) Word {
	w, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return w
}

// UnsignedString formats w as an unsigned decimal number.
func (w Word) UnsignedString() string {
	if w.IsZero() {
		return "0"
	}

	var buf [10]byte
	i := len(buf)
	for !w.IsZero() {
		q, r, _ := w.divRemU(ten)
		i--
		buf[i] = byte('0' + r.Lo)
		w = q
	}
	return string(buf[i:])
}

// String formats w as a signed decimal number.
func (w Word) String() string {
	if w.IsNegative() {
		return "-" + w.Neg().UnsignedString()
	}
	return w.UnsignedString()
}
