package word

import "errors"

// ErrDivideByZero is returned by the division methods when the divisor is zero.
var ErrDivideByZero = errors.New("word: division by zero")

// Word is a 32-bit value stored as two 16-bit halves.
type Word struct {
	// Hi is the high 16 bits
	Hi uint16

	// Lo is the low 16 bits
	Lo uint16
}

// Frequently used values.
var (
	// Zero is the zero value
	Zero = Word{}

	// One is the value 1
	One = Word{Lo: 1}

	// MaxUnsigned is 4,294,967,295 (or -1 in the signed view)
	MaxUnsigned = Word{Hi: 0xFFFF, Lo: 0xFFFF}

	// MaxSigned is 2,147,483,647
	MaxSigned = Word{Hi: 0x7FFF, Lo: 0xFFFF}

	// MinSigned is -2,147,483,648 (or 2,147,483,648 in the unsigned view)
	MinSigned = Word{Hi: 0x8000}
)

const (
	halfBits = 16
	wordBits = 32
	signBit  = 0x8000
)

// New creates a Word from its high and low halves.
func New(hi, lo uint16) Word {
	return Word{Hi: hi, Lo: lo}
}

// FromUint32 creates a Word holding v.
func FromUint32(v uint32) Word {
	return Word{Hi: uint16(v >> halfBits), Lo: uint16(v)}
}

// FromInt32 creates a Word holding the two's complement encoding of v.
func FromInt32(v int32) Word {
	return FromUint32(uint32(v))
}

// FromInt creates a Word from an int. Values outside the 32-bit range are
// truncated to their low 32 bits.
func FromInt(v int) Word {
	return FromUint32(uint32(v))
}

// Uint32 returns the unsigned value.
func (w Word) Uint32() uint32 {
	return uint32(w.Hi)<<halfBits | uint32(w.Lo)
}

// Int32 returns the signed value.
func (w Word) Int32() int32 {
	return int32(w.Uint32())
}

// IsZero reports whether w is zero.
func (w Word) IsZero() bool {
	return w.Hi == 0 && w.Lo == 0
}

// IsNegative reports whether the sign bit is set.
func (w Word) IsNegative() bool {
	return w.Hi&signBit != 0
}

// Equal reports whether w and x hold the same bits.
func (w Word) Equal(x Word) bool {
	return w == x
}

// Not returns the bitwise complement of w.
func (w Word) Not() Word {
	return Word{Hi: ^w.Hi, Lo: ^w.Lo}
}

// addHalf adds two halves and an incoming carry.
func addHalf(a, b, carry uint16) (sum, carryOut uint16) {
	s := uint32(a) + uint32(b) + uint32(carry)
	return uint16(s), uint16(s >> halfBits)
}

// subHalf subtracts b and an incoming borrow from a.
func subHalf(a, b, borrow uint16) (diff, borrowOut uint16) {
	d := uint32(a) - uint32(b) - uint32(borrow)
	return uint16(d), uint16(d>>halfBits) & 1
}

// Add returns w + x, wrapping on overflow.
func (w Word) Add(x Word) Word {
	lo, carry := addHalf(w.Lo, x.Lo, 0)
	hi, _ := addHalf(w.Hi, x.Hi, carry)
	return Word{Hi: hi, Lo: lo}
}

// Sub returns w - x, wrapping on underflow.
func (w Word) Sub(x Word) Word {
	lo, borrow := subHalf(w.Lo, x.Lo, 0)
	hi, _ := subHalf(w.Hi, x.Hi, borrow)
	return Word{Hi: hi, Lo: lo}
}

// Neg returns the two's complement negation of w.
func (w Word) Neg() Word {
	return w.Not().Add(One)
}

// Abs returns the magnitude of w in the signed view. Abs(MinSigned) is
// MinSigned, which reads correctly as 2,147,483,648 in the unsigned view.
func (w Word) Abs() Word {
	if w.IsNegative() {
		return w.Neg()
	}
	return w
}

// Mul returns the low 32 bits of w * x.
func (w Word) Mul(x Word) Word {
	low := uint32(w.Lo) * uint32(x.Lo)
	// Cross products only reach the high half; uint16 arithmetic drops
	// everything above bit 31.
	hi := uint16(low>>halfBits) + w.Hi*x.Lo + w.Lo*x.Hi
	return Word{Hi: hi, Lo: uint16(low)}
}

// Shl shifts w left by n bits.
func (w Word) Shl(n uint) Word {
	switch {
	case n == 0:
		return w
	case n >= wordBits:
		return Zero
	case n >= halfBits:
		return Word{Hi: w.Lo << (n - halfBits)}
	}
	return Word{Hi: w.Hi<<n | w.Lo>>(halfBits-n), Lo: w.Lo << n}
}

// Shr shifts w right by n bits, filling with zeros.
func (w Word) Shr(n uint) Word {
	switch {
	case n == 0:
		return w
	case n >= wordBits:
		return Zero
	case n >= halfBits:
		return Word{Lo: w.Hi >> (n - halfBits)}
	}
	return Word{Hi: w.Hi >> n, Lo: w.Lo>>n | w.Hi<<(halfBits-n)}
}

// Sar shifts w right by n bits, replicating the sign bit.
func (w Word) Sar(n uint) Word {
	if !w.IsNegative() {
		return w.Shr(n)
	}
	return w.Not().Shr(n).Not()
}

// CmpU compares w and x as unsigned values and returns -1, 0 or +1.
func (w Word) CmpU(x Word) int {
	switch {
	case w.Hi < x.Hi:
		return -1
	case w.Hi > x.Hi:
		return 1
	case w.Lo < x.Lo:
		return -1
	case w.Lo > x.Lo:
		return 1
	}
	return 0
}

// Cmp compares w and x as signed values and returns -1, 0 or +1.
func (w Word) Cmp(x Word) int {
	wn, xn := w.IsNegative(), x.IsNegative()
	if wn != xn {
		if wn {
			return -1
		}
		return 1
	}
	// Same sign: two's complement ordering matches unsigned ordering.
	return w.CmpU(x)
}

// bit reports whether bit i of w is set.
func (w Word) bit(i uint) bool {
	if i >= halfBits {
		return w.Hi>>(i-halfBits)&1 != 0
	}
	return w.Lo>>i&1 != 0
}

// divRemU is a restoring long division over the two halves.
func (w Word) divRemU(d Word) (q, r Word, err error) {
	if d.IsZero() {
		return Zero, Zero, ErrDivideByZero
	}

	for i := int(wordBits - 1); i >= 0; i-- {
		// The remainder is 33 bits wide for one step when d > 2^31.
		overflow := r.IsNegative()
		r = r.Shl(1)
		if w.bit(uint(i)) {
			r.Lo |= 1
		}
		q = q.Shl(1)
		if overflow || r.CmpU(d) >= 0 {
			r = r.Sub(d)
			q.Lo |= 1
		}
	}

	return q, r, nil
}

// DivU returns the unsigned quotient w / d.
func (w Word) DivU(d Word) (Word, error) {
	q, _, err := w.divRemU(d)
	return q, err
}

// RemU returns the unsigned remainder w % d.
func (w Word) RemU(d Word) (Word, error) {
	_, r, err := w.divRemU(d)
	return r, err
}

// Div returns the signed quotient w / d, truncated toward zero.
// MinSigned / -1 wraps to MinSigned.
func (w Word) Div(d Word) (Word, error) {
	q, _, err := w.Abs().divRemU(d.Abs())
	if err != nil {
		return Zero, err
	}
	if w.IsNegative() != d.IsNegative() {
		q = q.Neg()
	}
	return q, nil
}

// Rem returns the signed remainder of w / d. The result has the sign of w.
func (w Word) Rem(d Word) (Word, error) {
	_, r, err := w.Abs().divRemU(d.Abs())
	if err != nil {
		return Zero, err
	}
	if w.IsNegative() {
		r = r.Neg()
	}
	return r, nil
}
