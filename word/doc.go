// Package word provides a 32-bit integer value built from two 16-bit halves.
//
// OpenLog reports file sizes and accepts file positions as decimal text that
// can exceed the range of a 16-bit host integer. Word carries such values as
// an explicit high/low pair and implements the arithmetic the driver needs
// with simulated carries, so the same code runs unchanged on hosts without
// native 32-bit arithmetic.
//
// # Signed and Unsigned Views
//
// A Word has no sign of its own. Methods come in two flavours:
//
//	w.CmpU(x), w.DivU(x), w.UnsignedString()  // 0 .. 4,294,967,295
//	w.Cmp(x),  w.Div(x),  w.String()          // -2,147,483,648 .. 2,147,483,647
//
// Add, Sub, Mul, Neg and the shifts are identical in both views.
//
// # Conversion
//
// Parse accepts an optional sign followed by decimal digits:
//
//	size, err := word.Parse("123456")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(size.Add(word.FromInt(10)).UnsignedString()) // 123466
//
// Values are plain structs and are passed by value; there is no shared
// conversion buffer.
package word
