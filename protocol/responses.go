package protocol

import (
	"fmt"

	"github.com/sparkfun/OpenLog/word"
)

// Split tokenizes buf on delim into f and returns the number of fields.
//
// Fields end at delim or at the end of buf. Empty fields, including an empty
// trailing field, are not emitted. At most MaxFields fields are recorded;
// the rest of buf is ignored.
//
// Example:
//
//	var f protocol.Fields
//	n := protocol.Split([]byte("count|12"), '|', &f)
//	// n == 2, f.Bytes(buf, 1) == "12"
func Split(buf []byte, delim byte, f *Fields) int {
	f.Reset()

	start := 0
	for i := 0; i <= len(buf) && f.N < MaxFields; i++ {
		if i < len(buf) && buf[i] != delim {
			continue
		}
		if i > start {
			f.Spans[f.N] = Span{Start: start, End: i}
			f.N++
		}
		start = i + 1
	}

	return f.N
}

// NumericPrefix returns the leading number of b.
//
// Leading CR, LF and space bytes are skipped. The result is an optional
// sign followed by the maximal run of decimal digits, or nil if there are
// no digits. The returned slice aliases b.
func NumericPrefix(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == CR || b[i] == LF || b[i] == ' ') {
		i++
	}

	start := i
	if i < len(b) && (b[i] == '-' || b[i] == '+') {
		i++
	}
	digits := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == digits {
		return nil
	}

	return b[start:i]
}

// ParseNumber parses the numeric prefix of b as a Word.
func ParseNumber(b []byte) (word.Word, error) {
	num := NumericPrefix(b)
	if num == nil {
		return word.Zero, fmt.Errorf("%w: no number in %q", ErrMalformedReply, b)
	}
	w, err := word.Parse(string(num))
	if err != nil {
		return word.Zero, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return w, nil
}

// skipLineBreaks returns the number of leading CR and LF bytes in b.
func skipLineBreaks(b []byte) int {
	i := 0
	for i < len(b) && (b[i] == CR || b[i] == LF) {
		i++
	}
	return i
}

// ParseCountReply parses the "count|N" reply of CmdFileCount.
//
// The body must split into exactly two fields and N must be a
// non-negative number.
func ParseCountReply(r *Reply) (int, error) {
	if n := r.Split(FieldDelim); n != 2 {
		return 0, fmt.Errorf("%w: %s reply has %d fields, want 2", ErrMalformedReply, CmdFileCount, n)
	}

	count, err := ParseNumber(r.Field(1))
	if err != nil {
		return 0, err
	}
	if count.Cmp(word.Zero) < 0 {
		return 0, fmt.Errorf("%w: negative file count %s", ErrMalformedReply, count)
	}

	return int(count.Int32()), nil
}

// ParseInfoReply parses the "name|size" reply of CmdFileInfo.
// Names longer than MaxNameLen are truncated.
func ParseInfoReply(r *Reply) (name string, size word.Word, err error) {
	if n := r.Split(FieldDelim); n != 2 {
		return "", word.Zero, fmt.Errorf("%w: %s reply has %d fields, want 2", ErrMalformedReply, CmdFileInfo, n)
	}

	size, err = ParseNumber(r.Field(1))
	if err != nil {
		return "", word.Zero, err
	}

	raw := r.Field(0)
	if len(raw) > MaxNameLen {
		raw = raw[:MaxNameLen]
	}

	return string(raw), size, nil
}

// ParseSizeReply parses the reply of CmdSize. The peripheral prints -1 for
// a missing file; callers decide how to treat negative values.
func ParseSizeReply(r *Reply) (word.Word, error) {
	return ParseNumber(r.Body)
}
