package protocol

// Span is a half-open byte range [Start, End) into a reply buffer.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Fields holds up to MaxFields spans produced by Split.
// The spans reference the split buffer; nothing is copied.
type Fields struct {
	// Spans holds the field boundaries; only the first N are valid
	Spans [MaxFields]Span

	// N is the number of valid spans
	N int
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return f.N
}

// Bytes returns field i of buf, or nil if i is out of range.
func (f *Fields) Bytes(buf []byte, i int) []byte {
	if i < 0 || i >= f.N {
		return nil
	}
	s := f.Spans[i]
	return buf[s.Start:s.End]
}

// Reset clears all fields.
func (f *Fields) Reset() {
	*f = Fields{}
}

// Reply is the result of one command round-trip.
//
// A Reply is owned by the Framer that produced it and is overwritten by the
// next Execute call. Body aliases the target buffer passed to Execute, or the
// framer's scratch buffer.
type Reply struct {
	// Command is the command line that was sent, without CR
	Command string

	// Body holds the bytes received before the Escape byte, up to the
	// capacity of the target buffer
	Body []byte

	// Dropped counts body bytes discarded because the target was full
	Dropped int

	// Status is the token received after the Escape byte
	Status []byte

	// Fields holds the spans of the last Split call, relative to Body
	Fields Fields
}

// reset prepares the reply for a new command.
func (r *Reply) reset(command string) {
	r.Command = command
	r.Body = nil
	r.Dropped = 0
	r.Status = nil
	r.Fields.Reset()
}

// Split tokenizes the body on delim and returns the number of fields.
// Leading CR and LF bytes of the body are skipped first.
func (r *Reply) Split(delim byte) int {
	off := skipLineBreaks(r.Body)
	n := Split(r.Body[off:], delim, &r.Fields)
	for i := 0; i < n; i++ {
		r.Fields.Spans[i].Start += off
		r.Fields.Spans[i].End += off
	}
	return n
}

// Field returns field i of the last Split, or nil if i is out of range.
func (r *Reply) Field(i int) []byte {
	return r.Fields.Bytes(r.Body, i)
}

// Truncated reports whether reply bytes were dropped for lack of space.
func (r *Reply) Truncated() bool {
	return r.Dropped > 0
}
