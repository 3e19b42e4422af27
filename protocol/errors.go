package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates no Escape byte arrived within the reply timeout.
	ErrTimeout = errors.New("reply timeout")

	// ErrNoStatus indicates the Escape byte arrived but no status token followed.
	ErrNoStatus = errors.New("no status after escape")

	// ErrNoData is returned by Transport.ReadByte when no byte is pending.
	ErrNoData = errors.New("no data available")

	// ErrInvalidArgument indicates a command argument cannot be encoded on the wire.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOverrun indicates the peripheral kept sending past MaxOverrun
	// discarded bytes or past the reply timeout without ending the reply.
	ErrOverrun = errors.New("reply does not end")

	// ErrMalformedReply indicates the reply body does not have the expected shape.
	ErrMalformedReply = errors.New("malformed reply")
)

// StatusError represents a status token that does not confirm success.
// Failed is set when the peripheral marked the command with FailMarker;
// otherwise the token ended with a prompt other than Expected.
type StatusError struct {
	// Command is the command line that was sent, without CR
	Command string

	// Status is the received status token
	Status string

	// Expected is the prompt that would have confirmed success
	Expected byte

	// Failed is true when the status contains FailMarker
	Failed bool
}

func (e *StatusError) Error() string {
	if e.Failed {
		return fmt.Sprintf("%q failed: status %q", e.Command, e.Status)
	}
	return fmt.Sprintf("%q: unexpected status %q, want prompt %q", e.Command, e.Status, e.Expected)
}

// IsStatusError returns true if the error is, or wraps, a StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
