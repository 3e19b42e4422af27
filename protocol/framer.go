package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// Transport is the byte link to the peripheral.
//
// ReadByte must not block: it returns ErrNoData when nothing is pending.
// Write is used for command lines, single control bytes and payloads.
type Transport interface {
	// Write sends p to the peripheral
	Write(p []byte) (int, error)

	// Available reports whether at least one received byte is pending
	Available() bool

	// ReadByte returns the next received byte, or ErrNoData
	ReadByte() (byte, error)
}

// FramerConfig holds the framer timing and buffer settings.
type FramerConfig struct {
	// ReplyTimeout bounds the wait for the first reply byte and every
	// gap between reply bytes
	ReplyTimeout time.Duration

	// StatusTimeout bounds the collection of the status token
	StatusTimeout time.Duration

	// PollInterval is the sleep between polls of an idle transport
	PollInterval time.Duration

	// BufferSize is the capacity of the scratch buffer used when
	// Execute is called without a target
	BufferSize int
}

// DefaultFramerConfig returns the timing used by the OpenLog shell.
func DefaultFramerConfig() FramerConfig {
	return FramerConfig{
		ReplyTimeout:  DefaultReplyTimeout,
		StatusTimeout: DefaultStatusTimeout,
		PollInterval:  DefaultPollInterval,
		BufferSize:    DefaultReplyBufferSize,
	}
}

// Framer turns the shell's byte stream into command round-trips.
//
// A reply is the body, one or more Escape bytes, and a status token ending
// in a prompt. The framer never retries; callers decide.
//
// Framer is not safe for concurrent use.
type Framer struct {
	t      Transport
	clock  Clock
	config FramerConfig

	scratch []byte
	status  [StatusSize]byte
	reply   Reply
}

// NewFramer creates a framer over t. A nil clock selects SystemClock.
// Zero values in config are replaced by the defaults.
func NewFramer(t Transport, clock Clock, config FramerConfig) *Framer {
	if t == nil {
		panic("transport cannot be nil")
	}
	if clock == nil {
		clock = SystemClock
	}

	def := DefaultFramerConfig()
	if config.ReplyTimeout <= 0 {
		config.ReplyTimeout = def.ReplyTimeout
	}
	if config.StatusTimeout <= 0 {
		config.StatusTimeout = def.StatusTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BufferSize <= 0 {
		config.BufferSize = def.BufferSize
	}

	return &Framer{
		t:       t,
		clock:   clock,
		config:  config,
		scratch: make([]byte, config.BufferSize),
	}
}

// Clock returns the framer's clock.
func (f *Framer) Clock() Clock {
	return f.clock
}

// Execute sends command and collects the reply.
//
// Stale bytes are drained first. The body is stored in target, or in the
// scratch buffer when target is nil; bytes beyond its capacity are counted
// in Reply.Dropped but still consumed, up to MaxOverrun. The status token
// must end with prompt.
//
// The returned Reply is valid until the next call and is returned together
// with any error, so callers can log what was received.
//
// Errors:
//   - ErrTimeout when no Escape byte arrives in time
//   - ErrNoStatus when the Escape byte is not followed by a status token
//   - ErrOverrun when the peripheral keeps sending without ending the reply
//   - *StatusError when the status is a failure or ends with another prompt
func (f *Framer) Execute(command string, target []byte, prompt byte) (*Reply, error) {
	r := &f.reply
	r.reset(command)

	f.Drain()
	if err := f.Send(command); err != nil {
		return r, err
	}

	buf := target
	if buf == nil {
		buf = f.scratch
	}

	n, dropped, err := f.collectBody(buf)
	r.Body = buf[:n]
	r.Dropped = dropped
	if err != nil {
		return r, fmt.Errorf("%q: %w", command, err)
	}

	status, err := f.collectStatus()
	r.Status = status
	if err != nil {
		return r, fmt.Errorf("%q: %w", command, err)
	}

	if err := Verdict(status, prompt); err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			se.Command = command
			return r, se
		}
		return r, fmt.Errorf("%q: %w", command, err)
	}

	return r, nil
}

// collectBody reads until the Escape byte. Every received byte restarts
// the idle timer. Once buf is full, discarding stops with ErrOverrun after
// MaxOverrun bytes or ReplyTimeout, whichever comes first.
func (f *Framer) collectBody(buf []byte) (n, dropped int, err error) {
	mark := f.clock.Now()
	var full time.Time
	for {
		b, ok, err := f.next()
		if err != nil {
			return n, dropped, err
		}
		if !ok {
			if Expired(f.clock, mark, f.config.ReplyTimeout) {
				return n, dropped, ErrTimeout
			}
			f.clock.Sleep(f.config.PollInterval)
			continue
		}

		mark = f.clock.Now()
		if b == Escape {
			return n, dropped, nil
		}
		if n < len(buf) {
			buf[n] = b
			n++
			continue
		}

		if dropped == 0 {
			full = mark
		}
		dropped++
		if dropped > MaxOverrun || Expired(f.clock, full, f.config.ReplyTimeout) {
			return n, dropped, ErrOverrun
		}
	}
}

// collectStatus reads the status token after the first Escape byte.
// Up to MaxOverrun repeated Escape bytes are skipped.
func (f *Framer) collectStatus() ([]byte, error) {
	mark := f.clock.Now()
	n, skipped := 0, 0
	for n < len(f.status) && !Expired(f.clock, mark, f.config.StatusTimeout) {
		b, ok, err := f.next()
		if err != nil {
			return f.status[:n], err
		}
		if !ok {
			f.clock.Sleep(f.config.PollInterval)
			continue
		}
		if b == Escape && n == 0 {
			if skipped++; skipped > MaxOverrun {
				return f.status[:n], ErrOverrun
			}
			continue
		}

		f.status[n] = b
		n++
		if b == PromptReady || b == PromptReceive {
			break
		}
	}
	return f.status[:n], nil
}

// next returns the next pending byte, if any.
func (f *Framer) next() (byte, bool, error) {
	if !f.t.Available() {
		return 0, false, nil
	}
	b, err := f.t.ReadByte()
	if errors.Is(err, ErrNoData) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read: %w", err)
	}
	return b, true, nil
}

// Verdict classifies a status token.
//
//	status contains FailMarker   -> *StatusError with Failed set
//	status is empty              -> ErrNoStatus
//	last byte is not prompt      -> *StatusError
//	otherwise                    -> nil
func Verdict(status []byte, prompt byte) error {
	if bytes.IndexByte(status, FailMarker) >= 0 {
		return &StatusError{Status: string(status), Expected: prompt, Failed: true}
	}
	if len(status) == 0 {
		return ErrNoStatus
	}
	if status[len(status)-1] != prompt {
		return &StatusError{Status: string(status), Expected: prompt}
	}
	return nil
}

// Drain discards pending bytes and returns how many were dropped. It stops
// after MaxOverrun bytes on a link that keeps sending.
func (f *Framer) Drain() int {
	n := 0
	for n < MaxOverrun && f.t.Available() {
		if _, err := f.t.ReadByte(); err != nil {
			break
		}
		n++
	}
	return n
}

// Send writes line followed by CR.
func (f *Framer) Send(line string) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, CR)
	return f.SendBytes(buf)
}

// SendByte writes a single byte.
func (f *Framer) SendByte(b byte) error {
	return f.SendBytes([]byte{b})
}

// SendBytes writes p unchanged.
func (f *Framer) SendBytes(p []byte) error {
	if _, err := f.t.Write(p); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Probe scans arriving bytes for b until it is seen or budget elapses.
// Bytes other than b are discarded, at most MaxOverrun of them.
func (f *Framer) Probe(b byte, budget time.Duration) (bool, error) {
	mark := f.clock.Now()
	for discarded := 0; ; {
		got, ok, err := f.next()
		if err != nil {
			return false, err
		}
		if ok {
			if got == b {
				return true, nil
			}
			if discarded++; discarded >= MaxOverrun {
				return false, nil
			}
		}
		if Expired(f.clock, mark, budget) {
			return false, nil
		}
		if !ok {
			f.clock.Sleep(f.config.PollInterval)
		}
	}
}
