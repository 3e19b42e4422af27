package openlog

import (
	"time"

	"github.com/sparkfun/OpenLog/protocol"
)

// Config holds the driver configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// Clock supplies time and delays; defaults to protocol.SystemClock
	Clock protocol.Clock

	// ResetPin is the active-low reset line; Restart requires it
	ResetPin Pin

	// ReplyTimeout bounds the wait for the first reply byte and every gap
	ReplyTimeout time.Duration

	// StatusTimeout bounds the collection of the status token
	StatusTimeout time.Duration

	// PollInterval is the sleep between polls of an idle link
	PollInterval time.Duration

	// ListAttempts is the number of efcount attempts when starting a listing
	ListAttempts int

	// OpenAttempts is the number of size probes when opening a file
	OpenAttempts int

	// WriteAttempts is the number of complete write sequences tried
	WriteAttempts int

	// WriteRetryDelay is the pause between write attempts
	WriteRetryDelay time.Duration

	// ResetPulse is how long the reset line is held low
	ResetPulse time.Duration

	// BootDelay is the wait after releasing the reset line
	BootDelay time.Duration

	// AbortEscapes is the number of escape bytes sent to leave streaming mode
	AbortEscapes int

	// AbortProbes is the number of CR probes sent while waiting for the prompt
	AbortProbes int

	// AbortInterval is the spacing of abort escapes and probes
	AbortInterval time.Duration

	// WriteSettle is the wait after a write-mode payload before the closing CR
	WriteSettle time.Duration

	// AppendSettle is the wait after an append-mode payload before the escape sequence
	AppendSettle time.Duration

	// ReplyBufferSize is the capacity of the reply scratch buffer
	ReplyBufferSize int

	// ReadChunkSize is the read length used by ReadFileTo.
	// Default is 64 bytes; the peripheral's UART buffer is small.
	ReadChunkSize int

	// OptimisticAdvance moves the read position before the read command
	// is confirmed
	OptimisticAdvance bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Clock:           protocol.SystemClock,
		ReplyTimeout:    protocol.DefaultReplyTimeout,
		StatusTimeout:   protocol.DefaultStatusTimeout,
		PollInterval:    protocol.DefaultPollInterval,
		ListAttempts:    3,
		OpenAttempts:    3,
		WriteAttempts:   3, // 1 + 2 retries
		WriteRetryDelay: 500 * time.Millisecond,
		ResetPulse:      240 * time.Millisecond,
		BootDelay:       1700 * time.Millisecond,
		AbortEscapes:    10,
		AbortProbes:     10,
		AbortInterval:   250 * time.Millisecond,
		WriteSettle:     480 * time.Millisecond,
		AppendSettle:    240 * time.Millisecond,
		ReplyBufferSize: protocol.DefaultReplyBufferSize,
		ReadChunkSize:   64,
	}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithLogger sets a logger for driver operations.
//
// Example:
//
//	drv := openlog.New(port, openlog.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithClock replaces the system clock, typically with sim.Clock in tests.
func WithClock(clock protocol.Clock) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// WithResetPin sets the reset line used by Restart.
//
// Example:
//
//	drv := openlog.New(port, openlog.WithResetPin(port.ResetLine()))
func WithResetPin(pin Pin) Option {
	return func(c *Config) {
		c.ResetPin = pin
	}
}

// WithReplyTimeout sets the wait for the first reply byte and between bytes.
func WithReplyTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReplyTimeout = timeout
		}
	}
}

// WithStatusTimeout sets the wait for the status token.
func WithStatusTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.StatusTimeout = timeout
		}
	}
}

// WithPollInterval sets the sleep between polls of an idle link.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithRetries sets the attempt budgets of listing, open and write.
// Values below 1 leave the corresponding default in place.
//
// Example:
//
//	drv := openlog.New(port, openlog.WithRetries(5, 3, 4))
func WithRetries(list, open, write int) Option {
	return func(c *Config) {
		if list > 0 {
			c.ListAttempts = list
		}
		if open > 0 {
			c.OpenAttempts = open
		}
		if write > 0 {
			c.WriteAttempts = write
		}
	}
}

// WithWriteRetryDelay sets the pause between write attempts.
func WithWriteRetryDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.WriteRetryDelay = delay
		}
	}
}

// WithResetTiming sets the reset pulse width and the boot wait.
func WithResetTiming(pulse, boot time.Duration) Option {
	return func(c *Config) {
		if pulse > 0 {
			c.ResetPulse = pulse
		}
		if boot >= 0 {
			c.BootDelay = boot
		}
	}
}

// WithAbortSequence sets the escape-abort sequence used by Restart, Abort
// and append-mode writes.
func WithAbortSequence(escapes, probes int, interval time.Duration) Option {
	return func(c *Config) {
		if escapes > 0 {
			c.AbortEscapes = escapes
		}
		if probes > 0 {
			c.AbortProbes = probes
		}
		if interval > 0 {
			c.AbortInterval = interval
		}
	}
}

// WithPayloadSettle sets the waits after a write-mode and an append-mode
// payload.
func WithPayloadSettle(writeMode, appendMode time.Duration) Option {
	return func(c *Config) {
		if writeMode >= 0 {
			c.WriteSettle = writeMode
		}
		if appendMode >= 0 {
			c.AppendSettle = appendMode
		}
	}
}

// WithReplyBufferSize sets the capacity of the reply scratch buffer.
func WithReplyBufferSize(size int) Option {
	return func(c *Config) {
		if size >= protocol.StatusSize {
			c.ReplyBufferSize = size
		}
	}
}

// WithReadChunkSize sets the read length used by ReadFileTo.
// Default is 64 bytes.
//
// Example:
//
//	drv := openlog.New(port, openlog.WithReadChunkSize(32))
func WithReadChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= 512 {
			c.ReadChunkSize = size
		}
	}
}

// WithOptimisticAdvance selects when ReadFile moves the position.
// When enabled the position advances before the read is confirmed, so a
// failed read skips its range. Default is false.
func WithOptimisticAdvance(enabled bool) Option {
	return func(c *Config) {
		c.OptimisticAdvance = enabled
	}
}
