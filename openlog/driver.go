package openlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sparkfun/OpenLog/protocol"
)

// Driver controls an OpenLog through its command shell.
// It keeps the open-file, listing and working-directory state that the
// peripheral only reveals through command replies.
//
// Driver is safe for concurrent use; operations are serialized and only one
// command is outstanding at a time.
type Driver struct {
	mu     sync.Mutex
	framer *protocol.Framer
	config Config
	sess   session

	// info is the shared FileInfo lent out by Stat and ListDirNext
	info FileInfo
}

// New creates a new Driver with the given transport and options.
// The transport must not block in ReadByte.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0", serialport.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	drv := openlog.New(port,
//	    openlog.WithResetPin(port.ResetLine()),
//	    openlog.WithLogger(myLogger),
//	)
func New(t protocol.Transport, opts ...Option) *Driver {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	framer := protocol.NewFramer(t, cfg.Clock, protocol.FramerConfig{
		ReplyTimeout:  cfg.ReplyTimeout,
		StatusTimeout: cfg.StatusTimeout,
		PollInterval:  cfg.PollInterval,
		BufferSize:    cfg.ReplyBufferSize,
	})

	return &Driver{
		framer: framer,
		config: cfg,
		sess:   newSession(),
	}
}

// State returns the current session state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess.state()
}

// WorkingDir returns the working directory as tracked by the driver,
// e.g. "/LOGS/2024". The peripheral boots at "/".
func (d *Driver) WorkingDir() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess.workingDir()
}

// Ping checks that the shell answers an empty command line.
func (d *Driver) Ping(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return d.alive()
}

// Init turns off command echo and verbose error messages. Both would
// otherwise be mixed into reply bodies.
func (d *Driver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, cmd := range []string{protocol.BuildEchoCmd(false), protocol.BuildVerboseCmd(false)} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.execute(cmd, nil, protocol.PromptReady); err != nil {
			d.logError("init failed", "command", cmd, "error", err)
			return &OperationError{Op: "init", Err: err}
		}
	}

	d.logInfo("shell initialized")
	return nil
}

// Restart resets the peripheral and brings its shell into embedded mode:
//  1. Pulse the reset line low
//  2. Wait for the boot to finish
//  3. Run the escape-abort sequence until the ready prompt appears
//  4. Enable embedded mode ("eem on")
//  5. Check the shell answers
//
// All session state is reset, including the working directory.
func (d *Driver) Restart(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pin := d.config.ResetPin
	if pin == nil {
		return ErrNoResetPin
	}

	d.logInfo("restarting peripheral")
	startTime := d.config.Clock.Now()
	d.sess.apply(opRestart, "")

	if err := pin.Set(false); err != nil {
		return &OperationError{Op: "restart", Err: fmt.Errorf("reset line: %w", err)}
	}
	d.config.Clock.Sleep(d.config.ResetPulse)
	if err := pin.Set(true); err != nil {
		return &OperationError{Op: "restart", Err: fmt.Errorf("reset line: %w", err)}
	}
	d.config.Clock.Sleep(d.config.BootDelay)

	if err := d.abort(ctx); err != nil {
		d.logError("restart failed", "phase", "abort", "error", err)
		return &OperationError{Op: "restart", Err: err}
	}

	if _, err := d.execute(protocol.BuildEmbeddedModeCmd(true), nil, protocol.PromptReady); err != nil {
		d.logError("restart failed", "phase", "embedded mode", "error", err)
		return &OperationError{Op: "restart", Err: fmt.Errorf("enable embedded mode: %w", err)}
	}

	if err := d.alive(); err != nil {
		d.logError("restart failed", "phase", "alive", "error", err)
		return &OperationError{Op: "restart", Err: err}
	}

	d.logInfo("restart complete", "elapsed", d.config.Clock.Now().Sub(startTime).String())
	return nil
}

// Abort runs the escape-abort sequence alone. It recovers a shell stuck in
// append or logging mode when no reset line is wired. The local session
// state is left unchanged.
func (d *Driver) Abort(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.abort(ctx); err != nil {
		d.logError("abort failed", "error", err)
		return &OperationError{Op: "abort", Err: err}
	}
	return nil
}

// abort sends the escape bytes and then probes with CR until the ready
// prompt shows up. The sequence is bounded by AbortEscapes + AbortProbes
// intervals.
func (d *Driver) abort(ctx context.Context) error {
	interval := d.config.AbortInterval

	for i := 0; i < d.config.AbortEscapes; i++ {
		if err := d.framer.SendByte(protocol.Escape); err != nil {
			return err
		}
		d.config.Clock.Sleep(interval)
	}

	for i := 0; i < d.config.AbortProbes; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.framer.SendByte(protocol.CR); err != nil {
			return err
		}
		found, err := d.framer.Probe(protocol.PromptReady, interval)
		if err != nil {
			return err
		}
		if found {
			d.logDebug("prompt found", "probes", i+1)
			return nil
		}
	}

	return fmt.Errorf("%w: no prompt after %d probes", ErrNotAlive, d.config.AbortProbes)
}

// execute runs one command round-trip and logs the verdict.
func (d *Driver) execute(command string, target []byte, prompt byte) (*protocol.Reply, error) {
	reply, err := d.framer.Execute(command, target, prompt)
	if err != nil {
		d.logDebug("command failed",
			"command", command,
			"status", string(reply.Status),
			"error", err,
		)
		return reply, err
	}

	d.logDebug("command ok",
		"command", command,
		"status", string(reply.Status),
		"body_bytes", len(reply.Body),
	)
	return reply, nil
}

// alive sends an empty command line and expects the ready prompt.
func (d *Driver) alive() error {
	if _, err := d.execute("", nil, protocol.PromptReady); err != nil {
		return fmt.Errorf("%w: %w", ErrNotAlive, err)
	}
	return nil
}

// retry runs fn up to attempts times, sleeping delay between attempts.
// The context is checked before every attempt.
func (d *Driver) retry(ctx context.Context, operation string, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", operation, err)
		}
		if attempt > 1 && delay > 0 {
			d.config.Clock.Sleep(delay)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		d.logDebug("attempt failed",
			"operation", operation,
			"attempt", attempt,
			"error", lastErr,
		)
	}

	d.logError("retries exhausted",
		"operation", operation,
		"attempts", attempts,
		"error", lastErr,
	)
	return &RetryError{Operation: operation, Attempts: attempts, Err: lastErr}
}

// logDebug logs a debug message if a logger is configured.
func (d *Driver) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (d *Driver) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (d *Driver) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
