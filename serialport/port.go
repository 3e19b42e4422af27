package serialport

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.bug.st/serial"

	"github.com/sparkfun/OpenLog/openlog"
	"github.com/sparkfun/OpenLog/protocol"
)

// ResetLine selects the modem control line wired to the OpenLog reset pin.
type ResetLine string

const (
	// ResetNone means no reset line is wired.
	ResetNone ResetLine = "none"

	// ResetDTR uses DTR, as on the usual FTDI breakout wiring.
	ResetDTR ResetLine = "dtr"

	// ResetRTS uses RTS.
	ResetRTS ResetLine = "rts"
)

// ParseResetLine converts "dtr", "rts" or "none" (any case) to a ResetLine.
// An empty string means none.
func ParseResetLine(s string) (ResetLine, error) {
	switch ResetLine(strings.ToLower(s)) {
	case ResetDTR:
		return ResetDTR, nil
	case ResetRTS:
		return ResetRTS, nil
	case ResetNone, "":
		return ResetNone, nil
	}
	return "", fmt.Errorf("serialport: unknown reset line %q", s)
}

// Config holds the settings for Open.
type Config struct {
	// BaudRate of the link; the OpenLog ships at 9600
	BaudRate int

	// ResetLine is the control line driving reset
	ResetLine ResetLine

	// LockDir holds the lock file; empty means os.TempDir()
	LockDir string

	// LockTimeout is how long Open waits for another holder; zero fails at once
	LockTimeout time.Duration

	// PollTimeout bounds a single read when checking for pending bytes
	PollTimeout time.Duration
}

// DefaultConfig returns the configuration for a factory OpenLog on an FTDI
// breakout.
func DefaultConfig() Config {
	return Config{
		BaudRate:    9600,
		ResetLine:   ResetDTR,
		PollTimeout: time.Millisecond,
	}
}

// Port is a serial connection to an OpenLog. It implements
// protocol.Transport: ReadByte never blocks longer than PollTimeout.
type Port struct {
	mu    sync.Mutex
	port  serial.Port
	lock  *flock.Flock
	path  string
	reset ResetLine

	buf        [256]byte
	head, tail int
	err        error // read failure not yet reported by ReadByte
}

// Open locks and opens the device at path with 8N1 framing. The reset line,
// if any, is released so the peripheral runs.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0", serialport.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
func Open(path string, cfg Config) (*Port, error) {
	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("serialport: invalid baud rate %d", cfg.BaudRate)
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Millisecond
	}
	if cfg.ResetLine == "" {
		cfg.ResetLine = ResetNone
	}

	lock, err := acquireLock(cfg.LockDir, path, cfg.LockTimeout)
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("serialport: open %s: %w", path, err)
	}
	if err := port.SetReadTimeout(cfg.PollTimeout); err != nil {
		port.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("serialport: set read timeout: %w", err)
	}

	p := &Port{
		port:  port,
		lock:  lock,
		path:  path,
		reset: cfg.ResetLine,
	}
	if pin := p.linePin(); pin != nil {
		if err := pin.Set(true); err != nil {
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

// Path returns the device path.
func (p *Port) Path() string {
	return p.path
}

// Write sends p unchanged.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Available reports whether a byte or a read error is pending. It may wait
// up to the poll timeout for one to arrive.
func (p *Port) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err == nil {
		p.err = p.fill()
	}
	return p.err != nil || p.head < p.tail
}

// ReadByte returns the next pending byte or protocol.ErrNoData. A read
// failure is returned once; the next call reads the device again.
func (p *Port) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.err
	p.err = nil
	if err == nil {
		err = p.fill()
	}
	if err != nil {
		return 0, err
	}
	if p.head == p.tail {
		return 0, protocol.ErrNoData
	}
	b := p.buf[p.head]
	p.head++
	return b, nil
}

// fill reads into the buffer when it is empty.
func (p *Port) fill() error {
	if p.head < p.tail {
		return nil
	}
	p.head, p.tail = 0, 0

	n, err := p.port.Read(p.buf[:])
	if err != nil {
		return fmt.Errorf("serialport: read %s: %w", p.path, err)
	}
	p.tail = n
	return nil
}

// ResetLine returns the configured reset line as an openlog.Pin, or nil
// when none is wired.
func (p *Port) ResetLine() openlog.Pin {
	if pin := p.linePin(); pin != nil {
		return pin
	}
	return nil
}

func (p *Port) linePin() *LinePin {
	if p.reset == ResetNone {
		return nil
	}
	return &LinePin{port: p.port, line: p.reset}
}

// Close closes the port and releases its lock file.
func (p *Port) Close() error {
	err := p.port.Close()
	if uerr := p.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}

// LinePin drives the OpenLog reset pin through a modem control line.
// Asserting the line pulls reset low.
type LinePin struct {
	port serial.Port
	line ResetLine
}

// Set releases reset when high is true and holds it otherwise.
func (l *LinePin) Set(high bool) error {
	var err error
	switch l.line {
	case ResetDTR:
		err = l.port.SetDTR(!high)
	case ResetRTS:
		err = l.port.SetRTS(!high)
	default:
		return fmt.Errorf("serialport: no reset line")
	}
	if err != nil {
		return fmt.Errorf("serialport: set %s: %w", l.line, err)
	}
	return nil
}

// List returns the names of the serial ports present on the system.
func List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serialport: list ports: %w", err)
	}
	return ports, nil
}
