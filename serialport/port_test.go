package serialport

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"go.bug.st/serial"

	"github.com/sparkfun/OpenLog/protocol"
	"github.com/sparkfun/OpenLog/sim"
)

func TestLockPath(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		path string
		want string
	}{
		{"unix device", "/var/lock", "/dev/ttyUSB0", "/var/lock/openlog-ttyUSB0.lock"},
		{"bare name", "/tmp/x", "COM3", "/tmp/x/openlog-COM3.lock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LockPath(tt.dir, tt.path); got != filepath.FromSlash(tt.want) {
				t.Errorf("LockPath() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := LockPath("", "/dev/ttyS0"); !strings.HasSuffix(got, "openlog-ttyS0.lock") {
		t.Errorf("LockPath() with default dir = %q", got)
	}
}

func TestLockContention(t *testing.T) {
	dir := t.TempDir()
	device := "/dev/ttyUSB9"

	first, err := acquireLock(dir, device, 0)
	if err != nil {
		t.Fatalf("first acquireLock() error = %v", err)
	}

	if _, err := acquireLock(dir, device, 0); !errors.Is(err, ErrPortBusy) {
		t.Errorf("second acquireLock() error = %v, want ErrPortBusy", err)
	}

	start := time.Now()
	if _, err := acquireLock(dir, device, 50*time.Millisecond); !errors.Is(err, ErrPortBusy) {
		t.Errorf("acquireLock() with timeout error = %v, want ErrPortBusy", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("acquireLock() returned after %v, want it to wait", elapsed)
	}

	// A different device has its own lock.
	other, err := acquireLock(dir, "/dev/ttyUSB8", 0)
	if err != nil {
		t.Fatalf("acquireLock() for other device error = %v", err)
	}
	defer other.Unlock()

	if err := first.Unlock(); err != nil {
		t.Fatal(err)
	}
	again, err := acquireLock(dir, device, 0)
	if err != nil {
		t.Fatalf("acquireLock() after release error = %v", err)
	}
	again.Unlock()
}

func TestAcquireLockEmptyPath(t *testing.T) {
	if _, err := acquireLock(t.TempDir(), "", 0); err == nil {
		t.Error("acquireLock() with empty path should fail")
	}
}

func TestOpenFailureReleasesLock(t *testing.T) {
	dir := t.TempDir()
	device := filepath.Join(dir, "no-such-tty")

	cfg := DefaultConfig()
	cfg.LockDir = dir

	if _, err := Open(device, cfg); err == nil {
		t.Fatal("Open() of a missing device should fail")
	}

	lock, err := acquireLock(dir, device, 0)
	if err != nil {
		t.Fatalf("lock still held after failed Open: %v", err)
	}
	lock.Unlock()
}

func TestOpenInvalidBaud(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaudRate = 0
	cfg.LockDir = t.TempDir()

	_, err := Open("/dev/ttyUSB0", cfg)
	if err == nil || !strings.Contains(err.Error(), "baud") {
		t.Errorf("Open() error = %v, want baud rate error", err)
	}
}

func TestParseResetLine(t *testing.T) {
	tests := []struct {
		input   string
		want    ResetLine
		wantErr bool
	}{
		{"dtr", ResetDTR, false},
		{"RTS", ResetRTS, false},
		{"none", ResetNone, false},
		{"", ResetNone, false},
		{"cts", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseResetLine(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResetLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseResetLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want 9600", cfg.BaudRate)
	}
	if cfg.ResetLine != ResetDTR {
		t.Errorf("ResetLine = %q, want dtr", cfg.ResetLine)
	}
	if cfg.PollTimeout <= 0 {
		t.Errorf("PollTimeout = %v, want > 0", cfg.PollTimeout)
	}
}

var errUnplugged = errors.New("device not configured")

type readResult struct {
	data string
	err  error
}

// fakeSerial serves scripted reads. Once the script is used up it returns
// fail, or times out with no data when fail is nil.
type fakeSerial struct {
	serial.Port

	reads   []readResult
	fail    error
	written []byte
	dtr     []bool
	rts     []bool
}

func (f *fakeSerial) Read(p []byte) (int, error) {
	if len(f.reads) == 0 {
		return 0, f.fail
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	if r.err != nil {
		return 0, r.err
	}
	return copy(p, r.data), nil
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakeSerial) SetDTR(v bool) error {
	f.dtr = append(f.dtr, v)
	return nil
}

func (f *fakeSerial) SetRTS(v bool) error {
	f.rts = append(f.rts, v)
	return nil
}

func TestPortReadError(t *testing.T) {
	dev := &fakeSerial{reads: []readResult{
		{data: "ab"},
		{err: errUnplugged},
		{data: "c"},
	}}
	p := &Port{port: dev, path: "/dev/ttyUSB0"}

	for _, want := range []byte("ab") {
		if !p.Available() {
			t.Fatal("Available() = false with data pending")
		}
		if b, err := p.ReadByte(); err != nil || b != want {
			t.Fatalf("ReadByte() = %q, %v; want %q", b, err, want)
		}
	}

	if !p.Available() {
		t.Fatal("Available() = false with a read error pending")
	}
	if _, err := p.ReadByte(); !errors.Is(err, errUnplugged) {
		t.Fatalf("ReadByte() error = %v, want %v", err, errUnplugged)
	}

	if b, err := p.ReadByte(); err != nil || b != 'c' {
		t.Fatalf("ReadByte() after error = %q, %v; want 'c'", b, err)
	}
	if p.Available() {
		t.Error("Available() = true on an idle line")
	}
	if _, err := p.ReadByte(); !errors.Is(err, protocol.ErrNoData) {
		t.Errorf("ReadByte() on idle line error = %v, want ErrNoData", err)
	}
}

func TestPortReadErrorReachesFramer(t *testing.T) {
	dev := &fakeSerial{fail: errUnplugged}
	p := &Port{port: dev, path: "/dev/ttyUSB0"}
	clock := sim.NewClock()
	f := protocol.NewFramer(p, clock, protocol.DefaultFramerConfig())

	_, err := f.Execute("sync", nil, protocol.PromptReady)
	if !errors.Is(err, errUnplugged) {
		t.Fatalf("Execute() error = %v, want %v", err, errUnplugged)
	}
	if errors.Is(err, protocol.ErrTimeout) {
		t.Error("read failure reported as a timeout")
	}
	if clock.Slept() != 0 {
		t.Errorf("framer waited %v on a failed port", clock.Slept())
	}
	if string(dev.written) != "sync\r" {
		t.Errorf("written = %q, want %q", dev.written, "sync\r")
	}
}

func TestLinePin(t *testing.T) {
	tests := []struct {
		line    ResetLine
		wantDTR []bool
		wantRTS []bool
	}{
		{ResetDTR, []bool{true, false}, nil},
		{ResetRTS, nil, []bool{true, false}},
	}

	for _, tt := range tests {
		t.Run(string(tt.line), func(t *testing.T) {
			dev := &fakeSerial{}
			pin := (&Port{port: dev, reset: tt.line}).ResetLine()
			if pin == nil {
				t.Fatal("ResetLine() = nil")
			}
			if err := pin.Set(false); err != nil {
				t.Fatal(err)
			}
			if err := pin.Set(true); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(dev.dtr, tt.wantDTR) || !slices.Equal(dev.rts, tt.wantRTS) {
				t.Errorf("dtr = %v, rts = %v; want %v, %v", dev.dtr, dev.rts, tt.wantDTR, tt.wantRTS)
			}
		})
	}

	if pin := (&Port{reset: ResetNone}).ResetLine(); pin != nil {
		t.Errorf("ResetLine() with no line = %v, want nil", pin)
	}
}
