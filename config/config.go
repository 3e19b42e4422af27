package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/sparkfun/OpenLog/openlog"
	"github.com/sparkfun/OpenLog/protocol"
	"github.com/sparkfun/OpenLog/serialport"
)

// Config is the on-disk configuration of a host attached to an OpenLog.
type Config struct {
	Port    Port    `toml:"port"`
	Link    Link    `toml:"link"`
	Offload Offload `toml:"offload"`
}

// Port describes the serial device.
type Port struct {
	Path        string   `toml:"path"`
	Baud        int      `toml:"baud"`
	ResetLine   string   `toml:"reset_line"` // dtr, rts, none
	LockDir     string   `toml:"lock_dir"`
	LockTimeout Duration `toml:"lock_timeout"`
}

// Link holds the driver timing and retry settings.
type Link struct {
	ReplyTimeout      Duration `toml:"reply_timeout"`
	StatusTimeout     Duration `toml:"status_timeout"`
	PollInterval      Duration `toml:"poll_interval"`
	ListAttempts      int      `toml:"list_attempts"`
	OpenAttempts      int      `toml:"open_attempts"`
	WriteAttempts     int      `toml:"write_attempts"`
	WriteRetryDelay   Duration `toml:"write_retry_delay"`
	ReplyBufferSize   int      `toml:"reply_buffer_size"`
	ReadChunkSize     int      `toml:"read_chunk_size"`
	OptimisticAdvance bool     `toml:"optimistic_advance"`
}

// Offload configures copying log files off the card.
type Offload struct {
	Schedule string `toml:"schedule"` // standard 5-field cron spec; empty runs once
	Dir      string `toml:"dir"`      // card directory, relative to the root
	Pattern  string `toml:"pattern"`  // regexp on file names; empty matches all
	Delete   bool   `toml:"delete"`   // remove from the card after upload
	Sink     string `toml:"sink"`     // local, sftp, ftp
	Target   string `toml:"target"`   // directory on the sink
	Auth     *Auth  `toml:"auth,omitempty"`
}

// Auth holds remote sink credentials.
type Auth struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// KnownHosts is an OpenSSH known_hosts file checked by the sftp sink.
	// Empty accepts any host key.
	KnownHosts string `toml:"known_hosts"`
}

// Duration is a time.Duration written as a string such as "1.5s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used for settings a file leaves out.
func Default() *Config {
	return &Config{
		Port: Port{
			Baud:      9600,
			ResetLine: string(serialport.ResetDTR),
		},
		Link: Link{
			ReplyTimeout:    Duration(protocol.DefaultReplyTimeout),
			StatusTimeout:   Duration(protocol.DefaultStatusTimeout),
			PollInterval:    Duration(protocol.DefaultPollInterval),
			ListAttempts:    3,
			OpenAttempts:    3,
			WriteAttempts:   3,
			WriteRetryDelay: Duration(500 * time.Millisecond),
			ReplyBufferSize: protocol.DefaultReplyBufferSize,
			ReadChunkSize:   64,
		},
		Offload: Offload{
			Sink:   "local",
			Target: "offload",
		},
	}
}

// Load reads and validates the TOML file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validBauds = map[int]bool{
	2400: true, 4800: true, 9600: true, 19200: true,
	38400: true, 57600: true, 115200: true,
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Port.Path == "" {
		return fmt.Errorf("port path is required")
	}
	if !validBauds[c.Port.Baud] {
		return fmt.Errorf("baud rate %d is not supported by the OpenLog", c.Port.Baud)
	}
	if _, err := serialport.ParseResetLine(c.Port.ResetLine); err != nil {
		return fmt.Errorf("reset_line must be dtr, rts or none")
	}
	if c.Port.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must not be negative")
	}

	l := c.Link
	if l.ReplyTimeout <= 0 || l.StatusTimeout <= 0 || l.PollInterval <= 0 {
		return fmt.Errorf("link timeouts must be positive")
	}
	if l.PollInterval > l.StatusTimeout {
		return fmt.Errorf("poll_interval must not exceed status_timeout")
	}
	for _, n := range []int{l.ListAttempts, l.OpenAttempts, l.WriteAttempts} {
		if n < 1 || n > 10 {
			return fmt.Errorf("attempts must be between 1 and 10")
		}
	}
	if l.WriteRetryDelay < 0 {
		return fmt.Errorf("write_retry_delay must not be negative")
	}
	if l.ReplyBufferSize < protocol.StatusSize || l.ReplyBufferSize > 4096 {
		return fmt.Errorf("reply_buffer_size must be between %d and 4096", protocol.StatusSize)
	}
	if l.ReadChunkSize < 1 || l.ReadChunkSize > 512 {
		return fmt.Errorf("read_chunk_size must be between 1 and 512")
	}

	return c.Offload.validate()
}

func (o Offload) validate() error {
	if o.Schedule != "" {
		if _, err := cron.ParseStandard(o.Schedule); err != nil {
			return fmt.Errorf("offload schedule %q: %v", o.Schedule, err)
		}
	}
	if o.Pattern != "" {
		if _, err := regexp.Compile(o.Pattern); err != nil {
			return fmt.Errorf("offload pattern %q: %v", o.Pattern, err)
		}
	}
	if o.Dir != "" {
		if err := protocol.ValidateDirName(o.Dir); err != nil {
			return fmt.Errorf("offload dir: %v", err)
		}
	}

	switch o.Sink {
	case "local":
		if o.Target == "" {
			return fmt.Errorf("offload target is required")
		}
	case "sftp", "ftp":
		if o.Auth == nil || o.Auth.Host == "" || o.Auth.User == "" {
			return fmt.Errorf("offload sink %s requires auth host and user", o.Sink)
		}
		if o.Auth.Port < 0 || o.Auth.Port > 65535 {
			return fmt.Errorf("offload auth port must be between 0 and 65535")
		}
	default:
		return fmt.Errorf("offload sink must be local, sftp or ftp")
	}
	return nil
}

// SerialConfig returns the settings for serialport.Open.
func (c *Config) SerialConfig() serialport.Config {
	line, _ := serialport.ParseResetLine(c.Port.ResetLine)

	sc := serialport.DefaultConfig()
	sc.BaudRate = c.Port.Baud
	sc.ResetLine = line
	sc.LockDir = c.Port.LockDir
	sc.LockTimeout = c.Port.LockTimeout.Std()
	return sc
}

// DriverOptions maps the link settings to driver options.
func (c *Config) DriverOptions() []openlog.Option {
	l := c.Link
	return []openlog.Option{
		openlog.WithReplyTimeout(l.ReplyTimeout.Std()),
		openlog.WithStatusTimeout(l.StatusTimeout.Std()),
		openlog.WithPollInterval(l.PollInterval.Std()),
		openlog.WithRetries(l.ListAttempts, l.OpenAttempts, l.WriteAttempts),
		openlog.WithWriteRetryDelay(l.WriteRetryDelay.Std()),
		openlog.WithReplyBufferSize(l.ReplyBufferSize),
		openlog.WithReadChunkSize(l.ReadChunkSize),
		openlog.WithOptimisticAdvance(l.OptimisticAdvance),
	}
}
