package offload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"time"

	"github.com/sparkfun/OpenLog/openlog"
	"github.com/sparkfun/OpenLog/protocol"
)

// maxPrealloc caps the buffer reserved up front for a file.
const maxPrealloc = 1 << 20

// Source is the card side of an offload. *openlog.Driver implements it.
type Source interface {
	ChangeDir(ctx context.Context, name string) error
	ParentDir(ctx context.Context) error
	ListDir(ctx context.Context) ([]openlog.FileInfo, error)
	ReadFileTo(ctx context.Context, name string, w io.Writer) (int64, error)
	DeleteFile(ctx context.Context, name string) error
}

// Sink receives copied files.
type Sink interface {
	// Put stores size bytes read from r under name.
	Put(ctx context.Context, name string, r io.Reader, size int64) error

	// Close releases any connection held by the sink.
	Close() error
}

// Config holds the settings of an Offloader.
type Config struct {
	// Dir is the card directory to copy from; empty means the working directory
	Dir string

	// Pattern selects files by name; nil selects all
	Pattern *regexp.Regexp

	// Delete removes each file from the card after it was stored
	Delete bool

	Logger   Logger
	Progress ProgressCallback
	Clock    protocol.Clock
}

// Option configures an Offloader.
type Option func(*Config)

// WithDir copies from the card directory dir instead of the working
// directory. The driver returns to the working directory afterwards.
func WithDir(dir string) Option {
	return func(c *Config) {
		c.Dir = dir
	}
}

// WithPattern selects files whose names match re.
func WithPattern(re *regexp.Regexp) Option {
	return func(c *Config) {
		c.Pattern = re
	}
}

// WithDelete removes files from the card once they were stored.
func WithDelete(enabled bool) Option {
	return func(c *Config) {
		c.Delete = enabled
	}
}

// WithLogger sets a logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgressCallback sets a callback for progress updates.
func WithProgressCallback(cb ProgressCallback) Option {
	return func(c *Config) {
		c.Progress = cb
	}
}

// WithClock sets the clock used for ElapsedTime.
func WithClock(clock protocol.Clock) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// Result summarizes a run.
type Result struct {
	// Copied lists the files stored in the sink, in card order
	Copied []string

	// Deleted lists the copied files removed from the card
	Deleted []string

	// Skipped lists the files not matching the pattern
	Skipped []string

	// Failed maps file names to the error that stopped them
	Failed map[string]error

	// Bytes is the total delivered to the sink
	Bytes int64
}

// Err joins the per-file failures, or returns nil.
func (r Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %w", name, r.Failed[name]))
	}
	return errors.Join(errs...)
}

// Offloader copies files from an OpenLog card to a Sink.
type Offloader struct {
	Source Source
	Sink   Sink
	Config Config
}

// New creates an Offloader. It panics if src or sink is nil.
func New(src Source, sink Sink, opts ...Option) *Offloader {
	if src == nil {
		panic("source cannot be nil")
	}
	if sink == nil {
		panic("sink cannot be nil")
	}

	cfg := Config{Clock: protocol.SystemClock}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Offloader{Source: src, Sink: sink, Config: cfg}
}

// Run copies every selected file once. A file that fails is recorded in
// Result.Failed and the run goes on with the next one; the returned error
// is for failures that stop the whole run.
func (o *Offloader) Run(ctx context.Context) (Result, error) {
	res := Result{Failed: make(map[string]error)}
	start := o.Config.Clock.Now()
	elapsed := func() time.Duration { return o.Config.Clock.Now().Sub(start) }

	if o.Config.Dir != "" {
		if err := o.Source.ChangeDir(ctx, o.Config.Dir); err != nil {
			return res, fmt.Errorf("offload: enter %s: %w", o.Config.Dir, err)
		}
		defer func() {
			if err := o.Source.ParentDir(context.WithoutCancel(ctx)); err != nil {
				o.logError("leaving directory failed", "dir", o.Config.Dir, "error", err)
			}
		}()
	}

	o.report(Progress{Phase: "listing", ElapsedTime: elapsed()})

	entries, err := o.Source.ListDir(ctx)
	if err != nil {
		return res, fmt.Errorf("offload: list: %w", err)
	}

	var selected []openlog.FileInfo
	for _, fi := range entries {
		if o.Config.Pattern != nil && !o.Config.Pattern.MatchString(fi.Name) {
			res.Skipped = append(res.Skipped, fi.Name)
			continue
		}
		selected = append(selected, fi)
	}
	o.logInfo("offload started", "dir", o.Config.Dir, "files", len(selected), "skipped", len(res.Skipped))

	total := len(selected)
	for i, fi := range selected {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		o.report(Progress{
			Phase:       "copying",
			CurrentFile: fi.Name,
			FileIndex:   i,
			TotalFiles:  total,
			Percentage:  float64(i) / float64(total) * 100,
			BytesCopied: res.Bytes,
			ElapsedTime: elapsed(),
		})

		n, err := o.copyFile(ctx, fi)
		if err != nil {
			o.logError("copy failed", "file", fi.Name, "error", err)
			res.Failed[fi.Name] = err
			continue
		}
		res.Copied = append(res.Copied, fi.Name)
		res.Bytes += n

		if !o.Config.Delete {
			continue
		}
		o.report(Progress{
			Phase:       "deleting",
			CurrentFile: fi.Name,
			FileIndex:   i,
			TotalFiles:  total,
			Percentage:  float64(i) / float64(total) * 100,
			BytesCopied: res.Bytes,
			ElapsedTime: elapsed(),
		})
		if err := o.Source.DeleteFile(ctx, fi.Name); err != nil {
			o.logError("delete failed", "file", fi.Name, "error", err)
			res.Failed[fi.Name] = fmt.Errorf("delete after copy: %w", err)
			continue
		}
		res.Deleted = append(res.Deleted, fi.Name)
	}

	o.report(Progress{
		Phase:       "complete",
		FileIndex:   total,
		TotalFiles:  total,
		Percentage:  100,
		BytesCopied: res.Bytes,
		ElapsedTime: elapsed(),
	})
	o.logInfo("offload complete",
		"copied", len(res.Copied),
		"failed", len(res.Failed),
		"bytes", res.Bytes,
		"elapsed", elapsed().String(),
	)
	return res, nil
}

// copyFile reads the whole file before the sink sees any of it.
func (o *Offloader) copyFile(ctx context.Context, fi openlog.FileInfo) (int64, error) {
	var buf bytes.Buffer
	if size := fi.Size.Uint32(); size <= maxPrealloc {
		buf.Grow(int(size))
	}

	n, err := o.Source.ReadFileTo(ctx, fi.Name, &buf)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	if err := o.Sink.Put(ctx, fi.Name, &buf, n); err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	return n, nil
}

func (o *Offloader) report(p Progress) {
	if o.Config.Progress != nil {
		o.Config.Progress(p)
	}
}

func (o *Offloader) logInfo(msg string, keysAndValues ...interface{}) {
	if o.Config.Logger != nil {
		o.Config.Logger.Info(msg, keysAndValues...)
	}
}

func (o *Offloader) logError(msg string, keysAndValues ...interface{}) {
	if o.Config.Logger != nil {
		o.Config.Logger.Error(msg, keysAndValues...)
	}
}
