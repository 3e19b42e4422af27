package openlog

import (
	"context"
	"errors"
	"testing"

	"github.com/sparkfun/OpenLog/protocol"
)

func TestListDir(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("1"))
	dev.AddFile("b.txt", []byte("22"))
	dev.AddFile("c.txt", []byte("333"))
	dev.AddDir("LOGS")
	ctx := context.Background()

	if err := drv.ListDirStart(ctx); err != nil {
		t.Fatalf("ListDirStart() error = %v", err)
	}
	if got := drv.State(); !got.Listing {
		t.Errorf("State() = %v, want ListingActive", got)
	}
	if got := drv.ListDirCount(); got != 3 {
		t.Fatalf("ListDirCount() = %d, want 3", got)
	}

	want := []struct {
		name string
		size uint32
	}{
		{"a.txt", 1},
		{"b.txt", 2},
		{"c.txt", 3},
	}
	for i, w := range want {
		fi, err := drv.ListDirNext(ctx)
		if err != nil {
			t.Fatalf("ListDirNext() #%d error = %v", i, err)
		}
		if fi.Name != w.name || fi.Size.Uint32() != w.size {
			t.Errorf("entry %d = %s/%d, want %s/%d", i, fi.Name, fi.Size.Uint32(), w.name, w.size)
		}
	}

	if _, err := drv.ListDirNext(ctx); !errors.Is(err, ErrNoEntry) {
		t.Errorf("ListDirNext() past end error = %v, want ErrNoEntry", err)
	}

	drv.ListDirEnd()
	if got := drv.ListDirCount(); got != -1 {
		t.Errorf("ListDirCount() after end = %d, want -1", got)
	}
	if _, err := drv.ListDirNext(ctx); !errors.Is(err, ErrNoListing) {
		t.Errorf("ListDirNext() after end error = %v, want ErrNoListing", err)
	}
}

func TestListDirStartTwice(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("1"))
	ctx := context.Background()

	if err := drv.ListDirStart(ctx); err != nil {
		t.Fatal(err)
	}
	if err := drv.ListDirStart(ctx); !errors.Is(err, ErrListingActive) {
		t.Errorf("second ListDirStart() error = %v, want ErrListingActive", err)
	}
	if got := drv.ListDirCount(); got != 1 {
		t.Errorf("ListDirCount() = %d, want 1", got)
	}
}

func TestListDirStartRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantErr   bool
		wantCount int
	}{
		{"first attempt", 0, false, 2},
		{"third attempt", 2, false, 2},
		{"exhausted", 3, true, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv, dev, _ := newTestDriver(t)
			dev.AddFile("a.txt", nil)
			dev.AddFile("b.txt", nil)
			dev.FailReplies(tt.failures)

			err := drv.ListDirStart(context.Background())
			if tt.wantErr {
				var retryErr *RetryError
				if !errors.As(err, &retryErr) || retryErr.Attempts != 3 {
					t.Errorf("ListDirStart() error = %v, want *RetryError with 3 attempts", err)
				}
				if got := drv.State(); got.Listing {
					t.Errorf("State() = %v, want NoListing", got)
				}
			} else if err != nil {
				t.Errorf("ListDirStart() error = %v", err)
			}

			if got := drv.ListDirCount(); got != tt.wantCount {
				t.Errorf("ListDirCount() = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestListDirNextFailure(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("1"))
	dev.AddFile("b.txt", []byte("2"))
	ctx := context.Background()

	if err := drv.ListDirStart(ctx); err != nil {
		t.Fatal(err)
	}

	dev.Garble(1)
	_, err := drv.ListDirNext(ctx)
	if !errors.Is(err, ErrNoEntry) || !errors.Is(err, protocol.ErrMalformedReply) {
		t.Fatalf("ListDirNext() error = %v, want ErrNoEntry wrapping ErrMalformedReply", err)
	}

	// The failed entry is fetched again.
	fi, err := drv.ListDirNext(ctx)
	if err != nil {
		t.Fatalf("ListDirNext() retry error = %v", err)
	}
	if fi.Name != "a.txt" {
		t.Errorf("ListDirNext() = %q, want a.txt", fi.Name)
	}

	dev.FailReplies(1)
	if _, err := drv.ListDirNext(ctx); !protocol.IsStatusError(err) {
		t.Errorf("ListDirNext() error = %v, want a status error", err)
	}
	if got := drv.State(); !got.Listing {
		t.Errorf("State() = %v, want listing to stay active", got)
	}
}

func TestListDirCollect(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("1"))
	dev.AddFile("b.txt", []byte("22"))
	ctx := context.Background()

	entries, err := drv.ListDir(ctx)
	if err != nil {
		t.Fatalf("ListDir() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a.txt" || entries[1].Name != "b.txt" {
		t.Fatalf("ListDir() = %+v", entries)
	}
	if entries[1].Size.Uint32() != 2 {
		t.Errorf("entries[1].Size = %d, want 2", entries[1].Size.Uint32())
	}
	if got := drv.State(); got.Listing {
		t.Errorf("State() = %v, want NoListing after ListDir", got)
	}

	// Entries are copies and survive later calls.
	if _, err := drv.Stat(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if entries[1].Name != "b.txt" {
		t.Errorf("entries[1] changed to %q", entries[1].Name)
	}
}

func TestListDirHugeCount(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("1"))
	dev.AddFile("b.txt", []byte("22"))
	dev.ReportCount(2000000000)
	ctx := context.Background()

	entries, err := drv.ListDir(ctx)
	if !errors.Is(err, ErrNoEntry) {
		t.Fatalf("ListDir() error = %v, want ErrNoEntry", err)
	}
	if len(entries) != 2 {
		t.Errorf("ListDir() returned %d entries, want 2", len(entries))
	}
	if cap(entries) > listPrealloc {
		t.Errorf("cap(entries) = %d, want at most %d", cap(entries), listPrealloc)
	}
	if got := drv.State(); got.Listing {
		t.Errorf("State() = %v, want NoListing after ListDir", got)
	}

	dev.ReportCount(-1)
	if entries, err := drv.ListDir(ctx); err != nil || len(entries) != 2 {
		t.Errorf("ListDir() after restore = %d entries, %v", len(entries), err)
	}
}

func TestListingKeepsOpenFile(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("hello"))
	dev.AddFile("b.txt", []byte("hi"))
	ctx := context.Background()

	if err := drv.OpenFile(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := drv.ReadFile(ctx, make([]byte, 2)); err != nil {
		t.Fatal(err)
	}
	if _, err := drv.ListDir(ctx); err != nil {
		t.Fatal(err)
	}

	info, open := drv.OpenFileInfo()
	if !open || info.Name != "a.txt" || info.Size.Uint32() != 5 || info.Position.Uint32() != 2 {
		t.Errorf("OpenFileInfo() = %+v, %v; want a.txt 5/2", info, open)
	}
}

func TestChangeDir(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("abc"))
	dev.AddDir("LOGS/2024")
	ctx := context.Background()

	if err := drv.OpenFile(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := drv.ListDirStart(ctx); err != nil {
		t.Fatal(err)
	}

	if err := drv.ChangeDir(ctx, "LOGS"); err != nil {
		t.Fatalf("ChangeDir() error = %v", err)
	}
	if got := drv.State(); got != (State{}) {
		t.Errorf("State() = %v, want NoFileOpen+NoListing", got)
	}
	if err := drv.ChangeDir(ctx, "2024"); err != nil {
		t.Fatalf("ChangeDir() error = %v", err)
	}
	if got := drv.WorkingDir(); got != "/LOGS/2024" {
		t.Errorf("WorkingDir() = %q, want /LOGS/2024", got)
	}
	if got := dev.WorkingDir(); got != "/LOGS/2024" {
		t.Errorf("peripheral working dir = %q, want /LOGS/2024", got)
	}

	if err := drv.ParentDir(ctx); err != nil {
		t.Fatalf("ParentDir() error = %v", err)
	}
	if err := drv.ParentDir(ctx); err != nil {
		t.Fatalf("ParentDir() error = %v", err)
	}
	if got := drv.WorkingDir(); got != "/" {
		t.Errorf("WorkingDir() = %q, want /", got)
	}

	err := drv.ParentDir(ctx)
	if !protocol.IsStatusError(err) {
		t.Errorf("ParentDir() at root error = %v, want a status error", err)
	}
	if got := drv.WorkingDir(); got != "/" {
		t.Errorf("WorkingDir() after failed ParentDir = %q, want /", got)
	}
}

func TestChangeDirFailureClosesFile(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("abc"))
	ctx := context.Background()

	if err := drv.OpenFile(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}

	err := drv.ChangeDir(ctx, "MISSING")
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "cd" || opErr.Name != "MISSING" {
		t.Fatalf("ChangeDir() error = %v, want *OperationError for cd MISSING", err)
	}
	if got := drv.State(); got.FileOpen {
		t.Errorf("State() = %v, want NoFileOpen", got)
	}
	if got := drv.WorkingDir(); got != "/" {
		t.Errorf("WorkingDir() = %q, want /", got)
	}
}

func TestChangeDirInvalidName(t *testing.T) {
	drv, dev, _ := newTestDriver(t)

	for _, name := range []string{"..", ".", "a/b", ""} {
		if err := drv.ChangeDir(context.Background(), name); !errors.Is(err, protocol.ErrInvalidArgument) {
			t.Errorf("ChangeDir(%q) error = %v, want ErrInvalidArgument", name, err)
		}
	}
	if len(dev.Commands()) != 0 {
		t.Errorf("commands sent = %q, want none", dev.Commands())
	}
}

func TestDeleteFile(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantOpen bool
	}{
		{"other file", "b.txt", true},
		{"open file", "a.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv, dev, _ := newTestDriver(t)
			dev.AddFile("a.txt", []byte("a"))
			dev.AddFile("b.txt", []byte("b"))
			ctx := context.Background()

			if err := drv.OpenFile(ctx, "a.txt"); err != nil {
				t.Fatal(err)
			}
			if err := drv.ListDirStart(ctx); err != nil {
				t.Fatal(err)
			}

			if err := drv.DeleteFile(ctx, tt.target); err != nil {
				t.Fatalf("DeleteFile() error = %v", err)
			}
			if _, ok := dev.File(tt.target); ok {
				t.Errorf("%s still exists", tt.target)
			}

			got := drv.State()
			if got.FileOpen != tt.wantOpen {
				t.Errorf("State() = %v, want FileOpen=%v", got, tt.wantOpen)
			}
			if got.Listing {
				t.Errorf("State() = %v, want NoListing", got)
			}
		})
	}
}

func TestDeleteMissingFile(t *testing.T) {
	drv, _, _ := newTestDriver(t)

	err := drv.DeleteFile(context.Background(), "missing.txt")
	if !protocol.IsStatusError(err) {
		t.Errorf("DeleteFile() error = %v, want a status error", err)
	}
}

func TestMakeDir(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	ctx := context.Background()

	if err := drv.MakeDir(ctx, "DATA"); err != nil {
		t.Fatalf("MakeDir() error = %v", err)
	}
	if !dev.HasDir("DATA") {
		t.Error("DATA was not created")
	}
	if err := drv.MakeDir(ctx, "DATA"); !protocol.IsStatusError(err) {
		t.Errorf("MakeDir() existing error = %v, want a status error", err)
	}
	if err := drv.MakeDir(ctx, "a|b"); !errors.Is(err, protocol.ErrInvalidArgument) {
		t.Errorf("MakeDir() invalid error = %v, want ErrInvalidArgument", err)
	}
}

func TestSync(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.AddFile("a.txt", []byte("abc"))
	ctx := context.Background()

	if err := drv.OpenFile(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := drv.ListDirStart(ctx); err != nil {
		t.Fatal(err)
	}

	if err := drv.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if got := drv.State(); got != (State{FileOpen: true}) {
		t.Errorf("State() = %v, want FileOpen+NoListing", got)
	}
}

func TestSimpleCommandDeadLink(t *testing.T) {
	drv, dev, _ := newTestDriver(t)
	dev.DropReplies(1)

	// The liveness probe passes; the dropped reply times out.
	err := drv.Sync(context.Background())
	if !errors.Is(err, protocol.ErrTimeout) {
		t.Errorf("Sync() error = %v, want ErrTimeout", err)
	}
	if err := drv.Ping(context.Background()); err != nil {
		t.Errorf("Ping() after timeout error = %v", err)
	}
}
