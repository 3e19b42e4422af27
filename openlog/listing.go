package openlog

import (
	"context"
	"fmt"

	"github.com/sparkfun/OpenLog/protocol"
	"github.com/sparkfun/OpenLog/word"
)

// ListDirStart begins a listing of the files in the working directory.
// The file count is requested with efcount, retried up to ListAttempts
// times.
//
// Example:
//
//	if err := drv.ListDirStart(ctx); err != nil {
//	    return err
//	}
//	defer drv.ListDirEnd()
//	for {
//	    fi, err := drv.ListDirNext(ctx)
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(fi.Name, fi.Size.UnsignedString())
//	}
func (d *Driver) ListDirStart(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listStart(ctx)
}

func (d *Driver) listStart(ctx context.Context) error {
	if d.sess.listing.active {
		return ErrListingActive
	}

	var count int
	err := d.retry(ctx, "list directory", d.config.ListAttempts, 0, func() error {
		reply, err := d.execute(protocol.BuildFileCountCmd(), nil, protocol.PromptReady)
		if err != nil {
			return err
		}
		count, err = protocol.ParseCountReply(reply)
		return err
	})
	if err != nil {
		d.sess.listing.reset()
		return err
	}

	d.sess.listing.start(count)
	d.logDebug("listing started", "count", count)
	return nil
}

// ListDirCount returns the number of entries of the active listing, or -1
// when no listing is active.
func (d *Driver) ListDirCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess.listing.count
}

// ListDirNext returns the next listing entry.
//
// The returned FileInfo is shared and stays valid only until the next
// driver call; copy it to keep it. ErrNoEntry is returned once all entries
// were read, and also, wrapping the cause, when an entry cannot be fetched.
// A failed entry can be retried with another call.
func (d *Driver) ListDirNext(ctx context.Context) (*FileInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listNext(ctx)
}

func (d *Driver) listNext(ctx context.Context) (*FileInfo, error) {
	l := &d.sess.listing
	if !l.active {
		return nil, ErrNoListing
	}
	if l.index >= l.count {
		return nil, ErrNoEntry
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd, err := protocol.BuildFileInfoCmd(l.index)
	if err != nil {
		return nil, err
	}
	reply, err := d.execute(cmd, nil, protocol.PromptReady)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %d: %w", ErrNoEntry, l.index, err)
	}
	name, size, err := protocol.ParseInfoReply(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %d: %w", ErrNoEntry, l.index, err)
	}

	d.info = FileInfo{Name: name, Size: size, Position: word.Zero}
	l.index++
	return &d.info, nil
}

// ListDirEnd ends the active listing. It is safe to call at any time.
func (d *Driver) ListDirEnd() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sess.listing.reset()
}

// listPrealloc caps the entries reserved up front; the count comes from
// the wire.
const listPrealloc = 64

// ListDir returns copies of all entries of the working directory.
// It fails with ErrListingActive while another listing is in progress.
func (d *Driver) ListDir(ctx context.Context) ([]FileInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.listStart(ctx); err != nil {
		return nil, err
	}
	defer d.sess.listing.reset()

	entries := make([]FileInfo, 0, min(d.sess.listing.count, listPrealloc))
	for len(entries) < d.sess.listing.count {
		fi, err := d.listNext(ctx)
		if err != nil {
			return entries, fmt.Errorf("list directory: %w", err)
		}
		entries = append(entries, *fi)
	}
	return entries, nil
}
