package openlog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sparkfun/OpenLog/protocol"
	"github.com/sparkfun/OpenLog/word"
)

// Stat returns the size of name in the working directory.
//
// The returned FileInfo is shared and stays valid only until the next
// driver call. ErrNotFound is returned when the peripheral reports no such
// file or the reply carries no size.
func (d *Driver) Stat(ctx context.Context, name string) (*FileInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := protocol.ValidateName(name); err != nil {
		return nil, &OperationError{Op: "stat", Name: name, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.stat(name)
}

func (d *Driver) stat(name string) (*FileInfo, error) {
	d.sess.apply(opStat, name)

	cmd, err := protocol.BuildSizeCmd(name)
	if err != nil {
		return nil, &OperationError{Op: "stat", Name: name, Err: err}
	}
	if err := d.alive(); err != nil {
		return nil, &OperationError{Op: "stat", Name: name, Err: err}
	}

	reply, err := d.execute(cmd, nil, protocol.PromptReady)
	if err != nil {
		return nil, &OperationError{Op: "stat", Name: name, Err: err}
	}

	size, err := protocol.ParseSizeReply(reply)
	if err != nil {
		return nil, &OperationError{Op: "stat", Name: name, Err: fmt.Errorf("%w: %w", ErrNotFound, err)}
	}
	if size.IsNegative() {
		return nil, &OperationError{Op: "stat", Name: name, Err: ErrNotFound}
	}

	d.info = FileInfo{Name: name, Size: size, Position: word.Zero}
	return &d.info, nil
}

// OpenFile opens name in the working directory for reading. The size is
// probed up to OpenAttempts times. Only one file can be open at a time.
//
// Example:
//
//	if err := drv.OpenFile(ctx, "LOG00001.TXT"); err != nil {
//	    return err
//	}
//	defer drv.CloseFile()
func (d *Driver) OpenFile(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openFile(ctx, name)
}

func (d *Driver) openFile(ctx context.Context, name string) error {
	if d.sess.open {
		return ErrFileOpen
	}
	if err := protocol.ValidateName(name); err != nil {
		return &OperationError{Op: "open", Name: name, Err: err}
	}

	var size word.Word
	err := d.retry(ctx, "open "+name, d.config.OpenAttempts, 0, func() error {
		fi, err := d.stat(name)
		if err != nil {
			return err
		}
		size = fi.Size
		return nil
	})
	if err != nil {
		return err
	}

	d.sess.openFile(name, size)
	d.logDebug("file opened", "name", name, "size", size.UnsignedString())
	return nil
}

// CloseFile closes the open file. It only changes local state and is safe
// to call when no file is open.
func (d *Driver) CloseFile() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sess.closeFile()
}

// SetPosition moves the read position of the open file. Positions up to
// and including the file size are valid.
func (d *Driver) SetPosition(pos word.Word) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.sess.open {
		return ErrFileNotOpen
	}
	if pos.CmpU(d.sess.cursor.Size) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrInvalidPosition,
			pos.UnsignedString(), d.sess.cursor.Size.UnsignedString())
	}
	d.sess.cursor.Position = pos
	return nil
}

// Position returns the read position of the open file, or zero.
func (d *Driver) Position() word.Word {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess.cursor.Position
}

// OpenFileInfo returns a copy of the open file's name, size and position.
func (d *Driver) OpenFileInfo() (FileInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess.cursor, d.sess.open
}

// ReadFile reads up to len(p) bytes from the open file at the current
// position. It returns io.EOF once the position reaches the file size.
//
// The position advances by len(p), stopping at the file size. By default
// this happens after the read is confirmed; see WithOptimisticAdvance.
func (d *Driver) ReadFile(ctx context.Context, p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return d.readFile(p)
}

func (d *Driver) readFile(p []byte) (int, error) {
	if !d.sess.open {
		return 0, ErrFileNotOpen
	}
	if len(p) == 0 {
		return 0, nil
	}
	cur := d.sess.cursor
	if cur.Position.CmpU(cur.Size) >= 0 {
		return 0, io.EOF
	}

	cmd, err := protocol.BuildReadCmd(cur.Name, cur.Position, len(p))
	if err != nil {
		return 0, &OperationError{Op: "read", Name: cur.Name, Err: err}
	}

	if d.config.OptimisticAdvance {
		d.sess.advance(len(p))
	}
	reply, err := d.execute(cmd, p, protocol.PromptReady)
	if err != nil {
		return 0, &OperationError{Op: "read", Name: cur.Name, Err: err}
	}
	if !d.config.OptimisticAdvance {
		d.sess.advance(len(p))
	}

	return len(reply.Body), nil
}

// ReadFileTo copies the whole of name to w in ReadChunkSize pieces and
// returns the number of bytes written. The file is opened and closed
// around the copy, so no other file may be open.
func (d *Driver) ReadFileTo(ctx context.Context, name string, w io.Writer) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.openFile(ctx, name); err != nil {
		return 0, err
	}
	defer d.sess.closeFile()

	buf := make([]byte, d.config.ReadChunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := d.readFile(buf)
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}

		if n > 0 {
			written, werr := w.Write(buf[:n])
			total += int64(written)
			if werr != nil {
				return total, fmt.Errorf("copy %s: %w", name, werr)
			}
		}
	}
}

// WriteFile stores data in name, creating the file if necessary.
//
// In write mode (appendMode false) data replaces the file content and must
// be a single line. In append mode data is added to the end of the file
// and may contain line breaks. Neither may contain the escape byte.
//
// Each attempt runs the whole sequence: stat, create if missing, enter
// streaming mode, send the payload, leave streaming mode, check the shell
// answers. Up to WriteAttempts attempts are made, WriteRetryDelay apart.
//
// Example:
//
//	err := drv.WriteFile(ctx, "CONFIG.TXT", []byte("9600,26,3,0"), false)
func (d *Driver) WriteFile(ctx context.Context, name string, data []byte, appendMode bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := protocol.ValidateName(name); err != nil {
		return &OperationError{Op: "write", Name: name, Err: err}
	}
	if err := protocol.ValidatePayload(data, appendMode); err != nil {
		return &OperationError{Op: "write", Name: name, Err: fmt.Errorf("%w: %w", ErrInvalidPayload, err)}
	}

	d.sess.apply(opWrite, name)

	err := d.retry(ctx, "write "+name, d.config.WriteAttempts, d.config.WriteRetryDelay, func() error {
		return d.writeOnce(ctx, name, data, appendMode)
	})
	if err != nil {
		return err
	}

	// The open file may have been rewritten.
	if d.sess.open && d.sess.cursor.Name == name {
		if fi, err := d.stat(name); err == nil {
			d.sess.resize(fi.Size)
		}
	}
	return nil
}

func (d *Driver) writeOnce(ctx context.Context, name string, data []byte, appendMode bool) error {
	_, err := d.stat(name)
	switch {
	case errors.Is(err, ErrNotFound):
		cmd, err := protocol.BuildNewCmd(name)
		if err != nil {
			return err
		}
		if _, err := d.execute(cmd, nil, protocol.PromptReady); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		if _, err := d.stat(name); err != nil {
			return fmt.Errorf("create: %w", err)
		}
	case err != nil:
		return err
	}

	var cmd string
	if appendMode {
		cmd, err = protocol.BuildAppendCmd(name)
	} else {
		cmd, err = protocol.BuildWriteCmd(name)
	}
	if err != nil {
		return err
	}
	if _, err := d.execute(cmd, nil, protocol.PromptReceive); err != nil {
		return err
	}

	if err := d.framer.SendBytes(data); err != nil {
		return err
	}

	if appendMode {
		d.config.Clock.Sleep(d.config.AppendSettle)
		if err := d.abort(ctx); err != nil {
			// The liveness check below decides.
			d.logDebug("append escape not acknowledged", "name", name, "error", err)
		}
	} else {
		d.config.Clock.Sleep(d.config.WriteSettle)
		if err := d.framer.SendByte(protocol.CR); err != nil {
			return err
		}
	}

	return d.alive()
}
