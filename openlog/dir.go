package openlog

import (
	"context"

	"github.com/sparkfun/OpenLog/protocol"
)

// simple runs a command that expects the ready prompt and an empty body.
// The transition of op is applied first, then the shell is probed.
func (d *Driver) simple(ctx context.Context, op operation, opName, name, cmd string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.sess.apply(op, name)

	if err := d.alive(); err != nil {
		return &OperationError{Op: opName, Name: name, Err: err}
	}
	if _, err := d.execute(cmd, nil, protocol.PromptReady); err != nil {
		return &OperationError{Op: opName, Name: name, Err: err}
	}
	return nil
}

// DeleteFile removes a file or an empty directory from the working
// directory. The open file is closed if it is the one deleted.
func (d *Driver) DeleteFile(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd, err := protocol.BuildRemoveCmd(name)
	if err != nil {
		return &OperationError{Op: "delete", Name: name, Err: err}
	}
	return d.simple(ctx, opDelete, "delete", name, cmd)
}

// MakeDir creates a directory in the working directory.
func (d *Driver) MakeDir(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd, err := protocol.BuildMakeDirCmd(name)
	if err != nil {
		return &OperationError{Op: "mkdir", Name: name, Err: err}
	}
	return d.simple(ctx, opMakeDir, "mkdir", name, cmd)
}

// ChangeDir enters the subdirectory name. Any open file is closed and any
// listing ends, whether or not the peripheral confirms.
func (d *Driver) ChangeDir(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd, err := protocol.BuildChangeDirCmd(name)
	if err != nil {
		return &OperationError{Op: "cd", Name: name, Err: err}
	}
	if err := d.simple(ctx, opChangeDir, "cd", name, cmd); err != nil {
		return err
	}

	d.sess.dirs = append(d.sess.dirs, name)
	d.logDebug("working directory", "path", d.sess.workingDir())
	return nil
}

// ParentDir returns to the parent directory ("cd ..").
func (d *Driver) ParentDir(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.simple(ctx, opParentDir, "cd", protocol.ArgParentDir, protocol.BuildParentDirCmd()); err != nil {
		return err
	}

	if n := len(d.sess.dirs); n > 0 {
		d.sess.dirs = d.sess.dirs[:n-1]
	}
	d.logDebug("working directory", "path", d.sess.workingDir())
	return nil
}

// Sync flushes buffered writes to the card.
func (d *Driver) Sync(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.simple(ctx, opSync, "sync", "", protocol.BuildSyncCmd())
}
