// Package openlog provides a high-level API for the SparkFun OpenLog command shell.
//
// # Overview
//
// This package drives the shell one command at a time and keeps the state
// the peripheral only reveals through replies:
//   - the open file and its read position
//   - the directory listing cursor
//   - the working directory
//
// # Basic Usage
//
//	// User provides the byte link (protocol.Transport)
//	port, err := serialport.Open("/dev/ttyUSB0", serialport.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	drv := openlog.New(port, openlog.WithResetPin(port.ResetLine()))
//
//	ctx := context.Background()
//	if err := drv.Restart(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := drv.Init(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = drv.WriteFile(ctx, "NOTES.TXT", []byte("hello"), false)
//
// # Session State
//
// The driver is always in one of four states, {NoFileOpen, FileOpen} x
// {NoListing, ListingActive}. Commands that may change the card invalidate
// the affected local state before they are sent:
//
//	operation    closes file          ends listing
//	delete       if it is the target  yes
//	write        no                   yes
//	mkdir        no                   yes
//	cd, cd ..    yes                  yes
//	sync         no                   yes
//	restart      yes                  yes
//	stat         no                   no
//
// # Shared FileInfo
//
// Stat and ListDirNext return a pointer to a FileInfo owned by the driver.
// It is overwritten by the next call; copy the value to keep it. The open
// file's cursor is stored separately and is not affected.
//
// # Configuration Options
//
//	drv := openlog.New(port,
//	    openlog.WithLogger(myLogger),
//	    openlog.WithRetries(3, 3, 3),
//	    openlog.WithReadChunkSize(64),
//	    openlog.WithReplyTimeout(5*time.Second),
//	)
//
// # Error Handling
//
// Failed retries are reported as *RetryError and failed commands as
// *OperationError. Both unwrap to the cause, so errors.Is works through them:
//
//	if err := drv.OpenFile(ctx, "MISSING.TXT"); errors.Is(err, openlog.ErrNotFound) {
//	    // no such file
//	}
package openlog
