package protocol

import "time"

// Shell control bytes.
const (
	// Escape ends a reply body and terminates append mode (Ctrl+Z, 0x1A)
	Escape = 0x1A

	// CR terminates every command line and ends write mode
	CR = '\r'

	// LF may follow CR in replies and echoes
	LF = '\n'

	// PromptReady is the last status byte when the shell accepts a new command
	PromptReady = '>'

	// PromptReceive is the last status byte when the shell waits for payload data
	PromptReceive = '<'

	// FailMarker anywhere in the status token marks the command as failed
	FailMarker = '!'

	// FieldDelim separates the columns of tabular replies
	FieldDelim = '|'
)

// Shell command words.
const (
	// CmdNew creates an empty file
	CmdNew = "new"

	// CmdWrite replaces file content from offset 0 with the next line
	CmdWrite = "write"

	// CmdAppend appends a stream to a file until Escape is received
	CmdAppend = "append"

	// CmdRead prints a byte range of a file
	CmdRead = "read"

	// CmdRemove deletes a file or an empty directory
	CmdRemove = "rm"

	// CmdMakeDir creates a directory
	CmdMakeDir = "md"

	// CmdChangeDir changes the working directory
	CmdChangeDir = "cd"

	// CmdSize prints the size of a file, or -1 when it does not exist
	CmdSize = "size"

	// CmdSync flushes buffered writes to the card
	CmdSync = "sync"

	// CmdFileCount prints "count|N" for the working directory
	CmdFileCount = "efcount"

	// CmdFileInfo prints "name|size" for the file at an index
	CmdFileInfo = "efinfo"

	// CmdEcho turns the command echo on or off
	CmdEcho = "echo"

	// CmdVerbose turns verbose error messages on or off
	CmdVerbose = "verbose"

	// CmdEmbeddedMode turns the Escape-delimited reply trailer on or off
	CmdEmbeddedMode = "eem"
)

// Command arguments.
const (
	// ArgOn enables a shell setting
	ArgOn = "on"

	// ArgOff disables a shell setting
	ArgOff = "off"

	// ArgParentDir selects the parent directory in CmdChangeDir
	ArgParentDir = ".."
)

// Size limits.
const (
	// MaxFields is the maximum number of fields produced by Split
	MaxFields = 5

	// MaxNameLen is the longest file or directory name the driver stores
	MaxNameLen = 32

	// StatusSize is the capacity of the status token buffer
	StatusSize = 8

	// DefaultReplyBufferSize is the capacity of the framer's scratch buffer
	DefaultReplyBufferSize = 128

	// MaxOverrun bounds the bytes the framer discards in one loop: past a
	// full body buffer, while skipping Escape bytes, draining or probing
	MaxOverrun = 4096
)

// Default framer timing.
const (
	// DefaultReplyTimeout bounds the wait for the first reply byte and
	// every gap between reply bytes
	DefaultReplyTimeout = 10 * time.Second

	// DefaultStatusTimeout bounds the collection of the status token
	DefaultStatusTimeout = 1500 * time.Millisecond

	// DefaultPollInterval is the sleep between transport polls
	DefaultPollInterval = 10 * time.Millisecond
)
