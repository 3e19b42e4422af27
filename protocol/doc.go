// Package protocol implements the wire side of the OpenLog command shell.
//
// This package builds command lines, frames replies received over a
// half-duplex serial link and tokenizes reply bodies. It has no notion of
// open files or listings; see package openlog for the session layer.
//
// # Protocol Overview
//
// With embedded mode enabled ("eem on") every command is answered as:
//
//	Command: <word> [args...] CR
//	Reply:   [BODY...] ESC [ESC...] STATUS
//
// Where:
//   - ESC = 0x1A (Ctrl+Z), which also terminates append mode
//   - STATUS = a short token ending with a prompt: '>' ready, '<' ready to receive
//   - a '!' anywhere in STATUS marks the command as failed
//
// Tabular replies separate columns with '|':
//
//	efcount  ->  count|3
//	efinfo 0 ->  LOG00001.TXT|1024
//
// # Command Builders
//
// Use the Build* functions to create command lines. Arguments are validated
// so that nothing can break the line-oriented framing:
//
//	cmd, err := protocol.BuildReadCmd("LOG00001.TXT", pos, 64)
//	cmd, err := protocol.BuildFileInfoCmd(2)
//	// ... etc
//
// # Framing
//
// A Framer executes one round-trip at a time:
//
//	f := protocol.NewFramer(port, protocol.SystemClock, protocol.DefaultFramerConfig())
//	reply, err := f.Execute("efcount", nil, protocol.PromptReady)
//	if err != nil {
//	    return err
//	}
//	count, err := protocol.ParseCountReply(reply)
//
// # Error Handling
//
// Framing failures are reported as ErrTimeout or ErrNoStatus. A status that
// does not confirm success is reported as *StatusError:
//
//	var se *protocol.StatusError
//	if errors.As(err, &se) && se.Failed {
//	    // the shell rejected the command
//	}
package protocol
