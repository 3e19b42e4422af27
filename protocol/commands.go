package protocol

import (
	"fmt"
	"strconv"

	"github.com/sparkfun/OpenLog/word"
)

// ValidateName checks that name can be sent as a single shell argument.
//
// A name must be 1..MaxNameLen bytes of printable ASCII without spaces,
// FieldDelim or Escape. The shell splits arguments on spaces and tabular
// replies on FieldDelim, so either would corrupt the exchange.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: name %q is %d bytes, maximum is %d",
			ErrInvalidArgument, name, len(name), MaxNameLen)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c >= 0x7F || c == FieldDelim {
			return fmt.Errorf("%w: name %q contains byte 0x%02X at offset %d",
				ErrInvalidArgument, name, c, i)
		}
	}
	return nil
}

// ValidateDirName checks a directory name for CmdChangeDir and CmdMakeDir.
// In addition to ValidateName it rejects "." and ".." and path separators;
// the parent directory has its own builder.
func ValidateDirName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if name == "." || name == ArgParentDir {
		return fmt.Errorf("%w: %q is not a directory name", ErrInvalidArgument, name)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' || name[i] == '\\' {
			return fmt.Errorf("%w: directory name %q contains a path separator", ErrInvalidArgument, name)
		}
	}
	return nil
}

// ValidatePayload checks that data can be streamed after CmdWrite or CmdAppend.
//
// Payloads may never contain Escape. In write mode the shell ends the
// payload at the first CR or LF, so those are rejected as well.
func ValidatePayload(data []byte, appendMode bool) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidArgument)
	}
	for i, b := range data {
		if b == Escape {
			return fmt.Errorf("%w: payload contains escape byte at offset %d", ErrInvalidArgument, i)
		}
		if !appendMode && (b == CR || b == LF) {
			return fmt.Errorf("%w: write payload contains line break at offset %d", ErrInvalidArgument, i)
		}
	}
	return nil
}

// buildNameCmd joins a command word and a validated name.
func buildNameCmd(cmd, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return cmd + " " + name, nil
}

// BuildNewCmd constructs "new <name>".
func BuildNewCmd(name string) (string, error) {
	return buildNameCmd(CmdNew, name)
}

// BuildWriteCmd constructs "write <name>". The shell answers with
// PromptReceive and takes the next line as the new file content.
func BuildWriteCmd(name string) (string, error) {
	return buildNameCmd(CmdWrite, name)
}

// BuildAppendCmd constructs "append <name>". The shell answers with
// PromptReceive and appends everything up to the next Escape byte.
func BuildAppendCmd(name string) (string, error) {
	return buildNameCmd(CmdAppend, name)
}

// BuildReadCmd constructs "read <name> <pos> <len>".
//
// The position is a 32-bit unsigned value; length must be positive.
//
// Example:
//
//	cmd, _ := protocol.BuildReadCmd("LOG00001.TXT", word.FromInt(70000), 64)
//	// cmd == "read LOG00001.TXT 70000 64"
func BuildReadCmd(name string, pos word.Word, length int) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if length <= 0 {
		return "", fmt.Errorf("%w: read length must be positive, got %d", ErrInvalidArgument, length)
	}
	return CmdRead + " " + name + " " + pos.UnsignedString() + " " + strconv.Itoa(length), nil
}

// BuildRemoveCmd constructs "rm <name>".
func BuildRemoveCmd(name string) (string, error) {
	return buildNameCmd(CmdRemove, name)
}

// BuildMakeDirCmd constructs "md <name>".
func BuildMakeDirCmd(name string) (string, error) {
	if err := ValidateDirName(name); err != nil {
		return "", err
	}
	return CmdMakeDir + " " + name, nil
}

// BuildChangeDirCmd constructs "cd <name>".
func BuildChangeDirCmd(name string) (string, error) {
	if err := ValidateDirName(name); err != nil {
		return "", err
	}
	return CmdChangeDir + " " + name, nil
}

// BuildParentDirCmd constructs "cd ..".
func BuildParentDirCmd() string {
	return CmdChangeDir + " " + ArgParentDir
}

// BuildSizeCmd constructs "size <name>".
func BuildSizeCmd(name string) (string, error) {
	return buildNameCmd(CmdSize, name)
}

// BuildSyncCmd constructs "sync".
func BuildSyncCmd() string {
	return CmdSync
}

// BuildFileCountCmd constructs "efcount".
func BuildFileCountCmd() string {
	return CmdFileCount
}

// BuildFileInfoCmd constructs "efinfo <index>".
func BuildFileInfoCmd(index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("%w: file index must not be negative, got %d", ErrInvalidArgument, index)
	}
	return CmdFileInfo + " " + strconv.Itoa(index), nil
}

// BuildEchoCmd constructs "echo on" or "echo off".
func BuildEchoCmd(on bool) string {
	return CmdEcho + " " + onOff(on)
}

// BuildVerboseCmd constructs "verbose on" or "verbose off".
func BuildVerboseCmd(on bool) string {
	return CmdVerbose + " " + onOff(on)
}

// BuildEmbeddedModeCmd constructs "eem on" or "eem off".
func BuildEmbeddedModeCmd(on bool) string {
	return CmdEmbeddedMode + " " + onOff(on)
}

func onOff(on bool) string {
	if on {
		return ArgOn
	}
	return ArgOff
}
