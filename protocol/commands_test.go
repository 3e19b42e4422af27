package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/sparkfun/OpenLog/word"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{name: "simple", input: "LOG00001.TXT"},
		{name: "max length", input: strings.Repeat("a", MaxNameLen)},
		{name: "empty", input: "", wantErr: true, errMsg: "empty name"},
		{name: "too long", input: strings.Repeat("a", MaxNameLen+1), wantErr: true, errMsg: "maximum is 32"},
		{name: "space", input: "a b", wantErr: true, errMsg: "0x20"},
		{name: "escape byte", input: "a\x1a", wantErr: true, errMsg: "0x1A"},
		{name: "carriage return", input: "a\r", wantErr: true, errMsg: "0x0D"},
		{name: "field delimiter", input: "a|b", wantErr: true, errMsg: "0x7C"},
		{name: "non-ascii", input: "caf\xe9", wantErr: true, errMsg: "0xE9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateDirName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"LOGS", false},
		{"2024", false},
		{".", true},
		{"..", true},
		{"a/b", true},
		{`a\b`, true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateDirName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDirName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		appendMode bool
		wantErr    bool
	}{
		{name: "write line", data: "hello"},
		{name: "append with newlines", data: "a\r\nb\n", appendMode: true},
		{name: "empty", data: "", wantErr: true},
		{name: "write with CR", data: "a\rb", wantErr: true},
		{name: "write with LF", data: "a\nb", wantErr: true},
		{name: "append with escape", data: "a\x1ab", appendMode: true, wantErr: true},
		{name: "write with escape", data: "\x1a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload([]byte(tt.data), tt.appendMode)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestNameCommands(t *testing.T) {
	tests := []struct {
		name  string
		build func(string) (string, error)
		want  string
	}{
		{"new", BuildNewCmd, "new a.txt"},
		{"write", BuildWriteCmd, "write a.txt"},
		{"append", BuildAppendCmd, "append a.txt"},
		{"rm", BuildRemoveCmd, "rm a.txt"},
		{"size", BuildSizeCmd, "size a.txt"},
		{"md", BuildMakeDirCmd, "md a.txt"},
		{"cd", BuildChangeDirCmd, "cd a.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build("a.txt")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}

			if _, err := tt.build("bad name"); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("bad name error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestBuildReadCmd(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		pos     word.Word
		length  int
		want    string
		wantErr bool
	}{
		{name: "start", file: "a.txt", pos: word.Zero, length: 5, want: "read a.txt 0 5"},
		{name: "beyond 16 bits", file: "LOG.TXT", pos: word.FromInt(70000), length: 64, want: "read LOG.TXT 70000 64"},
		{name: "high bit set prints unsigned", file: "a", pos: word.MinSigned, length: 1, want: "read a 2147483648 1"},
		{name: "zero length", file: "a", pos: word.Zero, length: 0, wantErr: true},
		{name: "bad name", file: "", pos: word.Zero, length: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildReadCmd(tt.file, tt.pos, tt.length)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFixedCommands(t *testing.T) {
	info, err := BuildFileInfoCmd(3)
	if err != nil {
		t.Fatalf("BuildFileInfoCmd: %v", err)
	}
	if _, err := BuildFileInfoCmd(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative index error = %v, want ErrInvalidArgument", err)
	}

	tests := []struct {
		got  string
		want string
	}{
		{BuildParentDirCmd(), "cd .."},
		{BuildSyncCmd(), "sync"},
		{BuildFileCountCmd(), "efcount"},
		{info, "efinfo 3"},
		{BuildEchoCmd(false), "echo off"},
		{BuildVerboseCmd(false), "verbose off"},
		{BuildEmbeddedModeCmd(true), "eem on"},
		{BuildEchoCmd(true), "echo on"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
