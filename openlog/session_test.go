package openlog

import (
	"testing"

	"github.com/sparkfun/OpenLog/word"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{State{}, "NoFileOpen+NoListing"},
		{State{FileOpen: true}, "FileOpen+NoListing"},
		{State{Listing: true}, "NoFileOpen+ListingActive"},
		{State{FileOpen: true, Listing: true}, "FileOpen+ListingActive"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionTransitions(t *testing.T) {
	tests := []struct {
		name        string
		op          operation
		target      string
		wantOpen    bool
		wantListing bool
		wantDirs    int
	}{
		{"delete open file", opDelete, "a.txt", false, false, 2},
		{"delete other file", opDelete, "b.txt", true, false, 2},
		{"write", opWrite, "a.txt", true, false, 2},
		{"mkdir", opMakeDir, "NEW", true, false, 2},
		{"cd", opChangeDir, "SUB", false, false, 2},
		{"cd ..", opParentDir, "..", false, false, 2},
		{"sync", opSync, "", true, false, 2},
		{"restart", opRestart, "", false, false, 0},
		{"stat", opStat, "b.txt", true, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession()
			s.dirs = []string{"LOGS", "2024"}
			s.openFile("a.txt", word.FromUint32(10))
			s.listing.start(4)

			s.apply(tt.op, tt.target)

			if s.open != tt.wantOpen {
				t.Errorf("open = %v, want %v", s.open, tt.wantOpen)
			}
			if s.listing.active != tt.wantListing {
				t.Errorf("listing.active = %v, want %v", s.listing.active, tt.wantListing)
			}
			if !tt.wantListing && s.listing.count != -1 {
				t.Errorf("listing.count = %d, want -1", s.listing.count)
			}
			if len(s.dirs) != tt.wantDirs {
				t.Errorf("len(dirs) = %d, want %d", len(s.dirs), tt.wantDirs)
			}
			if !s.open && (s.cursor != FileInfo{}) {
				t.Errorf("cursor = %+v, want zero after close", s.cursor)
			}
		})
	}
}

func TestSessionAdvance(t *testing.T) {
	tests := []struct {
		name  string
		size  word.Word
		start word.Word
		n     int
		want  word.Word
	}{
		{"within file", word.FromUint32(100), word.Zero, 64, word.FromUint32(64)},
		{"to end", word.FromUint32(100), word.FromUint32(36), 64, word.FromUint32(100)},
		{"past end", word.FromUint32(100), word.FromUint32(64), 64, word.FromUint32(100)},
		{"near wrap", word.MaxUnsigned, word.FromUint32(0xFFFFFFF0), 64, word.MaxUnsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession()
			s.openFile("a.txt", tt.size)
			s.cursor.Position = tt.start

			s.advance(tt.n)

			if !s.cursor.Position.Equal(tt.want) {
				t.Errorf("Position = %s, want %s", s.cursor.Position.UnsignedString(), tt.want.UnsignedString())
			}
		})
	}
}

func TestSessionResize(t *testing.T) {
	s := newSession()
	s.openFile("a.txt", word.FromUint32(100))
	s.cursor.Position = word.FromUint32(80)

	s.resize(word.FromUint32(50))
	if got := s.cursor.Position.Uint32(); got != 50 {
		t.Errorf("Position after shrink = %d, want 50", got)
	}

	s.resize(word.FromUint32(200))
	if got := s.cursor.Position.Uint32(); got != 50 {
		t.Errorf("Position after grow = %d, want 50", got)
	}
}

func TestSessionWorkingDir(t *testing.T) {
	s := newSession()
	if got := s.workingDir(); got != "/" {
		t.Errorf("workingDir() = %q, want /", got)
	}

	s.dirs = append(s.dirs, "LOGS", "2024")
	if got := s.workingDir(); got != "/LOGS/2024" {
		t.Errorf("workingDir() = %q, want /LOGS/2024", got)
	}
}
