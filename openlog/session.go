package openlog

import (
	"strings"

	"github.com/sparkfun/OpenLog/word"
)

// FileInfo describes a file on the card.
type FileInfo struct {
	// Name is the file name, at most 32 bytes
	Name string

	// Size is the file size in bytes
	Size word.Word

	// Position is the read position; always zero outside the open-file session
	Position word.Word
}

// State is the observable session state.
type State struct {
	// FileOpen is true between a successful OpenFile and the next close
	FileOpen bool

	// Listing is true between a successful ListDirStart and its invalidation
	Listing bool
}

func (s State) String() string {
	file, listing := "NoFileOpen", "NoListing"
	if s.FileOpen {
		file = "FileOpen"
	}
	if s.Listing {
		listing = "ListingActive"
	}
	return file + "+" + listing
}

// operation identifies a command in the transition table.
type operation int

const (
	opDelete operation = iota
	opWrite
	opMakeDir
	opChangeDir
	opParentDir
	opSync
	opRestart
	opStat
)

// fileEffect is what an operation does to the open-file session.
type fileEffect int

const (
	keepFile fileEffect = iota
	closeFile
	closeIfTarget
)

type transition struct {
	file              fileEffect
	invalidateListing bool
	resetDirs         bool
}

// transitions is applied before each operation's command is sent. The
// peripheral may act on a command whose reply is lost, so the local view
// is invalidated regardless of the outcome.
var transitions = [...]transition{
	opDelete:    {file: closeIfTarget, invalidateListing: true},
	opWrite:     {file: keepFile, invalidateListing: true},
	opMakeDir:   {file: keepFile, invalidateListing: true},
	opChangeDir: {file: closeFile, invalidateListing: true},
	opParentDir: {file: closeFile, invalidateListing: true},
	opSync:      {file: keepFile, invalidateListing: true},
	opRestart:   {file: closeFile, invalidateListing: true, resetDirs: true},
	opStat:      {file: keepFile},
}

// listing is the directory listing cursor.
type listing struct {
	active bool
	count  int
	index  int
}

func (l *listing) reset() {
	*l = listing{count: -1, index: -1}
}

func (l *listing) start(count int) {
	*l = listing{active: true, count: count}
}

// session is the client-side mirror of peripheral state.
type session struct {
	open    bool
	cursor  FileInfo
	listing listing
	dirs    []string
}

func newSession() session {
	s := session{}
	s.listing.reset()
	return s
}

// apply runs the transition of op. target is the file the operation
// names, if any.
func (s *session) apply(op operation, target string) {
	t := transitions[op]

	switch t.file {
	case closeFile:
		s.closeFile()
	case closeIfTarget:
		if s.open && s.cursor.Name == target {
			s.closeFile()
		}
	}
	if t.invalidateListing {
		s.listing.reset()
	}
	if t.resetDirs {
		s.dirs = s.dirs[:0]
	}
}

func (s *session) openFile(name string, size word.Word) {
	s.open = true
	s.cursor = FileInfo{Name: name, Size: size}
}

func (s *session) closeFile() {
	s.open = false
	s.cursor = FileInfo{}
}

// advance moves the cursor forward by n bytes, stopping at the end of file.
func (s *session) advance(n int) {
	next := s.cursor.Position.Add(word.FromInt(n))
	if next.CmpU(s.cursor.Size) > 0 || next.CmpU(s.cursor.Position) < 0 {
		next = s.cursor.Size
	}
	s.cursor.Position = next
}

// resize updates the size of the open file after it was rewritten.
func (s *session) resize(size word.Word) {
	s.cursor.Size = size
	if s.cursor.Position.CmpU(size) > 0 {
		s.cursor.Position = size
	}
}

func (s *session) state() State {
	return State{FileOpen: s.open, Listing: s.listing.active}
}

func (s *session) workingDir() string {
	return "/" + strings.Join(s.dirs, "/")
}
