package offload

import (
	"time"

	"github.com/sparkfun/OpenLog/openlog"
)

// Progress describes how far an offload run has come.
// Passed to ProgressCallback during Run.
type Progress struct {
	// Phase describes the current step:
	//   "listing"  - Reading the card directory
	//   "copying"  - Copying a file to the sink
	//   "deleting" - Removing a copied file from the card
	//   "complete" - Run finished
	Phase string

	// CurrentFile is the file being handled, empty while listing
	CurrentFile string

	// FileIndex is the 0-based index of CurrentFile among the selected files
	FileIndex int

	// TotalFiles is the number of files selected for this run
	TotalFiles int

	// Percentage is the share of selected files finished (0.0 - 100.0)
	Percentage float64

	// BytesCopied counts bytes delivered to the sink so far
	BytesCopied int64

	// ElapsedTime since the run started
	ElapsedTime time.Duration
}

// ProgressCallback is called at each step of a run. It runs on the
// offload goroutine and should return quickly.
//
// Example:
//
//	off := offload.New(drv, sink,
//	    offload.WithProgressCallback(func(p offload.Progress) {
//	        fmt.Printf("[%s] %.0f%% %s\n", p.Phase, p.Percentage, p.CurrentFile)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger has the same shape as openlog.Logger, so one logger serves both.
type Logger = openlog.Logger
