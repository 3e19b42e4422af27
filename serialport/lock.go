package serialport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrPortBusy is returned when another process holds the port's lock file.
var ErrPortBusy = errors.New("serial port is in use")

// lockPollInterval is the interval between lock attempts while waiting.
const lockPollInterval = 10 * time.Millisecond

// LockPath returns the lock file used for the device at path.
// An empty dir selects os.TempDir().
func LockPath(dir, path string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "openlog-"+filepath.Base(path)+".lock")
}

// acquireLock takes the exclusive lock for the device at path, waiting up
// to timeout for another holder to release it.
func acquireLock(dir, path string, timeout time.Duration) (*flock.Flock, error) {
	if path == "" {
		return nil, fmt.Errorf("serialport: device path is required")
	}

	fileLock := flock.New(LockPath(dir, path))

	var (
		locked bool
		err    error
	)
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		locked, err = fileLock.TryLockContext(ctx, lockPollInterval)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrPortBusy, path)
		}
	} else {
		locked, err = fileLock.TryLock()
	}
	if err != nil {
		return nil, fmt.Errorf("serialport: lock %s: %w", fileLock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrPortBusy, path)
	}

	return fileLock, nil
}
