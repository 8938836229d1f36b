package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/genomics-tools/datacheck/internal/fingerprint"
)

const (
	// slotsDirName is the subtree of the cache root holding slot directories
	slotsDirName = "slots"

	// pendingFileName holds the checks that failed on the last run of a slot
	pendingFileName = "pending.json"

	// lockFileName is the advisory lock guarding a slot's artifacts
	lockFileName = ".lock"

	// databaseReportName is the report file name for database inputs
	databaseReportName = "results.txt"

	lockRetryDelay = 100 * time.Millisecond
)

// Slot is the cache directory of one fingerprint
type Slot struct {
	// Key is the fingerprint rendered as a string
	Key string

	// Dir holds the slot's artifacts
	Dir string

	// ReportPath is the finalized plain-text report
	ReportPath string

	// PendingPath is the pending-failure set; its presence marks the slot unfinished
	PendingPath string

	fp   fingerprint.Fingerprint
	lock *flock.Flock
}

// Fingerprint returns the fingerprint the slot was located by
func (sl *Slot) Fingerprint() fingerprint.Fingerprint {
	return sl.fp
}

// Lock takes the slot's exclusive lock, waiting until ctx is done
func (sl *Slot) Lock(ctx context.Context) error {
	ok, err := sl.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock cache slot %s: %w", sl.Dir, err)
	}

	if !ok {
		return fmt.Errorf("failed to lock cache slot %s: %w", sl.Dir, ctx.Err())
	}

	return nil
}

// RLock takes the slot's shared lock, waiting until ctx is done
func (sl *Slot) RLock(ctx context.Context) error {
	ok, err := sl.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to read-lock cache slot %s: %w", sl.Dir, err)
	}

	if !ok {
		return fmt.Errorf("failed to read-lock cache slot %s: %w", sl.Dir, ctx.Err())
	}

	return nil
}

// Unlock releases whichever lock is held
func (sl *Slot) Unlock() error {
	return sl.lock.Unlock()
}
