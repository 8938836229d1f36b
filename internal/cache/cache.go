// Package cache persists check-run results per input fingerprint.
//
// Each fingerprint owns a slot directory under <root>/slots holding:
//
//  1. A plain-text report of the last completed run
//  2. A pending-failure set naming the checks that failed on that run
//  3. A lock file serializing runs against the same slot
//
// A slot with a report and no pending set is finalized-clean and may be
// replayed verbatim. A pending set restricts the next run to the checks
// it names. A BoltDB index at the root records finalized slots for listing.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofrs/flock"

	"github.com/genomics-tools/datacheck/internal/codes"
	"github.com/genomics-tools/datacheck/internal/fingerprint"
)

// Store manages cache slots below a root directory
type Store struct {
	root   string
	slots  string
	logger log.Logger
	index  *Index
}

// RunResult is what a completed run leaves behind in its slot
type RunResult struct {
	// Report is the plain-text summary written verbatim
	Report string

	// Failed lists the identifiers of checks that failed
	Failed []string
}

// New creates a store rooted at root, creating the directory if needed
func New(root string, logger log.Logger) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: cache directory not set", codes.ErrConfiguration)
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Store{
		root:   root,
		slots:  filepath.Join(root, slotsDirName),
		logger: logger,
		index:  NewIndex(filepath.Join(root, indexFileName)),
	}, nil
}

// Root returns the cache root directory
func (s *Store) Root() string {
	return s.root
}

// Locate returns the slot for fp, creating its directory if absent.
// Concurrent callers for the same fingerprint get the same directory.
func (s *Store) Locate(fp fingerprint.Fingerprint) (*Slot, error) {
	dir, reportName, err := s.slotLayout(fp)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		level.Info(s.logger).Log("msg", "creating cache slot", "dir", dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache slot: %w", err)
	}

	return &Slot{
		Key:         fp.String(),
		Dir:         dir,
		ReportPath:  filepath.Join(dir, reportName),
		PendingPath: filepath.Join(dir, pendingFileName),
		fp:          fp,
		lock:        flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

func (s *Store) slotLayout(fp fingerprint.Fingerprint) (string, string, error) {
	switch fp.Kind {
	case fingerprint.KindFile:
		if fp.Digest == "" {
			return "", "", fmt.Errorf("empty file fingerprint")
		}

		stem := strings.TrimSuffix(filepath.Base(fp.Path), filepath.Ext(fp.Path))
		if stem == "" || stem == "." {
			stem = "input"
		}

		return filepath.Join(s.slots, fp.Digest), stem + "_results.txt", nil

	case fingerprint.KindDatabase:
		if fp.Server == "" || fp.Database == "" {
			return "", "", fmt.Errorf("incomplete database fingerprint %q", fp.String())
		}

		dir := filepath.Join(s.slots,
			sanitizeComponent(fp.Server),
			sanitizeComponent(fp.Database),
			fp.UpdatedAt.Format(fingerprint.TimestampLayout),
		)

		return dir, databaseReportName, nil

	default:
		return "", "", fmt.Errorf("unknown fingerprint kind %q", fp.Kind)
	}
}

// sanitizeComponent makes a server or database name usable as one path element
func sanitizeComponent(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\':
			return '_'
		}
		return r
	}, name)
}

// TryShortCircuit returns the stored report when the slot is finalized-clean
func (s *Store) TryShortCircuit(slot *Slot) (string, bool) {
	if artifactExists(slot.PendingPath) {
		return "", false
	}

	data, err := os.ReadFile(slot.ReportPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			level.Warn(s.logger).Log("msg", "unreadable report, running checks", "path", slot.ReportPath, "err", err)
		}
		return "", false
	}

	return string(data), true
}

// LoadPendingFailures reads the slot's pending-failure set.
// A missing, empty or unreadable set is reported as absent.
func (s *Store) LoadPendingFailures(slot *Slot) (PendingSet, bool) {
	data, err := os.ReadFile(slot.PendingPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			level.Warn(s.logger).Log("msg", "unreadable pending failures", "path", slot.PendingPath, "err", err)
		}
		return nil, false
	}

	set, err := decodePending(data)
	if err != nil {
		level.Warn(s.logger).Log("msg", "corrupt pending failures, ignoring", "path", slot.PendingPath, "err", err)
		return nil, false
	}

	if len(set) == 0 {
		return nil, false
	}

	return set, true
}

// Finalize stores the outcome of a completed run.
//
// The report is replaced first. The pending set is then rewritten with the
// new failures, or removed when there are none. If the pending set cannot be
// written the new report is withdrawn so the slot never looks clean while
// failures are outstanding.
func (s *Store) Finalize(slot *Slot, result RunResult) error {
	if err := writeArtifact(slot.ReportPath, []byte(result.Report)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	status := StatusClean

	if len(result.Failed) > 0 {
		status = StatusFailed

		data, err := encodePending(NewPendingSet(result.Failed...))
		if err == nil {
			err = writeArtifact(slot.PendingPath, data)
		}

		if err != nil {
			if rmErr := removeArtifact(slot.ReportPath); rmErr != nil {
				level.Error(s.logger).Log("msg", "failed to withdraw report", "path", slot.ReportPath, "err", rmErr)
			}
			return fmt.Errorf("failed to write pending failures: %w", err)
		}

		level.Debug(s.logger).Log("msg", "stored pending failures", "slot", slot.Key, "count", len(result.Failed))
	} else {
		if err := removeArtifact(slot.PendingPath); err != nil {
			return fmt.Errorf("failed to remove pending failures: %w", err)
		}

		level.Debug(s.logger).Log("msg", "slot finalized clean", "slot", slot.Key)
	}

	entry := Entry{
		Key:       slot.Key,
		Dir:       slot.Dir,
		Kind:      string(slot.fp.Kind),
		Input:     inputName(slot.fp),
		Status:    status,
		Failures:  NewPendingSet(result.Failed...).IDs(),
		Timestamp: now(),
	}

	// The index only feeds listings; a busy index must not fail the run
	if err := s.index.Put(entry); err != nil {
		level.Warn(s.logger).Log("msg", "failed to update cache index", "err", err)
	}

	return nil
}

// LoadReport returns the stored report regardless of pending failures
func (s *Store) LoadReport(slot *Slot) (string, error) {
	data, err := os.ReadFile(slot.ReportPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: no previous test results found for %s", codes.ErrNotFound, inputName(slot.fp))
		}
		return "", fmt.Errorf("failed to read report: %w", err)
	}

	return string(data), nil
}

// Entries lists the finalized slots recorded in the index
func (s *Store) Entries() ([]Entry, error) {
	return s.index.List()
}

// Lookup returns the index entry for a slot key
func (s *Store) Lookup(key string) (*Entry, error) {
	entry, err := s.index.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache index: %w", err)
	}

	if entry == nil {
		return nil, fmt.Errorf("%w: no cached result with key %s", codes.ErrNotFound, key)
	}

	return entry, nil
}

// Stats returns the number of indexed slots and the bytes used by slots and index
func (s *Store) Stats() (int, int64, error) {
	count, err := s.index.Count()
	if err != nil {
		return 0, 0, err
	}

	size := dirSize(s.slots)
	if info, err := os.Stat(s.index.path); err == nil {
		size += info.Size()
	}

	return count, size, nil
}

// Clear removes every slot and empties the index.
// Only the slots subtree is removed; other files under the root are left alone.
func (s *Store) Clear() error {
	if err := s.index.Reset(); err != nil {
		return fmt.Errorf("failed to reset cache index: %w", err)
	}

	if err := os.RemoveAll(s.slots); err != nil {
		return fmt.Errorf("failed to remove cache slots: %w", err)
	}

	return nil
}

func inputName(fp fingerprint.Fingerprint) string {
	if fp.Kind == fingerprint.KindDatabase {
		return fp.Server + "/" + fp.Database
	}

	return fp.Path
}
