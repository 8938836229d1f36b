// Package fingerprint derives the cache key of a check run's input.
//
// Files are keyed by an xxHash64 digest of their full content. Databases are
// keyed by their server, name and the latest table modification time at
// second precision, which is coarse but avoids reading every row.
package fingerprint

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/genomics-tools/datacheck/internal/codes"
)

// TimestampLayout formats database modification times
const TimestampLayout = "20060102150405"

// Kind tells which input a fingerprint was derived from
type Kind string

const (
	KindFile     Kind = "file"
	KindDatabase Kind = "database"
)

// Input selects what a run checks; exactly one field is set
type Input struct {
	File     string
	Database string
}

// DataSource is the database view the resolver needs
type DataSource interface {
	Server() string
	Name() string
	LastModified(ctx context.Context) (time.Time, error)
}

// Fingerprint identifies the state of an input
type Fingerprint struct {
	Kind Kind

	// Digest is the hex xxHash64 of the file content (file mode)
	Digest string

	// Path is the absolute path of the file (file mode)
	Path string

	// Server and Database locate the source (database mode)
	Server   string
	Database string

	// UpdatedAt is the latest modification time, truncated to seconds (database mode)
	UpdatedAt time.Time
}

// String renders the fingerprint as a stable key
func (f Fingerprint) String() string {
	if f.Kind == KindDatabase {
		return f.Server + "/" + f.Database + "/" + f.UpdatedAt.Format(TimestampLayout)
	}

	return f.Digest
}

// Resolve computes the fingerprint of the selected input.
// ds is consulted only in database mode and may be nil otherwise.
func Resolve(ctx context.Context, in Input, ds DataSource) (Fingerprint, error) {
	switch {
	case in.File != "" && in.Database != "":
		return Fingerprint{}, fmt.Errorf("%w: --file and --database are mutually exclusive", codes.ErrConfiguration)
	case in.File != "":
		return File(in.File)
	case in.Database != "":
		if ds == nil {
			return Fingerprint{}, fmt.Errorf("%w: database is not open", codes.ErrUnavailableInput)
		}
		return Database(ctx, ds)
	default:
		return Fingerprint{}, fmt.Errorf("%w: either --file or --database must be provided", codes.ErrConfiguration)
	}
}

// File hashes the entire content of path
func File(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %v", codes.ErrUnavailableInput, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, fmt.Errorf("%w: failed to hash %s: %v", codes.ErrUnavailableInput, path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return Fingerprint{
		Kind:   KindFile,
		Digest: fmt.Sprintf("%016x", h.Sum64()),
		Path:   abs,
	}, nil
}

// Database fingerprints a database by location and last modification time
func Database(ctx context.Context, ds DataSource) (Fingerprint, error) {
	updated, err := ds.LastModified(ctx)
	if err != nil {
		return Fingerprint{}, err
	}

	return Fingerprint{
		Kind:      KindDatabase,
		Server:    ds.Server(),
		Database:  ds.Name(),
		UpdatedAt: updated.Truncate(time.Second),
	}, nil
}
