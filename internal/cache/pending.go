package cache

import (
	"encoding/json"
	"fmt"
	"sort"
)

const pendingVersion = 1

// PendingSet is the set of check identifiers that failed on a slot's last run
type PendingSet map[string]bool

// NewPendingSet builds a set from check identifiers
func NewPendingSet(ids ...string) PendingSet {
	set := make(PendingSet, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set
}

// Has reports whether id is in the set
func (p PendingSet) Has(id string) bool {
	return p[id]
}

// IDs returns the identifiers in sorted order
func (p PendingSet) IDs() []string {
	ids := make([]string, 0, len(p))
	for id, marked := range p {
		if marked {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	return ids
}

type pendingFile struct {
	Version int             `json:"version"`
	Failed  map[string]bool `json:"failed"`
}

func encodePending(p PendingSet) ([]byte, error) {
	return json.MarshalIndent(pendingFile{Version: pendingVersion, Failed: p}, "", "  ")
}

func decodePending(data []byte) (PendingSet, error) {
	var f pendingFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Version != pendingVersion {
		return nil, fmt.Errorf("unsupported pending set version %d", f.Version)
	}

	set := make(PendingSet, len(f.Failed))
	for id, marked := range f.Failed {
		if marked && id != "" {
			set[id] = true
		}
	}

	return set, nil
}
