// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// Snapshot is the on-disk form of one fetch: the query that produced it and
// the papers returned. Operators save a snapshot to preview or debug the
// page without querying the index again. The sync cycle never reads or
// writes snapshots.
type Snapshot struct {
	Query   SnapshotQuery   `yaml:"query"`
	Papers  types.PaperList `yaml:"papers"`
	Summary SnapshotSummary `yaml:"summary"`
}

// SnapshotQuery stores the query parameters in a serializable form.
type SnapshotQuery struct {
	Index      string   `yaml:"index"`
	Keywords   []string `yaml:"keywords,omitempty"`
	MaxResults int      `yaml:"max_results"`
}

// SnapshotSummary stores result statistics and a timestamp.
type SnapshotSummary struct {
	Total     int       `yaml:"total"`
	FetchedAt time.Time `yaml:"fetched_at"`
}

// NewSnapshot records a fetch result.
func NewSnapshot(index string, keywords []string, maxResults int, papers types.PaperList, fetchedAt time.Time) Snapshot {
	return Snapshot{
		Query: SnapshotQuery{
			Index:      index,
			Keywords:   keywords,
			MaxResults: maxResults,
		},
		Papers: papers,
		Summary: SnapshotSummary{
			Total:     len(papers),
			FetchedAt: fetchedAt.UTC(),
		},
	}
}

// WriteSnapshot saves a snapshot to a YAML file.
func WriteSnapshot(path string, snap Snapshot) error {
	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSnapshot loads a previously saved snapshot and checks the paper list
// invariants.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if err := snap.Papers.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return &snap, nil
}
