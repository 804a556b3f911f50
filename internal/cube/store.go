// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// ErrNoGeneration is returned by Latest when no snapshot has ever been
// persisted.
var ErrNoGeneration = errors.New("no generation persisted")

const (
	generationPrefix = "generation-"
	generationSuffix = ".json"
)

// Store persists generation snapshots as one JSON file each. Writes go
// through a temporary file in the same directory followed by an atomic
// rename, so a reader never observes a partially written generation: it
// sees the prior complete file or the new one, never a mix.
type Store struct {
	dir string
}

// NewStore creates the snapshot directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cube directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(generation int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%06d%s", generationPrefix, generation, generationSuffix))
}

// Write persists the snapshot atomically. The temporary file lives in
// the snapshot directory so the rename never crosses filesystems.
func (s *Store) Write(snapshot *types.CubeSnapshot) error {
	tmp, err := os.CreateTemp(s.dir, ".generation-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary snapshot file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary snapshot file: %w", err)
	}

	final := s.path(snapshot.Generation)
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publishing snapshot %s: %w", final, err)
	}
	return nil
}

// Load reads one generation by number.
func (s *Store) Load(generation int) (*types.CubeSnapshot, error) {
	data, err := os.ReadFile(s.path(generation))
	if err != nil {
		return nil, fmt.Errorf("reading generation %d: %w", generation, err)
	}
	var snapshot types.CubeSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing generation %d: %w", generation, err)
	}
	return &snapshot, nil
}

// Latest returns the highest-numbered persisted generation, or
// ErrNoGeneration when the directory holds none.
func (s *Store) Latest() (*types.CubeSnapshot, error) {
	generations, err := s.Generations()
	if err != nil {
		return nil, err
	}
	if len(generations) == 0 {
		return nil, ErrNoGeneration
	}
	return s.Load(generations[len(generations)-1])
}

// Generations lists persisted generation numbers in ascending order.
// Temporary files and unrelated names are ignored.
func (s *Store) Generations() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cube directory: %w", err)
	}

	var generations []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, generationPrefix) || !strings.HasSuffix(name, generationSuffix) {
			continue
		}
		numPart := strings.TrimSuffix(strings.TrimPrefix(name, generationPrefix), generationSuffix)
		n, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		generations = append(generations, n)
	}
	sort.Ints(generations)
	return generations, nil
}
