package callgraph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

// FileName is the name of the persisted graph snapshot within the state
// directory.
const FileName = "call-graph.json"

// Version is the current format version of the persisted snapshot.
const Version = "1.0"

// Storage reads and writes a call graph snapshot to disk using the
// atomic-rename pattern the teacher uses throughout its own storage code.
type Storage struct {
	dir string
}

// NewStorage returns a Storage rooted at dir, creating it if necessary.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(dir, ".tmp"), 0o755); err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "create call graph directory", err)
	}
	return &Storage{dir: dir}, nil
}

// Load reads the persisted snapshot, returning nil if none exists yet.
func (s *Storage) Load() (*Data, error) {
	raw, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "read call graph", err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "parse call graph", err)
	}
	return &data, nil
}

// Save writes data to disk atomically: a temp file followed by rename.
func (s *Storage) Save(data *Data) error {
	data.Metadata.Version = Version
	data.Metadata.GeneratedAt = time.Now()
	data.Metadata.NodeCount = len(data.Nodes)
	data.Metadata.EdgeCount = len(data.Edges)

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "marshal call graph", err)
	}

	tmp := filepath.Join(s.dir, ".tmp", FileName)
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "write temp call graph", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "rename call graph", err)
	}
	return nil
}

// Exists reports whether a snapshot has been saved.
func (s *Storage) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

func (s *Storage) path() string {
	return filepath.Join(s.dir, FileName)
}
