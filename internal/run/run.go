// Package run persists a manifest for every analysis that wrote artifacts.
package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/filmcorr-cli/internal/utils"
)

const manifestFileName = "run.json"

// Manifest describes one analysis run persisted on disk.
type Manifest struct {
	ID         string     `json:"id"`
	Input      string     `json:"input"`
	Command    string     `json:"command"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	RowsLoaded int        `json:"rows_loaded"`
	RowsKept   int        `json:"rows_kept"`
	Rejected   int        `json:"rejected"`
	Threshold  float64    `json:"threshold"`
	Artifacts  []string   `json:"artifacts"`
	HighPairs  []PairInfo `json:"high_pairs"`

	// Not serialized: on-disk location of the run directory
	dir string `json:"-"`
}

// PairInfo is a high-correlation pair as stored in the manifest.
type PairInfo struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// New allocates a run with a fresh id under root. Call Save to persist.
func New(root, input, command string) *Manifest {
	id := uuid.NewString()
	return &Manifest{
		ID:        id,
		Input:     input,
		Command:   command,
		StartedAt: time.Now(),
		dir:       filepath.Join(root, id),
	}
}

// Dir returns the directory holding the run's artifacts.
func (m *Manifest) Dir() string { return m.dir }

// Save writes run.json using atomic write.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("run directory not set")
	}
	if err := utils.EnsureDir(m.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	if m.FinishedAt.IsZero() {
		m.FinishedAt = time.Now()
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.dir, manifestFileName), data)
}

// Load reads run.json from the provided run directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	m.dir = dir
	return &m, nil
}

// Find loads the run whose id is or starts with prefix.
func Find(root, prefix string) (*Manifest, error) {
	if prefix == "" {
		return nil, errors.New("run id is empty")
	}
	runs, err := List(root)
	if err != nil {
		return nil, err
	}
	var match *Manifest
	for _, m := range runs {
		if m.ID == prefix {
			return m, nil
		}
		if len(m.ID) >= len(prefix) && m.ID[:len(prefix)] == prefix {
			if match != nil {
				return nil, fmt.Errorf("run id %q is ambiguous", prefix)
			}
			match = m
		}
	}
	if match == nil {
		return nil, fmt.Errorf("run %q not found in %s", prefix, root)
	}
	return match, nil
}

// List returns every run under root, newest first. A missing root has no runs.
func List(root string) ([]*Manifest, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var out []*Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := Load(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}
