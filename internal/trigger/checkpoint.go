package trigger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// checkpoint is the on-disk cursor snapshot for standalone watch mode.
// When the node runs under a host the host persists the state instead.
type checkpoint struct {
	Cursors   map[string]string `json:"cursors"`
	UpdatedAt string            `json:"updated_at"`
}

// CheckpointStore persists trigger cursors to a local JSON file
type CheckpointStore struct {
	path string
}

func NewCheckpointStore(dir string) *CheckpointStore {
	if dir == "" {
		return &CheckpointStore{}
	}
	return &CheckpointStore{path: filepath.Join(dir, "cursors.json")}
}

// Load returns the stored cursors. A missing file is not an error, it
// just means no baseline has been established yet.
func (c *CheckpointStore) Load() (map[string]string, bool, error) {
	if c.path == "" {
		return nil, false, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	if cp.Cursors == nil {
		cp.Cursors = map[string]string{}
	}
	return cp.Cursors, true, nil
}

// Save writes the cursors through a temp file so a crash mid-write
// never leaves a truncated checkpoint behind
func (c *CheckpointStore) Save(cursors map[string]string) error {
	if c.path == "" {
		return nil
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	cp := checkpoint{
		Cursors:   cursors,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}
