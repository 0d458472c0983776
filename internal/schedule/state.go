package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DateLayout is the calendar-day layout used for the run marker.
const DateLayout = "2006-01-02"

// State is the marker persisted between runs.
type State struct {
	LastRunDate string `json:"lastRunDate"`
}

// LoadState reads the marker file. A missing file yields a zero State.
func LoadState(path string) (State, error) {
	var st State
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, fmt.Errorf("decode state %s: %w", path, err)
	}
	return st, nil
}

// SaveState writes the marker atomically.
func SaveState(path string, st State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

// RanOn reports whether the marker records the calendar day of t.
func (s State) RanOn(t time.Time) bool {
	return s.LastRunDate == t.Format(DateLayout)
}
