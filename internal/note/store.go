package note

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrAlreadyPresent is returned by Save when the note already holds the block.
var ErrAlreadyPresent = errors.New("note: block already present")

// Store writes blocks into Markdown files under Root.
type Store struct {
	Root string

	mu sync.Mutex
}

// Resolve joins a vault-relative path onto Root.
func (s *Store) Resolve(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// Save creates the note at rel or appends block to it, separated by a blank
// line. It returns the file path written. The file is replaced atomically so
// a reader never sees a half-written note.
func (s *Store) Save(rel string, block string) (string, error) {
	if strings.TrimSpace(s.Root) == "" {
		return "", errors.New("note: vault root not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Resolve(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create note dir: %w", err)
	}
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read note: %w", err)
	}
	body := strings.TrimRight(block, "\n") + "\n"
	if len(existing) > 0 {
		if strings.Contains(string(existing), strings.TrimSpace(block)) {
			return path, ErrAlreadyPresent
		}
		body = strings.TrimRight(string(existing), "\n") + "\n\n" + body
	}
	if err := writeFileAtomic(path, []byte(body)); err != nil {
		return "", fmt.Errorf("write note: %w", err)
	}
	log.Debug().Str("path", path).Bool("appended", len(existing) > 0).Msg("note saved")
	return path, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
