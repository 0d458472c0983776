package cache

import (
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "strings"
    "time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
    if strings.TrimSpace(dir) == "" {
        return errors.New("empty dir")
    }
    if err := os.RemoveAll(dir); err != nil {
        return err
    }
    return os.MkdirAll(dir, 0o755)
}

// PurgeHTTPCacheByAge removes feed responses saved longer than maxAge ago.
// SavedAt is read from <key>.meta.json; meta and body go together. Stray
// temp files from interrupted writes are removed as well.
func PurgeHTTPCacheByAge(dir string, maxAge time.Duration, now time.Time) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    now = now.UTC()
    removed := 0
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            if errors.Is(err, fs.ErrNotExist) {
                return nil
            }
            return err
        }
        if d.IsDir() {
            return nil
        }
        name := d.Name()
        if strings.HasSuffix(name, ".tmp") {
            _ = os.Remove(path)
            return nil
        }
        if !strings.HasSuffix(name, ".meta.json") {
            return nil
        }
        b, err := os.ReadFile(path)
        if err != nil {
            return nil // skip unreadable
        }
        var e HTTPEntry
        if err := json.Unmarshal(b, &e); err != nil {
            return nil // skip malformed
        }
        if now.Sub(e.SavedAt) <= maxAge {
            return nil
        }
        removed++
        _ = os.Remove(path)
        _ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
        return nil
    })
    return removed, err
}
