package app

import (
    "bufio"
    "errors"
    "fmt"
    "os"
    "strings"
)

// LoadEnvFiles loads one or more dotenv files of KEY=VALUE pairs into the
// process environment, typically the DAILYTEXT_* settings for a vault. Later
// files override earlier ones. Lines starting with '#' and blank lines are
// ignored, an optional leading "export " is accepted, and values are not
// expanded.
func LoadEnvFiles(paths ...string) error {
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        if err := loadEnvFile(p); err != nil {
            // Missing files are not fatal; continue to next path
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return err
        }
    }
    return nil
}

func loadEnvFile(path string) error {
    f, err := os.Open(path)
    if err != nil {
        return err
    }
    defer f.Close()

    scanner := bufio.NewScanner(f)
    for scanner.Scan() {
        key, val, ok := parseEnvLine(scanner.Text())
        if !ok {
            continue
        }
        if err := os.Setenv(key, val); err != nil {
            return fmt.Errorf("%s: set %s: %w", path, key, err)
        }
    }
    return scanner.Err()
}

// parseEnvLine splits one dotenv line at its first '='. Comments, blank
// lines and lines without a key report ok=false. A value wrapped in matching
// single or double quotes is unwrapped once.
func parseEnvLine(line string) (key, val string, ok bool) {
    line = strings.TrimSpace(line)
    if line == "" || line[0] == '#' {
        return "", "", false
    }
    line = strings.TrimPrefix(line, "export ")
    k, v, found := strings.Cut(line, "=")
    key = strings.TrimSpace(k)
    if !found || key == "" {
        return "", "", false
    }
    val = strings.TrimSpace(v)
    if n := len(val); n >= 2 && (val[0] == '"' || val[0] == '\'') && val[n-1] == val[0] {
        val = val[1 : n-1]
    }
    return key, val, true
}
