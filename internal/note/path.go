package note

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultPathTemplate files each day under a year/month folder.
const DefaultPathTemplate = "Daily/{YYYY}/{MM}/{YYYY}-{MM}-{DD}"

// ErrUnsafePath is returned when an expanded template would leave the vault.
var ErrUnsafePath = errors.New("note: path escapes vault")

var pathTokens = []string{"{YYYY}", "{MM}", "{DD}"}

// ExpandPath fills the date tokens of template and returns a slash-separated
// path relative to the vault root, with a .md extension.
func ExpandPath(template string, date time.Time) (string, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		template = DefaultPathTemplate
	}
	p := strings.NewReplacer(
		"{YYYY}", fmt.Sprintf("%04d", date.Year()),
		"{MM}", fmt.Sprintf("%02d", int(date.Month())),
		"{DD}", fmt.Sprintf("%02d", date.Day()),
	).Replace(template)
	if strings.ContainsAny(p, "{}") {
		return "", fmt.Errorf("note: unknown token in path template %q", template)
	}
	if !strings.HasSuffix(strings.ToLower(p), ".md") {
		p += ".md"
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %s is absolute", ErrUnsafePath, p)
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, p)
	}
	return clean, nil
}

// HasDateToken reports whether template varies by day. A template without
// any token would append every day to the same file, which is allowed.
func HasDateToken(template string) bool {
	for _, tok := range pathTokens {
		if strings.Contains(template, tok) {
			return true
		}
	}
	return false
}
