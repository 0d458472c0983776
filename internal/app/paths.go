package app

import (
    "path/filepath"
    "strings"
    "time"

    "github.com/yarko-w/jw-daily-text/internal/note"
)

// derivePDFPath expands the PDF template with the same date tokens as the
// note path and places the result under the vault. The extension is forced
// to .pdf.
func derivePDFPath(cfg Config, date time.Time) (string, error) {
    rel, err := note.ExpandPath(cfg.PDFPathTemplate, date)
    if err != nil {
        return "", err
    }
    if strings.HasSuffix(strings.ToLower(rel), ".md") {
        rel = rel[:len(rel)-len(".md")]
    }
    if !strings.HasSuffix(strings.ToLower(rel), ".pdf") {
        rel += ".pdf"
    }
    return filepath.Join(cfg.VaultDir, filepath.FromSlash(rel)), nil
}
