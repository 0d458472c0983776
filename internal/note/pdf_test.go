package note

import (
    "bytes"
    "os"
    "path/filepath"
    "testing"
)

func TestWritePDF_WritesFile(t *testing.T) {
    out := filepath.Join(t.TempDir(), "pdf", "day.pdf")
    md := "## Daily Text 2026-01-05\n" +
        "> [!quote] 1 Cor. 13:8.\n" +
        "*In everything let love rule.*\n\n" +
        "Love moves us, as the [study note](https://wol.jw.org/en/wol/d/r1/lp-e/1) explains — always.\n\n---\n"
    if err := WritePDF(md, out); err != nil {
        t.Fatalf("WritePDF: %v", err)
    }
    b, err := os.ReadFile(out)
    if err != nil {
        t.Fatalf("read pdf: %v", err)
    }
    if !bytes.HasPrefix(b, []byte("%PDF-")) {
        t.Fatalf("output is not a PDF")
    }
    if !bytes.Contains(b, []byte("wol.jw.org")) {
        t.Fatalf("expected link annotation in PDF")
    }
}
