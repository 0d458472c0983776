package note

import (
    "bufio"
    "fmt"
    "os"
    "path/filepath"
    "regexp"
    "strings"

    "github.com/jung-kurt/gofpdf"
)

var linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`) // [text](url)

// WritePDF renders a daily text block to a single-page PDF. Headings, the
// quote callout, the italic scripture line and the commentary paragraph are
// laid out in order, and Markdown links become clickable. It is not a general
// Markdown renderer.
func WritePDF(markdown string, outPath string) error {
    if dir := filepath.Dir(outPath); dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return fmt.Errorf("create pdf dir: %w", err)
        }
    }
    pdf := gofpdf.New("P", "mm", "A4", "")
    // Core fonts are cp1252; curly quotes and dashes need translating.
    tr := pdf.UnicodeTranslatorFromDescriptor("")
    pdf.SetFont("Helvetica", "", 11)
    pdf.AddPage()

    scanner := bufio.NewScanner(strings.NewReader(markdown))
    scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
    for scanner.Scan() {
        s := strings.TrimSpace(scanner.Text())
        switch {
        case s == "":
            pdf.Ln(4)
        case s == "---":
            x, y := pdf.GetXY()
            w, _ := pdf.GetPageSize()
            _, _, right, _ := pdf.GetMargins()
            pdf.Line(x, y+2, w-right, y+2)
            pdf.Ln(6)
        case strings.HasPrefix(s, "#"):
            i := 0
            for i < len(s) && s[i] == '#' {
                i++
            }
            text := strings.TrimSpace(s[i:])
            if text == "" {
                continue
            }
            size := 14.0
            if i >= 2 {
                size = 12.0
            }
            pdf.SetFont("Helvetica", "B", size)
            pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
            pdf.SetFont("Helvetica", "", 11)
        case strings.HasPrefix(s, "> [!quote]"):
            text := strings.TrimSpace(strings.TrimPrefix(s, "> [!quote]"))
            pdf.SetFont("Helvetica", "B", 11)
            pdf.CellFormat(0, 6, tr(text), "", 1, "L", false, 0, "")
            pdf.SetFont("Helvetica", "", 11)
        case len(s) > 2 && strings.HasPrefix(s, "*") && strings.HasSuffix(s, "*"):
            pdf.SetFont("Helvetica", "I", 11)
            pdf.MultiCell(0, 5, tr(strings.Trim(s, "*")), "", "L", false)
            pdf.SetFont("Helvetica", "", 11)
        default:
            writeLinked(pdf, tr, s)
        }
    }
    if err := scanner.Err(); err != nil {
        return fmt.Errorf("scan markdown: %w", err)
    }
    return pdf.OutputFileAndClose(outPath)
}

// writeLinked writes a paragraph, turning [text](url) into PDF links.
func writeLinked(pdf *gofpdf.Fpdf, tr func(string) string, s string) {
    parts := linkRe.FindAllStringSubmatchIndex(s, -1)
    if len(parts) == 0 {
        pdf.MultiCell(0, 5, tr(s), "", "L", false)
        return
    }
    pos := 0
    for _, m := range parts {
        // m: [fullStart, fullEnd, textStart, textEnd, urlStart, urlEnd]
        if m[0] > pos {
            pdf.Write(5, tr(s[pos:m[0]]))
        }
        pdf.WriteLinkString(5, tr(s[m[2]:m[3]]), s[m[4]:m[5]])
        pos = m[1]
    }
    if pos < len(s) {
        pdf.Write(5, tr(s[pos:]))
    }
    pdf.Ln(6)
}
