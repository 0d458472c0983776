package note

import (
	"strings"

	"github.com/yarko-w/jw-daily-text/internal/extract"
)

// DefaultHeading prefixes the date in the block heading.
const DefaultHeading = "Daily Text"

// Options controls how a record is rendered.
type Options struct {
	// Heading is written before the date. Empty means DefaultHeading.
	Heading string
}

// Format renders rec as a Markdown block for an Obsidian vault. Empty fields
// are left out; the heading and closing rule are always present.
func Format(rec extract.Record, opts Options) string {
	heading := strings.TrimSpace(opts.Heading)
	if heading == "" {
		heading = DefaultHeading
	}
	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(heading)
	if rec.Date != "" {
		b.WriteString(" ")
		b.WriteString(rec.Date)
	}
	b.WriteString("\n")
	if rec.Citation != "" {
		b.WriteString("> [!quote] ")
		b.WriteString(rec.Citation)
		b.WriteString("\n")
	}
	if rec.Scripture != "" {
		b.WriteString("*")
		b.WriteString(rec.Scripture)
		b.WriteString("*\n")
	}
	if rec.Commentary != "" {
		b.WriteString("\n")
		b.WriteString(rec.Commentary)
		b.WriteString("\n")
	}
	b.WriteString("\n---\n")
	return b.String()
}
