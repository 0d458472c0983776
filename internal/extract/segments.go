package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// refPattern matches a bible reference: optional book number, a book name or
// abbreviation of up to three words, chapter, optional verse list or range,
// optional trailing period. "1 Cor. 13:8.", "John 3:16", "Ps. 23:1, 2".
const refPattern = `(?:[1-3]\s?)?[A-Za-z][A-Za-z.]*(?:\s[A-Za-z][A-Za-z.]*){0,2}\s?\d{1,3}(?::\d{1,3}(?:\s?[-–,]\s?\d{1,3})*)?\.?`

var (
	paragraphOpenRe  = regexp.MustCompile(`(?i)<p(?:\s[^>]*)?>`)
	paragraphCloseRe = regexp.MustCompile(`(?i)</p\s*>`)
	emphasisRe       = regexp.MustCompile(`(?is)<(?:em|i)(?:\s[^>]*)?>(.*?)</(?:em|i)\s*>`)
	anchorRe         = regexp.MustCompile(`(?is)<a(?:\s[^>]*)?>.*?</a\s*>`)
	linkRe           = regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*["']([^"']*)["'][^>]*>(.*?)</a\s*>`)

	// dash + reference at the end of the text: "...rule.—1 Cor. 13:8."
	dashRefRe = regexp.MustCompile(`[—–]\s*(` + refPattern + `)\s*$`)
	// free text, dash, reference: splits an embedded citation off scripture.
	embeddedRefRe = regexp.MustCompile(`^(.*?\S)\s*[—–]\s*` + refPattern + `\s*$`)
	bareRefRe     = regexp.MustCompile(`^` + refPattern + `$`)

	leadingDashRe  = regexp.MustCompile(`^[—–]`)
	numberedBookRe = regexp.MustCompile(`^[1-3]\s?[A-Z][a-z]+`)
	weekdayRe      = regexp.MustCompile(`(?i)^(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	monthRe        = regexp.MustCompile(`(?i)^(?:january|february|march|april|may|june|july|august|september|october|november|december)(?:\s+\d{1,2}\b|\s*$)`)
	numericDateRe  = regexp.MustCompile(`^\d{1,4}(?:[./-]\d{1,4}){0,2}\.?$`)
	isoDateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

const (
	minScriptureRunes  = 20
	minScriptureWords  = 5
	minEmphasisRunes   = 10
	minCommentaryRunes = 40
)

// splitParagraphs cuts doc at every opening <p> tag. Element 0 is whatever
// precedes the first paragraph (usually the date header); each later element
// runs up to its closing </p>.
func splitParagraphs(doc string) []string {
	parts := paragraphOpenRe.Split(doc, -1)
	for i := 1; i < len(parts); i++ {
		if loc := paragraphCloseRe.FindStringIndex(parts[i]); loc != nil {
			parts[i] = parts[i][:loc[0]]
		}
	}
	return parts
}

// paragraphs returns the raw paragraph bodies without the preamble.
func paragraphs(doc string) []string {
	return splitParagraphs(doc)[1:]
}

// emphasisTexts returns the normalized text of every <em>/<i> span in
// document order.
func emphasisTexts(doc string) []string {
	matches := emphasisRe.FindAllStringSubmatch(doc, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, Normalize(m[1]))
	}
	return out
}

// isLinkOnly reports whether the raw segment holds nothing but hyperlinks.
func isLinkOnly(raw string) bool {
	if !anchorRe.MatchString(raw) {
		return false
	}
	rest := Normalize(anchorRe.ReplaceAllString(raw, ""))
	return strings.Trim(rest, ".,;:—– ") == ""
}

func startsWithDash(text string) bool {
	return leadingDashRe.MatchString(text)
}

// startsWithNumberedBook catches reference lines such as "1 John 4:8".
func startsWithNumberedBook(text string) bool {
	return numberedBookRe.MatchString(text)
}

func isWeekdayHeader(text string) bool {
	return weekdayRe.MatchString(text)
}

func isMonthHeader(text string) bool {
	return monthRe.MatchString(text)
}

func isNumericDate(text string) bool {
	return numericDateRe.MatchString(text) || isoDateRe.MatchString(text)
}

func isHeader(text string) bool {
	return isWeekdayHeader(text) || isMonthHeader(text) || isNumericDate(text)
}

// isTooShortOrMarked rejects fragments below the scripture length floor and
// anything carrying footnote (*) or paragraph (¶) markers.
func isTooShortOrMarked(text string) bool {
	return utf8.RuneCountInString(text) < minScriptureRunes || strings.ContainsAny(text, "¶*")
}

func hasFewWords(text string) bool {
	return len(strings.Fields(text)) < minScriptureWords
}

// looksLikeCitation is true for text that is a reference rather than a quote.
func looksLikeCitation(text string) bool {
	return startsWithDash(text) || bareRefRe.MatchString(text)
}

// splitEmbeddedCitation drops a trailing "—Book 1:2" from text.
func splitEmbeddedCitation(text string) string {
	if m := embeddedRefRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}
