package extract

import (
	"strings"
	"unicode/utf8"
)

var scriptureStrategies = []strategy{
	scriptureFromParagraphs,
	scriptureFromEmphasis,
}

// Scripture returns the quoted verse of a daily text fragment, or "" when
// nothing qualifies.
func Scripture(doc string) string {
	s, _ := firstOf(doc, scriptureStrategies...)
	return s
}

// rejectScripture reports whether a paragraph cannot be the quoted verse.
func rejectScripture(raw, text string) bool {
	return isLinkOnly(raw) ||
		startsWithDash(text) ||
		startsWithNumberedBook(text) ||
		isHeader(text) ||
		isTooShortOrMarked(text) ||
		hasFewWords(text)
}

func scriptureFromParagraphs(doc string) (string, bool) {
	for _, raw := range paragraphs(doc) {
		text := Normalize(raw)
		if rejectScripture(raw, text) {
			continue
		}
		if s := cleanScripture(text); s != "" {
			return s, true
		}
	}
	return "", false
}

func scriptureFromEmphasis(doc string) (string, bool) {
	for _, text := range emphasisTexts(doc) {
		if looksLikeCitation(text) || utf8.RuneCountInString(text) < minEmphasisRunes {
			continue
		}
		if s := cleanScripture(text); s != "" {
			return s, true
		}
	}
	return "", false
}

func cleanScripture(text string) string {
	text = splitEmbeddedCitation(text)
	return strings.TrimSpace(strings.TrimRight(text, "—–- "))
}
