package extract

import "strings"

// The feed has shipped both an embedded format (quote and reference in one
// <em>, dash separated) and a traditional one (reference in its own second
// <em>). Pattern matches are tried before position.
var citationStrategies = []strategy{
	citationFromEmphasisPattern,
	citationFromSecondEmphasis,
	citationFromParagraphs,
}

// Citation returns the bible reference of a daily text fragment, or "".
func Citation(doc string) string {
	s, _ := firstOf(doc, citationStrategies...)
	return s
}

func matchCitation(text string) (string, bool) {
	if m := dashRefRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if bareRefRe.MatchString(text) {
		return text, true
	}
	return "", false
}

func citationFromEmphasisPattern(doc string) (string, bool) {
	for _, text := range emphasisTexts(doc) {
		if ref, ok := matchCitation(text); ok {
			return ref, true
		}
	}
	return "", false
}

func citationFromSecondEmphasis(doc string) (string, bool) {
	spans := emphasisTexts(doc)
	if len(spans) < 2 || spans[1] == "" {
		return "", false
	}
	return spans[1], true
}

// citationFromParagraphs covers the current feed layout where the reference
// is a link placed after the </em>, inside the first paragraph. Without any
// emphasis span there is no scripture to cite and nothing is returned.
func citationFromParagraphs(doc string) (string, bool) {
	if len(emphasisTexts(doc)) == 0 {
		return "", false
	}
	for _, raw := range paragraphs(doc) {
		if m := dashRefRe.FindStringSubmatch(Normalize(raw)); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}
