package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Commentary returns the first substantive paragraph after the header and
// the scripture paragraph, with links rewritten as [text](url) and resolved
// against base.
func Commentary(doc string, base *url.URL) string {
	segs := splitParagraphs(doc)
	if len(segs) <= 2 {
		return ""
	}
	for _, raw := range segs[2:] {
		text := Normalize(rewriteLinks(raw, base))
		if utf8.RuneCountInString(text) >= minCommentaryRunes {
			return text
		}
	}
	return ""
}

func rewriteLinks(raw string, base *url.URL) string {
	return linkRe.ReplaceAllStringFunc(raw, func(m string) string {
		sub := linkRe.FindStringSubmatch(m)
		text := Normalize(sub[2])
		if text == "" {
			return ""
		}
		return "[" + text + "](" + resolveLink(sub[1], base) + ")"
	})
}

func resolveLink(href string, base *url.URL) string {
	href = strings.TrimSpace(entityReplacer.Replace(href))
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
