package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// entityReplacer decodes the entities the feed actually emits and drops
// zero-width spaces. It never rescans its own output; Normalize repeats
// the pass instead.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&#160;", " ",
	"&#xa0;", " ",
	"&amp;", "&",
	"&#38;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#34;", `"`,
	"&#39;", "'",
	"&#039;", "'",
	"&apos;", "'",
	"&#8203;", "",
	"&#x200b;", "",
	"&#x200B;", "",
	"&ZeroWidthSpace;", "",
	"\u200b", "",
)

// Normalize turns an HTML-bearing fragment into plain text: tags removed,
// common entities decoded, zero-width spaces dropped, whitespace collapsed
// and trimmed. The result is a fixed point, so Normalize(Normalize(s)) ==
// Normalize(s): markup or entities uncovered by decoding ("&lt;b&gt;",
// "&amp;lt;") are handled by another pass.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = normalizePass(s)
	// After the first pass s is NFC and every pass that changes it makes it
	// shorter, so this terminates.
	for {
		next := normalizePass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizePass(s string) string {
	s = stripTags(s)
	s = entityReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}

// stripTags keeps raw text tokens only. Raw is used instead of Text so that
// entity decoding stays under entityReplacer's control.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF for a string reader; anything else means the tokenizer
			// gave up, keep what we have.
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Raw())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "br":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if n := string(name); (n == "script" || n == "style") && skip > 0 {
				skip--
			}
		}
	}
}
