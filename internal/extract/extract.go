package extract

import (
	"errors"
	"net/url"
	"unicode/utf8"
)

// DefaultLinkBase is the origin commentary links are resolved against.
const DefaultLinkBase = "https://wol.jw.org"

var defaultBase, _ = url.Parse(DefaultLinkBase)

// ErrUnparseable is returned when the input is not text at all.
var ErrUnparseable = errors.New("extract: input is not valid UTF-8 text")

// Record is the structured form of one daily text. Any field may be empty;
// Date is filled in by the caller.
type Record struct {
	Date       string `json:"date" yaml:"date"`
	Scripture  string `json:"scripture" yaml:"scripture"`
	Citation   string `json:"citation" yaml:"citation"`
	Commentary string `json:"commentary" yaml:"commentary"`
}

// Empty reports whether no field could be located.
func (r Record) Empty() bool {
	return r.Scripture == "" && r.Citation == "" && r.Commentary == ""
}

// Extract pulls scripture, citation and commentary out of a daily text HTML
// fragment. Missing fields come back empty; only non-text input fails.
func Extract(input string) (Record, error) {
	return ExtractWithBase(input, defaultBase)
}

// ExtractWithBase is Extract with an explicit origin for commentary links.
func ExtractWithBase(input string, base *url.URL) (Record, error) {
	if !utf8.ValidString(input) {
		return Record{}, ErrUnparseable
	}
	if base == nil {
		base = defaultBase
	}
	return Record{
		Scripture:  Scripture(input),
		Citation:   Citation(input),
		Commentary: Commentary(input, base),
	}, nil
}

// strategy produces a candidate from the whole fragment, if it can.
type strategy func(doc string) (string, bool)

// firstOf tries strategies in order and returns the first hit.
func firstOf(doc string, strategies ...strategy) (string, bool) {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	return "", false
}
