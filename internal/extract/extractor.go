package extract

import "net/url"

// Extractor defines a minimal interface for daily text extraction strategies.
// Implementations can swap heuristics without changing callers.
type Extractor interface {
	// Extract converts a raw HTML fragment into a Record.
	// Implementations should be deterministic and avoid side effects.
	Extract(input string) (Record, error)
}

// HeuristicExtractor runs the paragraph-first, emphasis-fallback heuristics.
// A nil LinkBase resolves links against DefaultLinkBase.
type HeuristicExtractor struct {
	LinkBase *url.URL
}

func (e HeuristicExtractor) Extract(input string) (Record, error) {
	return ExtractWithBase(input, e.LinkBase)
}
