package search

import (
	"context"
	"regexp"
	"strings"

	"sdgsearch/tracing"
)

// Tokenize lowercases and splits on whitespace, mirroring how documents are
// indexed.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Vectorize builds the sparse query vector: term count times the term's IDF.
// Terms outside the vocabulary drop out.
func (ix *Index) Vectorize(ctx context.Context, query string) map[string]float64 {
	ctx, span := tracing.OpenSpan(ctx, "vectorize_query")
	defer span.End()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	tokens := Tokenize(query)
	vector := map[string]float64{}
	for term, count := range termCounts(tokens) {
		if idf, ok := ix.idf[term]; ok {
			vector[term] = float64(count) * idf
		}
	}

	tracing.SetAttribute(ctx, "query.token_count", len(tokens))
	tracing.SetAttribute(ctx, "query.vector_size", len(vector))

	return vector
}

var sdgPattern = regexp.MustCompile(`(?i)\bsdg\s*-?\s*([1-9][0-9]?)\b`)

// ClassifySDG reports whether a query targets a specific SDG goal ("sdg7",
// "SDG 13") and returns the canonical tag for it.
func ClassifySDG(query string) (string, bool) {
	m := sdgPattern.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}

	return "sdg" + m[1], true
}
