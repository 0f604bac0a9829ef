package search

import (
	"context"

	"sdgsearch/tracing"
)

// Query is the full traced request pipeline, shared by the HTTP handler, the
// WebSocket handler and the CLI: a search_request span, query classification,
// the SDG goal attached as baggage for the span subtree the search opens, and
// the tag filter for goal-directed queries.
func (ix *Index) Query(ctx context.Context, query string, topN int) ([]Result, error) {
	ctx, span := tracing.OpenSpan(ctx, "search_request")
	defer span.End()

	tracing.SetAttribute(ctx, "query", query)

	tag, isSDG := ClassifySDG(query)
	tracing.SetAttribute(ctx, "query.is_sdg", isSDG)

	// the derived context is the baggage window: only spans opened from it
	// carry the goal
	searchCtx := ctx
	var token tracing.DetachToken
	if isSDG {
		searchCtx, token = tracing.AttachBaggage(ctx, "query.sdg_goal", tag)
	}

	results, err := ix.Search(searchCtx, query, topN)
	if err != nil {
		return nil, tracing.ErrorCtx(searchCtx, err)
	}

	if isSDG {
		results = FilterBySDGTag(searchCtx, results, tag)
		ctx = tracing.DetachBaggage(searchCtx, token)
	}

	// past the window: annotations and any further spans are goal-free
	tracing.SetAttribute(ctx, "response.count", len(results))

	return results, nil
}
