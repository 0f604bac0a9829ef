package search

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"sdgsearch/tracing"

	"golang.org/x/sync/errgroup"
)

const DefaultTopN = 5

type Result struct {
	Score    float64
	Document Document
}

// Search runs the TF-IDF similarity search and returns the topN best scoring
// documents, highest first.
func (ix *Index) Search(ctx context.Context, query string, topN int) ([]Result, error) {
	ctx, span := tracing.OpenSpan(ctx, "semantic_search_core")
	defer span.End()

	if topN <= 0 {
		topN = DefaultTopN
	}

	tracing.SetAttribute(ctx, "search.query", query)
	tracing.SetAttribute(ctx, "search.top_n", topN)

	vector := ix.Vectorize(ctx, query)

	scores, err := ix.similarities(ctx, vector)
	if err != nil {
		return nil, tracing.ErrorCtx(ctx, err)
	}

	results := make([]Result, 0, len(scores))

	ix.mu.RLock()
	for doc, score := range scores {
		results = append(results, Result{Score: score, Document: ix.documents[doc]})
	}
	ix.mu.RUnlock()

	slices.SortFunc(results, func(a, b Result) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		// deterministic order for equal scores
		return int(a.Document.ID - b.Document.ID)
	})

	if len(results) > topN {
		results = results[:topN]
	}

	tracing.SetAttribute(ctx, "search.results_count", len(results))

	return results, nil
}

// similarities computes the cosine similarity between the query vector and
// every document it shares a term with. Documents sharing no term score zero
// and are skipped entirely, which is what makes the sparse walk cheap.
func (ix *Index) similarities(ctx context.Context, vector map[string]float64) (map[int64]float64, error) {
	ctx, span := tracing.OpenSpan(ctx, "calculate_similarities")
	defer span.End()

	start := time.Now()

	var queryNorm float64
	for _, weight := range vector {
		queryNorm += weight * weight
	}
	queryNorm = math.Sqrt(queryNorm)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var mu sync.Mutex
	dots := map[int64]float64{}

	wg := errgroup.Group{}
	for term, queryWeight := range vector {
		wg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			// walk the postings without the lock, merge under it
			partial := make(map[int64]float64, len(ix.postings[term]))
			for _, p := range ix.postings[term] {
				partial[p.doc] += queryWeight * p.weight
			}

			mu.Lock()
			defer mu.Unlock()
			for doc, dot := range partial {
				dots[doc] += dot
			}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}

	scores := make(map[int64]float64, len(dots))
	for doc, dot := range dots {
		norm := ix.norms[doc]
		if norm == 0 || queryNorm == 0 {
			continue
		}
		scores[doc] = dot / (norm * queryNorm)
	}

	tracing.SetAttribute(ctx, "calculation.duration_seconds", time.Since(start).Seconds())
	tracing.SetAttribute(ctx, "calculation.documents_processed", len(dots))

	return scores, nil
}

// FilterBySDGTag keeps only results whose document carries the given SDG goal
// tag.
func FilterBySDGTag(ctx context.Context, results []Result, tag string) []Result {
	ctx, span := tracing.OpenSpan(ctx, "filter_by_sdg_tag")
	defer span.End()

	filtered := make([]Result, 0, len(results))
	for _, result := range results {
		if slices.Contains(result.Document.Tags, tag) {
			filtered = append(filtered, result)
		}
	}

	tracing.SetAttribute(ctx, "sdg_results.count", len(filtered))

	return filtered
}
