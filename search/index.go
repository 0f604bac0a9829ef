package search

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"sync"

	"sdgsearch/tracing"

	"github.com/XSAM/otelsql"
	_ "github.com/mattn/go-sqlite3"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Document is one searchable entry. Tags hold the SDG goal labels ("sdg7").
type Document struct {
	ID          int64
	Title       string
	Description string
	Tags        []string
}

type posting struct {
	doc    int64
	weight float64
}

// Index holds the TF-IDF components in memory, loaded from a SQLite file
// produced by Build. Reload swaps the whole in-memory state, so lookups keep
// working while a new index file is being read.
type Index struct {
	db *sql.DB

	mu        sync.RWMutex
	idf       map[string]float64
	postings  map[string][]posting
	documents map[int64]Document
	norms     map[int64]float64
}

// Open connects to the index database and loads it. The connection goes
// through otelsql so index reads show up as spans.
func Open(ctx context.Context, file string) (*Index, error) {
	db, err := otelsql.Open("sqlite3", file,
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", file, err)
	}

	ix := &Index{db: db}
	if err := ix.Reload(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return ix, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Reload reads every component from the database and swaps it in atomically.
func (ix *Index) Reload(ctx context.Context) error {
	ctx, span := tracing.OpenSpan(ctx, "load_tfidf_components")
	defer span.End()

	idf, err := ix.loadTerms(ctx)
	if err != nil {
		return tracing.Error(span, err)
	}

	postings, norms, err := ix.loadPostings(ctx)
	if err != nil {
		return tracing.Error(span, err)
	}

	documents, err := ix.loadDocuments(ctx)
	if err != nil {
		return tracing.Error(span, err)
	}

	tracing.SetAttribute(ctx, "tfidf.vocabulary_size", len(idf))
	tracing.SetAttribute(ctx, "tfidf.document_count", len(documents))

	ix.mu.Lock()
	ix.idf = idf
	ix.postings = postings
	ix.documents = documents
	ix.norms = norms
	ix.mu.Unlock()

	return nil
}

func (ix *Index) VocabularySize() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.idf)
}

func (ix *Index) DocumentCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.documents)
}

func (ix *Index) loadTerms(ctx context.Context) (map[string]float64, error) {
	rows, err := ix.db.QueryContext(ctx, `select term, idf from terms`)
	if err != nil {
		return nil, fmt.Errorf("reading terms: %w", err)
	}
	defer rows.Close()

	idf := map[string]float64{}
	for rows.Next() {
		var term string
		var value float64
		if err := rows.Scan(&term, &value); err != nil {
			return nil, err
		}
		idf[term] = value
	}

	return idf, rows.Err()
}

func (ix *Index) loadPostings(ctx context.Context) (map[string][]posting, map[int64]float64, error) {
	rows, err := ix.db.QueryContext(ctx, `select term, doc_id, weight from postings`)
	if err != nil {
		return nil, nil, fmt.Errorf("reading postings: %w", err)
	}
	defer rows.Close()

	postings := map[string][]posting{}
	sumSquares := map[int64]float64{}
	for rows.Next() {
		var term string
		var p posting
		if err := rows.Scan(&term, &p.doc, &p.weight); err != nil {
			return nil, nil, err
		}
		postings[term] = append(postings[term], p)
		sumSquares[p.doc] += p.weight * p.weight
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	norms := make(map[int64]float64, len(sumSquares))
	for doc, sum := range sumSquares {
		norms[doc] = math.Sqrt(sum)
	}

	return postings, norms, nil
}

func (ix *Index) loadDocuments(ctx context.Context) (map[int64]Document, error) {
	rows, err := ix.db.QueryContext(ctx, `select id, title, description, tags from documents`)
	if err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	defer rows.Close()

	documents := map[int64]Document{}
	for rows.Next() {
		var doc Document
		var tags string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Description, &tags); err != nil {
			return nil, err
		}
		if tags != "" {
			doc.Tags = strings.Split(tags, ",")
		}
		documents[doc.ID] = doc
	}

	return documents, rows.Err()
}
