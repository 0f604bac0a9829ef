package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"sdgsearch/tracing"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const schema = `
create table if not exists terms (
	term text primary key,
	idf  real not null
);
create table if not exists postings (
	term    text    not null,
	doc_id  integer not null,
	weight  real    not null,
	primary key (term, doc_id)
);
create table if not exists documents (
	id          integer primary key,
	title       text not null,
	description text not null default '',
	tags        text not null default ''
);
`

// Build computes TF-IDF weights for the given documents and writes a complete
// index database to file, replacing any previous contents. This is the
// offline step; the serving path only ever reads.
func Build(ctx context.Context, file string, docs []Document) error {
	ctx, span := tracing.OpenSpan(ctx, "build_tfidf_index")
	defer span.End()

	db, err := otelsql.Open("sqlite3", file,
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return tracing.Error(span, fmt.Errorf("creating index %s: %w", file, err))
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return tracing.Error(span, err)
	}

	// document frequency per term
	counts := make([]map[string]int, len(docs))
	df := map[string]int{}
	for i, doc := range docs {
		counts[i] = termCounts(Tokenize(doc.Title + " " + doc.Description))
		for term := range counts[i] {
			df[term]++
		}
	}

	// smoothed idf, so terms present in every document still carry weight
	idf := make(map[string]float64, len(df))
	for term, n := range df {
		idf[term] = math.Log(float64(1+len(docs))/float64(1+n)) + 1
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return tracing.Error(span, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"terms", "postings", "documents"} {
		if _, err := tx.ExecContext(ctx, "delete from "+table); err != nil {
			return tracing.Error(span, err)
		}
	}

	for term, value := range idf {
		if _, err := tx.ExecContext(ctx, `insert into terms (term, idf) values (?, ?)`, term, value); err != nil {
			return tracing.Error(span, err)
		}
	}

	for i, doc := range docs {
		_, err := tx.ExecContext(ctx,
			`insert into documents (id, title, description, tags) values (?, ?, ?, ?)`,
			doc.ID, doc.Title, doc.Description, strings.Join(doc.Tags, ","))
		if err != nil {
			return tracing.Error(span, err)
		}

		for term, count := range counts[i] {
			weight := float64(count) * idf[term]
			_, err := tx.ExecContext(ctx,
				`insert into postings (term, doc_id, weight) values (?, ?, ?)`,
				term, doc.ID, weight)
			if err != nil {
				return tracing.Error(span, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return tracing.Error(span, err)
	}

	tracing.SetAttribute(ctx, "tfidf.vocabulary_size", len(idf))
	tracing.SetAttribute(ctx, "tfidf.document_count", len(docs))

	return nil
}

func termCounts(tokens []string) map[string]int {
	counts := map[string]int{}
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}
