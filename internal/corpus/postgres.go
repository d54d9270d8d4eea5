// Package corpus loads the startup document set into the index. The index
// itself is never persisted; it is rebuilt at process start from either a
// Postgres documents table or the built-in seed set.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/web8-labs/ultrasearch/internal/engine/index"
	"github.com/web8-labs/ultrasearch/pkg/postgres"
	"github.com/web8-labs/ultrasearch/pkg/resilience"
)

const loadQuery = `
SELECT id, title, content, url, doc_type, size_bytes, last_modified, language, tags
FROM documents
ORDER BY id`

// Loader bulk-loads documents from Postgres into a store at startup.
type Loader struct {
	client *postgres.Client
	logger *slog.Logger
}

// NewLoader creates a Loader reading from client.
func NewLoader(client *postgres.Client) *Loader {
	return &Loader{
		client: client,
		logger: slog.Default().With("component", "corpus-loader"),
	}
}

// Load reads every row of the documents table and indexes it. The read is
// retried with backoff so a briefly unavailable database does not fail
// startup. Returns the number of documents indexed.
func (l *Loader) Load(ctx context.Context, store *index.Store) (int, error) {
	var count int
	err := resilience.Retry(ctx, "corpus-load", resilience.RetryConfig{}, func() error {
		n, err := l.loadOnce(ctx, store)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	l.logger.Info("corpus loaded", "documents", count)
	return count, nil
}

func (l *Loader) loadOnce(ctx context.Context, store *index.Store) (int, error) {
	rows, err := l.client.DB.QueryContext(ctx, loadQuery)
	if err != nil {
		return 0, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			doc      index.Document
			docType  string
			language *string
			modified time.Time
			tags     []string
		)
		if err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.Content,
			&doc.URL,
			&docType,
			&doc.Metadata.Size,
			&modified,
			&language,
			pq.Array(&tags),
		); err != nil {
			return 0, fmt.Errorf("scanning document row: %w", err)
		}

		doc.Type = index.DocType(docType)
		if !doc.Type.Valid() {
			doc.Type = index.TypeDocument
		}
		doc.Metadata.LastModified = modified
		if language != nil {
			doc.Metadata.Language = *language
		}
		doc.Metadata.Tags = tags

		store.Add(doc)
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating document rows: %w", err)
	}
	return count, nil
}
