// Package store defines the interface for the document archive.
package store

import (
	"context"
	"time"

	"runbridge/src/documents"
)

// ArchivedDocument is one document as persisted by the archive agent.
type ArchivedDocument struct {
	ID         int64              `json:"id"`
	Topic      string             `json:"topic"`
	RunUID     string             `json:"run_uid"`
	Name       string             `json:"name"`
	Doc        documents.Document `json:"doc"`
	ReceivedAt time.Time          `json:"received_at"`
}

// RunSummary describes one archived run.
type RunSummary struct {
	UID           string    `json:"uid"`
	Topic         string    `json:"topic"`
	StartedAt     time.Time `json:"started_at"`
	DocumentCount int       `json:"document_count"`
	// Complete is true once the run's stop document has been archived.
	Complete bool `json:"complete"`
}

// Store persists consumed documents and answers queries about archived runs.
type Store interface {
	// InsertDocument appends one document to the archive. runUID may be
	// empty when the document carries no run reference.
	InsertDocument(ctx context.Context, topic, runUID, name string, doc documents.Document) error

	// ListRuns returns the most recently started runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// GetRunDocuments returns every archived document of one run in
	// arrival order.
	GetRunDocuments(ctx context.Context, runUID string) ([]ArchivedDocument, error)

	// Close releases the store connection.
	Close() error
}
