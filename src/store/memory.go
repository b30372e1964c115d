// Package store: in-memory archive used by tests and the local demo mode.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"runbridge/src/documents"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	docs   []ArchivedDocument
}

// NewMemoryStore creates an empty in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// InsertDocument implements Store.
func (s *MemoryStore) InsertDocument(ctx context.Context, topic, runUID, name string, doc documents.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy the payload so later mutation by the caller cannot reach the
	// archive.
	copied := make(documents.Document, len(doc))
	for k, v := range doc {
		copied[k] = v
	}

	s.docs = append(s.docs, ArchivedDocument{
		ID:         s.nextID,
		Topic:      topic,
		RunUID:     runUID,
		Name:       name,
		Doc:        copied,
		ReceivedAt: time.Now().UTC(),
	})
	s.nextID++
	return nil
}

// ListRuns implements Store.
func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byUID := make(map[string]*RunSummary)
	var order []string
	for _, d := range s.docs {
		if d.RunUID == "" {
			continue
		}
		run, ok := byUID[d.RunUID]
		if !ok {
			run = &RunSummary{UID: d.RunUID, Topic: d.Topic, StartedAt: d.ReceivedAt}
			byUID[d.RunUID] = run
			order = append(order, d.RunUID)
		}
		run.DocumentCount++
		if d.Name == documents.NameStop {
			run.Complete = true
		}
	}

	// Newest first.
	sort.SliceStable(order, func(i, j int) bool {
		return byUID[order[i]].StartedAt.After(byUID[order[j]].StartedAt)
	})

	var runs []RunSummary
	for _, uid := range order {
		runs = append(runs, *byUID[uid])
		if len(runs) == limit {
			break
		}
	}
	return runs, nil
}

// GetRunDocuments implements Store.
func (s *MemoryStore) GetRunDocuments(ctx context.Context, runUID string) ([]ArchivedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []ArchivedDocument
	for _, d := range s.docs {
		if d.RunUID == runUID {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
