package store

import (
	"context"
	"testing"

	"runbridge/src/documents"
)

func archiveRun(t *testing.T, s Store, topic, uid string, complete bool) {
	t.Helper()
	ctx := context.Background()

	if err := s.InsertDocument(ctx, topic, uid, documents.NameStart, documents.Document{"uid": uid}); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}
	if err := s.InsertDocument(ctx, topic, uid, documents.NameEvent, documents.Document{"seq_num": 1}); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}
	if complete {
		if err := s.InsertDocument(ctx, topic, uid, documents.NameStop, documents.Document{"run_start": uid}); err != nil {
			t.Fatalf("InsertDocument failed: %v", err)
		}
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	archiveRun(t, s, "runs", "run-1", true)
	archiveRun(t, s, "runs", "run-2", false)

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns returned %d runs, want 2", len(runs))
	}

	byUID := make(map[string]RunSummary)
	for _, r := range runs {
		byUID[r.UID] = r
	}
	if r := byUID["run-1"]; !r.Complete || r.DocumentCount != 3 {
		t.Errorf("run-1 summary = %+v, want complete with 3 documents", r)
	}
	if r := byUID["run-2"]; r.Complete || r.DocumentCount != 2 {
		t.Errorf("run-2 summary = %+v, want incomplete with 2 documents", r)
	}

	docs, err := s.GetRunDocuments(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRunDocuments failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("GetRunDocuments returned %d documents, want 3", len(docs))
	}
	for i, want := range []string{"start", "event", "stop"} {
		if docs[i].Name != want {
			t.Errorf("docs[%d].Name = %q, want %q (arrival order)", i, docs[i].Name, want)
		}
	}
}

func TestMemoryStoreListRunsLimit(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	archiveRun(t, s, "runs", "run-1", true)
	archiveRun(t, s, "runs", "run-2", true)
	archiveRun(t, s, "runs", "run-3", true)

	runs, err := s.ListRuns(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("ListRuns returned %d runs, want limit of 2", len(runs))
	}
}

func TestMemoryStoreIgnoresDocumentsWithoutRun(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.InsertDocument(ctx, "runs", "", documents.NameEvent, documents.Document{}); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns = %v, documents without a run must not form a run", runs)
	}
}

func TestMemoryStoreCopiesDocuments(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	doc := documents.Document{"uid": "run-1"}
	if err := s.InsertDocument(ctx, "runs", "run-1", documents.NameStart, doc); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}
	doc["uid"] = "mutated"

	docs, err := s.GetRunDocuments(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRunDocuments failed: %v", err)
	}
	if docs[0].Doc["uid"] != "run-1" {
		t.Error("Archived document must not observe caller mutation")
	}
}
