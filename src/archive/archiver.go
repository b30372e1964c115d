// Package archive provides the Archive Agent. The agent consumes documents
// from the broker and persists every one of them into a Store, grouped by
// the uid of the run that emitted them.
package archive

import (
	"context"
	"fmt"

	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/consumer"
	"runbridge/src/documents"
	"runbridge/src/logger"
	"runbridge/src/store"
)

// Agent consumes documents and archives them.
type Agent struct {
	store  store.Store
	logger logger.Logger

	// Most recent run start uid seen per topic. Documents that do not
	// carry a run reference themselves are attributed to this run.
	currentRun map[string]string

	archived int64
}

// NewAgent creates a new archive agent writing into st.
func NewAgent(st store.Store, log logger.Logger) *Agent {
	return &Agent{
		store:      st,
		logger:     log,
		currentRun: make(map[string]string),
	}
}

// Run consumes documents from the given topics until ctx is cancelled.
// Each dispatched document is archived before the next poll.
func (a *Agent) Run(ctx context.Context, client broker.ConsumerClient, c codec.Codec, topics []string) error {
	a.logger.Info("[ArchiveAgent] Starting...")

	cons, err := consumer.NewDocumentConsumer(consumer.Config{Topics: topics}, client, c, a.handle, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create document consumer: %w", err)
	}

	a.logger.Info("[ArchiveAgent] Listening for documents on %v...", topics)

	if err := cons.Start(consumer.UntilContextDone(ctx)); err != nil {
		return err
	}

	a.logger.Info("[ArchiveAgent] Shutting down (%d documents archived)", a.archived)
	return nil
}

// Handler returns the agent's document handler, for callers that run their
// own consumer loop instead of Run.
func (a *Agent) Handler() consumer.DocumentHandler {
	return a.handle
}

// handle archives a single document.
func (a *Agent) handle(c *consumer.Consumer, topic, name string, doc documents.Document) error {
	runUID := documents.RunUID(name, doc)
	if name == documents.NameStart && runUID != "" {
		a.currentRun[topic] = runUID
		a.logger.Info("[ArchiveAgent] Run %s started on topic %s", runUID, topic)
	}
	if runUID == "" {
		runUID = a.currentRun[topic]
	}

	if err := a.store.InsertDocument(context.Background(), topic, runUID, name, doc); err != nil {
		return fmt.Errorf("failed to archive %s document: %w", name, err)
	}
	a.archived++

	if name == documents.NameStop {
		a.logger.Info("[ArchiveAgent] Run %s complete on topic %s", runUID, topic)
		delete(a.currentRun, topic)
	} else {
		a.logger.Debug("[ArchiveAgent] Archived %s document for run %s", name, runUID)
	}
	return nil
}

// Archived returns the number of documents archived so far.
func (a *Agent) Archived() int64 {
	return a.archived
}
