package consumer

import (
	"context"

	"runbridge/src/documents"
)

// Common continuation predicates. All of them share the loop's evaluation
// contract: they are consulted once after each dispatched message, so none
// of them can end the loop while the topic is idle.

// Forever returns a predicate that never ends the loop. The loop then only
// exits on an unrecovered fault or an external Stop.
func Forever() ContinuePolling {
	return func() bool { return true }
}

// UntilCount returns a predicate that ends the loop after n dispatched
// messages.
func UntilCount(n int) ContinuePolling {
	dispatched := 0
	return func() bool {
		dispatched++
		return dispatched < n
	}
}

// UntilContextDone returns a predicate that ends the loop once ctx is
// cancelled. Cancellation is only observed after the next dispatched
// message; on an idle topic the loop keeps polling.
func UntilContextDone(ctx context.Context) ContinuePolling {
	return func() bool { return ctx.Err() == nil }
}

// StopOnFirstStopDocument wraps handler so the returned predicate ends the
// loop once a "stop" document has been dispatched. A recording session
// closes with exactly one stop document, so this bounds consumption to one
// run.
func StopOnFirstStopDocument(handler DocumentHandler) (DocumentHandler, ContinuePolling) {
	seenStop := false
	wrapped := func(c *Consumer, topic, name string, doc documents.Document) error {
		if name == documents.NameStop {
			seenStop = true
		}
		return handler(c, topic, name, doc)
	}
	return wrapped, func() bool { return !seenStop }
}
