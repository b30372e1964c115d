// Package documents defines the document types that flow through the bridge.
//
// A data-acquisition session emits a stream of named, dictionary-shaped
// documents describing one experiment run: a "start" document, one or more
// "descriptor" documents, a sequence of "event" documents, and a closing
// "stop" document. The bridge treats document contents opaquely; only the
// names below carry meaning to adjacent tooling.
package documents

// Document names emitted by an acquisition session.
const (
	NameStart      = "start"
	NameDescriptor = "descriptor"
	NameEvent      = "event"
	NameEventPage  = "event_page"
	NameResource   = "resource"
	NameDatum      = "datum"
	NameDatumPage  = "datum_page"
	NameStop       = "stop"
	NameBulkEvents = "bulk_events"
	NameBulkDatum  = "bulk_datum"
)

// knownNames is the fixed enumeration of document names.
var knownNames = map[string]bool{
	NameStart:      true,
	NameDescriptor: true,
	NameEvent:      true,
	NameEventPage:  true,
	NameResource:   true,
	NameDatum:      true,
	NameDatumPage:  true,
	NameStop:       true,
	NameBulkEvents: true,
	NameBulkDatum:  true,
}

// IsKnown reports whether name is one of the document names an acquisition
// session can emit.
func IsKnown(name string) bool {
	return knownNames[name]
}

// Document is the dictionary-shaped payload of a single document.
type Document map[string]any

// Envelope is the wire shape of one document: the document name paired with
// its payload. Every Kafka message value produced by the bridge is one
// encoded Envelope.
type Envelope struct {
	Name string   `json:"name" msgpack:"name"`
	Doc  Document `json:"doc" msgpack:"doc"`
}

// RunUID returns the unique identifier of the run a document belongs to.
// A "start" document carries the uid directly; a "stop" or "descriptor"
// document references the start document through run_start. Returns "" when
// the document carries neither.
func RunUID(name string, doc Document) string {
	field := "run_start"
	if name == NameStart {
		field = "uid"
	}
	uid, _ := doc[field].(string)
	return uid
}
