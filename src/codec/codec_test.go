package codec

import (
	"errors"
	"reflect"
	"testing"

	"runbridge/src/documents"
)

// sampleEnvelope returns an envelope built only from values that every wire
// format decodes back to the same Go types (strings, float64, bool, nested
// maps and slices), so the round-trip comparison is exact.
func sampleEnvelope() documents.Envelope {
	return documents.Envelope{
		Name: documents.NameEvent,
		Doc: documents.Document{
			"uid":        "event-uid-001",
			"run_start":  "run-uid-abc",
			"seq_num":    float64(17),
			"time":       1693404000.25,
			"filled":     true,
			"data":       map[string]any{"detector": 0.125, "motor": -3.5},
			"timestamps": []any{1693404000.1, 1693404000.2},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	codecs := []Codec{NewJSONCodec(), NewMsgpackCodec()}

	for _, c := range codecs {
		t.Run(c.Name(), func(t *testing.T) {
			want := sampleEnvelope()

			data, err := c.Encode(want)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			var got documents.Envelope
			if err := c.Decode(data, &got); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if got.Name != want.Name {
				t.Errorf("Name = %q, want %q", got.Name, want.Name)
			}
			if !reflect.DeepEqual(got.Doc, want.Doc) {
				t.Errorf("Doc = %#v, want %#v", got.Doc, want.Doc)
			}
		})
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	codecs := []Codec{NewJSONCodec(), NewMsgpackCodec()}
	malformed := []byte("\x00this is not a valid payload{{{")

	for _, c := range codecs {
		t.Run(c.Name(), func(t *testing.T) {
			var v documents.Envelope
			err := c.Decode(malformed, &v)
			if err == nil {
				t.Fatal("Expected decode error for malformed payload")
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("Expected *DecodeError, got %T: %v", err, err)
			}
			if decodeErr.Format != c.Name() {
				t.Errorf("DecodeError.Format = %q, want %q", decodeErr.Format, c.Name())
			}
		})
	}
}

func TestEmptyDocument(t *testing.T) {
	c := NewJSONCodec()
	want := documents.Envelope{Name: documents.NameStop, Doc: documents.Document{}}

	data, err := c.Encode(want)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var got documents.Envelope
	if err := c.Decode(data, &got); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Name != documents.NameStop {
		t.Errorf("Name = %q, want %q", got.Name, documents.NameStop)
	}
	if len(got.Doc) != 0 {
		t.Errorf("Expected empty document, got %#v", got.Doc)
	}
}
