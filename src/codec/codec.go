// Package codec provides the pluggable serialization layer for the bridge.
//
// A Codec converts a document envelope to and from the byte payload carried
// by a Kafka message value. Implementations must round-trip: decoding an
// encoded value yields an equal value for every value the format can
// represent.
package codec

import "fmt"

// Codec encodes and decodes Kafka message payloads.
type Codec interface {
	// Encode serializes v into a byte payload.
	Encode(v any) ([]byte, error)

	// Decode deserializes data into the value pointed to by v.
	// Malformed input fails with a *DecodeError.
	Decode(data []byte, v any) error

	// Name identifies the wire format (e.g. "json", "msgpack").
	Name() string
}

// DecodeError reports a payload that could not be deserialized. The polling
// consumer treats it as fatal: a message that cannot be decoded terminates
// the poll loop rather than being silently dropped.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode failed: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ByName returns the codec for a wire format name.
func ByName(name string) (Codec, error) {
	switch name {
	case "json", "":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (supported: json, msgpack)", name)
	}
}
