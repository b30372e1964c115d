package codec

import "encoding/json"

// JSONCodec serializes envelopes as JSON. This is the default wire format:
// it is self-describing and easy to inspect with standard Kafka tooling.
type JSONCodec struct{}

// NewJSONCodec creates a JSON codec.
func NewJSONCodec() JSONCodec {
	return JSONCodec{}
}

// Encode implements Codec.
func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode implements Codec.
func (JSONCodec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{Format: "json", Err: err}
	}
	return nil
}

// Name implements Codec.
func (JSONCodec) Name() string {
	return "json"
}
