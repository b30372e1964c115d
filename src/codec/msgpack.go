package codec

import "github.com/vmihailenco/msgpack/v5"

// MsgpackCodec serializes envelopes as MessagePack. Acquisition sources that
// publish large event documents use this format for its compact binary
// encoding; consumers must be configured with the same codec as the
// publisher they read from.
type MsgpackCodec struct{}

// NewMsgpackCodec creates a MessagePack codec.
func NewMsgpackCodec() MsgpackCodec {
	return MsgpackCodec{}
}

// Encode implements Codec.
func (MsgpackCodec) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode implements Codec.
func (MsgpackCodec) Decode(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return &DecodeError{Format: "msgpack", Err: err}
	}
	return nil
}

// Name implements Codec.
func (MsgpackCodec) Name() string {
	return "msgpack"
}
