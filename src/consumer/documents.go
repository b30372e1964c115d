package consumer

import (
	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/documents"
	"runbridge/src/logger"
)

// DocumentHandler receives each consumed document as a (name, document)
// pair. Same dispatch contract as MessageHandler: synchronous, on the
// polling goroutine.
type DocumentHandler func(c *Consumer, topic, name string, doc documents.Document) error

// NewDocumentConsumer specializes the polling consumer for document
// envelopes: each message value is decoded as an Envelope and dispatched as
// handler(consumer, topic, name, document). It carries no state beyond the
// core consumer.
func NewDocumentConsumer(cfg Config, client broker.ConsumerClient, cdc codec.Codec, handler DocumentHandler, log logger.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, errNilHandler
	}
	c, err := newConsumer(cfg, client, log)
	if err != nil {
		return nil, err
	}
	c.process = func(msg *broker.Message) error {
		var env documents.Envelope
		if err := cdc.Decode(msg.Value, &env); err != nil {
			return err
		}
		log.Debug("dispatching document: topic=%q name=%q", msg.Topic, env.Name)
		return handler(c, msg.Topic, env.Name, env.Doc)
	}
	return c, nil
}
