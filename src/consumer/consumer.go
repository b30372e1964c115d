// Package consumer implements the polling consumer: a single cooperative
// loop that turns an indefinite, at-least-once stream of broker messages
// into an ordered sequence of decoded payloads delivered to user callbacks.
package consumer

import (
	"errors"
	"fmt"
	"time"

	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/logger"
)

// Lifecycle misuse errors, checked with errors.Is.
var (
	// ErrConsumerStopped is returned by Start on an instance that has
	// already completed a Start/Stop cycle. Consumers are single-use.
	ErrConsumerStopped = errors.New("consumer has been stopped; create a fresh instance")

	// ErrConsumerRunning is returned by Start when the poll loop is
	// already running on this instance.
	ErrConsumerRunning = errors.New("consumer is already running")
)

var errNilHandler = errors.New("a message handler is required")

// State is the consumer lifecycle state. Transitions run strictly
// Created -> Running -> Stopped; Stopped is terminal.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ContinuePolling is the caller-supplied stopping condition. It is evaluated
// once after every successfully dispatched message, never concurrently with
// itself; the loop continues while it returns true.
type ContinuePolling func() bool

// MessageHandler receives each decoded message payload. Dispatch is
// synchronous on the polling goroutine: a handler that blocks stalls the
// loop and no further messages are polled.
type MessageHandler func(c *Consumer, topic string, payload any) error

// DefaultPollTimeout bounds how long one poll waits for a message. It is
// also how long the loop can remain unresponsive to an external Stop.
const DefaultPollTimeout = time.Second

// Config holds the polling consumer configuration.
type Config struct {
	// Topics to subscribe to. Required.
	Topics []string
	// PollTimeout bounds each blocking poll; DefaultPollTimeout when zero.
	PollTimeout time.Duration
}

// Consumer owns one consumer-mode broker client and runs the poll loop over
// it. A Consumer is not safe for concurrent use: at most one loop may run
// per instance, and once stopped an instance cannot be restarted.
type Consumer struct {
	client      broker.ConsumerClient
	log         logger.Logger
	pollTimeout time.Duration
	state       State

	// process decodes and dispatches one valid message. An error from
	// process is an unrecovered fault: it terminates the loop.
	process func(msg *broker.Message) error
}

// New creates a consumer that decodes each message value with cdc into a
// generic payload and dispatches it to handler. The client is subscribed
// immediately; the loop does not run until Start.
func New(cfg Config, client broker.ConsumerClient, cdc codec.Codec, handler MessageHandler, log logger.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, errNilHandler
	}
	c, err := newConsumer(cfg, client, log)
	if err != nil {
		return nil, err
	}
	c.process = func(msg *broker.Message) error {
		var payload any
		if err := cdc.Decode(msg.Value, &payload); err != nil {
			return err
		}
		return handler(c, msg.Topic, payload)
	}
	return c, nil
}

func newConsumer(cfg Config, client broker.ConsumerClient, log logger.Logger) (*Consumer, error) {
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("at least one topic is required")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}

	if err := client.Subscribe(cfg.Topics); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %v: %w", cfg.Topics, err)
	}
	log.Info("consumer subscribed to topics: %v", cfg.Topics)

	return &Consumer{
		client:      client,
		log:         log,
		pollTimeout: cfg.PollTimeout,
		state:       StateCreated,
	}, nil
}

// State returns the current lifecycle state.
func (c *Consumer) State() State {
	return c.state
}

// Start runs the blocking poll loop until continuePolling returns false or
// an unrecovered fault occurs. Each iteration polls with the configured
// timeout and classifies the result:
//
//   - no message: the loop keeps waiting. The continuation predicate is NOT
//     evaluated here — it bounds the number of handled messages, not
//     wall-clock time, so a deadline predicate cannot fire on an idle topic.
//   - broker-reported error: logged and recovered; the loop never terminates
//     because of a broker error, and the payload is never decoded.
//   - valid message: decoded and dispatched synchronously. A decode or
//     handler failure is fatal: the connection is released and the error is
//     returned from Start.
//
// After a successful dispatch the predicate is evaluated; false ends the
// loop normally. On every exit path, normal or faulted, the broker client
// is closed and the consumer transitions to the terminal Stopped state.
// Start on a stopped instance fails with ErrConsumerStopped before any
// poll is issued. A nil predicate means poll forever.
func (c *Consumer) Start(continuePolling ContinuePolling) error {
	switch c.state {
	case StateStopped:
		return ErrConsumerStopped
	case StateRunning:
		return ErrConsumerRunning
	}
	if continuePolling == nil {
		continuePolling = func() bool { return true }
	}

	c.state = StateRunning
	c.log.Debug("poll loop started")
	defer c.Stop()

	for {
		msg := c.client.Poll(c.pollTimeout)
		switch {
		case msg == nil:
			// Poll timed out with no message.
		case msg.Err != nil:
			c.log.Error("broker error on topic %q: %v", msg.Topic, msg.Err)
		default:
			if err := c.process(msg); err != nil {
				return fmt.Errorf("failed to process message from topic %q: %w", msg.Topic, err)
			}
			if !continuePolling() {
				c.log.Debug("continuation predicate returned false, ending poll loop")
				return nil
			}
		}
	}
}

// Stop closes the broker client and moves the consumer to the terminal
// Stopped state. Start invokes it on every exit path; calling it again is a
// no-op.
func (c *Consumer) Stop() {
	if c.state == StateStopped {
		return
	}
	c.state = StateStopped
	c.client.Close()
	c.log.Debug("consumer stopped")
}
