package messaging

import (
	"context"
	"errors"
)

// ErrClosed is returned by Publish and Consume once the queue is closed.
var ErrClosed = errors.New("queue closed")

// Queue hands payloads from a producer to a pool of consumers.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue, blocking while
	// the queue is full.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)

	// Size returns the number of messages waiting to be consumed
	Size() int

	// Close stops the queue; pending messages are dropped
	Close() error
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// ID returns the message id
	ID() string

	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
