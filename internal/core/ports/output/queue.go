package ports

import (
	"context"
	"io"
	"time"
)

// QueueMessage is one undelivered message. ReceiptHandle acknowledges it.
type QueueMessage struct {
	ID            string
	ReceiptHandle string
	Body          string
}

// MessageQueue is an at-least-once queue. Messages that are not acknowledged
// become visible again after the queue's visibility timeout.
type MessageQueue interface {
	// Receive long-polls for at most wait.
	Receive(ctx context.Context, maxMessages int32, wait time.Duration) ([]QueueMessage, error)
	Ack(ctx context.Context, receiptHandle string) error
}

// LocalStore is the local filesystem target of the mirror agent.
type LocalStore interface {
	// Put replaces the file at key with whatever fill writes.
	Put(ctx context.Context, key string, fill func(w io.WriterAt) error) error

	// Remove deletes the file at key. A missing file is not an error.
	Remove(ctx context.Context, key string) error
}
