// Package queue provides the message queue used to decouple campaign
// dispatch from the admin API. Production runs on SQS; tests and offline
// runs use the in-memory implementation.
package queue

import "context"

// Message is a queued payload with its delivery receipt.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Queue is the transport for asynchronous work.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}
