package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQS accepts at most 10 messages per receive and 20 seconds of long polling.
const (
	sqsMaxBatch = 10
	sqsMaxWait  = 20
)

// SQSQueue is a Queue backed by AWS/LocalStack SQS.
type SQSQueue struct {
	client   *sqs.Client
	queueURL *string
}

// NewSQSQueue wraps an SQS client and queue URL.
func NewSQSQueue(client *sqs.Client, queueURL string) (*SQSQueue, error) {
	if client == nil {
		return nil, errors.New("queue: sqs client required")
	}
	if queueURL == "" {
		return nil, errors.New("queue: sqs queue url required")
	}
	return &SQSQueue{client: client, queueURL: aws.String(queueURL)}, nil
}

// Send publishes a payload to the queue.
func (q *SQSQueue) Send(ctx context.Context, body string) error {
	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    q.queueURL,
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("queue: sqs send: %w", err)
	}
	return nil
}

// Receive long-polls the queue, clamping the batch size and wait to what
// SQS accepts.
func (q *SQSQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error) {
	if maxMessages < 1 {
		maxMessages = 1
	}
	if maxMessages > sqsMaxBatch {
		maxMessages = sqsMaxBatch
	}
	if waitSeconds < 0 {
		waitSeconds = 0
	}
	if waitSeconds > sqsMaxWait {
		waitSeconds = sqsMaxWait
	}

	output, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            q.queueURL,
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(waitSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("queue: sqs receive: %w", err)
	}

	messages := make([]Message, 0, len(output.Messages))
	for _, msg := range output.Messages {
		messages = append(messages, Message{
			ID:            aws.ToString(msg.MessageId),
			Body:          aws.ToString(msg.Body),
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		})
	}
	return messages, nil
}

// Delete acknowledges a received message.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      q.queueURL,
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("queue: sqs delete: %w", err)
	}
	return nil
}

var (
	_ Queue = (*MemoryQueue)(nil)
	_ Queue = (*SQSQueue)(nil)
)
