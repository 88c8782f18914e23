package awsclient

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

// SQS caps a single long poll at 20 seconds.
const maxWaitSeconds = 20

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type messageQueue struct {
	client   sqsAPI
	queueURL string
}

func NewMessageQueue(cfg aws.Config, queueURL string) output.MessageQueue {
	return &messageQueue{client: sqs.NewFromConfig(cfg), queueURL: queueURL}
}

func (q *messageQueue) Receive(ctx context.Context, maxMessages int32, wait time.Duration) ([]output.QueueMessage, error) {
	waitSeconds := int32(wait / time.Second)
	if waitSeconds > maxWaitSeconds {
		waitSeconds = maxWaitSeconds
	}
	if maxMessages > 10 {
		maxMessages = 10
	}

	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     waitSeconds,
	})
	if err != nil {
		return nil, translate(domain.OpReceiveMessage, err)
	}

	msgs := make([]output.QueueMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, output.QueueMessage{
			ID:            aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          aws.ToString(m.Body),
		})
	}
	return msgs, nil
}

func (q *messageQueue) Ack(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return translate(domain.OpDeleteMessage, err)
	}
	return nil
}
