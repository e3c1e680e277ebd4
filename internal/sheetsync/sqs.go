package sheetsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSTransport enqueues envelopes for the relay worker.
type SQSTransport struct {
	client   sqsAPI
	queueURL string
}

// NewSQSTransport creates a queue-backed transport.
func NewSQSTransport(client *sqs.Client, queueURL string) *SQSTransport {
	if client == nil {
		panic("sheetsync: SQS client cannot be nil")
	}
	return newSQSTransport(client, queueURL)
}

func newSQSTransport(client sqsAPI, queueURL string) *SQSTransport {
	if queueURL == "" {
		panic("sheetsync: SQS queueURL cannot be empty")
	}
	return &SQSTransport{client: client, queueURL: queueURL}
}

func (t *SQSTransport) Name() string { return "sqs" }

func (t *SQSTransport) Deliver(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("sheetsync: marshal envelope: %w", err)
	}
	_, err = t.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(t.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sheetsync: failed to send SQS message: %w", err)
	}
	return nil
}

// SQSRelay drains the queue and forwards each envelope to the sink.
type SQSRelay struct {
	client      sqsAPI
	queueURL    string
	sink        Transport
	logger      *logging.Logger
	maxMessages int32
	waitSeconds int32
	timeout     time.Duration
}

// NewSQSRelay creates a relay that long-polls queueURL.
func NewSQSRelay(client *sqs.Client, queueURL string, sink Transport, logger *logging.Logger) *SQSRelay {
	return newSQSRelay(client, queueURL, sink, logger)
}

func newSQSRelay(client sqsAPI, queueURL string, sink Transport, logger *logging.Logger) *SQSRelay {
	if logger == nil {
		logger = logging.Default()
	}
	return &SQSRelay{
		client:      client,
		queueURL:    queueURL,
		sink:        sink,
		logger:      logger,
		maxMessages: 10,
		waitSeconds: 20,
		timeout:     10 * time.Second,
	}
}

// Run polls until ctx is cancelled.
func (r *SQSRelay) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.poll(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("sqs relay receive failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// poll handles one receive batch and returns how many messages were forwarded.
func (r *SQSRelay) poll(ctx context.Context) (int, error) {
	out, err := r.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(r.queueURL),
		MaxNumberOfMessages: r.maxMessages,
		WaitTimeSeconds:     r.waitSeconds,
	})
	if err != nil {
		return 0, fmt.Errorf("sheetsync: failed to receive SQS messages: %w", err)
	}

	forwarded := 0
	for _, msg := range out.Messages {
		var env Envelope
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &env); err != nil {
			r.logger.Warn("dropping malformed sync envelope", "message_id", aws.ToString(msg.MessageId), "error", err)
		} else {
			deliverCtx, cancel := context.WithTimeout(ctx, r.timeout)
			err := r.sink.Deliver(deliverCtx, env)
			cancel()
			if err != nil {
				r.logger.Warn("sync relay delivery failed", "user_id", env.UserID, "action", env.Action, "error", err)
			} else {
				forwarded++
			}
		}
		// Best effort: every message is removed once handled.
		if _, err := r.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(r.queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			r.logger.Error("failed to delete SQS message", "error", err)
		}
	}
	return forwarded, nil
}
