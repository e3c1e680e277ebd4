package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/nectar-lead-tracker/internal/config"
	"github.com/wolfman30/nectar-lead-tracker/internal/notify"
	"github.com/wolfman30/nectar-lead-tracker/internal/sheetsync"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// SheetTransport is the mirror transport chosen by SYNC_TRANSPORT. Broker is
// set only for amqp and must be closed on shutdown.
type SheetTransport struct {
	Transport sheetsync.Transport
	Broker    *sheetsync.RabbitMQ
}

// Close releases the broker connection, if any.
func (t *SheetTransport) Close() error {
	if t == nil || t.Broker == nil {
		return nil
	}
	return t.Broker.Close()
}

// BuildSheetTransport returns the transport lead mirrors are handed to. The
// webhook transport posts inline; sqs and amqp enqueue for the sync worker.
func BuildSheetTransport(cfg *appconfig.Config, awsCfg *aws.Config, direct *sheetsync.WebhookTransport) (*SheetTransport, error) {
	switch cfg.SyncTransport {
	case "", "webhook":
		return &SheetTransport{Transport: direct}, nil
	case "sqs":
		if awsCfg == nil || strings.TrimSpace(cfg.SyncQueueURL) == "" {
			return nil, fmt.Errorf("bootstrap: sqs sync transport requires AWS config and SYNC_QUEUE_URL")
		}
		return &SheetTransport{Transport: sheetsync.NewSQSTransport(sqs.NewFromConfig(*awsCfg), cfg.SyncQueueURL)}, nil
	case "amqp":
		if strings.TrimSpace(cfg.AMQPURL) == "" {
			return nil, fmt.Errorf("bootstrap: amqp sync transport requires AMQP_URL")
		}
		rmq, err := sheetsync.DialRabbitMQ(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		return &SheetTransport{Transport: sheetsync.NewAMQPTransport(rmq.Ch), Broker: rmq}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown sync transport %q", cfg.SyncTransport)
	}
}

// Relay drains queued mirror events into a sink.
type Relay struct {
	Name   string
	run    func(ctx context.Context) error
	broker *sheetsync.RabbitMQ
}

// Run blocks until ctx is cancelled or the relay fails.
func (r *Relay) Run(ctx context.Context) error {
	return r.run(ctx)
}

// Close releases the broker connection, if any.
func (r *Relay) Close() error {
	if r == nil || r.broker == nil {
		return nil
	}
	return r.broker.Close()
}

// BuildRelay returns the consumer matching cfg.SyncTransport. The webhook
// transport has nothing to relay and yields an error.
func BuildRelay(cfg *appconfig.Config, awsCfg *aws.Config, sink sheetsync.Transport, logger *logging.Logger) (*Relay, error) {
	switch cfg.SyncTransport {
	case "sqs":
		if awsCfg == nil || strings.TrimSpace(cfg.SyncQueueURL) == "" {
			return nil, fmt.Errorf("bootstrap: sqs relay requires AWS config and SYNC_QUEUE_URL")
		}
		relay := sheetsync.NewSQSRelay(sqs.NewFromConfig(*awsCfg), cfg.SyncQueueURL, sink, logger)
		return &Relay{Name: "sqs", run: func(ctx context.Context) error {
			relay.Run(ctx)
			return nil
		}}, nil
	case "amqp":
		if strings.TrimSpace(cfg.AMQPURL) == "" {
			return nil, fmt.Errorf("bootstrap: amqp relay requires AMQP_URL")
		}
		rmq, err := sheetsync.DialRabbitMQ(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		relay := sheetsync.NewAMQPRelay(rmq.Ch, sink, logger)
		return &Relay{Name: "amqp", run: relay.Run, broker: rmq}, nil
	default:
		return nil, fmt.Errorf("bootstrap: sync transport %q has no queue to relay", cfg.SyncTransport)
	}
}

// BuildEmailSender returns the sender named by cfg.EmailProvider.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.EmailProvider {
	case "", "stub":
		return notify.NewStubEmailSender(logger), nil
	case "sendgrid":
		if strings.TrimSpace(cfg.SendGridAPIKey) == "" || strings.TrimSpace(cfg.EmailFrom) == "" {
			return nil, fmt.Errorf("bootstrap: sendgrid requires SENDGRID_API_KEY and EMAIL_FROM")
		}
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	case "ses":
		if awsCfg == nil || strings.TrimSpace(cfg.EmailFrom) == "" {
			return nil, fmt.Errorf("bootstrap: ses requires AWS config and EMAIL_FROM")
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}
