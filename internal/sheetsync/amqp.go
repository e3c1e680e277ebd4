package sheetsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

const (
	ExchangeName = "ex.sheetsync"
	QueueName    = "q.sheetsync"
	DLQName      = "q.sheetsync.dlq"
	DLXName      = "ex.sheetsync.dlx"
	RoutingKey   = "k.mirror"
)

// amqpChannel is the part of *amqp.Channel the transport and relay use.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// RabbitMQ holds a connection and channel with the mirror topology declared.
type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// DialRabbitMQ connects to url and declares the mirror exchange and queues.
func DialRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("sheetsync: connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("sheetsync: open channel: %w", err)
	}
	if err := SetupTopology(ch); err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

// Close closes the channel and connection.
func (r *RabbitMQ) Close() error {
	if r.Ch != nil {
		_ = r.Ch.Close()
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}

// SetupTopology declares the direct exchange, the work queue and its
// dead-letter queue.
func SetupTopology(ch amqpChannel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("sheetsync: declare dlx: %w", err)
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("sheetsync: declare dlq: %w", err)
	}
	if err := ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil); err != nil {
		return fmt.Errorf("sheetsync: bind dlq: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("sheetsync: declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, args); err != nil {
		return fmt.Errorf("sheetsync: declare queue: %w", err)
	}
	if err := ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("sheetsync: bind queue: %w", err)
	}
	return nil
}

// AMQPTransport publishes envelopes to the mirror exchange.
type AMQPTransport struct {
	ch amqpChannel
}

func NewAMQPTransport(ch *amqp.Channel) *AMQPTransport {
	return &AMQPTransport{ch: ch}
}

func (t *AMQPTransport) Name() string { return "amqp" }

func (t *AMQPTransport) Deliver(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("sheetsync: marshal envelope: %w", err)
	}
	err = t.ch.PublishWithContext(ctx, ExchangeName, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("sheetsync: publish: %w", err)
	}
	return nil
}

// acknowledger is the part of amqp.Delivery the relay settles.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// AMQPRelay consumes the mirror queue and forwards envelopes to the sink.
// Malformed or undeliverable messages are dead-lettered, never requeued.
type AMQPRelay struct {
	ch      amqpChannel
	sink    Transport
	logger  *logging.Logger
	timeout time.Duration
}

func NewAMQPRelay(ch *amqp.Channel, sink Transport, logger *logging.Logger) *AMQPRelay {
	return newAMQPRelay(ch, sink, logger)
}

func newAMQPRelay(ch amqpChannel, sink Transport, logger *logging.Logger) *AMQPRelay {
	if logger == nil {
		logger = logging.Default()
	}
	return &AMQPRelay{ch: ch, sink: sink, logger: logger, timeout: 10 * time.Second}
}

// Run consumes until ctx is cancelled or the delivery channel closes.
func (r *AMQPRelay) Run(ctx context.Context) error {
	msgs, err := r.ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("sheetsync: register consumer: %w", err)
	}
	r.logger.Info("amqp relay consuming", "queue", QueueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			r.handle(ctx, d.Body, &d)
		}
	}
}

func (r *AMQPRelay) handle(ctx context.Context, body []byte, ack acknowledger) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		r.logger.Warn("dropping malformed sync envelope", "error", err)
		_ = ack.Nack(false, false)
		return
	}
	deliverCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.sink.Deliver(deliverCtx, env); err != nil {
		r.logger.Warn("sync relay delivery failed", "user_id", env.UserID, "action", env.Action, "error", err)
		_ = ack.Nack(false, false)
		return
	}
	_ = ack.Ack(false)
}
