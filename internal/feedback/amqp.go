package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-review/internal/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the queue feedback is published to
const DefaultQueue = "bullet_feedback"

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes feedback as JSON messages to a durable RabbitMQ queue
type AMQPSink struct {
	conn    *amqp.Connection
	channel publisher
	closer  func() error
	queue   string
}

func declare(url, queue string) (*amqp.Connection, *amqp.Channel, amqp.Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, amqp.Queue{}, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, amqp.Queue{}, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, amqp.Queue{}, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return conn, ch, q, nil
}

// NewAMQPSink connects to RabbitMQ and declares the queue
func NewAMQPSink(url, queue string) (*AMQPSink, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, ch, q, err := declare(url, queue)
	if err != nil {
		return nil, err
	}
	return &AMQPSink{
		conn:    conn,
		channel: ch,
		closer:  ch.Close,
		queue:   q.Name,
	}, nil
}

// Send implements Sink.
func (s *AMQPSink) Send(ctx context.Context, fb types.BulletFeedback) error {
	body, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		"",      // exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    fb.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish feedback: %w", err)
	}
	return nil
}

// Close closes the channel and connection
func (s *AMQPSink) Close() error {
	if s.closer != nil {
		_ = s.closer()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Consume reads feedback from the queue and hands each event to sink until ctx is
// done. Messages that fail to decode are rejected; messages the sink fails on
// are requeued once.
func Consume(ctx context.Context, url, queue string, sink Sink) error {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, ch, q, err := declare(url, queue)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer ch.Close()

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			handleDelivery(ctx, d, sink)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, d amqp.Delivery, sink Sink) {
	handle(ctx, d.Body, d.Redelivered, &d, sink)
}

func handle(ctx context.Context, body []byte, redelivered bool, ack acknowledger, sink Sink) {
	var fb types.BulletFeedback
	if err := json.Unmarshal(body, &fb); err != nil {
		_ = ack.Nack(false, false)
		return
	}
	if err := sink.Send(ctx, fb); err != nil {
		_ = ack.Nack(false, !redelivered)
		return
	}
	_ = ack.Ack(false)
}
