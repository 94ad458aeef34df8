package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/streadway/amqp"
)

// DefaultExchange is the topic exchange stream events are published to.
const DefaultExchange = "stream_updates"

// Sink receives a copy of every delivered stream event.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// publisher is the subset of *amqp.Channel used by AMQPSink.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink mirrors stream events to a RabbitMQ topic exchange so other
// services can follow a stream. Events of stream X use routing key "stream.X".
type AMQPSink struct {
	exchange string
	conn     *amqp.Connection

	mu sync.Mutex
	ch publisher
}

// DialAMQP connects to the broker at url and declares exchange.
func DialAMQP(url, exchange string) (*AMQPSink, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPSink{exchange: exchange, conn: conn, ch: ch}, nil
}

// RoutingKey returns the routing key of a stream's events.
func RoutingKey(streamID string) string {
	return fmt.Sprintf("stream.%s", streamID)
}

// Publish implements Sink.
func (s *AMQPSink) Publish(_ context.Context, e Event) error {
	payload := map[string]any{
		"streamId": e.StreamID,
		"seq":      e.Seq,
		"type":     e.Type,
		"message":  e.Message,
		"at":       e.At,
	}
	if e.Data != nil {
		payload["data"] = e.Data
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.Publish(
		s.exchange,
		RoutingKey(e.StreamID),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   e.StreamID + "-" + strconv.Itoa(e.Seq),
			Type:        string(e.Type),
			Timestamp:   e.At,
			Body:        body,
		},
	)
}

// Close closes the channel and the connection.
func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ch.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
