package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits best-effort domain events. Dispatch failures are the
// caller's to log; nothing in the request path depends on them.
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
	Close()
}

type Rabbit struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Rabbit) Close() {
	_ = p.ch.Close()
	_ = p.conn.Close()
}

func (p *Rabbit) Publish(ctx context.Context, key string, v any) error {
	body, _ := json.Marshal(v)
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
}

// Noop stands in when no broker is configured.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close()                                     {}
