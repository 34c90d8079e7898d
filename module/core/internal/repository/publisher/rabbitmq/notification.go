package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"

	"github.com/nandanugg/linewatch/module/core/domain"
	"github.com/nandanugg/linewatch/module/core/internal/repository/publisher"
)

var _ publisher.NotificationPublisher = (*NotificationPublisher)(nil)

type Options struct {
	Exchange string
	Queue    string
	// Delay is how long after issue the notification should be shown.
	Delay time.Duration
	Badge int
	Sound string
}

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type NotificationPublisher struct {
	ch   amqpChannel
	opts Options
}

func NewNotificationPublisher(conn *amqp.Connection, opts Options) (*NotificationPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, eris.Wrap(err, "rabbitmq: open channel")
	}
	if err := Declare(ch, opts.Exchange, opts.Queue); err != nil {
		return nil, err
	}
	return &NotificationPublisher{ch: ch, opts: opts}, nil
}

// Declare sets up the durable fanout exchange and the queue bound to it.
func Declare(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return eris.Wrap(err, "rabbitmq: declare exchange")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return eris.Wrap(err, "rabbitmq: declare queue")
	}
	if err := ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		return eris.Wrap(err, "rabbitmq: bind queue")
	}
	return nil
}

// NotificationMessage is the wire format consumed by the notification listener.
type NotificationMessage struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Body         string       `json:"body"`
	Badge        int          `json:"badge"`
	Sound        string       `json:"sound"`
	Location     wireLocation `json:"location"`
	IssuedAt     int64        `json:"issued_at"`
	DeliverAfter int64        `json:"deliver_after_ms"`
}

type wireLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *NotificationPublisher) Deliver(ctx context.Context, req *domain.AlertRequest) error {
	if req.Kind != domain.AlertDeferred {
		return eris.Errorf("rabbitmq: cannot publish %s alert as notification", req.Kind)
	}

	body, err := json.Marshal(toNotificationMessage(req, p.opts))
	if err != nil {
		return eris.Wrap(err, "rabbitmq: marshal notification")
	}

	err = p.ch.PublishWithContext(ctx, p.opts.Exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    req.ID,
		Timestamp:    req.IssuedAt,
		Body:         body,
	})
	if err != nil {
		return eris.Wrap(err, "rabbitmq: publish notification")
	}
	return nil
}

func toNotificationMessage(req *domain.AlertRequest, opts Options) NotificationMessage {
	return NotificationMessage{
		ID:    req.ID,
		Title: req.Title,
		Body:  req.Message,
		Badge: opts.Badge,
		Sound: opts.Sound,
		Location: wireLocation{
			Latitude:  req.Position.Lat,
			Longitude: req.Position.Lon,
		},
		IssuedAt:     req.IssuedAt.UnixMilli(),
		DeliverAfter: opts.Delay.Milliseconds(),
	}
}
