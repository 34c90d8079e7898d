package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nandanugg/linewatch/config"
)

type notification struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	Badge        int    `json:"badge"`
	Sound        string `json:"sound"`
	IssuedAt     int64  `json:"issued_at"`
	DeliverAfter int64  `json:"deliver_after_ms"`
}

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "event_listener",
	Short: "Consume deferred notifications and present them once they are due",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c
		return config.InitLogger(cfg.Log)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return listen(cmd.Context())
	},
}

func listen(ctx context.Context) error {
	log := zap.L()

	conn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return eris.Wrap(err, "rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(cfg.RabbitMQ.Exchange, "fanout", true, false, false, false, nil); err != nil {
		return eris.Wrap(err, "declare exchange")
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQ.Queue, true, false, false, false, nil); err != nil {
		return eris.Wrap(err, "declare queue")
	}
	if err := ch.QueueBind(cfg.RabbitMQ.Queue, "", cfg.RabbitMQ.Exchange, false, nil); err != nil {
		return eris.Wrap(err, "bind queue")
	}

	// Deliveries are acked only once presented. Anything still pending at
	// shutdown goes back on the queue.
	msgs, err := ch.Consume(cfg.RabbitMQ.Queue, "", false, false, false, false, nil)
	if err != nil {
		return eris.Wrap(err, "consume")
	}

	log.Info("waiting for deferred notifications", zap.String("queue", cfg.RabbitMQ.Queue))

	var pending sync.WaitGroup
	defer pending.Wait()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return eris.New("delivery channel closed")
			}
			pending.Add(1)
			go func() {
				defer pending.Done()
				present(ctx, msg.Body, msg)
			}()
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

var _ acknowledger = amqp.Delivery{}

// present shows the notification once its delay has elapsed since issue.
func present(ctx context.Context, body []byte, msg acknowledger) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		zap.L().Warn("invalid notification", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	due := time.UnixMilli(n.IssuedAt).Add(time.Duration(n.DeliverAfter) * time.Millisecond)
	select {
	case <-ctx.Done():
		if err := msg.Nack(false, true); err != nil {
			zap.L().Warn("requeue notification", zap.String("id", n.ID), zap.Error(err))
		}
		return
	case <-time.After(time.Until(due)):
	}

	zap.L().Info("notification",
		zap.String("id", n.ID),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.Int("badge", n.Badge),
		zap.String("sound", n.Sound),
	)
	if err := msg.Ack(false); err != nil {
		zap.L().Warn("ack notification", zap.String("id", n.ID), zap.Error(err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
