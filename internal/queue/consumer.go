package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Consumer drains QueueName and appends one line per event to a log file.
type Consumer struct {
	URL     string
	LogPath string
	Logger  zerolog.Logger
}

// NewConsumer returns a Consumer writing to logs/booking.log.
func NewConsumer(url string, logger zerolog.Logger) *Consumer {
	return &Consumer{URL: url, LogPath: filepath.Join("logs", "booking.log"), Logger: logger}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff (capped at 30s) whenever the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn().Err(err).Dur("retry_in", backoff).Msg("booking-consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn().Err(err).Msg("booking-consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn().Err(err).Msg("booking-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.Logger.Error().Err(err).Msg("booking-consumer: handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return WriteLine(f, ev)
}

// WriteLine formats ev as a single human-friendly line.
func WriteLine(w io.Writer, ev BookingEvent) error {
	var err error
	switch ev.Type {
	case AdDeleted:
		_, err = fmt.Fprintf(w, "[%s] %s | ad_id=%d | user_id=%d\n", ev.OccurredAt, ev.Type, ev.AdID, ev.UserID)
	default:
		_, err = fmt.Fprintf(w, "[%s] %s | booking_id=%d | ad_id=%d | user_id=%d | %s -> %s | amount=%d\n",
			ev.OccurredAt, ev.Type, ev.BookingID, ev.AdID, ev.UserID, ev.StartDate, ev.EndDate, ev.Amount)
	}
	if err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
