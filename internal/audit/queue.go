package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const consumerName = "camelrate-audit"

// Queue publishes audit records to a JetStream stream and drains them into
// a Sink.
type Queue struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	stream  string
	subject string
	logger  *slog.Logger
}

// Connect dials NATS and prepares a JetStream context.
func Connect(url, stream, subject string, logger *slog.Logger) (*Queue, error) {
	nc, err := nats.Connect(url,
		nats.Name("camelrate"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Queue{
		nc:      nc,
		js:      js,
		stream:  stream,
		subject: subject,
		logger:  logger.With("system", "audit-queue"),
	}, nil
}

// EnsureStream creates or updates the audit stream, retrying with
// exponential backoff while NATS starts up.
func (q *Queue) EnsureStream(ctx context.Context) error {
	cfg := jetstream.StreamConfig{
		Name:        q.stream,
		Subjects:    []string{q.subject},
		Retention:   jetstream.WorkQueuePolicy,
		Storage:     jetstream.FileStorage,
		MaxAge:      7 * 24 * time.Hour,
		Duplicates:  2 * time.Minute,
		Description: "Rating conversations awaiting persistence",
	}

	op := func() error {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if _, err := q.js.CreateOrUpdateStream(opCtx, cfg); err != nil {
			q.logger.Warn("ensure stream failed, retrying", "stream", q.stream, "error", err)
			return err
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("ensure stream %s: %w", q.stream, err)
	}

	q.logger.Info("audit stream ready", "stream", q.stream, "subject", q.subject)
	return nil
}

// Write publishes rec. The record ID doubles as the JetStream message ID so
// retried publishes are deduplicated.
func (q *Queue) Write(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	if _, err := q.js.Publish(ctx, q.subject, payload, jetstream.WithMsgID(rec.ID.String())); err != nil {
		return fmt.Errorf("publish audit record: %w", err)
	}
	return nil
}

// Consume pulls queued records and writes them to sink until ctx is done.
func (q *Queue) Consume(ctx context.Context, sink Sink) error {
	cons, err := q.js.CreateOrUpdateConsumer(ctx, q.stream, jetstream.ConsumerConfig{
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		FilterSubject: q.subject,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", consumerName, err)
	}

	q.logger.Info("audit consumer started", "consumer", consumerName)

	for {
		if ctx.Err() != nil {
			return nil
		}

		batch, err := cons.Fetch(10, jetstream.FetchMaxWait(5*time.Second))
		if err == nil {
			err = Drain(ctx, batch, sink, q.logger)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.logger.Warn("fetch audit records failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	}
}

// Batch is the part of jetstream.MessageBatch that Drain reads.
type Batch interface {
	Messages() <-chan jetstream.Msg
	Error() error
}

// Drain writes every message in batch to sink, acking delivered records
// and nacking failures for redelivery. It returns the batch's terminal
// error, which is only known once the message channel closes.
func Drain(ctx context.Context, batch Batch, sink Sink, logger *slog.Logger) error {
	for msg := range batch.Messages() {
		if err := Deliver(ctx, msg.Data(), sink); err != nil {
			logger.Error("persist audit record failed", "error", err)
			_ = msg.Nak()
			continue
		}
		_ = msg.Ack()
	}
	return batch.Error()
}

// Close drains the NATS connection.
func (q *Queue) Close() error {
	return q.nc.Drain()
}

// Deliver decodes one queued payload and writes it to sink. Records that
// were already written count as delivered.
func Deliver(ctx context.Context, data []byte, sink Sink) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decode audit record: %w", err)
	}

	if err := sink.Write(ctx, rec); err != nil && !errors.Is(err, ErrDuplicate) {
		return err
	}
	return nil
}
