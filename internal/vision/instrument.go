package vision

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/JaimeStill/camelrate/internal/observability"
)

type instrumented struct {
	next    Client
	timeout time.Duration
	retries int
	logger  *slog.Logger
}

// Instrument wraps next with a per-attempt timeout, exponential retry of
// transport failures, and model-call metrics. A zero timeout disables the
// deadline.
func Instrument(next Client, timeout time.Duration, retries int, logger *slog.Logger) Client {
	return &instrumented{
		next:    next,
		timeout: timeout,
		retries: max(retries, 0),
		logger:  logger,
	}
}

func (c *instrumented) Complete(ctx context.Context, req Request) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	var (
		out     string
		attempt int
	)

	op := func() error {
		attempt++
		start := time.Now()

		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		text, err := c.next.Complete(callCtx, req)
		observability.Observe(req.Stage, start, err)

		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrNoUserTurn) {
				return backoff.Permanent(err)
			}
			c.logger.WarnContext(ctx, "model call failed",
				"stage", req.Stage,
				"attempt", attempt,
				"error", err,
			)
			return err
		}

		out = text
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.retries)),
		ctx,
	)

	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "model call complete", "stage", req.Stage, "attempts", attempt)
	return out, nil
}
