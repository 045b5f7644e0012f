package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/makers-tech/chatsocket"
)

type redialer interface {
	Redial(address string) error
}

// reconnector redials after every close, waiting longer each time, until a
// connection opens again or the backoff gives up.
type reconnector struct {
	client  redialer
	address string
	backoff backoff.BackOff
	logger  *slog.Logger
	after   func(time.Duration) <-chan time.Time
}

func newReconnector(client redialer, address string, logger *slog.Logger) *reconnector {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = 5 * time.Minute

	return &reconnector{
		client:  client,
		address: address,
		backoff: b,
		logger:  logger,
		after:   time.After,
	}
}

// run consumes status transitions until ctx is done or statuses closes.
func (r *reconnector) run(ctx context.Context, statuses <-chan chatsocket.Status) {
	r.backoff.Reset()

	for {
		var status chatsocket.Status
		var ok bool
		select {
		case <-ctx.Done():
			return
		case status, ok = <-statuses:
			if !ok {
				return
			}
		}

		switch status {
		case chatsocket.StatusOpen:
			r.backoff.Reset()
		case chatsocket.StatusClosed:
			wait := r.backoff.NextBackOff()
			if wait == backoff.Stop {
				r.logger.Warn("giving up reconnecting", slog.String("address", r.address))
				return
			}
			r.logger.Info("reconnecting", slog.String("address", r.address), slog.Duration("wait", wait))

			select {
			case <-ctx.Done():
				return
			case <-r.after(wait):
			}
			if err := r.client.Redial(r.address); err != nil {
				r.logger.Warn("redial failed", slog.Any("error", err))
				return
			}
		}
	}
}
