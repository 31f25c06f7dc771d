package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// notifyPollMs bounds how long the reader waits before checking for cancellation.
const notifyPollMs = 100

// watch reads notifications of the unit in one goroutine and, in another, dispatches them and
// measures states at the configured interval. The card is only touched by the second one.
// Failed dispatches and measurements are logged and the loop goes on. onChange runs after each
// dispatch or measurement.
func (s *session) watch(ctx context.Context, measure bool, onChange func() error) error {
	notifications := make(chan uint32, 16)

	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		defer close(notifications)

		for ctx.Err() == nil {
			msg, ok, err := s.dev.notifier.Next(notifyPollMs)
			if err != nil {
				return fmt.Errorf("could not read notification: %w", err)
			}
			if !ok {
				continue
			}

			select {
			case notifications <- msg:
			case <-ctx.Done():
			}
		}

		return nil
	})

	grp.Go(func() error {
		ticker := time.NewTicker(time.Duration(s.config.MeasureIntervalMs) * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-notifications:
				if !ok {
					return nil
				}
				s.logger.Debug("notification", "msg", fmt.Sprintf("%#08x", msg))
				if err := s.dispatch(msg); err != nil {
					s.logger.Warn("failed to dispatch notification", "msg", fmt.Sprintf("%#08x", msg), "error", err)
				}
			case <-ticker.C:
				if !measure {
					continue
				}
				if err := s.measure(); err != nil {
					s.logger.Warn("failed to measure states", "error", err)
				}
			}

			if err := onChange(); err != nil {
				return err
			}
		}
	})

	return grp.Wait()
}

// monitor prints the changes of controls until ctx is done.
func (s *session) monitor(ctx context.Context, w io.Writer) error {
	if err := s.card.SubscribeEvents(true); err != nil {
		return err
	}
	defer s.card.SubscribeEvents(false)

	fmt.Fprintf(w, "Monitoring '%s'... Press Ctrl+C to stop.\n", s.card.Name())

	return s.watch(ctx, true, func() error {
		for s.card.PendingEvents() > 0 {
			ev, err := s.card.ReadEvent()
			if err != nil {
				return err
			}

			ctl, err := s.card.Ctl(ev.ControlID)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%s %d: %s = %s\n", time.Now().Format("15:04:05.000"), ctl.ID(), ctl.Name(),
				formatValue(ctl, ctl.Value()))
		}

		return nil
	})
}
