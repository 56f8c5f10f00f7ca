package deckpdf

import (
	"context"
	"errors"
	"time"
)

// errWaitTimeout reports that waitFor gave up on its own deadline rather
// than because the caller's context ended.
var errWaitTimeout = errors.New("wait timed out")

// waitFor blocks until cond reports true. cond is checked immediately, then
// again on every value received from notify and on every tick of interval,
// until timeout elapses. A nil notify channel leaves polling as the only
// trigger. Errors from cond end the wait.
func waitFor(ctx context.Context, timeout, interval time.Duration, notify <-chan struct{}, cond func(context.Context) (bool, error)) error {
	ok, err := cond(ctx)
	if err != nil || ok {
		return err
	}
	if timeout <= 0 {
		return errWaitTimeout
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return errWaitTimeout
		case <-notify:
		case <-ticker.C:
		}
		ok, err := cond(ctx)
		if err != nil || ok {
			return err
		}
	}
}

// sleep pauses for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
