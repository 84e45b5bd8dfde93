package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/modedeck/internal/backend"
	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/modesync"
	"github.com/five82/modedeck/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// LinkOptions configure a Link.
type LinkOptions struct {
	Interval time.Duration
	Logger   *slog.Logger
	// OnFailed receives every request the backend did not accept. The error
	// matches modesync.ErrRejected or modesync.ErrChannelUnavailable.
	OnFailed func(modesync.MutationRequest, error)
}

// Link is the only goroutine talking to the backend. It sends queued
// mutations in order and polls for snapshots in between, so a snapshot is
// never emitted ahead of a mutation that was queued before it.
type Link struct {
	api      backend.ModesAPI
	queue    *modesync.Queue
	store    *state.Store
	events   chan<- modesync.Event
	onFailed func(modesync.MutationRequest, error)
	logger   *slog.Logger
	interval time.Duration

	received bool
	last     map[modes.Type]string
	failures int
}

// NewLink wires a link. Snapshot events are written to events, which the
// link never closes.
func NewLink(api backend.ModesAPI, queue *modesync.Queue, store *state.Store, events chan<- modesync.Event, opts LinkOptions) *Link {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Link{
		api:      api,
		queue:    queue,
		store:    store,
		events:   events,
		onFailed: opts.OnFailed,
		logger:   logger,
		interval: interval,
		last:     make(map[modes.Type]string),
	}
}

// Run polls once, then alternates between sending queued mutations and
// polling on a backoff-aware timer. It returns when ctx is done or the queue
// is closed.
func (l *Link) Run(ctx context.Context) error {
	l.poll(ctx)

	timer := time.NewTimer(l.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-l.queue.Requests():
			if !ok {
				return nil
			}
			l.send(ctx, req)
		case <-timer.C:
			if !l.drain(ctx) {
				return nil
			}
			l.poll(ctx)
			timer.Reset(l.nextDelay())
		}
	}
}

// drain sends everything already queued. It reports false once the queue
// is closed and empty.
func (l *Link) drain(ctx context.Context) bool {
	for {
		select {
		case req, ok := <-l.queue.Requests():
			if !ok {
				return false
			}
			l.send(ctx, req)
		default:
			return true
		}
	}
}

func (l *Link) poll(ctx context.Context) {
	resp, err := l.api.FetchModes(ctx)
	if ctx.Err() != nil {
		return
	}
	l.store.RecordLink(err)
	if err != nil {
		l.failures++
		l.logger.Warn("mode poll failed", "err", err, "failures", l.failures)
		return
	}
	if l.failures > 0 {
		l.logger.Info("backend reachable again", "after_failures", l.failures)
	}
	l.failures = 0

	kind := modesync.Update
	if !l.received {
		kind = modesync.Receive
	}
	for _, ev := range resp.Events(kind) {
		key := compact(ev.Raw)
		if l.received && !l.pending(ev.Mode) {
			if prev, ok := l.last[ev.Mode]; ok && prev == key {
				continue
			}
		}
		if !l.emit(ctx, ev) {
			return
		}
		l.last[ev.Mode] = key
	}
	l.received = true
}

// pending reports whether mode still carries a local edit. Polls run after
// drain, so no queued request can confirm it anymore and the backend's list
// must be emitted even if it did not change.
func (l *Link) pending(mode modes.Type) bool {
	list, ok := l.store.List(mode)
	return ok && list.State == state.PendingLocalEdit
}

func (l *Link) send(ctx context.Context, req modesync.MutationRequest) {
	resp, err := l.api.PostMutation(ctx, req)
	if ctx.Err() != nil {
		return
	}

	if resp.HasSnapshot() {
		ev := resp.Event()
		if ev.Mode == "" {
			ev.Mode = req.Mode
		}
		if l.emit(ctx, ev) {
			l.last[ev.Mode] = compact(ev.Raw)
		}
	} else {
		// The next poll must re-emit this mode even if the backend's list
		// looks unchanged, otherwise the local edit would never be confirmed
		// or overwritten.
		delete(l.last, req.Mode)
	}

	if err == nil {
		l.logger.Debug("mutation sent", "mode", req.Mode, "index", req.Index, "field", req.Field)
		return
	}
	if l.onFailed != nil {
		l.onFailed(req, classify(err))
	}
}

func (l *Link) emit(ctx context.Context, ev modesync.Event) bool {
	select {
	case l.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *Link) nextDelay() time.Duration {
	return calculateBackoff(l.failures, l.interval)
}

// classify maps transport errors onto the sync error kinds.
func classify(err error) error {
	if errors.Is(err, backend.ErrRejected) {
		return fmt.Errorf("%w: %w", modesync.ErrRejected, err)
	}
	return fmt.Errorf("%w: %w", modesync.ErrChannelUnavailable, err)
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
