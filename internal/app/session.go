package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/modedeck/internal/backend"
	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/modesync"
	"github.com/five82/modedeck/internal/state"
)

// SessionOptions configure a Session.
type SessionOptions struct {
	QueueSize int
	PollEvery time.Duration
	Logger    *slog.Logger
	// OnFailure is forwarded to the dispatcher.
	OnFailure func(modesync.Failure)
}

// Session bundles the sync core for every built-in mode type.
type Session struct {
	Store      *state.Store
	Registry   *modesync.Registry
	Dispatcher *modesync.Dispatcher
	Reconciler *modesync.Reconciler
	Queue      *modesync.Queue
	Link       *Link

	events chan modesync.Event
}

// NewSession builds a session talking to api.
func NewSession(api backend.ModesAPI, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	schemas := modes.Builtin()

	s := &Session{
		Store:    state.NewStore(modes.NewIDSource(), schemas...),
		Registry: modesync.DefaultRegistry(schemas...),
		Queue:    modesync.NewQueue(opts.QueueSize),
		events:   make(chan modesync.Event, len(schemas)),
	}
	s.Dispatcher = modesync.NewDispatcher(s.Store, s.Registry, s.Queue, modesync.DispatcherOptions{
		Logger:    logger.With("component", "dispatcher"),
		OnFailure: opts.OnFailure,
	})
	s.Reconciler = modesync.NewReconciler(s.Store, schemas, logger.With("component", "reconciler"))
	s.Link = NewLink(api, s.Queue, s.Store, s.events, LinkOptions{
		Interval: opts.PollEvery,
		Logger:   logger.With("component", "link"),
		OnFailed: s.Dispatcher.Failed,
	})
	return s
}

// Run drives the link and the reconciler until ctx is cancelled. Queued
// requests that were not sent by then are dropped.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- s.Reconciler.Run(ctx, s.events)
	}()

	err := s.Link.Run(ctx)
	s.Queue.Close()
	close(s.events)
	<-done

	if ctx.Err() != nil {
		return nil
	}
	return err
}
