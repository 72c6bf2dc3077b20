// Package transport defines the contract between the budgeting core and the
// wire-level provider clients that actually send requests. The core packs a
// bounded core.Request and hands it to a Client; events flow back to the
// caller uninterpreted. Client implementations live outside this module.
package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/RidgetopAi/ridge-context/internal/core"
)

// ErrNoClient reports a stream attempt with no client configured.
var ErrNoClient = errors.New("no transport client configured")

type EventType string

const (
	EventTextDelta     EventType = "text_delta"
	EventThinkingDelta EventType = "thinking_delta"
	EventToolUse       EventType = "tool_use"
	EventDone          EventType = "done"
	EventFailed        EventType = "failed"
)

// Event is one increment of provider output. The budgeting core never
// inspects events; they pass straight through to the consumer.
type Event struct {
	Type    EventType
	Text    string
	ToolUse *core.ToolUse
	Err     error
}

// Client sends an assembled request and streams back whatever the provider
// emits. Stream returns a terminal error when the request cannot be started;
// the channel closes when the provider is done.
type Client interface {
	Stream(ctx context.Context, request core.Request) (<-chan Event, error)
	ConcurrencyLimit() int
}

// Router fronts a single Client and enforces its concurrency limit: at most
// ConcurrencyLimit streams are open at once, and further Stream calls block
// until a slot frees. A Router with a nil Client fails fast instead of
// hanging callers on a nil channel.
type Router struct {
	Client  Client
	once    sync.Once
	limiter *semaphore
}

func (router *Router) Stream(ctx context.Context, request core.Request) (<-chan Event, error) {
	if router.Client == nil {
		return nil, ErrNoClient
	}

	limiter := router.getLimiter()
	if limiter == nil {
		return router.Client.Stream(ctx, request)
	}

	if err := limiter.acquire(ctx); err != nil {
		return nil, err
	}

	events, err := router.Client.Stream(ctx, request)
	if err != nil {
		limiter.release()
		return nil, err
	}

	// The slot stays held for the stream's whole lifetime, not just the
	// call; forward events and release when the provider closes the stream.
	out := make(chan Event)
	go func() {
		defer close(out)
		defer limiter.release()

		for event := range events {
			out <- event
		}
	}()

	return out, nil
}

func (router *Router) ConcurrencyLimit() int {
	if router.Client == nil {
		return 0
	}

	return router.Client.ConcurrencyLimit()
}

func (router *Router) getLimiter() *semaphore {
	router.once.Do(func() {
		concurrencyLimit := router.ConcurrencyLimit()

		if concurrencyLimit > 0 {
			router.limiter = newSemaphore(concurrencyLimit)
		}
	})
	return router.limiter
}

type semaphore struct {
	ch chan struct{}
}

func newSemaphore(limit int) *semaphore {
	return &semaphore{ch: make(chan struct{}, limit)}
}

func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.ch
}

var _ Client = (*Router)(nil)
