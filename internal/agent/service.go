// Package agent exposes the thread-facing operations of the context
// subsystem: creating and loading threads, appending segments, packing
// bounded requests, and running consistency repair.
package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/RidgetopAi/ridge-context/internal/conversation"
	"github.com/RidgetopAi/ridge-context/internal/core"
	"github.com/RidgetopAi/ridge-context/internal/threads"
)

// ErrThreadNotFound reports a thread id with no stored thread behind it.
var ErrThreadNotFound = errors.New("thread not found")

// RequestParams carries the per-call inputs for packing one request; the
// thread itself supplies the model and the segment log.
type RequestParams struct {
	SystemPrompt      string
	SystemPromptShort string
	Tools             []core.ToolDefinition
	MaxOutputTokens   int
}

// Service wires the store and the builder into the operations the CLI and
// any embedding agent loop consume. BudgetLog is optional; when set, every
// packed request is recorded there. Logger defaults to slog's process-wide
// logger.
type Service struct {
	Store     threads.Store
	Builder   *conversation.Builder
	BudgetLog *conversation.BudgetLog
	Logger    *slog.Logger
}

func (service *Service) logger() *slog.Logger {
	if service.Logger != nil {
		return service.Logger
	}

	return slog.Default()
}

// CreateThread makes and persists an empty thread for the given model.
func (service *Service) CreateThread(model string) (*threads.Thread, error) {
	thread := threads.NewThread(model)

	if err := service.Store.Save(thread); err != nil {
		return nil, fmt.Errorf("save new thread: %w", err)
	}

	return thread, nil
}

// LoadThread fetches a thread and heals it before handing it out. Repairs
// are persisted immediately so corrupted state never reaches a request.
func (service *Service) LoadThread(id core.ThreadID) (*threads.Thread, error) {
	thread, err := service.Store.Get(id)
	if err != nil {
		return nil, err
	}

	if thread == nil {
		return nil, fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}

	segmentsBefore := len(thread.Segments)
	removed := threads.Repair(thread)

	if removed > 0 || len(thread.Segments) != segmentsBefore {
		service.logger().Warn("repaired thread on load",
			"id", thread.ID,
			"blocks_removed", removed,
			"segments_dropped", segmentsBefore-len(thread.Segments))

		if err := service.Store.Save(thread); err != nil {
			return nil, fmt.Errorf("save repaired thread: %w", err)
		}
	}

	return thread, nil
}

// AppendSegment appends a typed segment to the thread and persists it,
// returning the sequence number the thread assigned.
func (service *Service) AppendSegment(id core.ThreadID, segment *threads.Segment) (uint64, error) {
	thread, err := service.Store.Get(id)
	if err != nil {
		return 0, err
	}

	if thread == nil {
		return 0, fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}

	sequence := thread.AddSegment(segment)

	if err := service.Store.Save(thread); err != nil {
		return 0, fmt.Errorf("save thread: %w", err)
	}

	return sequence, nil
}

// AppendChat appends the messages as one chat history segment.
func (service *Service) AppendChat(id core.ThreadID, messages ...core.Message) (uint64, error) {
	return service.AppendSegment(id, threads.NewSegment(threads.KindChatHistory, messages...))
}

// AppendToolExchange appends the messages as one tool exchange segment, so
// the invocation and its result stay together through packing.
func (service *Service) AppendToolExchange(id core.ThreadID, messages ...core.Message) (uint64, error) {
	return service.AppendSegment(id, threads.NewSegment(threads.KindToolExchange, messages...))
}

// PrepareRequest loads (and heals) the thread, then packs a bounded request
// from its segments. Packing itself cannot fail; errors come only from the
// store.
func (service *Service) PrepareRequest(id core.ThreadID, params RequestParams) (conversation.BuildResult, error) {
	thread, err := service.LoadThread(id)
	if err != nil {
		return conversation.BuildResult{}, err
	}

	result := service.Builder.Build(conversation.BuildParams{
		Model:             thread.Model,
		SystemPrompt:      params.SystemPrompt,
		SystemPromptShort: params.SystemPromptShort,
		Tools:             params.Tools,
		Segments:          thread.Segments,
		MaxOutputTokens:   params.MaxOutputTokens,
	})

	if result.Truncated {
		service.logger().Info("request truncated",
			"thread", thread.ID,
			"dropped", result.SegmentsDropped,
			"total_tokens", result.TotalTokens,
			"budget", result.Budget)
	}

	if service.BudgetLog != nil {
		if err := service.BudgetLog.Write(thread.ID, thread.Model, result); err != nil {
			service.logger().Warn("failed to write budget log", "error", err)
		}
	}

	return result, nil
}

// RepairThread runs consistency repair and persists the result when anything
// changed. Returns the number of removed blocks.
func (service *Service) RepairThread(id core.ThreadID) (int, error) {
	thread, err := service.Store.Get(id)
	if err != nil {
		return 0, err
	}

	if thread == nil {
		return 0, fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}

	segmentsBefore := len(thread.Segments)
	removed := threads.Repair(thread)

	if removed > 0 || len(thread.Segments) != segmentsBefore {
		if err := service.Store.Save(thread); err != nil {
			return removed, fmt.Errorf("save repaired thread: %w", err)
		}
	}

	return removed, nil
}

// ClearThread empties the thread's segment log and restarts its sequence
// counter.
func (service *Service) ClearThread(id core.ThreadID) error {
	thread, err := service.Store.Get(id)
	if err != nil {
		return err
	}

	if thread == nil {
		return fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}

	thread.Clear()

	if err := service.Store.Save(thread); err != nil {
		return fmt.Errorf("save cleared thread: %w", err)
	}

	return nil
}

// RenameThread sets the thread's title.
func (service *Service) RenameThread(id core.ThreadID, title string) error {
	thread, err := service.Store.Get(id)
	if err != nil {
		return err
	}

	if thread == nil {
		return fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}

	thread.SetTitle(title)

	if err := service.Store.Save(thread); err != nil {
		return fmt.Errorf("save renamed thread: %w", err)
	}

	return nil
}

// SetThreadModel switches the thread to another model; later packing resolves
// budgets against the new model's window.
func (service *Service) SetThreadModel(id core.ThreadID, model string) error {
	thread, err := service.Store.Get(id)
	if err != nil {
		return err
	}

	if thread == nil {
		return fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}

	thread.SetModel(model)

	if err := service.Store.Save(thread); err != nil {
		return fmt.Errorf("save thread: %w", err)
	}

	return nil
}

// DeleteThread removes the thread from the store. Deleting an unknown id is
// not an error.
func (service *Service) DeleteThread(id core.ThreadID) error {
	return service.Store.Delete(id)
}

// ListThreads returns summaries of all stored threads, most recently
// updated first.
func (service *Service) ListThreads() ([]threads.Summary, error) {
	return service.Store.ListSummaries()
}
