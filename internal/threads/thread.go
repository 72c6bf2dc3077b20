// Package threads holds the conversation data model: an append-only log of
// typed segments owned by a thread, the consistency repair pass over it, and
// the persistence stores.
package threads

import (
	"maps"
	"slices"
	"time"

	"github.com/RidgetopAi/ridge-context/internal/core"
)

// SegmentKind is the closed set of segment types, declared in retention
// priority order, highest first.
type SegmentKind string

const (
	KindSystem       SegmentKind = "system"
	KindInstructions SegmentKind = "instructions"
	KindRepoContext  SegmentKind = "repo_context"
	KindChatHistory  SegmentKind = "chat_history"
	KindToolExchange SegmentKind = "tool_exchange"
	KindSummary      SegmentKind = "summary"
)

// Segment is an ordered group of messages with a kind and a thread-assigned
// sequence number. Segments are immutable after append except for token
// count memoization.
type Segment struct {
	Kind       SegmentKind    `json:"kind"`
	Messages   []core.Message `json:"messages"`
	TokenCount *int           `json:"token_count,omitempty"`
	Sequence   uint64         `json:"sequence"`
}

func NewSegment(kind SegmentKind, messages ...core.Message) *Segment {
	return &Segment{Kind: kind, Messages: messages}
}

// EnsureTokenCount returns the memoized token count, computing it with count
// on first use. Recomputation is referentially transparent, so two callers
// racing to fill the cache write the same value.
func (segment *Segment) EnsureTokenCount(count func([]core.Message) int) int {
	if segment.TokenCount == nil {
		total := count(segment.Messages)
		segment.TokenCount = &total
	}

	return *segment.TokenCount
}

// Thread is a conversation: an ordered segment log plus identity and
// bookkeeping. The thread exclusively owns its segments; sequence numbers
// are assigned here and nowhere else.
type Thread struct {
	ID           core.ThreadID     `json:"id"`
	Title        string            `json:"title"`
	Model        string            `json:"model"`
	Segments     []*Segment        `json:"segments"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	NextSequence uint64            `json:"next_sequence"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func NewThread(model string) *Thread {
	now := time.Now().UTC()

	return &Thread{
		ID:        core.NewThreadID(),
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddSegment appends the segment, stamping it with the thread's next
// sequence number. A caller-supplied sequence value is always overwritten.
func (thread *Thread) AddSegment(segment *Segment) uint64 {
	segment.Sequence = thread.NextSequence
	thread.NextSequence++
	thread.Segments = append(thread.Segments, segment)
	thread.touch()

	return segment.Sequence
}

// Clear empties the segment log and restarts the sequence counter at zero.
func (thread *Thread) Clear() {
	thread.Segments = nil
	thread.NextSequence = 0
	thread.touch()
}

func (thread *Thread) SetTitle(title string) {
	thread.Title = title
	thread.touch()
}

// SetModel switches the thread to another model. Memoized segment counts are
// kept; counts computed under the previous model's strategy remain acceptable
// approximations.
func (thread *Thread) SetModel(model string) {
	thread.Model = model
	thread.touch()
}

func (thread *Thread) SetMetadata(key, value string) {
	if thread.Metadata == nil {
		thread.Metadata = make(map[string]string)
	}

	thread.Metadata[key] = value
	thread.touch()
}

func (thread *Thread) touch() {
	thread.UpdatedAt = time.Now().UTC()
}

// Summary is the listing view of a thread.
type Summary struct {
	ID           core.ThreadID `json:"id"`
	Title        string        `json:"title"`
	Model        string        `json:"model"`
	UpdatedAt    time.Time     `json:"updated_at"`
	SegmentCount int           `json:"segment_count"`
}

func (thread *Thread) Summary() Summary {
	return Summary{
		ID:           thread.ID,
		Title:        thread.Title,
		Model:        thread.Model,
		UpdatedAt:    thread.UpdatedAt,
		SegmentCount: len(thread.Segments),
	}
}

// Clone deep-copies the thread so stores can hand out isolated values.
func (thread *Thread) Clone() *Thread {
	clone := *thread
	clone.Metadata = maps.Clone(thread.Metadata)
	clone.Segments = make([]*Segment, len(thread.Segments))

	for i, segment := range thread.Segments {
		if segment == nil {
			continue
		}
		clone.Segments[i] = segment.clone()
	}

	return &clone
}

func (segment *Segment) clone() *Segment {
	clone := *segment

	if segment.TokenCount != nil {
		total := *segment.TokenCount
		clone.TokenCount = &total
	}

	clone.Messages = make([]core.Message, len(segment.Messages))
	for i, message := range segment.Messages {
		clone.Messages[i] = cloneMessage(message)
	}

	return &clone
}

func cloneMessage(message core.Message) core.Message {
	clone := message
	clone.Blocks = make([]core.Block, len(message.Blocks))

	for i, block := range message.Blocks {
		clone.Blocks[i] = cloneBlock(block)
	}

	return clone
}

func cloneBlock(block core.Block) core.Block {
	clone := block

	if block.Image != nil {
		image := *block.Image
		clone.Image = &image
	}

	if block.ToolUse != nil {
		use := *block.ToolUse
		use.Input = maps.Clone(block.ToolUse.Input)
		clone.ToolUse = &use
	}

	if block.ToolResult != nil {
		result := *block.ToolResult
		result.Content.JSON = slices.Clone(block.ToolResult.Content.JSON)

		if block.ToolResult.Content.Image != nil {
			image := *block.ToolResult.Content.Image
			result.Content.Image = &image
		}

		clone.ToolResult = &result
	}

	return clone
}
