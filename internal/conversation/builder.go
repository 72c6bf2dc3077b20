package conversation

import (
	"sort"

	"github.com/RidgetopAi/ridge-context/internal/core"
	"github.com/RidgetopAi/ridge-context/internal/models"
	"github.com/RidgetopAi/ridge-context/internal/threads"
	"github.com/RidgetopAi/ridge-context/internal/tokens"
)

// DefaultSafetyMarginPercent is the share of the context window held back
// from the budget to absorb counting error.
const DefaultSafetyMarginPercent = 2

// BuildParams describes one request to assemble from a thread's segments.
type BuildParams struct {
	Model             string
	SystemPrompt      string
	SystemPromptShort string
	Tools             []core.ToolDefinition
	Segments          []*threads.Segment
	MaxOutputTokens   int // 0 means use the catalog default for the model
}

// SegmentStat records the packing outcome for a single segment.
type SegmentStat struct {
	Sequence  uint64              `json:"sequence"`
	Kind      threads.SegmentKind `json:"kind"`
	Tokens    int                 `json:"tokens"`
	Included  bool                `json:"included"`
	Preserved bool                `json:"preserved"`
}

// BuildResult is the assembled request plus packing diagnostics. The token
// fields break the total down by mandatory component; SystemTokens reflects
// whichever prompt was actually sent.
type BuildResult struct {
	Request          core.Request  `json:"request"`
	TotalTokens      int           `json:"total_tokens"`
	Budget           int           `json:"budget"`
	SystemTokens     int           `json:"system_tokens"`
	ToolTokens       int           `json:"tool_tokens"`
	LastTurnTokens   int           `json:"last_turn_tokens"`
	Truncated        bool          `json:"truncated"`
	SegmentsIncluded int           `json:"segments_included"`
	SegmentsDropped  int           `json:"segments_dropped"`
	Segments         []SegmentStat `json:"segments,omitempty"`
}

// Builder packs thread segments into requests that fit a model's context
// window. It is stateless; one Builder serves any number of threads.
type Builder struct {
	catalog       *models.Catalog
	counter       *tokens.Counter
	marginPercent int
}

// NewBuilder creates a Builder with the default safety margin.
func NewBuilder(catalog *models.Catalog, counter *tokens.Counter) *Builder {
	return NewBuilderWithMargin(catalog, counter, DefaultSafetyMarginPercent)
}

// NewBuilderWithMargin creates a Builder with an explicit safety margin
// percentage. Negative values are treated as zero.
func NewBuilderWithMargin(catalog *models.Catalog, counter *tokens.Counter, marginPercent int) *Builder {
	if marginPercent < 0 {
		marginPercent = 0
	}

	return &Builder{
		catalog:       catalog,
		counter:       counter,
		marginPercent: marginPercent,
	}
}

// Build assembles a bounded request from the given parameters. It never
// fails: when the mandatory content alone exceeds the budget the system
// prompt shrinks to its abbreviated form, but the last turn and the tool
// declarations are always sent in full.
func (builder *Builder) Build(params BuildParams) BuildResult {
	info := builder.catalog.InfoFor(params.Model)

	reserved := info.DefaultMaxOutput
	if params.MaxOutputTokens > 0 {
		reserved = params.MaxOutputTokens
	}

	margin := info.ContextWindow * builder.marginPercent / 100

	budget := info.ContextWindow - reserved - margin
	if budget < 0 {
		budget = 0
	}

	segments := compactSegments(params.Segments)
	lastTurn, older := SplitLastTurn(segments)

	toolTokens := builder.counter.CountTools(params.Model, params.Tools)
	lastTurnTokens := builder.segmentsCost(params.Model, lastTurn)

	systemText := params.SystemPrompt
	systemTokens := builder.counter.CountText(params.Model, systemText)
	mandatory := systemTokens + toolTokens + lastTurnTokens

	// Over budget on mandatory content alone: shrink the system prompt to
	// its abbreviated form. The last turn and the tool declarations are
	// never sacrificed.
	if mandatory > budget {
		systemText = params.SystemPromptShort
		systemTokens = builder.counter.CountText(params.Model, systemText)
		mandatory = systemTokens + toolTokens + lastTurnTokens
	}

	remaining := budget - mandatory
	if remaining < 0 {
		remaining = 0
	}

	candidates := make([]*threads.Segment, len(older))
	copy(candidates, older)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Sequence > candidates[j].Sequence })

	// Newest first: keep every candidate that still fits. A segment too big
	// for the current remainder is dropped without ending the walk, so the
	// included set may skip over a large segment to pick up smaller, older
	// ones.
	included := make([]*threads.Segment, 0, len(candidates))
	includedSet := make(map[uint64]bool, len(candidates))
	dropped := 0

	for _, segment := range candidates {
		cost := builder.segmentCost(params.Model, segment)
		if cost <= remaining {
			included = append(included, segment)
			includedSet[segment.Sequence] = true
			remaining -= cost
		} else {
			dropped++
		}
	}

	sort.Slice(included, func(i, j int) bool { return included[i].Sequence < included[j].Sequence })

	messages := make([]core.Message, 0, messageCount(included)+messageCount(lastTurn))
	for _, segment := range included {
		messages = append(messages, segment.Messages...)
	}
	for _, segment := range lastTurn {
		messages = append(messages, segment.Messages...)
	}

	preservedSet := make(map[uint64]bool, len(lastTurn))
	for _, segment := range lastTurn {
		preservedSet[segment.Sequence] = true
	}

	stats := make([]SegmentStat, 0, len(segments))
	for _, segment := range segments {
		stats = append(stats, SegmentStat{
			Sequence:  segment.Sequence,
			Kind:      segment.Kind,
			Tokens:    builder.segmentCost(params.Model, segment),
			Included:  preservedSet[segment.Sequence] || includedSet[segment.Sequence],
			Preserved: preservedSet[segment.Sequence],
		})
	}

	request := core.Request{
		Model:     params.Model,
		System:    systemText,
		Messages:  messages,
		Tools:     params.Tools,
		MaxTokens: reserved,
		Stream:    true,
	}

	return BuildResult{
		Request:          request,
		TotalTokens:      budget - remaining,
		Budget:           budget,
		SystemTokens:     systemTokens,
		ToolTokens:       toolTokens,
		LastTurnTokens:   lastTurnTokens,
		Truncated:        dropped > 0,
		SegmentsIncluded: len(included) + len(lastTurn),
		SegmentsDropped:  dropped,
		Segments:         stats,
	}
}

func (builder *Builder) segmentsCost(model string, segments []*threads.Segment) int {
	total := 0
	for _, segment := range segments {
		total += builder.segmentCost(model, segment)
	}
	return total
}

func (builder *Builder) segmentCost(model string, segment *threads.Segment) int {
	return segment.EnsureTokenCount(func(messages []core.Message) int {
		return builder.counter.CountMessages(model, messages)
	})
}

// compactSegments drops nil entries so a damaged thread degrades instead of
// panicking mid-build.
func compactSegments(segments []*threads.Segment) []*threads.Segment {
	for _, segment := range segments {
		if segment == nil {
			kept := make([]*threads.Segment, 0, len(segments))
			for _, s := range segments {
				if s != nil {
					kept = append(kept, s)
				}
			}
			return kept
		}
	}
	return segments
}

func messageCount(segments []*threads.Segment) int {
	total := 0
	for _, segment := range segments {
		total += len(segment.Messages)
	}
	return total
}
