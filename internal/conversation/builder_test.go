package conversation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/RidgetopAi/ridge-context/internal/core"
	"github.com/RidgetopAi/ridge-context/internal/models"
	"github.com/RidgetopAi/ridge-context/internal/threads"
	"github.com/RidgetopAi/ridge-context/internal/tokens"
)

// The test models count heuristically, so every cost below is exact:
// a message costs 4 + ceil(len(text)/4), plus 3 per segment batch.
func testCatalog() *models.Catalog {
	catalog := models.NewCatalog()
	catalog.Register(models.ModelInfo{
		Name:             "pack-test",
		ContextWindow:    1000,
		DefaultMaxOutput: 100,
		Strategy:         models.StrategyHeuristic,
		SupportsTools:    true,
		Provider:         "test",
	})
	catalog.Register(models.ModelInfo{
		Name:             "pack-tiny",
		ContextWindow:    60,
		DefaultMaxOutput: 10,
		Strategy:         models.StrategyHeuristic,
		SupportsTools:    true,
		Provider:         "test",
	})

	return catalog
}

func testBuilder() *Builder {
	catalog := testCatalog()
	return NewBuilder(catalog, tokens.NewCounter(catalog))
}

func chatSegment(text string) *threads.Segment {
	return threads.NewSegment(threads.KindChatHistory, userMessage(text))
}

func toolExchangeSegment(callID string) *threads.Segment {
	return threads.NewSegment(threads.KindToolExchange,
		core.Message{Role: core.RoleAssistant, Blocks: []core.Block{
			core.ToolUseBlock(callID, "read", map[string]any{"path": "a.go"}),
		}},
		core.Message{Role: core.RoleUser, Blocks: []core.Block{
			core.ToolResultBlock(callID, core.TextPayload("contents"), false),
		}},
	)
}

func messageTexts(messages []core.Message) []string {
	var texts []string
	for _, message := range messages {
		for _, block := range message.Blocks {
			if block.Type == core.BlockText {
				texts = append(texts, block.Text)
			}
		}
	}

	return texts
}

func TestBuilder_SmallThreadFitsUntruncated(t *testing.T) {
	thread := threads.NewThread("pack-test")
	thread.AddSegment(chatSegment("hi"))

	result := testBuilder().Build(BuildParams{
		Model:        "pack-test",
		SystemPrompt: "You are a helpful reviewer.",
		Segments:     thread.Segments,
	})

	// window 1000 - output 100 - margin 20
	if result.Budget != 880 {
		t.Errorf("budget: got %d, want 880", result.Budget)
	}

	// system 7 + segment (4 + 1 + 3)
	if result.TotalTokens != 15 {
		t.Errorf("total tokens: got %d, want 15", result.TotalTokens)
	}

	if result.SystemTokens != 7 {
		t.Errorf("system tokens: got %d, want 7", result.SystemTokens)
	}

	if result.LastTurnTokens != 8 {
		t.Errorf("last turn tokens: got %d, want 8", result.LastTurnTokens)
	}

	if result.Truncated {
		t.Error("nothing was dropped, truncated should be false")
	}

	if result.SegmentsIncluded != 1 || result.SegmentsDropped != 0 {
		t.Errorf("included/dropped: got %d/%d, want 1/0", result.SegmentsIncluded, result.SegmentsDropped)
	}

	if len(result.Request.Messages) != 1 {
		t.Fatalf("messages: got %d, want 1", len(result.Request.Messages))
	}

	if result.Request.System != "You are a helpful reviewer." {
		t.Errorf("system prompt replaced without need: %q", result.Request.System)
	}

	if result.Request.MaxTokens != 100 {
		t.Errorf("max tokens: got %d, want the catalog default 100", result.Request.MaxTokens)
	}

	if !result.Request.Stream {
		t.Error("built requests should ask for streaming")
	}
}

func TestBuilder_DropsOldestWhenOverBudget(t *testing.T) {
	thread := threads.NewThread("pack-test")

	// Nine segments of exactly 200 tokens each: 4 + ceil(772/4) + 3.
	for i := 0; i < 9; i++ {
		thread.AddSegment(chatSegment(fmt.Sprintf("%d%s", i, strings.Repeat("x", 771))))
	}
	thread.AddSegment(chatSegment("hi"))

	result := testBuilder().Build(BuildParams{
		Model:        "pack-test",
		SystemPrompt: "You are a helpful reviewer.",
		Segments:     thread.Segments,
	})

	// budget 880, mandatory 15, remaining 865: four 200-token segments fit.
	if !result.Truncated {
		t.Error("expected truncation")
	}

	if result.SegmentsDropped != 5 {
		t.Errorf("dropped: got %d, want 5", result.SegmentsDropped)
	}

	if result.SegmentsIncluded != 5 {
		t.Errorf("included: got %d, want 5 (four packed + last turn)", result.SegmentsIncluded)
	}

	if result.TotalTokens != 815 {
		t.Errorf("total tokens: got %d, want 815", result.TotalTokens)
	}

	if result.TotalTokens > result.Budget {
		t.Errorf("total %d exceeds budget %d", result.TotalTokens, result.Budget)
	}

	texts := messageTexts(result.Request.Messages)
	if len(texts) != 5 {
		t.Fatalf("messages: got %d, want 5", len(texts))
	}

	// The survivors are the newest four, in chronological order.
	for i, wantPrefix := range []string{"5", "6", "7", "8"} {
		if !strings.HasPrefix(texts[i], wantPrefix) {
			t.Errorf("message %d: got prefix %q, want %q", i, texts[i][:1], wantPrefix)
		}
	}

	if texts[4] != "hi" {
		t.Errorf("last message should be the preserved turn, got %q", texts[4])
	}
}

func TestBuilder_PreservesToolRunUnderImpossibleBudget(t *testing.T) {
	thread := threads.NewThread("pack-tiny")
	thread.AddSegment(threads.NewSegment(threads.KindSummary, userMessage("old conversation summary")))
	thread.AddSegment(chatSegment("question"))
	thread.AddSegment(toolExchangeSegment("call_1"))
	thread.AddSegment(toolExchangeSegment("call_2"))

	result := testBuilder().Build(BuildParams{
		Model:    "pack-tiny",
		Segments: thread.Segments,
	})

	// The last turn alone overruns the 49-token budget; it is sent anyway.
	if result.SegmentsIncluded != 3 {
		t.Errorf("included: got %d, want the full 3-segment last turn", result.SegmentsIncluded)
	}

	if result.SegmentsDropped != 1 {
		t.Errorf("dropped: got %d, want 1", result.SegmentsDropped)
	}

	if len(result.Request.Messages) != 5 {
		t.Fatalf("messages: got %d, want 5", len(result.Request.Messages))
	}

	if result.TotalTokens > result.Budget {
		t.Errorf("reported total %d exceeds budget %d", result.TotalTokens, result.Budget)
	}

	assertToolPairsIntact(t, result.Request.Messages)
}

func TestBuilder_SubstitutesShortPromptWhenOverBudget(t *testing.T) {
	thread := threads.NewThread("pack-test")
	thread.AddSegment(chatSegment("hi"))

	result := testBuilder().Build(BuildParams{
		Model:             "pack-test",
		SystemPrompt:      strings.Repeat("p", 4000), // 1000 tokens, over the 880 budget
		SystemPromptShort: "Be brief.",
		Segments:          thread.Segments,
	})

	if result.Request.System != "Be brief." {
		t.Errorf("expected the abbreviated prompt, got %d chars", len(result.Request.System))
	}

	if result.SystemTokens != 3 {
		t.Errorf("system tokens should reflect the substituted prompt: got %d, want 3", result.SystemTokens)
	}

	if result.Truncated {
		t.Error("prompt substitution is not truncation")
	}

	// short prompt 3 + last turn 8
	if result.TotalTokens != 11 {
		t.Errorf("total tokens: got %d, want 11", result.TotalTokens)
	}

	if len(result.Request.Messages) != 1 {
		t.Errorf("last turn must survive the shrink, got %d messages", len(result.Request.Messages))
	}
}

func TestBuilder_SkipsLargeSegmentKeepsSmallerOlderOnes(t *testing.T) {
	thread := threads.NewThread("pack-test")
	thread.AddSegment(chatSegment("alpha"))
	thread.AddSegment(chatSegment(strings.Repeat("y", 3600))) // 907 tokens, never fits
	thread.AddSegment(chatSegment("gamma"))
	thread.AddSegment(chatSegment("hi"))

	result := testBuilder().Build(BuildParams{
		Model:    "pack-test",
		Segments: thread.Segments,
	})

	texts := messageTexts(result.Request.Messages)
	want := []string{"alpha", "gamma", "hi"}

	if len(texts) != len(want) {
		t.Fatalf("messages: got %v, want %v", texts, want)
	}

	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("order: got %v, want %v", texts, want)
		}
	}

	if result.SegmentsDropped != 1 {
		t.Errorf("dropped: got %d, want 1", result.SegmentsDropped)
	}

	if !result.Truncated {
		t.Error("expected truncation")
	}

	// mandatory 8 + alpha 9 + gamma 9
	if result.TotalTokens != 26 {
		t.Errorf("total tokens: got %d, want 26", result.TotalTokens)
	}

	var bigStat *SegmentStat
	for i := range result.Segments {
		if result.Segments[i].Sequence == 1 {
			bigStat = &result.Segments[i]
		}
	}

	if bigStat == nil {
		t.Fatal("diagnostics missing the dropped segment")
	}

	if bigStat.Included || bigStat.Preserved {
		t.Errorf("dropped segment misreported: %+v", *bigStat)
	}
}

func TestBuilder_CountsToolDeclarations(t *testing.T) {
	thread := threads.NewThread("pack-test")
	thread.AddSegment(chatSegment("hi"))

	result := testBuilder().Build(BuildParams{
		Model:    "pack-test",
		Segments: thread.Segments,
		Tools: []core.ToolDefinition{
			{Name: "read", Description: "Reads a file."},
		},
	})

	// name 1 + description 4 + overhead 20
	if result.ToolTokens != 25 {
		t.Errorf("tool tokens: got %d, want 25", result.ToolTokens)
	}

	// tools 25 + last turn 8
	if result.TotalTokens != 33 {
		t.Errorf("total tokens: got %d, want 33", result.TotalTokens)
	}

	if len(result.Request.Tools) != 1 {
		t.Errorf("declarations must pass through to the request, got %d", len(result.Request.Tools))
	}
}

func TestBuilder_EmptySegmentLog(t *testing.T) {
	result := testBuilder().Build(BuildParams{
		Model:        "pack-test",
		SystemPrompt: "sys",
	})

	if result.Truncated || result.SegmentsIncluded != 0 || result.SegmentsDropped != 0 {
		t.Errorf("empty log build misreported: %+v", result)
	}

	if result.TotalTokens != 1 {
		t.Errorf("total tokens: got %d, want just the system prompt", result.TotalTokens)
	}

	if len(result.Request.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(result.Request.Messages))
	}
}

func TestBuilder_MaxOutputOverride(t *testing.T) {
	thread := threads.NewThread("pack-test")
	thread.AddSegment(chatSegment("hi"))

	result := testBuilder().Build(BuildParams{
		Model:           "pack-test",
		Segments:        thread.Segments,
		MaxOutputTokens: 300,
	})

	if result.Request.MaxTokens != 300 {
		t.Errorf("max tokens: got %d, want 300", result.Request.MaxTokens)
	}

	// window 1000 - override 300 - margin 20
	if result.Budget != 680 {
		t.Errorf("budget: got %d, want 680", result.Budget)
	}
}

func TestBuilder_BudgetClampedAtZero(t *testing.T) {
	catalog := testCatalog()
	catalog.Register(models.ModelInfo{
		Name:             "over-reserved",
		ContextWindow:    100,
		DefaultMaxOutput: 4096,
		Strategy:         models.StrategyHeuristic,
	})
	builder := NewBuilder(catalog, tokens.NewCounter(catalog))

	thread := threads.NewThread("over-reserved")
	thread.AddSegment(chatSegment("hi"))

	result := builder.Build(BuildParams{
		Model:    "over-reserved",
		Segments: thread.Segments,
	})

	if result.Budget != 0 {
		t.Errorf("budget: got %d, want 0", result.Budget)
	}

	if len(result.Request.Messages) != 1 {
		t.Error("last turn must be sent even with a zero budget")
	}
}

func TestBuilder_MemoizesSegmentCosts(t *testing.T) {
	thread := threads.NewThread("pack-test")
	thread.AddSegment(chatSegment("hi"))
	thread.AddSegment(chatSegment("there"))

	builder := testBuilder()
	first := builder.Build(BuildParams{Model: "pack-test", Segments: thread.Segments})

	for i, segment := range thread.Segments {
		if segment.TokenCount == nil {
			t.Errorf("segment %d count not memoized", i)
		}
	}

	second := builder.Build(BuildParams{Model: "pack-test", Segments: thread.Segments})
	if first.TotalTokens != second.TotalTokens {
		t.Errorf("rebuild changed totals: %d then %d", first.TotalTokens, second.TotalTokens)
	}
}

func TestBuilder_ToleratesNilSegments(t *testing.T) {
	result := testBuilder().Build(BuildParams{
		Model:    "pack-test",
		Segments: []*threads.Segment{nil, chatSegment("hi"), nil},
	})

	if result.SegmentsIncluded != 1 {
		t.Errorf("included: got %d, want 1", result.SegmentsIncluded)
	}

	if len(result.Request.Messages) != 1 {
		t.Errorf("messages: got %d, want 1", len(result.Request.Messages))
	}
}

func assertToolPairsIntact(t *testing.T, messages []core.Message) {
	t.Helper()

	uses := make(map[string]bool)
	for _, message := range messages {
		for _, block := range message.Blocks {
			if block.Type == core.BlockToolUse && block.ToolUse != nil {
				uses[block.ToolUse.ID] = true
			}
		}
	}

	for _, message := range messages {
		for _, block := range message.Blocks {
			if block.Type == core.BlockToolResult && block.ToolResult != nil {
				if !uses[block.ToolResult.ToolUseID] {
					t.Errorf("tool result %q has no matching invocation", block.ToolResult.ToolUseID)
				}
			}
		}
	}
}
