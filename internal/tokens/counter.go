// Package tokens estimates token counts for text, messages, and tool
// declarations. Counts are approximations tuned for budget math, not
// billing: models that declare a tokenizer family all share the cl100k_base
// encoding, and everything else falls back to a characters-per-token
// heuristic. Counting never fails.
package tokens

import (
	"encoding/json"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/RidgetopAi/ridge-context/internal/core"
	"github.com/RidgetopAi/ridge-context/internal/models"
)

// Costs holds the fixed overheads added on top of raw text counts.
type Costs struct {
	PerMessage             int // role and formatting metadata, per message
	PerBatch               int // protocol framing, once per CountMessages call
	PerToolUse             int // structure around a tool invocation block
	PerToolResult          int // structure around a tool result block
	PerToolDef             int // structure around one declared tool
	ImageTokens            int // flat charge for an image payload
	HeuristicCharsPerToken int
}

func DefaultCosts() Costs {
	return Costs{
		PerMessage:             4,
		PerBatch:               3,
		PerToolUse:             10,
		PerToolResult:          10,
		PerToolDef:             20,
		ImageTokens:            1000,
		HeuristicCharsPerToken: 4,
	}
}

type Counter struct {
	catalog *models.Catalog
	costs   Costs
}

func NewCounter(catalog *models.Catalog) *Counter {
	return NewCounterWithCosts(catalog, DefaultCosts())
}

func NewCounterWithCosts(catalog *models.Catalog, costs Costs) *Counter {
	if costs.HeuristicCharsPerToken <= 0 {
		costs.HeuristicCharsPerToken = DefaultCosts().HeuristicCharsPerToken
	}

	return &Counter{catalog: catalog, costs: costs}
}

// CountText estimates tokens for a plain string under the model's counting
// strategy.
func (counter *Counter) CountText(model, text string) int {
	if text == "" {
		return 0
	}

	if counter.catalog.InfoFor(model).Strategy == models.StrategyCl100k {
		if encoding := cl100k(); encoding != nil {
			return len(encoding.Encode(text, nil, nil))
		}
	}

	return counter.heuristic(text)
}

// CountMessages estimates tokens for a message batch: per-message overhead
// plus block costs, plus one batch boundary overhead for the whole call. The
// boundary overhead is deliberately charged once per call rather than per
// message; downstream budget math is tuned around that.
func (counter *Counter) CountMessages(model string, messages []core.Message) int {
	total := 0

	for _, message := range messages {
		total += counter.costs.PerMessage

		for _, block := range message.Blocks {
			total += counter.countBlock(model, block)
		}
	}

	return total + counter.costs.PerBatch
}

// CountTools estimates tokens for tool declarations: name, description, and
// serialized input schema, plus a structural overhead per tool.
func (counter *Counter) CountTools(model string, tools []core.ToolDefinition) int {
	total := 0

	for _, tool := range tools {
		total += counter.CountText(model, tool.Name)
		total += counter.CountText(model, tool.Description)
		total += counter.CountText(model, serialize(tool.InputSchema))
		total += counter.costs.PerToolDef
	}

	return total
}

func (counter *Counter) countBlock(model string, block core.Block) int {
	switch block.Type {
	case core.BlockText, core.BlockThinking:
		return counter.CountText(model, block.Text)
	case core.BlockImage:
		return counter.costs.ImageTokens
	case core.BlockToolUse:
		if block.ToolUse == nil {
			return 0
		}
		return counter.CountText(model, block.ToolUse.Name) +
			counter.CountText(model, serialize(block.ToolUse.Input)) +
			counter.costs.PerToolUse
	case core.BlockToolResult:
		if block.ToolResult == nil {
			return 0
		}
		return counter.countResultPayload(model, block.ToolResult.Content) + counter.costs.PerToolResult
	}

	return 0
}

func (counter *Counter) countResultPayload(model string, payload core.ResultPayload) int {
	switch payload.Type {
	case core.PayloadText:
		return counter.CountText(model, payload.Text)
	case core.PayloadJSON:
		return counter.CountText(model, string(payload.JSON))
	case core.PayloadImage:
		return counter.costs.ImageTokens
	}

	return 0
}

func (counter *Counter) heuristic(text string) int {
	charsPerToken := counter.costs.HeuristicCharsPerToken

	return (utf8.RuneCountInString(text) + charsPerToken - 1) / charsPerToken
}

func serialize(value map[string]any) string {
	if len(value) == 0 {
		return ""
	}

	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}

	return string(data)
}

var (
	cl100kOnce     sync.Once
	cl100kEncoding *tiktoken.Tiktoken
)

// cl100k returns the shared cl100k_base encoding, or nil when it cannot be
// loaded, in which case callers degrade to the heuristic.
func cl100k() *tiktoken.Tiktoken {
	cl100kOnce.Do(func() {
		encoding, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}

		cl100kEncoding = encoding
	})

	return cl100kEncoding
}
