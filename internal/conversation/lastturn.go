// Package conversation assembles bounded model requests from a thread's
// segment log. It owns the last-turn boundary scan, the greedy budget
// packer, and the budget diagnostics log.
package conversation

import (
	"github.com/RidgetopAi/ridge-context/internal/threads"
)

// SplitLastTurn partitions a segment log into the trailing span that must
// survive packing untouched and everything before it. The trailing span is
// the most recent chat segment together with any tool exchanges that follow
// it, so that an in-progress user/tool exchange is never cut in half. Both
// return values preserve the input order; concatenated they reconstitute
// the full log.
func SplitLastTurn(segments []*threads.Segment) (lastTurn, older []*threads.Segment) {
	boundary := lastTurnBoundary(segments)
	return segments[boundary:], segments[:boundary]
}

func lastTurnBoundary(segments []*threads.Segment) int {
	boundary := len(segments)
	inTool := false

	for i := len(segments) - 1; i >= 0; i-- {
		switch segments[i].Kind {
		case threads.KindToolExchange:
			inTool = true
			boundary = i

		case threads.KindChatHistory:
			boundary = i
			if !inTool {
				return boundary
			}
			// A chat segment reached while still inside a tool run is part
			// of the same exchange; keep scanning for its beginning.
			inTool = false

		default:
			if !inTool {
				return boundary
			}
		}
	}

	return boundary
}
