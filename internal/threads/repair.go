package threads

import "github.com/RidgetopAi/ridge-context/internal/core"

// Repair heals the tool pairing invariant in a persisted thread: every tool
// result must reference a tool invocation that is still present somewhere in
// the thread. It removes orphaned tool result blocks from user messages,
// then drops segments whose messages hold no blocks at all. Returns the
// number of removed tool result blocks; UpdatedAt is bumped only when the
// pass removed something. Running it twice removes nothing the second time.
func Repair(thread *Thread) int {
	if thread == nil {
		return 0
	}

	valid := collectToolUseIDs(thread)

	removed := 0
	for _, segment := range thread.Segments {
		if segment == nil {
			continue
		}

		for i := range segment.Messages {
			message := &segment.Messages[i]
			if message.Role != core.RoleUser {
				continue
			}

			kept := message.Blocks[:0]
			for _, block := range message.Blocks {
				if isOrphanedResult(block, valid) {
					removed++
					continue
				}
				kept = append(kept, block)
			}
			message.Blocks = kept
		}
	}

	droppedSegments := 0
	keptSegments := thread.Segments[:0]
	for _, segment := range thread.Segments {
		if segment != nil && segmentHasBlocks(segment) {
			keptSegments = append(keptSegments, segment)
		} else {
			droppedSegments++
		}
	}
	thread.Segments = keptSegments

	if removed > 0 || droppedSegments > 0 {
		thread.touch()
	}

	return removed
}

func collectToolUseIDs(thread *Thread) map[string]struct{} {
	valid := make(map[string]struct{})

	for _, segment := range thread.Segments {
		if segment == nil {
			continue
		}

		for _, message := range segment.Messages {
			if message.Role != core.RoleAssistant {
				continue
			}

			for _, block := range message.Blocks {
				if block.Type == core.BlockToolUse && block.ToolUse != nil {
					valid[block.ToolUse.ID] = struct{}{}
				}
			}
		}
	}

	return valid
}

func isOrphanedResult(block core.Block, valid map[string]struct{}) bool {
	if block.Type != core.BlockToolResult || block.ToolResult == nil {
		return false
	}

	_, ok := valid[block.ToolResult.ToolUseID]

	return !ok
}

func segmentHasBlocks(segment *Segment) bool {
	for _, message := range segment.Messages {
		if len(message.Blocks) > 0 {
			return true
		}
	}

	return false
}
