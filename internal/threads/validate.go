package threads

import (
	"fmt"

	"github.com/RidgetopAi/ridge-context/internal/core"
)

// PairingError reports a tool result whose matching tool invocation is not
// present in the thread.
type PairingError struct {
	Sequence  uint64
	ToolUseID string
}

func (e *PairingError) Error() string {
	return fmt.Sprintf("tool result %q in segment %d has no matching tool invocation", e.ToolUseID, e.Sequence)
}

// CheckPairings is the read-only counterpart of Repair: it reports every
// tool result block whose reference id does not resolve to a present tool
// invocation, without mutating the thread. A repaired thread yields no
// errors.
func CheckPairings(thread *Thread) []*PairingError {
	if thread == nil {
		return nil
	}

	valid := collectToolUseIDs(thread)

	var violations []*PairingError
	for _, segment := range thread.Segments {
		if segment == nil {
			continue
		}

		for _, message := range segment.Messages {
			for _, block := range message.Blocks {
				if block.Type != core.BlockToolResult || block.ToolResult == nil {
					continue
				}

				if _, ok := valid[block.ToolResult.ToolUseID]; !ok {
					violations = append(violations, &PairingError{
						Sequence:  segment.Sequence,
						ToolUseID: block.ToolResult.ToolUseID,
					})
				}
			}
		}
	}

	return violations
}
