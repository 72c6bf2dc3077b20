package cli

import (
	"encoding/json"
	"fmt"

	lipgloss "github.com/charmbracelet/lipgloss/v2"

	"github.com/spf13/cobra"

	"github.com/RidgetopAi/ridge-context/internal/agent"
	"github.com/RidgetopAi/ridge-context/internal/conversation"
	"github.com/RidgetopAi/ridge-context/internal/core"
	"github.com/RidgetopAi/ridge-context/internal/prompt"
)

func newBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget [thread-id]",
		Short: "Pack a request for a thread and show the budget breakdown",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBudgetCmd,
	}

	cmd.Flags().Int("max-output", 0, "override the reserved output tokens")
	cmd.Flags().Bool("tools", true, "include the standard toolset declarations")
	cmd.Flags().Bool("json", false, "print the raw build result as JSON")

	return cmd
}

func runBudgetCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	threadID, err := resolveThreadID(app.Config.DataDir, args)
	if err != nil {
		return err
	}

	maxOutput, _ := cmd.Flags().GetInt("max-output")
	if maxOutput == 0 {
		maxOutput = app.Config.Budget.ReservedOutput
	}

	promptBuilder := prompt.NewBuilder("").
		WithPlatform(prompt.GatherPlatform()).
		WithRepo(prompt.GatherRepo())

	var tools []core.ToolDefinition
	if withTools, _ := cmd.Flags().GetBool("tools"); withTools {
		tools = agent.DefaultToolset()
	}

	result, err := app.Service.PrepareRequest(threadID, agent.RequestParams{
		SystemPrompt:      promptBuilder.Build(),
		SystemPromptShort: promptBuilder.BuildShort(),
		Tools:             tools,
		MaxOutputTokens:   maxOutput,
	})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal build result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printBudgetResult(string(threadID), result)
	return nil
}

func printBudgetResult(threadID string, result conversation.BuildResult) {
	info := fmt.Sprintf("%d / %d tokens", result.TotalTokens, result.Budget)

	truncatedText := styleSuccess.Render("no")
	if result.Truncated {
		truncatedText = styleWarning.Render(fmt.Sprintf("yes, %d segment(s) dropped", result.SegmentsDropped))
	}

	lipgloss.Println(kvLine("Thread", threadID))
	lipgloss.Println(kvLine("Model", result.Request.Model))
	lipgloss.Println(kvLine("Usage", info))
	lipgloss.Println(kvLine("Reserved output", fmt.Sprintf("%d", result.Request.MaxTokens)))
	lipgloss.Println(kvLine("System prompt", fmt.Sprintf("%d tokens", result.SystemTokens)))
	lipgloss.Println(kvLine("Tools", fmt.Sprintf("%d declared, %d tokens", len(result.Request.Tools), result.ToolTokens)))
	lipgloss.Println(kvLine("Last turn", fmt.Sprintf("%d tokens", result.LastTurnTokens)))
	lipgloss.Println(kvLine("Messages", fmt.Sprintf("%d", len(result.Request.Messages))))
	lipgloss.Println(kvLine("Truncated", truncatedText))

	if len(result.Segments) == 0 {
		return
	}

	lipgloss.Println()
	printSegmentStats(result.Segments)
}

func printSegmentStats(stats []conversation.SegmentStat) {
	t := newTable("SEQ", "KIND", "TOKENS", "STATUS")

	for _, stat := range stats {
		status := styleDim.Render("dropped")
		switch {
		case stat.Preserved:
			status = styleActive.Render("preserved")
		case stat.Included:
			status = styleSuccess.Render("included")
		}

		kind := segmentKindStyle(stat.Kind).Render(segmentKindLabel(stat.Kind))

		t.Row(fmt.Sprintf("%d", stat.Sequence), kind,
			fmt.Sprintf("%d", stat.Tokens), status)
	}

	lipgloss.Println(t.Render())
}
