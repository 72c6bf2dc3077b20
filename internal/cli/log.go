package cli

import (
	"fmt"

	lipgloss "github.com/charmbracelet/lipgloss/v2"

	"github.com/spf13/cobra"

	"github.com/RidgetopAi/ridge-context/internal/conversation"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log [thread-id]",
		Short: "Show recent budget log entries",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLogCmd,
	}

	cmd.Flags().IntP("lines", "n", 20, "number of entries to show")

	return cmd
}

func runLogCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	lines, _ := cmd.Flags().GetInt("lines")

	budgetLog := conversation.NewBudgetLog(app.Config.Debug.LogDirectory)
	entries, err := budgetLog.ReadTail(lines)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		filtered := entries[:0]
		for _, entry := range entries {
			if string(entry.ThreadID) == args[0] {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	if len(entries) == 0 {
		lipgloss.Println(styleDim.Render("No budget log entries."))
		lipgloss.Println("Enable logging with " + styleCommand.Render("RIDGECTX_DEBUG_LOG_BUDGET=1"))
		return nil
	}

	t := newTable("TIME", "THREAD", "MODEL", "TOKENS", "BUDGET", "TRUNCATED")

	for _, entry := range entries {
		truncated := styleDim.Render("-")
		if entry.Truncated {
			truncated = styleWarning.Render(fmt.Sprintf("%d dropped", entry.SegmentsDropped))
		}

		t.Row(entry.Timestamp.Format("15:04:05"),
			string(entry.ThreadID), entry.Model,
			fmt.Sprintf("%d", entry.TotalTokens),
			fmt.Sprintf("%d", entry.Budget),
			truncated)
	}

	lipgloss.Println(t.Render())
	return nil
}
