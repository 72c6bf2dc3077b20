package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	lipgloss "github.com/charmbracelet/lipgloss/v2"

	"github.com/spf13/cobra"

	"github.com/RidgetopAi/ridge-context/internal/agent"
	"github.com/RidgetopAi/ridge-context/internal/core"
	"github.com/RidgetopAi/ridge-context/internal/threads"
)

func newThreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "thread",
		Aliases: []string{"threads"},
		Short:   "Thread management commands",
	}

	cmd.AddCommand(newThreadListCmd())
	cmd.AddCommand(newThreadNewCmd())
	cmd.AddCommand(newThreadShowCmd())
	cmd.AddCommand(newThreadRenameCmd())
	cmd.AddCommand(newThreadModelCmd())
	cmd.AddCommand(newThreadClearCmd())
	cmd.AddCommand(newThreadRepairCmd())
	cmd.AddCommand(newThreadCheckCmd())
	cmd.AddCommand(newThreadDeleteCmd())

	return cmd
}

func newThreadListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all threads",
		Args:  cobra.NoArgs,
		RunE:  runThreadListCmd,
	}
}

func runThreadListCmd(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	summaries, err := app.Service.ListThreads()
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		lipgloss.Println(styleDim.Render("No threads found."))
		lipgloss.Println("Create one with: " + styleCommand.Render("ridgectx thread new"))
		return nil
	}

	activeID := loadActiveThread(app.Config.DataDir)

	if !isInteractive() {
		printThreadsTable(summaries, activeID)
		return nil
	}

	return pickThread(app.Config.DataDir, summaries, activeID)
}

func printThreadsTable(summaries []threads.Summary, activeID string) {
	t := newTable("", "THREAD ID", "TITLE", "MODEL", "SEGMENTS", "MODIFIED")

	for _, summary := range summaries {
		marker := " "
		id := string(summary.ID)
		if id == activeID {
			marker = styleActive.Render("*")
			id = styleActive.Render(id)
		}

		title := summary.Title
		if title == "" {
			title = styleDim.Render("-")
		}

		t.Row(marker, id, title, summary.Model,
			fmt.Sprintf("%d", summary.SegmentCount),
			formatTime(summary.UpdatedAt))
	}

	lipgloss.Println(t.Render())
}

func pickThread(dataDir string, summaries []threads.Summary, activeID string) error {
	var opts []huh.Option[string]
	for _, summary := range summaries {
		id := string(summary.ID)
		label := id
		if summary.Title != "" {
			label = summary.Title
		}
		if id == activeID {
			label = "* " + label
		}

		desc := fmt.Sprintf("model:%s segments:%d %s", summary.Model, summary.SegmentCount, formatTime(summary.UpdatedAt))

		opt := huh.NewOption(label, id)
		opt.Key = label + "  " + styleDim.Render(desc)
		if id == activeID {
			opt = opt.Selected(true)
		}
		opts = append(opts, opt)
	}

	var selected string
	err := huh.NewSelect[string]().
		Title("Pick a thread").
		Options(opts...).
		Value(&selected).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	if err := saveActiveThread(dataDir, selected); err != nil {
		return err
	}

	lipgloss.Printf("%s thread %s\n", styleSuccess.Render("Activated"), selected)
	return nil
}

func newThreadNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a thread and make it active",
		Args:  cobra.NoArgs,
		RunE:  runThreadNewCmd,
	}

	cmd.Flags().String("model", "", "model for the thread (defaults to the configured model)")
	cmd.Flags().String("title", "", "thread title")

	return cmd
}

func runThreadNewCmd(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = app.Config.DefaultModel
	}

	thread, err := app.Service.CreateThread(model)
	if err != nil {
		return err
	}

	if title, _ := cmd.Flags().GetString("title"); title != "" {
		if err := app.Service.RenameThread(thread.ID, title); err != nil {
			return err
		}
	}

	if err := saveActiveThread(app.Config.DataDir, string(thread.ID)); err != nil {
		return err
	}

	lipgloss.Printf("%s thread %s\n", styleSuccess.Render("Created"), thread.ID)
	lipgloss.Println(styleDim.Render("model: " + model))
	return nil
}

func newThreadShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [thread-id]",
		Short: "Show thread details and its segment log",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runThreadShowCmd,
	}
}

func runThreadShowCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	threadID, err := resolveThreadID(app.Config.DataDir, args)
	if err != nil {
		return err
	}

	thread, err := app.Service.LoadThread(threadID)
	if err != nil {
		return err
	}

	activeID := loadActiveThread(app.Config.DataDir)
	statusText := styleDim.Render("inactive")
	if string(thread.ID) == activeID {
		statusText = styleSuccess.Render("active")
	}

	title := thread.Title
	if title == "" {
		title = "-"
	}

	lipgloss.Println(kvLine("Thread", string(thread.ID)))
	lipgloss.Println(kvLine("Status", statusText))
	lipgloss.Println(kvLine("Title", title))
	lipgloss.Println(kvLine("Model", thread.Model))
	lipgloss.Println(kvLine("Segments", fmt.Sprintf("%d", len(thread.Segments))))
	lipgloss.Println(kvLine("Created", thread.CreatedAt.Format(time.RFC3339)))
	lipgloss.Println(kvLine("Modified", thread.UpdatedAt.Format(time.RFC3339)))

	if len(thread.Segments) == 0 {
		return nil
	}

	lipgloss.Println()
	printSegmentsTable(thread.Segments)
	return nil
}

func printSegmentsTable(segments []*threads.Segment) {
	t := newTable("SEQ", "KIND", "MESSAGES", "TOKENS")

	for _, segment := range segments {
		if segment == nil {
			continue
		}

		tokens := styleDim.Render("-")
		if segment.TokenCount != nil {
			tokens = fmt.Sprintf("%d", *segment.TokenCount)
		}

		kind := segmentKindStyle(segment.Kind).Render(segmentKindLabel(segment.Kind))

		t.Row(fmt.Sprintf("%d", segment.Sequence), kind,
			fmt.Sprintf("%d", len(segment.Messages)), tokens)
	}

	lipgloss.Println(t.Render())
}

func newThreadRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <thread-id> <title>",
		Short: "Rename a thread",
		Args:  cobra.ExactArgs(2),
		RunE:  runThreadRenameCmd,
	}
}

func runThreadRenameCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	threadID := core.ThreadID(args[0])
	if err := app.Service.RenameThread(threadID, args[1]); err != nil {
		return err
	}

	lipgloss.Printf("%s thread %s\n", styleSuccess.Render("Renamed"), threadID)
	return nil
}

func newThreadModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model <thread-id> <model>",
		Short: "Switch a thread to another model",
		Args:  cobra.ExactArgs(2),
		RunE:  runThreadModelCmd,
	}
}

func runThreadModelCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	threadID := core.ThreadID(args[0])
	model := args[1]

	if err := app.Service.SetThreadModel(threadID, model); err != nil {
		return err
	}

	info := app.Catalog.InfoFor(model)

	lipgloss.Printf("%s thread %s to %s\n", styleSuccess.Render("Switched"), threadID, model)
	lipgloss.Println(styleDim.Render(fmt.Sprintf("window: %d, default output: %d", info.ContextWindow, info.DefaultMaxOutput)))
	return nil
}

func newThreadClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [thread-id]",
		Short: "Empty a thread's segment log",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runThreadClearCmd,
	}
}

func runThreadClearCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	threadID, err := resolveThreadID(app.Config.DataDir, args)
	if err != nil {
		return err
	}

	if err := app.Service.ClearThread(threadID); err != nil {
		return err
	}

	lipgloss.Printf("%s thread %s\n", styleSuccess.Render("Cleared"), threadID)
	return nil
}

func newThreadRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair [thread-id]",
		Short: "Remove orphaned tool results from a thread",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runThreadRepairCmd,
	}
}

func runThreadRepairCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	threadID, err := resolveThreadID(app.Config.DataDir, args)
	if err != nil {
		return err
	}

	removed, err := app.Service.RepairThread(threadID)
	if err != nil {
		return err
	}

	if removed == 0 {
		lipgloss.Println(styleDim.Render("Nothing to repair."))
		return nil
	}

	lipgloss.Printf("%s %d orphaned tool result(s) from thread %s\n",
		styleSuccess.Render("Removed"), removed, threadID)
	return nil
}

func newThreadCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [thread-id]",
		Short: "Report pairing and tool input violations without repairing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runThreadCheckCmd,
	}

	cmd.Flags().Bool("schemas", true, "validate recorded tool inputs against the standard toolset schemas")

	return cmd
}

func runThreadCheckCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	threadID, err := resolveThreadID(app.Config.DataDir, args)
	if err != nil {
		return err
	}

	// Read straight from the store: LoadThread would heal the thread before
	// the check could see anything.
	thread, err := app.Service.Store.Get(threadID)
	if err != nil {
		return err
	}

	if thread == nil {
		return fmt.Errorf("thread not found: %s", threadID)
	}

	total := 0
	for _, violation := range threads.CheckPairings(thread) {
		lipgloss.Println(styleWarning.Render(violation.Error()))
		total++
	}

	if withSchemas, _ := cmd.Flags().GetBool("schemas"); withSchemas {
		schemas, err := agent.CompileToolSchemas(agent.DefaultToolset())
		if err != nil {
			return fmt.Errorf("compile tool schemas: %w", err)
		}

		for _, violation := range agent.CheckToolInputs(thread, schemas) {
			lipgloss.Println(styleWarning.Render(violation.Error()))
			total++
		}
	}

	if total == 0 {
		lipgloss.Println(styleSuccess.Render("OK") + styleDim.Render(" pairings and tool inputs are consistent"))
		return nil
	}

	lipgloss.Println(styledError(
		fmt.Sprintf("%d violation(s) found", total),
		"orphaned results can be fixed with: ridgectx thread repair "+string(threadID)))
	return nil
}

func newThreadDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <thread-id>",
		Short: "Delete a thread",
		Args:  cobra.ExactArgs(1),
		RunE:  runThreadDeleteCmd,
	}

	cmd.Flags().Bool("force", false, "force delete the active thread")

	return cmd
}

func runThreadDeleteCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	threadID := args[0]
	activeID := loadActiveThread(app.Config.DataDir)
	force, _ := cmd.Flags().GetBool("force")

	if threadID == activeID && !force {
		return fmt.Errorf("thread %s is active; use --force to delete it", threadID)
	}

	if err := app.Service.DeleteThread(core.ThreadID(threadID)); err != nil {
		return err
	}

	if threadID == activeID {
		if err := clearActiveThread(app.Config.DataDir); err != nil {
			return err
		}
	}

	lipgloss.Printf("%s thread %s\n", styleSuccess.Render("Deleted"), threadID)
	return nil
}

func formatTime(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	case d < 48*time.Hour:
		return "yesterday"
	default:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	}
}
