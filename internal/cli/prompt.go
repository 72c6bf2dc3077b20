package cli

import (
	"fmt"

	lipgloss "github.com/charmbracelet/lipgloss/v2"

	"github.com/spf13/cobra"

	"github.com/RidgetopAi/ridge-context/internal/prompt"
)

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Show the assembled system prompt and what it costs in tokens",
		Args:  cobra.NoArgs,
		RunE:  runPromptCmd,
	}

	cmd.Flags().String("model", "", "model whose counting strategy to use")
	cmd.Flags().Bool("short", false, "show the abbreviated prompt used under tight budgets")
	cmd.Flags().Bool("raw", false, "print raw markdown without terminal rendering")

	return cmd
}

func runPromptCmd(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = app.Config.DefaultModel
	}

	builder := prompt.NewBuilder("").
		WithPlatform(prompt.GatherPlatform()).
		WithRepo(prompt.GatherRepo())

	full := builder.Build()
	abbreviated := builder.BuildShort()

	lipgloss.Println(kvLine("Model", model))
	lipgloss.Println(kvLine("Full prompt", fmt.Sprintf("%d tokens", app.Counter.CountText(model, full))))
	lipgloss.Println(kvLine("Short prompt", fmt.Sprintf("%d tokens", app.Counter.CountText(model, abbreviated))))
	lipgloss.Println()

	text := full
	if short, _ := cmd.Flags().GetBool("short"); short {
		text = abbreviated
	}

	raw, _ := cmd.Flags().GetBool("raw")
	if raw || !isInteractive() {
		fmt.Println(text)
		return nil
	}

	renderer := newMarkdownRenderer()
	if renderer != nil {
		if rendered, err := renderer.Render(text); err == nil {
			fmt.Print(rendered)
			return nil
		}
	}

	fmt.Println(text)
	return nil
}
