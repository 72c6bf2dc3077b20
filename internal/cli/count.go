package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	lipgloss "github.com/charmbracelet/lipgloss/v2"

	"github.com/spf13/cobra"
)

func newCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count [text...]",
		Short: "Estimate tokens for text (reads stdin when no text is given)",
		Args:  cobra.ArbitraryArgs,
		RunE:  runCountCmd,
	}

	cmd.Flags().String("model", "", "model whose counting strategy to use")

	return cmd
}

func runCountCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = app.Config.DefaultModel
	}

	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	if text == "" {
		return fmt.Errorf("nothing to count")
	}

	info := app.Catalog.InfoFor(model)
	count := app.Counter.CountText(model, text)

	share := ""
	if info.ContextWindow > 0 {
		share = fmt.Sprintf(" (%.2f%% of the %s window)",
			float64(count)/float64(info.ContextWindow)*100, info.Name)
	}

	lipgloss.Printf("%s tokens%s\n", styleValue.Render(fmt.Sprintf("%d", count)), styleDim.Render(share))
	lipgloss.Println(styleDim.Render("strategy: " + string(info.Strategy)))
	return nil
}
