package cli

import (
	"fmt"

	lipgloss "github.com/charmbracelet/lipgloss/v2"

	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known models and their context windows",
		Args:  cobra.NoArgs,
		RunE:  runModelsCmd,
	}

	cmd.Flags().String("provider", "", "only show models from one provider")
	cmd.AddCommand(newProvidersCmd())

	return cmd
}

func runModelsCmd(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	provider, _ := cmd.Flags().GetString("provider")

	t := newTable("NAME", "PROVIDER", "CONTEXT", "MAX OUTPUT", "COUNTING", "TOOLS", "THINKING")

	for _, info := range app.Catalog.List() {
		if provider != "" && info.Provider != provider {
			continue
		}

		tools := styleDim.Render("-")
		if info.SupportsTools {
			tools = styleSuccess.Render("✓")
		}

		thinking := styleDim.Render("-")
		if info.SupportsThinking {
			thinking = styleSuccess.Render("✓")
		}

		t.Row(info.Name, info.Provider,
			fmt.Sprintf("%d", info.ContextWindow),
			fmt.Sprintf("%d", info.DefaultMaxOutput),
			string(info.Strategy), tools, thinking)
	}

	lipgloss.Println(t.Render())
	return nil
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List known providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}

			for _, provider := range app.Catalog.Providers() {
				count := len(app.Catalog.ModelsForProvider(provider))
				lipgloss.Printf("%s %s\n", provider, styleDim.Render(fmt.Sprintf("(%d models)", count)))
			}

			return nil
		},
	}
}
