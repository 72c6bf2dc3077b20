package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RidgetopAi/ridge-context/internal/config"
	"github.com/RidgetopAi/ridge-context/internal/core"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ridgectx",
		Short:         "ridgectx CLI",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")

	rootCmd.AddCommand(newThreadCmd())
	rootCmd.AddCommand(newBudgetCmd())
	rootCmd.AddCommand(newCountCmd())
	rootCmd.AddCommand(newPromptCmd())
	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newLogCmd())

	return rootCmd
}

func loadConfig(path string) (config.Config, error) {
	configPath := path
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	return config.LoadOrCreate(configPath)
}

func loadActiveThread(dataDir string) string {
	path := filepath.Join(dataDir, "active_thread")
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

func saveActiveThread(dataDir string, threadID string) error {
	if threadID == "" {
		return nil
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("save active thread: mkdir: %w", err)
	}

	path := filepath.Join(dataDir, "active_thread")
	if err := os.WriteFile(path, []byte(threadID), 0o644); err != nil {
		return fmt.Errorf("save active thread: %w", err)
	}

	return nil
}

func clearActiveThread(dataDir string) error {
	path := filepath.Join(dataDir, "active_thread")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear active thread: %w", err)
	}

	return nil
}

// resolveThreadID picks the explicit argument when given, otherwise the
// active thread.
func resolveThreadID(dataDir string, args []string) (core.ThreadID, error) {
	if len(args) > 0 {
		return core.ThreadID(args[0]), nil
	}

	active := loadActiveThread(dataDir)
	if active == "" {
		return "", fmt.Errorf("no active thread; specify a thread ID or create one with: ridgectx thread new")
	}

	return core.ThreadID(active), nil
}
