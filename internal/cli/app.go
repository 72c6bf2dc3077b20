package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/RidgetopAi/ridge-context/internal/agent"
	"github.com/RidgetopAi/ridge-context/internal/config"
	"github.com/RidgetopAi/ridge-context/internal/conversation"
	"github.com/RidgetopAi/ridge-context/internal/models"
	"github.com/RidgetopAi/ridge-context/internal/threads"
	"github.com/RidgetopAi/ridge-context/internal/tokens"
)

type App struct {
	Config     config.Config
	ConfigPath string
	Catalog    *models.Catalog
	Counter    *tokens.Counter
	Service    *agent.Service
}

func newApp(cmd *cobra.Command) (*App, error) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Debug = config.LoadDebugConfigFromEnv(cfg.Debug)

	catalog := models.NewCatalog()
	counter := tokens.NewCounter(catalog)

	service := &agent.Service{
		Store:   threads.NewFileStore(cfg.DataDir),
		Builder: conversation.NewBuilderWithMargin(catalog, counter, cfg.Budget.SafetyMarginPercent),
	}

	if cfg.Debug.LogBudget {
		service.BudgetLog = conversation.NewBudgetLog(cfg.Debug.LogDirectory)
	}

	return &App{
		Config:     cfg,
		ConfigPath: configPath,
		Catalog:    catalog,
		Counter:    counter,
		Service:    service,
	}, nil
}
