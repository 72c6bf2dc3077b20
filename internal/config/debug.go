package config

import "os"

func LoadDebugConfigFromEnv(cfg DebugConfig) DebugConfig {
	if os.Getenv("RIDGECTX_DEBUG_LOG_BUDGET") == "1" {
		cfg.LogBudget = true
	}
	if dir := os.Getenv("RIDGECTX_DEBUG_LOG_DIR"); dir != "" {
		cfg.LogDirectory = dir
	}
	return cfg
}
