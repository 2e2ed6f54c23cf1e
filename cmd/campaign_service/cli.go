package main

import (
	"fmt"
	"strings"

	"github.com/vendorrisk/golang_services/internal/platform/config"
	"github.com/vendorrisk/golang_services/internal/platform/database"
)

const usage = "usage: campaign_service [migrate up|down|status]"

// runCLI handles the one-shot subcommands.
func runCLI(args []string) error {
	switch args[0] {
	case "migrate":
		if len(args) != 2 {
			return fmt.Errorf("%s (supported: %s)", usage, strings.Join(database.MigrationCommands, ", "))
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if err := database.Migrate(args[1], cfg.PostgresDSN); err != nil {
			return fmt.Errorf("migrate %s: %w", args[1], err)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}
}
