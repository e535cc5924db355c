package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner, grounded on the teacher's
// internal/common/banner.go but trimmed to this system's configuration
// surface (no source/LLM capability listing, since there are none here).
func PrintBanner(cfg *Config, logger arbor.ILogger) {
	serviceURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(72)

	fmt.Printf("\n")
	b.PrintTopLine()
	b.PrintCenteredText("ATSCRAWL")
	b.PrintCenteredText("ATS Job Board Discovery and Ingestion Pipeline")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", GetVersion(), 15)
	b.PrintKeyValue("Environment", cfg.Environment, 15)
	b.PrintKeyValue("Service URL", serviceURL, 15)
	b.PrintKeyValue("Storage", cfg.Storage.SQLite.Path, 15)
	b.PrintKeyValue("Archive", cfg.Archive.BaseURL, 15)
	b.PrintBottomLine()
	fmt.Printf("\n")

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", cfg.Environment).
		Str("service_url", serviceURL).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Str("scheduler_cron", cfg.Scheduler.CronExpr).
		Msg("application started")
}

// PrintShutdownBanner displays the shutdown banner.
func PrintShutdownBanner(logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(42)

	b.PrintTopLine()
	b.PrintCenteredText("SHUTTING DOWN")
	b.PrintCenteredText("ATSCRAWL")
	b.PrintBottomLine()
	fmt.Println()

	logger.Info().Msg("application shutting down")
}
