package config

import (
	"fmt"
	"strings"
)

const HelpMessage = `
route-guard - route privacy and integrity service

Usage:
  route-guard --mode=<route-service|moderation-service> [--config-path=config.yaml]

Options:
  --mode          Service to run
  --config-path   Path to the YAML config file (default: config.yaml)
  --help          Show this message

Every config key can be overridden with an environment variable,
e.g. DATABASE_HOST, RABBITMQ_PORT, AUTH_JWT_SECRET, EXTERNAL_API_LOCATIONIQ_API_KEY.
`

func PrintHelp() {
	fmt.Printf("%s", HelpMessage)
}

// PrintConfig prints the configuration with secrets masked
func PrintConfig(cfg *Config) {
	var b strings.Builder
	fmt.Fprintf(&b, "mode: %s\n", cfg.Mode)
	fmt.Fprintf(&b, "log.level: %s\n", cfg.Log.Level)
	fmt.Fprintf(&b, "database: %s@%s:%s/%s (password %s)\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, mask(cfg.Database.Password))
	fmt.Fprintf(&b, "rabbitmq: %s@%s:%s\n", cfg.RabbitMQ.User, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Fprintf(&b, "services: route=%s moderation=%s\n", cfg.Services.RouteService, cfg.Services.ModerationService)
	fmt.Fprintf(&b, "locationiq: %s (key %s)\n", cfg.ExternalAPI.LocationIQBaseURL, mask(cfg.ExternalAPI.LocationIQAPIKey))
	fmt.Print(b.String())
}

func mask(s string) string {
	if s == "" {
		return "<empty>"
	}
	return "****"
}
