package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"networth_scraper/internal/config"
	"networth_scraper/internal/ledger"
	"networth_scraper/internal/notifications"
	"networth_scraper/internal/sheets"
	"networth_scraper/internal/xlsx"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	level, known := parseLevel(levelStr)
	zerolog.SetGlobalLevel(level)
	if !known {
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// parseLevel maps LOGLEVEL to a zerolog level. An empty value picks a default
// based on ENV.
func parseLevel(levelStr string) (zerolog.Level, bool) {
	switch levelStr {
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "fatal":
		return zerolog.FatalLevel, true
	case "panic":
		return zerolog.PanicLevel, true
	case "disabled":
		return zerolog.Disabled, true
	case "":
		if os.Getenv("ENV") == "production" {
			return zerolog.WarnLevel, true
		}
		return zerolog.InfoLevel, true
	default:
		return zerolog.InfoLevel, false
	}
}

// LoadConfig reads the YAML config if present, then applies env overrides and validates.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Debug().
		Str("base_url", cfg.MoneyBrilliant.BaseURL).
		Str("backend", cfg.Spreadsheet.Backend).
		Str("spreadsheet", cfg.Spreadsheet.Name).
		Int("categories", len(cfg.Categories)).
		Msg("Configuration loaded")
	return cfg, nil
}

// WorkbookOpener returns a function that opens the configured spreadsheet backend.
func WorkbookOpener(cfg config.SpreadsheetConfig) func(context.Context) (ledger.Workbook, error) {
	return func(ctx context.Context) (ledger.Workbook, error) {
		switch cfg.Backend {
		case config.BackendXLSX:
			log.Debug().Str("path", cfg.XLSXPath).Msg("Opening local workbook")
			book, err := xlsx.Open(cfg.XLSXPath)
			if err != nil {
				return nil, err
			}
			return book, nil

		case config.BackendGoogle:
			client, err := sheets.NewClient(ctx, cfg.CredentialsFile)
			if err != nil {
				return nil, err
			}
			if cfg.ID != "" {
				return client.OpenByID(cfg.ID), nil
			}
			log.Debug().Str("name", cfg.Name).Msg("Looking up spreadsheet by name")
			book, err := client.Open(ctx, cfg.Name)
			if err != nil {
				return nil, err
			}
			return book, nil

		default:
			return nil, fmt.Errorf("unknown spreadsheet backend %q", cfg.Backend)
		}
	}
}

// InitializeNotificationClient creates the client used for unmatched-column alerts
func InitializeNotificationClient(cfg config.NotificationsConfig) *notifications.Client {
	log.Debug().
		Bool("enabled", cfg.Enabled).
		Str("base_url", cfg.URL).
		Str("topic", cfg.Topic).
		Msg("Initializing notification client")

	client := notifications.NewClient(cfg.URL, cfg.Topic, cfg.Enabled, cfg.Priority)

	if cfg.Enabled {
		log.Info().Str("topic", cfg.Topic).Msg("Notifications enabled")
	}

	return client
}
