package main

import (
	"context"
	"os"

	"networth_scraper/internal/app"
	"networth_scraper/internal/moneybrilliant"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	app.SetupEnvironment()

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "networth",
		Short: "Append today's MoneyBrilliant balances to the Networth spreadsheet",
		Args:  cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run(cmd.Context(), configPath, dryRun); err != nil {
				log.Error().Err(err).Msg("Networth update failed")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to an optional YAML config file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build rows and log them without appending")
	return cmd
}

func run(ctx context.Context, configPath string, dryRun bool) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	session, err := moneybrilliant.NewClientFromConfig(cfg.MoneyBrilliant)
	if err != nil {
		return err
	}

	log.Info().Str("spreadsheet", cfg.Spreadsheet.Name).Msg("Starting networth update")

	_, err = app.Run(ctx, cfg, app.Deps{
		Session:      session,
		OpenWorkbook: app.WorkbookOpener(cfg.Spreadsheet),
		Notifier:     app.InitializeNotificationClient(cfg.Notifications),
	}, dryRun)
	return err
}
