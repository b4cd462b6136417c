package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"networth_scraper/internal/config"
	"networth_scraper/internal/credentials"
	"networth_scraper/internal/ledger"
	"networth_scraper/internal/moneybrilliant"

	"github.com/rs/zerolog/log"
)

// Session is the logged in aggregation service connection.
type Session interface {
	Login(ctx context.Context, creds credentials.Credentials) (moneybrilliant.AuthHeaders, error)
	FetchAll(ctx context.Context, categories []config.Category) ([]moneybrilliant.CategoryAccounts, error)
}

type Notifier interface {
	NotifyUnmatched(ctx context.Context, worksheet string, keys []string)
}

type Deps struct {
	Session      Session
	OpenWorkbook func(context.Context) (ledger.Workbook, error)
	Notifier     Notifier
	// Now overrides the row timestamp clock when set.
	Now func() time.Time
}

// Run performs one full scrape: login, fetch every category, then append one
// row per category. It stops at the first error.
func Run(ctx context.Context, cfg *config.Config, deps Deps, dryRun bool) ([]*ledger.Result, error) {
	log.Debug().Str("file", cfg.MoneyBrilliant.CredentialsFile).Msg("Loading MoneyBrilliant credentials")
	creds, err := credentials.Load(cfg.MoneyBrilliant.CredentialsFile)
	if err != nil {
		return nil, err
	}

	if _, err := deps.Session.Login(ctx, creds); err != nil {
		return nil, err
	}

	fetched, err := deps.Session.FetchAll(ctx, cfg.Categories)
	if err != nil {
		return nil, err
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	book, err := deps.OpenWorkbook(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	if closer, ok := book.(io.Closer); ok {
		defer closer.Close()
	}

	writer := ledger.NewWriter(book, location)
	writer.DryRun = dryRun
	if deps.Now != nil {
		writer.Now = deps.Now
	}

	results := make([]*ledger.Result, 0, len(fetched))
	for _, f := range fetched {
		result, err := writer.Write(ctx, f.Accounts, f.Category.Worksheet)
		if err != nil {
			return nil, err
		}
		results = append(results, result)

		if deps.Notifier != nil {
			deps.Notifier.NotifyUnmatched(ctx, f.Category.Worksheet, result.Unmatched)
		}
	}

	log.Info().
		Int("worksheets", len(results)).
		Bool("dry_run", dryRun).
		Msg("Networth update complete")
	return results, nil
}
