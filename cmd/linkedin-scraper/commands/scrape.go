package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/serviceutil"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/telemetry"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/config"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/export"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/scrapers/linkedin"
)

var (
	scrapeCount     *int
	scrapeKeyword   *string
	scrapeSearchUrl *string
	scrapeFormat    *string
	scrapeOut       *string
	scrapeNoEnrich  *bool
)

func init() {
	scrapeCount = scrapeCmd.Flags().IntP("count", "n", 50, "How many people to collect.")
	scrapeKeyword = scrapeCmd.Flags().StringP("keyword", "k", "", "The search keyword, defaults to the one of --search-url.")
	scrapeSearchUrl = scrapeCmd.Flags().String("search-url", "", "A people search page url to take the keyword and filters from.")
	scrapeFormat = scrapeCmd.Flags().StringP("format", "f", "", "The export format: csv, html, json or sqlite (default from config).")
	scrapeOut = scrapeCmd.Flags().StringP("out", "o", "", "The export file, defaults to linkedin_<keyword>_<timestamp>.<ext> in the configured output dir.")
	scrapeNoEnrich = scrapeCmd.Flags().Bool("no-enrich", false, "Skips fetching about, experience and education of each person.")
	rootCmd.AddCommand(scrapeCmd)
}

func searchContext() linkedin.SearchContext {
	if *scrapeSearchUrl == "" {
		return linkedin.NewSearchContext(*scrapeKeyword)
	}
	search, err := linkedin.ParseSearchURL(*scrapeSearchUrl)
	if err != nil {
		serviceutil.Fatal("failed to parse search url", err)
	}
	return search
}

func newScraper(cfg config.Config, search linkedin.SearchContext, observer linkedin.Observer) *linkedin.Scraper {
	tel := telemetry.NewSlogAPI(slog.Default())

	var output telemetry.MessageOutput
	if cfg.Http.DumpDir != "" {
		fsOutput, err := telemetry.NewFilesystemOutput(cfg.Http.DumpDir)
		if err != nil {
			serviceutil.Fatal("failed to create dump dir", err)
		}
		output = fsOutput
	}

	tokens := linkedin.NewCookieTokenProvider(cfg.Session.LiAt)
	liAt, _ := tokens.Token()

	client, err := linkedin.NewClient(linkedin.ClientOptions{
		BaseUrl:          cfg.Http.BaseUrl,
		LiAt:             liAt,
		JSessionID:       cfg.Session.JSessionID,
		UserAgent:        cfg.Http.UserAgent,
		RateLimit:        cfg.Http.RateLimit,
		Burst:            cfg.Http.Burst,
		Timeout:          cfg.Http.Timeout(),
		BrowserTransport: cfg.Http.BrowserTransport,
		Output:           output,
		Telemetry:        tel,
	})
	if err != nil {
		serviceutil.Fatal("failed to create client", err)
	}

	builder := linkedin.NewVoyagerBuilder(linkedin.VoyagerOptions{
		BaseUrl:        cfg.Http.BaseUrl,
		SearchQueryID:  cfg.Queries.Search,
		ProfileQueryID: cfg.Queries.Profile,
		JSessionID:     cfg.Session.JSessionID,
		Search:         search,
	})

	return linkedin.NewScraper(linkedin.Options{
		Transport: client,
		Requests:  builder,
		Telemetry: tel,
		Tokens:    tokens,
		Keywords:  search,
		Observer:  observer,
		Pacing:    linkedin.DelayRange{Min: cfg.Pacing.Min(), Max: cfg.Pacing.Max()},
		Backoff:   linkedin.DelayRange{Min: cfg.Backoff.Min(), Max: cfg.Backoff.Max()},
	})
}

func renderResult(result linkedin.Result) {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Name", "Headline", "Location", "Followers", "Enriched"})
	for i, p := range result.People {
		enriched := ""
		if p.Enriched {
			enriched = "yes"
		}
		t.AppendRow(table.Row{i + 1, p.Name, p.Headline, p.Location, p.Followers, enriched})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d people", len(result.People)), result.Stop.String(), fmt.Sprintf("%d pages", result.Pages)})
	t.Render()
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--count <n>] [--keyword <keyword> | --search-url <url>] [--format <format>] [--out <path>]",
	Short: "Scrapes a people search and exports the people found.",
	Run: func(cmd *cobra.Command, args []string) {
		if *scrapeCount <= 0 {
			serviceutil.Fatal("invalid --count", fmt.Errorf("must be positive, got %d", *scrapeCount))
		}
		cfg := loadConfig()

		formatName := *scrapeFormat
		if formatName == "" {
			formatName = cfg.Export.Format
		}
		format, err := export.ParseFormat(formatName)
		if err != nil {
			serviceutil.Fatal("invalid export format", err)
		}

		ctx := cmd.Context()
		otel, err := telemetry.Setup(ctx, "linkedin-scraper", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		defer otel.Shutdown(context.Background())

		search := searchContext()
		keyword := strings.TrimSpace(*scrapeKeyword)
		if keyword == "" {
			keyword = search.Keyword()
		}

		observer := newTerminalObserver(*scrapeCount, *verbose)
		scraper := newScraper(cfg, search, observer)

		started := time.Now()
		result, runErr := scraper.Run(ctx, linkedin.Params{
			TargetCount: *scrapeCount,
			Keyword:     keyword,
			Enrich:      !*scrapeNoEnrich,
		})
		slog.Info(
			"scrape finished",
			"run_id", result.RunID,
			"stop", result.Stop.String(),
			"people", len(result.People),
			"seconds", time.Since(started).Seconds(),
		)
		renderResult(result)

		path := *scrapeOut
		if path == "" {
			path = filepath.Join(cfg.Export.OutputDir, export.DefaultFileName(keyword, format, time.Now()))
		}
		// the run context may already be cancelled, the partial result is
		// still written
		err = export.Write(context.Background(), format, path, result.People, export.DefaultColumns(), fmt.Sprintf("LinkedIn search: %s", keyword))
		if err != nil {
			serviceutil.Fatal("failed to export", err)
		}
		slog.Info("exported", "path", path, "format", string(format), "people", len(result.People))

		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			// Fatal exits before the deferred shutdown runs
			otel.Shutdown(context.Background())
			serviceutil.Fatal("scrape failed", runErr)
		}
	},
}
