package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glimgeist/beforeiplay-scraper/internal/catalog"
	"github.com/glimgeist/beforeiplay-scraper/internal/config"
	"github.com/glimgeist/beforeiplay-scraper/internal/database"
	"github.com/glimgeist/beforeiplay-scraper/internal/extract"
	"github.com/glimgeist/beforeiplay-scraper/internal/fetch"
	"github.com/glimgeist/beforeiplay-scraper/internal/log"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
	"github.com/glimgeist/beforeiplay-scraper/internal/naming"
	"github.com/glimgeist/beforeiplay-scraper/internal/pipeline"
	"github.com/glimgeist/beforeiplay-scraper/internal/ratelimit"
	"github.com/glimgeist/beforeiplay-scraper/internal/report"
	"github.com/glimgeist/beforeiplay-scraper/internal/robots"
	"github.com/glimgeist/beforeiplay-scraper/internal/storage"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Download game articles as Markdown files",
		Long: `Scrape reads the game index, then downloads every listed article that
does not yet have a Markdown file and converts it.

Files are written to <output-dir>/<letter>/<title>.md, where <letter> is the
first letter of the sanitized title, "0-9" for digits, or "_" otherwise.
Existing files are never re-downloaded, so re-running after an interruption
continues where the previous run stopped.

Examples:
  # Download everything into ./scraped_games
  beforeiplay scrape

  # Only games starting with F, at most 10 of them
  beforeiplay scrape --letter F --limit 10

  # Games starting with a digit, with a randomized 2 second delay
  beforeiplay scrape -l 0-9 -d 2 -r

  # Write a JSON report of the run to a file
  beforeiplay scrape --json --report-file run.json`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}

	// Selection flags
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of games to process after letter filtering (0 for all)")
	cmd.Flags().StringP("letter", "l", "",
		"Only process games in this letter bucket (A-Z, 0-9 or _)")

	// Output flags
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Root directory of the Markdown tree")
	cmd.Flags().Bool("front-matter", false,
		"Prepend YAML front matter to every file")

	// Politeness flags
	cmd.Flags().Float64P("delay", "d", config.DefaultDelay.Seconds(),
		"Delay in seconds between page requests")
	cmd.Flags().BoolP("randomize-delay", "r", false,
		"Vary each delay between 50% and 150% of --delay")
	cmd.Flags().Bool("respect-robots", false,
		"Skip pages disallowed by the site's robots.txt")

	// Source flags
	cmd.Flags().String("index-url", config.DefaultIndexURL,
		"Category page listing the games")
	cmd.Flags().Int("max-index-pages", config.DefaultMaxIndexPages,
		"Number of category pages to read, following 'next page' links")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .beforeiplay.yaml in current or home directory)")

	// Run ledger flags
	cmd.Flags().Bool("no-db", false,
		"Do not record this run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), log.Options{
		Verbose:    cfg.Verbose,
		RedactKeys: cfg.Site.HeaderNames(),
	})
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, stopping after the current game...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScrape(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in increasing order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named file must exist; otherwise a missing file just
	// means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	flags := cmd.Flags()

	if flags.Changed("index-url") {
		if cfg.IndexURL, err = flags.GetString("index-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		seconds, err := flags.GetFloat64("delay")
		if err != nil {
			return nil, err
		}
		cfg.Delay = time.Duration(seconds * float64(time.Second))
	}
	if flags.Changed("randomize-delay") {
		if cfg.RandomizeDelay, err = flags.GetBool("randomize-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-index-pages") {
		if cfg.MaxIndexPages, err = flags.GetInt("max-index-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("front-matter") {
		if cfg.FrontMatter, err = flags.GetBool("front-matter"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("respect-robots") {
		if cfg.RespectRobots, err = flags.GetBool("respect-robots"); err != nil {
			return nil, err
		}
	}

	if cfg.Limit, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if cfg.Letter, err = flags.GetString("letter"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveBucket turns the letter option into a bucket. An unusable letter
// is reported and the run continues unfiltered.
func resolveBucket(cfg *config.Config, out io.Writer) naming.Bucket {
	if cfg.Letter == "" {
		return ""
	}
	bucket, err := naming.ParseLetter(cfg.Letter)
	if err != nil {
		fmt.Fprintf(out, "Warning: Invalid letter specified ('%s'). Processing all games.\n", cfg.Letter)
		return ""
	}
	return bucket
}

// runScrape wires the components and executes one run.
func runScrape(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	bucket := resolveBucket(cfg, out)

	limit := "none"
	if cfg.Limit > 0 {
		limit = strconv.Itoa(cfg.Limit)
	}
	fmt.Fprintf(out, "Starting scraper. Output directory: '%s', Limit: %s, Delay: %.1fs\n",
		cfg.OutputDir, limit, cfg.Delay.Seconds())
	if bucket != "" {
		fmt.Fprintf(out, "Filtering for letter/category: '%s'\n", bucket)
	}

	client := fetch.NewClient(
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithHeaders(cfg.Site.Headers),
		fetch.WithCookie(cfg.Site.Cookie),
		fetch.WithLogger(logger),
	)
	waiter := ratelimit.NewDelay(cfg.Delay, cfg.RandomizeDelay)

	fmt.Fprintf(out, "Fetching game index from: %s\n", cfg.IndexURL)
	lister := catalog.NewFetcher(client, cfg.IndexURL,
		catalog.WithLinkSelector(cfg.Site.Catalog.LinkSelector),
		catalog.WithNextLink(cfg.Site.Catalog.NextSelector, cfg.Site.Catalog.NextText),
		catalog.WithMaxPages(cfg.MaxIndexPages),
		catalog.WithWaiter(waiter),
		catalog.WithLogger(logger),
	)

	materializer := pipeline.NewMaterializer(cfg.OutputDir, client,
		pipeline.WithExtractor(extract.NewExtractor(cfg.Selectors())),
		pipeline.WithConverter(extract.NewConverter(
			extract.WithDomain(cfg.BaseURL()),
			extract.WithFrontMatter(cfg.FrontMatter),
		)),
		pipeline.WithMaterializerLogger(logger),
	)

	opts := []pipeline.OrchestratorOption{
		pipeline.WithBucket(bucket),
		pipeline.WithLimit(cfg.Limit),
		pipeline.WithWaiter(waiter),
		pipeline.WithObserver(newConsoleObserver(out)),
		pipeline.WithOrchestratorLogger(logger),
	}

	if cfg.RespectRobots {
		checker, err := robots.Load(ctx, client, cfg.BaseURL(), robots.DefaultAgent)
		if err != nil {
			logger.Warn("robots.txt unavailable, continuing without it", "error", err)
		} else {
			opts = append(opts, pipeline.WithEntryFilter(checker))
		}
	}

	if cfg.SaveToDB {
		ledger, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("run history disabled", "dir", cfg.DBDir, "error", err)
		} else {
			defer ledger.Close()
			opts = append(opts, pipeline.WithLedger(ledger))
			logger.Info("database opened", "path", ledger.Path())
		}
	}

	cleanPartials(cfg.OutputDir, logger)

	tally, runErr := pipeline.NewOrchestrator(lister, materializer, opts...).Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		fmt.Fprintln(out, "\nInterrupted. Run the same command again to continue.")
	} else if runErr != nil {
		logger.Warn("run ended early", "error", runErr)
	}

	if err := outputReport(cfg, tally, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// cleanPartials removes temporary files left in the bucket directories by a
// previous run that was killed mid-write.
func cleanPartials(root string, logger *slog.Logger) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		n, err := storage.CleanPartials(filepath.Join(root, d.Name()))
		if err != nil {
			logger.Debug("failed to clean partial files", "dir", d.Name(), "error", err)
			continue
		}
		if n > 0 {
			logger.Info("removed partial files", "dir", d.Name(), "count", n)
		}
	}
}

// outputReport outputs the run report in the requested format.
func outputReport(cfg *config.Config, tally *model.RunTally, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newReportWriter(cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose, output).Write(tally)
	return err
}

// newReportWriter selects the writer for the requested format.
func newReportWriter(jsonOut, markdownOut, verbose bool, output io.Writer) report.Writer {
	switch {
	case jsonOut:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case markdownOut:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(verbose))
	}
}
