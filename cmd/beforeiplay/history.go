package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/glimgeist/beforeiplay-scraper/internal/config"
	"github.com/glimgeist/beforeiplay-scraper/internal/database"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// defaultHistoryLimit is how many runs are listed unless --limit is given.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command reads the run ledger written by scrape.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past scrape runs",
		Long: `History lists the scrape runs recorded in the history database.

The database only records what happened. Whether a game is downloaded again
is decided by its Markdown file alone, so deleting the database is safe.

Examples:
  # List the most recent runs
  beforeiplay history

  # Show every game processed by run 5
  beforeiplay history --run-id 5

  # Compare the latest run with the one before it
  beforeiplay history --compare

  # Compare run 5 with the run before it, as JSON
  beforeiplay history --compare --run-id 5 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("run-id", "i", 0,
		"Show the games processed by a specific run")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolP("compare", "C", false,
		"Compare a run (default: the latest) with the run before it")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	runID, err := flags.GetInt64("run-id")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	compare, err := flags.GetBool("compare")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}

	// Validate flags before opening the database
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if limit < 0 {
		return config.ErrInvalidLimit
	}

	out := cmd.OutOrStdout()

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(out, "No runs recorded yet.")
			fmt.Fprintln(out, "\nUse 'beforeiplay scrape' to start a run.")
			return nil
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	writer := newReportWriter(jsonOutput, markdownOutput, true, out)

	switch {
	case compare:
		return compareRuns(ctx, db, runID, jsonOutput, out)
	case runID > 0:
		run, err := db.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		_, err = writer.Write(run)
		return err
	default:
		runs, err := db.ListRuns(ctx, limit)
		if err != nil {
			return err
		}
		_, err = writer.WriteRuns(runs)
		return err
	}
}

// RunComparison holds the differences between two runs.
type RunComparison struct {
	// Previous is the older run.
	Previous int64 `json:"previous_run_id"`

	// Current is the newer run.
	Current int64 `json:"current_run_id"`

	// NewFailures are games that failed in the current run but not in the
	// previous one.
	NewFailures []string `json:"new_failures"`

	// Resolved are games that failed previously and succeeded this time.
	Resolved []string `json:"resolved"`

	// StillFailing are games that failed in both runs.
	StillFailing []string `json:"still_failing"`

	// Written is how many files the current run created.
	Written int `json:"written"`
}

// compareRuns compares run currentID (the latest when zero) with the run
// recorded just before it.
func compareRuns(ctx context.Context, db *database.Ledger, currentID int64, jsonOutput bool, out io.Writer) error {
	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		return err
	}

	idx := 0
	if currentID > 0 {
		idx = -1
		for i, r := range runs {
			if r.RunID == currentID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("run %d: %w", currentID, database.ErrNotFound)
		}
	}
	if idx+1 >= len(runs) {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs)-idx)
	}

	current, err := db.GetRun(ctx, runs[idx].RunID)
	if err != nil {
		return err
	}
	previous, err := db.GetRun(ctx, runs[idx+1].RunID)
	if err != nil {
		return err
	}

	result := diffRuns(previous, current)

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "Comparing run %d with run %d\n\n", result.Current, result.Previous)
	fmt.Fprintf(out, "  Files written:   %d\n", result.Written)
	fmt.Fprintf(out, "  New failures:    %d\n", len(result.NewFailures))
	fmt.Fprintf(out, "  Resolved:        %d\n", len(result.Resolved))
	fmt.Fprintf(out, "  Still failing:   %d\n", len(result.StillFailing))
	printTitles(out, "New failures", result.NewFailures)
	printTitles(out, "Resolved", result.Resolved)
	printTitles(out, "Still failing", result.StillFailing)

	return nil
}

// diffRuns classifies failed games across two runs by URL.
func diffRuns(previous, current *model.RunTally) *RunComparison {
	failedBefore := make(map[string]bool)
	for _, item := range previous.Items {
		if isFailure(item.Outcome) {
			failedBefore[item.URL] = true
		}
	}

	result := &RunComparison{
		Previous:     previous.RunID,
		Current:      current.RunID,
		NewFailures:  make([]string, 0),
		Resolved:     make([]string, 0),
		StillFailing: make([]string, 0),
		Written:      current.Written,
	}

	for _, item := range current.Items {
		switch {
		case isFailure(item.Outcome) && failedBefore[item.URL]:
			result.StillFailing = append(result.StillFailing, item.Title)
		case isFailure(item.Outcome):
			result.NewFailures = append(result.NewFailures, item.Title)
		case failedBefore[item.URL]:
			result.Resolved = append(result.Resolved, item.Title)
		}
	}

	sort.Strings(result.NewFailures)
	sort.Strings(result.Resolved)
	sort.Strings(result.StillFailing)

	return result
}

func isFailure(o model.Outcome) bool {
	return o != model.OutcomeWritten && o != model.OutcomeSkipped
}

func printTitles(out io.Writer, heading string, titles []string) {
	if len(titles) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", heading)
	for _, t := range titles {
		fmt.Fprintf(out, "  - %s\n", t)
	}
}
