package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/glimgeist/beforeiplay-scraper/internal/config"
	"github.com/glimgeist/beforeiplay-scraper/internal/naming"
)

// newWikiServer serves a category page listing titles and an article page
// for each of them.
func newWikiServer(t *testing.T, titles ...string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/index.php", func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("title")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if title == "Category:Games" {
			var sb strings.Builder
			sb.WriteString(`<html><body><div id="mw-pages"><div class="mw-category-group"><ul>`)
			for _, t := range titles {
				fmt.Fprintf(&sb, `<li><a href="/index.php?title=%s">%s</a></li>`, t, t)
			}
			sb.WriteString(`</ul></div></div></body></html>`)
			_, _ = io.WriteString(w, sb.String())
			return
		}

		for _, t := range titles {
			if t == title {
				fmt.Fprintf(w, `<html><body><h1 id="firstHeading"><span>%s</span></h1>
<div id="mw-content-text"><div class="mw-parser-output"><p>About %s.</p></div></div></body></html>`, t, t)
				return
			}
		}
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeConfigFile writes an explicit config file so tests never pick up one
// from the working or home directory.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// scrapeFlags returns a scrape command with its flags parsed from args.
func scrapeFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := NewScrapeCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

func TestNewScrapeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScrapeCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"limit", "n", "0"},
		{"output-dir", "o", config.DefaultOutputDir},
		{"delay", "d", "1"},
		{"randomize-delay", "r", "false"},
		{"letter", "l", ""},
		{"config", "c", ""},
		{"timeout", "t", config.DefaultTimeout.String()},
		{"index-url", "", config.DefaultIndexURL},
		{"max-index-pages", "", "1"},
		{"front-matter", "", "false"},
		{"respect-robots", "", "false"},
		{"no-db", "", "false"},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"report-file", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "outputDir: from-file\ndelay: 3s\nfrontMatter: true\n")
		cmd := scrapeFlags(t, "-c", path, "-o", "from-flag", "-d", "0.25", "-n", "5", "-l", "f", "--no-db")

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OutputDir != "from-flag" {
			t.Errorf("expected output dir from flag, got %q", cfg.OutputDir)
		}
		if cfg.Delay != 250*time.Millisecond {
			t.Errorf("expected 250ms delay, got %v", cfg.Delay)
		}
		if !cfg.FrontMatter {
			t.Error("expected front matter from file")
		}
		if cfg.Limit != 5 || cfg.Letter != "f" {
			t.Errorf("expected limit 5 and letter f, got %d and %q", cfg.Limit, cfg.Letter)
		}
		if cfg.SaveToDB {
			t.Error("expected --no-db to disable the ledger")
		}
	})

	t.Run("config file values apply when flags are unset", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "outputDir: from-file\ndelay: 3s\n")
		cfg, err := buildConfig(scrapeFlags(t, "-c", path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OutputDir != "from-file" || cfg.Delay != 3*time.Second {
			t.Errorf("expected file values, got %q and %v", cfg.OutputDir, cfg.Delay)
		}
		if !cfg.SaveToDB {
			t.Error("expected ledger enabled by default")
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := buildConfig(scrapeFlags(t, "-c", filepath.Join(t.TempDir(), "missing.yaml")))
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "delay: [not a duration\n")
		if _, err := buildConfig(scrapeFlags(t, "-c", path)); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestResolveBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		letter  string
		want    naming.Bucket
		warning bool
	}{
		{"", "", false},
		{"f", "F", false},
		{"0-9", naming.BucketDigits, false},
		{"7", naming.BucketDigits, false},
		{"AB", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.letter, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.Letter = tt.letter
			var buf bytes.Buffer

			if got := resolveBucket(cfg, &buf); got != tt.want {
				t.Errorf("expected bucket %q, got %q", tt.want, got)
			}
			if warned := strings.Contains(buf.String(), "Invalid letter"); warned != tt.warning {
				t.Errorf("expected warning=%v, got output %q", tt.warning, buf.String())
			}
		})
	}
}

func TestScrapeCommand(t *testing.T) {
	t.Parallel()

	srv := newWikiServer(t, "Foo!", "Bar", "1942")
	outDir := filepath.Join(t.TempDir(), "games")
	dbDir := t.TempDir()
	cfgPath := writeConfigFile(t, "timeout: 5s\n")

	args := []string{
		"scrape",
		"-c", cfgPath,
		"--index-url", srv.URL + "/index.php?title=Category:Games",
		"-o", outDir,
		"-d", "0",
		"--db-dir", dbDir,
	}

	output, err := execute(t, args...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, path := range []string{
		filepath.Join(outDir, "F", "Foo!.md"),
		filepath.Join(outDir, "B", "Bar.md"),
		filepath.Join(outDir, "0-9", "1942.md"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
		}
	}
	for _, want := range []string{
		"Found 3 potential game links.",
		"--- Processing game 1/3 ---",
		"Successfully processed: 3 games",
		"Errors encountered: 0 games",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	t.Run("second run skips existing files", func(t *testing.T) {
		output, err := execute(t, args...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(output, "Skipping '") != 3 {
			t.Errorf("expected every game to be skipped, got:\n%s", output)
		}
		if strings.Contains(output, "Waited") {
			t.Error("expected no courtesy delay when nothing was fetched")
		}
	})

	t.Run("history lists both runs", func(t *testing.T) {
		output, err := execute(t, "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 3 {
			t.Errorf("expected header and two runs, got:\n%s", output)
		}
	})

	t.Run("history compares runs", func(t *testing.T) {
		output, err := execute(t, "history", "--db-dir", dbDir, "--compare")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "Files written:   0") {
			t.Errorf("expected second run to write nothing, got:\n%s", output)
		}
	})
}

func TestScrapeCommandFilters(t *testing.T) {
	t.Parallel()

	srv := newWikiServer(t, "Alpha", "Beta", "Avalon", "Armada")
	outDir := t.TempDir()
	cfgPath := writeConfigFile(t, "timeout: 5s\n")
	reportPath := filepath.Join(t.TempDir(), "reports", "run.json")

	_, err := execute(t,
		"scrape",
		"-c", cfgPath,
		"--index-url", srv.URL+"/index.php?title=Category:Games",
		"-o", outDir,
		"-d", "0",
		"-l", "a",
		"-n", "2",
		"--no-db",
		"--json",
		"--report-file", reportPath,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(outDir, "*", "*.md"))
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	for _, f := range files {
		if filepath.Base(filepath.Dir(f)) != "A" {
			t.Errorf("expected only bucket A, got %s", f)
		}
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	if !strings.Contains(string(data), `"processed": 2`) {
		t.Errorf("expected JSON report with 2 processed, got:\n%s", data)
	}
}

func TestScrapeCommandUnreachableIndex(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	output, err := execute(t,
		"scrape",
		"-c", writeConfigFile(t, "timeout: 5s\n"),
		"--index-url", srv.URL+"/index.php?title=Category:Games",
		"-o", t.TempDir(),
		"--no-db",
	)
	if err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if !strings.Contains(output, "Successfully processed: 0 games") {
		t.Errorf("expected empty summary, got:\n%s", output)
	}
}

func TestScrapeCommandInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"negative delay", []string{"-d", "-1"}},
		{"negative limit", []string{"-n", "-1"}},
		{"bad index url", []string{"--index-url", "ftp://example.com"}},
		{"both report formats", []string{"--json", "--markdown"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"scrape", "-c", writeConfigFile(t, "timeout: 5s\n"), "--no-db"}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Error("expected configuration error")
			}
		})
	}
}
