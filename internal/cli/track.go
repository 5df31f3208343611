package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/export"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/runner"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/tracker"
)

var (
	brand        string
	chatModel    string
	apiKey       string
	workers      int
	maxCalls     int
	window       time.Duration
	ceiling      int
	trackTimeout time.Duration
	noCache      bool
	outXLSX      string
	outCSV       string
	outJSON      string
)

// trackCmd represents the track command
var trackCmd = &cobra.Command{
	Use:   "track <search-query>",
	Short: "Check brand visibility for a single search query",
	Long: `Track expands a search query into several search-style prompts, asks
the model each one, and reports where the brand appears in each answer.

Example:
  visibility-tracker track "crm software" --brand example.com
  visibility-tracker track "project management tools" --brand asana --model gpt-4o --xlsx report.xlsx
  visibility-tracker track "email marketing" --brand mailchimp.com --max-calls 30 --window 1m`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringVarP(&brand, "brand", "b", "", "brand or website to track (required)")
	trackCmd.Flags().StringVar(&chatModel, "model", "", "chat model (gpt-3.5-turbo, gpt-4, gpt-4o, gpt-4o-mini)")
	trackCmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key (defaults to OPENAI_API_KEY)")
	trackCmd.Flags().IntVar(&workers, "workers", 0, "concurrent workers (default from config)")
	trackCmd.Flags().IntVar(&maxCalls, "max-calls", 0, "rate limit: calls per window")
	trackCmd.Flags().DurationVar(&window, "window", 0, "rate limit window")
	trackCmd.Flags().IntVar(&ceiling, "ceiling", 0, "hard cap on total API calls (0 = no cap)")
	trackCmd.Flags().DurationVar(&trackTimeout, "timeout", 10*time.Minute, "overall timeout")
	trackCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	trackCmd.Flags().StringVar(&outXLSX, "xlsx", "", "write results to an XLSX file")
	trackCmd.Flags().StringVar(&outCSV, "csv", "", "write results to a CSV file")
	trackCmd.Flags().StringVar(&outJSON, "json", "", "write results to a JSON file")

	_ = trackCmd.MarkFlagRequired("brand")
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := buildTrackConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	return runQueries(ctx, cfg, brand, []string{args[0]})
}

// buildTrackConfig overlays track command flags onto the loaded config
func buildTrackConfig() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if apiKey != "" {
		cfg.OpenAI.APIKey = apiKey
	}
	if chatModel != "" {
		cfg.OpenAI.Model = chatModel
	}
	if workers > 0 {
		cfg.Concurrency.Workers = workers
	}
	if maxCalls > 0 {
		cfg.RateLimit.MaxCalls = maxCalls
	}
	if window > 0 {
		cfg.RateLimit.Window = window
	}
	if ceiling > 0 {
		cfg.RateLimit.Ceiling = ceiling
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if outXLSX != "" {
		cfg.Output.XLSX = outXLSX
	}
	if outCSV != "" {
		cfg.Output.CSV = outCSV
	}
	if outJSON != "" {
		cfg.Output.JSON = outJSON
	}

	return cfg, nil
}

// runQueries runs the pipeline for the given search queries and renders
// terminal plus file output. Shared by track and batch.
func runQueries(ctx context.Context, cfg *model.Config, target string, searchQueries []string) error {
	t, err := tracker.New(cfg)
	if err != nil {
		return err
	}

	onProgress := func(done, total int, item runner.BatchItem) {
		if item.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ [%d/%d] %s: %v\n", done, total, item.Query.Prompt, item.Err)
			return
		}
		cached := ""
		if item.Response.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(os.Stderr, "✓ [%d/%d] %s%s\n", done, total, item.Query.Prompt, cached)
	}

	rs, summary, err := t.Track(ctx, target, searchQueries, onProgress)
	if err != nil {
		return fmt.Errorf("track failed: %w", err)
	}

	tracker.RenderResults(os.Stdout, rs)
	tracker.RenderSummary(os.Stdout, rs, summary)

	if cfg.Output.XLSX != "" {
		if err := export.WriteXLSX(cfg.Output.XLSX, rs, summary); err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote XLSX: %s\n", cfg.Output.XLSX)
	}
	if cfg.Output.CSV != "" {
		if err := export.WriteCSV(cfg.Output.CSV, rs); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote CSV: %s\n", cfg.Output.CSV)
	}
	if cfg.Output.JSON != "" {
		if err := export.WriteJSON(cfg.Output.JSON, rs, summary); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", cfg.Output.JSON)
	}

	return nil
}
