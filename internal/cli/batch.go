package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var batchTimeout time.Duration

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check brand visibility for search queries read from a file",
	Long: `Batch reads search queries from a file (one per line, # starts a
comment) and processes all of them through one rate-limited session.

All queries share the same rate limiter, so concurrency never exceeds the
provider quota.

Example:
  visibility-tracker batch queries.txt --brand example.com
  visibility-tracker batch queries.txt --brand example.com --workers 4 --xlsx report.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&brand, "brand", "b", "", "brand or website to track (required)")
	batchCmd.Flags().StringVar(&chatModel, "model", "", "chat model (gpt-3.5-turbo, gpt-4, gpt-4o, gpt-4o-mini)")
	batchCmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key (defaults to OPENAI_API_KEY)")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent workers (default from config)")
	batchCmd.Flags().IntVar(&maxCalls, "max-calls", 0, "rate limit: calls per window")
	batchCmd.Flags().DurationVar(&window, "window", 0, "rate limit window")
	batchCmd.Flags().IntVar(&ceiling, "ceiling", 0, "hard cap on total API calls (0 = no cap)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	batchCmd.Flags().StringVar(&outXLSX, "xlsx", "", "write results to an XLSX file")
	batchCmd.Flags().StringVar(&outCSV, "csv", "", "write results to a CSV file")
	batchCmd.Flags().StringVar(&outJSON, "json", "", "write results to a JSON file")

	_ = batchCmd.MarkFlagRequired("brand")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := buildTrackConfig()
	if err != nil {
		return err
	}

	searchQueries, err := readQueriesFile(file)
	if err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	if len(searchQueries) == 0 {
		return fmt.Errorf("no search queries found in %s", file)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Visibility Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Queries:      %d\n", len(searchQueries))
	fmt.Fprintf(os.Stderr, "  Brand:        %s\n", brand)
	fmt.Fprintf(os.Stderr, "  Model:        %s\n", cfg.OpenAI.Model)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Rate limit:   %d calls / %v\n", cfg.RateLimit.MaxCalls, cfg.RateLimit.Window)
	fmt.Fprintf(os.Stderr, "\n")

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	return runQueries(ctx, cfg, brand, searchQueries)
}

// readQueriesFile reads search queries from a file (one per line),
// skipping blanks and comments and dropping duplicates
func readQueriesFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
