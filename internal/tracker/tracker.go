// Package tracker orchestrates the visibility pipeline: prompt expansion,
// rate-limited batch querying, mention scoring, and aggregation.
package tracker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/aggregate"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/cache"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/llm"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/prompt"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/runner"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/score"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/worker"
)

// Tracker runs visibility checks end to end
type Tracker struct {
	runner *runner.Runner
	scorer *score.Scorer
	config *model.Config
}

// New creates a tracker from validated configuration. Configuration errors
// are the only fatal errors; they surface here, before any query is sent.
func New(cfg *model.Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := llm.NewOpenAIClient(cfg.OpenAI)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	return NewWithClient(cfg, client), nil
}

// NewWithClient wires a tracker around an existing client. Used by New and
// by tests that substitute a fake client.
func NewWithClient(cfg *model.Config, client llm.Client) *Tracker {
	limiter := worker.NewLimiter(
		cfg.RateLimit.MaxCalls,
		cfg.RateLimit.Window,
		cfg.RateLimit.Burst,
		cfg.RateLimit.Ceiling,
	)

	var responses cache.Cache
	if cfg.Cache.Enabled {
		responses = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cacheDir(cfg), cfg.Cache.DiskTTL)
	}

	return &Tracker{
		runner: runner.NewRunner(client, limiter, responses),
		scorer: score.NewScorer(cfg.Scoring),
		config: cfg,
	}
}

func cacheDir(cfg *model.Config) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "visibility-tracker")
}

// BuildQueries expands search queries into the full prompt set, assigning
// stable submission indices
func (t *Tracker) BuildQueries(target string, searchQueries []string) []model.Query {
	var queries []model.Query
	for _, sq := range searchQueries {
		for _, p := range prompt.Expand(sq) {
			queries = append(queries, model.Query{
				Index:       len(queries),
				Prompt:      p,
				SearchQuery: sq,
				Target:      target,
				Model:       t.config.OpenAI.Model,
			})
		}
	}
	return queries
}

// Progress is invoked as each query completes (completion order, which may
// differ from submission order under concurrency)
type Progress func(done, total int, item runner.BatchItem)

// Track runs the full pipeline for one target across the given search
// queries. The returned result set is in submission order; per-query API
// failures appear as failed rows rather than aborting the batch.
func (t *Tracker) Track(ctx context.Context, target string, searchQueries []string, onProgress Progress) (*model.ResultSet, model.Summary, error) {
	queries := t.BuildQueries(target, searchQueries)
	if len(queries) == 0 {
		return nil, model.Summary{}, fmt.Errorf("no queries to run")
	}

	var done atomic.Int64
	var onComplete func(runner.BatchItem)
	if onProgress != nil {
		onComplete = func(item runner.BatchItem) {
			onProgress(int(done.Add(1)), len(queries), item)
		}
	}

	items := t.runner.RunBatch(ctx, queries, t.config.Concurrency.Workers, onComplete)

	agg := aggregate.NewAggregator(target, t.config.OpenAI.Model)
	for _, item := range items {
		agg.Add(t.scoreItem(item, target))
	}

	return agg.ResultSet(), agg.Summary(), nil
}

func (t *Tracker) scoreItem(item runner.BatchItem, target string) model.PositionResult {
	if item.Err != nil {
		return model.PositionResult{
			Query:     item.Query,
			Status:    model.StatusFailed,
			Err:       item.Err.Error(),
			Timestamp: nowUTC(),
		}
	}
	return t.scorer.Score(item.Response, target)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
