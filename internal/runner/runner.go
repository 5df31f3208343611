// Package runner submits queries to the model API through the shared rate
// limiter, with partial-failure batch semantics: one bad query never loses
// the rest.
package runner

import (
	"context"
	"encoding/json"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/cache"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/llm"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/worker"
)

// Runner executes queries against the model API. Every network call first
// acquires the shared limiter; cache hits bypass it since nothing leaves
// the process.
type Runner struct {
	client    llm.Client
	limiter   *worker.Limiter
	responses cache.Cache // nil disables caching
}

// NewRunner creates a runner. responseCache may be nil.
func NewRunner(client llm.Client, limiter *worker.Limiter, responseCache cache.Cache) *Runner {
	return &Runner{
		client:    client,
		limiter:   limiter,
		responses: responseCache,
	}
}

// Run submits a single query and returns its response
func (r *Runner) Run(ctx context.Context, query model.Query) (*model.Response, error) {
	key := cache.ResponseKey(query.Model, query.Prompt)

	if r.responses != nil {
		if data, found := r.responses.Get(key); found {
			var resp model.Response
			if err := json.Unmarshal(data, &resp); err == nil {
				resp.Query = query
				resp.Cached = true
				return &resp, nil
			}
			_ = r.responses.Delete(key)
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.client.Complete(ctx, query)
	if err != nil {
		return nil, err
	}

	if r.responses != nil {
		if data, err := json.Marshal(resp); err == nil {
			_ = r.responses.Set(key, data, 0)
		}
	}

	return resp, nil
}

// BatchItem is the per-query outcome of a batch run. Exactly one of
// Response and Err is set.
type BatchItem struct {
	Query    model.Query
	Response *model.Response
	Err      error
}

// queryJob adapts one query to the worker pool
type queryJob struct {
	ctx        context.Context
	runner     *Runner
	query      model.Query
	onComplete func(BatchItem)
}

type queryResult struct {
	item BatchItem
}

func (j *queryJob) Execute(poolCtx context.Context) worker.Result {
	item := BatchItem{Query: j.query}

	select {
	case <-j.ctx.Done():
		item.Err = j.ctx.Err()
	case <-poolCtx.Done():
		item.Err = poolCtx.Err()
	default:
		item.Response, item.Err = j.runner.Run(j.ctx, j.query)
	}

	if j.onComplete != nil {
		j.onComplete(item)
	}
	return &queryResult{item: item}
}

func (j *queryJob) JobIndex() int { return j.query.Index }

func (r *queryResult) GetError() error  { return r.item.Err }
func (r *queryResult) ResultIndex() int { return r.item.Query.Index }

// RunBatch processes queries with bounded concurrency. The returned slice
// is in submission order regardless of completion order. onComplete, when
// non-nil, is invoked as each query finishes (completion order) for
// progress display.
func (r *Runner) RunBatch(ctx context.Context, queries []model.Query, workers int, onComplete func(BatchItem)) []BatchItem {
	if len(queries) == 0 {
		return nil
	}

	pool := worker.NewPool(workers)
	pool.Start()

	// Cancellation between submissions: a job picked up after the context
	// is done fails immediately with ctx.Err() instead of calling out, while
	// queries already in flight run to completion.
	for _, q := range queries {
		pool.Submit(&queryJob{ctx: ctx, runner: r, query: q, onComplete: onComplete})
	}

	results := pool.Wait()

	items := make([]BatchItem, 0, len(results))
	for _, res := range results {
		items = append(items, res.(*queryResult).item)
	}
	return items
}
