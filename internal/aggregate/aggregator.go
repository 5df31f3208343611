// Package aggregate accumulates per-query position results and computes
// session statistics.
package aggregate

import (
	"sort"
	"sync"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
)

// Aggregator collects position results in call order. It is safe for
// concurrent use, though the batch runner already serializes Add calls
// in submission order.
type Aggregator struct {
	mu      sync.Mutex
	target  string
	model   string
	results []model.PositionResult
}

// NewAggregator creates an aggregator for one tracking session
func NewAggregator(target, chatModel string) *Aggregator {
	return &Aggregator{
		target: target,
		model:  chatModel,
	}
}

// Add appends a result. Insertion order is preserved in the result set.
func (a *Aggregator) Add(result model.PositionResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, result)
}

// ResultSet returns the accumulated results in insertion order
func (a *Aggregator) ResultSet() *model.ResultSet {
	a.mu.Lock()
	defer a.mu.Unlock()

	results := make([]model.PositionResult, len(a.results))
	copy(results, a.results)

	return &model.ResultSet{
		Target:  a.target,
		Model:   a.model,
		Results: results,
	}
}

// Summary computes aggregate statistics. Failed rows count toward
// TotalQueries but are excluded from the mention-rate denominator and all
// position statistics; position statistics are nil when nothing was
// mentioned, so an empty or all-failed session never divides by zero.
func (a *Aggregator) Summary() model.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	summary := model.Summary{TotalQueries: len(a.results)}

	var positions []int
	for _, r := range a.results {
		if r.Status == model.StatusFailed {
			summary.Failed++
			continue
		}
		summary.Scored++
		if r.Found && r.Position != nil {
			summary.Mentioned++
			positions = append(positions, *r.Position)
		}
	}

	if summary.Scored > 0 {
		summary.MentionRate = float64(summary.Mentioned) / float64(summary.Scored)
	}

	if len(positions) == 0 {
		return summary
	}

	sort.Ints(positions)

	sum := 0
	for _, p := range positions {
		sum += p
	}
	avg := float64(sum) / float64(len(positions))
	summary.AveragePosition = &avg

	median := medianOf(positions)
	summary.MedianPosition = &median

	best := positions[0]
	worst := positions[len(positions)-1]
	summary.BestPosition = &best
	summary.WorstPosition = &worst

	return summary
}

// medianOf expects a sorted slice
func medianOf(sorted []int) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
