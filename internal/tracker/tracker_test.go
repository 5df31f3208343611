package tracker

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/export"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/llm"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/prompt"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/runner"
)

// stubClient returns canned answers and can fail selected queries
type stubClient struct {
	answer   func(q model.Query) string
	failWhen func(q model.Query) error
}

func (c *stubClient) IsAvailable(ctx context.Context) bool { return true }

func (c *stubClient) Complete(ctx context.Context, q model.Query) (*model.Response, error) {
	if c.failWhen != nil {
		if err := c.failWhen(q); err != nil {
			return nil, err
		}
	}
	return &model.Response{
		Query:      q,
		Text:       c.answer(q),
		Model:      q.Model,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

func testTrackerConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.OpenAI.APIKey = "test-key"
	cfg.RateLimit.MaxCalls = 10000
	cfg.RateLimit.Burst = 100
	cfg.Cache.Enabled = false
	cfg.Concurrency.Workers = 3
	return cfg
}

func TestTracker_New_ValidatesConfig(t *testing.T) {
	cfg := model.DefaultConfig() // No API key
	if _, err := New(cfg); err == nil {
		t.Fatal("expected config validation error before any query is sent")
	}

	cfg = testTrackerConfig()
	cfg.OpenAI.Model = "not-a-model"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected unknown model to be rejected")
	}
}

func TestTracker_BuildQueries(t *testing.T) {
	tr := NewWithClient(testTrackerConfig(), &stubClient{answer: func(model.Query) string { return "" }})

	queries := tr.BuildQueries("example.com", []string{"crm software", "email tools"})

	want := 2 * prompt.Count()
	if len(queries) != want {
		t.Fatalf("expected %d queries, got %d", want, len(queries))
	}
	for i, q := range queries {
		if q.Index != i {
			t.Errorf("query %d has index %d", i, q.Index)
		}
		if q.Target != "example.com" {
			t.Errorf("query %d missing target", i)
		}
	}
}

func TestTracker_Track_EndToEnd(t *testing.T) {
	client := &stubClient{
		answer: func(q model.Query) string {
			return "1. Acme\n2. Example.com\n3. Widgetco"
		},
	}
	tr := NewWithClient(testTrackerConfig(), client)

	rs, summary, err := tr.Track(context.Background(), "example.com", []string{"crm software"}, nil)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	if len(rs.Results) != prompt.Count() {
		t.Fatalf("expected %d results, got %d", prompt.Count(), len(rs.Results))
	}
	for i, r := range rs.Results {
		if r.Query.Index != i {
			t.Errorf("result %d out of submission order", i)
		}
		if !r.Found || *r.Position != 2 {
			t.Errorf("result %d: expected position 2, got %+v", i, r.Position)
		}
	}

	if summary.MentionRate != 1.0 {
		t.Errorf("expected mention rate 1.0, got %f", summary.MentionRate)
	}
	if summary.AveragePosition == nil || *summary.AveragePosition != 2.0 {
		t.Errorf("expected average position 2.0, got %v", summary.AveragePosition)
	}
}

func TestTracker_Track_PartialFailureAndExport(t *testing.T) {
	// One auth failure in the batch: the result set still has every row
	// and export succeeds with the failed row marked
	client := &stubClient{
		answer: func(q model.Query) string {
			return "1. Example.com\n2. Acme"
		},
		failWhen: func(q model.Query) error {
			if q.Index == 1 {
				return &llm.APIError{Kind: llm.KindAuth, StatusCode: 401, Err: fmt.Errorf("bad key")}
			}
			return nil
		},
	}
	tr := NewWithClient(testTrackerConfig(), client)

	rs, summary, err := tr.Track(context.Background(), "example.com", []string{"crm software"}, nil)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	if len(rs.Results) != prompt.Count() {
		t.Fatalf("expected %d rows, got %d", prompt.Count(), len(rs.Results))
	}
	if summary.Failed != 1 || summary.Scored != prompt.Count()-1 {
		t.Errorf("expected 1 failed / %d scored, got %d/%d", prompt.Count()-1, summary.Failed, summary.Scored)
	}
	if rs.Results[1].Status != model.StatusFailed {
		t.Errorf("expected row 1 to be failed, got %s", rs.Results[1].Status)
	}
	if rs.Results[1].Err == "" {
		t.Error("expected failure marker on row 1")
	}

	// Export must succeed despite the failed row
	if _, err := export.XLSX(rs, summary); err != nil {
		t.Errorf("XLSX export failed on partially failed set: %v", err)
	}
	if _, err := export.CSV(rs); err != nil {
		t.Errorf("CSV export failed on partially failed set: %v", err)
	}
}

func TestTracker_Track_ProgressStreaming(t *testing.T) {
	client := &stubClient{answer: func(model.Query) string { return "1. Acme" }}
	tr := NewWithClient(testTrackerConfig(), client)

	var callbacks atomic.Int32
	_, _, err := tr.Track(context.Background(), "example.com", []string{"crm software"}, func(done, total int, item runner.BatchItem) {
		callbacks.Add(1)
	})
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	if int(callbacks.Load()) != prompt.Count() {
		t.Errorf("expected %d progress callbacks, got %d", prompt.Count(), callbacks.Load())
	}
}

func TestRenderSummary(t *testing.T) {
	pos := 2
	avg := 2.0
	rs := &model.ResultSet{
		Target: "example.com",
		Model:  "gpt-4o-mini",
		Results: []model.PositionResult{
			{Query: model.Query{Prompt: "p"}, Found: true, Position: &pos, TotalEntities: 3, Status: model.StatusScored},
		},
	}
	summary := model.Summary{TotalQueries: 1, Scored: 1, Mentioned: 1, MentionRate: 1, AveragePosition: &avg}

	var buf bytes.Buffer
	RenderResults(&buf, rs)
	RenderSummary(&buf, rs, summary)

	out := buf.String()
	for _, want := range []string{"example.com", "Average position", "#2 of 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\noutput:\n%s", want, out)
		}
	}
}
