package score

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
)

func newTestScorer() *Scorer {
	return NewScorer(model.ScoringConfig{})
}

func response(text string) *model.Response {
	return &model.Response{
		Query: model.Query{Prompt: "List top 10 companies/websites for crm"},
		Text:  text,
	}
}

func TestScorer_NumberedList(t *testing.T) {
	scorer := newTestScorer()

	text := "1. Salesforce - the market leader\n" +
		"2. HubSpot - great free tier\n" +
		"3. Example.com - solid mid-market option\n" +
		"4. Zoho CRM - budget friendly"

	result := scorer.Score(response(text), "example.com")

	if !result.Found {
		t.Fatal("expected mention to be found")
	}
	if result.Position == nil || *result.Position != 3 {
		t.Errorf("expected position 3, got %v", result.Position)
	}
	if result.TotalEntities != 4 {
		t.Errorf("expected 4 entities, got %d", result.TotalEntities)
	}
	if result.Status != model.StatusScored {
		t.Errorf("expected scored status, got %s", result.Status)
	}
}

func TestScorer_BulletedList(t *testing.T) {
	scorer := newTestScorer()

	text := "- Acme Corp\n* Example.com\n• Widgetco"

	result := scorer.Score(response(text), "example.com")

	if !result.Found {
		t.Fatal("expected mention to be found")
	}
	if *result.Position != 2 {
		t.Errorf("expected position 2, got %d", *result.Position)
	}
}

func TestScorer_ProseRanking(t *testing.T) {
	// Scenario from the original tool's behavior: rank among distinct
	// entities in running text, sentence openers ignored
	scorer := newTestScorer()

	text := "First, Acme leads, then Example.com is mentioned, followed by Widgetco."

	result := scorer.Score(response(text), "example.com")

	if !result.Found {
		t.Fatal("expected mention to be found")
	}
	if result.Position == nil || *result.Position != 2 {
		t.Errorf("expected position 2, got %v", result.Position)
	}
	if result.TotalEntities != 3 {
		t.Errorf("expected 3 entities (Acme, Example.com, Widgetco), got %d", result.TotalEntities)
	}
}

func TestScorer_NotFound(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(response("1. Salesforce\n2. HubSpot\n3. Zoho"), "example.com")

	if result.Found {
		t.Error("expected mention not found")
	}
	if result.Position != nil {
		t.Errorf("expected nil position, got %d", *result.Position)
	}
	if result.TotalEntities != 3 {
		t.Errorf("expected 3 entities, got %d", result.TotalEntities)
	}
}

func TestScorer_EmptyResponse(t *testing.T) {
	scorer := newTestScorer()

	for _, text := range []string{"", "   \n\t  "} {
		result := scorer.Score(response(text), "example.com")
		if result.Found {
			t.Errorf("expected not found for %q", text)
		}
		if result.Position != nil {
			t.Errorf("expected nil position for %q", text)
		}
		if result.Status != model.StatusScored {
			t.Errorf("empty response must score as not-mentioned, got status %s", result.Status)
		}
	}
}

func TestScorer_PartialDomainMatching(t *testing.T) {
	scorer := newTestScorer()

	tests := []struct {
		name   string
		target string
		text   string
		found  bool
		pos    int
	}{
		{
			name:   "base label matches full domain target",
			target: "example.com",
			text:   "1. Acme\n2. Example is a popular choice",
			found:  true,
			pos:    2,
		},
		{
			name:   "www form matches domain target",
			target: "example.com",
			text:   "1. www.example.com\n2. Acme",
			found:  true,
			pos:    1,
		},
		{
			name:   "pasted URL target matches bare name",
			target: "https://www.example.com/pricing",
			text:   "1. Acme\n2. Widgetco\n3. Example.com",
			found:  true,
			pos:    3,
		},
		{
			name:   "base label does not match inside longer word",
			target: "example.com",
			text:   "1. Exampleton\n2. Acme",
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Score(response(tt.text), tt.target)
			if result.Found != tt.found {
				t.Fatalf("found = %v, want %v", result.Found, tt.found)
			}
			if tt.found && *result.Position != tt.pos {
				t.Errorf("position = %d, want %d", *result.Position, tt.pos)
			}
		})
	}
}

func TestScorer_CaseInsensitiveByDefault(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(response("1. Acme\n2. EXAMPLE.COM"), "example.com")
	if !result.Found {
		t.Fatal("expected case-insensitive match")
	}
	if *result.Position != 2 {
		t.Errorf("expected position 2, got %d", *result.Position)
	}
}

func TestScorer_CaseSensitiveConfigured(t *testing.T) {
	scorer := NewScorer(model.ScoringConfig{CaseSensitive: true})

	result := scorer.Score(response("1. Acme\n2. EXAMPLE.COM"), "example.com")
	if result.Found {
		t.Error("expected no match with case-sensitive scoring")
	}
}

func TestScorer_RepeatedMentionsUseFirst(t *testing.T) {
	scorer := newTestScorer()

	text := "1. Acme\n2. Example.com\n3. Widgetco\n4. Example.com again"

	result := scorer.Score(response(text), "example.com")

	if *result.Position != 2 {
		t.Errorf("repeats must not move the position: expected 2, got %d", *result.Position)
	}
}

func TestScorer_MentionOffset(t *testing.T) {
	scorer := newTestScorer()

	text := "Acme and Example.com compete in this space with Widgetco."
	result := scorer.Score(response(text), "example.com")

	if !result.Found {
		t.Fatal("expected mention to be found")
	}
	if result.Context == "" {
		t.Error("expected context to be captured")
	}
}

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"https://example.com", "example.com"},
		{"http://www.example.com/path", "example.com"},
		{"  Example.Com  ", "Example.Com"},
		{"acme", "acme"},
	}

	for _, tt := range tests {
		if got := normalizeTarget(tt.in); got != tt.want {
			t.Errorf("normalizeTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitListItems(t *testing.T) {
	text := "Here are the top options:\n1. Acme\n2) Widgetco\n- Example.com\n\n3. Zoho"
	items := splitListItems(text)

	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	if items[1].text != "Acme" {
		t.Errorf("expected marker stripped, got %q", items[1].text)
	}
	if items[2].text != "Widgetco" {
		t.Errorf("expected paren marker stripped, got %q", items[2].text)
	}
}

func TestContextWindow_RuneBoundaries(t *testing.T) {
	// Model output is routinely non-ASCII; snippet edges must never cut a
	// multi-byte character in half.
	text := strings.Repeat("é", 40) + "Example.com" + strings.Repeat("日", 40)
	offset := strings.Index(text, "Example.com")

	for width := 1; width <= 40; width++ {
		snippet := contextWindow(text, offset, width)
		if !utf8.ValidString(snippet) {
			t.Fatalf("width %d produced invalid UTF-8: %q", width, snippet)
		}
	}
}

func TestTruncate_RuneBoundaries(t *testing.T) {
	s := "résumé 日本語"
	for n := 0; n <= len(s); n++ {
		out := truncate(s, n)
		if !utf8.ValidString(out) {
			t.Fatalf("truncate to %d produced invalid UTF-8: %q", n, out)
		}
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("expected short string unmodified, got %q", got)
	}
}
