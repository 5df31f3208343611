// Package score detects brand mentions in free-text model output and
// assigns a 1-indexed position among the entities the model named.
//
// Segmentation is heuristic, not a guarantee: model phrasing is
// unstructured, so entity boundaries come from list markers when the
// response is list-shaped and from capitalization/domain patterns when
// it is prose.
package score

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
)

// listItemRe strips numbered and bulleted list markers from a line
var listItemRe = regexp.MustCompile(`^\s*(?:\d+[.)]\s+|[-*•]\s+)`)

// entityRe finds candidate entity mentions in prose: bare domains
// ("example.com") and capitalized tokens ("Acme", "Example.com").
var entityRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9&'-]*(?:\.[A-Za-z]{2,})+|[A-Z][A-Za-z0-9&'-]*`)

// proseStopwords are capitalized words that start sentences or clauses
// but never name a brand. Without this filter every sentence opener
// would count as an entity and inflate ranks.
var proseStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"first": true, "second": true, "third": true, "next": true, "then": true,
	"finally": true, "also": true, "however": true, "additionally": true,
	"here": true, "there": true, "these": true, "those": true, "this": true,
	"that": true, "some": true, "many": true, "other": true, "others": true,
	"it": true, "its": true, "they": true, "their": true, "in": true,
	"for": true, "with": true, "based": true, "overall": true, "note": true,
	"if": true, "when": true, "while": true, "among": true, "several": true,
	"top": true, "best": true, "leading": true, "popular": true,
}

// Scorer scans responses for the target identifier
type Scorer struct {
	caseSensitive bool
	contextChars  int
}

// NewScorer creates a scorer with the given matching configuration
func NewScorer(cfg model.ScoringConfig) *Scorer {
	contextChars := cfg.ContextChars
	if contextChars <= 0 {
		contextChars = 160
	}
	return &Scorer{
		caseSensitive: cfg.CaseSensitive,
		contextChars:  contextChars,
	}
}

// Score locates the target's first occurrence in the response and ranks it
// among the distinct entities mentioned. An empty or unmatchable response
// is a valid "not mentioned" outcome, never an error.
func (s *Scorer) Score(resp *model.Response, target string) model.PositionResult {
	result := model.PositionResult{
		Query:       resp.Query,
		RawResponse: resp.Text,
		Status:      model.StatusScored,
		Timestamp:   time.Now().UTC(),
	}

	text := strings.TrimSpace(resp.Text)
	matcher := s.compileMatcher(target)
	if text == "" || matcher == nil {
		return result
	}

	mention, total := s.locate(text, matcher)
	result.TotalEntities = total
	if mention != nil {
		result.Found = true
		rank := mention.Rank
		result.Position = &rank
		result.Context = mention.Context
	}

	return result
}

// compileMatcher builds the target regexp. The target matches
// case-insensitively (unless configured otherwise) and by partial domain:
// "example.com" also matches "example" and "www.example.com" matches the
// bare domain.
func (s *Scorer) compileMatcher(target string) *regexp.Regexp {
	target = normalizeTarget(target)
	if target == "" {
		return nil
	}

	alts := []string{regexp.QuoteMeta(target)}
	if base := baseLabel(target); base != "" && base != target {
		alts = append(alts, regexp.QuoteMeta(base))
	}

	pattern := `\b(?:` + strings.Join(alts, "|") + `)\b`
	if !s.caseSensitive {
		pattern = `(?i)` + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

// normalizeTarget strips scheme, www prefix, and trailing slashes so a
// pasted URL and a bare brand name behave the same
func normalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	for _, prefix := range []string{"https://", "http://"} {
		target = strings.TrimPrefix(target, prefix)
	}
	target = strings.TrimPrefix(target, "www.")
	if i := strings.IndexByte(target, '/'); i >= 0 {
		target = target[:i]
	}
	return target
}

// baseLabel returns the leftmost domain label ("example" for
// "example.com"), or "" when the target has no dot
func baseLabel(target string) string {
	i := strings.IndexByte(target, '.')
	if i <= 0 {
		return ""
	}
	return target[:i]
}

// locate finds the target's first occurrence and its rank among distinct
// entities. Returns nil when the target does not appear.
func (s *Scorer) locate(text string, matcher *regexp.Regexp) (*model.Mention, int) {
	if items := splitListItems(text); len(items) >= 2 {
		return s.locateInList(text, items, matcher)
	}
	return s.locateInProse(text, matcher)
}

type listItem struct {
	text   string
	offset int // Offset of the item's content in the full response
}

// splitListItems segments a list-shaped response into one entry per line,
// stripping numbering and bullet markers
func splitListItems(text string) []listItem {
	var items []listItem
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		content := listItemRe.ReplaceAllString(line, "")
		content = strings.TrimSpace(content)
		if content != "" {
			items = append(items, listItem{
				text:   content,
				offset: offset + strings.Index(line, content),
			})
		}
		offset += len(line) + 1
	}
	return items
}

// locateInList ranks the target by the first list entry containing it.
// Later repeats never change the recorded position.
func (s *Scorer) locateInList(text string, items []listItem, matcher *regexp.Regexp) (*model.Mention, int) {
	for i, item := range items {
		loc := matcher.FindStringIndex(item.text)
		if loc == nil {
			continue
		}
		return &model.Mention{
			Offset:  item.offset + loc[0],
			Rank:    i + 1,
			Context: truncate(item.text, s.contextChars),
		}, len(items)
	}
	return nil, len(items)
}

// locateInProse ranks the target among distinct capitalized/domain
// entities in running text, ordered by first occurrence
func (s *Scorer) locateInProse(text string, matcher *regexp.Regexp) (*model.Mention, int) {
	targetLoc := matcher.FindStringIndex(text)

	type entity struct {
		offset int
	}
	var order []entity
	seen := make(map[string]int) // normalized entity -> index in order

	targetRank := 0
	for _, loc := range entityRe.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		norm := strings.ToLower(word)
		if proseStopwords[norm] {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = len(order)
		order = append(order, entity{offset: loc[0]})

		if targetRank == 0 && matcher.MatchString(word) {
			targetRank = len(order)
		}
	}

	if targetLoc == nil {
		return nil, len(order)
	}

	total := len(order)
	if targetRank == 0 {
		// The target matched the raw text but was not tokenized as an
		// entity (e.g., a lowercase brand word). Rank it by how many
		// distinct entities appear before its first occurrence.
		targetRank = 1 + sort.Search(len(order), func(i int) bool {
			return order[i].offset >= targetLoc[0]
		})
		total++
	}

	return &model.Mention{
		Offset:  targetLoc[0],
		Rank:    targetRank,
		Context: contextWindow(text, targetLoc[0], s.contextChars),
	}, total
}

// contextWindow extracts a snippet of text centered on the match offset.
// Edges back off to rune boundaries so multi-byte characters are never
// split.
func contextWindow(text string, offset, width int) string {
	start := offset - width/2
	if start < 0 {
		start = 0
	}
	end := start + width
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}
	return strings.TrimSpace(text[start:end])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
