package tracker

import (
	"fmt"
	"io"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// RenderResults prints the per-query rows to w
func RenderResults(w io.Writer, rs *model.ResultSet) {
	for _, r := range rs.Results {
		switch {
		case r.Status == model.StatusFailed:
			fmt.Fprintf(w, "✗ [failed] %s: %s\n", r.Query.Prompt, r.Err)
		case r.Found:
			fmt.Fprintf(w, "✓ #%d of %d — %s\n", *r.Position, r.TotalEntities, r.Query.Prompt)
		default:
			fmt.Fprintf(w, "– not mentioned (%d entities) — %s\n", r.TotalEntities, r.Query.Prompt)
		}
	}
}

// RenderSummary prints the aggregate statistics block to w
func RenderSummary(w io.Writer, rs *model.ResultSet, summary model.Summary) {
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "  Visibility Report\n")
	fmt.Fprintf(w, "%s\n\n", rule)
	fmt.Fprintf(w, "  Target:            %s\n", rs.Target)
	fmt.Fprintf(w, "  Model:             %s\n", rs.Model)
	fmt.Fprintf(w, "  Queries:           %d (%d scored, %d failed)\n", summary.TotalQueries, summary.Scored, summary.Failed)
	fmt.Fprintf(w, "  Mentioned:         %d of %d (%.0f%%)\n", summary.Mentioned, summary.Scored, summary.MentionRate*100)

	if summary.AveragePosition != nil {
		fmt.Fprintf(w, "  Average position:  %.2f\n", *summary.AveragePosition)
	}
	if summary.MedianPosition != nil {
		fmt.Fprintf(w, "  Median position:   %.1f\n", *summary.MedianPosition)
	}
	if summary.BestPosition != nil {
		fmt.Fprintf(w, "  Best position:     %d\n", *summary.BestPosition)
	}
	if summary.WorstPosition != nil {
		fmt.Fprintf(w, "  Worst position:    %d\n", *summary.WorstPosition)
	}

	fmt.Fprintf(w, "\n")
}
