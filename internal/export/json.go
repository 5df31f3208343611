package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
)

// jsonReport is the audit export: full result rows plus the summary
type jsonReport struct {
	Target  string                 `json:"target"`
	Model   string                 `json:"model"`
	Summary model.Summary          `json:"summary"`
	Results []model.PositionResult `json:"results"`
}

// JSON renders the result set with its summary as indented JSON
func JSON(rs *model.ResultSet, summary model.Summary) ([]byte, error) {
	report := jsonReport{
		Target:  rs.Target,
		Model:   rs.Model,
		Summary: summary,
		Results: rs.Results,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// WriteJSON renders the report and writes it to path
func WriteJSON(path string, rs *model.ResultSet, summary model.Summary) error {
	data, err := JSON(rs, summary)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
