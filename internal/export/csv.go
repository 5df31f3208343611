package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
)

// CSV renders the result set as CSV bytes with the same columns as the
// XLSX Results sheet
func CSV(rs *model.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(resultHeaders); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, r := range rs.Results {
		position := ""
		if r.Position != nil {
			position = strconv.Itoa(*r.Position)
		}
		record := []string{
			r.Query.SearchQuery,
			r.Query.Prompt,
			strconv.FormatBool(r.Found),
			position,
			strconv.Itoa(r.TotalEntities),
			r.Context,
			string(r.Status),
			r.Err,
			r.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV renders the result set and writes it to path
func WriteCSV(path string, rs *model.ResultSet) error {
	data, err := CSV(rs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}
