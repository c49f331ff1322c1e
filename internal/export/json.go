package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/unimarks/internal/marks"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Year       string    `json:"year"`
	Semester   string    `json:"semester"`
	Count      int       `json:"count"`
	Rows       []jsonRow `json:"rows"`
}

type jsonRow struct {
	SubjectCode  string `json:"subject_code"`
	SubjectName  string `json:"subject_name,omitempty"`
	Assessment   string `json:"assessment"`
	WeightedMark string `json:"weighted_mark,omitempty"`
	MarkWeight   string `json:"mark_weight,omitempty"`
	TotalMark    string `json:"total_mark,omitempty"`
	Synced       bool   `json:"synced,omitempty"`
}

// ToJSON writes a semester's view rows with export metadata. This is a
// reporting format, distinct from the year documents the marks package
// persists.
func ToJSON(year, semester string, rows []marks.Row, path string) error {
	doc := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Year:       year,
		Semester:   semester,
		Count:      len(rows),
	}

	for _, r := range rows {
		doc.Rows = append(doc.Rows, jsonRow{
			SubjectCode:  r.SubjectCode,
			SubjectName:  r.SubjectName,
			Assessment:   r.Assessment,
			WeightedMark: r.WeightedMark,
			MarkWeight:   r.MarkWeight,
			TotalMark:    r.TotalMark,
			Synced:       r.Synced,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
