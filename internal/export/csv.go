package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/unimarks/internal/marks"
)

// ToCSV writes a semester's view rows with the same columns the table
// shows, so a spreadsheet import lines up with the screen.
func ToCSV(rows []marks.Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := []string{
		"Subject Code", "Subject Name", "Assessment", "Unweighted Mark",
		"Weighted Mark", "Mark Weight", "Total Mark", "Synced",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		synced := ""
		if r.Synced {
			synced = "yes"
		}
		record := []string{
			r.SubjectCode,
			r.SubjectName,
			r.Assessment,
			r.UnweightedMark,
			r.WeightedMark,
			r.MarkWeight,
			r.TotalMark,
			synced,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
