package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"jobsift/internal/ai"
)

// timeLayout keeps exported dates spreadsheet friendly.
const timeLayout = "2006-01-02 15:04:05"

var header = []string{"title", "company", "location", "posted_date", "match_score", "match_reasoning"}

// DefaultFilename returns a date-stamped file name for an export started at
// the given time.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("job_matches_%s.csv", now.Format("20060102"))
}

// Write writes the matches to w in the order they are given, header row
// first.
func Write(w io.Writer, matches ai.Matches) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	for _, match := range matches {
		row := []string{
			match.Title,
			match.Company,
			match.Location,
			match.PostedAt.Format(timeLayout),
			strconv.Itoa(match.Score),
			match.Reasoning,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}

	return nil
}

// WriteFile writes the matches to a CSV file at path, truncating any
// existing file.
func WriteFile(path string, matches ai.Matches) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file %q: %w", path, err)
	}
	defer file.Close()

	return Write(file, matches)
}
