package ai

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
)

// HighMatchThreshold is the score from which a posting counts as a high match
// in run statistics.
const HighMatchThreshold = 80

// Matches collects scored postings in the order they were produced.
type Matches []ScoredPosting

func (m Matches) Len() int {
	return len(m)
}

// SortByScore returns a copy ordered by score descending. Postings with equal
// scores keep their arrival order.
func (m Matches) SortByScore() Matches {
	sorted := append(Matches(nil), m...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	return sorted
}

// Top returns the n highest scored postings.
func (m Matches) Top(n int) Matches {
	sorted := m.SortByScore()
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}

	return sorted[:n]
}

// Stats summarizes a finished run.
type Stats struct {
	Total        int
	AverageScore float64
	HighMatches  int
}

func (m Matches) Stats() Stats {
	stats := Stats{Total: len(m)}
	if len(m) == 0 {
		return stats
	}

	var sum int
	for _, match := range m {
		sum += match.Score
		if match.Score >= HighMatchThreshold {
			stats.HighMatches++
		}
	}
	stats.AverageScore = float64(sum) / float64(len(m))

	return stats
}

// ReportByCompany groups matches by company for the interactive report view.
func (m Matches) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, match := range m {
		report[match.Company] = append(report[match.Company], map[string]string{
			"title":     match.Title,
			"location":  match.Location,
			"score":     strconv.Itoa(match.Score),
			"reasoning": match.Reasoning,
			"url":       match.URL,
		})
	}

	return report
}

// DumpToTmpFile writes the matches as indented JSON to a temporary file and
// returns its path.
func (m Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}

	return file.Name(), nil
}
