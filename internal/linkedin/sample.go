package linkedin

import (
	"fmt"
	"math/rand"
	"time"
)

var sampleCompanies = []string{
	"Tech Corp Inc",
	"Digital Solutions Ltd",
	"Innovation Systems",
	"Future Technologies",
	"Global Tech Partners",
}

var sampleDescriptions = []string{
	"We are seeking an experienced %s to join our team. The ideal candidate will have 5+ years of experience in product development, strong leadership skills, and a track record of successful product launches.",
	"Join our growing team as a %s. You will be responsible for driving innovation, leading cross-functional teams, and delivering high-impact solutions.",
	"Exciting opportunity for a seasoned %s to make a significant impact. You will lead strategic initiatives, mentor team members, and shape the future of our products.",
	"We're looking for a talented %s to help scale our operations. The ideal candidate brings deep expertise, creative problem-solving skills, and a passion for excellence.",
	"Outstanding opportunity for a %s to join our dynamic team. You will drive key projects, collaborate with stakeholders, and contribute to our company's growth.",
}

// SamplePostings builds the fixed fallback set used when a search run cannot
// produce a single real posting. Each title carries a distinct seniority
// prefix around the searched role.
func SamplePostings(role, location string) []Posting {
	titles := []string{
		"Senior " + role,
		"Lead " + role,
		"Principal " + role,
		"Staff " + role,
		role + " Manager",
	}

	postings := make([]Posting, 0, len(titles))
	for i, title := range titles {
		postings = append(postings, Posting{
			Title:       title,
			Company:     sampleCompanies[i],
			Location:    location,
			Description: fmt.Sprintf(sampleDescriptions[i], role),
			PostedAt:    randomRecentTime(),
		})
	}

	return postings
}

func visitSamples(role, location string, visit Visit) error {
	for _, posting := range SamplePostings(role, location) {
		if err := visit(posting); err != nil {
			return err
		}
	}

	return nil
}

// randomRecentTime stands in for a missing posting timestamp, placed 1 to 24
// hours in the past.
func randomRecentTime() time.Time {
	return time.Now().Add(-time.Duration(rand.Intn(24)+1) * time.Hour)
}
