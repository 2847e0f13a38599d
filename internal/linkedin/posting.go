package linkedin

import (
	"fmt"
	"time"
)

// Posting is a single job listing assembled from a search results card,
// enriched with the full description from the posting's own page when a
// detail link exists.
type Posting struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	PostedAt    time.Time `json:"posted_date"`
	URL         string    `json:"url,omitempty"`
}

// briefDescription builds the one line description used when a card carries
// no detail link.
func briefDescription(title, company, location string) string {
	return fmt.Sprintf("Position: %s\nCompany: %s\nLocation: %s", title, company, location)
}
