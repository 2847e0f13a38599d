package ai

import (
	"context"
	"fmt"

	"jobsift/internal/linkedin"
)

// ReasonParseFailure is the reasoning recorded when the model's response does
// not follow the required "<score>|<reasoning>" format.
const ReasonParseFailure = "Error parsing analysis results"

// ScoredPosting pairs a posting with the model's verdict on how well it
// matches the candidate's resume.
type ScoredPosting struct {
	linkedin.Posting
	Score     int    `json:"match_score"`
	Reasoning string `json:"match_reasoning"`
}

// Scorer rates one posting against the candidate's resume text.
//
// Implementations degrade instead of failing: a rejected or unparseable model
// response yields a zero score with an explanatory reasoning. The returned
// error is reserved for context cancellation.
type Scorer interface {
	Score(ctx context.Context, resumeText string, posting linkedin.Posting) (ScoredPosting, error)
}

// RateLimitError reports that the scoring API kept rejecting calls for
// capacity reasons through every allowed retry.
type RateLimitError struct {
	Attempts int
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }
