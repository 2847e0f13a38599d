package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"jobsift/internal/ai"
	"jobsift/internal/linkedin"
	"jobsift/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	maxOutputTokens = 1000
	temperature     = 0.5

	defaultMaxLogLength = 200
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

// Scorer grades postings against a resume using the Gemini API. Generation
// and parsing failures degrade into a zero score with an explanatory
// reasoning; the returned error is reserved for context cancellation.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Score(ctx context.Context, resumeText string, posting linkedin.Posting) (ai.ScoredPosting, error) {
	scored := ai.ScoredPosting{Posting: posting}

	prompt := buildPrompt(resumeText, posting)

	s.logger.Debug("gemini score request",
		zap.String("job_title", posting.Title),
		zap.String("company", posting.Company),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	if err := wait(ctx, utils.JitterBetween(5*time.Second, 10*time.Second)); err != nil {
		return scored, err
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: maxOutputTokens,
	}

	raw, err := s.generator.GenerateContent(ctx, prompt, config)
	if err != nil {
		if ctx.Err() != nil {
			return scored, ctx.Err()
		}

		s.logger.Warn("gemini analysis failed",
			zap.String("job_title", posting.Title),
			zap.Error(err),
		)

		scored.Reasoning = fmt.Sprintf("Error during analysis: %v", err)
		return scored, nil
	}

	s.logger.Debug("gemini score response",
		zap.String("job_title", posting.Title),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	if err := wait(ctx, 5*time.Second); err != nil {
		return scored, err
	}

	score, reasoning, ok := parseVerdict(raw)
	if !ok {
		s.logger.Warn("unable to parse analysis response",
			zap.String("job_title", posting.Title),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)

		scored.Reasoning = ai.ReasonParseFailure
		return scored, nil
	}

	scored.Score = score
	scored.Reasoning = reasoning

	return scored, nil
}

func buildPrompt(resumeText string, posting linkedin.Posting) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "JOB:\nTitle: {{JOB_TITLE}}\nCompany: {{COMPANY}}\nDescription: {{DESCRIPTION}}\n\nRESUME:\n{{RESUME}}\n\nRespond ONLY as [Score]|[key reasons]."
	}

	prompt := strings.ReplaceAll(template, "{{JOB_TITLE}}", posting.Title)
	prompt = strings.ReplaceAll(prompt, "{{COMPANY}}", posting.Company)
	prompt = strings.ReplaceAll(prompt, "{{DESCRIPTION}}", posting.Description)
	return strings.ReplaceAll(prompt, "{{RESUME}}", resumeText)
}

// parseVerdict splits a "score|reasoning" verdict, keeping only digits on the
// score side. Scores outside 0-100 and empty reasonings are rejected.
func parseVerdict(raw string) (int, string, bool) {
	left, right, found := strings.Cut(strings.TrimSpace(raw), "|")
	if !found {
		return 0, "", false
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, left)
	if digits == "" {
		return 0, "", false
	}

	score, err := strconv.Atoi(digits)
	if err != nil || score < 0 || score > 100 {
		return 0, "", false
	}

	reasoning := strings.TrimSpace(right)
	if reasoning == "" {
		return 0, "", false
	}

	return score, reasoning, true
}
