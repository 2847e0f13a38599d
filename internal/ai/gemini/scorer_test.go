package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"jobsift/internal/ai"
	"jobsift/internal/linkedin"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	lastConfig *genai.GenerateContentConfig
	calls      int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastConfig = config
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testPosting() linkedin.Posting {
	return linkedin.Posting{
		Title:       "Senior Product Manager",
		Company:     "Acme",
		Location:    "Remote",
		Description: "Own the roadmap and ship things.",
	}
}

func TestScorerScore(t *testing.T) {
	delays := stubWait(t)

	stub := &stubGenerator{response: "85|Strong product background, leadership skills"}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	scored, err := scorer.Score(context.Background(), "ten years of product management", testPosting())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scored.Score != 85 {
		t.Fatalf("expected score 85, got %d", scored.Score)
	}
	if scored.Reasoning != "Strong product background, leadership skills" {
		t.Fatalf("unexpected reasoning: %q", scored.Reasoning)
	}
	if scored.Title != "Senior Product Manager" || scored.Company != "Acme" {
		t.Fatalf("expected posting fields to be carried over, got %+v", scored.Posting)
	}

	for _, fragment := range []string{
		"Title: Senior Product Manager",
		"Company: Acme",
		"Description: Own the roadmap and ship things.",
		"ten years of product management",
	} {
		if !strings.Contains(stub.lastPrompt, fragment) {
			t.Fatalf("expected prompt to contain %q, got: %s", fragment, stub.lastPrompt)
		}
	}

	if stub.lastConfig == nil {
		t.Fatal("expected generation config to be set")
	}
	if stub.lastConfig.Temperature == nil || *stub.lastConfig.Temperature != 0.5 {
		t.Fatalf("unexpected temperature: %v", stub.lastConfig.Temperature)
	}
	if stub.lastConfig.MaxOutputTokens != 1000 {
		t.Fatalf("unexpected max output tokens: %d", stub.lastConfig.MaxOutputTokens)
	}

	if len(*delays) != 2 {
		t.Fatalf("expected 2 pacing delays, got %d", len(*delays))
	}
	if d := (*delays)[0]; d < 5*time.Second || d > 10*time.Second {
		t.Fatalf("pre-call delay out of range: %v", d)
	}
	if d := (*delays)[1]; d != 5*time.Second {
		t.Fatalf("expected fixed 5s post-call delay, got %v", d)
	}
}

func TestScorerDegradesOnGenerationError(t *testing.T) {
	delays := stubWait(t)

	stub := &stubGenerator{err: errors.New("boom")}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	scored, err := scorer.Score(context.Background(), "resume", testPosting())
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}

	if scored.Score != 0 {
		t.Fatalf("expected score 0, got %d", scored.Score)
	}
	if scored.Reasoning != "Error during analysis: boom" {
		t.Fatalf("unexpected reasoning: %q", scored.Reasoning)
	}

	if len(*delays) != 1 {
		t.Fatalf("expected only the pre-call delay, got %d", len(*delays))
	}
}

func TestScorerDegradesOnParseFailure(t *testing.T) {
	responses := []string{
		"no separator here",
		"high|missing digits",
		"150|score out of range",
		"85|",
	}

	for _, response := range responses {
		stubWait(t)

		stub := &stubGenerator{response: response}
		scorer := NewScorer(stub, zap.NewNop(), 0)

		scored, err := scorer.Score(context.Background(), "resume", testPosting())
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", response, err)
		}

		if scored.Score != 0 {
			t.Fatalf("%q: expected score 0, got %d", response, scored.Score)
		}
		if scored.Reasoning != ai.ReasonParseFailure {
			t.Fatalf("%q: unexpected reasoning: %q", response, scored.Reasoning)
		}
	}
}

func TestScorerContextCanceled(t *testing.T) {
	stubWait(t)

	stub := &stubGenerator{response: "85|fine"}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scorer.Score(ctx, "resume", testPosting())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if stub.calls != 0 {
		t.Fatalf("expected no generation calls, got %d", stub.calls)
	}
}

type cancelingGenerator struct {
	cancel context.CancelFunc
}

func (c *cancelingGenerator) GenerateContent(context.Context, string, *genai.GenerateContentConfig) (string, error) {
	c.cancel()
	return "", context.Canceled
}

func TestScorerPropagatesCancellationFromGenerator(t *testing.T) {
	stubWait(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scorer := NewScorer(&cancelingGenerator{cancel: cancel}, zap.NewNop(), 0)

	_, err := scorer.Score(ctx, "resume", testPosting())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		score     int
		reasoning string
		ok        bool
	}{
		{name: "plain", raw: "85|Strong fit", score: 85, reasoning: "Strong fit", ok: true},
		{name: "noisy score side", raw: "Score: 92|Great match", score: 92, reasoning: "Great match", ok: true},
		{name: "padded", raw: " 100 | max score ", score: 100, reasoning: "max score", ok: true},
		{name: "zero", raw: "0|no overlap at all", score: 0, reasoning: "no overlap at all", ok: true},
		{name: "missing separator", raw: "85 looks good"},
		{name: "no digits", raw: "high|confidence"},
		{name: "out of range", raw: "150|inflated"},
		{name: "empty reasoning", raw: "85|   "},
		{name: "empty", raw: ""},
	}

	for _, tc := range cases {
		score, reasoning, ok := parseVerdict(tc.raw)
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%v, got %v", tc.name, tc.ok, ok)
		}
		if !tc.ok {
			continue
		}
		if score != tc.score {
			t.Fatalf("%s: expected score %d, got %d", tc.name, tc.score, score)
		}
		if reasoning != tc.reasoning {
			t.Fatalf("%s: expected reasoning %q, got %q", tc.name, tc.reasoning, reasoning)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("my resume text", testPosting())

	if !strings.Contains(prompt, "Rate this job match between 0-100") {
		t.Fatalf("expected template preamble, got: %s", prompt)
	}
	if !strings.Contains(prompt, "[Score]|[2-3 key reasons for the score]") {
		t.Fatalf("expected response format instructions, got: %s", prompt)
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("expected all placeholders to be replaced, got: %s", prompt)
	}
}
