package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"jobsift/internal/ai"
)

type modelCall struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeModels struct {
	calls     []modelCall
	responses []fakeResponse
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var prompt string
	if len(contents) > 0 && contents[0] != nil && len(contents[0].Parts) > 0 && contents[0].Parts[0] != nil {
		prompt = contents[0].Parts[0].Text
	}

	f.calls = append(f.calls, modelCall{model: model, prompt: prompt, config: config})

	if len(f.responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.resp, next.err
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.responses = append(f.responses, fakeResponse{resp: resp, err: err})
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func rateLimitError() genai.APIError {
	return genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED", Message: "quota exhausted"}
}

func stubWait(t *testing.T) *[]time.Duration {
	t.Helper()

	var delays []time.Duration
	original := wait
	wait = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	t.Cleanup(func() { wait = original })

	return &delays
}

func testGenerator(models *fakeModels, maxRetries int) *Generator {
	return &Generator{
		models:     models,
		model:      "gemini-2.5-pro",
		maxRetries: maxRetries,
		logger:     zap.NewNop(),
	}
}

func TestGeneratorGenerateContent(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	models.enqueue(textResponse("85|Looks like a match"), nil)

	g := testGenerator(models, 5)
	config := &genai.GenerateContentConfig{MaxOutputTokens: 1000}

	output, err := g.GenerateContent(context.Background(), "  rate this job  ", config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "85|Looks like a match" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-2.5-pro" {
		t.Fatalf("unexpected model: %q", call.model)
	}
	if call.prompt != "rate this job" {
		t.Fatalf("expected trimmed prompt, got %q", call.prompt)
	}
	if call.config != config {
		t.Fatalf("expected config to be forwarded")
	}
}

func TestGeneratorRetriesOnRateLimit(t *testing.T) {
	delays := stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, rateLimitError())
	models.enqueue(textResponse("recovered"), nil)

	g := testGenerator(models, 5)

	output, err := g.GenerateContent(context.Background(), "prompt", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "recovered" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}

	if len(*delays) != 1 {
		t.Fatalf("expected 1 backoff delay, got %d", len(*delays))
	}
	if d := (*delays)[0]; d < 10*time.Second || d >= 30*time.Second {
		t.Fatalf("first backoff delay out of range: %v", d)
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	delays := stubWait(t)

	models := &fakeModels{}
	for i := 0; i < 3; i++ {
		models.enqueue(nil, rateLimitError())
	}

	g := testGenerator(models, 2)

	_, err := g.GenerateContent(context.Background(), "prompt", nil)
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	var rateLimited *ai.RateLimitError
	if !errors.As(err, &rateLimited) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateLimited.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", rateLimited.Attempts)
	}

	if len(models.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(models.calls))
	}
	if len(*delays) != 2 {
		t.Fatalf("expected 2 backoff delays, got %d", len(*delays))
	}
}

func TestGeneratorDoesNotRetryOnOtherErrors(t *testing.T) {
	delays := stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})

	g := testGenerator(models, 5)

	_, err := g.GenerateContent(context.Background(), "prompt", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "generate content") {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
	if len(*delays) != 0 {
		t.Fatalf("expected no backoff delays, got %d", len(*delays))
	}
}

func TestGeneratorContextCanceledDuringBackoff(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, rateLimitError())

	g := testGenerator(models, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.GenerateContent(ctx, "prompt", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorEmptyResponse(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	models.enqueue(&genai.GenerateContentResponse{}, nil)

	g := testGenerator(models, 5)

	_, err := g.GenerateContent(context.Background(), "prompt", nil)
	if err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestIsRateLimited(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "too many requests", err: genai.APIError{Code: http.StatusTooManyRequests}, want: true},
		{name: "resource exhausted", err: genai.APIError{Code: http.StatusServiceUnavailable, Status: "RESOURCE_EXHAUSTED"}, want: true},
		{name: "wrapped", err: fmt.Errorf("call failed: %w", rateLimitError()), want: true},
		{name: "internal", err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tc := range cases {
		if got := isRateLimited(tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestBackoffDelayBounds(t *testing.T) {
	cases := []struct {
		retry    int
		min, max time.Duration
	}{
		{retry: 0, min: 10 * time.Second, max: 30 * time.Second},
		{retry: 1, min: 20 * time.Second, max: 60 * time.Second},
		{retry: 2, min: 40 * time.Second, max: 120 * time.Second},
		{retry: 10, min: 60 * time.Second, max: 180 * time.Second},
	}

	for _, tc := range cases {
		for i := 0; i < 50; i++ {
			d := backoffDelay(tc.retry)
			if d < tc.min || d >= tc.max {
				t.Fatalf("retry %d: delay %v out of [%v, %v)", tc.retry, d, tc.min, tc.max)
			}
		}
	}
}
