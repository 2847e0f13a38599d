package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobsift/internal/ai"
	"jobsift/internal/linkedin"
	"jobsift/internal/logger"
	"jobsift/internal/utils"
)

// Pacing between scored postings keeps the overall request rate low even
// when the AI backend answers quickly.
const (
	scoreDelayMin = 10 * time.Second
	scoreDelayMax = 15 * time.Second
)

// wait is swapped out in tests to avoid real delays.
var wait = utils.WaitFor

// Source streams postings for a search query.
type Source interface {
	Search(ctx context.Context, params *linkedin.SearchParams, visit linkedin.Visit) error
}

// Result holds the outcome of a completed run with matches sorted by score,
// best first.
type Result struct {
	RunID   string
	Matches ai.Matches
	Stats   ai.Stats
}

// Runner drives a search run end to end: it streams postings from the
// source, scores each one and keeps a live snapshot of the progress.
type Runner struct {
	source Source
	scorer ai.Scorer
	logger *zap.Logger

	// OnUpdate, when set, is invoked after every state change with a fresh
	// snapshot. Callbacks run on the run goroutine and should return quickly.
	OnUpdate func(Snapshot)

	state state
}

func New(source Source, scorer ai.Scorer, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}

	runner := &Runner{
		source: source,
		scorer: scorer,
		logger: log,
	}
	runner.state.phase = PhaseIdle

	return runner
}

// Snapshot reports the current progress of the runner. It is safe to call
// from other goroutines while a run is in flight.
func (r *Runner) Snapshot() Snapshot {
	return r.state.snapshot()
}

// Run executes a single search run. Each posting delivered by the source is
// scored against the resume before the next one is fetched. Run returns an
// error only when the run is aborted, most commonly by context cancellation.
func (r *Runner) Run(ctx context.Context, params *linkedin.SearchParams, resumeText string) (*Result, error) {
	runID := uuid.NewString()
	log := logger.WithRun(r.logger, runID)

	r.notify(r.state.begin(runID))

	log.Info("starting search run",
		zap.String("keywords", params.Keywords),
		zap.String("location", params.Location),
	)

	visit := func(posting linkedin.Posting) error {
		r.notify(r.state.recordFound())

		scored, err := r.scorer.Score(ctx, resumeText, posting)
		if err != nil {
			return err
		}

		r.notify(r.state.recordScored(scored))

		log.Info("job scored",
			zap.String("title", scored.Title),
			zap.String("company", scored.Company),
			zap.Int("score", scored.Score),
		)

		return wait(ctx, utils.JitterBetween(scoreDelayMin, scoreDelayMax))
	}

	if err := r.source.Search(ctx, params, visit); err != nil {
		r.notify(r.state.fail())
		return nil, err
	}

	r.notify(r.state.complete())

	matches := r.state.results().SortByScore()
	stats := matches.Stats()

	log.Info("search run complete",
		zap.Int("found", r.state.snapshot().Found),
		zap.Int("scored", stats.Total),
		zap.Int("high_matches", stats.HighMatches),
		zap.Float64("average_score", stats.AverageScore),
	)

	return &Result{
		RunID:   runID,
		Matches: matches,
		Stats:   stats,
	}, nil
}

func (r *Runner) notify(snapshot Snapshot) {
	if r.OnUpdate != nil {
		r.OnUpdate(snapshot)
	}
}
