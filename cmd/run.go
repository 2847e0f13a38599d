package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"jobsift/internal/ai"
	"jobsift/internal/ai/gemini"
	"jobsift/internal/export"
	"jobsift/internal/filtering"
	"jobsift/internal/linkedin"
	"jobsift/internal/logger"
	"jobsift/internal/notify"
	"jobsift/internal/pipeline"
	"jobsift/internal/resume"
	"jobsift/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	PromptShowMatches   = "Show all matches"
	PromptCompanyReport = "Report by company"
	PromptExportCSV     = "Export matches to CSV file"
	PromptDumpJSON      = "Dump matches to JSON file"
	PromptSendDigest    = "Send Telegram digest"
	PromptRunAgain      = "Run the search again"
	PromptExit          = "Exit"

	progressInterval = 15 * time.Second
)

var (
	errExit     = errors.New("exit requested")
	errRunAgain = errors.New("new run requested")
)

var prompt = promptui.Select{
	Label: "What's next?",
	Items: []string{
		PromptShowMatches,
		PromptCompanyReport,
		PromptExportCSV,
		PromptDumpJSON,
		PromptSendDigest,
		PromptRunAgain,
		PromptExit,
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search job postings and score them against your resume",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("keywords", "k", "", "search keywords")
	runCmd.Flags().StringP("location", "l", "", "search location")
	runCmd.Flags().Int("distance", 0, "search radius in miles")
	runCmd.Flags().String("posted-within", "", "recency window: 24h, week, month or any")
	runCmd.Flags().StringP("resume", "r", "", "path to the resume PDF")
	runCmd.Flags().Int("max-postings", 0, "cap on inspected and accepted postings per run")
	runCmd.Flags().StringP("export-file", "o", "", "CSV export path (default is job_matches_<date>.csv)")
	runCmd.Flags().BoolP("auto-export", "y", false, "run once, export the CSV and exit without the menu")
	runCmd.Flags().StringSlice("include-company", nil, "keep only companies matching these substrings")
	runCmd.Flags().StringSlice("exclude-company", nil, "drop companies matching these substrings")

	viper.BindPFlag("search.keywords", runCmd.Flags().Lookup("keywords"))
	viper.BindPFlag("search.location", runCmd.Flags().Lookup("location"))
	viper.BindPFlag("search.distance", runCmd.Flags().Lookup("distance"))
	viper.BindPFlag("search.posted-within", runCmd.Flags().Lookup("posted-within"))
	viper.BindPFlag("resume", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("scraper.max-postings", runCmd.Flags().Lookup("max-postings"))
	viper.BindPFlag("export.file", runCmd.Flags().Lookup("export-file"))
	viper.BindPFlag("search.include-companies", runCmd.Flags().Lookup("include-company"))
	viper.BindPFlag("search.exclude-companies", runCmd.Flags().Lookup("exclude-company"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobsift", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	window, err := linkedin.ParseWindow(config.Search.PostedWithin)
	if err != nil {
		logger.Fatal("parsing recency window", zap.Error(err))
	}

	resumeText, err := resume.Load(config.Resume)
	if err != nil {
		logger.Fatal("loading resume",
			zap.Error(err),
			zap.String("hint", "point the resume key or the --resume flag at a readable PDF"),
		)
	}

	logger.Info("resume loaded",
		zap.String("path", config.Resume),
		zap.Int("characters", utf8.RuneCountInString(resumeText)),
	)

	filter := filtering.NewCompanyFilter(config.Search.IncludeCompanies, config.Search.ExcludeCompanies)
	if !filter.Empty() {
		status := filter.Status()
		logger.Info("company filter active",
			zap.Strings("include", status.Include),
			zap.Strings("exclude", status.Exclude),
		)
	}

	client := linkedin.New(logger)
	if scraper := config.scraper(); scraper != nil {
		if scraper.MaxPostings > 0 {
			client.MaxPostings = scraper.MaxPostings
		}
		if scraper.UserAgent != "" {
			client.UserAgent = scraper.UserAgent
		}
		client.BrowserRendering = scraper.BrowserRendering
	}

	scorer, err := buildScorer(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the match scorer",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or ai.gemini.api-key-file in the configuration"),
		)
	}

	runner := pipeline.New(client, scorer, logger)
	runner.OnUpdate = func(snapshot pipeline.Snapshot) {
		logger.Debug("run progress",
			zap.String("phase", string(snapshot.Phase)),
			zap.Int("found", snapshot.Found),
			zap.Int("scored", snapshot.Scored),
		)
	}

	params := &linkedin.SearchParams{
		Keywords:      config.Search.Keywords,
		Location:      config.Search.Location,
		DistanceMiles: config.Search.Distance,
		Window:        window,
		Filter:        filter,
	}

	autoExport, _ := cmd.Flags().GetBool("auto-export")

	for {
		result := executeRun(ctx, runner, params, resumeText, logger)

		if ctx.Err() != nil {
			logger.Info("exiting", zap.String("reason", "interrupted"))
			return
		}

		var matches ai.Matches
		if result != nil {
			matches = result.Matches
		}

		printSummary(matches)

		if autoExport {
			if err := exportMatches(config, matches, logger); err != nil {
				logger.Fatal("exporting matches", zap.Error(err))
			}
			if config.telegramEnabled() {
				if err := sendDigest(config, matches, logger); err != nil {
					logger.Error("sending telegram digest", zap.Error(err))
				}
			}
			return
		}

		again, err := menuLoop(config, matches, logger)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if !again {
			return
		}
	}
}

// executeRun drives a single search run with a progress ticker alongside it.
// A failed run is reported and yields no result.
func executeRun(ctx context.Context, runner *pipeline.Runner, params *linkedin.SearchParams, resumeText string, log *zap.Logger) *pipeline.Result {
	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()

	group, groupCtx := errgroup.WithContext(ctx)

	var result *pipeline.Result
	group.Go(func() error {
		defer stopProgress()

		var err error
		result, err = runner.Run(groupCtx, params, resumeText)
		return err
	})

	group.Go(func() error {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		for {
			select {
			case <-progressCtx.Done():
				return nil
			case <-ticker.C:
				fmt.Println(renderProgress(runner.Snapshot()))
			}
		}
	})

	if err := group.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("search interrupted")
		} else {
			log.Error("search failed", zap.Error(err))
		}
		return nil
	}

	return result
}

func menuLoop(config *Config, matches ai.Matches, log *zap.Logger) (bool, error) {
	for {
		_, action, err := prompt.Run()
		if err != nil {
			return false, err
		}

		log.Info("current list of matches", zap.Int("count", matches.Len()))

		if err := handleAction(action, config, matches, log); err != nil {
			switch {
			case errors.Is(err, errExit):
				return false, nil
			case errors.Is(err, errRunAgain):
				return true, nil
			default:
				log.Error("action failed", zap.Error(err))
			}
		}
	}
}

func handleAction(action string, config *Config, matches ai.Matches, log *zap.Logger) error {
	switch action {
	case PromptShowMatches:
		fmt.Println(renderMatches(matches))
		return nil
	case PromptCompanyReport:
		pretty, _ := json.MarshalIndent(matches.ReportByCompany(), "", "  ")
		log.Info(string(pretty), zap.Int("matches count", matches.Len()))
		return nil
	case PromptExportCSV:
		return exportMatches(config, matches, log)
	case PromptDumpJSON:
		filename, err := matches.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		log.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptSendDigest:
		return sendDigest(config, matches, log)
	case PromptRunAgain:
		return errRunAgain
	case PromptExit:
		log.Info("exiting", zap.String("reason", "exit requested"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func buildScorer(ctx context.Context, config *Config, log *zap.Logger) (ai.Scorer, error) {
	if config.AI != nil {
		provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
		if provider != "" && provider != "gemini" {
			return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
		}
	}

	geminiCfg := config.gemini()

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		File:  geminiCfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, log)
	if err != nil {
		return nil, err
	}

	scorerLog := logger.WithCommonFields(log, "gemini", generator.Model())

	return gemini.NewScorer(generator, scorerLog, geminiCfg.MaxLogLength), nil
}

func exportMatches(config *Config, matches ai.Matches, log *zap.Logger) error {
	path := strings.TrimSpace(config.exportFile())
	if path == "" {
		path = export.DefaultFilename(time.Now())
	}

	if err := export.WriteFile(path, matches); err != nil {
		return err
	}

	log.Info("matches exported", zap.String("filename", path), zap.Int("count", matches.Len()))
	return nil
}

func sendDigest(config *Config, matches ai.Matches, log *zap.Logger) error {
	if !config.telegramEnabled() {
		return errors.New("telegram is not enabled in the configuration")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "telegram bot token",
		File: config.Telegram.TokenFile,
		Env:  "TELEGRAM_BOT_TOKEN",
	})
	if err != nil {
		return err
	}

	chatRaw, err := secrets.Load(secrets.Source{
		Name:  "telegram chat id",
		Value: config.Telegram.ChatID,
		Env:   "TELEGRAM_CHAT_ID",
	})
	if err != nil {
		return err
	}

	chatID, err := notify.ParseChatID(chatRaw)
	if err != nil {
		return err
	}

	telegram, err := notify.NewTelegram(token, chatID, log)
	if err != nil {
		return err
	}

	return telegram.SendDigest(matches, 0)
}

func renderProgress(snapshot pipeline.Snapshot) string {
	line := fmt.Sprintf("[%s] found %d, scored %d", snapshot.Phase, snapshot.Found, snapshot.Scored)
	if len(snapshot.Top) > 0 {
		best := snapshot.Top[0]
		line += fmt.Sprintf(", best so far %d (%s at %s)", best.Score, best.Title, best.Company)
	}
	return line
}

func renderMatches(matches ai.Matches) string {
	if matches.Len() == 0 {
		return "No matches to show."
	}

	var b strings.Builder
	for i, match := range matches {
		fmt.Fprintf(&b, "%d. [%d] %s at %s (%s)\n", i+1, match.Score, match.Title, match.Company, match.Location)
		if match.Reasoning != "" {
			fmt.Fprintf(&b, "   %s\n", match.Reasoning)
		}
		if match.URL != "" {
			fmt.Fprintf(&b, "   %s\n", match.URL)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func printSummary(matches ai.Matches) {
	stats := matches.Stats()

	fmt.Println("\n=== matching complete ===")
	fmt.Printf("Total jobs scored: %d\n", stats.Total)
	fmt.Printf("Average match score: %.1f%%\n", stats.AverageScore)
	fmt.Printf("High matches (80+): %d\n", stats.HighMatches)

	if matches.Len() > 0 {
		fmt.Println("\nTop matches:")
		for i, match := range matches.Top(5) {
			fmt.Printf("%d. [%d] %s at %s\n", i+1, match.Score, match.Title, match.Company)
		}
	}
}
