package notify

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"jobsift/internal/ai"
)

// defaultDigestLimit bounds how many matches a digest lists when no limit is
// given.
const defaultDigestLimit = 5

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram pushes run digests to a single Telegram chat.
type Telegram struct {
	bot    sender
	chatID int64
	logger *zap.Logger
}

func NewTelegram(token string, chatID int64, log *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log,
	}, nil
}

// SendDigest renders the digest for the matches and delivers it to the
// configured chat.
func (t *Telegram) SendDigest(matches ai.Matches, limit int) error {
	msg := tgbotapi.NewMessage(t.chatID, Digest(matches, limit))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram digest: %w", err)
	}

	t.logger.Info("telegram digest sent", zap.Int("matches", matches.Len()))

	return nil
}

// ParseChatID converts the textual chat id used in configuration.
func ParseChatID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing telegram chat id %q: %w", raw, err)
	}
	return id, nil
}

// Digest renders a plain text summary of the best matches, at most limit
// entries.
func Digest(matches ai.Matches, limit int) string {
	if matches.Len() == 0 {
		return "No job matches in this run."
	}
	if limit <= 0 {
		limit = defaultDigestLimit
	}

	stats := matches.Stats()
	top := matches.Top(limit)

	var b strings.Builder
	fmt.Fprintf(&b, "Job matches: %d scored, %d high (avg %.1f)\n", stats.Total, stats.HighMatches, stats.AverageScore)

	for i, match := range top {
		fmt.Fprintf(&b, "\n%d. [%d] %s at %s", i+1, match.Score, match.Title, match.Company)
		if match.Location != "" {
			fmt.Fprintf(&b, " (%s)", match.Location)
		}
		if match.URL != "" {
			fmt.Fprintf(&b, "\n%s", match.URL)
		}
	}

	return b.String()
}
