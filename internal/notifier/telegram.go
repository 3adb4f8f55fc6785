package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"github.com/tradewatch/signal-monitor-go/internal/config"
)

// TelegramNotifier sends messages to a fixed operator chat through the
// Telegram bot API.
type TelegramNotifier struct {
	bot     *bot.Bot
	chatID  int64
	timeout time.Duration
	logger  *logrus.Logger
}

// NewTelegramNotifier creates a notifier from the Telegram
// configuration. Both bot token and chat id must be set.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *logrus.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token and chat id must be configured")
	}
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", cfg.ChatID, err)
	}

	// Skip the eager getMe call so startup does not depend on the
	// Telegram API being reachable; bad credentials surface as send
	// failures, which the monitor logs without crashing.
	b, err := bot.New(cfg.BotToken, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &TelegramNotifier{
		bot:     b,
		chatID:  chatID,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Send delivers one Markdown-formatted message to the operator chat.
func (n *TelegramNotifier) Send(ctx context.Context, message string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      message,
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.WithField("chars", len(message)).Debug("Telegram notification sent")
	return nil
}
