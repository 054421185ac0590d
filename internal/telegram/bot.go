package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-easyapply-automation/internal/models"
	"go-easyapply-automation/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot posts run notifications to one chat. Send failures are logged and
// never interrupt a run.
type Bot struct {
	api    sender
	chatID int64
	logger *zap.Logger
}

func NewBot(token string, chatID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
		logger: logger.Named("telegram"),
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func outcomeIcon(o models.Outcome) string {
	switch o {
	case models.OutcomeApplied:
		return "✅"
	case models.OutcomeDiscarded:
		return "🗑️"
	default:
		return "❌"
	}
}

func formatRecord(rec models.ApplicationRecord) string {
	msgText := fmt.Sprintf("%s *%s*\n", outcomeIcon(rec.Outcome), escapeMarkdown(string(rec.Outcome)))
	msgText += fmt.Sprintf("🏢 %s\n", escapeMarkdown(rec.Company))
	if rec.Title != "" {
		msgText += fmt.Sprintf("💼 %s\n", escapeMarkdown(rec.Title))
	}
	msgText += fmt.Sprintf("🔗 [View Job](https://www.linkedin.com/jobs/view/%s/)\n", rec.JobID)
	return msgText
}

func formatSummary(s session.Summary) string {
	msgText := fmt.Sprintf("📊 *Run finished* `%s`\n", escapeMarkdown(s.RunID))
	msgText += fmt.Sprintf("✅ Applied: %d\n", s.Applied)
	msgText += fmt.Sprintf("🗑️ Discarded: %d\n", s.Discarded)
	msgText += fmt.Sprintf("❌ Failed: %d\n", s.Failed)
	msgText += fmt.Sprintf("⏭️ Skipped: %d\n", s.Skipped)
	if !s.Started.IsZero() && !s.Finished.IsZero() {
		msgText += fmt.Sprintf("⏱️ %s\n", escapeMarkdown(s.Finished.Sub(s.Started).Round(time.Second).String()))
	}
	if len(s.Warnings) > 0 {
		msgText += fmt.Sprintf("⚠️ %d warnings, first: %s\n", len(s.Warnings), escapeMarkdown(s.Warnings[0]))
	}
	return msgText
}

func (b *Bot) send(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = "MarkdownV2"
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) NotifyRecord(ctx context.Context, rec models.ApplicationRecord) {
	if err := b.send(formatRecord(rec)); err != nil {
		b.logger.Warn("failed to send record notification", zap.String("job_id", rec.JobID), zap.Error(err))
	}
}

func (b *Bot) NotifySummary(ctx context.Context, s session.Summary) {
	if err := b.send(formatSummary(s)); err != nil {
		b.logger.Warn("failed to send run summary", zap.String("run_id", s.RunID), zap.Error(err))
	}
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
