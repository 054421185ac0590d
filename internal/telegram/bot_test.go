package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-easyapply-automation/internal/models"
	"go-easyapply-automation/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func newTestBot(s *fakeSender) *Bot {
	return &Bot{api: s, chatID: 42, logger: zap.NewNop()}
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `Acme\-Corp \(India\)\.`, escapeMarkdown("Acme-Corp (India)."))
}

func TestNotifyRecord(t *testing.T) {
	s := &fakeSender{}
	bot := newTestBot(s)

	bot.NotifyRecord(context.Background(), models.ApplicationRecord{
		JobID: "4012345678", Company: "Acme Corp.", Title: "Go Engineer", Outcome: models.OutcomeApplied,
	})

	require.Len(t, s.sent, 1)
	msg := s.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "MarkdownV2", msg.ParseMode)
	assert.Contains(t, msg.Text, "✅ *APPLIED*")
	assert.Contains(t, msg.Text, `Acme Corp\.`)
	assert.Contains(t, msg.Text, "jobs/view/4012345678/")
}

func TestNotifySummary(t *testing.T) {
	s := &fakeSender{}
	bot := newTestBot(s)
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	bot.NotifySummary(context.Background(), session.Summary{
		RunID: "run-1", Started: start, Finished: start.Add(90 * time.Second),
		Applied: 2, Discarded: 1, Skipped: 4, Warnings: []string{"search \"go\": timeout"},
	})

	require.Len(t, s.sent, 1)
	text := s.sent[0].Text
	assert.Contains(t, text, "Applied: 2")
	assert.Contains(t, text, "Discarded: 1")
	assert.Contains(t, text, "Skipped: 4")
	assert.Contains(t, text, "1m30s")
	assert.Contains(t, text, "1 warnings")
}

func TestNotify_SendFailureIsSwallowed(t *testing.T) {
	s := &fakeSender{err: errors.New("chat not found")}
	bot := newTestBot(s)

	assert.NotPanics(t, func() {
		bot.NotifyRecord(context.Background(), models.ApplicationRecord{JobID: "1"})
		bot.NotifySummary(context.Background(), session.Summary{RunID: "r"})
	})
	assert.Error(t, bot.SendStatus("hello"))
}
