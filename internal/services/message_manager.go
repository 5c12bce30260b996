package services

import (
	"context"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	log "github.com/sirupsen/logrus"
)

// MessageSender is the part of *bot.Bot the wizard needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
}

type MessageManager struct {
	sender   MessageSender
	maxRetry int
}

func NewMessageManager(sender MessageSender) *MessageManager {
	return &MessageManager{
		sender:   sender,
		maxRetry: 2,
	}
}

func (m *MessageManager) SendWithRetry(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	var lastErr error
	for attempt := 0; attempt < m.maxRetry; attempt++ {
		msg, err := m.sender.SendMessage(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	log.WithError(lastErr).WithField("chat_id", params.ChatID).Error("[MSG] failed to send message")
	return nil, lastErr
}

// SendHTML sends text formatted with the HTML helpers to chatID.
func (m *MessageManager) SendHTML(ctx context.Context, chatID int64, text string) error {
	_, err := m.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	return err
}
