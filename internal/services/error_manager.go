package services

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	log "github.com/sirupsen/logrus"
)

const maxReportLength = 4000

// ErrorManager reports handler panics to the wizard owner's chat.
type ErrorManager struct {
	sender  MessageSender
	ownerID int64
}

func NewErrorManager(sender MessageSender, ownerID int64) *ErrorManager {
	return &ErrorManager{
		sender:  sender,
		ownerID: ownerID,
	}
}

func (e *ErrorManager) NotifyOwner(ctx context.Context, panicValue any, update *tgmodels.Update) {
	report := FormatPanicReport(panicValue, describeUpdate(update), string(debug.Stack()))
	log.WithField("panic", panicValue).Error("[ERROR] recovered handler panic")

	if _, err := e.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: e.ownerID,
		Text:   report,
	}); err != nil {
		log.WithError(err).Error("[ERROR] failed to report panic to owner")
	}
}

func FormatPanicReport(panicValue any, source, stack string) string {
	msg := fmt.Sprintf("🚨 Panic in handler\nUpdate: %s\nError: %v\n\nStack trace:\n%s", source, panicValue, stack)
	if len(msg) > maxReportLength {
		msg = msg[:maxReportLength] + "\n... (truncated)"
	}
	return msg
}

func describeUpdate(update *tgmodels.Update) string {
	switch {
	case update == nil:
		return "unknown"
	case update.Message != nil && update.Message.From != nil:
		return fmt.Sprintf("message %q from [%d]", update.Message.Text, update.Message.From.ID)
	case update.CallbackQuery != nil:
		return fmt.Sprintf("callback %q from [%d]", update.CallbackQuery.Data, update.CallbackQuery.From.ID)
	default:
		return fmt.Sprintf("update %d", update.ID)
	}
}
