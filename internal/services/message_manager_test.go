package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"pgregory.net/rapid"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []*bot.SendMessageParams
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("telegram: Too Many Requests")
	}
	f.sent = append(f.sent, params)
	return &tgmodels.Message{ID: f.calls}, nil
}

func TestProperty14_MessageSendRetry(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		failures := rapid.IntRange(0, 3).Draw(rt, "failures")
		sender := &fakeSender{failures: failures}
		manager := NewMessageManager(sender)

		msg, err := manager.SendWithRetry(context.Background(), &bot.SendMessageParams{ChatID: int64(1), Text: "hi"})

		if failures < 2 {
			if err != nil || msg == nil {
				rt.Fatalf("expected success after %d failures, got %v", failures, err)
			}
			if sender.calls != failures+1 {
				rt.Fatalf("expected %d calls, got %d", failures+1, sender.calls)
			}
		} else {
			if err == nil {
				rt.Fatalf("expected error after %d failures", failures)
			}
			if sender.calls != 2 {
				rt.Fatalf("expected 2 attempts, got %d", sender.calls)
			}
		}
	})
}

func TestSendHTMLUsesHTMLParseMode(t *testing.T) {
	sender := &fakeSender{}
	manager := NewMessageManager(sender)

	if err := manager.SendHTML(context.Background(), 7, FormatBold("x")); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}
	params := sender.sent[0]
	if params.ParseMode != tgmodels.ParseModeHTML || params.ChatID != int64(7) || params.Text != "<b>x</b>" {
		t.Errorf("unexpected params %+v", params)
	}
}
