package services

import (
	"context"
	"slices"
	"time"

	"github.com/ad/go-membership-wizard/internal/models"
	log "github.com/sirupsen/logrus"
)

const DefaultPollInterval = 5 * time.Second

type StepLister interface {
	ListByPlan(plan models.MembershipPlan) ([]models.StepInfo, error)
}

type WalletLister interface {
	GetAll() ([]models.AssistedWallet, error)
}

// StepFeed turns the step table of the backend database into a subscription
// by polling it.
type StepFeed struct {
	repo     StepLister
	interval time.Duration
}

func NewStepFeed(repo StepLister, interval time.Duration) *StepFeed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StepFeed{repo: repo, interval: interval}
}

func (f *StepFeed) SubscribeSteps(ctx context.Context, plan models.MembershipPlan) <-chan []models.StepInfo {
	return poll(ctx, f.interval, log.WithField("plan", plan), func() ([]models.StepInfo, error) {
		return f.repo.ListByPlan(plan)
	})
}

type WalletFeed struct {
	repo     WalletLister
	interval time.Duration
}

func NewWalletFeed(repo WalletLister, interval time.Duration) *WalletFeed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &WalletFeed{repo: repo, interval: interval}
}

func (f *WalletFeed) SubscribeWallets(ctx context.Context) <-chan []models.AssistedWallet {
	return poll(ctx, f.interval, log.WithField("feed", "wallets"), f.repo.GetAll)
}

// poll loads immediately and then on every tick, sending the first result and
// each one that differs from the last sent. Failed loads are logged and
// retried on the next tick.
func poll[T comparable](ctx context.Context, interval time.Duration, logger *log.Entry, load func() ([]T, error)) <-chan []T {
	out := make(chan []T)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var (
			last []T
			sent bool
		)
		for {
			items, err := load()
			if err != nil {
				logger.WithError(err).Warn("[STEP_FEED] load failed, keeping last result")
			} else if !sent || !slices.Equal(last, items) {
				select {
				case out <- items:
					last, sent = items, true
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
