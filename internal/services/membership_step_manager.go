package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ad/go-membership-wizard/internal/fsm"
	"github.com/ad/go-membership-wizard/internal/models"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoCurrentStep   = errors.New("no current membership step")
	ErrUnsupportedStep = errors.New("unsupported membership step")
)

// StepSource streams the backend's step records of a plan. The channel is
// closed once ctx is done. Implementations retry read failures themselves
// and only send successful results.
type StepSource interface {
	SubscribeSteps(ctx context.Context, plan models.MembershipPlan) <-chan []models.StepInfo
}

type WalletSource interface {
	SubscribeWallets(ctx context.Context) <-chan []models.AssistedWallet
}

type ManagerOption func(*MembershipStepManager)

func WithWalletSource(source WalletSource) ManagerOption {
	return func(m *MembershipStepManager) {
		m.wallets = source
	}
}

// MembershipStepManager tracks the assisted wallet setup wizard of one user.
// It lives as long as the context it was created with; every backend
// subscription it starts is a child of that context.
type MembershipStepManager struct {
	ctx     context.Context
	cancel  context.CancelFunc
	source  StepSource
	wallets WalletSource

	mu              sync.Mutex
	table           stepTable
	currentStep     models.MembershipStep
	hasCurrent      bool
	stepInfo        []models.StepInfo
	assistedWallets []models.AssistedWallet
	generation      uint64
	cancelSync      context.CancelFunc
	closed          bool
	wg              sync.WaitGroup

	stepDone      *Observable[models.StepSet]
	remainingTime *Observable[int]
}

func NewMembershipStepManager(ctx context.Context, source StepSource, opts ...ManagerOption) *MembershipStepManager {
	ctx, cancel := context.WithCancel(ctx)
	m := &MembershipStepManager{
		ctx:           ctx,
		cancel:        cancel,
		source:        source,
		table:         newStepTable(models.PlanNone),
		stepDone:      NewObservable(models.StepSet(0)),
		remainingTime: NewObservable(0),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.wallets != nil {
		m.wg.Add(1)
		go m.followWallets(m.wallets.SubscribeWallets(ctx))
	}
	return m
}

// StepDone follows the set of completed steps.
func (m *MembershipStepManager) StepDone() *Observable[models.StepSet] {
	return m.stepDone
}

// RemainingTime follows the estimated minutes left for the whole plan.
func (m *MembershipStepManager) RemainingTime() *Observable[int] {
	return m.remainingTime
}

func (m *MembershipStepManager) Plan() models.MembershipPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.plan
}

// SetCurrentPlan discards all progress, rebuilds the step table for plan and
// replaces the backend subscription with one for the new plan.
func (m *MembershipStepManager) SetCurrentPlan(plan models.MembershipPlan) {
	m.mu.Lock()
	if m.cancelSync != nil {
		m.cancelSync()
		m.cancelSync = nil
	}
	m.generation++
	gen := m.generation
	m.table = newStepTable(plan)
	m.stepInfo = nil
	m.publishLocked()

	if m.closed || plan == models.PlanNone {
		m.mu.Unlock()
		return
	}
	syncCtx, cancel := context.WithCancel(m.ctx)
	m.cancelSync = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	log.WithField("plan", plan).Infof("[STEP_MANAGER] following membership steps")
	go m.followSteps(syncCtx, gen, m.source.SubscribeSteps(syncCtx, plan))
}

func (m *MembershipStepManager) SetCurrentStep(step models.MembershipStep) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentStep = step
	m.hasCurrent = true
}

func (m *MembershipStepManager) CurrentStep() (models.MembershipStep, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentStep, m.hasCurrent
}

// UpdateStep moves the current step one sub-step forward or back. Completed
// steps are left alone; only the backend can reopen them.
func (m *MembershipStepManager) UpdateStep(isForward bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasCurrent {
		return ErrNoCurrentStep
	}
	step := m.currentStep
	if !m.table.has(step) {
		return fmt.Errorf("%w: %s is not part of plan %s", ErrUnsupportedStep, step, m.table.plan)
	}
	if m.table.done().Has(step) {
		return nil
	}
	m.table.advance(step, isForward)
	m.publishLocked()
	return nil
}

// Restart puts every step back to its first sub-step. The backend
// subscription keeps running.
func (m *MembershipStepManager) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table.reset()
	m.publishLocked()
}

func (m *MembershipStepManager) Progress(step models.MembershipStep) (models.StepProgress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.progress(step)
}

func (m *MembershipStepManager) Snapshot() WizardSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.table.snapshot()
	snap.CurrentStep, snap.HasCurrent = m.currentStep, m.hasCurrent
	return snap
}

func (m *MembershipStepManager) IsNotConfig() bool {
	return m.stepDone.Value().IsEmpty()
}

func (m *MembershipStepManager) IsConfigKeyDone() bool {
	return m.stepDone.Value().ContainsAll(KeySteps(m.Plan())...)
}

func (m *MembershipStepManager) IsConfigRecoverKeyDone() bool {
	return m.IsConfigKeyDone() && m.stepDone.Value().Has(models.StepAddServerKey)
}

func (m *MembershipStepManager) IsCreatedAssistedWalletDone() bool {
	return m.IsConfigRecoverKeyDone() && m.stepDone.Value().Has(models.StepCreateWallet)
}

// IsSetupInheritanceDone needs at least one assisted wallet and inheritance
// configured on all of them.
func (m *MembershipStepManager) IsSetupInheritanceDone() bool {
	if !m.IsCreatedAssistedWalletDone() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.assistedWallets) == 0 {
		return false
	}
	for _, w := range m.assistedWallets {
		if !w.IsSetupInheritance {
			return false
		}
	}
	return true
}

func (m *MembershipStepManager) AssistedWallets() []models.AssistedWallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AssistedWallet(nil), m.assistedWallets...)
}

// WizardGates groups the plan-level completion checks.
type WizardGates struct {
	KeysConfigured       bool
	RecoverKeyConfigured bool
	WalletCreated        bool
	InheritanceDone      bool
}

func (m *MembershipStepManager) Gates() WizardGates {
	return WizardGates{
		KeysConfigured:       m.IsConfigKeyDone(),
		RecoverKeyConfigured: m.IsConfigRecoverKeyDone(),
		WalletCreated:        m.IsCreatedAssistedWalletDone(),
		InheritanceDone:      m.IsSetupInheritanceDone(),
	}
}

// RemainTimeBySteps estimates the minutes left for the given steps only.
// Steps outside the plan count as zero.
func (m *MembershipStepManager) RemainTimeBySteps(steps ...models.MembershipStep) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.remaining(models.NewStepSet(steps...).Steps()...)
}

// Close stops every subscription and waits for them to finish. Subscribers
// of StepDone and RemainingTime see their channels closed.
func (m *MembershipStepManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.cancelSync != nil {
		m.cancelSync()
		m.cancelSync = nil
	}
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	m.stepDone.closeAll()
	m.remainingTime.closeAll()
}

func (m *MembershipStepManager) followSteps(ctx context.Context, gen uint64, updates <-chan []models.StepInfo) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case infos, ok := <-updates:
			if !ok {
				return
			}
			m.applySteps(gen, infos)
		}
	}
}

func (m *MembershipStepManager) applySteps(gen uint64, infos []models.StepInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// a superseded subscription may still deliver one last batch
	if gen != m.generation {
		return
	}
	before := m.table.done()
	for _, info := range m.table.apply(infos) {
		log.WithFields(log.Fields{
			"plan": m.table.plan,
			"step": info.Step,
		}).Warn("[STEP_MANAGER] backend reported a step outside the plan")
	}
	for _, step := range before.Steps() {
		if p, ok := m.table.progress(step); ok && fsm.Regressed(fsm.StateDone, p.State()) {
			log.WithFields(log.Fields{
				"plan": m.table.plan,
				"step": step,
			}).Info("[STEP_MANAGER] backend reopened a completed step")
		}
	}
	m.stepInfo = append(m.stepInfo[:0], infos...)
	m.publishLocked()
}

func (m *MembershipStepManager) followWallets(updates <-chan []models.AssistedWallet) {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case wallets, ok := <-updates:
			if !ok {
				return
			}
			m.mu.Lock()
			m.assistedWallets = append(m.assistedWallets[:0], wallets...)
			m.mu.Unlock()
		}
	}
}

func (m *MembershipStepManager) publishLocked() {
	m.stepDone.set(m.table.done())
	m.remainingTime.set(m.table.remainingAll())
}
