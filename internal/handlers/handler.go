package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ad/go-membership-wizard/internal/models"
	"github.com/ad/go-membership-wizard/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	log "github.com/sirupsen/logrus"
)

const (
	callbackNext = "wizard:next"
	callbackBack = "wizard:back"
)

const helpText = `Membership setup wizard

/status - show progress
/plan PLAN - choose the membership plan
/step STEP - choose the step you are working on
/next, /back - move through the current step
/restart - start all steps over
/keyname - suggested name for the next TAPSIGNER`

type PlanStore interface {
	SetMembershipPlan(plan models.MembershipPlan) error
}

// Reply is a rendered answer to one owner command.
type Reply struct {
	Text       string
	Navigation bool
}

type BotHandler struct {
	ownerID      int64
	access       *services.AccessMiddleware
	manager      *services.MembershipStepManager
	planStore    PlanStore
	msgManager   *services.MessageManager
	errorManager *services.ErrorManager
}

func NewBotHandler(
	ownerID int64,
	manager *services.MembershipStepManager,
	planStore PlanStore,
	msgManager *services.MessageManager,
	errorManager *services.ErrorManager,
) *BotHandler {
	return &BotHandler{
		ownerID:      ownerID,
		access:       services.NewAccessMiddleware(ownerID),
		manager:      manager,
		planStore:    planStore,
		msgManager:   msgManager,
		errorManager: errorManager,
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx, update)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, b, update.CallbackQuery)
	}
}

func (h *BotHandler) recoverPanic(ctx context.Context, update *tgmodels.Update) {
	if r := recover(); r != nil {
		h.errorManager.NotifyOwner(ctx, r, update)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.From == nil {
		return
	}
	if ok, refusal := h.access.ShouldProcessMessage(msg.From.ID); !ok {
		h.msgManager.SendHTML(ctx, msg.Chat.ID, refusal)
		return
	}
	h.send(ctx, msg.Chat.ID, h.Dispatch(msg.Text))
}

func (h *BotHandler) handleCallback(ctx context.Context, b *bot.Bot, callback *tgmodels.CallbackQuery) {
	if b != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callback.ID})
	}
	if ok, _ := h.access.ShouldProcessMessage(callback.From.ID); !ok {
		return
	}

	var reply Reply
	switch callback.Data {
	case callbackNext:
		reply = h.move(true)
	case callbackBack:
		reply = h.move(false)
	default:
		return
	}
	h.send(ctx, h.ownerID, reply)
}

func (h *BotHandler) send(ctx context.Context, chatID int64, reply Reply) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      reply.Text,
		ParseMode: tgmodels.ParseModeHTML,
	}
	if reply.Navigation {
		params.ReplyMarkup = navigationKeyboard()
	}
	h.msgManager.SendWithRetry(ctx, params)
}

func navigationKeyboard() *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{
				{Text: "⬅️ Back", CallbackData: callbackBack},
				{Text: "Next ➡️", CallbackData: callbackNext},
			},
		},
	}
}

// ParseCommand splits "/cmd@bot arg" into "/cmd" and "arg".
func ParseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, arg, _ := strings.Cut(text, " ")
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// Dispatch runs one owner command against the wizard.
func (h *BotHandler) Dispatch(text string) Reply {
	cmd, arg := ParseCommand(text)
	switch cmd {
	case "/start":
		return h.start()
	case "/status":
		return h.status()
	case "/plan":
		return h.setPlan(arg)
	case "/step":
		return h.setStep(arg)
	case "/next":
		return h.move(true)
	case "/back":
		return h.move(false)
	case "/restart":
		h.manager.Restart()
		return h.status()
	case "/keyname":
		return Reply{Text: "Suggested name: " + services.FormatCode(h.manager.TapSignerName())}
	default:
		return Reply{Text: helpText}
	}
}

// start picks the first open step when the owner has not chosen one yet.
func (h *BotHandler) start() Reply {
	if _, ok := h.manager.CurrentStep(); !ok {
		if step, ok := services.ResolveNextStep(h.manager.Snapshot()); ok {
			h.manager.SetCurrentStep(step)
		}
	}
	return h.status()
}

func (h *BotHandler) status() Reply {
	return Reply{
		Text:       services.FormatWizardStatus(h.manager.Snapshot(), h.manager.Gates()),
		Navigation: true,
	}
}

func (h *BotHandler) setPlan(arg string) Reply {
	if arg == "" {
		return Reply{Text: "Usage: /plan PLAN\nPlans: " + joinPlans(models.AllMembershipPlans())}
	}
	plan, err := models.ParseMembershipPlan(arg)
	if err != nil {
		return Reply{Text: fmt.Sprintf("Unknown plan %s.\nPlans: %s", services.FormatCode(arg), joinPlans(models.AllMembershipPlans()))}
	}
	if err := h.planStore.SetMembershipPlan(plan); err != nil {
		log.WithError(err).WithField("plan", plan).Error("[WIZARD] failed to persist plan")
		return Reply{Text: "Could not save the plan, please try again."}
	}
	h.manager.SetCurrentPlan(plan)
	return h.status()
}

func (h *BotHandler) setStep(arg string) Reply {
	snap := h.manager.Snapshot()
	if arg == "" {
		return Reply{Text: "Usage: /step STEP\nSteps: " + joinSteps(snap.Steps)}
	}
	step, err := models.ParseMembershipStep(arg)
	if err != nil {
		return Reply{Text: fmt.Sprintf("Unknown step %s.\nSteps: %s", services.FormatCode(arg), joinSteps(snap.Steps))}
	}
	h.manager.SetCurrentStep(step)
	return h.stepReply(step)
}

func (h *BotHandler) move(forward bool) Reply {
	err := h.manager.UpdateStep(forward)
	switch {
	case errors.Is(err, services.ErrNoCurrentStep):
		return Reply{Text: "Pick a step first with /step."}
	case errors.Is(err, services.ErrUnsupportedStep):
		log.WithError(err).Error("[WIZARD] step navigation outside the plan")
		return Reply{Text: "That step is not part of your plan. Pick another one with /step."}
	case err != nil:
		log.WithError(err).Error("[WIZARD] step navigation failed")
		return Reply{Text: "Something went wrong."}
	}
	step, _ := h.manager.CurrentStep()
	return h.stepReply(step)
}

func (h *BotHandler) stepReply(step models.MembershipStep) Reply {
	p, ok := h.manager.Progress(step)
	if !ok {
		return Reply{Text: fmt.Sprintf("%s is not part of plan %s.",
			services.FormatBold(services.StepTitle(step)), h.manager.Plan())}
	}
	text := fmt.Sprintf("%s\n%s\n\n⏱ This step: %s\n⏱ Everything: %s",
		services.FormatBold(services.StepTitle(step)),
		services.FormatCode(services.FormatProgressBar(p)),
		services.FormatRemainingTime(h.manager.RemainTimeBySteps(step)),
		services.FormatRemainingTime(h.manager.RemainingTime().Value()))
	if h.manager.StepDone().Value().Has(step) {
		text += "\n\n" + services.FormatItalic("Confirmed by the server, only the server can reopen it.")
	}
	return Reply{Text: text, Navigation: true}
}

// WatchProgress tells the owner about every step the backend confirms until
// ctx is done. The subscription is in place when it returns; the returned
// channel closes once the watcher stops.
func (h *BotHandler) WatchProgress(ctx context.Context) <-chan struct{} {
	updates, unsubscribe := h.manager.StepDone().Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer unsubscribe()

		previous, ok := <-updates
		if !ok {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case current, ok := <-updates:
				if !ok {
					return
				}
				if text := services.FormatStepsConfirmed(previous, current, h.manager.RemainingTime().Value()); text != "" {
					h.msgManager.SendHTML(ctx, h.ownerID, text)
				}
				previous = current
			}
		}
	}()
	return done
}

func joinPlans(plans []models.MembershipPlan) string {
	names := make([]string, 0, len(plans))
	for _, p := range plans {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func joinSteps(steps []models.StepProgress) string {
	if len(steps) == 0 {
		return "none, choose a plan with /plan"
	}
	names := make([]string, 0, len(steps))
	for _, p := range steps {
		names = append(names, p.Step.String())
	}
	return strings.Join(names, ", ")
}
