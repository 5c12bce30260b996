package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/go-membership-wizard/internal/config"
	"github.com/ad/go-membership-wizard/internal/db"
	"github.com/ad/go-membership-wizard/internal/handlers"
	"github.com/ad/go-membership-wizard/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// wizard is everything the bot needs besides the Telegram client.
type wizard struct {
	queue    *db.DBQueue
	settings *db.SettingsRepository
	manager  *services.MembershipStepManager
}

// newWizard wires storage, feeds and the step manager, and restores the
// persisted plan.
func newWizard(ctx context.Context, sqlDB *sql.DB, pollInterval time.Duration) (*wizard, error) {
	if err := db.InitSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	queue := db.NewDBQueue(sqlDB)
	settingsRepo := db.NewSettingsRepository(queue)
	stepRepo := db.NewMembershipStepRepository(queue)
	walletRepo := db.NewAssistedWalletRepository(queue)

	manager := services.NewMembershipStepManager(ctx,
		services.NewStepFeed(stepRepo, pollInterval),
		services.WithWalletSource(services.NewWalletFeed(walletRepo, pollInterval)),
	)

	plan, err := settingsRepo.GetMembershipPlan()
	if err != nil {
		manager.Close()
		queue.Close()
		return nil, fmt.Errorf("restore membership plan: %w", err)
	}
	manager.SetCurrentPlan(plan)

	return &wizard{queue: queue, settings: settingsRepo, manager: manager}, nil
}

func (w *wizard) Close() {
	w.manager.Close()
	w.queue.Close()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)

	sqlDB, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := newWizard(ctx, sqlDB, cfg.StepPollInterval)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(cfg.BotToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	for i := 0; i < 3; i++ {
		log.Infof("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(ctx, 10*time.Second)
		_, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			break
		}
		log.WithError(err).Warnf("Failed to get bot info (attempt %d/3)", i+1)
		if i < 2 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	handler := handlers.NewBotHandler(
		cfg.OwnerID,
		app.manager,
		app.settings,
		services.NewMessageManager(b),
		services.NewErrorManager(b, cfg.OwnerID),
	)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	handler.WatchProgress(ctx)

	log.WithFields(log.Fields{
		"owner_id": cfg.OwnerID,
		"db":       cfg.DbPath,
		"plan":     app.manager.Plan(),
	}).Info("Bot started")

	b.Start(ctx)
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return fmt.Sprintf("%s [%d]", name, u.ID)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil && update.Message.From != nil {
			log.Debugf("[MSG] from=%s text=%q", formatUser(*update.Message.From), update.Message.Text)
		}
		if update.CallbackQuery != nil {
			log.Debugf("[CALLBACK] from=%s data=%q", formatUser(update.CallbackQuery.From), update.CallbackQuery.Data)
		}
		next(ctx, b, update)
	}
}
