package main

import (
	"database/sql"
	"fmt"

	"github.com/ad/go-membership-wizard/internal/config"
	"github.com/ad/go-membership-wizard/internal/db"
	"github.com/ad/go-membership-wizard/internal/models"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

// store is the backend side of the wizard opened once per invocation.
type store struct {
	sqlDB    *sql.DB
	queue    *db.DBQueue
	steps    *db.MembershipStepRepository
	wallets  *db.AssistedWalletRepository
	settings *db.SettingsRepository
}

func openStore(dsn string) (*store, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.InitSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	queue := db.NewDBQueue(sqlDB)
	return &store{
		sqlDB:    sqlDB,
		queue:    queue,
		steps:    db.NewMembershipStepRepository(queue),
		wallets:  db.NewAssistedWalletRepository(queue),
		settings: db.NewSettingsRepository(queue),
	}, nil
}

func (s *store) Close() {
	s.queue.Close()
	s.sqlDB.Close()
}

func newRootCmd() *cobra.Command {
	var (
		dbPath string
		debug  bool
		st     *store
	)

	root := &cobra.Command{
		Use:           "stepctl",
		Short:         "Operate the membership wizard backend",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			log.SetLevel(cfg.LogLevel)
			if debug {
				log.SetLevel(log.DebugLevel)
			}
			if dbPath != "" {
				cfg.DbPath = dbPath
			}

			st, err = openStore(cfg.DSN())
			if err != nil {
				return err
			}
			log.WithField("db", cfg.DbPath).Debug("[STEPCTL] store opened")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st != nil {
				st.Close()
				st = nil
			}
		},
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (defaults to DB_PATH)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	getStore := func() *store { return st }
	root.AddCommand(planCmd(getStore))
	root.AddCommand(stepsCmd(getStore))
	root.AddCommand(walletsCmd(getStore))
	root.AddCommand(estimateCmd(getStore))
	return root
}

func planFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "plan", "", "Membership plan")
	_ = cmd.MarkFlagRequired("plan")
}

func parsePlan(value string) (models.MembershipPlan, error) {
	plan, err := models.ParseMembershipPlan(value)
	if err != nil {
		return "", err
	}
	if plan == models.PlanNone {
		return "", fmt.Errorf("plan %s has no membership steps", plan)
	}
	return plan, nil
}
