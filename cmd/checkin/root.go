package main

import (
	"database/sql"
	"fmt"

	"tg_checkin_bot/internal/app"
	"tg_checkin_bot/internal/domain/checkin"
	"tg_checkin_bot/internal/domain/notify"
	"tg_checkin_bot/internal/infra/config"
	"tg_checkin_bot/internal/infra/database"
	"tg_checkin_bot/internal/infra/logger"
	"tg_checkin_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "checkin",
		Short:         "Automated check-ins with Telegram reward bots",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd(), newDaemonCmd(), newProvidersCmd(), newHistoryCmd())
	return root
}

// deps bundles everything a command needs after configuration is loaded.
type deps struct {
	cfg       *config.AppConfig
	log       *logrus.Logger
	svc       *app.CheckInService
	reports   checkin.Repository
	providers []checkin.Provider // full table, overrides applied
	db        *sql.DB            // nil when history persistence is off
}

func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

// buildDeps loads configuration and wires the service graph. Missing
// mandatory credentials fail here, before any network activity.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	providers := checkin.BuiltinProviders()
	if cfg.ProvidersFile != "" {
		providers, err = config.ApplyProviderOverrides(cfg.ProvidersFile, providers)
		if err != nil {
			return nil, err
		}
		log.Infof("provider overrides applied from %s", cfg.ProvidersFile)
	}

	var notifyClient notify.Client
	if cfg.Notifiable() {
		notifier, err := telegram.NewTelebotNotifier(cfg.NotifyToken)
		if err != nil {
			// Notification is advisory; a broken notifier must not
			// block the check-in itself.
			log.Warnf("notification bot unavailable: %v", err)
		} else {
			notifyClient = notifier
		}
	}

	d := &deps{cfg: cfg, log: log, providers: providers}
	d.reports = database.NewNoopRunRepository()
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("run-history database: %w", err)
		}
		d.db = db
		d.reports = database.NewPostgresRunRepository(db)
		log.Info("run-history database connected")
	}

	dialer := telegram.NewDialer(cfg.APIID, cfg.APIHash, cfg.SessionString, log)
	notifySvc := app.NewNotifyService(notifyClient, cfg.NotifyChatID, log)
	d.svc = app.NewCheckInService(dialer, notifySvc, d.reports, log)
	return d, nil
}

// selectProviders resolves the requested provider names, or returns the
// whole table when none were requested.
func selectProviders(all []checkin.Provider, names []string) ([]checkin.Provider, error) {
	if len(names) == 0 {
		return all, nil
	}
	out := make([]checkin.Provider, 0, len(names))
	for _, name := range names {
		p, err := checkin.ProviderByName(all, name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
