package main

import (
	"os"
	"os/signal"
	"syscall"

	"tg_checkin_bot/internal/infra/scheduler"

	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run check-ins periodically on the CHECKIN_CRON schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.Close()

			providers, err := selectProviders(d.providers, d.cfg.Providers)
			if err != nil {
				return err
			}

			sched := scheduler.NewCheckInScheduler(d.svc, providers, d.cfg.CronSpec, d.log)
			if err := sched.Start(); err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			d.log.Info("shutting down")
			sched.Stop()
			return nil
		},
	}
}
