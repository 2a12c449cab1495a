package main

import (
	"errors"

	"tg_checkin_bot/internal/infra/console"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [provider...]",
		Short: "Run check-ins once and exit",
		Long: "Runs the check-in flow for the named providers (default: all built-ins,\n" +
			"or CHECKIN_PROVIDERS when set) and exits non-zero unless every run ended\n" +
			"in an acceptable state.",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.Close()

			names := args
			if len(names) == 0 {
				names = d.cfg.Providers
			}
			providers, err := selectProviders(d.providers, names)
			if err != nil {
				return err
			}

			out := console.New()
			failed := false
			for _, p := range providers {
				out.Step("=== 执行 %s 任务 ===", p.Title)
				report, err := d.svc.Run(cmd.Context(), p)
				if err != nil {
					// Expired session: nothing further can run.
					out.Fail("tg_session 已失效, 请更新环境变量 TG_SESSION_STR")
					return err
				}
				out.Summary(p, report)
				if !p.AcceptableOutcome(report.Status) {
					failed = true
				}
			}
			if failed {
				return errors.New("one or more check-ins did not achieve their goal")
			}
			return nil
		},
	}
}
