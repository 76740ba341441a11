package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/scheduler"
)

var (
	scheduleNow         bool
	scheduleParallelism int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the saved searches on the configured cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		searches := make([]model.SearchConfig, 0, len(cfg.Schedule.Searches))
		for _, s := range cfg.Schedule.Searches {
			searches = append(searches, s.SearchConfig())
		}

		sched, err := scheduler.New(a.Orchestrator, cfg.Schedule.Spec, searches,
			scheduler.WithParallelism(scheduleParallelism),
		)
		if err != nil {
			return err
		}
		if err := sched.Start(ctx, scheduleNow); err != nil {
			return err
		}

		<-ctx.Done()
		zap.L().Info("stopping scheduler")
		sched.Stop()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", true, "run all saved searches once at startup")
	scheduleCmd.Flags().IntVar(&scheduleParallelism, "parallel", 2, "saved searches to run at once")
	rootCmd.AddCommand(scheduleCmd)
}
