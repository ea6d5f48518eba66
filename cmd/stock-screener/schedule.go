package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-screener/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Runs the screener on the configured cron schedule until interrupted",
	RunE:  runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	loc, err := time.LoadLocation(a.cfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("invalid schedule timezone %q: %w", a.cfg.Schedule.Timezone, err)
	}

	cronLogger := cron.VerbosePrintfLogger(zapPrintf{a.log})
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	job := func() {
		if _, err := a.runOnce(ctx, a.cfg.Run.Markets); err != nil {
			a.log.Error("Scheduled run failed", logger.ErrorField(err))
		}
	}
	id, err := c.AddFunc(a.cfg.Schedule.Cron, job)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", a.cfg.Schedule.Cron, err)
	}

	c.Start()
	a.log.Info("Scheduler started",
		logger.StringField("cron", a.cfg.Schedule.Cron),
		logger.StringField("timezone", loc.String()),
		logger.Field("next_run", c.Entry(id).Next),
	)
	if a.cfg.Schedule.RunOnStart {
		go c.Entry(id).WrappedJob.Run()
	}

	<-ctx.Done()
	a.log.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	a.log.Info("Scheduler exiting")
	return nil
}

// zapPrintf adapts the logger to the Printf interface cron logs through.
type zapPrintf struct {
	log *logger.Logger
}

func (z zapPrintf) Printf(format string, args ...interface{}) {
	z.log.Sugar().Infof(format, args...)
}
