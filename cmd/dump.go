package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lesson-bot/app"
	"lesson-bot/config"
	"lesson-bot/schedule"
)

var (
	dumpClass string
	dumpDay   int
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Download the schedule and print it for a class",
	RunE:  dump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpClass, "class", "", "class code, e.g. 10Б")
	dumpCmd.Flags().IntVar(&dumpDay, "day", -1, "day index 0-4 (Monday-Friday); whole week when omitted")
	_ = dumpCmd.MarkFlagRequired("class")
	rootCmd.AddCommand(dumpCmd)
}

func dump(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !schedule.IsClassCode(schedule.Normalize(dumpClass)) {
		return fmt.Errorf("invalid class %q", dumpClass)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Service.Refresh(ctx); err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	out := cmd.OutOrStdout()
	if dumpDay >= 0 {
		fmt.Fprintln(out, a.Service.GetSchedule(ctx, dumpClass, dumpDay).Text())
		return nil
	}
	for _, res := range a.Service.GetWeek(ctx, dumpClass) {
		fmt.Fprintln(out, res.Text())
		fmt.Fprintln(out)
	}
	return nil
}
