package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/forecast"
	"github.com/kilianp07/evstation/core/planning"
	"github.com/kilianp07/evstation/infra/logger"
	"github.com/kilianp07/evstation/pkg/export"
)

var planFormat string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one forecast and capacity planning pass and print the reports",
	RunE:  plan,
}

func init() {
	planCmd.Flags().StringVarP(&planFormat, "output", "o", "json", "output format: json or csv")
	rootCmd.AddCommand(planCmd)
}

func plan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, err := export.ParseFormat(planFormat)
	if err != nil {
		return err
	}
	cfg, err := loadOptionalConfig(cmd)
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	fc, err := forecast.New(cfg.Forecast)
	if err != nil {
		return fmt.Errorf("forecaster: %w", err)
	}
	p, err := planning.NewPlanner(cfg.Planning, catalog.Stations(), capacity.NewTable(cfg.Capacity), fc, nil, nil, logger.NewZerologLoggerWithWriter(cmd.ErrOrStderr(), "plan"))
	if err != nil {
		return err
	}
	reports, err := p.RunOnce(ctx)
	if err != nil {
		return err
	}
	if format == export.FormatJSON {
		return export.WriteJSON(cmd.OutOrStdout(), reports)
	}
	for _, ev := range reports {
		if err := export.WriteReport(cmd.OutOrStdout(), format, ev.Report); err != nil {
			return err
		}
	}
	return nil
}
