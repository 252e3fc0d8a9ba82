package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evstation/config"
	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/model"
	"github.com/kilianp07/evstation/pkg/dataset"
	"github.com/kilianp07/evstation/pkg/export"
)

var capacityOpts struct {
	input    string
	capacity string
	format   string
}

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Flag stations whose forecasted peak approaches their rated capacity",
	Long: "Reads forecast rows (json, yaml or csv) and prints one capacity report per vehicle type. " +
		"Capacities come from the configuration unless --capacity points to a file.",
	RunE: analyzeCapacity,
}

func init() {
	f := capacityCmd.Flags()
	f.StringVarP(&capacityOpts.input, "file", "f", "", "forecast rows file")
	f.StringVar(&capacityOpts.capacity, "capacity", "", "capacity rows file, replaces the configured table")
	f.StringVarP(&capacityOpts.format, "output", "o", "json", "output format: json or csv")
	_ = capacityCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(capacityCmd)
}

func analyzeCapacity(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(capacityOpts.format)
	if err != nil {
		return err
	}
	rows, err := dataset.LoadForecastRows(capacityOpts.input)
	if err != nil {
		return err
	}
	capRows, err := capacityRows(cmd)
	if err != nil {
		return err
	}
	reports, err := capacity.AnalyzeByVehicleType(rows, capacity.NewTable(capRows))
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return export.WriteReport(cmd.OutOrStdout(), format, capacity.Report{Results: []model.OverloadResult{}, Message: capacity.MsgNoData})
	}
	if format == export.FormatJSON {
		return export.WriteJSON(cmd.OutOrStdout(), reports)
	}
	types := make([]model.VehicleType, 0, len(reports))
	for vt := range reports {
		types = append(types, vt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, vt := range types {
		if err := export.WriteReport(cmd.OutOrStdout(), format, reports[vt]); err != nil {
			return fmt.Errorf("write %s report: %w", vt, err)
		}
	}
	return nil
}

func capacityRows(cmd *cobra.Command) ([]model.CapacityRow, error) {
	if capacityOpts.capacity != "" {
		rows, err := dataset.LoadCapacityRows(capacityOpts.capacity)
		if err != nil {
			return nil, err
		}
		return rows, config.ValidateCapacity(rows)
	}
	cfg, err := loadOptionalConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cfg.Capacity, nil
}
