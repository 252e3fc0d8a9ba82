package cmd

import (
	"encoding/csv"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evstation/pkg/export"
)

var stationsFormat string

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the configured station catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(stationsFormat)
		if err != nil {
			return err
		}
		cfg, err := loadOptionalConfig(cmd)
		if err != nil {
			return err
		}
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}
		if format == export.FormatJSON {
			return export.WriteJSON(cmd.OutOrStdout(), catalog.Stations())
		}
		w := csv.NewWriter(cmd.OutOrStdout())
		_ = w.Write([]string{"id", "name", "latitude", "longitude"})
		for _, s := range catalog.Stations() {
			_ = w.Write([]string{s.ID, s.Name, strconv.FormatFloat(s.Latitude, 'f', -1, 64), strconv.FormatFloat(s.Longitude, 'f', -1, 64)})
		}
		w.Flush()
		return w.Error()
	},
}

func init() {
	stationsCmd.Flags().StringVarP(&stationsFormat, "output", "o", "json", "output format: json or csv")
	rootCmd.AddCommand(stationsCmd)
}
