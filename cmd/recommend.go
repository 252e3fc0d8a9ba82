package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evstation/core/geo"
	"github.com/kilianp07/evstation/core/model"
	"github.com/kilianp07/evstation/core/ranking"
	"github.com/kilianp07/evstation/pkg/dataset"
	"github.com/kilianp07/evstation/pkg/export"
)

var recommendOpts struct {
	input       string
	vehicleType string
	lat, lon    float64
	format      string
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank stations of a state file by estimated time of arrival",
	RunE:  recommend,
}

func init() {
	f := recommendCmd.Flags()
	f.StringVarP(&recommendOpts.input, "file", "f", "", "station states file (json or yaml)")
	f.StringVarP(&recommendOpts.vehicleType, "vehicle-type", "t", "", "car or scooter, overrides the file")
	f.Float64Var(&recommendOpts.lat, "lat", 0, "user latitude, overrides the file")
	f.Float64Var(&recommendOpts.lon, "lon", 0, "user longitude, overrides the file")
	f.StringVarP(&recommendOpts.format, "output", "o", "json", "output format: json or csv")
	_ = recommendCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(recommendCmd)
}

func recommend(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(recommendOpts.format)
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
	req, err := dataset.LoadStates(recommendOpts.input)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("vehicle-type") {
		if req.VehicleType, err = model.ParseVehicleType(recommendOpts.vehicleType); err != nil {
			return err
		}
	}
	user, err := userPosition(cmd, req.User)
	if err != nil {
		return err
	}
	states := make([]model.StationState, len(req.Stations))
	for i, s := range req.Stations {
		if states[i], err = catalog.Complete(s); err != nil {
			return err
		}
	}
	ranked, err := ranking.Rank(user, req.VehicleType, states)
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		return fmt.Errorf("no stations in %s", recommendOpts.input)
	}
	return export.WriteRanking(cmd.OutOrStdout(), format, ranked)
}

// userPosition applies --lat and --lon over the file's user position. Without
// a position in the file both flags are required.
func userPosition(cmd *cobra.Command, fromFile *geo.Point) (geo.Point, error) {
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	if fromFile == nil && !(latSet && lonSet) {
		return geo.Point{}, fmt.Errorf("%s has no user position, pass --lat and --lon", recommendOpts.input)
	}
	var p geo.Point
	if fromFile != nil {
		p = *fromFile
	}
	if latSet {
		p.Lat = recommendOpts.lat
	}
	if lonSet {
		p.Lon = recommendOpts.lon
	}
	return p, nil
}
