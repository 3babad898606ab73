package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auroralab/allsky/pkg/imager"
	"github.com/auroralab/allsky/pkg/timerange"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	loadArray    string
	loadStations string
	loadStart    string
	loadEnd      string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load frames for a time range and print data availability",
	Long: `Load downloads whatever is missing locally, decodes the image files
into frame sequences, and prints per-station frame counts and the
station-by-hour data availability table.`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringVar(&loadArray, "array", "", "camera array: REGO or THEMIS (required)")
	loadCmd.Flags().StringVar(&loadStations, "stations", "", "comma-separated station codes (default: all array stations)")
	loadCmd.Flags().StringVar(&loadStart, "start", "", "range start, free-form timestamp (required)")
	loadCmd.Flags().StringVar(&loadEnd, "end", "", "range end, free-form timestamp (required)")
	_ = loadCmd.MarkFlagRequired("array")
	_ = loadCmd.MarkFlagRequired("start")
	_ = loadCmd.MarkFlagRequired("end")
}

func runLoad(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tr, err := timerange.Parse(loadStart, loadEnd)
	if err != nil {
		return err
	}

	im, err := imager.New(logger, cfg, loadArray, splitStations(loadStations), &tr)
	if err != nil {
		return err
	}

	if err := im.Load(cmd.Context(), nil); err != nil {
		return err
	}

	for _, code := range im.StationCodes() {
		if data, ok := im.Data(code); ok {
			fmt.Printf("%s: %d frames\n", code, len(data.Frames))
		}
	}
	fmt.Print(im.Availability())

	return nil
}
