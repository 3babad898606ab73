package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auroralab/allsky/pkg/export"
	"github.com/auroralab/allsky/pkg/imager"
	"github.com/auroralab/allsky/pkg/timerange"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	exportArray   string
	exportStation string
	exportStart   string
	exportEnd     string
	exportOut     string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one station's frames as a PNG sequence",
	Long: `Export loads a single station over a time range and writes the decoded
frames as numbered 16-bit grayscale PNGs, ready for downstream movie
encoding or inspection.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportArray, "array", "", "camera array: REGO or THEMIS (required)")
	exportCmd.Flags().StringVar(&exportStation, "station", "", "station code (required)")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "range start, free-form timestamp (required)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "range end, free-form timestamp (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "frames", "output directory")
	_ = exportCmd.MarkFlagRequired("array")
	_ = exportCmd.MarkFlagRequired("station")
	_ = exportCmd.MarkFlagRequired("start")
	_ = exportCmd.MarkFlagRequired("end")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tr, err := timerange.Parse(exportStart, exportEnd)
	if err != nil {
		return err
	}

	im, err := imager.New(logger, cfg, exportArray, []string{exportStation}, &tr)
	if err != nil {
		return err
	}

	if err := im.Load(cmd.Context(), nil); err != nil {
		return err
	}

	data, ok := im.Data(exportStation)
	if !ok {
		return fmt.Errorf("no data loaded for station %s", exportStation)
	}

	paths, err := export.WriteSequence(logger, exportOut, data.Frames)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d frames to %s\n", len(paths), exportOut)

	return nil
}
