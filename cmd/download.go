package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/auroralab/allsky/pkg/imager"
	"github.com/auroralab/allsky/pkg/timerange"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	downloadArray    string
	downloadStations string
	downloadStart    string
	downloadEnd      string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download image data in bulk without decoding it",
	Long: `Download fetches every hour of image data in the time range for the
requested stations (all known stations of the array by default) into the
local data directory. Files already present are not fetched again.`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadArray, "array", "", "camera array: REGO or THEMIS (required)")
	downloadCmd.Flags().StringVar(&downloadStations, "stations", "", "comma-separated station codes (default: all array stations)")
	downloadCmd.Flags().StringVar(&downloadStart, "start", "", "range start, free-form timestamp (required)")
	downloadCmd.Flags().StringVar(&downloadEnd, "end", "", "range end, free-form timestamp (required)")
	_ = downloadCmd.MarkFlagRequired("array")
	_ = downloadCmd.MarkFlagRequired("start")
	_ = downloadCmd.MarkFlagRequired("end")
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tr, err := timerange.Parse(downloadStart, downloadEnd)
	if err != nil {
		return err
	}

	im, err := imager.New(logger, cfg, downloadArray, splitStations(downloadStations), &tr)
	if err != nil {
		return err
	}

	if err := im.Download(cmd.Context(), nil); err != nil {
		return err
	}

	logger.WithField("data_dir", cfg.DataDir).Info("Download complete")

	return nil
}

func splitStations(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}

	return codes
}
