package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/auroralab/allsky/pkg/mission"
	"github.com/auroralab/allsky/pkg/stations"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var stationsArray string

//nolint:gochecknoglobals // Cobra commands are typically global
var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the known stations of a camera array",
	RunE:  runStations,
}

func init() {
	rootCmd.AddCommand(stationsCmd)

	stationsCmd.Flags().StringVar(&stationsArray, "array", "", "camera array: REGO or THEMIS (required)")
	_ = stationsCmd.MarkFlagRequired("array")
}

func runStations(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	m, err := mission.Parse(stationsArray)
	if err != nil {
		return err
	}

	table, err := stations.LoadTable()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "station\tlatitude\tlongitude\tlocation")
	for _, st := range table.ForArray(m.String()) {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\n", st.Code, st.Latitude, st.Longitude, st.Location)
	}

	return w.Flush()
}
