package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forcelab/stepsim/datarecording"
	"github.com/forcelab/stepsim/write"
)

var inspectFlags struct {
	table string
	limit int
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <output.sqlite3>",
	Short: "Print the quantity table recorded by a previous run.",
	Args:  cobra.ExactArgs(1),
	RunE:  inspectOutput,
}

var framesCmd = &cobra.Command{
	Use:   "frames <trajectory-file>",
	Short: "Print the frames stored in a trajectory file.",
	Args:  cobra.ExactArgs(1),
	RunE:  inspectFrames,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFlags.table, "table", "quantities",
		"name of the table to print")
	inspectCmd.Flags().IntVar(&inspectFlags.limit, "limit", 0,
		"maximum number of rows to print, 0 for all")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(framesCmd)
}

type quantityRow struct {
	Timestep      uint64
	KineticEnergy float64
	MomentumX     float64
	MomentumY     float64
	MomentumZ     float64
	Volume        float64
}

func inspectOutput(cmd *cobra.Command, args []string) error {
	reader := datarecording.NewReader(args[0])
	defer reader.Close()

	reader.MapTable(inspectFlags.table, quantityRow{})

	results, total, err := reader.Query(
		cmd.Context(), inspectFlags.table,
		datarecording.QueryParams{
			OrderBy: "Timestep ASC",
			Limit:   inspectFlags.limit,
		})
	if err != nil {
		return err
	}

	fmt.Printf("%-12s %-14s %-12s %-12s %-12s %-12s\n",
		"timestep", "kinetic", "px", "py", "pz", "volume")

	for _, r := range results {
		row := r.(*quantityRow)
		fmt.Printf("%-12d %-14.6g %-12.6g %-12.6g %-12.6g %-12.6g\n",
			row.Timestep, row.KineticEnergy,
			row.MomentumX, row.MomentumY, row.MomentumZ, row.Volume)
	}

	if len(results) < total {
		fmt.Printf("(%d of %d rows)\n", len(results), total)
	}

	return nil
}

func inspectFrames(_ *cobra.Command, args []string) error {
	frames, err := write.ReadTrajectoryFile(args[0])
	if err != nil {
		return err
	}

	for _, f := range frames {
		fmt.Printf("timestep %d: %d particles\n",
			f.Timestep, len(f.Position))
	}

	fmt.Printf("%d frames\n", len(frames))

	return nil
}
