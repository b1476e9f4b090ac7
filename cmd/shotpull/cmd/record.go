package cmd

import (
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record [package]",
	Short: "Pull screenshots and save them as the new baseline",
	Long: `Pulls the screenshots like 'pull', then replaces the record directory with
the stitched screenshots. Everything previously in the record directory is
removed first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd, args, rf)
		if err != nil {
			return err
		}

		result, err := client.Record(cmd.Context())
		if err != nil {
			return err
		}

		rec := result.Record
		for _, name := range rec.Recorded {
			detail("✓ %s", name)
		}
		info("Recorded %d screenshot(s) to %s", len(rec.Recorded), rec.Dir)
		info("Report: %s", result.ReportPath)
		return nil
	},
}

func init() {
	addRunFlags(recordCmd)
	rootCmd.AddCommand(recordCmd)
}
