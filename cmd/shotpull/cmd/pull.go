package cmd

import (
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull [package]",
	Short: "Pull screenshots from the device and render the report",
	Long: `Finds the screenshot manifest the test run left on the device, pulls it and
every file it references into a work directory, and writes index.html there.

The package may be given as an argument, with --apk, or in shotpull.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd, args, rf)
		if err != nil {
			return err
		}

		result, err := client.Pull(cmd.Context())
		if err != nil {
			return err
		}

		if result.Pull != nil {
			detail("manifest: %s", result.Pull.ManifestPath)
			detail("files:    %d", len(result.Pull.Files))
		}
		info("Pulled %d screenshot(s) into %s", result.Screenshots, result.WorkDir)
		info("Report: %s", result.ReportPath)
		return nil
	},
}

func init() {
	addRunFlags(pullCmd)
	rootCmd.AddCommand(pullCmd)
}
