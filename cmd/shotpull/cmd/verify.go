package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/bianoble/shotpull/pkg/shotpull"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [package]",
	Short: "Pull screenshots and compare them against the baseline",
	Long: `Pulls the screenshots like 'pull', stitches them, and compares each one with
the image of the same name in the record directory.

Without --failure-dir the first mismatch aborts the run. With it, every
screenshot is checked and each mismatch leaves {name}_expected.png,
{name}_actual.png and, when the sizes allow it, {name}_diff.png with the
changed region outlined. Exit 0 if all screenshots match; non-zero otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd, args, rf)
		if err != nil {
			return err
		}

		result, err := client.Verify(cmd.Context())
		var verr *shotpull.VerifyError
		if err != nil && !errors.As(err, &verr) {
			return err
		}
		if result == nil || result.Verify == nil {
			return err
		}

		printVerify(result.Verify)
		if verr != nil {
			return verr
		}

		info("\nAll %d screenshot(s) match %s.", len(result.Verify.Matched), result.Verify.Dir)
		return nil
	},
}

func printVerify(r *shotpull.VerifyResult) {
	names := append([]string{}, r.Matched...)
	for _, f := range r.Failures {
		names = append(names, f.Name)
	}
	w := nameWidth(names)

	for _, name := range r.Matched {
		info("  ✓ %s  ok", pad(name, w))
	}
	for _, f := range r.Failures {
		reason := f.Reason
		if reason == "" && f.Result != nil {
			reason = f.Result.String()
		}
		info("  ✗ %s  %s", pad(f.Name, w), reason)
		if f.Diff != "" {
			detail("  diff:     %s", f.Diff)
		}
		if f.Actual != "" {
			detail("  actual:   %s", f.Actual)
		}
	}
	if r.FailureDir != "" && len(r.Failures) > 0 {
		errorf("failure artifacts written to %s", r.FailureDir)
	}
}

func init() {
	addRunFlags(verifyCmd)
	verifyCmd.Flags().StringVar(&rf.failureDir, "failure-dir", "", "collect every mismatch here instead of stopping at the first")
	rootCmd.AddCommand(verifyCmd)
}
