package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// initTemplate is the default shotpull.yaml scaffold.
const initTemplate = `# shotpull configuration
version: 1

# Application package whose screenshots are pulled. Either this or apk.
package: com.example.app.test
# apk: app/build/outputs/apk/androidTest/debug/app-debug-androidTest.apk

# Android SDK. Defaults to $ANDROID_SDK, $ANDROID_HOME or $ANDROID_SDK_ROOT.
# sdk: ~/Library/Android/sdk

device:
  transport: adb
  # Pick at most one of serial, emulator and usb.
  # serial: emulator-5554
  # emulator: true
  # usb: true

# Baseline directory used by record and verify.
record_dir: screenshots

# Collect every mismatch here instead of stopping at the first.
# failure_dir: build/screenshot-failures

# Keep a separate baseline for each device configuration.
# multiple_devices: true

# Pull the run directory in one transfer.
# bundle: true

# Keep only screenshots whose name matches.
# filter_name_regex: '^com\.example\.app\.login\.'
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter shotpull.yaml configuration",
	Long: `Creates a shotpull.yaml file in the current directory with a commented
template covering the package, device selection and baseline directories.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := configPath
		if !filepath.IsAbs(outPath) {
			abs, err := filepath.Abs(outPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			outPath = abs
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Set package to your instrumentation test package")
		info("  2. Run 'shotpull record' to save a baseline")
		info("  3. Run 'shotpull verify' in CI to catch regressions")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
