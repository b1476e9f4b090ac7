package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	noInherit  bool
	verbose    bool
	quiet      bool
)

// Device selection flags, shared by every command that talks to a device.
var (
	flagSerial    string
	flagEmulator  bool
	flagUSB       bool
	flagTransport string
	flagRoot      string
)

var rootCmd = &cobra.Command{
	Use:   "shotpull",
	Short: "Pull, record and verify Android screenshot tests",
	Long: `shotpull pulls the screenshots an Android instrumentation run captured on a
device, renders them as an HTML report, and records them as a baseline or
verifies them against one. Tiled screenshots are stitched back together and
mismatches are written out with the region that changed outlined in red.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shotpull %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "shotpull.yaml", "path to config file")
	pf.BoolVar(&noInherit, "no-inherit", false, "ignore the user-level config file")
	pf.BoolVar(&verbose, "verbose", false, "detailed output")
	pf.BoolVar(&quiet, "quiet", false, "minimal output (errors only)")

	pf.StringVarP(&flagSerial, "serial", "s", "", "use the device with the given serial number")
	pf.BoolVarP(&flagEmulator, "emulator", "e", false, "use the only running emulator")
	pf.BoolVarP(&flagUSB, "usb", "d", false, "use the only USB-connected device")
	pf.StringVar(&flagTransport, "transport", "", "device transport: adb or local")
	pf.StringVar(&flagRoot, "device-root", "", "directory standing in for the device filesystem (local transport)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
