package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bianoble/shotpull/internal/engine"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show configuration and the Android tools shotpull will use",
	Long: `Displays the shotpull version, the config files consulted, the Android SDK,
the adb and aapt binaries found in it, and the effective device and baseline
settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, layers, err := loadLayered()
		if err != nil {
			errorf("%v", err)
			cfg = nil // fall back to defaults
		}

		result := engine.Info(version, cfg, layers, os.Getenv)

		fmt.Printf("shotpull %s\n", result.Version)
		if len(result.ConfigChain) > 0 {
			fmt.Println("  config chain:")
			for _, layer := range result.ConfigChain {
				status := "not found"
				if layer.Loaded {
					status = "loaded"
				}
				fmt.Printf("    %-10s %s (%s)\n", layer.Level+":", layer.Path, status)
			}
		}

		fmt.Printf("  sdk:           %s\n", orNone(result.SDK))
		fmt.Printf("  adb:           %s\n", result.ADB)
		if result.AAPTError != "" {
			fmt.Printf("  aapt:          (%s)\n", result.AAPTError)
		} else {
			fmt.Printf("  aapt:          %s\n", result.AAPT)
		}
		fmt.Printf("  transport:     %s\n", result.Transport)
		fmt.Printf("  package:       %s\n", orNone(result.Package))
		fmt.Printf("  record dir:    %s\n", result.RecordDir)
		fmt.Printf("  failure dir:   %s\n", orNone(result.FailureDir))
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
