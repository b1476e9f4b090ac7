package cmd

import (
	"github.com/spf13/cobra"
)

var rf runFlags

// addRunFlags registers the flags pull, record and verify share.
func addRunFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&rf.apk, "apk", "", "read the package name from this APK instead of the argument")
	f.StringVar(&rf.sdk, "sdk", "", "Android SDK directory (default: $ANDROID_SDK, $ANDROID_HOME)")
	f.StringVar(&rf.tempDir, "temp-dir", "", "directory to pull into (default: a fresh temp dir)")
	f.BoolVar(&rf.noPull, "no-pull", false, "reuse screenshots already in --temp-dir")
	f.BoolVar(&rf.bundle, "bundle", false, "pull the run directory in one transfer")
	f.StringVar(&rf.filterNameRegex, "filter-name-regex", "", "keep only screenshots whose name matches")
	f.StringVar(&rf.recordDir, "record-dir", "", "baseline directory (default: screenshots)")
	f.BoolVar(&rf.multipleDevices, "multiple-devices", false, "keep a separate baseline per device configuration")
}
