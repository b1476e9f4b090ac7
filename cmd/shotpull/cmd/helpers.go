package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/bianoble/shotpull/internal/config"
	"github.com/bianoble/shotpull/pkg/shotpull"
)

// Flags shared by pull, record and verify.
type runFlags struct {
	apk             string
	sdk             string
	tempDir         string
	noPull          bool
	bundle          bool
	filterNameRegex string
	recordDir       string
	failureDir      string
	multipleDevices bool
}

// loadLayered reads the user and project config files.
func loadLayered() (*config.Config, []config.ConfigLayerInfo, error) {
	cfg, layers, err := config.LoadLayered(config.DiscoverOptions{
		ProjectPath: configPath,
		NoInherit:   noInherit || config.EnvNoInherit(os.Getenv),
	})
	if err != nil {
		return nil, layers, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, layers, nil
}

// flagConfig returns the config layer the command line describes.
func flagConfig(args []string, f runFlags) *config.Config {
	cfg := &config.Config{
		APK:             f.apk,
		SDK:             f.sdk,
		WorkDir:         f.tempDir,
		NoPull:          f.noPull,
		Bundle:          f.bundle,
		FilterNameRegex: f.filterNameRegex,
		RecordDir:       f.recordDir,
		FailureDir:      f.failureDir,
		MultipleDevices: f.multipleDevices,
		Device: config.Device{
			Transport: flagTransport,
			Serial:    flagSerial,
			Emulator:  flagEmulator,
			USB:       flagUSB,
			Root:      flagRoot,
		},
	}
	if len(args) > 0 {
		cfg.Package = args[0]
	}
	return cfg
}

// effectiveConfig overlays the command line on the config files and
// validates the result. changed reports which flags were set explicitly;
// those booleans win in both directions, so --bundle=false turns off a
// bundle: true from the file. It may be nil.
func effectiveConfig(changed func(name string) bool, args []string, f runFlags) (*config.Config, error) {
	base, _, err := loadLayered()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Merge(base, flagConfig(args, f))
	if err != nil {
		return nil, err
	}
	if changed != nil {
		for _, b := range []struct {
			flag string
			dst  *bool
			val  bool
		}{
			{"no-pull", &cfg.NoPull, f.noPull},
			{"bundle", &cfg.Bundle, f.bundle},
			{"multiple-devices", &cfg.MultipleDevices, f.multipleDevices},
		} {
			if changed(b.flag) {
				*b.dst = b.val
			}
		}
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, &config.ValidationError{Errors: errs}
	}
	return cfg, nil
}

// newClient builds a library client for the effective config.
func newClient(cmd *cobra.Command, args []string, f runFlags) (*shotpull.Client, error) {
	cfg, err := effectiveConfig(cmd.Flags().Changed, args, f)
	if err != nil {
		return nil, err
	}
	return shotpull.New(shotpull.Options{Config: cfg, Logger: newLogger()})
}

// newLogger returns a stderr logger in verbose mode and a silent one
// otherwise.
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// pad right-pads s to w terminal columns. Test names may hold wide runes.
func pad(s string, w int) string {
	return runewidth.FillRight(s, w)
}

// nameWidth returns the column width of the widest name, capped at 60.
func nameWidth(names []string) int {
	w := 0
	for _, n := range names {
		if nw := runewidth.StringWidth(n); nw > w {
			w = nw
		}
	}
	return min(w, 60)
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
