// Package shotpull provides the public Go library API for shotpull.
//
// shotpull pulls the screenshots an Android instrumentation run captured,
// renders them as an HTML report and records them as a baseline or verifies
// them against one.
//
// # Basic Usage
//
//	client, err := shotpull.New(shotpull.Options{
//	    ConfigPath: "shotpull.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Pull and render the report
//	result, err := client.Pull(ctx)
//
//	// Compare against the recorded baseline
//	result, err = client.Verify(ctx)
//	var verr *shotpull.VerifyError
//	if errors.As(err, &verr) {
//	    // verr.Failures lists every mismatch
//	}
package shotpull

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bianoble/shotpull/internal/config"
	"github.com/bianoble/shotpull/internal/devicename"
	"github.com/bianoble/shotpull/internal/engine"
	"github.com/bianoble/shotpull/internal/transport"
)

// Options configures a shotpull client.
type Options struct {
	// ConfigPath is the project config file. Default: "shotpull.yaml".
	// A missing file means defaults.
	ConfigPath string

	// Config is used as-is instead of loading ConfigPath when non-nil.
	Config *Config

	// NoInherit skips the user-level config layer.
	NoInherit bool

	// Logger receives engine diagnostics. Nil discards them.
	Logger *slog.Logger

	// Getenv locates the Android SDK. Default: os.Getenv.
	Getenv func(string) string

	// Runner executes adb and aapt. Default: os/exec.
	Runner Runner
}

// Client is the main entry point for the shotpull library.
type Client struct {
	cfg      *config.Config
	layers   []config.ConfigLayerInfo
	registry *transport.Registry
	logger   *slog.Logger
	getenv   func(string) string
	runner   Runner
}

// New creates a new shotpull Client.
func New(opts Options) (*Client, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Runner == nil {
		opts.Runner = transport.ExecRunner{}
	}

	c := &Client{
		registry: transport.DefaultRegistry(),
		logger:   opts.Logger,
		getenv:   opts.Getenv,
		runner:   opts.Runner,
	}

	if opts.Config != nil {
		if errs := config.Validate(opts.Config); len(errs) > 0 {
			return nil, &config.ValidationError{Errors: errs}
		}
		c.cfg = opts.Config
		return c, nil
	}

	if opts.ConfigPath == "" {
		opts.ConfigPath = config.FileName
	}
	cfg, layers, err := config.LoadLayered(config.DiscoverOptions{
		ProjectPath: opts.ConfigPath,
		NoInherit:   opts.NoInherit || config.EnvNoInherit(opts.Getenv),
	})
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.layers = layers
	return c, nil
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	return *c.cfg
}

// Layers reports which config files were found and loaded.
func (c *Client) Layers() []config.ConfigLayerInfo {
	return c.layers
}

// SDK returns the Android SDK directory in use, or "".
func (c *Client) SDK() string {
	return config.ResolveSDK(c.cfg, c.getenv)
}

// Transport opens the transport the config selects.
func (c *Client) Transport() (Transport, error) {
	d := c.cfg.Device
	kind := d.Transport
	if kind == "" {
		kind = transport.KindADB
	}
	return c.registry.Open(kind, transport.Options{
		SDK:             c.SDK(),
		Serial:          d.Serial,
		Emulator:        d.Emulator,
		USB:             d.USB,
		Runner:          c.runner,
		Root:            d.Root,
		ExternalStorage: d.ExternalStorage,
	})
}

// Pull pulls the screenshots and renders the report.
func (c *Client) Pull(ctx context.Context) (*RunResult, error) {
	return c.run(ctx, false, false)
}

// Record pulls the screenshots and writes them as the new baseline.
func (c *Client) Record(ctx context.Context) (*RunResult, error) {
	return c.run(ctx, true, false)
}

// Verify pulls the screenshots and compares them against the baseline.
// Mismatches are reported as a *VerifyError.
func (c *Client) Verify(ctx context.Context) (*RunResult, error) {
	return c.run(ctx, false, true)
}

func (c *Client) run(ctx context.Context, record, verify bool) (*RunResult, error) {
	cfg := c.cfg
	opts := RunOptions{
		Package:         cfg.Package,
		WorkDir:         cfg.WorkDir,
		NoPull:          cfg.NoPull,
		Bundle:          cfg.Bundle,
		FilterNameRegex: cfg.FilterNameRegex,
		Record:          record,
		Verify:          verify,
		RecordDir:       cfg.RecordDir,
		FailureDir:      cfg.FailureDir,
		MultipleDevices: cfg.MultipleDevices,
	}
	if opts.RecordDir == "" {
		opts.RecordDir = config.DefaultRecordDir
	}

	p := &engine.Pipeline{Logger: c.logger}
	if !cfg.NoPull || cfg.MultipleDevices {
		tr, err := c.Transport()
		if err != nil {
			return nil, err
		}
		p.Transport = tr
		if adb, ok := tr.(*transport.ADB); ok {
			p.Devices = &devicename.Calculator{Device: adb}
		}
	}

	if !cfg.NoPull {
		pkg, err := engine.ResolvePackage(ctx, c.runner, c.SDK(), cfg.Package, cfg.APK)
		if err != nil {
			return nil, err
		}
		opts.Package = pkg
	}

	return p.Run(ctx, opts)
}

// Describe returns a one-line summary of a run for logs.
func Describe(r *RunResult) string {
	switch {
	case r == nil:
		return "no run"
	case r.Record != nil:
		return fmt.Sprintf("recorded %d screenshot(s) to %s", len(r.Record.Recorded), r.Record.Dir)
	case r.Verify != nil:
		return fmt.Sprintf("verified %d screenshot(s) against %s, %d failure(s)", len(r.Verify.Matched)+len(r.Verify.Failures), r.Verify.Dir, len(r.Verify.Failures))
	default:
		return fmt.Sprintf("pulled %d screenshot(s) into %s", r.Screenshots, r.WorkDir)
	}
}
