package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/bianoble/shotpull/internal/manifest"
	"github.com/bianoble/shotpull/internal/report"
	"github.com/bianoble/shotpull/internal/sandbox"
	"github.com/bianoble/shotpull/internal/transport"
)

// DeviceNamer describes the connected device for per-device baselines.
type DeviceNamer interface {
	Name(ctx context.Context) (string, error)
}

// Pipeline runs pull, report and record or verify in sequence.
type Pipeline struct {
	Transport transport.Transport
	Devices   DeviceNamer
	Logger    *slog.Logger
}

// RunOptions configures one run of the pipeline.
type RunOptions struct {
	Package string

	// WorkDir holds the pulled files and the report. Empty means a fresh
	// directory under os.TempDir().
	WorkDir string

	// NoPull reuses the files already in WorkDir.
	NoPull          bool
	Bundle          bool
	FilterNameRegex string

	Record          bool
	Verify          bool
	RecordDir       string
	FailureDir      string
	MultipleDevices bool
}

// RunResult holds the outcome of a pipeline run.
type RunResult struct {
	WorkDir     string
	ReportPath  string
	Screenshots int
	Pull        *PullResult
	Record      *RecordResult
	Verify      *VerifyResult
}

// Validate reports options that cannot work together.
func (p *Pipeline) Validate(opts RunOptions) error {
	var problems []string
	if opts.NoPull && opts.WorkDir == "" {
		problems = append(problems, "no-pull requires a work directory to read the screenshots from")
	}
	if opts.Record && opts.Verify {
		problems = append(problems, "record and verify are mutually exclusive")
	}
	if !opts.NoPull {
		if opts.Package == "" {
			problems = append(problems, "a package (or an apk to read it from) is required to pull")
		}
		if p.Transport == nil {
			problems = append(problems, "no transport configured to pull from")
		}
	}
	if (opts.Record || opts.Verify) && opts.RecordDir == "" {
		problems = append(problems, "record and verify need a record directory")
	}
	if opts.MultipleDevices && p.Devices == nil {
		problems = append(problems, "multiple devices needs a device to name")
	}
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// Run executes the pipeline.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := p.Validate(opts); err != nil {
		return nil, err
	}
	log := loggerOr(p.Logger)

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = NewWorkDir()
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	result := &RunResult{WorkDir: workDir}
	log.Debug("work dir", "path", workDir)

	if err := report.CopyAssets(workDir); err != nil {
		return nil, err
	}

	if !opts.NoPull {
		pe := &PullEngine{Transport: p.Transport, Logger: p.Logger}
		pr, err := pe.Pull(ctx, PullOptions{
			Package:         opts.Package,
			WorkDir:         workDir,
			FilterNameRegex: opts.FilterNameRegex,
			Bundle:          opts.Bundle,
		})
		if err != nil {
			return nil, err
		}
		result.Pull = pr
	}

	var manifestPath string
	if result.Pull != nil {
		manifestPath = result.Pull.ManifestPath
	} else {
		var err error
		if manifestPath, err = FindManifest(workDir); err != nil {
			return nil, err
		}
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	result.Screenshots = len(m.Screenshots)

	result.ReportPath, err = report.Generate(workDir, m)
	if err != nil {
		return nil, err
	}

	if !opts.Record && !opts.Verify {
		return result, nil
	}

	recordDir := opts.RecordDir
	if opts.MultipleDevices {
		name, err := p.Devices.Name(ctx)
		if err != nil {
			return nil, fmt.Errorf("naming device: %w", err)
		}
		if err := sandbox.ValidateName(name); err != nil {
			return nil, fmt.Errorf("device name: %w", err)
		}
		recordDir = filepath.Join(recordDir, name)
		log.Info("per-device baseline", "device", name, "dir", recordDir)
	}

	if opts.Record {
		re := &RecordEngine{Logger: p.Logger}
		result.Record, err = re.Record(ctx, m, workDir, recordDir)
		return result, err
	}

	ve := &VerifyEngine{Logger: p.Logger}
	result.Verify, err = ve.Verify(ctx, m, workDir, recordDir, VerifyOptions{FailureDir: opts.FailureDir})
	return result, err
}

// NewWorkDir returns a fresh, unique directory path under os.TempDir().
// It is not created.
func NewWorkDir() string {
	return filepath.Join(os.TempDir(), "screenshots-"+ulid.Make().String())
}

// FindManifest returns the manifest in dir, preferring metadata.json over
// metadata.xml.
func FindManifest(dir string) (string, error) {
	for _, f := range []manifest.Format{manifest.FormatJSON, manifest.FormatXML} {
		p := filepath.Join(dir, f.FileName())
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no %s or %s in %s", manifest.FormatJSON.FileName(), manifest.FormatXML.FileName(), dir)
}
