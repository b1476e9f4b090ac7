package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bianoble/shotpull/internal/imagediff"
	"github.com/bianoble/shotpull/internal/manifest"
	"github.com/bianoble/shotpull/internal/sandbox"
	"github.com/bianoble/shotpull/internal/tiles"
)

// VerifyEngine compares assembled screenshots against the recorded baseline.
type VerifyEngine struct {
	Logger *slog.Logger
}

// VerifyOptions configures a verify operation.
type VerifyOptions struct {
	// FailureDir receives {name}_expected.png, {name}_actual.png and
	// {name}_diff.png for every mismatch. When empty, Verify stops at the
	// first mismatch and writes nothing; the reported actual path is in a
	// temp dir that is gone by the time Verify returns.
	FailureDir string
}

// Verify assembles every screenshot of m into a temporary directory and
// compares it to {recordDir}/{name}.png. Any mismatch yields a *VerifyError
// alongside the result.
func (e *VerifyEngine) Verify(ctx context.Context, m *manifest.Manifest, tileDir, recordDir string, opts VerifyOptions) (*VerifyResult, error) {
	log := loggerOr(e.Logger)

	tmp, err := os.MkdirTemp("", "shotpull-verify-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	if opts.FailureDir != "" {
		if err := os.MkdirAll(opts.FailureDir, 0755); err != nil {
			return nil, fmt.Errorf("creating failure dir: %w", err)
		}
	}

	result := &VerifyResult{Dir: recordDir, FailureDir: opts.FailureDir}
	for _, s := range m.Sorted() {
		if !s.HasImage() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		actual, err := tiles.AssembleTo(s, tileDir, tmp)
		if err != nil {
			return nil, err
		}
		expected := filepath.Join(recordDir, s.Name+".png")

		f, err := e.check(s.Name, expected, actual, opts.FailureDir)
		if err != nil {
			return nil, err
		}
		if f == nil {
			log.Debug("match", "name", s.Name)
			result.Matched = append(result.Matched, s.Name)
			continue
		}

		log.Info("mismatch", "name", s.Name, "reason", f.String())
		result.Failures = append(result.Failures, *f)
		if opts.FailureDir == "" {
			return result, &VerifyError{Failures: result.Failures}
		}
	}

	if len(result.Failures) > 0 {
		return result, &VerifyError{Failures: result.Failures}
	}
	return result, nil
}

// check compares one screenshot. It returns nil on a match. With a failure
// dir the returned Failure points at the copies written there.
func (e *VerifyEngine) check(name, expected, actual, failureDir string) (*Failure, error) {
	if _, err := os.Stat(expected); errors.Is(err, fs.ErrNotExist) {
		f := &Failure{Name: name, Expected: expected, Actual: actual, Reason: "no baseline recorded", Removed: failureDir == ""}
		if failureDir != "" {
			f.Actual = filepath.Join(failureDir, name+"_actual.png")
			if err := sandbox.CopyFile(actual, f.Actual); err != nil {
				return nil, fmt.Errorf("copying %s: %w", name, err)
			}
		}
		return f, nil
	}

	var opts imagediff.Options
	if failureDir != "" {
		opts.DiffPath = filepath.Join(failureDir, name+"_diff.png")
	}
	res, err := imagediff.Compare(expected, actual, opts)
	if err != nil {
		return nil, fmt.Errorf("comparing %s: %w", name, err)
	}
	if res.Matched() {
		return nil, nil
	}

	f := &Failure{Name: name, Expected: expected, Actual: actual, Diff: res.DiffPath, Result: res}
	if failureDir == "" {
		f.Removed = true
		return f, nil
	}

	f.Expected = filepath.Join(failureDir, name+"_expected.png")
	f.Actual = filepath.Join(failureDir, name+"_actual.png")
	if err := sandbox.CopyFile(expected, f.Expected); err != nil {
		return nil, fmt.Errorf("copying expected %s: %w", name, err)
	}
	if err := sandbox.CopyFile(actual, f.Actual); err != nil {
		return nil, fmt.Errorf("copying actual %s: %w", name, err)
	}
	return f, nil
}
