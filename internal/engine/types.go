package engine

import (
	"fmt"
	"strings"

	"github.com/bianoble/shotpull/internal/imagediff"
)

// PullResult holds the outcome of a pull operation.
type PullResult struct {
	WorkDir      string
	RemoteDir    string // "" when the device had no manifest
	ManifestPath string
	Screenshots  int
	Files        []string // local paths pulled, manifest excluded
}

// RecordResult holds the outcome of a record operation.
type RecordResult struct {
	Dir      string
	Recorded []string
}

// VerifyResult holds the outcome of a verify operation.
type VerifyResult struct {
	Dir        string
	Matched    []string
	Failures   []Failure
	FailureDir string
}

// Failure describes one screenshot that did not match its baseline.
type Failure struct {
	Name     string
	Expected string
	Actual   string
	Diff     string // "" when no artifact was written
	Result   *imagediff.Result
	Reason   string

	// Removed is set when Actual was assembled into verify's temp dir and
	// no longer exists. Set a failure dir to keep it.
	Removed bool
}

func (f Failure) String() string {
	reason := f.Reason
	if reason == "" && f.Result != nil {
		reason = f.Result.String()
	}
	msg := fmt.Sprintf("Image %s is not same as %s (%s)", f.Actual, f.Expected, reason)
	if f.Removed {
		msg += "; the actual image was not kept, set a failure dir to keep it"
	}
	return msg
}

// VerifyError reports every screenshot that failed verification.
type VerifyError struct {
	Failures []Failure
}

func (e *VerifyError) Error() string {
	lines := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		lines = append(lines, f.Name+": "+f.String())
	}
	return fmt.Sprintf("%d screenshot(s) did not match the recorded baseline:\n  - %s",
		len(e.Failures), strings.Join(lines, "\n  - "))
}

// Names returns the names of the failed screenshots.
func (e *VerifyError) Names() []string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.Name)
	}
	return names
}

// ConfigError reports run options that cannot work together. It is returned
// before anything touches the device or the disk.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid options:\n  - %s", strings.Join(e.Problems, "\n  - "))
}
