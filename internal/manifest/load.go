package manifest

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/bianoble/shotpull/internal/sandbox"
)

// CorruptMetadataError is returned when a manifest exists but cannot be
// parsed. A truncated or empty manifest almost always means the test run
// was not finalized on the device.
type CorruptMetadataError struct {
	Path string
	Err  error
}

func (e *CorruptMetadataError) Error() string {
	return fmt.Sprintf("unable to parse metadata file %s: %v\n"+
		"this commonly happens if you did not call the run-completion hook "+
		"(ScreenshotRunner.onDestroy()) from your instrumentation", e.Path, e.Err)
}

func (e *CorruptMetadataError) Unwrap() error {
	return e.Err
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest %s is invalid:\n  - %s", e.Path, strings.Join(e.Errors, "\n  - "))
}

// Load reads, decodes and validates a manifest file.
func Load(path string) (*Manifest, error) {
	m, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	if errs := Validate(m); len(errs) > 0 {
		return nil, &ValidationError{Path: path, Errors: errs}
	}
	return m, nil
}

// decodeFile reads and decodes without semantic validation.
func decodeFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	format := DetectFormat(path, data)
	codec, err := CodecFor(format)
	if err != nil {
		return nil, err
	}

	screenshots, err := codec.Decode(data)
	if err != nil {
		return nil, &CorruptMetadataError{Path: path, Err: err}
	}
	return &Manifest{Format: format, Screenshots: screenshots}, nil
}

// Save writes a manifest in its own format using a temp file and rename.
func Save(path string, m *Manifest) error {
	codec, err := CodecFor(m.Format)
	if err != nil {
		return err
	}
	data, err := codec.Encode(m.Screenshots)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return sandbox.WriteAtomic(path, 0644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteEmpty writes a manifest with no screenshots.
func WriteEmpty(path string, format Format) error {
	return Save(path, &Manifest{Format: format})
}

// Filter rewrites the manifest at path in place, keeping only screenshots
// whose name matches nameRegex. An empty pattern keeps everything and
// leaves the file untouched. Returns the number of entries kept.
func Filter(path, nameRegex string) (int, error) {
	m, err := decodeFile(path)
	if err != nil {
		return 0, err
	}
	if nameRegex == "" {
		return len(m.Screenshots), nil
	}

	re, err := regexp.Compile(nameRegex)
	if err != nil {
		return 0, fmt.Errorf("invalid name filter %q: %w", nameRegex, err)
	}

	kept := m.Screenshots[:0]
	for _, s := range m.Screenshots {
		if re.MatchString(s.Name) {
			kept = append(kept, s)
		}
	}
	m.Screenshots = kept

	if err := Save(path, m); err != nil {
		return 0, fmt.Errorf("rewriting manifest %s: %w", path, err)
	}
	return len(kept), nil
}

// Count returns the number of screenshot entries in the manifest.
func Count(path string) (int, error) {
	m, err := decodeFile(path)
	if err != nil {
		return 0, err
	}
	return len(m.Screenshots), nil
}

// Validate checks a Manifest for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(m *Manifest) []string {
	var errs []string

	names := make(map[string]bool)
	for i, s := range m.Screenshots {
		prefix := fmt.Sprintf("screenshot[%d]", i)
		if s.Name != "" {
			prefix = fmt.Sprintf("screenshot '%s'", s.Name)
		}

		if err := sandbox.ValidateName(s.Name); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
		} else if names[s.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate screenshot name", prefix))
		} else {
			names[s.Name] = true
		}

		if !s.HasImage() {
			continue
		}
		if s.TileWidth < 1 || s.TileHeight < 1 {
			errs = append(errs, fmt.Sprintf("%s: tile grid %dx%d must be at least 1x1", prefix, s.TileWidth, s.TileHeight))
		}
	}

	return errs
}
