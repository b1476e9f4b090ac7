package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a shotpull.yaml configuration file.
func Load(path string) (*Config, error) {
	cfg, err := parse(path)
	if err != nil {
		return nil, err
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

func parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d; only version 1 is supported", cfg.Version))
	}

	if cfg.Package != "" && cfg.APK != "" {
		errs = append(errs, "'package' and 'apk' are mutually exclusive; use one or the other")
	}

	errs = append(errs, validateDevice(cfg.Device)...)

	if cfg.NoPull && cfg.WorkDir == "" {
		errs = append(errs, "'no_pull' requires 'work_dir'; there is nothing to read the screenshots from")
	}

	if cfg.FilterNameRegex != "" {
		if _, err := regexp.Compile(cfg.FilterNameRegex); err != nil {
			errs = append(errs, fmt.Sprintf("invalid filter_name_regex: %v", err))
		}
	}

	return errs
}

func validateDevice(d Device) []string {
	var errs []string

	switch d.Transport {
	case "", "adb":
		selectors := 0
		for _, set := range []bool{d.Serial != "", d.Emulator, d.USB} {
			if set {
				selectors++
			}
		}
		if selectors > 1 {
			errs = append(errs, "device: 'serial', 'emulator' and 'usb' are mutually exclusive")
		}
		if d.Root != "" {
			errs = append(errs, "device: 'root' only applies to the local transport")
		}
	case "local":
		if d.Root == "" {
			errs = append(errs, "device: transport 'local' requires 'root'; add 'root: ./path/to/device' to the device section")
		}
	default:
		errs = append(errs, fmt.Sprintf("device: unknown transport '%s'; must be one of: adb, local", d.Transport))
	}

	return errs
}
