package engine

import (
	"github.com/bianoble/shotpull/internal/aapt"
	"github.com/bianoble/shotpull/internal/config"
	"github.com/bianoble/shotpull/internal/transport"
)

// ConfigLayerStatus describes a config layer's load status for display.
type ConfigLayerStatus struct {
	Level  string // "user", "project"
	Path   string
	Loaded bool
}

// InfoResult holds tool information for the info command.
type InfoResult struct {
	Version     string
	ConfigChain []ConfigLayerStatus
	SDK         string
	ADB         string
	AAPT        string
	AAPTError   string
	Transport   string
	Package     string
	RecordDir   string
	FailureDir  string
}

// Info gathers tool information. getenv supplies the environment used to
// locate the SDK.
func Info(version string, cfg *config.Config, layers []config.ConfigLayerInfo, getenv func(string) string) *InfoResult {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &InfoResult{
		Version:    version,
		SDK:        config.ResolveSDK(cfg, getenv),
		Transport:  cfg.Device.Transport,
		Package:    cfg.Package,
		RecordDir:  cfg.RecordDir,
		FailureDir: cfg.FailureDir,
	}
	for _, l := range layers {
		r.ConfigChain = append(r.ConfigChain, ConfigLayerStatus{
			Level:  string(l.Level),
			Path:   l.Path,
			Loaded: l.Loaded,
		})
	}

	r.ADB = transport.FindADB(r.SDK)
	bin, err := aapt.FindBinary(r.SDK)
	if err != nil {
		r.AAPTError = err.Error()
	} else {
		r.AAPT = bin
	}
	return r
}
