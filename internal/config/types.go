package config

// Config represents the shotpull.yaml configuration file.
type Config struct {
	Version int    `yaml:"version"`
	Package string `yaml:"package,omitempty"`
	APK     string `yaml:"apk,omitempty"`
	SDK     string `yaml:"sdk,omitempty"`
	Device  Device `yaml:"device,omitempty"`

	WorkDir         string `yaml:"work_dir,omitempty"`
	NoPull          bool   `yaml:"no_pull,omitempty"`
	Bundle          bool   `yaml:"bundle,omitempty"`
	FilterNameRegex string `yaml:"filter_name_regex,omitempty"`

	RecordDir       string `yaml:"record_dir,omitempty"`
	FailureDir      string `yaml:"failure_dir,omitempty"`
	MultipleDevices bool   `yaml:"multiple_devices,omitempty"`
}

// Device selects the device screenshots are pulled from.
type Device struct {
	Transport string `yaml:"transport,omitempty"` // "adb", "local"

	// adb
	Serial   string `yaml:"serial,omitempty"`
	Emulator bool   `yaml:"emulator,omitempty"`
	USB      bool   `yaml:"usb,omitempty"`

	// local
	Root            string `yaml:"root,omitempty"`
	ExternalStorage string `yaml:"external_storage,omitempty"`
}

// DefaultRecordDir is where baselines live when record_dir is unset.
const DefaultRecordDir = "screenshots"

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Version:   1,
		Device:    Device{Transport: "adb"},
		RecordDir: DefaultRecordDir,
	}
}
