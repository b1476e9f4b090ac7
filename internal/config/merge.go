package config

import "fmt"

// Merge combines two configs where overlay takes precedence over base.
//   - version: must agree if both declare it (non-zero); fatal error on mismatch
//   - strings: a non-empty overlay value wins
//   - booleans: true in either layer wins
//   - device: merged field by field; setting a device selector in the
//     overlay clears the base selectors so -s does not combine with -e
func Merge(base, overlay *Config) (*Config, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}

	result := *base

	if err := mergeVersion(base.Version, overlay.Version, &result.Version); err != nil {
		return nil, err
	}

	mergeString(&result.Package, overlay.Package)
	mergeString(&result.APK, overlay.APK)
	if overlay.Package != "" {
		result.APK = ""
	} else if overlay.APK != "" {
		result.Package = ""
	}
	mergeString(&result.SDK, overlay.SDK)
	mergeString(&result.WorkDir, overlay.WorkDir)
	mergeString(&result.FilterNameRegex, overlay.FilterNameRegex)
	mergeString(&result.RecordDir, overlay.RecordDir)
	mergeString(&result.FailureDir, overlay.FailureDir)

	result.NoPull = base.NoPull || overlay.NoPull
	result.Bundle = base.Bundle || overlay.Bundle
	result.MultipleDevices = base.MultipleDevices || overlay.MultipleDevices

	result.Device = mergeDevice(base.Device, overlay.Device)

	return &result, nil
}

// MergeAll merges multiple configs in order (lowest precedence first).
// Returns an error if any version mismatch is found.
func MergeAll(configs []*Config) (*Config, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no configs to merge")
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		var err error
		result, err = Merge(result, configs[i])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func mergeVersion(base, overlay int, out *int) error {
	switch {
	case base == 0 && overlay == 0:
		*out = 0 // neither declares; validation will catch this
	case base == 0:
		*out = overlay
	case overlay == 0:
		*out = base
	case base == overlay:
		*out = base
	default:
		return fmt.Errorf("config version mismatch: one layer declares version %d, another declares version %d; all config layers must agree on version", base, overlay)
	}
	return nil
}

func mergeString(dst *string, overlay string) {
	if overlay != "" {
		*dst = overlay
	}
}

func mergeDevice(base, overlay Device) Device {
	result := base
	mergeString(&result.Transport, overlay.Transport)
	mergeString(&result.Root, overlay.Root)
	mergeString(&result.ExternalStorage, overlay.ExternalStorage)

	if overlay.Serial != "" || overlay.Emulator || overlay.USB {
		result.Serial = overlay.Serial
		result.Emulator = overlay.Emulator
		result.USB = overlay.USB
	}
	return result
}
