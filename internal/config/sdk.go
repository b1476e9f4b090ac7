package config

import (
	"path/filepath"
	"strings"
)

// sdkEnvVars are consulted in order when the config names no SDK.
var sdkEnvVars = []string{"ANDROID_SDK", "ANDROID_HOME", "ANDROID_SDK_ROOT"}

// ResolveSDK returns the Android SDK directory: the configured one, else the
// first of ANDROID_SDK, ANDROID_HOME, ANDROID_SDK_ROOT that is set. A leading
// "~" expands to HOME. Returns "" when nothing is configured.
func ResolveSDK(cfg *Config, getenv func(string) string) string {
	sdk := cfg.SDK
	if sdk == "" {
		for _, key := range sdkEnvVars {
			if v := getenv(key); v != "" {
				sdk = v
				break
			}
		}
	}
	if sdk == "~" || strings.HasPrefix(sdk, "~/") {
		if home := getenv("HOME"); home != "" {
			sdk = filepath.Join(home, strings.TrimPrefix(sdk, "~"))
		}
	}
	return sdk
}
