package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMergeOverlayWins(t *testing.T) {
	base := &Config{Version: 1, Package: "com.a", RecordDir: "screenshots", SDK: "/sdk", Bundle: true}
	overlay := &Config{Package: "com.b", FailureDir: "fail"}

	got, err := Merge(base, overlay)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got.Package != "com.b" {
		t.Errorf("package = %q, want com.b", got.Package)
	}
	if got.RecordDir != "screenshots" || got.SDK != "/sdk" {
		t.Errorf("base values lost: %+v", got)
	}
	if got.FailureDir != "fail" {
		t.Errorf("failure_dir = %q", got.FailureDir)
	}
	if !got.Bundle {
		t.Error("bundle from base should survive")
	}
	if got.Version != 1 {
		t.Errorf("version = %d, want 1", got.Version)
	}
}

func TestMergeNil(t *testing.T) {
	cfg := &Config{Version: 1}
	if got, _ := Merge(nil, cfg); got != cfg {
		t.Error("Merge(nil, x) should return x")
	}
	if got, _ := Merge(cfg, nil); got != cfg {
		t.Error("Merge(x, nil) should return x")
	}
}

func TestMergeVersionMismatch(t *testing.T) {
	_, err := Merge(&Config{Version: 1}, &Config{Version: 2})
	if err == nil || !strings.Contains(err.Error(), "version mismatch") {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestMergePackageReplacesAPK(t *testing.T) {
	got, _ := Merge(&Config{APK: "app.apk"}, &Config{Package: "com.a"})
	if got.APK != "" || got.Package != "com.a" {
		t.Errorf("got package=%q apk=%q", got.Package, got.APK)
	}

	got, _ = Merge(&Config{Package: "com.a"}, &Config{APK: "app.apk"})
	if got.APK != "app.apk" || got.Package != "" {
		t.Errorf("got package=%q apk=%q", got.Package, got.APK)
	}
}

func TestMergeDeviceSelectorsReplaceTogether(t *testing.T) {
	base := &Config{Device: Device{Transport: "adb", Emulator: true}}
	overlay := &Config{Device: Device{Serial: "R58M"}}

	got, _ := Merge(base, overlay)
	if got.Device.Serial != "R58M" || got.Device.Emulator {
		t.Errorf("device = %+v, want only serial", got.Device)
	}
	if got.Device.Transport != "adb" {
		t.Errorf("transport lost: %+v", got.Device)
	}
}

func TestMergeAll(t *testing.T) {
	got, err := MergeAll([]*Config{Default(), {RecordDir: "golden"}, {FailureDir: "out"}})
	if err != nil {
		t.Fatalf("MergeAll: %v", err)
	}
	if got.RecordDir != "golden" || got.FailureDir != "out" || got.Device.Transport != "adb" {
		t.Errorf("unexpected merge: %+v", got)
	}

	if _, err := MergeAll(nil); err == nil {
		t.Error("expected error for no configs")
	}
}

func TestLoadLayered(t *testing.T) {
	userDir := t.TempDir()
	userPath := filepath.Join(userDir, "user.yaml")
	if err := os.WriteFile(userPath, []byte("version: 1\nsdk: /home/me/sdk\nrecord_dir: golden\n"), 0644); err != nil {
		t.Fatal(err)
	}
	projectPath := writeConfig(t, t.TempDir(), "version: 1\npackage: com.example\nrecord_dir: shots\n")

	cfg, layers, err := LoadLayered(DiscoverOptions{ProjectPath: projectPath, UserConfigPath: userPath})
	if err != nil {
		t.Fatalf("LoadLayered: %v", err)
	}
	if len(layers) != 2 || !layers[0].Loaded || !layers[1].Loaded {
		t.Fatalf("unexpected layers: %+v", layers)
	}
	if cfg.SDK != "/home/me/sdk" || cfg.Package != "com.example" || cfg.RecordDir != "shots" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadLayeredMissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, layers, err := LoadLayered(DiscoverOptions{
		ProjectPath:    filepath.Join(dir, "shotpull.yaml"),
		UserConfigPath: filepath.Join(dir, "missing.yaml"),
	})
	if err != nil {
		t.Fatalf("LoadLayered: %v", err)
	}
	for _, l := range layers {
		if l.Loaded {
			t.Errorf("layer %s should not be loaded", l.Path)
		}
	}
	if cfg.RecordDir != DefaultRecordDir || cfg.Device.Transport != "adb" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadLayeredNoInherit(t *testing.T) {
	layers := DiscoverPaths(DiscoverOptions{ProjectPath: "shotpull.yaml", UserConfigPath: "/x/user.yaml", NoInherit: true})
	if len(layers) != 1 || layers[0].Level != LevelProject {
		t.Errorf("unexpected layers: %+v", layers)
	}
}

func TestDiscoverPathsDeduplicates(t *testing.T) {
	layers := DiscoverPaths(DiscoverOptions{ProjectPath: "shotpull.yaml", UserConfigPath: "shotpull.yaml"})
	if len(layers) != 1 {
		t.Errorf("layers = %d, want 1", len(layers))
	}
}

func TestEnvNoInherit(t *testing.T) {
	for v, want := range map[string]bool{"1": true, "TRUE": true, " true ": true, "0": false, "": false} {
		getenv := func(string) string { return v }
		if got := EnvNoInherit(getenv); got != want {
			t.Errorf("EnvNoInherit(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestResolveSDK(t *testing.T) {
	env := map[string]string{"HOME": "/home/me", "ANDROID_HOME": "/opt/android"}
	getenv := func(k string) string { return env[k] }

	if got := ResolveSDK(&Config{SDK: "/explicit"}, getenv); got != "/explicit" {
		t.Errorf("explicit sdk = %q", got)
	}
	if got := ResolveSDK(&Config{}, getenv); got != "/opt/android" {
		t.Errorf("env sdk = %q", got)
	}
	if got := ResolveSDK(&Config{SDK: "~/Android/Sdk"}, getenv); got != filepath.Join("/home/me", "Android/Sdk") {
		t.Errorf("home sdk = %q", got)
	}

	env["ANDROID_SDK"] = "/first"
	if got := ResolveSDK(&Config{}, getenv); got != "/first" {
		t.Errorf("ANDROID_SDK should win, got %q", got)
	}
	if got := ResolveSDK(&Config{}, func(string) string { return "" }); got != "" {
		t.Errorf("no sdk = %q", got)
	}
}
