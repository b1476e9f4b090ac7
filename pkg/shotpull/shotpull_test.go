package shotpull

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/bianoble/shotpull/internal/config"
	"github.com/bianoble/shotpull/internal/transport"
)

// writeConfig writes a config using the local transport rooted at device.
func writeConfig(t *testing.T, dir, device string, extra string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "shotpull.yaml")
	content := "version: 1\npackage: com.example.tests\ndevice:\n  transport: local\n  root: " + device + "\n" + extra
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

// seedDevice lays out one single-tile screenshot on a fake device.
func seedDevice(t *testing.T, c color.NRGBA) string {
	t.Helper()
	root := t.TempDir()
	run := filepath.Join(root, "sdcard", "screenshots", "com.example.tests", "screenshots-default")
	if err := os.MkdirAll(run, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(run, "metadata.json"), []byte(`[{"name": "shot", "tileWidth": 1, "tileHeight": 1}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(imaging.New(4, 4, c), filepath.Join(run, "shot.png")); err != nil {
		t.Fatal(err)
	}
	return root
}

func newTestClient(t *testing.T, cfgPath string) *Client {
	t.Helper()
	client, err := New(Options{ConfigPath: cfgPath, NoInherit: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewMissingConfigUsesDefaults(t *testing.T) {
	client := newTestClient(t, filepath.Join(t.TempDir(), "shotpull.yaml"))
	cfg := client.Config()
	if cfg.RecordDir != config.DefaultRecordDir || cfg.Device.Transport != "adb" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "shotpull.yaml")
	if err := os.WriteFile(cfgPath, []byte("version: 1\ndevice:\n  transport: local\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Options{ConfigPath: cfgPath, NoInherit: true}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Package = "com.x"
	client, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Config().Package != "com.x" {
		t.Errorf("package = %q", client.Config().Package)
	}

	bad := config.Default()
	bad.Version = 3
	if _, err := New(Options{Config: bad}); err == nil {
		t.Error("expected validation error for explicit config")
	}
}

func TestTransportSelection(t *testing.T) {
	cfg := config.Default()
	cfg.Device.Serial = "emulator-5554"
	client, _ := New(Options{Config: cfg, Getenv: func(string) string { return "" }})

	tr, err := client.Transport()
	if err != nil {
		t.Fatalf("Transport: %v", err)
	}
	adb, ok := tr.(*transport.ADB)
	if !ok {
		t.Fatalf("Transport() = %T, want *transport.ADB", tr)
	}
	if adb.Serial != "emulator-5554" {
		t.Errorf("serial = %q", adb.Serial)
	}
}

func TestClientRecordAndVerify(t *testing.T) {
	device := seedDevice(t, color.NRGBA{0, 0, 255, 255})
	project := t.TempDir()
	recordDir := filepath.Join(project, "screenshots")
	failureDir := filepath.Join(project, "failures")
	cfgPath := writeConfig(t, project, device, "record_dir: "+recordDir+"\nfailure_dir: "+failureDir+"\nwork_dir: "+filepath.Join(project, "work")+"\n")

	client := newTestClient(t, cfgPath)
	ctx := context.Background()

	res, err := client.Record(ctx)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(res.Record.Recorded) != 1 {
		t.Errorf("recorded = %v", res.Record.Recorded)
	}
	if !strings.Contains(Describe(res), "recorded 1 screenshot(s)") {
		t.Errorf("Describe = %s", Describe(res))
	}

	res, err = client.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(res.Verify.Failures) != 0 {
		t.Errorf("failures = %v", res.Verify.Failures)
	}

	// Replace the device image and verify again.
	run := filepath.Join(device, "sdcard", "screenshots", "com.example.tests", "screenshots-default")
	if err := imaging.Save(imaging.New(4, 5, color.NRGBA{0, 0, 255, 255}), filepath.Join(run, "shot.png")); err != nil {
		t.Fatal(err)
	}
	_, err = client.Verify(ctx)
	var verr *VerifyError
	if !errors.As(err, &verr) {
		t.Fatalf("expected VerifyError, got %v", err)
	}
	if verr.Failures[0].Result.Direction.String() != "longer" {
		t.Errorf("direction = %s", verr.Failures[0].Result.Direction)
	}
}

func TestClientPull(t *testing.T) {
	device := seedDevice(t, color.NRGBA{255, 255, 255, 255})
	project := t.TempDir()
	work := filepath.Join(project, "work")
	client := newTestClient(t, writeConfig(t, project, device, "work_dir: "+work+"\n"))

	res, err := client.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if res.Screenshots != 1 {
		t.Errorf("screenshots = %d", res.Screenshots)
	}
	if _, err := os.Stat(filepath.Join(work, "shot.png")); err != nil {
		t.Errorf("tile not pulled: %v", err)
	}
}

func TestDescribeNil(t *testing.T) {
	if Describe(nil) != "no run" {
		t.Error("Describe(nil)")
	}
}
