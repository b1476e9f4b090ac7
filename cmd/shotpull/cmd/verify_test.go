package cmd

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

// seedLocalDevice lays out a one-screenshot run under a fake device root
// and points the device flags at it.
func seedLocalDevice(t *testing.T, c color.NRGBA) string {
	t.Helper()
	root := t.TempDir()
	run := filepath.Join(root, "sdcard", "screenshots", "com.example.tests", "screenshots-default")
	if err := os.MkdirAll(run, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `<?xml version="1.0" encoding="UTF-8"?>
<screenshots>
  <screenshot>
    <name>shot</name>
    <tile_width>1</tile_width>
    <tile_height>1</tile_height>
  </screenshot>
</screenshots>`
	if err := os.WriteFile(filepath.Join(run, "metadata.xml"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(imaging.New(3, 3, c), filepath.Join(run, "shot.png")); err != nil {
		t.Fatal(err)
	}

	flagTransport, flagRoot = "local", root
	t.Cleanup(func() { flagTransport, flagRoot = "", "" })
	return run
}

func TestRecordThenVerifyCommands(t *testing.T) {
	withConfig(t, "version: 1\n")
	t.Setenv("TMPDIR", t.TempDir())
	run := seedLocalDevice(t, color.NRGBA{0, 128, 0, 255})

	project := t.TempDir()
	rf = runFlags{recordDir: filepath.Join(project, "golden"), failureDir: filepath.Join(project, "failures")}
	t.Cleanup(func() { rf = runFlags{} })

	oldQuiet := quiet
	quiet = true
	t.Cleanup(func() { quiet = oldQuiet })

	recordCmd.SetContext(context.Background())
	if err := recordCmd.RunE(recordCmd, []string{"com.example.tests"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := os.Stat(filepath.Join(project, "golden", "shot.png")); err != nil {
		t.Fatalf("baseline missing: %v", err)
	}

	verifyCmd.SetContext(context.Background())
	if err := verifyCmd.RunE(verifyCmd, []string{"com.example.tests"}); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := imaging.Save(imaging.New(3, 3, color.NRGBA{0, 0, 0, 255}), filepath.Join(run, "shot.png")); err != nil {
		t.Fatal(err)
	}
	err := verifyCmd.RunE(verifyCmd, []string{"com.example.tests"})
	if err == nil || !strings.Contains(err.Error(), "1 screenshot(s) did not match") {
		t.Fatalf("verify after change: %v", err)
	}
	for _, suffix := range []string{"_expected.png", "_actual.png", "_diff.png"} {
		if _, err := os.Stat(filepath.Join(project, "failures", "shot"+suffix)); err != nil {
			t.Errorf("missing failure artifact shot%s: %v", suffix, err)
		}
	}
}

func TestVerifyCommandErrorNamesMismatch(t *testing.T) {
	withConfig(t, "version: 1\n")
	t.Setenv("TMPDIR", t.TempDir())
	run := seedLocalDevice(t, color.NRGBA{0, 128, 0, 255})

	golden := filepath.Join(t.TempDir(), "golden")
	rf = runFlags{recordDir: golden}
	t.Cleanup(func() { rf = runFlags{} })

	oldQuiet := quiet
	quiet = true
	t.Cleanup(func() { quiet = oldQuiet })

	recordCmd.SetContext(context.Background())
	if err := recordCmd.RunE(recordCmd, []string{"com.example.tests"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := imaging.Save(imaging.New(3, 3, color.NRGBA{255, 0, 0, 255}), filepath.Join(run, "shot.png")); err != nil {
		t.Fatal(err)
	}

	verifyCmd.SetContext(context.Background())
	err := verifyCmd.RunE(verifyCmd, []string{"com.example.tests"})
	if err == nil {
		t.Fatal("expected verify to fail")
	}
	for _, want := range []string{"shot: ", filepath.Join(golden, "shot.png")} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should contain %q: %v", want, err)
		}
	}
}
