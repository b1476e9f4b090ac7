package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bianoble/shotpull/internal/manifest"
)

const twoShotsJSON = `[
  {"name": "a", "tileWidth": 1, "tileHeight": 1, "viewHierarchy": "a_dump.json"},
  {"name": "b", "tileWidth": 2, "tileHeight": 1},
  {"name": "c", "error": "crashed"}
]`

func TestRemoteManifestCandidates(t *testing.T) {
	got := RemoteManifestCandidates("/storage/emulated/0", "com.x")
	want := []string{
		"/storage/emulated/0/screenshots/com.x/screenshots-default/metadata.json",
		"/storage/emulated/0/screenshots/com.x/screenshots-default/metadata.xml",
		"/data/data/com.x/app_screenshots-default/metadata.xml",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestPullPerFile(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.json", twoShotsJSON)
	dev.png(dev.runDir()+"/a.png", 4, 4, white)
	dev.write(dev.runDir()+"/a_dump.json", "{}")
	dev.png(dev.runDir()+"/b.png", 4, 4, white)
	dev.png(dev.runDir()+"/b_1_0.png", 2, 4, white)
	dev.png(dev.runDir()+"/unrelated.png", 1, 1, white)

	work := t.TempDir()
	eng := &PullEngine{Transport: dev.transport()}
	result, err := eng.Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: work})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}

	if result.Screenshots != 3 {
		t.Errorf("screenshots = %d, want 3", result.Screenshots)
	}
	if result.RemoteDir != dev.runDir() {
		t.Errorf("remote dir = %s", result.RemoteDir)
	}
	if result.ManifestPath != filepath.Join(work, "metadata.json") {
		t.Errorf("manifest path = %s", result.ManifestPath)
	}
	if len(result.Files) != 4 {
		t.Errorf("files = %d, want 4: %v", len(result.Files), result.Files)
	}
	for _, name := range []string{"metadata.json", "a.png", "a_dump.json", "b.png", "b_1_0.png"} {
		if !exists(filepath.Join(work, name)) {
			t.Errorf("%s not pulled", name)
		}
	}
	if exists(filepath.Join(work, "unrelated.png")) {
		t.Error("files outside the manifest should not be pulled")
	}
}

func TestPullRelativeFileNames(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.json", `[{"name": "x", "tileWidth": 1, "tileHeight": 1, "relativeFileNames": ["tiles/x.png"]}]`)
	dev.png(dev.runDir()+"/tiles/x.png", 2, 2, white)

	work := t.TempDir()
	eng := &PullEngine{Transport: dev.transport()}
	if _, err := eng.Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: work}); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if !exists(filepath.Join(work, "x.png")) {
		t.Error("relative file should land flat in the work dir")
	}
}

func TestPullRelativeFileNamesWithoutExtension(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.xml", `<screenshots><screenshot>
<name>com.example.Wide.test</name><tile_width>2</tile_width><tile_height>1</tile_height>
<relative_file_name>com.example.Wide.test</relative_file_name>
<relative_file_name>com.example.Wide.test_1_0</relative_file_name>
</screenshot></screenshots>`)
	dev.png(dev.runDir()+"/com.example.Wide.test.png", 2, 2, white)
	dev.png(dev.runDir()+"/com.example.Wide.test_1_0.png", 1, 2, white)

	work := t.TempDir()
	eng := &PullEngine{Transport: dev.transport()}
	if _, err := eng.Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: work}); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	for _, name := range []string{"com.example.Wide.test.png", "com.example.Wide.test_1_0.png"} {
		if !exists(filepath.Join(work, name)) {
			t.Errorf("%s not pulled", name)
		}
	}
}

func TestImageFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a", "a.png"},
		{"a_1_0", "a_1_0.png"},
		{"com.example.Test.test", "com.example.Test.test.png"},
		{"tiles/x.png", "tiles/x.png"},
		{"X.PNG", "X.PNG"},
		{"..", ".."},
	}
	for _, tt := range tests {
		if got := imageFileName(tt.in); got != tt.want {
			t.Errorf("imageFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPullLegacyLocation(t *testing.T) {
	dev := newDevice(t)
	legacy := "/data/data/" + testPackage + "/app_screenshots-default"
	dev.write(legacy+"/metadata.xml", `<screenshots><screenshot><name>old</name><tile_width>1</tile_width><tile_height>1</tile_height></screenshot></screenshots>`)
	dev.png(legacy+"/old.png", 1, 1, white)

	work := t.TempDir()
	eng := &PullEngine{Transport: dev.transport()}
	result, err := eng.Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: work})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.RemoteDir != legacy {
		t.Errorf("remote dir = %s, want %s", result.RemoteDir, legacy)
	}
	if !exists(filepath.Join(work, "metadata.xml")) || !exists(filepath.Join(work, "old.png")) {
		t.Error("legacy files not pulled")
	}
}

func TestPullPrefersJSONOverXML(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.json", `[]`)
	dev.write(dev.runDir()+"/metadata.xml", `<screenshots/>`)

	work := t.TempDir()
	result, err := (&PullEngine{Transport: dev.transport()}).Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: work})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if filepath.Base(result.ManifestPath) != "metadata.json" {
		t.Errorf("manifest = %s, want metadata.json", result.ManifestPath)
	}
}

func TestPullWithoutManifestWritesEmpty(t *testing.T) {
	dev := newDevice(t)
	work := t.TempDir()

	result, err := (&PullEngine{Transport: dev.transport()}).Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: work})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.RemoteDir != "" {
		t.Errorf("remote dir = %q, want empty", result.RemoteDir)
	}
	n, err := manifest.Count(result.ManifestPath)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestPullCorruptManifest(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.xml", `<screenshots><screenshot><name>half`)

	_, err := (&PullEngine{Transport: dev.transport()}).Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: t.TempDir()})
	var corrupt *manifest.CorruptMetadataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptMetadataError, got %v", err)
	}
	if !strings.Contains(err.Error(), "onDestroy") {
		t.Errorf("error should hint at the run-completion hook: %v", err)
	}
}

func TestPullFilter(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.json", twoShotsJSON)
	dev.png(dev.runDir()+"/b.png", 4, 4, white)
	dev.png(dev.runDir()+"/b_1_0.png", 2, 4, white)

	work := t.TempDir()
	result, err := (&PullEngine{Transport: dev.transport()}).Pull(context.Background(), PullOptions{
		Package:         testPackage,
		WorkDir:         work,
		FilterNameRegex: "^b$",
	})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.Screenshots != 1 {
		t.Errorf("screenshots = %d, want 1", result.Screenshots)
	}
	if exists(filepath.Join(work, "a.png")) {
		t.Error("filtered-out screenshot was pulled")
	}
}

func TestPullMissingTileFails(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.json", `[{"name": "b", "tileWidth": 2, "tileHeight": 1}]`)
	dev.png(dev.runDir()+"/b.png", 4, 4, white)

	_, err := (&PullEngine{Transport: dev.transport()}).Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for a tile missing on the device")
	}
}

func TestPullRejectsUnsafeRelativeName(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.json", `[{"name": "x", "tileWidth": 1, "tileHeight": 1, "relativeFileNames": [".."]}]`)

	_, err := (&PullEngine{Transport: dev.transport()}).Pull(context.Background(), PullOptions{Package: testPackage, WorkDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "refusing to pull") {
		t.Fatalf("expected refusal, got %v", err)
	}
}

func TestPullBundle(t *testing.T) {
	dev := newDevice(t)
	dev.write(dev.runDir()+"/metadata.json", twoShotsJSON)
	dev.png(dev.runDir()+"/a.png", 4, 4, white)
	dev.png(dev.runDir()+"/b.png", 4, 4, white)
	dev.png(dev.runDir()+"/b_1_0.png", 2, 4, white)

	work := t.TempDir()
	result, err := (&PullEngine{Transport: dev.transport()}).Pull(context.Background(), PullOptions{
		Package:         testPackage,
		WorkDir:         work,
		Bundle:          true,
		FilterNameRegex: "a",
	})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.Screenshots != 1 {
		t.Errorf("screenshots = %d, want 1 after filtering the bundled manifest", result.Screenshots)
	}
	if !exists(filepath.Join(work, "b_1_0.png")) {
		t.Error("bundle should bring the whole directory")
	}
	data, _ := os.ReadFile(filepath.Join(work, "metadata.json"))
	if strings.Contains(string(data), `"b"`) {
		t.Error("bundled manifest was not filtered")
	}
}
