package engine

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/bianoble/shotpull/internal/transport"
)

const testPackage = "com.example.tests"

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
	red   = color.NRGBA{255, 0, 0, 255}
)

// device is a local transport root laid out like a device's filesystem.
type device struct {
	t    *testing.T
	root string
}

func newDevice(t *testing.T) *device {
	return &device{t: t, root: t.TempDir()}
}

func (d *device) transport() transport.Transport {
	tr, err := transport.NewLocal(transport.Options{Root: d.root})
	if err != nil {
		d.t.Fatal(err)
	}
	return tr
}

func (d *device) runDir() string {
	return "/sdcard/screenshots/" + testPackage + "/screenshots-default"
}

func (d *device) path(remote string) string {
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(remote, "/")))
}

func (d *device) write(remote, content string) {
	d.t.Helper()
	p := d.path(remote)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		d.t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		d.t.Fatal(err)
	}
}

func (d *device) png(remote string, w, h int, c color.NRGBA) {
	d.t.Helper()
	p := d.path(remote)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		d.t.Fatal(err)
	}
	if err := imaging.Save(imaging.New(w, h, c), p); err != nil {
		d.t.Fatal(err)
	}
}

// writePNG saves a solid w x h image at path.
func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(imaging.New(w, h, c), path); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
