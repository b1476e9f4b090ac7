// Package report renders the pulled screenshots of a run as a static HTML
// page next to the tiles it references.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/bianoble/shotpull/internal/manifest"
	"github.com/bianoble/shotpull/internal/sandbox"
	"github.com/bianoble/shotpull/internal/tiles"
)

// IndexFile is the report page written into the run directory.
const IndexFile = "index.html"

//go:embed assets/default.css assets/default.js
var assets embed.FS

//go:embed assets/index.html.tmpl
var indexSource string

var indexTemplate = template.Must(template.New(IndexFile).Parse(indexSource))

// AssetNames lists the static files CopyAssets writes.
var AssetNames = []string{"default.css", "default.js"}

type page struct {
	Entries []entry
}

type entry struct {
	Name        string
	Package     string
	ShortName   string
	Group       string
	Alternate   bool
	Extras      []extra
	Description template.HTML
	Error       string
	Rows        [][]tile
	Hierarchy   string
}

type extra struct {
	Key, Value string
}

type tile struct {
	File    string
	Present bool
}

// CopyAssets writes the stylesheet and script the report page links to.
func CopyAssets(dir string) error {
	for _, name := range AssetNames {
		data, err := assets.ReadFile(path.Join("assets", name))
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", name, err)
		}
		if err := sandbox.SafeWrite(dir, name, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

// Generate writes index.html for m into dir, where the run's tiles live,
// and returns its absolute path.
func Generate(dir string, m *manifest.Manifest) (string, error) {
	md := goldmark.New()

	var p page
	for i, s := range m.Sorted() {
		e := entry{
			Name:      s.Name,
			Group:     s.Group,
			Alternate: i%2 == 0,
			Error:     s.Error,
		}
		e.Package, e.ShortName = splitName(s.Name)

		keys := make([]string, 0, len(s.Extras))
		for k := range s.Extras {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e.Extras = append(e.Extras, extra{Key: k, Value: s.Extras[k]})
		}

		if s.Description != "" {
			var buf bytes.Buffer
			if err := md.Convert([]byte(s.Description), &buf); err != nil {
				return "", fmt.Errorf("rendering description of %s: %w", s.Name, err)
			}
			e.Description = template.HTML(buf.String())
		}

		if s.Error == "" {
			e.Rows = tileRows(dir, s)
			e.Hierarchy = readHierarchy(dir, s)
		}

		p.Entries = append(p.Entries, e)
	}

	out, err := filepath.Abs(filepath.Join(dir, IndexFile))
	if err != nil {
		return "", err
	}
	err = sandbox.WriteAtomic(out, 0644, func(w io.Writer) error {
		return indexTemplate.Execute(w, p)
	})
	if err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return out, nil
}

// splitName separates a fully qualified test name such as
// com.example.LoginTest.testEmpty into its package part, shown dimmed, and
// the remainder.
func splitName(name string) (string, string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", name
	}
	return name[:i+1], name[i+1:]
}

func tileRows(dir string, s manifest.Screenshot) [][]tile {
	rows := make([][]tile, 0, s.TileHeight)
	for y := 0; y < s.TileHeight; y++ {
		row := make([]tile, 0, s.TileWidth)
		for x := 0; x < s.TileWidth; x++ {
			name := tiles.FileName(s.Name, x, y)
			_, err := os.Stat(filepath.Join(dir, name))
			row = append(row, tile{File: name, Present: err == nil})
		}
		rows = append(rows, row)
	}
	return rows
}

// readHierarchy returns the view hierarchy dump pulled for s, if any.
func readHierarchy(dir string, s manifest.Screenshot) string {
	if s.ViewHierarchy == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(dir, path.Base(s.ViewHierarchy)))
	if err != nil {
		return ""
	}
	return string(data)
}
