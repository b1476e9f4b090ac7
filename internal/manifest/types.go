// Package manifest reads, filters and rewrites the per-run screenshot
// manifest written by the on-device test runner.
//
// The manifest is one ordered list of screenshot records. Older runners
// write it as XML (metadata.xml), newer ones as JSON (metadata.json); both
// are codecs over the same Screenshot type.
package manifest

import "sort"

// Format identifies the serialization of a manifest file.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// FileName returns the conventional manifest file name for the format.
func (f Format) FileName() string {
	return "metadata." + string(f)
}

// Screenshot describes one captured screenshot.
type Screenshot struct {
	Name        string
	Group       string
	Description string
	// Error is set when capture failed; there is no image for this entry.
	Error      string
	TileWidth  int
	TileHeight int

	// Opaque pass-through fields.
	TestClass         string
	TestName          string
	ViewHierarchy     string
	AxIssues          string
	Extras            map[string]string
	RelativeFileNames []string
	AbsoluteFileNames []string
}

// HasImage reports whether the screenshot produced image tiles.
func (s Screenshot) HasImage() bool {
	return s.Error == ""
}

// Manifest is a decoded manifest file.
type Manifest struct {
	Format      Format
	Screenshots []Screenshot
}

// Names returns screenshot names in manifest order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Screenshots))
	for _, s := range m.Screenshots {
		names = append(names, s.Name)
	}
	return names
}

// Sorted returns a copy of the screenshots ordered by (group, name).
// Ungrouped entries sort before any named group.
func (m *Manifest) Sorted() []Screenshot {
	out := make([]Screenshot, len(m.Screenshots))
	copy(out, m.Screenshots)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out
}
