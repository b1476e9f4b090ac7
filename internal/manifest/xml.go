package manifest

import (
	"bytes"
	"encoding/xml"
	"sort"
)

type xmlDocument struct {
	XMLName     xml.Name        `xml:"screenshots"`
	Screenshots []xmlScreenshot `xml:"screenshot"`
}

type xmlScreenshot struct {
	Name              string     `xml:"name"`
	Description       string     `xml:"description,omitempty"`
	Group             string     `xml:"group,omitempty"`
	Error             string     `xml:"error,omitempty"`
	TestClass         string     `xml:"test_class,omitempty"`
	TestName          string     `xml:"test_name,omitempty"`
	TileWidth         int        `xml:"tile_width,omitempty"`
	TileHeight        int        `xml:"tile_height,omitempty"`
	ViewHierarchy     string     `xml:"view_hierarchy,omitempty"`
	AxIssues          string     `xml:"ax_issues,omitempty"`
	Extras            *xmlExtras `xml:"extras,omitempty"`
	RelativeFileNames []string   `xml:"relative_file_name"`
	AbsoluteFileNames []string   `xml:"absolute_file_name"`
}

// Extras are free-form child elements: <extras><key>value</key></extras>.
type xmlExtras struct {
	Items []xmlExtra `xml:",any"`
}

type xmlExtra struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type xmlCodec struct{}

func (xmlCodec) Decode(data []byte) ([]Screenshot, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := make([]Screenshot, 0, len(doc.Screenshots))
	for _, xs := range doc.Screenshots {
		s := Screenshot{
			Name:              xs.Name,
			Description:       xs.Description,
			Group:             xs.Group,
			Error:             xs.Error,
			TestClass:         xs.TestClass,
			TestName:          xs.TestName,
			TileWidth:         xs.TileWidth,
			TileHeight:        xs.TileHeight,
			ViewHierarchy:     xs.ViewHierarchy,
			AxIssues:          xs.AxIssues,
			RelativeFileNames: xs.RelativeFileNames,
			AbsoluteFileNames: xs.AbsoluteFileNames,
		}
		if xs.Extras != nil && len(xs.Extras.Items) > 0 {
			s.Extras = make(map[string]string, len(xs.Extras.Items))
			for _, item := range xs.Extras.Items {
				s.Extras[item.XMLName.Local] = item.Value
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (xmlCodec) Encode(screenshots []Screenshot) ([]byte, error) {
	doc := xmlDocument{Screenshots: make([]xmlScreenshot, 0, len(screenshots))}
	for _, s := range screenshots {
		xs := xmlScreenshot{
			Name:              s.Name,
			Description:       s.Description,
			Group:             s.Group,
			Error:             s.Error,
			TestClass:         s.TestClass,
			TestName:          s.TestName,
			TileWidth:         s.TileWidth,
			TileHeight:        s.TileHeight,
			ViewHierarchy:     s.ViewHierarchy,
			AxIssues:          s.AxIssues,
			RelativeFileNames: s.RelativeFileNames,
			AbsoluteFileNames: s.AbsoluteFileNames,
		}
		if len(s.Extras) > 0 {
			keys := make([]string, 0, len(s.Extras))
			for k := range s.Extras {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			xs.Extras = &xmlExtras{}
			for _, k := range keys {
				xs.Extras.Items = append(xs.Extras.Items, xmlExtra{XMLName: xml.Name{Local: k}, Value: s.Extras[k]})
			}
		}
		doc.Screenshots = append(doc.Screenshots, xs)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
