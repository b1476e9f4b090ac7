package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Codec converts between manifest bytes and screenshot records.
type Codec interface {
	Decode(data []byte) ([]Screenshot, error)
	Encode(screenshots []Screenshot) ([]byte, error)
}

var codecs = map[Format]Codec{
	FormatXML:  xmlCodec{},
	FormatJSON: jsonCodec{},
}

// CodecFor returns the codec registered for a format.
func CodecFor(f Format) (Codec, error) {
	c, ok := codecs[f]
	if !ok {
		return nil, fmt.Errorf("unknown manifest format '%s'; supported formats: xml, json", f)
	}
	return c, nil
}

// DetectFormat picks a format from the file extension, falling back to the
// first non-space byte of the content.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML
	case ".json":
		return FormatJSON
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatJSON
}
