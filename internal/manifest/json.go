package manifest

import "encoding/json"

// Field names match what the on-device recorder writes.
type jsonScreenshot struct {
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	TestClass          string            `json:"testClass,omitempty"`
	TestName           string            `json:"testName,omitempty"`
	TileWidth          int               `json:"tileWidth"`
	TileHeight         int               `json:"tileHeight"`
	ViewHierarchy      string            `json:"viewHierarchy,omitempty"`
	AxIssues           string            `json:"axIssues,omitempty"`
	Error              string            `json:"error,omitempty"`
	Group              string            `json:"group,omitempty"`
	AbsoluteFilesNames []string          `json:"absoluteFilesNames,omitempty"`
	RelativeFileNames  []string          `json:"relativeFileNames,omitempty"`
	Extras             map[string]string `json:"extras,omitempty"`
}

type jsonCodec struct{}

func (jsonCodec) Decode(data []byte) ([]Screenshot, error) {
	var entries []jsonScreenshot
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	out := make([]Screenshot, 0, len(entries))
	for _, js := range entries {
		out = append(out, Screenshot{
			Name:              js.Name,
			Description:       js.Description,
			Group:             js.Group,
			Error:             js.Error,
			TestClass:         js.TestClass,
			TestName:          js.TestName,
			TileWidth:         js.TileWidth,
			TileHeight:        js.TileHeight,
			ViewHierarchy:     js.ViewHierarchy,
			AxIssues:          js.AxIssues,
			Extras:            js.Extras,
			RelativeFileNames: js.RelativeFileNames,
			AbsoluteFileNames: js.AbsoluteFilesNames,
		})
	}
	return out, nil
}

func (jsonCodec) Encode(screenshots []Screenshot) ([]byte, error) {
	entries := make([]jsonScreenshot, 0, len(screenshots))
	for _, s := range screenshots {
		entries = append(entries, jsonScreenshot{
			Name:               s.Name,
			Description:        s.Description,
			TestClass:          s.TestClass,
			TestName:           s.TestName,
			TileWidth:          s.TileWidth,
			TileHeight:         s.TileHeight,
			ViewHierarchy:      s.ViewHierarchy,
			AxIssues:           s.AxIssues,
			Error:              s.Error,
			Group:              s.Group,
			AbsoluteFilesNames: s.AbsoluteFileNames,
			RelativeFileNames:  s.RelativeFileNames,
			Extras:             s.Extras,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
