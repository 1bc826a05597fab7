package printables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// The files page embeds the model listing as a JSON-encoded string inside
// one of several application/json script blocks. The block carrying the
// file groups is the one that mentions "stls".
var scriptBlockRegex = regexp.MustCompile(`(?s)<script[^>]*type="application/json"[^>]*>(.*?)</script>`)

type scriptPayload struct {
	Body string `json:"body"`
}

type fileEntry struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Folder   string      `json:"folder"`
	FileSize int64       `json:"fileSize"`
}

type filesPayload struct {
	Data struct {
		Model struct {
			ID         json.Number `json:"id"`
			Name       string      `json:"name"`
			Stls       []fileEntry `json:"stls"`
			Gcodes     []fileEntry `json:"gcodes"`
			Slas       []fileEntry `json:"slas"`
			OtherFiles []fileEntry `json:"otherFiles"`
		} `json:"model"`
	} `json:"data"`
}

func extractFilesPayload(page []byte) (*filesPayload, error) {
	var raw []byte
	for _, match := range scriptBlockRegex.FindAllSubmatch(page, -1) {
		if bytes.Contains(match[1], []byte("stls")) {
			raw = match[1]
			break
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: no embedded file listing on page", ErrParse)
	}
	var outer scriptPayload
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("%w: decoding embedded payload: %v", ErrParse, err)
	}
	if outer.Body == "" {
		return nil, fmt.Errorf("%w: embedded payload has no body", ErrParse)
	}
	var payload filesPayload
	if err := json.Unmarshal([]byte(outer.Body), &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding file listing: %v", ErrParse, err)
	}
	return &payload, nil
}

// files flattens the payload's groups into one list, preserving the site's
// listing order. Extensions come from the file name suffix, lower-cased.
func (p *filesPayload) files() []File {
	groups := []struct {
		entries  []fileEntry
		fileType string
	}{
		{p.Data.Model.Stls, FileTypeSTL},
		{p.Data.Model.Gcodes, FileTypeGcode},
		{p.Data.Model.Slas, FileTypeSLA},
		{p.Data.Model.OtherFiles, FileTypeOther},
	}
	var files []File
	for _, group := range groups {
		for _, entry := range group.entries {
			files = append(files, File{
				ID:        entry.ID.String(),
				Name:      entry.Name,
				Folder:    entry.Folder,
				Type:      group.fileType,
				Size:      entry.FileSize,
				Extension: strings.ToLower(filepath.Ext(entry.Name)),
			})
		}
	}
	return files
}
