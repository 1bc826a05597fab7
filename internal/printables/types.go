package printables

import "errors"

// File groups as the site lists them. The group name doubles as the
// fileType argument of the download-link API.
const (
	FileTypeSTL   = "stl"
	FileTypeGcode = "gcode"
	FileTypeSLA   = "sla"
	FileTypeOther = "other"
)

// File describes one downloadable file of a model. Resolve fills every
// field, including the direct download link; nothing mutates a File after
// that.
type File struct {
	ID        string
	Name      string
	Folder    string
	Type      string
	Size      int64
	Extension string
	URL       string
}

type Model struct {
	ID    string
	Name  string
	Files []File
}

var (
	ErrInvalidURL = errors.New("not a printables model URL")
	ErrNotFound   = errors.New("model not found")
	ErrParse      = errors.New("unexpected site response")
	ErrNetwork    = errors.New("network failure")
)
