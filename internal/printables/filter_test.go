package printables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectFiles(t *testing.T) {
	files := []File{
		{Name: "a.stl", Extension: ".stl"},
		{Name: "b.3mf", Extension: ".3mf"},
		{Name: "c.gcode", Extension: ".gcode"},
		{Name: "d.stl", Extension: ".stl"},
	}
	tests := []struct {
		name       string
		extensions []string
		wantNames  []string
	}{
		{"empty selects all", nil, []string{"a.stl", "b.3mf", "c.gcode", "d.stl"}},
		{"single extension", []string{".stl"}, []string{"a.stl", "d.stl"}},
		{"multiple extensions", []string{".3mf", ".gcode"}, []string{"b.3mf", "c.gcode"}},
		{"case insensitive", []string{".STL"}, []string{"a.stl", "d.stl"}},
		{"no matches", []string{".step"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := SelectFiles(files, tt.extensions)
			var names []string
			for _, f := range selected {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestSelectFilesEmptyFilterReturnsInput(t *testing.T) {
	files := []File{{Name: "a.stl", Extension: ".stl"}}
	selected := SelectFiles(files, nil)
	assert.Same(t, &files[0], &selected[0])
}

func TestHasExtension(t *testing.T) {
	files := []File{{Extension: ".stl"}, {Extension: ".gcode"}}
	assert.True(t, HasExtension(files, ".stl"))
	assert.True(t, HasExtension(files, ".STL"))
	assert.False(t, HasExtension(files, ".3mf"))
	assert.False(t, HasExtension(nil, ".stl"))
}
