package printables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantID   string
		wantSlug string
	}{
		{"full url with slug", "https://www.printables.com/model/123456-cool-benchy", "123456", "cool-benchy"},
		{"no slug", "https://www.printables.com/model/123456", "123456", ""},
		{"no www", "https://printables.com/model/7-x", "7", "x"},
		{"locale prefix", "https://www.printables.com/cs/model/99-vase", "99", "vase"},
		{"files subpage", "https://www.printables.com/model/123456-cool-benchy/files", "123456", "cool-benchy"},
		{"query string", "https://www.printables.com/model/123456-cool-benchy?lang=en", "123456", "cool-benchy"},
		{"trailing slash", "https://www.printables.com/model/123456-cool-benchy/", "123456", "cool-benchy"},
		{"scheme-less", "www.printables.com/model/55-thing", "55", "thing"},
		{"bare id", "424242", "424242", ""},
		{"surrounding whitespace", "  https://www.printables.com/model/10 ", "10", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, slug, err := ParseModelURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantSlug, slug)
		})
	}
}

func TestParseModelURLRejectsNonModelURLs(t *testing.T) {
	invalid := []string{
		"",
		"https://www.printables.com/",
		"https://www.printables.com/search?q=benchy",
		"https://www.thingiverse.com/thing:12345",
		"not a url",
		"https://www.printables.com/model/abc-def",
	}
	for _, url := range invalid {
		t.Run(url, func(t *testing.T) {
			_, _, err := ParseModelURL(url)
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}
