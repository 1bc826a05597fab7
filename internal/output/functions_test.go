package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.bytes))
	}
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "0 B/s", FormatSpeed(1024, 0))
	assert.Equal(t, "512 B/s", FormatSpeed(512, 1))
	assert.Equal(t, "1.00 KB/s", FormatSpeed(2048, 2))
	assert.Equal(t, "2.00 MB/s", FormatSpeed(4*1024*1024, 2))
}

func TestPrintProgressBar(t *testing.T) {
	full := PrintProgressBar(100, 100, 10)
	assert.Contains(t, full, "100.0%")
	assert.Contains(t, full, strings.Repeat(StyleSymbols["hline"], 10))

	half := PrintProgressBar(50, 100, 10)
	assert.Contains(t, half, "50.0%")
	assert.Contains(t, half, strings.Repeat(StyleSymbols["hline"], 5))

	over := PrintProgressBar(200, 100, 10)
	assert.Contains(t, over, "100.0%")

	empty := PrintProgressBar(0, 0, 10)
	assert.Contains(t, empty, "0.0%")
}
