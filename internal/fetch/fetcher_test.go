package fetch

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/printgrab/internal/printables"
	"github.com/tanq16/printgrab/internal/utils"
)

func newTestFetcher(maxAttempts int) *Fetcher {
	return NewFetcher(utils.NewHTTPClient(utils.HTTPClientConfig{}), maxAttempts, time.Millisecond)
}

func planItem(t *testing.T, url, name string) Item {
	t.Helper()
	return Item{
		File:       printables.File{Name: name, URL: url},
		OutputPath: filepath.Join(t.TempDir(), name),
	}
}

func tempPartPath(item Item) string {
	return filepath.Join(filepath.Dir(item.OutputPath), utils.TempDirName, item.File.Name+".part")
}

func TestFetchWritesFile(t *testing.T) {
	content := strings.Repeat("model-bytes ", 100)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, content)
	}))
	defer server.Close()

	fetcher := newTestFetcher(3)
	item := planItem(t, server.URL+"/part.stl", "part.stl")
	res := fetcher.Fetch(item)

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, int64(len(content)), res.Bytes)
	data, err := os.ReadFile(item.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestFetchRetriesTransientErrors(t *testing.T) {
	content := "eventually-served"
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, content)
	}))
	defer server.Close()

	fetcher := newTestFetcher(4)
	item := planItem(t, server.URL+"/part.stl", "part.stl")
	res := fetcher.Fetch(item)

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 4, hits)
	data, err := os.ReadFile(item.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := newTestFetcher(3)
	item := planItem(t, server.URL+"/part.stl", "part.stl")
	res := fetcher.Fetch(item)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "after 3 attempt(s)")
	var statusErr *StatusError
	require.ErrorAs(t, res.Err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, 3, hits)
	assert.NoFileExists(t, item.OutputPath)
	assert.FileExists(t, tempPartPath(item))
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := newTestFetcher(3)
	res := fetcher.Fetch(planItem(t, server.URL+"/gone.stl", "gone.stl"))

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Contains(t, res.Err.Error(), "after 1 attempt(s)")
	assert.Equal(t, 1, hits)
}

func TestFetchRetriesThrottling(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	fetcher := newTestFetcher(3)
	res := fetcher.Fetch(planItem(t, server.URL+"/slow.stl", "slow.stl"))

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 2, hits)
}

func TestFetchRetriesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL + "/x.stl"
	server.Close()

	fetcher := newTestFetcher(2)
	res := fetcher.Fetch(planItem(t, url, "x.stl"))

	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "after 2 attempt(s)")
}

func TestFetchFailsFastOnBadURL(t *testing.T) {
	fetcher := newTestFetcher(3)
	res := fetcher.Fetch(planItem(t, "://nope", "x.stl"))

	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "after 1 attempt(s)")
}

func TestFetchSkipsExistingFiles(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	fetcher := newTestFetcher(3)
	item := planItem(t, server.URL+"/x.stl", "x.stl")
	item.Exists = true
	res := fetcher.Fetch(item)

	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Zero(t, hits)
}

func TestFetchResumesFromPartialData(t *testing.T) {
	content := "0123456789abcdef"
	hits := 0
	var firstRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			firstRange = r.Header.Get("Range")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		require.Equal(t, "bytes=5-", r.Header.Get("Range"))
		w.Header().Set("Content-Range", fmt.Sprintf("bytes 5-%d/%d", len(content)-1, len(content)))
		w.WriteHeader(http.StatusPartialContent)
		fmt.Fprint(w, content[5:])
	}))
	defer server.Close()

	fetcher := newTestFetcher(2)
	item := planItem(t, server.URL+"/big.stl", "big.stl")
	require.NoError(t, os.MkdirAll(filepath.Dir(tempPartPath(item)), 0755))
	require.NoError(t, os.WriteFile(tempPartPath(item), []byte(content[:5]), 0644))

	res := fetcher.Fetch(item)

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "bytes=5-", firstRange)
	assert.Equal(t, int64(len(content)), res.Bytes)
	data, err := os.ReadFile(item.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestFetchRestartsWhenRangeIgnored(t *testing.T) {
	content := "fresh-complete-content"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, content)
	}))
	defer server.Close()

	fetcher := newTestFetcher(1)
	item := planItem(t, server.URL+"/x.stl", "x.stl")
	require.NoError(t, os.MkdirAll(filepath.Dir(tempPartPath(item)), 0755))
	require.NoError(t, os.WriteFile(tempPartPath(item), []byte("stale-garbage"), 0644))

	res := fetcher.Fetch(item)

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, int64(len(content)), res.Bytes)
	data, err := os.ReadFile(item.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestFetchReportsProgress(t *testing.T) {
	content := strings.Repeat("x", 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		fmt.Fprint(w, content)
	}))
	defer server.Close()

	fetcher := newTestFetcher(1)
	var lastDownloaded, lastTotal int64
	fetcher.SetProgressFunc(func(item Item, downloaded, total int64) {
		lastDownloaded = downloaded
		lastTotal = total
	})
	res := fetcher.Fetch(planItem(t, server.URL+"/big.stl", "big.stl"))

	require.NoError(t, res.Err)
	assert.Equal(t, int64(len(content)), lastDownloaded)
	assert.Equal(t, int64(len(content)), lastTotal)
}
