package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/printgrab/internal/utils"
)

// Outcome classifies how a single fetch ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailed
	OutcomeSkipped
)

// Result records what happened to one planned item.
type Result struct {
	Item    Item
	Outcome Outcome
	Err     error
	Bytes   int64
	Elapsed time.Duration
}

// StatusError reports an unexpected HTTP status from the download host.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Fetcher downloads planned items one at a time with bounded retries.
// Partial data lands in a temp directory beside the target and is renamed
// into place only after the full body arrives.
type Fetcher struct {
	client       *utils.HTTPClient
	maxAttempts  int
	delay        DelayPolicy
	progressFunc func(item Item, downloaded, total int64)
}

func NewFetcher(client *utils.HTTPClient, maxAttempts int, baseDelay time.Duration) *Fetcher {
	if maxAttempts < 1 {
		maxAttempts = utils.DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = utils.DefaultRetryDelay
	}
	return &Fetcher{
		client:      client,
		maxAttempts: maxAttempts,
		delay:       LinearDelay(baseDelay),
	}
}

// SetProgressFunc registers a callback invoked as bytes arrive.
func (f *Fetcher) SetProgressFunc(fn func(item Item, downloaded, total int64)) {
	f.progressFunc = fn
}

// Fetch downloads one item to its planned path. Items whose destination
// already exists are skipped without touching the network.
func (f *Fetcher) Fetch(item Item) Result {
	if item.Exists {
		log.Debug().Str("op", "fetch/skip").Msgf("File already exists: %s", item.OutputPath)
		return Result{Item: item, Outcome: OutcomeSkipped}
	}
	start := time.Now()
	written, err := f.download(item)
	res := Result{Item: item, Bytes: written, Elapsed: time.Since(start)}
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Outcome = OutcomeSuccess
	return res
}

func (f *Fetcher) download(item Item) (int64, error) {
	outputDir := filepath.Dir(item.OutputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	tempDir := filepath.Join(outputDir, utils.TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create temp directory: %w", err)
	}
	tempPath := filepath.Join(tempDir, fmt.Sprintf("%s.part", filepath.Base(item.OutputPath)))

	var written int64
	var attempts int
	err := WithRetry(f.maxAttempts, f.delay, func(attempt int) error {
		attempts = attempt
		if attempt > 1 {
			log.Warn().Str("op", "fetch/download").Msgf("Retrying download for %s (attempt %d/%d)", item.File.Name, attempt, f.maxAttempts)
		}
		n, err := f.attempt(item, tempPath)
		written = n
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return Permanent(err)
		}
		return err
	})
	if err != nil {
		return written, fmt.Errorf("download failed after %d attempt(s): %w", attempts, err)
	}
	if err := os.Rename(tempPath, item.OutputPath); err != nil {
		return written, fmt.Errorf("failed to finalize file: %w", err)
	}
	log.Debug().Str("op", "fetch/download").Msgf("Downloaded %s (%d bytes)", item.OutputPath, written)
	return written, nil
}

// retryable treats transport errors and throttling or server-side statuses
// as transient; every other status fails the download immediately.
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	return true
}

func (f *Fetcher) attempt(item Item, tempPath string) (int64, error) {
	var resumeOffset int64
	if info, err := os.Stat(tempPath); err == nil {
		resumeOffset = info.Size()
	}
	flags := os.O_CREATE | os.O_WRONLY
	if resumeOffset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	outFile, err := os.OpenFile(tempPath, flags, 0644)
	if err != nil {
		return 0, Permanent(fmt.Errorf("failed to open temp file: %w", err))
	}
	defer func() {
		outFile.Close()
	}()

	req, err := http.NewRequest("GET", item.File.URL, nil)
	if err != nil {
		return 0, Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	if resumeOffset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeOffset))
		log.Debug().Str("op", "fetch/download").Msgf("Resuming %s from byte %d", item.File.Name, resumeOffset)
	}
	req.Header.Set("Connection", "keep-alive")
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	written := resumeOffset
	switch {
	case resumeOffset > 0 && resp.StatusCode == http.StatusPartialContent:
		// server honors the range, keep appending
	case resumeOffset > 0 && resp.StatusCode == http.StatusOK:
		log.Warn().Str("op", "fetch/download").Msgf("Server ignored range request for %s, restarting", item.File.Name)
		outFile.Close()
		outFile, err = os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return 0, Permanent(fmt.Errorf("failed to reopen temp file: %w", err))
		}
		written = 0
	case resp.StatusCode != http.StatusOK:
		return written, &StatusError{Code: resp.StatusCode}
	}

	total := item.File.Size
	if resp.ContentLength > 0 {
		total = written + resp.ContentLength
	}
	buffer := make([]byte, utils.DefaultBufferSize)
	for {
		n, readErr := resp.Body.Read(buffer)
		if n > 0 {
			if _, writeErr := outFile.Write(buffer[:n]); writeErr != nil {
				return written, Permanent(fmt.Errorf("failed to write file: %w", writeErr))
			}
			written += int64(n)
			if f.progressFunc != nil {
				f.progressFunc(item, written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, fmt.Errorf("failed to read response: %w", readErr)
		}
	}
	if err := outFile.Sync(); err != nil {
		return written, Permanent(fmt.Errorf("failed to sync file: %w", err))
	}
	return written, nil
}
