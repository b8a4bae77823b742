// SPDX-License-Identifier: MPL-2.0

package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// maxModelBytes is the upper bound on a downloaded model (1 GB). The largest
// registry model is under 200 MB; anything bigger is a server error or a
// redirect gone wrong.
const maxModelBytes = 1 << 30

var (
	// ErrChecksumMismatch indicates the computed SHA256 hash does not match
	// the expected hash.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrTooLarge indicates the response body exceeded maxModelBytes.
	ErrTooLarge = errors.New("model download exceeds size limit")
)

type (
	// ProgressFunc receives download progress. total is -1 when the server
	// does not report a Content-Length.
	ProgressFunc func(downloaded, total int64)

	// ChecksumError provides details about a checksum verification failure.
	// It wraps ErrChecksumMismatch so callers can use errors.Is.
	ChecksumError struct {
		Filename string
		Expected string
		Got      string
	}

	// Downloader fetches models over HTTP into a model directory.
	Downloader struct {
		client *http.Client
		dir    string
	}

	// DownloadOption configures a Downloader during construction.
	DownloadOption func(*Downloader)

	// progressWriter counts bytes and reports them through a ProgressFunc.
	progressWriter struct {
		total      int64
		downloaded int64
		fn         ProgressFunc
	}
)

// Error returns a human-readable description of the checksum mismatch.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.Filename, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch so callers can use errors.Is.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) DownloadOption {
	return func(d *Downloader) {
		d.client = c
	}
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(dir string, opts ...DownloadOption) *Downloader {
	d := &Downloader{dir: dir}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		// No overall timeout: model downloads legitimately take minutes on
		// slow links. Cancellation comes from the context.
		d.client = &http.Client{}
	}
	return d
}

// Write implements io.Writer for progress accounting.
func (w *progressWriter) Write(p []byte) (int, error) {
	w.downloaded += int64(len(p))
	if w.fn != nil {
		w.fn(w.downloaded, w.total)
	}
	return len(p), nil
}

// Fetch downloads the model into the directory unless it is already present.
// The body is streamed to a temp file in the same directory, checksum-verified
// when the model pins a digest, and renamed into place so a partial download
// never occupies the final path. Returns true when a download happened.
func (d *Downloader) Fetch(ctx context.Context, m Model, progress ProgressFunc) (bool, error) {
	if m.Present(d.dir) {
		return false, nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create model directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request for %s: %w", m.Name, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to download %s: %w", m.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("failed to download %s: unexpected status %s", m.Filename, resp.Status)
	}

	tmp, err := os.CreateTemp(d.dir, m.Filename+".partial-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath) // No-op after successful rename.
	}()

	hasher := sha256.New()
	pw := &progressWriter{total: resp.ContentLength, fn: progress}
	body := io.LimitReader(resp.Body, maxModelBytes+1)

	written, err := io.Copy(io.MultiWriter(tmp, hasher, pw), body)
	if err != nil {
		return false, fmt.Errorf("failed to download %s: %w", m.Filename, err)
	}
	if written > maxModelBytes {
		return false, fmt.Errorf("%w: %s", ErrTooLarge, m.Filename)
	}

	if m.SHA256 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if got != m.SHA256 {
			return false, &ChecksumError{Filename: m.Filename, Expected: m.SHA256, Got: got}
		}
	}

	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to finalize %s: %w", m.Filename, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(d.dir, m.Filename)); err != nil {
		return false, fmt.Errorf("failed to move %s into place: %w", m.Filename, err)
	}
	return true, nil
}

// retryDelay is how long FetchWithRetry waits before the second attempt.
var retryDelay = 2 * time.Second

// FetchWithRetry is Fetch with one retry on transient failures. GitHub's
// release CDN occasionally resets long transfers. Cancellation, checksum
// mismatches and oversized bodies are not retried.
func (d *Downloader) FetchWithRetry(ctx context.Context, m Model, progress ProgressFunc) (bool, error) {
	did, err := d.Fetch(ctx, m, progress)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrChecksumMismatch) || errors.Is(err, ErrTooLarge) {
		return did, err
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(retryDelay):
	}

	return d.Fetch(ctx, m, progress)
}

// Verify recomputes the digest of an on-disk model against its pinned
// checksum. Models without a pinned digest verify trivially.
func (d *Downloader) Verify(m Model) error {
	if m.SHA256 == "" {
		return nil
	}

	f, err := os.Open(filepath.Join(d.dir, m.Filename))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", m.Filename, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("failed to hash %s: %w", m.Filename, err)
	}

	got := hex.EncodeToString(hasher.Sum(nil))
	if got != m.SHA256 {
		return &ChecksumError{Filename: m.Filename, Expected: m.SHA256, Got: got}
	}
	return nil
}
