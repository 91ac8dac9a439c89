// Package download fetches remote attachments to local files with a hard
// size cap. Bytes are counted as they arrive, so a missing or understated
// Content-Length cannot bypass the limit. A failed download never leaves a
// partial file behind.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ChunkSize is the read granularity.
const ChunkSize = 32 << 10

// DefaultMaxBytes is the cap used when none is configured.
const DefaultMaxBytes int64 = 25 << 20

// ErrFileTooLarge is returned when the body exceeds the cap.
var ErrFileTooLarge = errors.New("file too large")

// Error reports a failed transfer: either a non-success HTTP status from the
// remote (StatusCode set) or a transport failure (Err set).
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether the remote answered 404.
func (e *Error) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Downloader streams remote files to disk.
type Downloader struct {
	client   *http.Client
	maxBytes int64
	log      zerolog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option { return func(d *Downloader) { d.client = c } }

// WithMaxBytes sets the size cap.
func WithMaxBytes(n int64) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(t time.Duration) Option {
	return func(d *Downloader) {
		if t > 0 {
			d.client = &http.Client{Timeout: t, Transport: d.client.Transport}
		}
	}
}

// New returns a Downloader with a 60s timeout and the default cap.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		client:   &http.Client{Timeout: 60 * time.Second},
		maxBytes: DefaultMaxBytes,
		log:      log.With().Str("component", "download").Logger(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// MaxBytes returns the configured cap.
func (d *Downloader) MaxBytes() int64 { return d.maxBytes }

// Fetch downloads url into dest, creating parent directories, and returns
// the number of bytes written. On any failure dest is removed.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) (n int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &Error{URL: url, StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > d.maxBytes {
		return 0, ErrFileTooLarge
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dest)
			n = 0
		}
	}()

	buf := make([]byte, ChunkSize)
	for {
		k, rerr := resp.Body.Read(buf)
		if k > 0 {
			n += int64(k)
			if n > d.maxBytes {
				d.log.Warn().Str("url", url).Int64("limit", d.maxBytes).Msg("download exceeded size cap")
				return n, ErrFileTooLarge
			}
			if _, werr := f.Write(buf[:k]); werr != nil {
				return n, werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return n, &Error{URL: url, Err: rerr}
		}
	}

	d.log.Debug().Str("dest", dest).Int64("bytes", n).Msg("download complete")
	return n, nil
}
