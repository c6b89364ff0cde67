package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
)

var ErrTooLarge = errors.New("audio preview exceeds download limit")

// Fetcher downloads a preview completely before decoding so the decoder can
// seek anywhere in it.
type Fetcher struct {
	client    *retryablehttp.Client
	userAgent string
	maxBytes  int64
	logger    *zap.Logger
}

func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	logger = logging.OrNop(logger)

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.API.Retries
	client.HTTPClient.Timeout = time.Duration(cfg.API.Timeout) * time.Second
	client.Logger = logging.ForRetryClient(logger)

	maxBytes := cfg.Audio.MaxDownloadBytes
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}

	return &Fetcher{
		client:    client,
		userAgent: cfg.API.UserAgent,
		maxBytes:  maxBytes,
		logger:    logger.Named("fetch"),
	}
}

// Fetch returns the full body at location. Locations without an http(s)
// scheme are read from disk. progress may be nil.
func (f *Fetcher) Fetch(ctx context.Context, location string, progress func(done, total int64)) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse audio url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchRemote(ctx, location, progress)
	case "file":
		return f.readLocal(u.Path, progress)
	default:
		return f.readLocal(location, progress)
	}
}

func (f *Fetcher) fetchRemote(ctx context.Context, location string, progress func(done, total int64)) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "audio/mpeg, audio/ogg, audio/wav, audio/*")
	req.Header.Set("Accept-Encoding", "identity")

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch audio: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	f.logger.Debug("stream opened",
		zap.String("url", location),
		zap.Int64("content_length", resp.ContentLength),
		zap.String("content_type", resp.Header.Get("Content-Type")))

	data, err := f.readAll(resp.Body, resp.ContentLength, progress)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("download complete",
		zap.String("url", location),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(started)))

	return data, nil
}

func (f *Fetcher) readLocal(path string, progress func(done, total int64)) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var size int64 = -1
	if st, err := file.Stat(); err == nil {
		size = st.Size()
	}
	if size > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	return f.readAll(file, size, progress)
}

func (f *Fetcher) readAll(r io.Reader, total int64, progress func(done, total int64)) ([]byte, error) {
	tracker := NewProgressTracker(r, total, 100*time.Millisecond, progress)

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	n, err := buf.ReadFrom(io.LimitReader(tracker, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if n > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	tracker.Finish()
	return buf.Bytes(), nil
}
