// Package download relays large media byte streams to HTTP clients.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const copyChunkSize = 8192

// Proxy streams a remote media file to a response writer, attaching the
// Referer header the origin requires. It never buffers the whole file.
type Proxy struct {
	client *http.Client
	logger *zap.Logger
}

// New constructs a Proxy. A nil client gets a default with no overall
// timeout; downloads are bounded by the caller's context instead.
func New(client *http.Client, logger *zap.Logger) *Proxy {
	if client == nil {
		client = &http.Client{Timeout: 0}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proxy{client: client, logger: logger}
}

// Filename derives the attachment filename from an item title, replacing
// spaces so the content-disposition header stays unquoted-safe.
func Filename(title string) string {
	return strings.ReplaceAll(title+".mp4", " ", "_")
}

// Stream fetches videoURL with the given referer and copies the bytes to w.
// Response headers are written before the first byte, so an upstream failure
// detected later can only end the stream early; it is logged, not retried.
func (p *Proxy) Stream(ctx context.Context, w http.ResponseWriter, videoURL, refererURL, title string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("Referer", refererURL)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch video: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.logger.Warn("close download body failed", zap.Error(cerr))
		}
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fetch video: upstream status %d", resp.StatusCode)
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", Filename(title)))

	written, err := io.CopyBuffer(flushWriter{w}, resp.Body, make([]byte, copyChunkSize))
	if err != nil {
		// The status line is already gone; all we can do is stop and log.
		p.logger.Warn("video relay interrupted",
			zap.String("url", videoURL),
			zap.Int64("bytes", written),
			zap.Error(err),
		)
		return nil
	}
	p.logger.Info("video relayed",
		zap.String("url", videoURL),
		zap.Int64("bytes", written),
		zap.Duration("dur", time.Since(start)),
	)
	return nil
}

// flushWriter pushes each chunk to the client immediately so playback can
// begin before the download completes.
type flushWriter struct {
	w http.ResponseWriter
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("write chunk: %w", err)
	}
	if f, ok := fw.w.(http.Flusher); ok {
		f.Flush()
	}
	return n, nil
}
