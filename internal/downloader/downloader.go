package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"pixivcrawler/internal/metrics"
	"pixivcrawler/pkg/logger"
	"pixivcrawler/pkg/pixiv"
	"pixivcrawler/pkg/storage"
)

// Job is one image to fetch into a directory
type Job struct {
	URL       string
	ArtworkID string
	Dir       string
}

// Status is the outcome of a job
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Result represents the result of a download job
type Result struct {
	Job      Job
	Path     string
	Status   Status
	Error    error
	Duration time.Duration
	Size     int64
}

// FileFetcher opens the body of a remote file
type FileFetcher interface {
	Download(ctx context.Context, url, referer string) (io.ReadCloser, error)
}

// Downloader saves images one at a time. Failures are reported in the
// Result and never abort the caller's run.
type Downloader struct {
	client FileFetcher
	logger logger.Logger
}

// New creates a downloader
func New(client FileFetcher, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{client: client, logger: log}
}

// Download stores job.URL under job.Dir using the URL's file name. An
// existing file is left untouched and no request is made.
func (d *Downloader) Download(ctx context.Context, job Job) (result Result) {
	start := time.Now()
	result = Result{Job: job, Status: StatusFailed}
	defer func() {
		result.Duration = time.Since(start)
		metrics.DownloadsTotal.WithLabelValues(string(result.Status)).Inc()
	}()

	name, err := storage.FilenameFromURL(job.URL)
	if err != nil {
		result.Error = err
		d.logger.WithError(err).ErrorWithFields("cannot derive file name", map[string]interface{}{
			"artwork_id": job.ArtworkID,
			"url":        job.URL,
		})
		return result
	}

	if err := os.MkdirAll(job.Dir, 0755); err != nil {
		result.Error = fmt.Errorf("failed to create directory: %w", err)
		d.logger.WithError(err).ErrorWithFields("cannot create destination", map[string]interface{}{
			"dir": job.Dir,
		})
		return result
	}

	result.Path = filepath.Join(job.Dir, name)
	if storage.Exists(result.Path) {
		result.Status = StatusSkipped
		d.logger.DebugWithFields("file already exists", map[string]interface{}{
			"path": result.Path,
		})
		return result
	}

	body, err := d.client.Download(ctx, job.URL, pixiv.ArtworkURL(job.ArtworkID))
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		d.logger.WithError(err).ErrorWithFields("failed to download image", map[string]interface{}{
			"artwork_id": job.ArtworkID,
			"url":        job.URL,
		})
		return result
	}
	defer body.Close()

	size, err := storage.SaveStream(body, result.Path)
	result.Size = size
	if err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		d.logger.WithError(err).ErrorWithFields("failed to save image", map[string]interface{}{
			"artwork_id": job.ArtworkID,
			"path":       result.Path,
			"size":       size,
		})
		return result
	}

	result.Status = StatusDownloaded
	d.logger.DebugWithFields("image saved", map[string]interface{}{
		"artwork_id": job.ArtworkID,
		"path":       result.Path,
		"size":       size,
		"duration":   time.Since(start),
	})
	return result
}
