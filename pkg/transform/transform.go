package transform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixivcrawler/internal/metrics"
	"pixivcrawler/pkg/config"
	"pixivcrawler/pkg/logger"
	"pixivcrawler/pkg/manifest"
	"pixivcrawler/pkg/storage"
	"pixivcrawler/pkg/ui"
)

// OutputExt is the extension of every produced file
const OutputExt = ".jpg"

var sourceExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// Options controls the output size and quality
type Options struct {
	// MaxDimension bounds the longer side; 0 keeps the original size
	MaxDimension int
	// Quality is the JPEG quality, 1 to 100
	Quality int
}

// OptionsFromConfig maps the process config section
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxDimension: cfg.Process.MaxDimension,
		Quality:      cfg.Process.Quality,
	}
}

// CategoryReport describes one {tag}/{category} folder
type CategoryReport struct {
	Tag       string
	Category  string
	OutputDir string
	Sources   int
	Processed int
	Failed    int
	// Manifest is the written manifest path, empty when nothing was produced
	Manifest string
}

// Report is the outcome of one ProcessAll call
type Report struct {
	Categories []CategoryReport
	Processed  int
	Failed     int
	Duration   time.Duration
}

// Transformer converts images folder by folder
type Transformer struct {
	opts     Options
	progress ui.Progress
	logger   logger.Logger
}

// New creates a transformer. Quality outside 1..100 falls back to the
// default.
func New(opts Options, log logger.Logger) *Transformer {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		opts.Quality = config.DefaultConfig().Process.Quality
	}
	if opts.MaxDimension < 0 {
		opts.MaxDimension = 0
	}
	return &Transformer{opts: opts, progress: ui.NopProgress{}, logger: log}
}

// SetProgress sets the per-image progress sink
func (t *Transformer) SetProgress(p ui.Progress) {
	if p == nil {
		p = ui.NopProgress{}
	}
	t.progress = p
}

// ProcessAll converts every category under sourceRoot into outputRoot.
// Per-file failures are logged and counted; the returned error is reserved
// for an unusable source root and cancellation.
func (t *Transformer) ProcessAll(ctx context.Context, sourceRoot, outputRoot string) (*Report, error) {
	start := time.Now()
	report := &Report{}
	defer func() { report.Duration = time.Since(start) }()

	info, err := os.Stat(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("source directory %s: %w", sourceRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", sourceRoot)
	}

	t.logger.InfoWithFields("processing images", map[string]interface{}{
		"source":        sourceRoot,
		"output":        outputRoot,
		"max_dimension": t.opts.MaxDimension,
		"quality":       t.opts.Quality,
	})

	tags, err := subdirs(sourceRoot)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		categories, err := subdirs(filepath.Join(sourceRoot, tag))
		if err != nil {
			t.logger.WithError(err).WarnWithFields("cannot list tag folder", map[string]interface{}{"tag": tag})
			continue
		}
		for _, category := range categories {
			cr := t.ProcessCategory(ctx,
				filepath.Join(sourceRoot, tag, category),
				filepath.Join(outputRoot, tag, category),
			)
			cr.Tag = tag
			cr.Category = category
			report.Categories = append(report.Categories, cr)
			report.Processed += cr.Processed
			report.Failed += cr.Failed

			if err := ctx.Err(); err != nil {
				return report, err
			}
		}
	}

	t.logger.InfoWithFields("processing finished", map[string]interface{}{
		"categories": len(report.Categories),
		"processed":  report.Processed,
		"failed":     report.Failed,
	})
	return report, nil
}

// ProcessCategory converts the images of one folder into outDir and writes
// its manifest. An empty folder produces nothing, not even outDir.
func (t *Transformer) ProcessCategory(ctx context.Context, srcDir, outDir string) CategoryReport {
	cr := CategoryReport{OutputDir: outDir}
	log := t.logger.WithField("category", srcDir)

	sources, err := listImages(srcDir)
	if err != nil {
		log.WithError(err).Warn("cannot list category folder")
		return cr
	}
	cr.Sources = len(sources)
	if len(sources) == 0 {
		log.Info("no images found, skipping")
		return cr
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.WithError(err).ErrorWithFields("cannot create output folder", map[string]interface{}{"dir": outDir})
		cr.Failed = len(sources)
		return cr
	}

	t.progress.Start(filepath.Base(srcDir), len(sources))
	produced := make([]string, 0, len(sources))
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		name, err := t.ProcessImage(src, outDir)
		t.progress.Advance(filepath.Base(src), err == nil)
		if err != nil {
			cr.Failed++
			metrics.ImagesProcessedTotal.WithLabelValues("failed").Inc()
			log.WithError(err).WarnWithFields("skipping image", map[string]interface{}{"file": src})
			continue
		}
		cr.Processed++
		metrics.ImagesProcessedTotal.WithLabelValues("processed").Inc()
		produced = append(produced, name)
	}
	t.progress.Finish()

	if len(produced) == 0 {
		return cr
	}
	if err := manifest.Write(outDir, produced); err != nil {
		log.WithError(err).Error("failed to write manifest")
		return cr
	}
	cr.Manifest = manifest.Path(outDir)
	log.InfoWithFields("category processed", map[string]interface{}{
		"processed": cr.Processed,
		"failed":    cr.Failed,
		"manifest":  cr.Manifest,
	})
	return cr
}

// ProcessImage converts src into outDir and returns the produced file name
func (t *Transformer) ProcessImage(src, outDir string) (string, error) {
	img, err := decodeFile(src)
	if err != nil {
		return "", err
	}

	buf, err := encodeJPEG(prepare(img, t.opts.MaxDimension), t.opts.Quality)
	if err != nil {
		return "", err
	}

	base := filepath.Base(src)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + OutputExt
	if _, err := storage.SaveStream(buf, filepath.Join(outDir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// subdirs lists the directories directly under dir in name order
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// listImages returns the image files of dir in name order
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sourceExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
