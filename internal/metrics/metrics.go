package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Crawl metrics
var (
	// DownloadsTotal counts image files by outcome: downloaded, skipped or failed.
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixivcrawler_downloads_total",
			Help: "Total number of image files handled by the downloader.",
		},
		[]string{"status"},
	)

	// APIRequestsTotal counts Pixiv calls per endpoint (search, pages, download)
	// after retries, by outcome: ok, error or api_error.
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixivcrawler_api_requests_total",
			Help: "Total number of Pixiv requests after retries.",
		},
		[]string{"endpoint", "status"},
	)
)

// Transform metrics
var (
	ImagesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixivcrawler_images_processed_total",
			Help: "Total number of images converted by the transformer.",
		},
		[]string{"status"},
	)
)

// Gallery metrics
var (
	GalleryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixivcrawler_gallery_requests_total",
			Help: "Total number of random image requests.",
		},
		[]string{"orientation", "status"},
	)

	ManifestCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pixivcrawler_manifest_cache_hits_total",
			Help: "Total number of manifest lookups served from memory.",
		},
	)

	ManifestCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pixivcrawler_manifest_cache_misses_total",
			Help: "Total number of manifest lookups that read the file.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		DownloadsTotal,
		APIRequestsTotal,
		ImagesProcessedTotal,
		GalleryRequestsTotal,
		ManifestCacheHitsTotal,
		ManifestCacheMissesTotal,
	)
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
