package scraper

import (
	"context"

	"pixivcrawler/internal/downloader"
	"pixivcrawler/pkg/pixiv"
)

// PixivClient defines the Pixiv API operations the scraper needs
type PixivClient interface {
	SearchPage(ctx context.Context, tag string, page int) ([]pixiv.ArtworkSummary, error)
	ArtworkPages(ctx context.Context, artworkID string) ([]pixiv.MediaResource, error)
}

// FileDownloader saves a single image
type FileDownloader interface {
	Download(ctx context.Context, job downloader.Job) downloader.Result
}
