package scraper

import (
	"context"

	"pixivcrawler/pkg/errors"
	"pixivcrawler/pkg/pixiv"
)

// maxPrealloc bounds the up-front capacity of the id slice; targets come
// from user config
const maxPrealloc = 256

// FetchIdentifiers pages through the popular results for tag and returns up
// to targetCount artwork ids in listing order. The listing ends early on a
// failed or empty page; whatever was collected so far is returned.
func (s *Scraper) FetchIdentifiers(ctx context.Context, tag string, targetCount int) []string {
	ids := make([]string, 0, min(targetCount, maxPrealloc))
	log := s.logger.WithFields(map[string]interface{}{
		"tag":           tag,
		"target":        targetCount,
		"exclude_manga": s.opts.ExcludeManga,
	})
	log.Info("searching tag")

	for page := 1; len(ids) < targetCount; page++ {
		if ctx.Err() != nil {
			break
		}

		items, err := s.client.SearchPage(ctx, tag, page)
		if err != nil {
			if ctx.Err() == nil {
				log.WithError(err).WarnWithFields("listing ended early", map[string]interface{}{
					"page":       page,
					"error_type": string(errors.TypeOf(err)),
				})
			}
			break
		}
		if len(items) == 0 {
			log.InfoWithFields("no more artworks", map[string]interface{}{"page": page})
			break
		}

		kept := 0
		for _, item := range items {
			if !s.accept(item) {
				continue
			}
			ids = append(ids, item.ID)
			kept++
			if len(ids) >= targetCount {
				break
			}
		}
		log.DebugWithFields("page fetched", map[string]interface{}{
			"page":      page,
			"items":     len(items),
			"kept":      kept,
			"collected": len(ids),
		})

		if len(ids) >= targetCount {
			break
		}
		if err := s.pagePacer.Wait(ctx); err != nil {
			break
		}
	}

	log.InfoWithFields("search finished", map[string]interface{}{"found": len(ids)})
	return ids
}

// accept filters search results: advert slots have no id, and manga is
// dropped when only illustrations are wanted
func (s *Scraper) accept(item pixiv.ArtworkSummary) bool {
	if item.ID == "" {
		return false
	}
	if s.opts.ExcludeManga && !item.IsIllustration() {
		return false
	}
	return true
}

// FetchMedia returns the images of an artwork, or an empty slice when the
// pages request fails
func (s *Scraper) FetchMedia(ctx context.Context, artworkID string) []pixiv.MediaResource {
	resources, err := s.client.ArtworkPages(ctx, artworkID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.WithError(err).WarnWithFields("failed to fetch artwork pages", map[string]interface{}{
				"artwork_id": artworkID,
			})
		}
		return []pixiv.MediaResource{}
	}
	return resources
}
