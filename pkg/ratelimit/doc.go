// Package ratelimit spaces out requests to Pixiv.
//
// The crawler is sequential, so pacing is a fixed pause between consecutive
// units of work (pages, artworks, files) rather than a token budget:
//
//	pages := ratelimit.NewPacer(time.Second)
//	for page := 1; ; page++ {
//		// fetch page
//		if err := pages.Wait(ctx); err != nil {
//			return err
//		}
//	}
//
// Wait returns early with the context error when the context is cancelled.
package ratelimit
