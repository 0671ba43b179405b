// Package scraper downloads the most popular artworks of a Pixiv tag.
//
// A run scans the tag's folders for artwork ids already on disk, pages
// through the tag search until enough ids are collected, then fetches the
// image list of every new artwork and saves each image, sorted into
// horizontal, vertical and square folders when enabled.
//
// Usage:
//
//	client := pixiv.NewClient(pixiv.OptionsFromConfig(cfg), log)
//	s := scraper.New(client, downloader.New(client, log), scraper.OptionsFromConfig(cfg), log)
//
//	summary, err := s.Run(ctx, "風景", 500)
//	if err != nil {
//	    // empty tag, target below one, an unreadable save folder or ctx cancelled
//	}
//
// Everything is sequential. Pauses between pages, artworks and images keep
// the request rate polite. Network failures never abort a run: a failed page
// ends the listing, a failed artwork or image is logged and skipped.
package scraper
