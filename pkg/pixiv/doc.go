// Package pixiv provides a client for the Pixiv web AJAX API.
//
// This package includes:
//   - A session-holding HTTP client with retries and response decompression
//   - Typed models for the search and pages endpoints
//   - Helpers for constructing endpoint URLs and parsing tag page URLs
//
// Example usage:
//
//	client := pixiv.NewClient(pixiv.OptionsFromConfig(cfg), log)
//
//	items, err := client.SearchPage(ctx, "風景", 1)
//	if err != nil {
//	    if errors.TypeOf(err) == errors.ErrorTypeAPI {
//	        // Pixiv answered with its error flag set
//	    }
//	}
//
//	for _, item := range items {
//	    images, err := client.ArtworkPages(ctx, item.ID)
//	    // Download each image with the artwork page as Referer
//	    body, err := client.Download(ctx, images[0].URL, pixiv.ArtworkURL(item.ID))
//	}
package pixiv
