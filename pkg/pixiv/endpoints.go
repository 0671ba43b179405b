package pixiv

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	// BaseURL is the base URL for Pixiv
	BaseURL = "https://www.pixiv.net"

	// SearchEndpoint is the tag search endpoint; the escaped tag is appended
	SearchEndpoint = "/ajax/search/artworks/"

	// PagesEndpoint is the per-artwork image list endpoint
	PagesEndpoint = "/ajax/illust/%s/pages"
)

// Search parameters sent with every listing request besides word, p and lang
const (
	SearchOrder = "popular_d"
	SearchMode  = "all"
	SearchSMode = "s_tag_full"
	SearchType  = "all"
)

var tagURLPattern = regexp.MustCompile(`/tags/([^/]+)/artworks`)

// SearchURL constructs the search URL for a tag relative to base
func SearchURL(base, tag string) string {
	return strings.TrimRight(base, "/") + SearchEndpoint + url.PathEscape(tag)
}

// SearchParams returns the query for one page of popular results
func SearchParams(tag string, page int, language string) url.Values {
	params := url.Values{}
	params.Set("word", tag)
	params.Set("order", SearchOrder)
	params.Set("mode", SearchMode)
	params.Set("p", strconv.Itoa(page))
	params.Set("s_mode", SearchSMode)
	params.Set("type", SearchType)
	params.Set("lang", language)
	return params
}

// PagesURL constructs the URL listing an artwork's images
func PagesURL(base, artworkID string) string {
	return strings.TrimRight(base, "/") + fmt.Sprintf(PagesEndpoint, url.PathEscape(artworkID))
}

// ArtworkURL returns the public page of an artwork, used as the download Referer
func ArtworkURL(artworkID string) string {
	if artworkID == "" {
		return ""
	}
	return fmt.Sprintf("%s/artworks/%s", BaseURL, artworkID)
}

// TagFromURL extracts the unescaped tag from a Pixiv tag page URL such as
// https://www.pixiv.net/tags/%E9%A2%A8%E6%99%AF/artworks?order=popular_d
func TagFromURL(raw string) (string, bool) {
	match := tagURLPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	tag, err := url.PathUnescape(match[1])
	if err != nil {
		return match[1], true
	}
	return tag, true
}

// ResolveTag accepts either a tag or a tag page URL
func ResolveTag(input string) string {
	input = strings.TrimSpace(input)
	if tag, ok := TagFromURL(input); ok {
		return tag
	}
	return input
}
