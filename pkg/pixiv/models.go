package pixiv

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchResponse is the envelope returned by the tag search endpoint
type SearchResponse struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Body    *SearchBody `json:"body"`
}

// SearchBody holds the result sections of a search page
type SearchBody struct {
	IllustManga *IllustManga `json:"illustManga"`
}

// IllustManga holds the artworks of one search page
type IllustManga struct {
	Data  []ArtworkSummary `json:"data"`
	Total int              `json:"total"`
}

// ArtworkSummary is a single search result. Advert slots carry no ID.
// IllustType is nil when the result has no type code.
type ArtworkSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	IllustType *int   `json:"illustType"`
	PageCount  int    `json:"pageCount"`
}

// UnmarshalJSON accepts the id as a JSON string or number
func (a *ArtworkSummary) UnmarshalJSON(data []byte) error {
	type summary ArtworkSummary
	var raw struct {
		summary
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	*a = ArtworkSummary(raw.summary)
	a.ID = id
	return nil
}

// decodeID returns the id as a string; absent and null ids are empty
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("artwork id %s: %w", raw, err)
	}
	return n.String(), nil
}

// IllustTypeIllustration marks single illustrations; 1 is manga, 2 ugoira
const IllustTypeIllustration = 0

// IllustTypeCode returns a pointer to the type code t
func IllustTypeCode(t int) *int {
	return &t
}

// IsIllustration reports whether the artwork is an illustration. A result
// without a type code is not.
func (a ArtworkSummary) IsIllustration() bool {
	return a.IllustType != nil && *a.IllustType == IllustTypeIllustration
}

// PagesResponse is the envelope returned by the pages endpoint
type PagesResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Body    []Page `json:"body"`
}

// Page is one image of an artwork
type Page struct {
	URLs   PageURLs `json:"urls"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

// PageURLs lists the renditions of a page
type PageURLs struct {
	ThumbMini string `json:"thumb_mini"`
	Small     string `json:"small"`
	Regular   string `json:"regular"`
	Original  string `json:"original"`
}

// MediaResource is a downloadable original image with its dimensions
type MediaResource struct {
	URL    string
	Width  int
	Height int
}
