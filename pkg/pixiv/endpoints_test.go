package pixiv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchURL(t *testing.T) {
	assert.Equal(t, "https://www.pixiv.net/ajax/search/artworks/landscape", SearchURL(BaseURL, "landscape"))
	assert.Equal(t, "http://127.0.0.1:1234/ajax/search/artworks/%E9%A2%A8%E6%99%AF", SearchURL("http://127.0.0.1:1234/", "風景"))
	assert.Equal(t, "https://www.pixiv.net/ajax/search/artworks/a%2Fb", SearchURL(BaseURL, "a/b"))
}

func TestSearchParams(t *testing.T) {
	params := SearchParams("風景", 3, "zh")

	assert.Equal(t, "風景", params.Get("word"))
	assert.Equal(t, "popular_d", params.Get("order"))
	assert.Equal(t, "all", params.Get("mode"))
	assert.Equal(t, "3", params.Get("p"))
	assert.Equal(t, "s_tag_full", params.Get("s_mode"))
	assert.Equal(t, "all", params.Get("type"))
	assert.Equal(t, "zh", params.Get("lang"))
	assert.Len(t, params, 7)
}

func TestPagesURL(t *testing.T) {
	assert.Equal(t, "https://www.pixiv.net/ajax/illust/12345/pages", PagesURL(BaseURL, "12345"))
}

func TestArtworkURL(t *testing.T) {
	assert.Equal(t, "https://www.pixiv.net/artworks/12345", ArtworkURL("12345"))
	assert.Empty(t, ArtworkURL(""))
}

func TestTagFromURL(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "escaped tag with query",
			input:  "https://www.pixiv.net/tags/%E5%8F%A4%E6%98%8E%E5%9C%B0%E3%81%93%E3%81%84%E3%81%97/artworks?order=popular_d",
			want:   "古明地こいし",
			wantOK: true,
		},
		{
			name:   "plain tag",
			input:  "https://www.pixiv.net/tags/landscape/artworks",
			want:   "landscape",
			wantOK: true,
		},
		{
			name:   "language prefix",
			input:  "https://www.pixiv.net/en/tags/sky/artworks?s_mode=s_tag",
			want:   "sky",
			wantOK: true,
		},
		{
			name:   "not a tag page",
			input:  "https://www.pixiv.net/artworks/12345",
			wantOK: false,
		},
		{
			name:   "bare tag",
			input:  "landscape",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TagFromURL(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveTag(t *testing.T) {
	assert.Equal(t, "sky", ResolveTag("https://www.pixiv.net/tags/sky/artworks"))
	assert.Equal(t, "sky", ResolveTag("  sky "))
}
