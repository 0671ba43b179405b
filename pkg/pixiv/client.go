package pixiv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pixivcrawler/internal/metrics"
	"pixivcrawler/pkg/config"
	"pixivcrawler/pkg/errors"
	"pixivcrawler/pkg/logger"
	"pixivcrawler/pkg/retry"
)

// Options configures a Client
type Options struct {
	Cookie          string
	UserAgent       string
	Language        string
	FetchTimeout    time.Duration
	DownloadTimeout time.Duration
	MaxAttempts     int
	RetryDelay      time.Duration
	// BaseURL overrides https://www.pixiv.net, mostly for tests
	BaseURL string
	// Transport overrides http.DefaultTransport underneath decompression
	Transport http.RoundTripper
}

// OptionsFromConfig maps the pixiv and http config sections to client options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Cookie:          cfg.Pixiv.Cookie,
		UserAgent:       cfg.Pixiv.UserAgent,
		Language:        cfg.Pixiv.Language,
		FetchTimeout:    cfg.HTTP.FetchTimeout,
		DownloadTimeout: cfg.HTTP.DownloadTimeout,
		MaxAttempts:     cfg.HTTP.MaxAttempts,
		RetryDelay:      cfg.HTTP.RetryDelay,
	}
}

// Client holds a Pixiv session: the cookie and browser headers sent with
// every request. JSON calls and file downloads use separate timeouts.
type Client struct {
	apiClient      *http.Client
	downloadClient *http.Client
	headers        map[string]string
	baseURL        string
	language       string
	maxAttempts    int
	backoff        retry.BackoffStrategy
	logger         logger.Logger
}

// NewClient creates a new Pixiv API client
func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	defaults := config.DefaultConfig()
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaults.HTTP.FetchTimeout
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = defaults.HTTP.DownloadTimeout
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaults.HTTP.MaxAttempts
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.Pixiv.UserAgent
	}
	if opts.Language == "" {
		opts.Language = defaults.Pixiv.Language
	}
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}

	transport := newCompressionTransport(opts.Transport)

	headers := map[string]string{
		"User-Agent":      opts.UserAgent,
		"Referer":         BaseURL + "/",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
	}
	if opts.Cookie != "" {
		headers["Cookie"] = opts.Cookie
	}

	return &Client{
		apiClient:      &http.Client{Timeout: opts.FetchTimeout, Transport: transport},
		downloadClient: &http.Client{Timeout: opts.DownloadTimeout, Transport: transport},
		headers:        headers,
		baseURL:        opts.BaseURL,
		language:       opts.Language,
		maxAttempts:    opts.MaxAttempts,
		backoff:        &retry.ConstantBackoff{Delay: opts.RetryDelay},
		logger:         log,
	}
}

// doRequest performs a single GET with the session headers. Non-2xx
// responses are closed and returned as typed errors.
func (c *Client) doRequest(ctx context.Context, httpClient *http.Client, rawURL string, override map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range override {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"url": rawURL,
	})

	resp, err := httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.New(errors.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      rawURL,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, errors.New(errors.StatusType(resp.StatusCode), resp.StatusCode, "unexpected status code: %d", resp.StatusCode)
	}

	return resp, nil
}

func (c *Client) retryConfig(ctx context.Context, rawURL string) *retry.Config {
	return &retry.Config{
		MaxAttempts: c.maxAttempts,
		Backoff:     c.backoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.logger,
		Fields:      map[string]interface{}{"url": rawURL},
	}
}

// GetJSON performs a GET request and decodes the JSON response into target.
// Transport failures, non-2xx statuses and undecodable bodies are retried.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, target interface{}) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	return retry.Do(func() error {
		resp, err := c.doRequest(ctx, c.apiClient, rawURL, nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.New(errors.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
		}

		if err := json.Unmarshal(body, target); err != nil {
			bodyPreview := string(body)
			if len(bodyPreview) > 200 {
				bodyPreview = bodyPreview[:200] + "..."
			}
			c.logger.DebugWithFields("failed to parse JSON response", map[string]interface{}{
				"url":          rawURL,
				"error":        err.Error(),
				"body_preview": bodyPreview,
			})
			return errors.New(errors.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
		}
		return nil
	}, c.retryConfig(ctx, rawURL))
}

// Download opens the body of a file. The Referer is replaced by the given
// value; Pixiv's image servers reject requests without an artwork Referer.
// The caller must close the returned reader.
func (c *Client) Download(ctx context.Context, rawURL, referer string) (io.ReadCloser, error) {
	var override map[string]string
	if referer != "" {
		override = map[string]string{"Referer": referer}
	}

	resp, err := retry.DoWithResult(func() (*http.Response, error) {
		return c.doRequest(ctx, c.downloadClient, rawURL, override)
	}, c.retryConfig(ctx, rawURL))
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("download", "error").Inc()
		return nil, err
	}
	metrics.APIRequestsTotal.WithLabelValues("download", "ok").Inc()
	return resp.Body, nil
}

// SearchPage fetches one page of popular results for tag. An empty slice
// means the listing is exhausted.
func (c *Client) SearchPage(ctx context.Context, tag string, page int) ([]ArtworkSummary, error) {
	var response SearchResponse
	err := c.GetJSON(ctx, SearchURL(c.baseURL, tag), SearchParams(tag, page, c.language), &response)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, err
	}

	if response.Error {
		metrics.APIRequestsTotal.WithLabelValues("search", "api_error").Inc()
		return nil, errors.New(errors.ErrorTypeAPI, http.StatusOK, "search for %q page %d failed: %s", tag, page, response.Message)
	}
	if response.Body == nil || response.Body.IllustManga == nil {
		metrics.APIRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, errors.New(errors.ErrorTypeParsing, http.StatusOK, "search response has no illustManga section")
	}

	metrics.APIRequestsTotal.WithLabelValues("search", "ok").Inc()
	return response.Body.IllustManga.Data, nil
}

// ArtworkPages fetches the original image URLs and dimensions of an artwork
func (c *Client) ArtworkPages(ctx context.Context, artworkID string) ([]MediaResource, error) {
	var response PagesResponse
	if err := c.GetJSON(ctx, PagesURL(c.baseURL, artworkID), nil, &response); err != nil {
		metrics.APIRequestsTotal.WithLabelValues("pages", "error").Inc()
		return nil, err
	}

	if response.Error {
		metrics.APIRequestsTotal.WithLabelValues("pages", "api_error").Inc()
		return nil, errors.New(errors.ErrorTypeAPI, http.StatusOK, "pages of artwork %s: %s", artworkID, response.Message)
	}

	resources := make([]MediaResource, 0, len(response.Body))
	for i, page := range response.Body {
		if page.URLs.Original == "" {
			c.logger.WarnWithFields("page has no original url", map[string]interface{}{
				"artwork_id": artworkID,
				"page":       i,
			})
			continue
		}
		resources = append(resources, MediaResource{
			URL:    page.URLs.Original,
			Width:  page.Width,
			Height: page.Height,
		})
	}

	metrics.APIRequestsTotal.WithLabelValues("pages", "ok").Inc()
	return resources, nil
}

// String describes the client for debug output without leaking the cookie
func (c *Client) String() string {
	_, hasCookie := c.headers["Cookie"]
	return fmt.Sprintf("pixiv.Client{base=%s lang=%s cookie=%t attempts=%d}", c.baseURL, c.language, hasCookie, c.maxAttempts)
}
