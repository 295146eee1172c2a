// Package geocode resolves free-text German addresses through a Nominatim
// service. It is a convenience for address entry and sits outside the
// valuation pipeline.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/model"
)

// Defaults for Config.
const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "immowert/1.0"
	DefaultCacheSize = 256
	DefaultCacheTTL  = 10 * time.Minute
	DefaultTimeout   = 10 * time.Second
	MinQueryLength   = 3
	resultLimit      = 5
	providerName     = "nominatim"
)

// Details is the structured address part of a Nominatim result.
type Details struct {
	Road        string `json:"road"`
	HouseNumber string `json:"house_number"`
	Postcode    string `json:"postcode"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
}

// Candidate is one search hit.
type Candidate struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Details     Details `json:"address"`
}

// Address maps the hit onto the request address. Missing parts stay empty.
func (c Candidate) Address() model.Address {
	ort := c.Details.City
	if ort == "" {
		ort = c.Details.Town
	}
	if ort == "" {
		ort = c.Details.Village
	}
	return model.Address{
		Strasse:    c.Details.Road,
		Hausnummer: c.Details.HouseNumber,
		PLZ:        c.Details.Postcode,
		Ort:        ort,
	}
}

// Config holds client settings.
type Config struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	BaseURL    string
	UserAgent  string
	CacheSize  int
	CacheTTL   time.Duration
	// Retry governs repeats after 429 and 5xx answers. Nominatim allows one
	// request per second, so the default waits a second before the one retry.
	Retry common.RetryOptions
}

// Client queries Nominatim and caches search results.
type Client struct {
	httpClient *http.Client
	cache      *expirable.LRU[string, []Candidate]
	logger     *slog.Logger
	baseURL    string
	userAgent  string
	retry      common.RetryOptions
}

// New creates a Client, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 2
	}
	if cfg.Retry.InitialDelay <= 0 {
		cfg.Retry.InitialDelay = time.Second
	}
	if cfg.Retry.Logger == nil {
		cfg.Retry.Logger = cfg.Logger
	}

	return &Client{
		httpClient: cfg.HTTPClient,
		cache:      expirable.NewLRU[string, []Candidate](cfg.CacheSize, nil, cfg.CacheTTL),
		logger:     cfg.Logger,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		retry:      cfg.Retry,
	}
}

// Search returns up to five candidates for a free-text query restricted to
// Germany. Queries shorter than MinQueryLength return nothing.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, nil
	}

	key := strings.ToLower(query)
	if cached, ok := c.cache.Get(key); ok {
		c.logger.Debug("geocode cache hit", "query", query)
		return append([]Candidate(nil), cached...), nil
	}

	params := url.Values{}
	params.Set("q", query+",Deutschland")
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(resultLimit))

	var candidates []Candidate
	if err := c.get(ctx, "/search", params, &candidates); err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []Candidate{}
	}

	c.cache.Add(key, candidates)
	return append([]Candidate(nil), candidates...), nil
}

// Reverse resolves coordinates to the nearest address.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Candidate, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var result struct {
		Error string `json:"error"`
		Candidate
	}
	if err := c.get(ctx, "/reverse", params, &result); err != nil {
		return Candidate{}, err
	}
	if result.Error != "" {
		return Candidate{}, fmt.Errorf("reverse geocode %s,%s: %w (%s)",
			params.Get("lat"), params.Get("lon"), common.ErrNotFound, result.Error)
	}
	return result.Candidate, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return common.Retry(ctx, c.retry, func() error {
		err := c.fetch(ctx, path, params, out)
		var transportErr *common.TransportError
		if err != nil && errors.As(err, &transportErr) && !retryable(ctx, transportErr) {
			return common.Permanent(err)
		}
		return err
	})
}

func retryable(ctx context.Context, err *common.TransportError) bool {
	if ctx.Err() != nil {
		return false
	}
	return err.StatusCode == 0 || err.StatusCode == http.StatusTooManyRequests || err.StatusCode >= 500
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("Accept-Language", "de")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.TransportError{Provider: providerName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &common.TransportError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return common.Permanent(&common.TransportError{Provider: providerName, Err: fmt.Errorf("failed to decode response: %w", err)})
	}

	c.logger.Debug("geocode request completed", "path", path, "duration", time.Since(start))
	return nil
}
