// Package fetch wraps HTTP GET with the resilience the scraped sites demand:
// weighted proxy rotation, exponential-backoff retries, a historical-archive
// fallback for pages that have rotted, repair of malformed upstream headers,
// and a persistent response cache with per-URL expiry rules.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CachedResponse is the serialized form a response takes in the persistent
// cache.
type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// ResponseCache is the persistent key-value store for fetched responses,
// keyed by request fingerprint. Implementations return ErrCacheBusy on lock
// contention and ErrLengthMismatch when an entry's Content-Length header
// contradicts its body.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Set(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error
}

// Response is what a fetch returns to the caller.
type Response struct {
	StatusCode  int
	Header      http.Header
	Body        []byte
	FromCache   bool
	FromArchive bool
}

// TTLRule maps a URL pattern to a cache lifetime. Providers supply rules for
// their own endpoints; TTL 0 means the entry never expires.
type TTLRule struct {
	Pattern *regexp.Regexp
	TTL     time.Duration
}

// Config holds fetch-layer tuning. Zero values fall back to the defaults
// below.
type Config struct {
	MaxAttempts      int
	AttemptTimeout   time.Duration
	BackoffBase      time.Duration
	BackoffCap       time.Duration
	FastFailDomains  []string
	FastFailTimeout  time.Duration
	FastFailAttempts int
	WaybackURL       string
	WaybackTimeout   time.Duration
	DefaultTTL       time.Duration
	UserAgent        string
}

const (
	defaultMaxAttempts      = 64
	defaultAttemptTimeout   = 30 * time.Second
	defaultBackoffBase      = 250 * time.Millisecond
	defaultBackoffCap       = 30 * time.Second
	defaultFastFailTimeout  = 5 * time.Second
	defaultFastFailAttempts = 3
	defaultWaybackURL       = "https://archive.org/wayback/available"
	defaultDefaultTTL       = time.Hour
	defaultUserAgent        = "data-reconciler/1.0"
)

// Client is the resilient HTTP fetcher shared by provider adapters.
type Client struct {
	cfg      Config
	cache    ResponseCache
	pool     *ProxyPool
	wayback  *waybackClient
	rules    []TTLRule
	fastFail map[string]struct{}
	logger   zerolog.Logger
	rng      *rand.Rand
	rngMu    sync.Mutex

	transportMu sync.Mutex
	transports  map[string]*http.Transport
}

// NewClient creates a fetch client. cache may not be nil; rules come from the
// provider adapters that own the endpoints.
func NewClient(cfg Config, cache ResponseCache, pool *ProxyPool, rules []TTLRule, logger zerolog.Logger) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = defaultBackoffCap
	}
	if cfg.FastFailTimeout <= 0 {
		cfg.FastFailTimeout = defaultFastFailTimeout
	}
	if cfg.FastFailAttempts <= 0 {
		cfg.FastFailAttempts = defaultFastFailAttempts
	}
	if cfg.WaybackURL == "" {
		cfg.WaybackURL = defaultWaybackURL
	}
	if cfg.WaybackTimeout <= 0 {
		cfg.WaybackTimeout = cfg.AttemptTimeout
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = defaultDefaultTTL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	fastFail := make(map[string]struct{}, len(cfg.FastFailDomains))
	for _, d := range cfg.FastFailDomains {
		fastFail[strings.ToLower(d)] = struct{}{}
	}

	return &Client{
		cfg:        cfg,
		cache:      cache,
		pool:       pool,
		wayback:    newWaybackClient(cfg.WaybackURL, cfg.WaybackTimeout),
		rules:      rules,
		fastFail:   fastFail,
		logger:     logger.With().Str("component", "fetch").Logger(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		transports: make(map[string]*http.Transport),
	}
}

// callOptions are per-call overrides.
type callOptions struct {
	noArchive bool
	headers   http.Header
}

// Option customizes one Get call.
type Option func(*callOptions)

// WithNoArchive disables the historical-archive fallback for this call.
func WithNoArchive() Option {
	return func(o *callOptions) { o.noArchive = true }
}

// WithHeader adds a request header that also participates in the cache
// fingerprint.
func WithHeader(key, value string) Option {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// Fingerprint computes the cache key for a request: method, URL and the
// headers that affect the response.
func Fingerprint(method, rawURL string, headers http.Header) string {
	h := sha256.New()
	io.WriteString(h, method)
	io.WriteString(h, "\n")
	io.WriteString(h, rawURL)

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		io.WriteString(h, "\n")
		io.WriteString(h, k)
		io.WriteString(h, ":")
		io.WriteString(h, strings.Join(headers[k], ","))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get fetches a URL with the full resilience stack. The returned response is
// always complete (body fully read); a caching failure never fails the fetch.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	fast := c.isFastFail(u.Hostname())
	maxAttempts := c.cfg.MaxAttempts
	attemptTimeout := c.cfg.AttemptTimeout
	if fast {
		maxAttempts = c.cfg.FastFailAttempts
		attemptTimeout = c.cfg.FastFailTimeout
	}

	key := Fingerprint(http.MethodGet, rawURL, call.headers)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attemptsTotal.Inc()

		resp, err := c.attempt(ctx, rawURL, key, attempt, fast, attemptTimeout, &call)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		reason := retryReason(err)
		if reason == "" {
			return nil, err
		}
		retriesTotal.WithLabelValues(reason).Inc()
		c.logger.Debug().
			Err(err).
			Str("url", rawURL).
			Str("reason", reason).
			Int("attempt", attempt+1).
			Msg("fetch attempt failed, backing off")

		if err := c.sleep(ctx, attempt); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("fetch %s: attempts exhausted: %w", rawURL, lastErr)
}

// attempt runs one fetch attempt: cache, then archive (first attempt only),
// then live.
func (c *Client) attempt(ctx context.Context, rawURL, key string, attempt int, fast bool, timeout time.Duration, call *callOptions) (*Response, error) {
	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		cacheHitsTotal.Inc()
		return &Response{
			StatusCode: cached.StatusCode,
			Header:     cached.Header,
			Body:       cached.Body,
			FromCache:  true,
		}, nil
	}
	cacheMissesTotal.Inc()

	// The archive is consulted once, before the first live attempt. Fast-fail
	// domains skip it entirely; their data is auxiliary and must not stall
	// the pipeline.
	if attempt == 0 && !fast && !call.noArchive {
		if resp, ok := c.tryWayback(ctx, rawURL); ok {
			c.store(ctx, key, rawURL, resp)
			return resp, nil
		}
	}

	resp, err := c.live(ctx, rawURL, timeout, call)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, rawURL, resp)
	return resp, nil
}

// tryWayback attempts the memento path. All failures are swallowed: the
// caller falls through to a live fetch.
func (c *Client) tryWayback(ctx context.Context, rawURL string) (*Response, bool) {
	mementoURL, err := c.wayback.lookup(ctx, rawURL)
	if err != nil || mementoURL == "" {
		if err != nil {
			c.logger.Debug().Err(err).Str("url", rawURL).Msg("archive lookup failed, falling through to live fetch")
		}
		return nil, false
	}

	resp, err := c.wayback.replay(ctx, mementoURL)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", rawURL).Msg("memento replay failed, falling through to live fetch")
		return nil, false
	}

	mementoHitsTotal.Inc()
	return resp, true
}

// live performs one direct HTTP attempt through a pool-picked proxy, with a
// wall-clock budget enforced independently of the retry loop: an attempt that
// hangs past the budget becomes a timeout and is retried, not left to hang.
func (c *Client) live(ctx context.Context, rawURL string, timeout time.Duration, call *callOptions) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	proxyURL, err := c.pool.Pick()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, vs := range call.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := &http.Client{Transport: c.transportFor(proxyURL)}
	httpResp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, &StatusError{URL: rawURL, StatusCode: httpResp.StatusCode}
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       body,
	}, nil
}

// store writes a response to the cache, repairing a contradictory
// Content-Length header once. Caching failure never fails the fetch: the
// content is still returned to the caller.
func (c *Client) store(ctx context.Context, key, rawURL string, resp *Response) {
	entry := &CachedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		FetchedAt:  time.Now().UTC(),
	}

	err := c.cache.Set(ctx, key, entry, c.ttlFor(rawURL))
	if errors.Is(err, ErrLengthMismatch) {
		repaired := *entry
		repaired.Header = entry.Header.Clone()
		repaired.Header.Set("Content-Length", strconv.Itoa(len(entry.Body)))
		repairsTotal.Inc()
		c.logger.Warn().
			Str("url", rawURL).
			Str("declared", entry.Header.Get("Content-Length")).
			Int("actual", len(entry.Body)).
			Msg("upstream content-length mismatch, caching repaired response")
		err = c.cache.Set(ctx, key, &repaired, c.ttlFor(rawURL))
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("failed to cache response, proceeding uncached")
	}
}

// ttlFor resolves the cache lifetime for a URL from provider-supplied rules.
func (c *Client) ttlFor(rawURL string) time.Duration {
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(rawURL) {
			return rule.TTL
		}
	}
	return c.cfg.DefaultTTL
}

func (c *Client) isFastFail(host string) bool {
	_, ok := c.fastFail[strings.ToLower(host)]
	return ok
}

// backoffFor doubles the base interval per attempt, clamped at the cap.
// Doubling stops as soon as the cap is reached so high attempt counts never
// overflow the duration.
func (c *Client) backoffFor(attempt int) time.Duration {
	backoff := c.cfg.BackoffBase
	for i := 0; i < attempt; i++ {
		if backoff >= c.cfg.BackoffCap {
			return c.cfg.BackoffCap
		}
		backoff *= 2
	}
	if backoff > c.cfg.BackoffCap {
		return c.cfg.BackoffCap
	}
	return backoff
}

// sleep blocks for the backoff interval with full jitter, or until the
// context is done.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	backoff := c.backoffFor(attempt)
	c.rngMu.Lock()
	jittered := time.Duration(c.rng.Int63n(int64(backoff)) + 1)
	c.rngMu.Unlock()

	timer := time.NewTimer(jittered)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// transportFor returns a cached transport for the given proxy (nil = direct).
func (c *Client) transportFor(proxyURL *url.URL) *http.Transport {
	key := ""
	if proxyURL != nil {
		key = proxyURL.String()
	}

	c.transportMu.Lock()
	defer c.transportMu.Unlock()

	if t, ok := c.transports[key]; ok {
		return t
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != nil {
		t.Proxy = http.ProxyURL(proxyURL)
	}
	c.transports[key] = t
	return t
}
