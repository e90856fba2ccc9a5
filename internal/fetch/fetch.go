package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/carrierscope/internal/cache"
)

// DefaultUserAgent mimics a desktop browser; the registries serve reduced or
// blocked pages to obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	AcceptJSON = "application/json"
)

// HTMLContentTypes and JSONContentTypes are the content-type prefixes
// expected for the two kinds of upstream documents. A mismatch is logged and
// the body is still returned; the extractors decide what it holds.
var (
	HTMLContentTypes = []string{"text/html", "application/xhtml+xml"}
	JSONContentTypes = []string{"application/json", "application/javascript", "text/"}
)

// Request describes one upstream GET. Zero fields fall back to the client's
// defaults.
type Request struct {
	URL     string
	Accept  string
	Timeout time.Duration
	// ContentTypes lists expected content-type prefixes. Nil means HTML.
	ContentTypes []string
}

// Client wraps http.Client with browser-like headers, timeouts, an optional
// politeness limiter and an optional on-disk cache. It does not retry unless
// MaxAttempts is raised; retry policy belongs to callers.
type Client struct {
	HTTPClient     *http.Client
	UserAgent      string
	AcceptLanguage string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request when Request.Timeout is zero.
	PerRequestTimeout time.Duration
	Cache             *cache.HTTPCache
	// BypassCache skips conditional requests and cached bodies but still
	// stores fresh responses.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests. Zero means unlimited.
	MaxConcurrent int
	// Limiter, when set, paces outbound requests.
	Limiter *rate.Limiter

	limiter     chan struct{}
	limiterOnce sync.Once
}

// StatusError reports a non-success HTTP status from upstream.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

func (c *Client) getHTTPClient(timeout time.Duration) *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: timeout, CheckRedirect: c.checkRedirectFunc()}
}

// Do issues the GET described by r and returns the body and content type.
// A 304 whose cached body has gone missing is retried once unconditionally.
func (c *Client) Do(ctx context.Context, r Request) ([]byte, string, error) {
	useCache := c.Cache != nil && !c.BypassCache
	if useCache {
		if body, ct, ok := c.Cache.Fresh(ctx, r.URL); ok {
			return body, ct, nil
		}
	}
	var etag, lastMod, cachedType string
	if useCache {
		if meta, err := c.Cache.LoadMeta(ctx, r.URL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
			cachedType = meta.ContentType
		}
	}
	res, err := c.attempt(ctx, r, etag, lastMod)
	if err != nil {
		return nil, "", err
	}
	if res.status == http.StatusNotModified {
		if c.Cache != nil {
			if cached, err := c.Cache.LoadBody(ctx, r.URL); err == nil {
				return cached, cachedType, nil
			}
		}
		log.Debug().Str("url", r.URL).Msg("cached body missing after 304, refetching")
		if res, err = c.attempt(ctx, r, "", ""); err != nil {
			return nil, "", err
		}
		if res.status == http.StatusNotModified {
			return nil, "", fmt.Errorf("unconditional request for %s answered 304", r.URL)
		}
	}
	if c.Cache != nil && res.status == http.StatusOK {
		_ = c.Cache.Save(ctx, r.URL, res.contentType, res.etag, res.lastModified, res.body)
	}
	return res.body, res.contentType, nil
}

// attempt runs tryOnce up to MaxAttempts times, backing off between
// transient failures.
func (c *Client) attempt(ctx context.Context, r Request, etag, lastMod string) (response, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, r, etag, lastMod)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return response{}, ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return response{}, lastErr
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) tryOnce(ctx context.Context, r Request, etag, lastMod string) (response, error) {
	c.acquire()
	defer c.release()

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return response{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = c.PerRequestTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", r.URL)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	accept := r.Accept
	if accept == "" {
		accept = AcceptHTML
	}
	req.Header.Set("Accept", accept)
	lang := c.AcceptLanguage
	if lang == "" {
		lang = "en-US,en;q=0.5"
	}
	req.Header.Set("Accept-Language", lang)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient(timeout).Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return response{
			contentType:  resp.Header.Get("Content-Type"),
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			status:       resp.StatusCode,
		}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{status: resp.StatusCode}, &StatusError{URL: r.URL, Status: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("read body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(b)
	}
	allowed := r.ContentTypes
	if allowed == nil {
		allowed = HTMLContentTypes
	}
	if !hasContentType(contentType, allowed) {
		log.Debug().Str("url", r.URL).Str("content_type", contentType).Msg("unexpected content type, parsing anyway")
	}
	return response{
		body:         b,
		contentType:  contentType,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}, nil
}

// isTransient treats 5xx responses and deadline expiry as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 500
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func hasContentType(ct string, allowed []string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, prefix := range allowed {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
