package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/lumen-atj/lumen/backend/pkg/extract"
	"github.com/lumen-atj/lumen/backend/pkg/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	UserAgent      = "Mozilla/5.0 (compatible; Lumen/1.0)"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7"

	DefaultTimeout   = 20 * time.Second
	DefaultMaxBytes  = 5 << 20
	DefaultCacheTTL  = 5 * time.Minute
	defaultCacheSize = 256
)

var (
	ErrInvalidURL     = errors.New("invalid URL")
	ErrUnsupportedURL = errors.New("only HTTP/HTTPS URLs are supported")
	ErrNotHTML        = errors.New("URL does not point to an HTML page")
	ErrBlockedAddress = errors.New("URL resolves to a private or local address")
)

// FetchError is returned when the page could not be retrieved. StatusCode is
// zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch URL (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("could not reach URL: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Page is the readable content of a fetched URL.
type Page struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

// PageLoader fetches HTML pages and extracts their article text. Concurrent
// loads of one URL share a single request and successful results are cached.
type PageLoader struct {
	client       *http.Client
	timeout      time.Duration
	allowPrivate bool
	maxBytes     int64
	cache        *expirable.LRU[string, Page]
	group        singleflight.Group
}

type Option func(*PageLoader)

// WithHTTPClient replaces the client entirely, including the address guard.
func WithHTTPClient(c *http.Client) Option {
	return func(l *PageLoader) {
		l.client = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(l *PageLoader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithPrivateNetworks allows loopback, private and link-local destinations.
func WithPrivateNetworks() Option {
	return func(l *PageLoader) {
		l.allowPrivate = true
	}
}

func WithMaxBytes(n int64) Option {
	return func(l *PageLoader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(l *PageLoader) {
		l.cache = expirable.NewLRU[string, Page](defaultCacheSize, nil, ttl)
	}
}

func NewPageLoader(opts ...Option) *PageLoader {
	l := &PageLoader{
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBytes,
		cache:    expirable.NewLRU[string, Page](defaultCacheSize, nil, DefaultCacheTTL),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(l)
	}
	if l.client == nil {
		l.client = newClient(l.timeout, l.allowPrivate)
	}
	return l
}

// newClient dials without proxies so every connection, redirects included,
// passes the address check.
func newClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !allowPrivate {
		dialer.Control = denyPrivate
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{Timeout: timeout, Transport: transport}
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func denyPrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() ||
		sharedAddressSpace.Contains(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}

// Load fetches rawURL and extracts its title and text. Pages yielding too
// little text fail with extract.ErrExtractionFailed.
func (l *PageLoader) Load(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		if err == nil && u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
			return Page{}, ErrUnsupportedURL
		}
		return Page{}, ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Page{}, ErrUnsupportedURL
	}
	key := u.String()

	if page, ok := l.cache.Get(key); ok {
		logger.Debug("[Web] Cache hit", "url", key)
		return page, nil
	}

	// The shared fetch must not die with whichever caller started it.
	fetchCtx := context.WithoutCancel(ctx)
	result, err, shared := l.group.Do(key, func() (any, error) {
		if page, ok := l.cache.Get(key); ok {
			return page, nil
		}

		page, err := l.fetch(fetchCtx, key)
		if err != nil {
			return Page{}, err
		}
		l.cache.Add(key, page)
		return page, nil
	})
	if shared {
		logger.Debug("[Web] Joined in-flight fetch", "url", key)
	}
	if err != nil {
		return Page{}, err
	}
	return result.(Page), nil
}

func (l *PageLoader) fetch(ctx context.Context, pageURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedAddress) {
			return Page{}, ErrBlockedAddress
		}
		return Page{}, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return Page{}, ErrNotHTML
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return Page{}, &FetchError{URL: pageURL, Err: err}
	}
	logger.Debug("[Web] Fetched page", "url", pageURL, "bytes", len(body), "duration", time.Since(start))

	res, err := extract.Extract(string(body))
	if err != nil {
		return Page{}, err
	}
	return Page{Title: res.Title, Text: res.Text, SourceURL: pageURL}, nil
}
