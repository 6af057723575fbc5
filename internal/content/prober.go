package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
)

// Name is the collector name used in pipeline results.
const Name = "content"

const (
	// DefaultMaxBodySize caps how much of a response is parsed.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// maxRedirects is the redirect limit of the default client.
	maxRedirects = 10

	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

// ErrTooManyRedirects is returned when the redirect limit is exceeded.
var ErrTooManyRedirects = errors.New("stopped after too many redirects")

// Prober fetches pages and extracts content features.
type Prober struct {
	client      *http.Client
	maxBodySize int64
	userAgent   string
	logger      *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithHTTPClient sets the HTTP client, for example one that routes
// through a SOCKS5 proxy.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Prober) {
		p.client = client
	}
}

// WithMaxBodySize caps the number of body bytes parsed.
func WithMaxBodySize(n int64) Option {
	return func(p *Prober) {
		if n > 0 {
			p.maxBodySize = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewHTTPClient returns the direct client used when none is configured.
// Request deadlines come from the context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// NewProber returns a Prober.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		maxBodySize: DefaultMaxBodySize,
		userAgent:   defaultUserAgent,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = NewHTTPClient()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Fetch issues one GET for rawURL and parses the response body whatever
// its status code. Error pages of phishing kits are still pages.
func (p *Prober) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	page, err := Parse(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return page, nil
}

// Name implements pipeline.Collector.
func (p *Prober) Name() string { return Name }

// Defaults implements pipeline.Collector.
func (p *Prober) Defaults() feature.Vector {
	v := feature.New()
	v.SetBool(feature.HasForms, false)
	v.SetBool(feature.HasPasswordField, false)
	v.SetInt(feature.NumExternalLinks, 0)
	v.SetBool(feature.HasFavicon, false)
	v.SetInt(feature.PageRank, 0)
	return v
}

// Collect implements pipeline.Collector.
func (p *Prober) Collect(ctx context.Context, rawURL string) (feature.Vector, error) {
	page, err := p.Fetch(ctx, rawURL)
	if err != nil {
		p.logger.Debug("content probe failed", "url", rawURL, "error", err)
		return nil, err
	}
	return Features(page, lexical.Split(rawURL).Authority), nil
}

// Features converts a parsed page into feature values. host is matched
// against anchor hrefs by CountExternalLinks.
func Features(page *Page, host string) feature.Vector {
	v := feature.New()
	v.SetBool(feature.HasForms, len(page.Forms) > 0)
	v.SetBool(feature.HasPasswordField, page.HasPasswordField)
	v.SetInt(feature.NumExternalLinks, CountExternalLinks(page.Hrefs, host))
	v.SetBool(feature.HasFavicon, page.HasFavicon)
	v.SetInt(feature.PageRank, 0)
	return v
}
