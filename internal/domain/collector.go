package domain

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
	"github.com/leaderofARS/anti-phishing-system/internal/pipeline"
	"golang.org/x/net/publicsuffix"
)

// Name is the collector name used in pipeline results.
const Name = "domain"

// Collector computes domain intelligence features.
type Collector struct {
	registry Registry
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// NewCollector returns a collector that asks registry for creation dates.
func NewCollector(registry Registry, opts ...Option) *Collector {
	c := &Collector{registry: registry, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Name implements pipeline.Collector.
func (c *Collector) Name() string { return Name }

// Defaults implements pipeline.Collector.
func (c *Collector) Defaults() feature.Vector {
	v := feature.New()
	v.SetInt(feature.DomainAgeDays, feature.UnknownDomainAge)
	v.SetBool(feature.DomainHasNumbers, false)
	v.SetInt(feature.SubdomainCount, 0)
	return v
}

// Split is a host decomposed around its public suffix.
type Split struct {
	// Registrable is the eTLD+1, e.g. "example.co.uk".
	Registrable string
	// Label is the registrable domain without its suffix, e.g. "example".
	Label string
	// Subdomains are the labels left of Registrable.
	Subdomains []string
}

// SplitHost decomposes host with the public suffix list. Hosts that have
// no registrable part (a bare suffix or a single label) are returned whole
// as both Registrable and Label.
func SplitHost(host string) Split {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return Split{Registrable: host, Label: host}
	}

	suffix, _ := publicsuffix.PublicSuffix(host)
	s := Split{
		Registrable: registrable,
		Label:       strings.TrimSuffix(registrable, "."+suffix),
	}
	if sub := strings.TrimSuffix(host, registrable); sub != "" {
		s.Subdomains = strings.Split(strings.TrimSuffix(sub, "."), ".")
	}
	return s
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// Collect implements pipeline.Collector. The name-based features are
// always real; when only the WHOIS lookup fails the vector is returned
// with a *pipeline.PartialError.
func (c *Collector) Collect(ctx context.Context, rawURL string) (feature.Vector, error) {
	host := lexical.Split(rawURL).Host
	if host == "" {
		return nil, lexical.ErrNoHost
	}

	v := c.Defaults()

	if net.ParseIP(host) != nil {
		v.SetBool(feature.DomainHasNumbers, containsDigit(host))
		return v, nil
	}

	split := SplitHost(host)
	v.SetBool(feature.DomainHasNumbers, containsDigit(split.Label))
	v.SetInt(feature.SubdomainCount, len(split.Subdomains))

	age, err := c.age(ctx, split.Registrable)
	if err != nil {
		c.logger.Debug("domain age unknown", "domain", split.Registrable, "error", err)
		return v, &pipeline.PartialError{Err: err}
	}
	v.SetInt(feature.DomainAgeDays, age)
	return v, nil
}

// age returns whole days since registration.
func (c *Collector) age(ctx context.Context, registrable string) (int, error) {
	created, err := c.registry.CreatedAt(ctx, registrable)
	if err != nil {
		return feature.UnknownDomainAge, err
	}
	now := c.now()
	if created.After(now) {
		return feature.UnknownDomainAge, fmt.Errorf("%w: %s", ErrFutureCreationDate, created.Format(time.DateOnly))
	}
	return int(now.Sub(created).Hours() / 24), nil
}
