package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"golang.org/x/net/proxy"
)

// Registry looks up when a registrable domain was created.
type Registry interface {
	CreatedAt(ctx context.Context, domain string) (time.Time, error)
}

// dateLayouts are the creation date formats seen in WHOIS responses.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
}

// ParseCreationDate parses a WHOIS creation date string.
func ParseCreationDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoCreationDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, s)
}

// WhoisRegistry queries WHOIS servers with github.com/likexian/whois.
type WhoisRegistry struct {
	client *whois.Client
}

// WhoisOption configures a WhoisRegistry.
type WhoisOption func(*whois.Client)

// WithWhoisTimeout sets the network timeout of a single WHOIS query.
func WithWhoisTimeout(d time.Duration) WhoisOption {
	return func(c *whois.Client) {
		c.SetTimeout(d)
	}
}

// WithWhoisDialer routes WHOIS queries through dialer, for example a
// SOCKS5 proxy.
func WithWhoisDialer(dialer proxy.Dialer) WhoisOption {
	return func(c *whois.Client) {
		c.SetDialer(dialer)
	}
}

// NewWhoisRegistry returns a Registry backed by live WHOIS queries.
func NewWhoisRegistry(opts ...WhoisOption) *WhoisRegistry {
	c := whois.NewClient()
	for _, opt := range opts {
		opt(c)
	}
	return &WhoisRegistry{client: c}
}

// CreatedAt implements Registry. The WHOIS client has no context support,
// so the query is abandoned, not interrupted, when ctx is done.
func (r *WhoisRegistry) CreatedAt(ctx context.Context, domain string) (time.Time, error) {
	type lookup struct {
		created time.Time
		err     error
	}
	ch := make(chan lookup, 1)

	go func() {
		raw, err := r.client.Whois(domain)
		if err != nil {
			ch <- lookup{err: fmt.Errorf("whois query for %s: %w", domain, err)}
			return
		}
		info, err := whoisparser.Parse(raw)
		if err != nil {
			ch <- lookup{err: fmt.Errorf("whois parse for %s: %w", domain, err)}
			return
		}
		if info.Domain == nil {
			ch <- lookup{err: ErrNoCreationDate}
			return
		}
		created, err := ParseCreationDate(info.Domain.CreatedDate)
		ch <- lookup{created: created, err: err}
	}()

	select {
	case l := <-ch:
		return l.created, l.err
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
}
