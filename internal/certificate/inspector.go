package certificate

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"net"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
	"github.com/leaderofARS/anti-phishing-system/internal/pipeline"
)

// Name is the collector name used in pipeline results.
const Name = "certificate"

// defaultPort is the standard HTTPS port.
const defaultPort = "443"

// ContextDialer opens network connections. *net.Dialer and *tor.Client
// both satisfy it.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Certificate is the subset of the leaf certificate kept for reports.
type Certificate struct {
	Subject    string    `json:"subject"`
	Issuer     string    `json:"issuer"`
	NotBefore  time.Time `json:"not_before"`
	NotAfter   time.Time `json:"not_after"`
	DNSNames   []string  `json:"dns_names,omitempty"`
	TLSVersion string    `json:"tls_version"`
}

// Inspector fetches and verifies TLS certificates.
type Inspector struct {
	dialer ContextDialer
	roots  *x509.CertPool
	port   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithDialer sets the dialer, for example a SOCKS5 proxy client.
func WithDialer(d ContextDialer) Option {
	return func(i *Inspector) {
		i.dialer = d
	}
}

// WithRootCAs replaces the system roots used for verification.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(i *Inspector) {
		i.roots = pool
	}
}

// WithPort overrides the port the handshake is made on.
func WithPort(port string) Option {
	return func(i *Inspector) {
		i.port = port
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(i *Inspector) {
		i.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// NewInspector returns an Inspector that dials directly unless configured
// otherwise.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{
		dialer: &net.Dialer{},
		port:   defaultPort,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	return i
}

// Inspect performs a verified handshake with host and returns its leaf
// certificate. The deadline comes from ctx. Errors are *InspectError.
func (i *Inspector) Inspect(ctx context.Context, host string) (*Certificate, error) {
	raw, err := i.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, i.port))
	if err != nil {
		return nil, classifyDial(err)
	}
	defer raw.Close()

	conn := tls.Client(raw, &tls.Config{
		ServerName: host,
		RootCAs:    i.roots,
		MinVersion: tls.VersionTLS12,
	})
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, classifyHandshake(err)
	}

	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, &InspectError{Class: FailureNoCertificate, Err: ErrNoCertificate}
	}
	leaf := state.PeerCertificates[0]

	return &Certificate{
		Subject:    leaf.Subject.String(),
		Issuer:     leaf.Issuer.String(),
		NotBefore:  leaf.NotBefore,
		NotAfter:   leaf.NotAfter,
		DNSNames:   leaf.DNSNames,
		TLSVersion: tls.VersionName(state.Version),
	}, nil
}

// AgeDays returns whole days between the certificate's NotBefore and now.
func (c *Certificate) AgeDays(now time.Time) int {
	return int(now.Sub(c.NotBefore).Hours() / 24)
}

// Name implements pipeline.Collector.
func (i *Inspector) Name() string { return Name }

// Defaults implements pipeline.Collector.
func (i *Inspector) Defaults() feature.Vector {
	v := feature.New()
	v.SetBool(feature.SSLValid, false)
	v.SetInt(feature.SSLAgeDays, 0)
	return v
}

// Collect implements pipeline.Collector. Non-https URLs are skipped.
func (i *Inspector) Collect(ctx context.Context, rawURL string) (feature.Vector, error) {
	parts := lexical.Split(rawURL)
	if parts.Scheme != "https" {
		return nil, pipeline.ErrSkipped
	}
	host := parts.Host
	if host == "" {
		return nil, &InspectError{Class: FailureOther, Err: lexical.ErrNoHost}
	}

	cert, err := i.Inspect(ctx, host)
	if err != nil {
		i.logger.Debug("certificate inspection failed", "host", host, "error", err)
		return nil, err
	}

	v := feature.New()
	v.SetBool(feature.SSLValid, true)
	v.SetInt(feature.SSLAgeDays, cert.AgeDays(i.now()))
	return v, nil
}
