package certificate

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
	"github.com/leaderofARS/anti-phishing-system/internal/pipeline"
)

// newTLSServer starts a TLS test server and returns an inspector trusting it.
func newTLSServer(t *testing.T, now time.Time) (*httptest.Server, *Inspector) {
	t.Helper()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())

	return srv, NewInspector(
		WithRootCAs(pool),
		WithPort(u.Port()),
		WithClock(func() time.Time { return now }),
	)
}

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()
	return port
}

// stallingDialer blocks until the context is done.
type stallingDialer struct{}

func (stallingDialer) DialContext(ctx context.Context, _, _ string) (net.Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCollectValidCertificate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	srv, insp := newTLSServer(t, now)

	v, err := insp.Collect(context.Background(), "https://127.0.0.1/login")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !v.Bool(feature.SSLValid) {
		t.Error("expected ssl_valid to be true")
	}
	want := int(now.Sub(srv.Certificate().NotBefore).Hours() / 24)
	if got := v.Int(feature.SSLAgeDays); got != want {
		t.Errorf("ssl_age_days = %d, want %d", got, want)
	}
}

func TestInspectReturnsCertificate(t *testing.T) {
	t.Parallel()

	srv, insp := newTLSServer(t, time.Now())

	cert, err := insp.Inspect(context.Background(), "127.0.0.1")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !cert.NotBefore.Equal(srv.Certificate().NotBefore) {
		t.Errorf("NotBefore = %v, want %v", cert.NotBefore, srv.Certificate().NotBefore)
	}
	if cert.TLSVersion == "" {
		t.Error("expected a TLS version")
	}
}

func TestInspectFailures(t *testing.T) {
	t.Parallel()

	t.Run("untrusted certificate is a handshake failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewTLSServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)
		u, _ := url.Parse(srv.URL)

		insp := NewInspector(WithPort(u.Port()))
		_, err := insp.Inspect(context.Background(), "127.0.0.1")

		var ie *InspectError
		if !errors.As(err, &ie) || ie.Class != FailureHandshake {
			t.Errorf("error = %v, want handshake failure", err)
		}
	})

	t.Run("refused connection", func(t *testing.T) {
		t.Parallel()

		insp := NewInspector(WithPort(closedPort(t)))
		_, err := insp.Inspect(context.Background(), "127.0.0.1")

		var ie *InspectError
		if !errors.As(err, &ie) || ie.Class != FailureRefused {
			t.Errorf("error = %v, want refused", err)
		}
	})

	t.Run("stalled dial times out", func(t *testing.T) {
		t.Parallel()

		insp := NewInspector(WithDialer(stallingDialer{}))
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := insp.Inspect(ctx, "unreachable.example")

		var ie *InspectError
		if !errors.As(err, &ie) || ie.Class != FailureTimeout {
			t.Errorf("error = %v, want timeout", err)
		}
	})
}

func TestCollectUnreachableHostDegradesWithinTimeout(t *testing.T) {
	t.Parallel()

	insp := NewInspector(WithDialer(stallingDialer{}))
	p := pipeline.New(pipeline.WithCollectorTimeout(100 * time.Millisecond))
	p.AddCollector(insp)

	start := time.Now()
	out, err := p.Run(context.Background(), "https://unreachable.example/")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run took %v", elapsed)
	}
	if out.Features.Bool(feature.SSLValid) {
		t.Error("expected ssl_valid to be false")
	}
	if got := out.Features.Int(feature.SSLAgeDays); got != 0 {
		t.Errorf("ssl_age_days = %d, want 0", got)
	}
	if out.Results[0].Status != pipeline.StatusDegraded {
		t.Errorf("status = %v, want degraded", out.Results[0].Status)
	}
}

func TestCollectSkipsPlainHTTP(t *testing.T) {
	t.Parallel()

	insp := NewInspector(WithDialer(stallingDialer{}))
	if _, err := insp.Collect(context.Background(), "http://example.com/"); !errors.Is(err, pipeline.ErrSkipped) {
		t.Errorf("error = %v, want ErrSkipped", err)
	}
}

func TestCollectUppercaseScheme(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	insp := NewInspector(WithDialer(stallingDialer{}))
	_, err := insp.Collect(ctx, "HTTPS://bank.example/")
	if err == nil {
		t.Fatal("expected an error from the stalled handshake")
	}
	if errors.Is(err, pipeline.ErrSkipped) {
		t.Error("uppercase https scheme was skipped")
	}
}

func TestFailureClassString(t *testing.T) {
	t.Parallel()

	tests := map[FailureClass]string{
		FailureOther:         "other",
		FailureTimeout:       "timeout",
		FailureRefused:       "refused",
		FailureDial:          "dial",
		FailureHandshake:     "handshake",
		FailureNoCertificate: "no-certificate",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("FailureClass(%d).String() = %q, want %q", int(c), got, want)
		}
	}
}
