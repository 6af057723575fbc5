package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
)

func TestCollect(t *testing.T) {
	t.Parallel()

	userAgents := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(loginPage))
	}))
	t.Cleanup(srv.Close)

	p := NewProber(WithUserAgent("phishguard-test"))
	v, err := p.Collect(context.Background(), srv.URL+"/login")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if ua := <-userAgents; ua != "phishguard-test" {
		t.Errorf("User-Agent = %q", ua)
	}
	if !v.Bool(feature.HasForms) || !v.Bool(feature.HasPasswordField) || !v.Bool(feature.HasFavicon) {
		t.Errorf("expected forms, password field and favicon: %v", v)
	}
	// None of the hrefs contain the test server's host:port.
	if got := v.Int(feature.NumExternalLinks); got != 4 {
		t.Errorf("num_external_links = %d, want 4", got)
	}
	if got := v.Int(feature.PageRank); got != 0 {
		t.Errorf("page_rank = %d, want 0", got)
	}
}

func TestCollectFollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<form><input type="password" name="p"></form>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	v, err := NewProber().Collect(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !v.Bool(feature.HasPasswordField) {
		t.Error("expected the redirected page to be parsed")
	}
}

func TestCollectParsesErrorPages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<form action="/x"></form>`))
	}))
	t.Cleanup(srv.Close)

	v, err := NewProber().Collect(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !v.Bool(feature.HasForms) {
		t.Error("expected forms on a 404 page to be counted")
	}
}

func TestCollectBodyLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>" + strings.Repeat("x", 4096) + `<form></form></body></html>`))
	}))
	t.Cleanup(srv.Close)

	v, err := NewProber(WithMaxBodySize(1024)).Collect(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if v.Bool(feature.HasForms) {
		t.Error("form beyond the body limit must not be seen")
	}
}

func TestCollectFailures(t *testing.T) {
	t.Parallel()

	t.Run("redirect loop", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, r.URL.Path, http.StatusFound)
		}))
		t.Cleanup(srv.Close)

		if _, err := NewProber().Collect(context.Background(), srv.URL+"/loop"); err == nil {
			t.Error("expected an error for a redirect loop")
		}
	})

	t.Run("slow server honours the deadline", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			<-release
		}))
		t.Cleanup(func() {
			close(release)
			srv.Close()
		})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		if _, err := NewProber().Collect(ctx, srv.URL); err == nil {
			t.Error("expected a timeout error")
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("Collect took %v", elapsed)
		}
	})

	t.Run("missing scheme", func(t *testing.T) {
		t.Parallel()

		if _, err := NewProber().Collect(context.Background(), "example.com/login"); err == nil {
			t.Error("expected an error for a URL without scheme")
		}
	})
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	v := NewProber().Defaults()
	for _, name := range []string{feature.HasForms, feature.HasPasswordField, feature.HasFavicon} {
		if v.Bool(name) {
			t.Errorf("%s default = true, want false", name)
		}
	}
	if v.Int(feature.NumExternalLinks) != 0 || v.Int(feature.PageRank) != 0 {
		t.Errorf("Defaults = %v", v)
	}
}
