package tor

import (
	"errors"
	"testing"
	"time"
)

func TestNewEmbeddedTor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []EmbeddedTorOption
		want time.Duration
	}{
		{name: "default timeout", want: defaultStartupTimeout},
		{name: "custom timeout", opts: []EmbeddedTorOption{WithStartupTimeout(30 * time.Second)}, want: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewEmbeddedTor(tt.opts...)
			if e.startupTimeout != tt.want {
				t.Errorf("startupTimeout = %v, want %v", e.startupTimeout, tt.want)
			}
		})
	}
}

func TestEmbeddedTorBeforeStart(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedTor()

	if e.IsRunning() {
		t.Error("expected IsRunning to be false before start")
	}
	if addr := e.SocksAddr(); addr != "" {
		t.Errorf("SocksAddr = %q, want empty", addr)
	}
	if err := e.Stop(); err != nil {
		t.Errorf("Stop on unstarted daemon: %v", err)
	}
	if _, err := e.NewClient(time.Second); !errors.Is(err, ErrEmbeddedNotRunning) {
		t.Errorf("NewClient error = %v, want ErrEmbeddedNotRunning", err)
	}
}
