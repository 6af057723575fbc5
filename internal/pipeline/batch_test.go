package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewBatchProcessor(t *testing.T) {
	t.Parallel()

	fn := func(context.Context, string) (int, error) { return 0, nil }

	tests := []struct {
		name string
		opts []BatchOption
		want int
	}{
		{name: "default concurrency", want: defaultBatchConcurrency},
		{name: "custom concurrency", opts: []BatchOption{WithConcurrency(7)}, want: 7},
		{name: "non-positive concurrency ignored", opts: []BatchOption{WithConcurrency(-1)}, want: defaultBatchConcurrency},
		{name: "nil logger falls back", opts: []BatchOption{WithBatchLogger(nil)}, want: defaultBatchConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bp := NewBatchProcessor(fn, tt.opts...)
			if bp.concurrency != tt.want {
				t.Errorf("concurrency = %d, want %d", bp.concurrency, tt.want)
			}
			if bp.logger == nil {
				t.Error("expected non-nil logger")
			}
		})
	}
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("keeps input order and per-item errors", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(_ context.Context, u string) (int, error) {
			if strings.Contains(u, "bad") {
				return 0, errors.New("unparseable")
			}
			return len(u), nil
		})

		urls := []string{"https://a.example", "bad", "https://bb.example"}
		items, err := bp.ProcessBatch(context.Background(), urls)
		if err != nil {
			t.Fatalf("ProcessBatch: %v", err)
		}
		for i, item := range items {
			if item.URL != urls[i] {
				t.Errorf("items[%d].URL = %q, want %q", i, item.URL, urls[i])
			}
		}
		if items[1].Err == nil {
			t.Error("expected an error for the bad URL")
		}
		if items[2].Value != len(urls[2]) {
			t.Errorf("items[2].Value = %d, want %d", items[2].Value, len(urls[2]))
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		var mu sync.Mutex
		bp := NewBatchProcessor(func(context.Context, string) (struct{}, error) {
			n := current.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
			return struct{}{}, nil
		}, WithConcurrency(2))

		urls := make([]string, 8)
		for i := range urls {
			urls[i] = "https://example.com"
		}
		if _, err := bp.ProcessBatch(context.Background(), urls); err != nil {
			t.Fatalf("ProcessBatch: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(context.Context, string) (int, error) { return 1, nil })
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := bp.ProcessBatch(ctx, []string{"a", "b"}); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(func(_ context.Context, u string) (string, error) {
		return strings.ToUpper(u), nil
	})

	var mu sync.Mutex
	seen := map[int]string{}
	err := bp.ProcessBatchWithCallback(context.Background(), []string{"a", "b", "c"}, func(item BatchItem[string], i int) {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = item.Value
	})
	if err != nil {
		t.Fatalf("ProcessBatchWithCallback: %v", err)
	}
	if seen[0] != "A" || seen[1] != "B" || seen[2] != "C" {
		t.Errorf("callback values = %v", seen)
	}
}
