package watch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "api.json")
	other := filepath.Join(dir, "other.json")
	for _, path := range []string{target, other} {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	w, err := New([]string{target}, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var calls [][]string
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(changed []string) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, changed)
		})
	}()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(target, []byte("{\"n\":"+string(rune('0'+i))+"}"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := os.WriteFile(other, []byte("{}"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(calls)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Fatalf("expected one debounced callback, got %d: %v", len(calls), calls)
	}
	abs, _ := filepath.Abs(target)
	if !reflect.DeepEqual(calls[0], []string{abs}) {
		t.Fatalf("expected only %s, got %v", abs, calls[0])
	}
}

func TestWatchReturnsOnCancel(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "api.json")
	if err := os.WriteFile(target, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := Watch(ctx, []string{target}, 0, func([]string) {}); err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(nil, 0); err == nil {
		t.Fatal("expected error for empty path list")
	}
	if _, err := New([]string{filepath.Join(t.TempDir(), "missing", "api.json")}, 0); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestStopTimerDrainsFiredTimer(t *testing.T) {
	timer := time.NewTimer(time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	stopTimer(timer)
	select {
	case <-timer.C:
		t.Fatal("stale tick left on timer channel")
	default:
	}

	timer.Reset(time.Hour)
	stopTimer(timer)
}
