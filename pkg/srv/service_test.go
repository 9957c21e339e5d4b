package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, s)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func TestShutdownServices_ReverseOrder(t *testing.T) {
	rec := &recorder{}
	services := []Service{
		NewCleanup(func() error { rec.add("db"); return nil }),
		NewCleanup(func() error { rec.add("transport"); return errors.New("ignored") }),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ShutdownServices(ctx, services)

	got := rec.get()
	if len(got) != 2 || got[0] != "transport" || got[1] != "db" {
		t.Errorf("shutdown order = %v, want [transport db]", got)
	}
}

func TestStartServices_FailureStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartServices(ctx, cancel, []Service{
		NewBackground(func(context.Context) error { return errors.New("boom") }),
	})

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("failing service did not stop the process")
	}
}

func TestStartServices_BackgroundRunsUntilDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	StartServices(ctx, cancel, []Service{
		NewBackground(func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		}),
	})

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("background service did not observe cancellation")
	}
}
