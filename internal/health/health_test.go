package health

import (
	"context"
	"sync"
	"testing"
)

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("empty registry should be healthy")
	}
	if len(statuses) != 0 {
		t.Fatalf("expected 0 statuses, got %d", len(statuses))
	}
}

func TestRegistry_AllHealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(_ context.Context) Status {
		return Status{Name: "database", Healthy: true}
	})
	r.Register("refdata", func(_ context.Context) Status {
		return Status{Name: "refdata", Healthy: true, Detail: "6 blacklist entries"}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("all-healthy registry should report healthy")
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Name != "database" {
		t.Fatalf("statuses should keep registration order, got %q first", statuses[0].Name)
	}
}

func TestRegistry_OneUnhealthyFailsAggregate(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(_ context.Context) Status {
		return Status{Name: "database", Healthy: false, Detail: "connection refused"}
	})
	r.Register("refdata", func(_ context.Context) Status {
		return Status{Name: "refdata", Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if healthy {
		t.Fatal("registry with an unhealthy dependency should report unhealthy")
	}
	if statuses[0].Detail != "connection refused" {
		t.Fatalf("expected detail to pass through, got %q", statuses[0].Detail)
	}
}

func TestRegistry_ConcurrentRegisterAndCheck(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Register("database", func(_ context.Context) Status {
				return Status{Name: "database", Healthy: true}
			})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.CheckAll(context.Background())
		}()
	}
	wg.Wait()
}
