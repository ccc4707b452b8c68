package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetStorePosts(t *testing.T) {
	SetStorePosts(7)
	if got := testutil.ToFloat64(storePosts); got != 7 {
		t.Errorf("store posts gauge = %v, want 7", got)
	}

	SetStorePosts(0)
	if got := testutil.ToFloat64(storePosts); got != 0 {
		t.Errorf("store posts gauge = %v, want 0", got)
	}
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "200"))

	ObserveRequest("GET", 200, 5*time.Millisecond)
	ObserveRequest("GET", 200, 3*time.Millisecond)
	ObserveRequest("POST", 400, time.Millisecond)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "200"))
	if after != before+2 {
		t.Errorf("GET/200 counter = %v, want %v", after, before+2)
	}

	if got := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "400")); got < 1 {
		t.Errorf("POST/400 counter = %v, want >= 1", got)
	}

	// Histogram has at least one labeled series after observations
	if got := testutil.CollectAndCount(httpDuration); got < 1 {
		t.Errorf("duration histogram series = %d, want >= 1", got)
	}
}

func TestStoreReloads(t *testing.T) {
	before := testutil.ToFloat64(storeReloads)
	AddStoreReload()
	if got := testutil.ToFloat64(storeReloads); got != before+1 {
		t.Errorf("reload counter = %v, want %v", got, before+1)
	}
}

func TestSSEClients(t *testing.T) {
	before := testutil.ToFloat64(sseClients)

	AddSSEClient()
	AddSSEClient()
	RemoveSSEClient()

	if got := testutil.ToFloat64(sseClients); got != before+1 {
		t.Errorf("sse clients gauge = %v, want %v", got, before+1)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	SetStorePosts(3)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	if !strings.Contains(string(body), "molt_store_posts") {
		t.Error("expected molt_store_posts in metrics output")
	}
}
