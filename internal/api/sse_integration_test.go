package api

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"molt/internal/events"
	"molt/internal/logging"
)

// readSSELines feeds every non-blank line of an SSE response into a channel.
func readSSELines(resp *http.Response) <-chan string {
	lines := make(chan string, 100)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				lines <- line
			}
		}
		close(lines)
	}()
	return lines
}

// waitForLine drains lines until one contains substr or the timeout fires.
func waitForLine(t *testing.T, lines <-chan string, substr string, timeout time.Duration) string {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("SSE stream closed while waiting for %q", substr)
			}
			if strings.Contains(line, substr) {
				return line
			}
		case <-deadline:
			t.Fatalf("Timeout waiting for SSE line containing %q", substr)
		}
	}
}

func connectSSE(t *testing.T, url string) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Failed to connect to SSE: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("Expected SSE content type, got %s", resp.Header.Get("Content-Type"))
	}
	return resp
}

func TestSSEConnectionAndFeedEvents(t *testing.T) {
	bus := events.New()
	_, ts := newTestServer(t, &Options{
		AuthUsername: "dev",
		AuthPassword: "secret",
		EventBus:     bus,
	})

	// SSE clients authenticate via query parameter since EventSource
	// cannot set headers
	credentials := base64.StdEncoding.EncodeToString([]byte("dev:secret"))
	resp := connectSSE(t, fmt.Sprintf("%s/api/events?auth=%s", ts.URL, credentials))
	lines := readSSELines(resp)

	// Connection confirmation arrives first
	waitForLine(t, lines, "event stream connected", time.Second)

	// Creating a post produces a post-created event
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/posts",
		strings.NewReader(`{"message":"live","username":"ada"}`))
	req.SetBasicAuth("dev", "secret")
	req.Header.Set("Content-Type", "application/json")
	apiResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	apiResp.Body.Close()
	if apiResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 creating post, got %d", apiResp.StatusCode)
	}

	waitForLine(t, lines, "post-created", time.Second)
	data := waitForLine(t, lines, "post_id", time.Second)
	if !strings.Contains(data, "ada") {
		t.Errorf("Expected post-created data with username, got: %s", data)
	}
}

func TestSSEStoreReloadedEvent(t *testing.T) {
	bus := events.New()
	_, ts := newTestServer(t, &Options{EventBus: bus})

	resp := connectSSE(t, ts.URL+"/api/events")
	lines := readSSELines(resp)
	waitForLine(t, lines, "event stream connected", time.Second)

	bus.Publish(events.StoreReloadedEvent{
		Posts:     5,
		Timestamp: time.Now().Format(time.RFC3339),
	})

	waitForLine(t, lines, "store-reloaded", time.Second)
	data := waitForLine(t, lines, `"posts"`, time.Second)
	if !strings.Contains(data, "5") {
		t.Errorf("Expected reload event with post count, got: %s", data)
	}
}

func TestSSELogReplay(t *testing.T) {
	logging.Initialize(logging.Config{Level: "info", Format: "json"})
	logging.GetLogger("replay").Info("replay marker alpha")

	_, ts := newTestServer(t, nil)

	resp := connectSSE(t, ts.URL+"/api/events")
	lines := readSSELines(resp)

	// Buffered entries are replayed right after the connection event
	waitForLine(t, lines, "replay marker alpha", time.Second)
}

func TestSSEAuthFailure(t *testing.T) {
	_, ts := newTestServer(t, &Options{
		AuthUsername: "dev",
		AuthPassword: "secret",
	})

	// Without credentials
	resp, err := http.Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}

	// With wrong credentials
	credentials := base64.StdEncoding.EncodeToString([]byte("wrong:wrong"))
	resp, err = http.Get(fmt.Sprintf("%s/api/events?auth=%s", ts.URL, credentials))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected status 401 for wrong auth, got %d", resp.StatusCode)
	}
}
