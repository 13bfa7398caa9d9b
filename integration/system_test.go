//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E_ReviewSurvivesRestart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var list struct {
		Count int              `json:"count"`
		Items []map[string]any `json:"items"`
	}
	doJSON(t, http.MethodGet, baseURL+"/items", nil, &list, 200)
	if list.Count == 0 {
		t.Fatalf("expected a non-empty catalog")
	}

	id, ok := list.Items[0]["id"].(float64)
	if !ok {
		t.Fatalf("item id missing: %#v", list.Items[0])
	}
	itemURL := fmt.Sprintf("%s/items/%d", baseURL, int(id))

	var before struct {
		ReviewCount int `json:"review_count"`
	}
	doJSON(t, http.MethodGet, itemURL, nil, &before, 200)

	text := fmt.Sprintf("e2e review %d", time.Now().UnixNano())
	var created struct {
		ReviewCount int `json:"review_count"`
	}
	doJSON(t, http.MethodPost, itemURL+"/reviews", map[string]any{"text": text}, &created, 201)
	if created.ReviewCount != before.ReviewCount+1 {
		t.Fatalf("review_count=%d want %d", created.ReviewCount, before.ReviewCount+1)
	}

	doJSON(t, http.MethodPost, itemURL+"/reviews", map[string]any{"text": "   "}, nil, 400)

	if svc := os.Getenv("E2E_RESTART_SERVICE"); svc != "" {
		composeRestart(t, ctx, svc)
		waitReady(t, ctx, baseURL+"/readyz")
	}

	var after struct {
		Reviews []struct {
			Text string `json:"text"`
		} `json:"reviews"`
	}
	doJSON(t, http.MethodGet, itemURL, nil, &after, 200)
	for _, r := range after.Reviews {
		if r.Text == text {
			return
		}
	}
	t.Fatalf("review %q not found after reload: %#v", text, after.Reviews)
}

// composeRestart bounces a compose service; reviews must come back from the
// configured kv backend, not from process memory.
func composeRestart(t *testing.T, ctx context.Context, service string) {
	t.Helper()

	out, err := exec.CommandContext(ctx, "docker", "compose", "restart", service).CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose restart %s: %v\n%s", service, err, string(out))
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d body=%s", method, url, resp.StatusCode, want, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode response: %v body=%s", err, string(raw))
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
