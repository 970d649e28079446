package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

// Mock HTTP RoundTripper for testing
type mockRoundTripper struct {
	responses []*http.Response
	errors    []error
	index     int
	mux       sync.Mutex
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	if m.index >= len(m.responses) {
		return nil, errors.New("no more responses")
	}

	resp := m.responses[m.index]
	err := m.errors[m.index]
	m.index++

	if resp != nil && resp.Body != nil {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewBuffer(body))
	}
	return resp, err
}

func newMockClient(responses []*http.Response, errs []error) *http.Client {
	for i := len(errs); i < len(responses); i++ {
		errs = append(errs, nil)
	}
	return &http.Client{
		Transport: &mockRoundTripper{responses: responses, errors: errs},
	}
}

func newMockResponse(statusCode int, body string, headers map[string]string) *http.Response {
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

func buildGet(url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", url, nil)
	}
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Retry5xx:    true,
	}
}

func TestDoWithRetrySuccess(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, `{"success": true}`, nil)},
		nil,
	)

	resp, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastRetry(3))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode)
	}
	if string(body) != `{"success": true}` {
		t.Errorf("Unexpected body %q", body)
	}
}

func TestDoWithRetryRetriesServerErrors(t *testing.T) {
	client := newMockClient(
		[]*http.Response{
			newMockResponse(503, "unavailable", nil),
			newMockResponse(200, "ok", nil),
		},
		nil,
	)

	resp, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastRetry(3))
	if err != nil {
		t.Fatalf("Expected no error after retry, got %v", err)
	}
	if resp.StatusCode != 200 || string(body) != "ok" {
		t.Errorf("Expected retried success, got %d %q", resp.StatusCode, body)
	}
}

func TestDoWithRetryDoesNotRetryClientErrors(t *testing.T) {
	client := newMockClient(
		[]*http.Response{
			newMockResponse(400, "bad request", nil),
			newMockResponse(200, "ok", nil),
		},
		nil,
	)

	resp, _, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastRetry(3))
	if err == nil {
		t.Fatal("Expected error for 400, got nil")
	}
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("Expected HTTPError, got %T", err)
	}
	if herr.StatusCode != 400 || resp.StatusCode != 400 {
		t.Errorf("Expected status 400 without retry, got %d", herr.StatusCode)
	}
}

func TestDoWithRetryExhaustsAttempts(t *testing.T) {
	client := newMockClient(
		[]*http.Response{
			newMockResponse(503, "unavailable", nil),
			newMockResponse(503, "unavailable", nil),
		},
		nil,
	)

	_, _, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastRetry(2))
	if err == nil {
		t.Fatal("Expected error after exhausting attempts, got nil")
	}
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != 503 {
		t.Errorf("Expected final 503 HTTPError, got %v", err)
	}
}

func TestDoJSON(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, `{"id": "abc", "count": 3}`, nil)},
		nil,
	)

	var out struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	}
	err := DoJSON(context.Background(), client, buildGet("https://example.com"), &out, fastRetry(2))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.ID != "abc" || out.Count != 3 {
		t.Errorf("Unexpected decoded value: %+v", out)
	}
}

func TestDoJSONParseError(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, "not-json", nil)},
		nil,
	)

	var out map[string]any
	err := DoJSON(context.Background(), client, buildGet("https://example.com"), &out, fastRetry(2))
	if err == nil {
		t.Fatal("Expected parse error, got nil")
	}
	if !strings.Contains(err.Error(), "json parse error") {
		t.Errorf("Expected json parse error, got %v", err)
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	resp := newMockResponse(429, "", map[string]string{"Retry-After": "7"})
	if d := ParseRetryAfter(resp); d != 7*time.Second {
		t.Errorf("Expected 7s, got %v", d)
	}
}

func TestParseRetryAfterMissing(t *testing.T) {
	resp := newMockResponse(200, "", nil)
	if d := ParseRetryAfter(resp); d != 0 {
		t.Errorf("Expected 0, got %v", d)
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	err := &HTTPError{Method: "POST", URL: "https://example.com/import", StatusCode: 500, Body: []byte("boom")}
	msg := err.Error()
	if !strings.Contains(msg, "POST") || !strings.Contains(msg, "status=500") || !strings.Contains(msg, "boom") {
		t.Errorf("Unexpected error message %q", msg)
	}
}
