package tutorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"course-migrate/internal/tutor"
)

type captureRoundTripper struct {
	status  int
	body    string
	lastReq *http.Request
	lastBuf []byte
}

func (c *captureRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	c.lastReq = req
	if req.Body != nil {
		c.lastBuf, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(bytes.NewBufferString(c.body)),
		Header:     http.Header{},
	}, nil
}

func TestPushCourse(t *testing.T) {
	rt := &captureRoundTripper{status: 200, body: `{"course_id": 77, "status": "imported"}`}
	client := New("https://lms.test", "secret")
	client.HTTP = &http.Client{Transport: rt}

	course := &tutor.Course{ExportKey: "k1", PostTitle: "Demo"}
	resp, err := client.PushCourse(context.Background(), course)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.CourseID != 77 || resp.Status != "imported" {
		t.Errorf("Unexpected response: %+v", resp)
	}

	if rt.lastReq.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", rt.lastReq.Method)
	}
	if !strings.HasSuffix(rt.lastReq.URL.Path, "/wp-json/tutor/v1/course-import") {
		t.Errorf("Unexpected path %q", rt.lastReq.URL.Path)
	}
	if got := rt.lastReq.Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Unexpected auth header %q", got)
	}

	var sent tutor.Course
	if err := json.Unmarshal(rt.lastBuf, &sent); err != nil {
		t.Fatalf("Expected JSON request body, got %v", err)
	}
	if sent.ExportKey != "k1" || sent.PostTitle != "Demo" {
		t.Errorf("Unexpected payload: %+v", sent)
	}
}

func TestPushCourseMissingConfig(t *testing.T) {
	if _, err := New("", "tok").PushCourse(context.Background(), &tutor.Course{}); err == nil {
		t.Error("Expected error for missing base URL")
	}
	if _, err := New("https://lms.test", "").PushCourse(context.Background(), &tutor.Course{}); err == nil {
		t.Error("Expected error for missing token")
	}
}

func TestPushCourseServerError(t *testing.T) {
	rt := &captureRoundTripper{status: 400, body: `{"message": "bad payload"}`}
	client := New("https://lms.test", "secret")
	client.HTTP = &http.Client{Transport: rt}

	_, err := client.PushCourse(context.Background(), &tutor.Course{ExportKey: "k1"})
	if err == nil {
		t.Fatal("Expected error for 400 response, got nil")
	}
	if !strings.Contains(err.Error(), "course import failed") {
		t.Errorf("Unexpected error %v", err)
	}
}
