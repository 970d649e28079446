// Package tutorapi pushes a migrated course into a Tutor LMS site
// through its import endpoint.
package tutorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"course-migrate/internal/httpx"
	"course-migrate/internal/tutor"
)

const contentTypeJSON = "application/json"

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	tr := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: tr,
		},
	}
}

// ImportResponse is what the import endpoint returns on success.
type ImportResponse struct {
	CourseID int    `json:"course_id"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

// PushCourse uploads the full course graph. The endpoint upserts by
// export key, so retried or repeated pushes of the same graph are safe.
func (c *Client) PushCourse(ctx context.Context, course *tutor.Course) (*ImportResponse, error) {
	if c.BaseURL == "" {
		return nil, errors.New("tutorapi: missing base URL")
	}
	if c.Token == "" {
		return nil, errors.New("tutorapi: missing API token")
	}

	b, err := json.Marshal(course)
	if err != nil {
		return nil, fmt.Errorf("tutorapi: marshal course: %w", err)
	}

	var out ImportResponse
	err = httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wp-json/tutor/v1/course-import", bytes.NewReader(b))
			if err != nil {
				return nil, err
			}
			r.Header.Set("Content-Type", contentTypeJSON)
			r.Header.Set("Accept", contentTypeJSON)
			r.Header.Set("Authorization", "Bearer "+c.Token)
			return r, nil
		},
		&out,
		httpx.DefaultRetryConfig(),
	)
	if err != nil {
		return nil, fmt.Errorf("tutorapi: course import failed: %w", err)
	}
	return &out, nil
}
