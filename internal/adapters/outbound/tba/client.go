// Package tba is the client for The Blue Alliance read API. All fetches are
// conditional: the caller passes the Last-Modified value from the previous
// fetch and a 304 comes back as NotModified with an empty body.
package tba

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/CarlColglazier/frc-elo/internal/telemetry"
	"golang.org/x/time/rate"
)

// Response carries one API payload. Status is the raw HTTP code; callers
// treat anything other than 200/304 as a soft failure.
type Response struct {
	Status       int
	Body         []byte
	LastModified string
}

// NotModified reports whether the upstream copy is unchanged since the
// conditional timestamp.
func (r Response) NotModified() bool { return r.Status == http.StatusNotModified }

// OK reports whether the response carries a fresh payload.
func (r Response) OK() bool { return r.Status == http.StatusOK }

type Client struct {
	baseURL    string
	appID      string
	authKey    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, appID, authKey string) *Client {
	return &Client{
		baseURL: baseURL,
		appID:   appID,
		authKey: authKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// Get fetches one API path ("events/2016", "event/2016test/matches/simple").
// ifModifiedSince may be empty for an unconditional fetch.
func (c *Client) Get(ctx context.Context, path, ifModifiedSince string) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limit wait: %w", err)
	}

	url := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-TBA-App-Id", c.appID)
	if c.authKey != "" {
		req.Header.Set("X-TBA-Auth-Key", c.authKey)
	}
	if ifModifiedSince != "" {
		req.Header.Set("If-Modified-Since", ifModifiedSince)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{Status: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}

	telemetry.Debugf("tba: GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start))

	return Response{
		Status:       resp.StatusCode,
		Body:         body,
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
