package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// Minimal TMDB v3 client covering the collection, details, season and
// search endpoints the browsing surface needs.

type tmdbClient struct {
	apiKey   string
	baseURL  string
	language string
	httpc    *http.Client
}

// apiError is returned for non-2xx responses from the catalog API.
type apiError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("tmdb: %s returned %s", e.URL, e.Status)
}

// IsNotFound reports whether err is a 404 from the catalog API.
func IsNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func newTMDBClient(apiKey, baseURL, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &tmdbClient{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		httpc:    httpc,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c.apiKey != ""
}

// doGET issues a GET against the given API path, decoding the JSON body
// into v. The api_key and language parameters are always attached.
// 429 and 5xx responses are retried with backoff; other 4xx fail fast.
func (c *tmdbClient) doGET(ctx context.Context, path string, q url.Values, v any) error {
	if !c.isConfigured() {
		return fmt.Errorf("tmdb: api key not configured")
	}

	params := url.Values{}
	for key, vals := range q {
		params[key] = vals
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	u := c.baseURL + path + "?" + params.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 300 {
				// Drain so the connection can be reused
				_, _ = io.Copy(io.Discard, resp.Body)
				apiErr := &apiError{StatusCode: resp.StatusCode, Status: resp.Status, URL: path}
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					return apiErr
				}
				return retry.Unrecoverable(apiErr)
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("tmdb: decode %s: %w", path, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
