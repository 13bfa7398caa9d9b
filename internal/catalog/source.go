package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Source supplies the raw, authoritative item payload.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

const (
	defaultFetchTimeout = 5 * time.Second
	maxPayloadBytes     = 16 << 20
)

// HTTPSource reads GET <BaseURL>/<Collection> from a json-server style
// endpoint.
type HTTPSource struct {
	BaseURL    string
	Collection string
	Client     *http.Client
}

func NewHTTPSource(baseURL, collection string, timeout time.Duration) *HTTPSource {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPSource{
		BaseURL:    baseURL,
		Collection: strings.Trim(collection, "/"),
		Client:     &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) URL() string {
	return s.BaseURL + "/" + s.Collection
}

// Fetch treats every failure (transport, timeout, non-2xx, short read)
// uniformly as ErrRemoteUnavailable.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status=%d", ErrRemoteUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRemoteUnavailable, err)
	}
	return body, nil
}
