package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"libris/internal/config"
)

var (
	// ErrNotFound means the service answered but has no edition for the
	// identifier (client-error status or a response without the bib key).
	ErrNotFound = errors.New("openlibrary: edition not found")

	// ErrServiceUnavailable means the service could not answer: a server
	// error, a transport failure or an exceeded timeout. The caller decides
	// whether to retry; this client never does.
	ErrServiceUnavailable = errors.New("openlibrary: service unavailable")
)

// Client is the interface the catalog service consumes to resolve an ISBN
// against an external source.
type Client interface {
	Lookup(ctx context.Context, isbn string) (*Edition, error)
}

// Fetcher looks up editions on the Open Library books API.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewFetcher creates a Fetcher with a bounded request timeout.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		baseURL:    cfg.OpenLibraryBaseURL,
		httpClient: &http.Client{Timeout: cfg.OpenLibraryTimeout},
		logger:     logger,
	}
}

// Lookup fetches the edition data for an ISBN. Server-error responses map to
// ErrServiceUnavailable and client-error responses to ErrNotFound; both are
// reportable conditions for the caller, not defects.
func (f *Fetcher) Lookup(ctx context.Context, isbn string) (*Edition, error) {
	bibKey := "ISBN:" + isbn
	lookupURL := fmt.Sprintf("%s/api/books?bibkeys=%s&jscmd=data&format=json",
		f.baseURL, url.QueryEscape(bibKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("Open Library request failed", zap.String("isbn", isbn), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		f.logger.Warn("Open Library returned server error",
			zap.String("isbn", isbn), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
	}

	// The response is an object keyed by bib key; an unknown ISBN comes
	// back as 200 with an empty object.
	var payload map[string]Edition
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		f.logger.Warn("failed to decode Open Library response", zap.String("isbn", isbn), zap.Error(err))
		return nil, fmt.Errorf("%w: malformed response: %v", ErrServiceUnavailable, err)
	}

	edition, ok := payload[bibKey]
	if !ok {
		return nil, fmt.Errorf("%w: no data for %s", ErrNotFound, bibKey)
	}

	f.logger.Debug("Open Library lookup succeeded",
		zap.String("isbn", isbn), zap.String("title", edition.Title))

	return &edition, nil
}
