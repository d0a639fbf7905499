package wsj

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	"marketbar/internal/provider"
)

// maxBody caps how much of a response is read. A full 12-instrument
// payload is well under 64KiB.
const maxBody = 4 << 20

// QuoteByDialect retrieves quotes for all ids in a single request.
func (c *QuoteClient) QuoteByDialect(ctx context.Context, ids []string, opts ...QuoteClientOption) (provider.Snapshot, error) {
	if len(ids) == 0 {
		return provider.Snapshot{}, errors.New("no instrument ids")
	}

	var override = &QuoteClient{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      maps.Clone(c.query),
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)
	query.Set("id", strings.Join(ids, ","))

	url := fmt.Sprintf("%s/api/dylan/quotes/v2/comp/quoteByDialect?%s", override.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return provider.Snapshot{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return provider.Snapshot{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.Snapshot{}, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return provider.Snapshot{}, fmt.Errorf("rate limited")

	default:
		return provider.Snapshot{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return provider.Snapshot{}, fmt.Errorf("reading response: %w", err)
	}

	snap, err := provider.ParseSnapshot(body)
	if err != nil {
		return provider.Snapshot{}, fmt.Errorf("decoding quotes response: %w", err)
	}
	return snap, nil
}

func (c *QuoteClient) Name() string { return "WSJ" }

// Fetch implements provider.Provider. Every failure is reported as
// provider.ErrUnavailable.
func (c *QuoteClient) Fetch(ctx context.Context, ids []string) (provider.Snapshot, error) {
	snap, err := c.QuoteByDialect(ctx, ids)
	if err != nil {
		return provider.Snapshot{}, fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}
	return snap, nil
}
