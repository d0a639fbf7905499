package wsj

import (
	"net/http"
	"net/url"
)

const (
	baseURL = "https://api.wsj.net"

	// Public credentials the marketwatch charting widgets ship with.
	defaultEntitlementToken = "cecc4267a0194af89ca343805a3e57af"
	defaultCKey             = "cecc4267a0"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=wsj_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// QuoteClient is a client for the dylan quote-aggregation API.
type QuoteClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// QuoteClientOption is a configuration option for the quote client.
type QuoteClientOption func(*QuoteClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) QuoteClientOption {
	return func(c *QuoteClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) QuoteClientOption {
	return func(c *QuoteClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) QuoteClientOption {
	return func(c *QuoteClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithCredentials replaces the entitlement token and ckey pair.
func WithCredentials(token, ckey string) QuoteClientOption {
	return func(c *QuoteClient) {
		c.query.Set("EntitlementToken", token)
		c.query.Set("ckey", ckey)
	}
}

// NewQuoteClient creates a new quote client using the public credentials.
func NewQuoteClient(options ...QuoteClientOption) *QuoteClient {
	var c = &QuoteClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query: url.Values{
			"dialect":              []string{"official"},
			"needed":               []string{"CompositeTrading"},
			"MaxInstrumentMatches": []string{"1"},
			"accept":               []string{"application/json"},
			"EntitlementToken":     []string{defaultEntitlementToken},
			"ckey":                 []string{defaultCKey},
			"dialects":             []string{"Charting"},
		},
	}
	for _, option := range options {
		option(c)
	}
	return c
}
