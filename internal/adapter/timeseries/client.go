// Package timeseries fetches the per-country COVID-19 dataset over HTTP.
package timeseries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

// Client downloads the dataset from a fixed URL. Every call fetches afresh;
// nothing is cached between calls.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a dataset client with the given request timeout.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchDataset downloads and decodes the dataset. Transport failures and
// non-200 responses are reported as *domain.FetchError, undecodable bodies as
// *domain.ParseError.
func (c *Client) FetchDataset(ctx context.Context) (domain.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.FetchError{Source: c.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Source: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.FetchError{Source: c.url, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	dataset, err := Decode(c.url, resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("dataset fetched", "url", c.url, "countries", len(dataset))
	return dataset, nil
}

// Decode reads a dataset document from r. source names r in errors.
func Decode(source string, r io.Reader) (domain.Dataset, error) {
	var dataset domain.Dataset
	if err := json.NewDecoder(r).Decode(&dataset); err != nil {
		return nil, &domain.ParseError{Source: source, Err: err}
	}
	if dataset == nil {
		return nil, &domain.ParseError{Source: source, Err: fmt.Errorf("empty dataset document")}
	}
	return dataset, nil
}
