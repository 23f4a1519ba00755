// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sanity is a minimal read-only client for the Sanity content API.

It runs GROQ queries against a project dataset and decodes the 'result'
member of the response. Only the query endpoint is implemented; the catalog
uses the hosted backend as a seed source and never writes to it.

Usage:

	client := sanity.NewClient(sanity.Config{ProjectID: "dm7gnw8i", Dataset: "production"})
	var rows []movie.HostedMovie
	err := client.Query(ctx, movie.HostedQuery, &rows)
*/
package sanity

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
)

// requestTimeout bounds a single query round-trip.
const requestTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is read for the error message.
const maxErrorBody = 4 << 10

// Config identifies the project and dataset to query.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	Token      string
}

// Client runs GROQ queries over HTTPS.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
}

// Option customises a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithBaseURL overrides the derived API host, e.g. for a local test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// NewClient builds a client for cfg. An empty APIVersion means "2023-05-03".
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-05-03"
	}

	host := "api.sanity.io"
	if cfg.UseCDN {
		host = "apicdn.sanity.io"
	}

	client := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    fmt.Sprintf("https://%s.%s", cfg.ProjectID, host),
		config:     cfg,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// queryResponse is the envelope of a successful query.
type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// errorResponse is the envelope of a failed query.
type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
}

// Query executes a GROQ query and decodes its result into out.
func (c *Client) Query(ctx context.Context, groq string, out any) error {
	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s",
		c.baseURL,
		strings.TrimPrefix(c.config.APIVersion, "v"),
		url.PathEscape(c.config.Dataset),
		url.Values{"query": {groq}}.Encode(),
	)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("sanity: failed to build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		request.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("sanity: query failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return decodeError(response)
	}

	var envelope queryResponse
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("sanity: failed to decode response: %w", err)
	}
	if len(envelope.Result) == 0 {
		return errors.New("sanity: response has no result")
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("sanity: failed to decode result: %w", err)
	}
	return nil
}

func decodeError(response *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))

	var failure errorResponse
	if json.Unmarshal(body, &failure) == nil && failure.Error.Description != "" {
		return fmt.Errorf("sanity: %s (status %d): %s", failure.Error.Type, response.StatusCode, failure.Error.Description)
	}
	return fmt.Errorf("sanity: unexpected status %d", response.StatusCode)
}
