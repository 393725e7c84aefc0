// Package github talks to the GitHub GraphQL API on behalf of a caller
// token. Each call is a single request without retries.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBodySize = 4 << 10

var ErrMalformedResponse = errors.New("malformed graphql response")

// StatusError is returned when the API answers with a non-2xx status.
// Body is kept for server-side logs only.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api returned status %d", e.StatusCode)
}

// GraphQLError is returned when a 2xx response carries an errors array.
type GraphQLError struct {
	Errors []ErrorEntry
}

type ErrorEntry struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Path    []string `json:"path"`
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		if entry.Type != "" {
			msgs = append(msgs, entry.Type+": "+entry.Message)
			continue
		}
		msgs = append(msgs, entry.Message)
	}
	return "graphql errors: " + strings.Join(msgs, "; ")
}

// IsUnauthorized reports whether GitHub rejected the token itself.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}

type Client struct {
	httpClient *http.Client
	endpoint   string
}

func NewClient(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorEntry    `json:"errors"`
}

// do posts the query and decodes the data member of the response into out.
func (c *Client) do(ctx context.Context, token, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encoding graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var gqlResp response
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return &GraphQLError{Errors: gqlResp.Errors}
	}

	if len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
		return ErrMalformedResponse
	}

	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}

	return nil
}
