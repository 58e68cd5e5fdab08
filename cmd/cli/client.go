package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type apiClient struct {
	host string
	http *http.Client
	out  io.Writer
}

func newAPIClient(host string, out io.Writer) *apiClient {
	return &apiClient{
		host: strings.TrimRight(host, "/"),
		http: &http.Client{Timeout: 90 * time.Second},
		out:  out,
	}
}

func (c *apiClient) get(endpoint string) error {
	return c.do(http.MethodGet, endpoint, nil)
}

func (c *apiClient) post(endpoint string, payload interface{}) error {
	return c.do(http.MethodPost, endpoint, payload)
}

// do sends the request and prints the response body; non-2xx statuses become errors
// after the body is shown.
func (c *apiClient) do(method, endpoint string, payload interface{}) error {
	var body io.Reader
	if payload != nil {
		js, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, c.host+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	fmt.Fprint(c.out, string(respBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: server responded %d", method, endpoint, resp.StatusCode)
	}
	return nil
}
