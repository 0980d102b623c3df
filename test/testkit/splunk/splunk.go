// Package splunk is a thin client for the Splunk REST export-search API,
// just enough to confirm events landed in the index.
package splunk

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client queries a Splunk management endpoint with admin basic auth. TLS
// verification is off by default: the lab instance serves a self-signed
// certificate.
type Client struct {
	MgmtURL   string
	Username  string
	Password  string
	VerifyTLS bool
	Timeout   time.Duration

	httpClient *http.Client
}

func NewClient(mgmtURL, password string) *Client {
	return &Client{
		MgmtURL:  mgmtURL,
		Username: "admin",
		Password: password,
		Timeout:  30 * time.Second,
	}
}

// Search runs an SPL query (without the leading "search" keyword) over the
// export API and returns the result objects from the NDJSON stream.
//
// Transient connectivity errors return an empty result set and no error so
// deadline-bounded pollers keep retrying; only protocol-level failures
// (non-2xx) surface as errors.
func (c *Client) Search(ctx context.Context, search, earliest string) ([]map[string]any, error) {
	body := url.Values{
		"search":        {"search " + search},
		"earliest_time": {earliest},
		"output_mode":   {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.MgmtURL+"/services/search/jobs/export",
		strings.NewReader(body.Encode()))
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(c.Username, c.Password)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, nil //nolint:nilerr // connectivity errors are retried by the caller's poll loop
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("splunk export search returned status %d", resp.StatusCode)
	}

	return parseExportStream(resp), nil
}

// parseExportStream reads the NDJSON export stream and collects the
// "result" objects. Lines that fail to decode are skipped; the export API
// interleaves previews and status messages with results.
func parseExportStream(resp *http.Response) []map[string]any {
	var results []map[string]any

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var envelope struct {
			Result map[string]any `json:"result"`
		}

		if err := json.Unmarshal([]byte(line), &envelope); err != nil {
			continue
		}

		if envelope.Result != nil {
			results = append(results, envelope.Result)
		}
	}

	return results
}

func (c *Client) client() *http.Client {
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion:         tls.VersionTLS12,
					InsecureSkipVerify: !c.VerifyTLS, //nolint:gosec // lab instance serves a self-signed certificate
				},
			},
		}
	}

	return c.httpClient
}
