package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// postJSON sends one JSON request and decodes the JSON reply. Every hosted
// adapter speaks this shape; only URLs, headers, and payloads differ.
// Errors carry the provider name, never the URL: Gemini keys travel in the
// query string.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload, reply interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status: %s", provider, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(reply); err != nil {
		return fmt.Errorf("decode %s response: %w", provider, err)
	}
	return nil
}
