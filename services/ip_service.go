package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// IPEchoClient asks an external echo service for the caller's public IP.
// It is strictly best-effort: every failure mode returns nil so callers
// treat the result as "unknown IP, cannot auto-match".
type IPEchoClient struct {
	url    string
	client *http.Client
}

var ipEchoInstance *IPEchoClient

// InitIPEchoClient initializes the IP echo client for the given endpoint
func InitIPEchoClient(url string) *IPEchoClient {
	ipEchoInstance = NewIPEchoClient(url)
	return ipEchoInstance
}

// GetIPEchoClient returns the initialized IP echo client
func GetIPEchoClient() *IPEchoClient {
	return ipEchoInstance
}

// SetIPEchoClient sets the IP echo client instance (primarily for testing)
func SetIPEchoClient(c *IPEchoClient) {
	ipEchoInstance = c
}

// NewIPEchoClient creates a client with a 5 second request timeout so a
// dead echo service can never hang a kiosk request.
func NewIPEchoClient(url string) *IPEchoClient {
	return &IPEchoClient{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// DetectClientIP GETs the echo endpoint and parses {"ip": "..."}. Any
// failure (network, non-200, malformed body, empty ip) returns nil.
func (c *IPEchoClient) DetectClientIP(ctx context.Context) *string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		log.Printf("ip echo: failed to build request: %v", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("ip echo: request failed: %v", err)
		return nil
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("warning: failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.Printf("ip echo: unexpected status %d", resp.StatusCode)
		return nil
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("ip echo: failed to decode response: %v", err)
		return nil
	}
	if body.IP == "" {
		return nil
	}
	return &body.IP
}

// EchoURL returns the configured endpoint, for diagnostics.
func (c *IPEchoClient) EchoURL() string {
	return c.url
}
