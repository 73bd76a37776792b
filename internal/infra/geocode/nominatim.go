// Package geocode resolves street addresses through a Nominatim-compatible search API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"septic_reminder_service/internal/domain/customer"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Client implements customer.Geocoder.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient creates a client for baseURL, or for the public Nominatim
// instance when baseURL is empty.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) Geocode(ctx context.Context, address string) (customer.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return customer.Coordinate{}, customer.ErrGeocodeNotFound
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return customer.Coordinate{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return customer.Coordinate{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return customer.Coordinate{}, customer.ErrGeocodeRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return customer.Coordinate{}, fmt.Errorf("geocoder returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return customer.Coordinate{}, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if len(results) == 0 {
		return customer.Coordinate{}, customer.ErrGeocodeNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return customer.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return customer.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}
	return customer.Coordinate{Lat: lat, Lng: lng}, nil
}
