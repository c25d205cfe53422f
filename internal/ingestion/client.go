package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maxweather/dashboard/internal/config"
	"github.com/maxweather/dashboard/internal/models"
)

// Client talks to the NWS API: the active-alerts collection and the
// per-zone resources referenced by affectedZones.
type Client struct {
	alertsURL   string
	userAgent   string
	alertClient *http.Client
	zoneClient  *http.Client
}

func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{
		alertsURL:   cfg.AlertsURL,
		userAgent:   cfg.UserAgent,
		alertClient: &http.Client{Timeout: cfg.AlertTimeout},
		zoneClient:  &http.Client{Timeout: cfg.ZoneTimeout},
	}
}

// FetchActiveAlerts retrieves the full active-alerts collection.
func (c *Client) FetchActiveAlerts(ctx context.Context) (*models.AlertCollection, error) {
	resp, err := c.get(ctx, c.alertClient, c.alertsURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var coll models.AlertCollection
	if err := json.NewDecoder(resp.Body).Decode(&coll); err != nil {
		return nil, &PayloadError{URL: c.alertsURL, Err: err}
	}

	return &coll, nil
}

// zoneFeature is the single-Feature response of a zone resource. Only the
// geometry matters here.
type zoneFeature struct {
	Geometry *models.Geometry `json:"geometry"`
}

// FetchZoneGeometry retrieves the geometry of one zone. The zoneID is the
// resource URL as it appears in affectedZones.
func (c *Client) FetchZoneGeometry(ctx context.Context, zoneID string) (*models.Geometry, error) {
	resp, err := c.get(ctx, c.zoneClient, zoneID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var feature zoneFeature
	if err := json.NewDecoder(resp.Body).Decode(&feature); err != nil {
		return nil, &PayloadError{URL: zoneID, Err: err}
	}
	if feature.Geometry == nil || feature.Geometry.Type == "" {
		return nil, &PayloadError{URL: zoneID, Err: errors.New("missing geometry field")}
	}

	return feature.Geometry, nil
}

func (c *Client) get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &UpstreamError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp, nil
}
