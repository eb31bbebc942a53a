// Package homeassistant is a thin client for the Core REST API: entity
// discovery, per-entity state reads and the two climate service calls the
// controller needs. The decision engine depends only on this fetch/apply
// surface, never on the transport.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/rueda1208/HA-HEMS/internal/pkg/config"
	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	attempts   uint64
	logger     *zap.Logger
}

// New builds a client against the Core API. attempts bounds every request
// (constant 1s backoff between tries).
func New(cfg *config.HomeAssistantConfig, attempts uint64) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		attempts:   attempts,
		logger:     zap.L(),
	}
}

// entity mirrors the API state object, restricted to the attributes the
// controller reads. For climate entities attributes.temperature is the
// active setpoint; for weather entities it is the outdoor reading.
type entity struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	LastChanged string `json:"last_changed"`
	Attributes  struct {
		CurrentTemperature *float64 `json:"current_temperature"`
		Temperature        *float64 `json:"temperature"`
	} `json:"attributes"`
}

func (e entity) deviceState() model.DeviceState {
	return model.DeviceState{
		State:              strings.ToLower(e.State),
		CurrentTemperature: e.Attributes.CurrentTemperature,
		Temperature:        e.Attributes.Temperature,
		LastChanged:        e.LastChanged,
	}
}

// ListEntities returns the climate and weather entity ids known to Home
// Assistant.
func (c *Client) ListEntities(ctx context.Context) ([]string, error) {
	var states []entity
	if err := c.getJSON(ctx, "/api/states", &states); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(states))
	for _, s := range states {
		if strings.HasPrefix(s.EntityID, "climate.") || strings.HasPrefix(s.EntityID, "weather.") {
			ids = append(ids, s.EntityID)
		}
	}
	c.logger.Debug("climate devices retrieved from api", zap.Int("count", len(ids)))
	return ids, nil
}

// FetchStates reads the state of every requested entity. An entity that
// cannot be read is logged and left out of the snapshot; the remaining
// entities are still returned so the cycle can proceed.
func (c *Client) FetchStates(ctx context.Context, entityIDs []string) (model.Snapshot, error) {
	snapshot := make(model.Snapshot, len(entityIDs))
	for _, id := range entityIDs {
		var e entity
		if err := c.getJSON(ctx, "/api/states/"+id, &e); err != nil {
			c.logger.Warn("failed to fetch entity state", zap.String("entity_id", id), zap.Error(err))
			continue
		}
		snapshot[id] = e.deviceState()
	}
	if len(snapshot) == 0 && len(entityIDs) > 0 {
		return nil, fmt.Errorf("homeassistant: no entity state could be fetched")
	}
	return snapshot, nil
}

// SetTemperature calls the climate.set_temperature service.
func (c *Client) SetTemperature(ctx context.Context, entityID string, setpoint float64) error {
	return c.postJSON(ctx, "/api/services/climate/set_temperature", map[string]any{
		"entity_id":   entityID,
		"temperature": setpoint,
	})
}

// SetHvacMode calls the climate.set_hvac_mode service.
func (c *Client) SetHvacMode(ctx context.Context, entityID string, mode model.HvacMode) error {
	return c.postJSON(ctx, "/api/services/climate/set_hvac_mode", map[string]any{
		"entity_id": entityID,
		"hvac_mode": string(mode),
	})
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.withRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.setHeaders(req)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("homeassistant: GET %s: unexpected status %s", path, resp.Status)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("homeassistant: decode %s: %w", path, err))
		}
		return nil
	})
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.withRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		c.setHeaders(req)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("homeassistant: POST %s: unexpected status %s", path, resp.Status)
		}
		return nil
	})
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), c.attempts-1)
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}
