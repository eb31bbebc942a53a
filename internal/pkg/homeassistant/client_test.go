package homeassistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rueda1208/HA-HEMS/internal/pkg/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&config.HomeAssistantConfig{BaseURL: srv.URL, Token: "token-123"}, 2)
}

func TestListEntities(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/states", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"entity_id": "climate.living_room", "state": "heat"},
			{"entity_id": "weather.home", "state": "cloudy"},
			{"entity_id": "light.kitchen", "state": "on"},
		})
	}))

	ids, err := c.ListEntities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"climate.living_room", "weather.home"}, ids)
}

func TestFetchStates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/states/climate.living_room":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"entity_id":    "climate.living_room",
				"state":        "HEAT",
				"last_changed": "2026-01-15T10:00:00+00:00",
				"attributes":   map[string]any{"current_temperature": 19.5, "temperature": 21.0},
			})
		case "/api/states/weather.home":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"entity_id":  "weather.home",
				"state":      "sunny",
				"attributes": map[string]any{"temperature": -4.0},
			})
		default:
			http.NotFound(w, r)
		}
	}))

	snap, err := c.FetchStates(context.Background(), []string{"climate.living_room", "weather.home", "climate.gone"})
	require.NoError(t, err)
	require.Len(t, snap, 2, "unreadable entity is skipped, not fatal")

	living := snap["climate.living_room"]
	assert.Equal(t, "heat", living.State, "state is lowercased")
	require.NotNil(t, living.CurrentTemperature)
	assert.Equal(t, 19.5, *living.CurrentTemperature)
	require.NotNil(t, living.Temperature)
	assert.Equal(t, 21.0, *living.Temperature)

	outdoor := snap["weather.home"]
	require.NotNil(t, outdoor.Temperature)
	assert.Equal(t, -4.0, *outdoor.Temperature)
	assert.Nil(t, outdoor.CurrentTemperature)
}

func TestFetchStates_AllUnreachable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := c.FetchStates(context.Background(), []string{"climate.a"})
	assert.Error(t, err)
}

func TestServiceCalls(t *testing.T) {
	type call struct {
		path    string
		payload map[string]any
	}
	var calls []call
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		calls = append(calls, call{path: r.URL.Path, payload: payload})
	}))

	ctx := context.Background()
	require.NoError(t, c.SetTemperature(ctx, "climate.living_room", 20.5))
	require.NoError(t, c.SetHvacMode(ctx, "climate.heat_pump", "heat"))

	require.Len(t, calls, 2)
	assert.Equal(t, "/api/services/climate/set_temperature", calls[0].path)
	assert.Equal(t, map[string]any{"entity_id": "climate.living_room", "temperature": 20.5}, calls[0].payload)
	assert.Equal(t, "/api/services/climate/set_hvac_mode", calls[1].path)
	assert.Equal(t, map[string]any{"entity_id": "climate.heat_pump", "hvac_mode": "heat"}, calls[1].payload)
}

func TestRetries(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, c.SetTemperature(context.Background(), "climate.a", 21))
	assert.Equal(t, int32(2), hits.Load())
}
