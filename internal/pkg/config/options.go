package config

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Options are the add-on options the supervisor writes to /data/options.json.
type Options struct {
	HeatPumpEnabled bool `json:"heat_pump_enabled"`
}

// LoadOptions reads the add-on options file. A missing file means the
// controller runs outside a supervised install; the heat-pump feature then
// stays disabled.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		zap.L().Debug("no add-on options file, heat pump disabled", zap.String("path", path))
		return Options{}, nil
	}
	if err != nil {
		return Options{}, err
	}
	opts := Options{}
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return opts, nil
}
