package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rueda1208/HA-HEMS/internal/pkg/heatpump"
)

type copPointSpec struct {
	OutdoorDryBulbC float64 `yaml:"outdoor_dry_bulb_C"`
	Max             float64 `yaml:"max"`
}

type performanceSpec struct {
	COPPoints map[string]copPointSpec `yaml:"COP_points"`
}

type heatPumpSpecFile struct {
	PerformanceSpecs struct {
		Heating performanceSpec `yaml:"heating"`
		Cooling performanceSpec `yaml:"cooling"`
	} `yaml:"heat_pump_performance_specs"`
}

// LoadCOPPoints reads the heat-pump performance specification used once at
// startup to fit the COP regression.
func LoadCOPPoints(path string) (heating, cooling []heatpump.COPPoint, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	spec := heatPumpSpecFile{}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return copPoints(spec.PerformanceSpecs.Heating), copPoints(spec.PerformanceSpecs.Cooling), nil
}

func copPoints(spec performanceSpec) []heatpump.COPPoint {
	points := make([]heatpump.COPPoint, 0, len(spec.COPPoints))
	for _, p := range spec.COPPoints {
		points = append(points, heatpump.COPPoint{OutdoorTempC: p.OutdoorDryBulbC, MaxCOP: p.Max})
	}
	return points
}
