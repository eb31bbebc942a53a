package controller

import (
	"github.com/rueda1208/HA-HEMS/internal/pkg/config"
	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

// SelectZones partitions the configured hvac systems by heat-pump impact,
// returning entity id -> impact factor. Heat-pump entities belong to neither
// partition. With the heat-pump feature disabled every zone is treated as
// non-impacted regardless of its configured factor.
func SelectZones(systems map[string]model.Zone, heatPumpEnabled, withImpact bool) map[string]float64 {
	result := map[string]float64{}
	for id, zone := range systems {
		if config.IsHeatPumpEntity(id) {
			continue
		}
		if !heatPumpEnabled {
			if withImpact {
				continue
			}
			result[id] = 0.0
			continue
		}
		if (zone.HeatPumpImpact > 0.0) == withImpact {
			result[id] = zone.HeatPumpImpact
		}
	}
	return result
}
