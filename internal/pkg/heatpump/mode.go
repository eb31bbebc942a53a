package heatpump

import "github.com/rueda1208/HA-HEMS/internal/pkg/model"

// Outdoor temperature thresholds bounding the neutral band. Between them,
// inclusive, the heat pump stays off.
const (
	coolingThresholdC = 20.0
	heatingThresholdC = 10.0
)

// SelectMode picks the heat-pump mode from the outdoor temperature.
func SelectMode(outdoorTempC float64) model.HvacMode {
	switch {
	case outdoorTempC > coolingThresholdC:
		return model.HvacCool
	case outdoorTempC < heatingThresholdC:
		return model.HvacHeat
	default:
		return model.HvacOff
	}
}
