package controller

import (
	"github.com/samber/lo"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

// Above this COP the heat pump carries the load alone and auxiliary
// resistive heating is suppressed.
const auxSuppressionCOP = 2.5

// Setpoints low enough to keep local resistive heating off when the pump is
// cooling or idle.
const (
	coolingAuxOffSetpointC = 5.0
	idleAuxOffSetpointC    = 10.0
)

// ZoneMetrics is the per-zone input to the decision tables.
type ZoneMetrics struct {
	InsideTemp float64
	TargetTemp float64
	Impact     float64
}

// DecideHeatPump turns mode, COP and the aggregated metrics of the impacted
// zones into concrete actions for the pump and each zone. Zone temperatures
// enter as plain arithmetic means; weighting by impact factor or zone size
// is a known limitation.
func DecideHeatPump(pumpEntityID string, mode model.HvacMode, cop float64, impacted map[string]ZoneMetrics) model.Actions {
	values := lo.Values(impacted)
	insideTemp := lo.MeanBy(values, func(m ZoneMetrics) float64 { return m.InsideTemp })
	targetTemp := lo.MeanBy(values, func(m ZoneMetrics) float64 { return m.TargetTemp })

	actions := model.Actions{}
	pump := model.Action{Mode: &mode}

	switch mode {
	case model.HvacHeat:
		if insideTemp < targetTemp {
			pump.Setpoint = lo.ToPtr(targetTemp + 1)
			// An efficient pump heats alone; zones drop below target so
			// their resistive heaters stay quiet. Otherwise zones hold
			// target and auxiliary heat assists.
			zoneSetpoint := targetTemp
			if cop >= auxSuppressionCOP {
				zoneSetpoint = targetTemp - 1
			}
			for id := range impacted {
				actions[id] = model.Action{Setpoint: lo.ToPtr(zoneSetpoint)}
			}
		} else {
			pump.Setpoint = lo.ToPtr(targetTemp)
			for id := range impacted {
				actions[id] = model.Action{Setpoint: lo.ToPtr(targetTemp - 2)}
			}
		}

	case model.HvacCool:
		for id := range impacted {
			actions[id] = model.Action{Setpoint: lo.ToPtr(coolingAuxOffSetpointC)}
		}
		if insideTemp > targetTemp {
			pump.Setpoint = lo.ToPtr(targetTemp - 1)
		} else {
			pump.Setpoint = lo.ToPtr(targetTemp)
		}

	default: // off: no pump setpoint, zones parked low
		for id := range impacted {
			actions[id] = model.Action{Setpoint: lo.ToPtr(idleAuxOffSetpointC)}
		}
	}

	actions[pumpEntityID] = pump
	return actions
}
