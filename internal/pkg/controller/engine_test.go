package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

const pumpID = "climate.heat_pump"

func impactedZones(inside, target float64) map[string]ZoneMetrics {
	return map[string]ZoneMetrics{
		"climate.living_room": {InsideTemp: inside, TargetTemp: target, Impact: 0.8},
		"climate.bedroom":     {InsideTemp: inside, TargetTemp: target, Impact: 0.4},
	}
}

func requireSetpoint(t *testing.T, actions model.Actions, id string, want float64) {
	t.Helper()
	action, ok := actions[id]
	require.True(t, ok, "missing action for %s", id)
	require.NotNil(t, action.Setpoint, "missing setpoint for %s", id)
	assert.Equal(t, want, *action.Setpoint, "setpoint for %s", id)
}

func TestDecideHeatPump_HeatingEfficientPump(t *testing.T) {
	actions := DecideHeatPump(pumpID, model.HvacHeat, 3.0, impactedZones(19, 21))

	pump := actions[pumpID]
	require.NotNil(t, pump.Mode)
	assert.Equal(t, model.HvacHeat, *pump.Mode)
	requireSetpoint(t, actions, pumpID, 22)

	// COP >= 2.5: zones sit below target so resistive heat stays off.
	requireSetpoint(t, actions, "climate.living_room", 20)
	requireSetpoint(t, actions, "climate.bedroom", 20)
}

func TestDecideHeatPump_HeatingLowCOP(t *testing.T) {
	actions := DecideHeatPump(pumpID, model.HvacHeat, 1.8, impactedZones(19, 21))

	requireSetpoint(t, actions, pumpID, 22)
	// Inefficient pump: auxiliary heat allowed to assist at target.
	requireSetpoint(t, actions, "climate.living_room", 21)
}

func TestDecideHeatPump_HeatingSatisfied(t *testing.T) {
	actions := DecideHeatPump(pumpID, model.HvacHeat, 3.0, impactedZones(22, 21))

	requireSetpoint(t, actions, pumpID, 21)
	requireSetpoint(t, actions, "climate.living_room", 19)
}

func TestDecideHeatPump_Cooling(t *testing.T) {
	actions := DecideHeatPump(pumpID, model.HvacCool, 4.0, impactedZones(26, 24))

	requireSetpoint(t, actions, pumpID, 23)
	requireSetpoint(t, actions, "climate.living_room", 5)
	requireSetpoint(t, actions, "climate.bedroom", 5)

	actions = DecideHeatPump(pumpID, model.HvacCool, 4.0, impactedZones(23, 24))
	requireSetpoint(t, actions, pumpID, 24)
}

func TestDecideHeatPump_Off(t *testing.T) {
	actions := DecideHeatPump(pumpID, model.HvacOff, 0, impactedZones(18, 21))

	pump := actions[pumpID]
	require.NotNil(t, pump.Mode)
	assert.Equal(t, model.HvacOff, *pump.Mode)
	assert.Nil(t, pump.Setpoint, "off carries no setpoint")

	requireSetpoint(t, actions, "climate.living_room", 10)
}

func TestDecideHeatPump_MeansAreArithmetic(t *testing.T) {
	zones := map[string]ZoneMetrics{
		"climate.a": {InsideTemp: 18, TargetTemp: 20},
		"climate.b": {InsideTemp: 22, TargetTemp: 24},
	}
	// mean inside 20 < mean target 22
	actions := DecideHeatPump(pumpID, model.HvacHeat, 3.0, zones)
	requireSetpoint(t, actions, pumpID, 23)
	requireSetpoint(t, actions, "climate.a", 21)
}

func TestSelectZones(t *testing.T) {
	systems := map[string]model.Zone{
		"climate.living_room": {HeatPumpImpact: 0.8},
		"climate.garage":      {HeatPumpImpact: 0},
		"climate.heat_pump":   {},
	}

	withImpact := SelectZones(systems, true, true)
	assert.Equal(t, map[string]float64{"climate.living_room": 0.8}, withImpact)

	without := SelectZones(systems, true, false)
	assert.Equal(t, map[string]float64{"climate.garage": 0}, without)

	t.Run("feature disabled treats everything as non-impacted", func(t *testing.T) {
		assert.Empty(t, SelectZones(systems, false, true))
		assert.Equal(t, map[string]float64{
			"climate.living_room": 0,
			"climate.garage":      0,
		}, SelectZones(systems, false, false))
	})

	t.Run("heat pump entity excluded always", func(t *testing.T) {
		assert.NotContains(t, SelectZones(systems, true, true), "climate.heat_pump")
		assert.NotContains(t, SelectZones(systems, true, false), "climate.heat_pump")
		assert.NotContains(t, SelectZones(systems, false, false), "climate.heat_pump")
	})
}
