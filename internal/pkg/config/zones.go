package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
	"github.com/rueda1208/HA-HEMS/internal/pkg/schedule"
)

// Zones is the per-installation HVAC configuration, read fresh at the start
// of every cycle and treated as read-only while the cycle runs.
type Zones struct {
	EnvironmentSensorID string                `yaml:"environment_sensor_id"`
	HvacSystems         map[string]model.Zone `yaml:"hvac_systems"`
}

// IsHeatPumpEntity reports whether an entity id names the shared heat pump
// rather than a regular zone.
func IsHeatPumpEntity(entityID string) bool {
	return strings.Contains(entityID, "heat_pump")
}

// HeatPumpEntity returns the configured heat-pump entity id and its zone
// block, or ok=false when none is configured.
func (z *Zones) HeatPumpEntity() (string, model.Zone, bool) {
	for id, zone := range z.HvacSystems {
		if IsHeatPumpEntity(id) {
			return id, zone, true
		}
	}
	return "", model.Zone{}, false
}

// LoadZones reads and validates the zone configuration file.
func LoadZones(path string) (*Zones, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	zones := &Zones{}
	if err := yaml.Unmarshal(data, zones); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := zones.Validate(); err != nil {
		return nil, err
	}
	return zones, nil
}

// SaveZones writes the configuration back, preserving the original file's
// top-level shape.
func SaveZones(path string, zones *Zones) error {
	data, err := yaml.Marshal(zones)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every schedule table: slot keys must parse and, per day
// type, no two slots may claim the same hour. Overlap resolution would
// otherwise depend on map iteration order. Hours covered by no slot are
// only warned about; they surface as skipped zones at runtime.
func (z *Zones) Validate() error {
	for id, zone := range z.HvacSystems {
		for label, sched := range namedSchedules(zone) {
			if err := validateSchedule(id, label, sched); err != nil {
				return err
			}
		}
	}
	return nil
}

func namedSchedules(zone model.Zone) map[string]model.Schedule {
	out := map[string]model.Schedule{}
	if zone.Schedule != nil {
		out["schedule"] = zone.Schedule
	}
	if zone.Heating != nil {
		out["heating"] = zone.Heating.Schedule
	}
	if zone.Cooling != nil {
		out["cooling"] = zone.Cooling.Schedule
	}
	return out
}

func validateSchedule(zoneID, label string, sched model.Schedule) error {
	for day, daySched := range sched {
		var claimed [24]string
		for key := range daySched.TimeSlots {
			bounds, err := schedule.ParseSlot(key)
			if err != nil {
				return fmt.Errorf("config: zone %s %s %s: %w", zoneID, label, day, err)
			}
			for hour := 0; hour < 24; hour++ {
				if !bounds.Matches(hour) {
					continue
				}
				if other := claimed[hour]; other != "" {
					return fmt.Errorf("config: zone %s %s %s: slots %q and %q overlap at hour %d",
						zoneID, label, day, other, key, hour)
				}
				claimed[hour] = key
			}
		}
		for hour, key := range claimed {
			if key == "" {
				zap.L().Warn("schedule does not cover every hour",
					zap.String("zone", zoneID),
					zap.String("schedule", label),
					zap.String("day_type", string(day)),
					zap.Int("first_uncovered_hour", hour))
				break
			}
		}
	}
	return nil
}

// MergeDiscovered adds any climate entity reported by Home Assistant that is
// not yet configured, with a default schedule. Heat-pump entities get one
// schedule per mode. Existing zones are never touched. Returns true when the
// configuration changed and needs to be written back.
func (z *Zones) MergeDiscovered(entityIDs []string) bool {
	if z.HvacSystems == nil {
		z.HvacSystems = map[string]model.Zone{}
	}
	changed := false
	for _, id := range entityIDs {
		if !strings.HasPrefix(id, "climate.") {
			continue
		}
		if _, exists := z.HvacSystems[id]; exists {
			continue
		}
		if IsHeatPumpEntity(id) {
			z.HvacSystems[id] = model.Zone{
				Heating: &model.ModeSchedule{Schedule: defaultSchedule()},
				Cooling: &model.ModeSchedule{Schedule: defaultSchedule()},
			}
		} else {
			z.HvacSystems[id] = model.Zone{
				Flexibility: model.Flexibility{},
				Schedule:    defaultSchedule(),
			}
		}
		zap.L().Info("added newly discovered zone to configuration", zap.String("entity_id", id))
		changed = true
	}
	return changed
}

func defaultSchedule() model.Schedule {
	return model.Schedule{
		model.Weekday: model.DaySchedule{
			TimeSlots: map[string]model.TimeSlot{
				"6h00-22h00": {TargetTempC: 21},
				"22h00-6h00": {TargetTempC: 18},
			},
		},
		model.Weekend: model.DaySchedule{
			TimeSlots: map[string]model.TimeSlot{
				"8h00-23h00": {TargetTempC: 22},
				"23h00-8h00": {TargetTempC: 19},
			},
		},
	}
}
