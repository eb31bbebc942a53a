package model

import "time"

// HvacMode is the operating mode requested from a climate entity.
type HvacMode string

const (
	HvacHeat HvacMode = "heat"
	HvacCool HvacMode = "cool"
	HvacOff  HvacMode = "off"
)

// ScheduleKey maps a mode to the key used by heat-pump entity configuration
// blocks ("heat" -> "heating", "cool" -> "cooling").
func (m HvacMode) ScheduleKey() string {
	return string(m) + "ing"
}

// DayType selects which schedule column applies.
type DayType string

const (
	Weekday DayType = "weekday"
	Weekend DayType = "weekend"
)

// DayTypeOf returns the schedule column for the given local time.
func DayTypeOf(t time.Time) DayType {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend
	default:
		return Weekday
	}
}

// Flexibility is the allowed directional deviation from the scheduled target,
// in degrees Celsius. Upward applies during preconditioning, downward during
// a peak event.
type Flexibility struct {
	Upward   float64 `yaml:"upward"`
	Downward float64 `yaml:"downward"`
}

// TimeSlot is the target temperature for one schedule time range.
type TimeSlot struct {
	TargetTempC float64 `yaml:"target_temp_C"`
}

// DaySchedule maps time ranges such as "6h00-22h00" to their targets.
type DaySchedule struct {
	TimeSlots map[string]TimeSlot `yaml:"time_slots"`
}

// Schedule holds one DaySchedule per day type.
type Schedule map[DayType]DaySchedule

// ModeSchedule wraps the schedule a heat-pump entity carries per hvac mode.
type ModeSchedule struct {
	Schedule Schedule `yaml:"schedule"`
}

// Zone is the configured description of a single climate entity. Regular
// zones carry a single schedule; heat-pump entities carry one schedule per
// mode instead.
type Zone struct {
	HeatPumpImpact  float64       `yaml:"heat_pump_impact"`
	Flexibility     Flexibility   `yaml:"flexibility"`
	Preconditioning bool          `yaml:"preconditioning"`
	Schedule        Schedule      `yaml:"schedule,omitempty"`
	Heating         *ModeSchedule `yaml:"heating,omitempty"`
	Cooling         *ModeSchedule `yaml:"cooling,omitempty"`
}

// ModeScheduleFor returns the heat-pump entity schedule for the given mode,
// or nil when the entity has none for it (notably mode "off").
func (z Zone) ModeScheduleFor(mode HvacMode) Schedule {
	switch mode {
	case HvacHeat:
		if z.Heating != nil {
			return z.Heating.Schedule
		}
	case HvacCool:
		if z.Cooling != nil {
			return z.Cooling.Schedule
		}
	}
	return nil
}

// DeviceState is one entity's reported state for the current cycle.
// Temperature carries the Home Assistant "temperature" attribute: the active
// setpoint for climate entities, the outdoor reading for weather entities.
type DeviceState struct {
	State              string
	CurrentTemperature *float64
	Temperature        *float64
	LastChanged        string
}

// Snapshot maps entity id to its reported state. Produced fresh each cycle
// and never mutated by the decision engine.
type Snapshot map[string]DeviceState

// Action is the command computed for one entity. Mode is set only for the
// heat pump; Setpoint is nil when the entity is being switched off.
type Action struct {
	Mode     *HvacMode
	Setpoint *float64
}

// Actions maps entity id to its computed command for this cycle.
type Actions map[string]Action
