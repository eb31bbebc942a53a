package gdp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

// Thursday 2026-01-15 is a weekday throughout these tests.
func phaseFixture(t *testing.T) (model.Zone, model.Schedule, PeakEvent, *time.Location) {
	t.Helper()
	loc := mustLoc(t)
	zone := model.Zone{
		HeatPumpImpact:  0.5,
		Flexibility:     model.Flexibility{Upward: 1, Downward: 2},
		Preconditioning: true,
	}
	sched := model.Schedule{
		model.Weekday: model.DaySchedule{
			TimeSlots: map[string]model.TimeSlot{
				"6h00-22h00": {TargetTempC: 21},
				"22h00-6h00": {TargetTempC: 18},
			},
		},
	}
	day := time.Date(2026, time.January, 15, 0, 0, 0, 0, loc)
	return zone, sched, eventAt(loc, day, 16, 20), loc
}

func TestResolveTarget_EventSetback(t *testing.T) {
	zone, sched, event, loc := phaseFixture(t)

	now := time.Date(2026, time.January, 15, 17, 0, 0, 0, loc)
	got, phase, ok := ResolveTarget(zone, sched, &event, now)
	require.True(t, ok)
	assert.Equal(t, PhaseEvent, phase)
	assert.Equal(t, 21.0-2, got)
}

func TestResolveTarget_Precondition(t *testing.T) {
	zone, sched, event, loc := phaseFixture(t)

	// Window is 14:00-16:00; ramp runs from schedule(14h)=21 toward
	// upward(1) + max schedule over 16h..19h (21) = 22, completing 15
	// minutes early.
	t.Run("window start", func(t *testing.T) {
		now := time.Date(2026, time.January, 15, 14, 0, 0, 0, loc)
		got, phase, ok := ResolveTarget(zone, sched, &event, now)
		require.True(t, ok)
		assert.Equal(t, PhasePrecondition, phase)
		assert.Equal(t, 21.00, got)
	})

	t.Run("shortened midpoint", func(t *testing.T) {
		// 52.5 minutes into the shortened 105-minute window.
		now := time.Date(2026, time.January, 15, 14, 52, 30, 0, loc)
		got, _, ok := ResolveTarget(zone, sched, &event, now)
		require.True(t, ok)
		assert.Equal(t, 21.50, got)
	})

	t.Run("target reached early", func(t *testing.T) {
		now := time.Date(2026, time.January, 15, 15, 50, 0, 0, loc)
		got, _, ok := ResolveTarget(zone, sched, &event, now)
		require.True(t, ok)
		assert.Equal(t, 22.00, got)
	})

	t.Run("disabled preconditioning falls through to normal", func(t *testing.T) {
		zone.Preconditioning = false
		now := time.Date(2026, time.January, 15, 15, 0, 0, 0, loc)
		got, phase, ok := ResolveTarget(zone, sched, &event, now)
		require.True(t, ok)
		assert.Equal(t, PhaseNormal, phase)
		assert.Equal(t, 21.0, got)
	})
}

func TestResolveTarget_Recovery(t *testing.T) {
	zone, sched, event, loc := phaseFixture(t)

	// Window is 20:00-21:00; ramp from schedule(19h)=21 toward
	// schedule(21h)=21.
	t.Run("window start", func(t *testing.T) {
		now := time.Date(2026, time.January, 15, 20, 0, 0, 0, loc)
		got, phase, ok := ResolveTarget(zone, sched, &event, now)
		require.True(t, ok)
		assert.Equal(t, PhaseRecovery, phase)
		assert.Equal(t, 21.00, got)
	})

	t.Run("ramps between differing targets", func(t *testing.T) {
		// A schedule flipping at 21h exercises a real ramp.
		sched := model.Schedule{
			model.Weekday: model.DaySchedule{
				TimeSlots: map[string]model.TimeSlot{
					"6h00-21h00": {TargetTempC: 21},
					"21h00-6h00": {TargetTempC: 18},
				},
			},
		}
		// 22.5 minutes in: midpoint of the shortened 45-minute window.
		now := time.Date(2026, time.January, 15, 20, 22, 30, 0, loc)
		got, phase, ok := ResolveTarget(zone, sched, &event, now)
		require.True(t, ok)
		assert.Equal(t, PhaseRecovery, phase)
		assert.Equal(t, 19.50, got)
	})

	t.Run("missing end target skips the zone", func(t *testing.T) {
		sched := model.Schedule{
			model.Weekday: model.DaySchedule{
				TimeSlots: map[string]model.TimeSlot{
					"6h00-21h00": {TargetTempC: 21},
				},
			},
		}
		now := time.Date(2026, time.January, 15, 20, 30, 0, 0, loc)
		_, phase, ok := ResolveTarget(zone, sched, &event, now)
		assert.False(t, ok)
		assert.Equal(t, PhaseRecovery, phase)
	})
}

func TestResolveTarget_Normal(t *testing.T) {
	zone, sched, event, loc := phaseFixture(t)

	t.Run("no event", func(t *testing.T) {
		now := time.Date(2026, time.January, 15, 12, 0, 0, 0, loc)
		got, phase, ok := ResolveTarget(zone, sched, nil, now)
		require.True(t, ok)
		assert.Equal(t, PhaseNormal, phase)
		assert.Equal(t, 21.0, got)
	})

	t.Run("well before the event", func(t *testing.T) {
		now := time.Date(2026, time.January, 15, 8, 0, 0, 0, loc)
		got, phase, ok := ResolveTarget(zone, sched, &event, now)
		require.True(t, ok)
		assert.Equal(t, PhaseNormal, phase)
		assert.Equal(t, 21.0, got)
	})

	t.Run("after recovery", func(t *testing.T) {
		now := time.Date(2026, time.January, 15, 21, 30, 0, 0, loc)
		got, phase, ok := ResolveTarget(zone, sched, &event, now)
		require.True(t, ok)
		assert.Equal(t, PhaseNormal, phase)
		assert.Equal(t, 21.0, got)
	})

	t.Run("no matching slot", func(t *testing.T) {
		empty := model.Schedule{}
		_, _, ok := ResolveTarget(zone, empty, nil, time.Date(2026, time.January, 15, 12, 0, 0, 0, loc))
		assert.False(t, ok)
	})
}
