package gdp

import (
	"time"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
	"github.com/rueda1208/HA-HEMS/internal/pkg/schedule"
)

// Temporal phases relative to the selected peak event. First match wins in
// the order event > precondition > recovery > normal.
type Phase int

const (
	PhaseNormal Phase = iota
	PhasePrecondition
	PhaseEvent
	PhaseRecovery
)

func (p Phase) String() string {
	switch p {
	case PhasePrecondition:
		return "precondition"
	case PhaseEvent:
		return "event"
	case PhaseRecovery:
		return "recovery"
	default:
		return "normal"
	}
}

const (
	preconditionLead = 2 * time.Hour
	recoveryTail     = time.Hour
)

// ResolveTarget computes the zone's target temperature at now, adjusted for
// the selected peak event (nil means no event today). ok is false when the
// applicable schedule slot is missing, in which case the caller skips the
// zone for this cycle.
func ResolveTarget(zone model.Zone, sched model.Schedule, event *PeakEvent, now time.Time) (target float64, phase Phase, ok bool) {
	day := model.DayTypeOf(now)

	if event == nil {
		base, ok := schedule.ResolveTarget(sched, day, now.Hour())
		return base, PhaseNormal, ok
	}

	precondStart := event.Start.Add(-preconditionLead)
	recoveryEnd := event.End.Add(recoveryTail)

	switch {
	case !now.Before(event.Start) && now.Before(event.End):
		base, ok := schedule.ResolveTarget(sched, day, now.Hour())
		if !ok {
			return 0, PhaseEvent, false
		}
		return base - zone.Flexibility.Downward, PhaseEvent, true

	case zone.Preconditioning && !now.Before(precondStart) && now.Before(event.Start):
		return preconditionTarget(zone, sched, event, day, precondStart, now), PhasePrecondition, true

	case !now.Before(event.End) && now.Before(recoveryEnd):
		return recoveryTarget(sched, event, day, recoveryEnd, now)


	default:
		base, ok := schedule.ResolveTarget(sched, day, now.Hour())
		return base, PhaseNormal, ok
	}
}

// preconditionTarget ramps from the schedule at the window start toward the
// highest scheduled target inside the event, raised by the zone's upward
// flexibility. Missing schedule slots contribute 0, matching the behavior
// user installs have come to rely on.
func preconditionTarget(zone model.Zone, sched model.Schedule, event *PeakEvent, day model.DayType, precondStart, now time.Time) float64 {
	maxEventTarget, _ := schedule.ResolveTarget(sched, day, event.Start.Hour())
	for hour := event.Start.Hour(); hour < event.End.Hour(); hour++ {
		if t, ok := schedule.ResolveTarget(sched, day, hour); ok && t > maxEventTarget {
			maxEventTarget = t
		}
	}

	initial, _ := schedule.ResolveTarget(sched, day, precondStart.Hour())
	return schedule.Ramp(
		preconditionLead,
		now.Sub(precondStart),
		initial,
		zone.Flexibility.Upward+maxEventTarget,
	)
}

// recoveryTarget ramps from the schedule one hour before the recovery window
// back to the target scheduled at its end. Recovery applies no flexibility;
// it only returns the zone to its normal schedule smoothly. A missing target
// at the window end makes the zone unresolvable for this cycle.
func recoveryTarget(sched model.Schedule, event *PeakEvent, day model.DayType, recoveryEnd, now time.Time) (float64, Phase, bool) {
	endTarget, ok := schedule.ResolveTarget(sched, day, recoveryEnd.Hour())
	if !ok {
		return 0, PhaseRecovery, false
	}
	// Hour -1 at a midnight window start matches no slot and yields 0.
	initial, _ := schedule.ResolveTarget(sched, day, event.End.Hour()-1)
	target := schedule.Ramp(recoveryTail, now.Sub(event.End), initial, endTarget)
	return target, PhaseRecovery, true
}
