package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

// ErrInvalidSlot is returned when a time-slot key cannot be parsed.
var ErrInvalidSlot = errors.New("invalid schedule time slot")

// SlotBounds are the parsed bounds of a "HHhMM-HHhMM" slot key. A slot whose
// start hour is >= its end hour wraps midnight.
type SlotBounds struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// Wraps reports whether the slot crosses midnight.
func (b SlotBounds) Wraps() bool {
	return b.StartHour >= b.EndHour
}

// Matches reports whether the given hour falls inside the slot.
// TODO: match on minutes too so slots like 10h30-15h45 behave as written;
// today only the hour component is compared.
func (b SlotBounds) Matches(hour int) bool {
	if b.Wraps() {
		return hour >= b.StartHour || hour < b.EndHour
	}
	return hour >= b.StartHour && hour < b.EndHour
}

// ParseSlot parses a slot key such as "6h00-22h00".
func ParseSlot(key string) (SlotBounds, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return SlotBounds{}, fmt.Errorf("%w: %q", ErrInvalidSlot, key)
	}
	sh, sm, err := parseClock(parts[0])
	if err != nil {
		return SlotBounds{}, fmt.Errorf("%w: %q: %v", ErrInvalidSlot, key, err)
	}
	eh, em, err := parseClock(parts[1])
	if err != nil {
		return SlotBounds{}, fmt.Errorf("%w: %q: %v", ErrInvalidSlot, key, err)
	}
	return SlotBounds{StartHour: sh, StartMinute: sm, EndHour: eh, EndMinute: em}, nil
}

func parseClock(s string) (hour, minute int, err error) {
	hm := strings.Split(s, "h")
	if len(hm) == 0 || len(hm) > 2 {
		return 0, 0, fmt.Errorf("malformed clock value %q", s)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(hm[0]))
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("hour %d out of range", hour)
	}
	if len(hm) == 2 && hm[1] != "" {
		minute, err = strconv.Atoi(strings.TrimSpace(hm[1]))
		if err != nil {
			return 0, 0, err
		}
		if minute < 0 || minute > 59 {
			return 0, 0, fmt.Errorf("minute %d out of range", minute)
		}
	}
	return hour, minute, nil
}

// ResolveTarget returns the scheduled target temperature for the given hour
// and day type. ok is false when no slot covers the hour or the schedule has
// no column for the day type. Slots are validated non-overlapping at config
// load, so map iteration order cannot change the result. Unparseable slot
// keys are skipped here; config validation reports them.
func ResolveTarget(sched model.Schedule, day model.DayType, hour int) (target float64, ok bool) {
	daySched, ok := sched[day]
	if !ok {
		return 0, false
	}
	for key, slot := range daySched.TimeSlots {
		bounds, err := ParseSlot(key)
		if err != nil {
			continue
		}
		if bounds.Matches(hour) {
			return slot.TargetTempC, true
		}
	}
	return 0, false
}
