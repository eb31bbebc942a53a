package gdp

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// SelectEvent picks the single event a cycle acts on: among events starting
// today (local time), the ongoing one if any, else the nearest upcoming one,
// else nil.
func SelectEvent(events []PeakEvent, now time.Time) *PeakEvent {
	year, month, day := now.Date()
	today := lo.Filter(events, func(e PeakEvent, _ int) bool {
		ey, em, ed := e.Start.In(now.Location()).Date()
		return ey == year && em == month && ed == day
	})
	if len(today) == 0 {
		return nil
	}

	slices.SortFunc(today, func(a, b PeakEvent) int {
		return a.Start.Compare(b.Start)
	})

	event, found := lo.Find(today, func(e PeakEvent) bool {
		return e.Ongoing(now) || now.Before(e.Start)
	})
	if !found {
		// All of today's events are already finished.
		return nil
	}
	return &event
}
