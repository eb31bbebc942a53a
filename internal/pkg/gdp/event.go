// Package gdp handles utility peak-pricing events ("GDP" offers) and the
// temperature adjustments they impose on zone schedules: setback during the
// event, a preconditioning ramp before it and a recovery ramp after it.
package gdp

import (
	"time"
)

// PeakEvent is one utility-declared high-price interval. Field names on the
// wire follow the upstream feed (French), immutable once fetched.
type PeakEvent struct {
	OfferCode  string    `json:"offre"`
	TimeWindow string    `json:"plagehoraire"`
	Duration   string    `json:"duree"`
	Sector     string    `json:"secteurclient"`
	Start      time.Time `json:"datedebut"`
	End        time.Time `json:"datefin"`
}

// Ongoing reports whether now falls inside the event, end inclusive.
func (e PeakEvent) Ongoing(now time.Time) bool {
	return !now.Before(e.Start) && !now.After(e.End)
}
