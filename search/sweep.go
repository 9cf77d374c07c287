package search

import (
	"sort"
	"time"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/schedule"
)

// dayIndexPos locates a position in a stop's mod-24h-sorted departure
// list: day is the wall-clock calendar date being swept, index is the
// position within that day's ordering.
type dayIndexPos struct {
	day   time.Time
	index int
}

const daySeconds = 24 * 3600

// departureAt resolves a dayIndexPos against sorted (the stop's
// departures, ordered by departure-offset mod 24h) into the stop-time
// it names, the wall-clock instant it departs at, and the calendar
// service_day its trip's service_id must be active on.
//
// A stop-time's offset can exceed 24h (a trip scheduled to depart
// 25:30 after its service day's midnight). Sweeping by wall-clock day
// means the service_day that actually has to run is pos.day minus
// however many whole days the offset carries: wall-clock stays
// pos.day + (offset mod 24h) either way.
func departureAt(sorted []model.StopTime, pos dayIndexPos) (model.StopTime, time.Time, time.Time) {
	st := sorted[pos.index]
	extraDays := st.Departure / daySeconds
	modOffset := st.Departure % daySeconds
	wallClock := pos.day.Add(time.Duration(modOffset) * time.Second)
	serviceDay := pos.day.AddDate(0, 0, -extraDays)
	return st, serviceDay, wallClock
}

func advancePos(sorted []model.StopTime, pos dayIndexPos) dayIndexPos {
	next := pos.index + 1
	if next >= len(sorted) {
		return dayIndexPos{day: pos.day.AddDate(0, 0, 1), index: 0}
	}
	return dayIndexPos{day: pos.day, index: next}
}

// initialPos returns the first position in sorted whose wall-clock
// time (for notBefore's calendar day) is >= notBefore.
func initialPos(sorted []model.StopTime, notBefore time.Time) dayIndexPos {
	day := time.Date(notBefore.Year(), notBefore.Month(), notBefore.Day(), 0, 0, 0, 0, notBefore.Location())
	offsetIntoDay := int(notBefore.Sub(day).Seconds())

	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Departure%daySeconds >= offsetIntoDay
	})
	if i >= len(sorted) {
		return dayIndexPos{day: day.AddDate(0, 0, 1), index: 0}
	}
	return dayIndexPos{day: day, index: i}
}

// seekValidDeparture scans forward from pos (inclusive) for the first
// stop-time whose trip runs on its resolved service_day and whose
// pickup is allowed, stopping once the wall-clock departure would
// exceed windowAnchor+24h. ok is false if the stop has no departures
// at all or none are found within the window.
func seekValidDeparture(
	idx *schedule.Index,
	stopID string,
	pos dayIndexPos,
	windowAnchor time.Time,
) (model.StopTime, time.Time, time.Time, dayIndexPos, bool) {
	sorted := idx.DeparturesAtStop(stopID)
	if len(sorted) == 0 {
		return model.StopTime{}, time.Time{}, time.Time{}, dayIndexPos{}, false
	}

	deadline := windowAnchor.Add(24 * time.Hour)

	for {
		st, serviceDay, wallClock := departureAt(sorted, pos)
		if wallClock.After(deadline) {
			return model.StopTime{}, time.Time{}, time.Time{}, dayIndexPos{}, false
		}

		trip, err := idx.GetTrip(st.TripID)
		if err == nil && idx.RunsOnDay(trip.ServiceID, serviceDay) && st.PickupType != model.PickupDropoffNotAvailable {
			return st, serviceDay, wallClock, pos, true
		}

		pos = advancePos(sorted, pos)
	}
}
