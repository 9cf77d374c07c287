package search

import (
	"time"

	"connectionsearch.dev/gtfs/connection"
	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/schedule"
)

// BestPerStop and BestPerTrip are the search engine's dominance
// tables: the best Connection discovered so far to each reached stop,
// and the best OpenConnection discovered so far for each trip a rider
// has boarded.
type BestPerStop = map[string]connection.Connection
type BestPerTrip = map[string]connection.OpenConnection

// StopEvent represents standing at a stop, waiting to board the next
// pickup-allowed departure.
type StopEvent struct {
	StopID        string
	DepartureTime time.Time
	ServiceDay    time.Time
	StopTime      model.StopTime

	pos          dayIndexPos
	windowAnchor time.Time
}

// NewStopEventAtOrigin seeks the first valid departure at or after
// startTime. ok is false if none exists within 24h of startTime.
func NewStopEventAtOrigin(idx *schedule.Index, stopID string, startTime time.Time) (StopEvent, bool) {
	return newStopEvent(idx, stopID, initialPos(idx.DeparturesAtStop(stopID), startTime), startTime)
}

// NewStopEventAfterArrival seeks the first valid departure at
// stopTime's stop, no earlier than the trip's arrival there.
func NewStopEventAfterArrival(idx *schedule.Index, stopTime model.StopTime, serviceDay time.Time) (StopEvent, bool) {
	arrival := connection.ServiceDayTime(serviceDay, stopTime.Arrival)
	sorted := idx.DeparturesAtStop(stopTime.StopID)
	return newStopEvent(idx, stopTime.StopID, initialPos(sorted, arrival), arrival)
}

// NewStopEventAfterTransfer seeks the first valid departure at the
// transfer's destination stop, no earlier than the walk's arrival.
func NewStopEventAfterTransfer(idx *schedule.Index, transfer model.Transfer, arrivalTime time.Time) (StopEvent, bool) {
	sorted := idx.DeparturesAtStop(transfer.ToStopID)
	return newStopEvent(idx, transfer.ToStopID, initialPos(sorted, arrivalTime), arrivalTime)
}

func newStopEvent(idx *schedule.Index, stopID string, pos dayIndexPos, windowAnchor time.Time) (StopEvent, bool) {
	if len(idx.DeparturesAtStop(stopID)) == 0 {
		return StopEvent{}, false
	}
	st, serviceDay, wallClock, pos, ok := seekValidDeparture(idx, stopID, pos, windowAnchor)
	if !ok {
		return StopEvent{}, false
	}
	return StopEvent{
		StopID:        stopID,
		DepartureTime: wallClock,
		ServiceDay:    serviceDay,
		StopTime:      st,
		pos:           pos,
		windowAnchor:  windowAnchor,
	}, true
}

func (e StopEvent) step(idx *schedule.Index, bestPerStop BestPerStop, bestPerTrip BestPerTrip) []Event {
	var out []Event

	newConn := bestPerStop[e.StopID].ToOpen(e.StopTime, e.ServiceDay)
	tripID := e.StopTime.TripID
	existing, seen := bestPerTrip[tripID]

	if !seen {
		bestPerTrip[tripID] = newConn
		if te, ok := NewTripEvent(idx, tripID, e.StopTime, e.ServiceDay); ok {
			out = append(out, Event{Kind: EventKindTrip, Trip: te})
		}
	} else if newConn.Quality().Better(existing.Quality()) {
		bestPerTrip[tripID] = newConn
	}

	if next, ok := newStopEvent(idx, e.StopID, advancePos(idx.DeparturesAtStop(e.StopID), e.pos), e.windowAnchor); ok {
		out = append(out, Event{Kind: EventKindStop, Stop: next})
	}

	return out
}

// TripEvent represents riding a specific trip, about to arrive at the
// next drop-off-allowed stop.
type TripEvent struct {
	TripID      string
	ServiceDay  time.Time
	ArrivalTime time.Time
	StopTime    model.StopTime

	nextIdx int
}

// NewTripEvent locates the stop-time after boarding and advances to
// the next one allowing drop-off. ok is false if none exists
// downstream of boarding.
func NewTripEvent(idx *schedule.Index, tripID string, boarding model.StopTime, serviceDay time.Time) (TripEvent, bool) {
	stopTimes := idx.StopTimesOnTrip(tripID)
	i := indexOfStopSequence(stopTimes, boarding.StopSequence)
	return tripEventFrom(stopTimes, tripID, serviceDay, i+1)
}

func tripEventFrom(stopTimes []model.StopTime, tripID string, serviceDay time.Time, from int) (TripEvent, bool) {
	for j := from; j < len(stopTimes); j++ {
		if stopTimes[j].DropOffType != model.PickupDropoffNotAvailable {
			return TripEvent{
				TripID:      tripID,
				ServiceDay:  serviceDay,
				ArrivalTime: connection.ServiceDayTime(serviceDay, stopTimes[j].Arrival),
				StopTime:    stopTimes[j],
				nextIdx:     j,
			}, true
		}
	}
	return TripEvent{}, false
}

func indexOfStopSequence(stopTimes []model.StopTime, seq int) int {
	lo, hi := 0, len(stopTimes)
	for lo < hi {
		mid := (lo + hi) / 2
		if stopTimes[mid].StopSequence < seq {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func (e TripEvent) step(idx *schedule.Index, bestPerStop BestPerStop, bestPerTrip BestPerTrip) []Event {
	var out []Event

	newConn := bestPerTrip[e.TripID].Close(e.StopTime)
	s := e.StopTime.StopID
	existing, seen := bestPerStop[s]

	if !seen {
		bestPerStop[s] = newConn
		if se, ok := NewStopEventAfterArrival(idx, e.StopTime, e.ServiceDay); ok {
			out = append(out, Event{Kind: EventKindStop, Stop: se})
		}
		out = append(out, transferEventsFrom(idx, s, newConn, e.ArrivalTime)...)
	} else if newConn.Quality().Better(existing.Quality()) {
		bestPerStop[s] = newConn
		out = append(out, transferEventsFrom(idx, s, newConn, e.ArrivalTime)...)
	}

	stopTimes := idx.StopTimesOnTrip(e.TripID)
	if next, ok := tripEventFrom(stopTimes, e.TripID, e.ServiceDay, e.nextIdx+1); ok {
		out = append(out, Event{Kind: EventKindTrip, Trip: next})
	}

	return out
}

// TransferEvent represents walking between two stops. It carries its
// seeding Connection by value: a later improvement to
// best_per_stop[from] must not retroactively change a walk already
// in flight.
type TransferEvent struct {
	Transfer       model.Transfer
	StartDeparture time.Time
	EndArrival     time.Time
	Connection     connection.Connection
}

func (e TransferEvent) step(idx *schedule.Index, bestPerStop BestPerStop) []Event {
	newConn := e.Connection.WithTransfer(e.Transfer, e.StartDeparture, e.EndArrival)
	t := e.Transfer.ToStopID
	existing, seen := bestPerStop[t]

	if !seen {
		bestPerStop[t] = newConn
		if se, ok := NewStopEventAfterTransfer(idx, e.Transfer, e.EndArrival); ok {
			return []Event{{Kind: EventKindStop, Stop: se}}
		}
		return nil
	}

	if newConn.Quality().Better(existing.Quality()) {
		bestPerStop[t] = newConn
	}
	return nil
}

func transferEventsFrom(idx *schedule.Index, fromStopID string, conn connection.Connection, atTime time.Time) []Event {
	transfers := idx.TransfersFrom(fromStopID)
	if len(transfers) == 0 {
		return nil
	}
	out := make([]Event, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, Event{Kind: EventKindTransfer, Transfer: TransferEvent{
			Transfer:       t,
			StartDeparture: atTime,
			EndArrival:     atTime.Add(time.Duration(t.TransferTime) * time.Second),
			Connection:     conn,
		}})
	}
	return out
}
