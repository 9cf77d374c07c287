// Package connection holds the immutable-by-convention value types a
// search builds up one step at a time: Connection and OpenConnection,
// made of TripSegments and TransferSegments, plus the Quality total
// order used both to prune the search's dominance tables and to pick
// a winner among reached destinations.
//
// Every constructor here is pure: it returns a new value rather than
// mutating its receiver, so a Connection snapshotted into an event
// stays correct even after the dominance tables it was built from
// keep changing.
package connection

import (
	"time"

	"connectionsearch.dev/gtfs/model"
)

// ServiceDayTime resolves a stop-time offset (possibly ≥ 24h) against
// the service day it's anchored to, yielding the wall-clock instant.
func ServiceDayTime(serviceDay time.Time, offsetSeconds int) time.Time {
	return serviceDay.Add(time.Duration(offsetSeconds) * time.Second)
}

// SegmentKind discriminates the two kinds of Segment. A Segment is a
// tagged union, not an interface: the search engine never needs
// dynamic dispatch on a segment, only to read whichever field its
// Kind names.
type SegmentKind int

const (
	SegmentKindTrip SegmentKind = iota
	SegmentKindTransfer
)

// TripSegment is a single ride: board at StartStopTime, alight at
// EndStopTime, both stop-times of the same trip. ServiceDay anchors
// both offsets to a calendar date; it need not be the wall-clock date
// the ride happened on, since GTFS offsets can exceed 24h.
type TripSegment struct {
	StartStopTime model.StopTime
	EndStopTime   model.StopTime
	ServiceDay    time.Time
}

// OpenTripSegment is a TripSegment whose alighting stop-time is not
// yet known: the rider has boarded but the search hasn't decided
// where they get off.
type OpenTripSegment struct {
	StartStopTime model.StopTime
	ServiceDay    time.Time
}

// TransferSegment is a walk between two stops.
type TransferSegment struct {
	Transfer       model.Transfer
	StartDeparture time.Time
	EndArrival     time.Time
}

// Segment is one leg of a Connection.
type Segment struct {
	Kind     SegmentKind
	Trip     TripSegment
	Transfer TransferSegment
}

// Quality orders Connections (and OpenConnections). A nil
// FirstDeparture — "you are already here" — is
// better than any other value. Otherwise a later FirstDeparture is
// better, and ties favor fewer transfers.
type Quality struct {
	FirstDeparture *time.Time
	TransferCount  int
}

// Compare returns a positive number if a is a better quality than b,
// a negative number if b is better, and 0 if they are equal. The
// search compares qualities for the same stop (or same trip, for
// OpenConnections) when pruning, and across reached destinations when
// picking the final result.
func Compare(a, b Quality) int {
	switch {
	case a.FirstDeparture == nil && b.FirstDeparture == nil:
		return 0
	case a.FirstDeparture == nil:
		return 1
	case b.FirstDeparture == nil:
		return -1
	case a.FirstDeparture.After(*b.FirstDeparture):
		return 1
	case a.FirstDeparture.Before(*b.FirstDeparture):
		return -1
	case a.TransferCount < b.TransferCount:
		return 1
	case a.TransferCount > b.TransferCount:
		return -1
	default:
		return 0
	}
}

// Better reports whether q is a strictly better quality than other.
func (q Quality) Better(other Quality) bool {
	return Compare(q, other) > 0
}

// Connection is a sequence of trip and transfer segments, starting
// and ending at a stop.
type Connection struct {
	Segments []Segment
}

// Empty returns the zero-length Connection representing "already at
// the destination". Its Quality beats every non-empty Connection.
func Empty() Connection {
	return Connection{}
}

// WithTransfer appends a TransferSegment, returning a new Connection.
func (c Connection) WithTransfer(t model.Transfer, startDeparture, endArrival time.Time) Connection {
	segs := make([]Segment, len(c.Segments), len(c.Segments)+1)
	copy(segs, c.Segments)
	segs = append(segs, Segment{
		Kind: SegmentKindTransfer,
		Transfer: TransferSegment{
			Transfer:       t,
			StartDeparture: startDeparture,
			EndArrival:     endArrival,
		},
	})
	return Connection{Segments: segs}
}

// ToOpen appends an OpenTripSegment for the given departure,
// producing an OpenConnection that still needs a Close.
func (c Connection) ToOpen(departure model.StopTime, serviceDay time.Time) OpenConnection {
	segs := make([]Segment, len(c.Segments))
	copy(segs, c.Segments)
	return OpenConnection{
		Segments: segs,
		Final:    OpenTripSegment{StartStopTime: departure, ServiceDay: serviceDay},
	}
}

// FirstDeparture is nil for the empty Connection, and otherwise the
// wall-clock instant the first segment departs.
func (c Connection) FirstDeparture() *time.Time {
	if len(c.Segments) == 0 {
		return nil
	}
	first := c.Segments[0]
	var t time.Time
	if first.Kind == SegmentKindTrip {
		t = ServiceDayTime(first.Trip.ServiceDay, first.Trip.StartStopTime.Departure)
	} else {
		t = first.Transfer.StartDeparture
	}
	return &t
}

// LastArrival is nil for the empty Connection, and otherwise the
// wall-clock instant the last segment arrives or finishes walking.
func (c Connection) LastArrival() *time.Time {
	if len(c.Segments) == 0 {
		return nil
	}
	last := c.Segments[len(c.Segments)-1]
	var t time.Time
	if last.Kind == SegmentKindTrip {
		t = ServiceDayTime(last.Trip.ServiceDay, last.Trip.EndStopTime.Arrival)
	} else {
		t = last.Transfer.EndArrival
	}
	return &t
}

// TransferCount is max(number of TripSegments - 1, 0).
func (c Connection) TransferCount() int {
	trips := 0
	for _, s := range c.Segments {
		if s.Kind == SegmentKindTrip {
			trips++
		}
	}
	if trips == 0 {
		return 0
	}
	return trips - 1
}

// Quality bundles FirstDeparture and TransferCount for dominance
// comparisons.
func (c Connection) Quality() Quality {
	return Quality{FirstDeparture: c.FirstDeparture(), TransferCount: c.TransferCount()}
}

// OpenConnection is a Connection whose last trip has a fixed
// departure but no fixed arrival yet.
type OpenConnection struct {
	Segments []Segment
	Final    OpenTripSegment
}

// Close replaces the OpenTripSegment with a closed TripSegment ending
// at arrival, yielding a Connection.
func (o OpenConnection) Close(arrival model.StopTime) Connection {
	segs := make([]Segment, len(o.Segments), len(o.Segments)+1)
	copy(segs, o.Segments)
	segs = append(segs, Segment{
		Kind: SegmentKindTrip,
		Trip: TripSegment{
			StartStopTime: o.Final.StartStopTime,
			EndStopTime:   arrival,
			ServiceDay:    o.Final.ServiceDay,
		},
	})
	return Connection{Segments: segs}
}

// FirstDeparture is always defined for an OpenConnection: either the
// first prior segment's departure, or (if there is none) the open
// trip's own departure.
func (o OpenConnection) FirstDeparture() time.Time {
	if len(o.Segments) == 0 {
		return ServiceDayTime(o.Final.ServiceDay, o.Final.StartStopTime.Departure)
	}
	first := o.Segments[0]
	if first.Kind == SegmentKindTrip {
		return ServiceDayTime(first.Trip.ServiceDay, first.Trip.StartStopTime.Departure)
	}
	return first.Transfer.StartDeparture
}

// TransferCount is the number of TripSegments already closed; the
// open trip itself isn't counted until Close makes it the last
// TripSegment.
func (o OpenConnection) TransferCount() int {
	trips := 0
	for _, s := range o.Segments {
		if s.Kind == SegmentKindTrip {
			trips++
		}
	}
	return trips
}

// Quality bundles FirstDeparture and TransferCount for dominance
// comparisons.
func (o OpenConnection) Quality() Quality {
	fd := o.FirstDeparture()
	return Quality{FirstDeparture: &fd, TransferCount: o.TransferCount()}
}
