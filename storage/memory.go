package storage

import (
	"connectionsearch.dev/gtfs/model"
)

// MemoryFeed is an in-memory FeedWriter/FeedReader pair for a single
// feed. It is the default backend: cheap to construct, nothing to
// clean up, good for tests and for datasets that comfortably fit in
// memory twice over (once as rows, once as the schedule index built
// from them).
type MemoryFeed struct {
	stops               []model.Stop
	routes              []model.Route
	trips               []model.Trip
	stopTimes           []model.StopTime
	calendars           []model.Calendar
	calendarExceptions  []model.CalendarException
	transfers           []model.Transfer
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{}
}

func (f *MemoryFeed) WriteStop(stop model.Stop) error {
	f.stops = append(f.stops, stop)
	return nil
}

func (f *MemoryFeed) WriteRoute(route model.Route) error {
	f.routes = append(f.routes, route)
	return nil
}

func (f *MemoryFeed) BeginTrips() error { return nil }

func (f *MemoryFeed) WriteTrip(trip model.Trip) error {
	f.trips = append(f.trips, trip)
	return nil
}

func (f *MemoryFeed) EndTrips() error { return nil }

func (f *MemoryFeed) WriteCalendar(cal model.Calendar) error {
	f.calendars = append(f.calendars, cal)
	return nil
}

func (f *MemoryFeed) WriteCalendarException(exc model.CalendarException) error {
	f.calendarExceptions = append(f.calendarExceptions, exc)
	return nil
}

func (f *MemoryFeed) WriteTransfer(t model.Transfer) error {
	f.transfers = append(f.transfers, t)
	return nil
}

func (f *MemoryFeed) BeginStopTimes() error { return nil }

func (f *MemoryFeed) WriteStopTime(st model.StopTime) error {
	f.stopTimes = append(f.stopTimes, st)
	return nil
}

func (f *MemoryFeed) EndStopTimes() error { return nil }

func (f *MemoryFeed) Close() error { return nil }

func (f *MemoryFeed) Stops() ([]model.Stop, error)     { return f.stops, nil }
func (f *MemoryFeed) Routes() ([]model.Route, error)   { return f.routes, nil }
func (f *MemoryFeed) Trips() ([]model.Trip, error)     { return f.trips, nil }
func (f *MemoryFeed) StopTimes() ([]model.StopTime, error) {
	return f.stopTimes, nil
}
func (f *MemoryFeed) Calendars() ([]model.Calendar, error) {
	return f.calendars, nil
}
func (f *MemoryFeed) CalendarExceptions() ([]model.CalendarException, error) {
	return f.calendarExceptions, nil
}
func (f *MemoryFeed) Transfers() ([]model.Transfer, error) {
	return f.transfers, nil
}
