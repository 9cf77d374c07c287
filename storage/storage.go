// Package storage holds the write-once/read-many feed backing a
// schedule index: a FeedWriter ingests the rows produced by the
// parser, a FeedReader replays them back out so the schedule index
// (package schedule) can build its lookups and groupings. Three
// backends are provided — an in-memory one, a SQLite-backed one, and
// a Postgres-backed one — so that a feed too large to comfortably
// hold twice in memory (once as rows, once as the index built from
// them) can be staged on disk, or on a shared database server,
// between parse and index-build.
package storage

import (
	"connectionsearch.dev/gtfs/model"
)

// FeedWriter receives GTFS records for a single feed, in file order.
//
// As stop_times.txt tends to be very large, BeginStopTimes() and
// EndStopTimes() are called before and after all calls to
// WriteStopTime(), allowing transactions/batching/whathaveyou.
type FeedWriter interface {
	WriteStop(stop model.Stop) error
	WriteRoute(route model.Route) error
	BeginTrips() error
	WriteTrip(trip model.Trip) error
	EndTrips() error
	WriteCalendar(cal model.Calendar) error
	WriteCalendarException(exc model.CalendarException) error
	WriteTransfer(t model.Transfer) error
	BeginStopTimes() error
	WriteStopTime(stopTime model.StopTime) error
	EndStopTimes() error
	Close() error
}

// FeedReader replays every record written through a FeedWriter. The
// schedule index calls each record method at most once, at build time;
// it reads Transfers only under by_transfers_txt, and never calls
// Close.
type FeedReader interface {
	Stops() ([]model.Stop, error)
	Routes() ([]model.Route, error)
	Trips() ([]model.Trip, error)
	StopTimes() ([]model.StopTime, error)
	Calendars() ([]model.Calendar, error)
	CalendarExceptions() ([]model.CalendarException, error)
	Transfers() ([]model.Transfer, error)
	Close() error
}
