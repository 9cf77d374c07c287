package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectionsearch.dev/gtfs/config"
	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/schedule"
	"connectionsearch.dev/gtfs/storage"
)

func mustIndex(t *testing.T, f *storage.MemoryFeed, cfg config.Config) *schedule.Index {
	t.Helper()
	idx, err := schedule.Build(f, cfg)
	require.NoError(t, err)
	return idx
}

// A single weekday-active trip a -> b -> c.
func twoLegFeed(serviceWeekday time.Weekday) *storage.MemoryFeed {
	f := storage.NewMemoryFeed()
	f.WriteStop(model.Stop{ID: "a"})
	f.WriteStop(model.Stop{ID: "b"})
	f.WriteStop(model.Stop{ID: "c"})
	f.WriteRoute(model.Route{ID: "r1", ShortName: "1", Type: model.RouteTypeBus})
	f.WriteTrip(model.Trip{ID: "t1", RouteID: "r1", ServiceID: "svc"})
	f.WriteCalendar(model.Calendar{
		ServiceID: "svc",
		StartDate: "20260101",
		EndDate:   "20261231",
		Weekday:   1 << serviceWeekday,
	})
	f.WriteStopTime(model.StopTime{TripID: "t1", StopID: "a", StopSequence: 1, Arrival: 8 * 3600, Departure: 8 * 3600})
	f.WriteStopTime(model.StopTime{TripID: "t1", StopID: "b", StopSequence: 2, Arrival: 8*3600 + 600, Departure: 8*3600 + 600})
	f.WriteStopTime(model.StopTime{TripID: "t1", StopID: "c", StopSequence: 3, Arrival: 8*3600 + 1200, Departure: 8*3600 + 1200})
	return f
}

// S1: origin equals destination, answered with the empty connection
// regardless of what the schedule contains.
func TestSearchSameOriginAndDestination(t *testing.T) {
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC) // a Monday
	idx := mustIndex(t, twoLegFeed(time.Monday), config.Default())

	result := Search(idx, SearchParams{
		OriginStopIDs:      []string{"a"},
		DestinationStopIDs: []string{"a"},
		StartTime:          start,
	}, 24*time.Hour)

	require.NotNil(t, result.Connection)
	assert.Empty(t, result.Connection.Segments)
}

// S2: the only trip's service runs on Mondays only, and the 24h window
// from a Tuesday-morning start contains no Monday, so no connection
// exists.
func TestSearchNoActiveCalendarFindsNothing(t *testing.T) {
	f := twoLegFeed(time.Monday)
	start := time.Date(2026, 1, 6, 7, 0, 0, 0, time.UTC) // a Tuesday
	idx := mustIndex(t, f, config.Default())

	result := Search(idx, SearchParams{
		OriginStopIDs:      []string{"a"},
		DestinationStopIDs: []string{"c"},
		StartTime:          start,
	}, 24*time.Hour)

	assert.Nil(t, result.Connection)
}

// S3: a trip departing past 24:00:00 is anchored to the calendar day
// its offset implies, not the wall-clock day the sweep is on.
func TestSearchCrossMidnightTripUsesOriginalServiceDay(t *testing.T) {
	friday := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for friday.Weekday() != time.Friday {
		friday = friday.AddDate(0, 0, 1)
	}
	saturday := friday.AddDate(0, 0, 1)

	f := storage.NewMemoryFeed()
	f.WriteStop(model.Stop{ID: "a"})
	f.WriteStop(model.Stop{ID: "b"})
	f.WriteRoute(model.Route{ID: "r1", ShortName: "N", Type: model.RouteTypeBus})
	f.WriteTrip(model.Trip{ID: "night", RouteID: "r1", ServiceID: "fri-night"})
	f.WriteCalendar(model.Calendar{
		ServiceID: "fri-night",
		StartDate: "20260101",
		EndDate:   "20261231",
		Weekday:   1 << time.Friday,
	})
	f.WriteStopTime(model.StopTime{TripID: "night", StopID: "a", StopSequence: 1, Arrival: 25 * 3600, Departure: 25 * 3600})
	f.WriteStopTime(model.StopTime{TripID: "night", StopID: "b", StopSequence: 2, Arrival: 25*3600 + 600, Departure: 25*3600 + 600})

	idx := mustIndex(t, f, config.Default())

	result := Search(idx, SearchParams{
		OriginStopIDs:      []string{"a"},
		DestinationStopIDs: []string{"b"},
		StartTime:          saturday,
	}, 24*time.Hour)

	require.NotNil(t, result.Connection)
	require.NotNil(t, result.Connection.FirstDeparture())
	assert.Equal(t, saturday.Add(1*time.Hour), *result.Connection.FirstDeparture())
}

// S4/S5: two trips meeting at a shared transfer node, b1 and b2,
// require a walking transfer to connect. Disabled under
// TransferModeNone, succeeds under TransferModeByNodeID.
func nodeTransferFeed() *storage.MemoryFeed {
	f := storage.NewMemoryFeed()
	f.WriteStop(model.Stop{ID: "a"})
	f.WriteStop(model.Stop{ID: "b1", TransferNodeID: "node-1"})
	f.WriteStop(model.Stop{ID: "b2", TransferNodeID: "node-1"})
	f.WriteStop(model.Stop{ID: "c"})
	f.WriteRoute(model.Route{ID: "r1", ShortName: "1", Type: model.RouteTypeBus})
	f.WriteRoute(model.Route{ID: "r2", ShortName: "2", Type: model.RouteTypeBus})
	f.WriteTrip(model.Trip{ID: "t1", RouteID: "r1", ServiceID: "svc"})
	f.WriteTrip(model.Trip{ID: "t2", RouteID: "r2", ServiceID: "svc"})
	f.WriteCalendar(model.Calendar{
		ServiceID: "svc",
		StartDate: "20260101",
		EndDate:   "20261231",
		Weekday:   1 << time.Monday,
	})
	f.WriteStopTime(model.StopTime{TripID: "t1", StopID: "a", StopSequence: 1, Arrival: 8 * 3600, Departure: 8 * 3600})
	f.WriteStopTime(model.StopTime{TripID: "t1", StopID: "b1", StopSequence: 2, Arrival: 8*3600 + 600, Departure: 8*3600 + 600})
	f.WriteStopTime(model.StopTime{TripID: "t2", StopID: "b2", StopSequence: 1, Arrival: 8*3600 + 900, Departure: 8*3600 + 900})
	f.WriteStopTime(model.StopTime{TripID: "t2", StopID: "c", StopSequence: 2, Arrival: 8*3600 + 1500, Departure: 8*3600 + 1500})
	return f
}

func TestSearchTransferDisabledFindsNothing(t *testing.T) {
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC) // a Monday
	cfg := config.Default()
	cfg.TransferMode = config.TransferModeNone

	idx := mustIndex(t, nodeTransferFeed(), cfg)

	result := Search(idx, SearchParams{
		OriginStopIDs:      []string{"a"},
		DestinationStopIDs: []string{"c"},
		StartTime:          start,
	}, 24*time.Hour)

	assert.Nil(t, result.Connection)
}

func TestSearchTransferByNodeIDSucceeds(t *testing.T) {
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC) // a Monday
	cfg := config.Default()
	cfg.TransferMode = config.TransferModeByNodeID
	cfg.MinTransferTimeSeconds = 60

	idx := mustIndex(t, nodeTransferFeed(), cfg)

	result := Search(idx, SearchParams{
		OriginStopIDs:      []string{"a"},
		DestinationStopIDs: []string{"c"},
		StartTime:          start,
	}, 24*time.Hour)

	require.NotNil(t, result.Connection)
	assert.Equal(t, 1, result.Connection.TransferCount())
	require.NotNil(t, result.Connection.LastArrival())
	serviceDayMidnight := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, serviceDayMidnight.Add(8*time.Hour+1500*time.Second), *result.Connection.LastArrival())
}

// S6: a connection exists, but only outside the search horizon.
func TestSearchHorizonExceeded(t *testing.T) {
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC) // a Monday, trip departs 8:00
	idx := mustIndex(t, twoLegFeed(time.Monday), config.Default())

	result := Search(idx, SearchParams{
		OriginStopIDs:      []string{"a"},
		DestinationStopIDs: []string{"c"},
		StartTime:          start,
	}, 30*time.Minute)

	assert.Nil(t, result.Connection)
}

func TestSearchNoOriginsOrDestinationsReturnsNothing(t *testing.T) {
	idx := mustIndex(t, twoLegFeed(time.Monday), config.Default())
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)

	assert.Nil(t, Search(idx, SearchParams{DestinationStopIDs: []string{"c"}, StartTime: start}, time.Hour).Connection)
	assert.Nil(t, Search(idx, SearchParams{OriginStopIDs: []string{"a"}, StartTime: start}, time.Hour).Connection)
}

func TestSearchDirectTripNoTransfers(t *testing.T) {
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC) // a Monday
	idx := mustIndex(t, twoLegFeed(time.Monday), config.Default())

	result := Search(idx, SearchParams{
		OriginStopIDs:      []string{"a"},
		DestinationStopIDs: []string{"c"},
		StartTime:          start,
	}, 24*time.Hour)

	require.NotNil(t, result.Connection)
	assert.Equal(t, 0, result.Connection.TransferCount())
	require.NotNil(t, result.Connection.FirstDeparture())
	serviceDayMidnight := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, serviceDayMidnight.Add(8*time.Hour), *result.Connection.FirstDeparture())
}
