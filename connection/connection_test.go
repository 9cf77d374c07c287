package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"connectionsearch.dev/gtfs/model"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return d
}

func TestQualityCompare(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		name string
		a, b Quality
		want int
	}{
		{"both_empty_are_equal", Quality{}, Quality{}, 0},
		{"empty_beats_nonempty", Quality{}, Quality{FirstDeparture: &t1}, 1},
		{"nonempty_loses_to_empty", Quality{FirstDeparture: &t1}, Quality{}, -1},
		{"later_departure_wins", Quality{FirstDeparture: &t2}, Quality{FirstDeparture: &t1}, 1},
		{"earlier_departure_loses", Quality{FirstDeparture: &t1}, Quality{FirstDeparture: &t2}, -1},
		{
			"tie_favors_fewer_transfers",
			Quality{FirstDeparture: &t1, TransferCount: 0},
			Quality{FirstDeparture: &t1, TransferCount: 1},
			1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compare(tc.a, tc.b))
			assert.Equal(t, tc.want > 0, tc.a.Better(tc.b))
		})
	}
}

func TestEmptyConnection(t *testing.T) {
	c := Empty()
	assert.Nil(t, c.FirstDeparture())
	assert.Nil(t, c.LastArrival())
	assert.Equal(t, 0, c.TransferCount())
	assert.Nil(t, c.Quality().FirstDeparture)
}

func TestConnectionOneTripNoTransfers(t *testing.T) {
	d := day(t, "2026-01-05")
	boarding := model.StopTime{TripID: "t1", StopID: "a", Departure: 8 * 3600}
	alighting := model.StopTime{TripID: "t1", StopID: "b", Arrival: 8*3600 + 600}

	open := Empty().ToOpen(boarding, d)
	conn := open.Close(alighting)

	require := assert.New(t)
	require.NotNil(conn.FirstDeparture())
	require.Equal(d.Add(8*time.Hour), *conn.FirstDeparture())
	require.NotNil(conn.LastArrival())
	require.Equal(d.Add(8*time.Hour+10*time.Minute), *conn.LastArrival())
	require.Equal(0, conn.TransferCount())
}

func TestConnectionWithTransferBetweenTwoTrips(t *testing.T) {
	d := day(t, "2026-01-05")

	boarding1 := model.StopTime{TripID: "t1", StopID: "a", Departure: 8 * 3600}
	alighting1 := model.StopTime{TripID: "t1", StopID: "b", Arrival: 8*3600 + 600}
	conn := Empty().ToOpen(boarding1, d).Close(alighting1)

	transferStart := d.Add(8*time.Hour + 10*time.Minute)
	transferEnd := transferStart.Add(3 * time.Minute)
	conn = conn.WithTransfer(model.Transfer{FromStopID: "b", ToStopID: "b2", TransferTime: 180}, transferStart, transferEnd)

	boarding2 := model.StopTime{TripID: "t2", StopID: "b2", Departure: 8*3600 + 900}
	alighting2 := model.StopTime{TripID: "t2", StopID: "c", Arrival: 9 * 3600}
	conn = conn.ToOpen(boarding2, d).Close(alighting2)

	assert.Equal(t, 1, conn.TransferCount())
	assert.Equal(t, d.Add(8*time.Hour), *conn.FirstDeparture())
	assert.Equal(t, d.Add(9*time.Hour), *conn.LastArrival())
}

func TestOpenConnectionTransferCountExcludesFinal(t *testing.T) {
	d := day(t, "2026-01-05")
	boarding1 := model.StopTime{TripID: "t1", StopID: "a", Departure: 8 * 3600}
	alighting1 := model.StopTime{TripID: "t1", StopID: "b", Arrival: 8*3600 + 600}
	conn := Empty().ToOpen(boarding1, d).Close(alighting1)

	boarding2 := model.StopTime{TripID: "t2", StopID: "b", Departure: 8*3600 + 900}
	open := conn.ToOpen(boarding2, d)

	assert.Equal(t, 1, open.TransferCount())
	assert.Equal(t, d.Add(8*time.Hour), open.FirstDeparture())
}
