package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

func TestParseStopTimeSeconds(t *testing.T) {
	for _, tc := range []struct {
		in      string
		seconds int
		err     bool
	}{
		{"00:00:00", 0, false},
		{"08:30:00", 8*3600 + 30*60, false},
		{"25:30:00", 25*3600 + 30*60, false},
		{"8:3:0", 8*3600 + 3*60, false},
		{"not:a:time", 0, true},
		{"08:30", 0, true},
		{"08:60:00", 0, true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseStopTimeSeconds(tc.in)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.seconds, got)
		})
	}
}

func TestParseStopTimes(t *testing.T) {
	trips := map[string]bool{"t1": true}
	stops := map[string]bool{"a": true, "b": true}

	for _, tc := range []struct {
		name      string
		content   string
		stopTimes []model.StopTime
		err       bool
	}{
		{
			"two_stops_sorted_out_of_order_input",
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
				"t1,b,2,08:10:00,08:10:00\n" +
				"t1,a,1,08:00:00,08:00:00",
			[]model.StopTime{
				{TripID: "t1", StopID: "a", StopSequence: 1, Arrival: 8 * 3600, Departure: 8 * 3600},
				{TripID: "t1", StopID: "b", StopSequence: 2, Arrival: 8*3600 + 600, Departure: 8*3600 + 600},
			},
			false,
		},
		{
			"unknown trip_id",
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time\nnope,a,1,08:00:00,08:00:00",
			nil, true,
		},
		{
			"unknown stop_id",
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time\nt1,nope,1,08:00:00,08:00:00",
			nil, true,
		},
		{
			"duplicate stop_sequence",
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
				"t1,a,1,08:00:00,08:00:00\nt1,b,1,08:10:00,08:10:00",
			nil, true,
		},
		{
			"departure before arrival",
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time\nt1,a,1,08:10:00,08:00:00",
			nil, true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			writer := storage.NewMemoryFeed()

			err := ParseStopTimes(writer, bytes.NewBufferString(tc.content), trips, stops)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			got, err := writer.StopTimes()
			require.NoError(t, err)
			assert.Equal(t, tc.stopTimes, got)
		})
	}
}
