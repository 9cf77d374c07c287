package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

func TestParseTrips(t *testing.T) {
	routes := map[string]bool{"r1": true}
	services := map[string]bool{"weekday": true}

	for _, tc := range []struct {
		name    string
		content string
		trips   []model.Trip
		err     bool
	}{
		{
			"minimal",
			"trip_id,route_id,service_id\nt1,r1,weekday",
			[]model.Trip{{ID: "t1", RouteID: "r1", ServiceID: "weekday"}},
			false,
		},
		{
			"with_short_name",
			"trip_id,route_id,service_id,trip_short_name\nt1,r1,weekday,Express",
			[]model.Trip{{ID: "t1", RouteID: "r1", ServiceID: "weekday", ShortName: "Express"}},
			false,
		},
		{
			"empty trip_id",
			"trip_id,route_id,service_id\n,r1,weekday",
			nil,
			true,
		},
		{
			"repeated trip_id",
			"trip_id,route_id,service_id\nt1,r1,weekday\nt1,r1,weekday",
			nil,
			true,
		},
		{
			"unknown route_id",
			"trip_id,route_id,service_id\nt1,nope,weekday",
			nil,
			true,
		},
		{
			"unknown service_id",
			"trip_id,route_id,service_id\nt1,r1,nope",
			nil,
			true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			writer := storage.NewMemoryFeed()

			_, err := ParseTrips(writer, bytes.NewBufferString(tc.content), routes, services)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			trips, err := writer.Trips()
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.trips, trips)
		})
	}
}
