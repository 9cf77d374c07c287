package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectionsearch.dev/gtfs/config"
	"connectionsearch.dev/gtfs/storage"
)

func minimalFiles() Files {
	return Files{
		Stops:     strings.NewReader("stop_id,stop_name,location_type,parent_station\na,A,0,\nb,B,0,"),
		Routes:    strings.NewReader("route_id,route_short_name,route_type\nr1,1,3"),
		Trips:     strings.NewReader("trip_id,route_id,service_id\nt1,r1,weekday"),
		StopTimes: strings.NewReader("trip_id,stop_id,stop_sequence,arrival_time,departure_time\nt1,a,1,08:00:00,08:00:00\nt1,b,2,08:10:00,08:10:00"),
		Calendar: strings.NewReader("service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"weekday,1,1,1,1,1,0,0,20260101,20261231"),
	}
}

func TestParseFeed(t *testing.T) {
	t.Run("minimal_valid_feed", func(t *testing.T) {
		writer := storage.NewMemoryFeed()
		err := ParseFeed(writer, minimalFiles(), Options{TransferMode: config.TransferModeNone})
		require.NoError(t, err)

		stops, err := writer.Stops()
		require.NoError(t, err)
		assert.Len(t, stops, 2)

		stopTimes, err := writer.StopTimes()
		require.NoError(t, err)
		assert.Len(t, stopTimes, 2)
	})

	t.Run("missing_stops", func(t *testing.T) {
		files := minimalFiles()
		files.Stops = nil
		err := ParseFeed(storage.NewMemoryFeed(), files, Options{TransferMode: config.TransferModeNone})
		assert.Error(t, err)
	})

	t.Run("missing_both_calendar_files", func(t *testing.T) {
		files := minimalFiles()
		files.Calendar = nil
		err := ParseFeed(storage.NewMemoryFeed(), files, Options{TransferMode: config.TransferModeNone})
		assert.Error(t, err)
	})

	t.Run("calendar_dates_only_is_sufficient", func(t *testing.T) {
		files := minimalFiles()
		files.Calendar = nil
		files.CalendarDates = strings.NewReader("service_id,date,exception_type\nweekday,20260105,1")
		err := ParseFeed(storage.NewMemoryFeed(), files, Options{TransferMode: config.TransferModeNone})
		require.NoError(t, err)
	})

	t.Run("by_transfers_txt_requires_transfers_file", func(t *testing.T) {
		err := ParseFeed(storage.NewMemoryFeed(), minimalFiles(), Options{TransferMode: config.TransferModeByTransfersTxt})
		assert.Error(t, err)
	})

	t.Run("by_transfers_txt_parses_transfers", func(t *testing.T) {
		files := minimalFiles()
		files.Transfers = strings.NewReader("from_stop_id,to_stop_id,transfer_type,min_transfer_time\na,b,0,90")
		writer := storage.NewMemoryFeed()
		err := ParseFeed(writer, files, Options{TransferMode: config.TransferModeByTransfersTxt})
		require.NoError(t, err)

		transfers, err := writer.Transfers()
		require.NoError(t, err)
		assert.Len(t, transfers, 1)
	})
}
