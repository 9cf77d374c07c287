package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

func TestParseCalendar(t *testing.T) {
	for _, tc := range []struct {
		name      string
		content   string
		calendars []model.Calendar
		services  map[string]bool
		err       bool
	}{
		{
			"weekdays_only",
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
				"weekday,1,1,1,1,1,0,0,20260101,20261231",
			[]model.Calendar{{
				ServiceID: "weekday",
				StartDate: "20260101",
				EndDate:   "20261231",
				Weekday:   1<<1 | 1<<2 | 1<<3 | 1<<4 | 1<<5,
			}},
			map[string]bool{"weekday": true},
			false,
		},
		{
			"empty service_id",
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
				",1,0,0,0,0,0,0,20260101,20261231",
			nil, nil, true,
		},
		{
			"repeated service_id",
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
				"weekday,1,0,0,0,0,0,0,20260101,20261231\n" +
				"weekday,0,1,0,0,0,0,0,20260101,20261231",
			nil, nil, true,
		},
		{
			"invalid weekday value",
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
				"weekday,2,0,0,0,0,0,0,20260101,20261231",
			nil, nil, true,
		},
		{
			"invalid start_date",
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
				"weekday,1,0,0,0,0,0,0,not-a-date,20261231",
			nil, nil, true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			writer := storage.NewMemoryFeed()

			services, err := ParseCalendar(writer, bytes.NewBufferString(tc.content))
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.services, services)

			calendars, err := writer.Calendars()
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.calendars, calendars)
		})
	}
}
