package parse

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

type CalendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

// ParseCalendarDates reads calendar_dates.txt, returning the set of
// service ids it mentions (a service may appear here without ever
// appearing in calendar.txt, e.g. a holiday-only service).
func ParseCalendarDates(writer storage.FeedWriter, data io.Reader) (map[string]bool, error) {
	calendarDateCsv := []*CalendarDateCSV{}
	if err := gocsv.Unmarshal(data, &calendarDateCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling calendar_dates csv: %w", err)
	}

	knownServices := map[string]bool{}
	seen := map[string]bool{}

	for _, cd := range calendarDateCsv {
		if cd.ServiceID == "" {
			return nil, fmt.Errorf("empty service_id")
		}
		if cd.ExceptionType != 1 && cd.ExceptionType != 2 {
			return nil, fmt.Errorf("service_id '%s' has invalid exception_type '%d'", cd.ServiceID, cd.ExceptionType)
		}
		if _, err := time.ParseInLocation("20060102", cd.Date, time.UTC); err != nil {
			return nil, fmt.Errorf("service_id '%s' has invalid date '%s': %w", cd.ServiceID, cd.Date, err)
		}

		key := cd.ServiceID + "/" + cd.Date
		if seen[key] {
			return nil, fmt.Errorf("duplicate service_id/date: '%s'", key)
		}
		seen[key] = true
		knownServices[cd.ServiceID] = true

		err := writer.WriteCalendarException(model.CalendarException{
			ServiceID: cd.ServiceID,
			Date:      cd.Date,
			Available: cd.ExceptionType == 1,
		})
		if err != nil {
			return nil, fmt.Errorf("writing calendar exception: %w", err)
		}
	}

	return knownServices, nil
}
