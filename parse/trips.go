package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

type TripCSV struct {
	ID        string `csv:"trip_id"`
	RouteID   string `csv:"route_id"`
	ServiceID string `csv:"service_id"`
	ShortName string `csv:"trip_short_name"`
}

func ParseTrips(
	writer storage.FeedWriter,
	data io.Reader,
	routes map[string]bool,
	services map[string]bool,
) (map[string]bool, error) {
	tripCsv := []*TripCSV{}
	if err := gocsv.Unmarshal(data, &tripCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling trips csv: %w", err)
	}

	trips := map[string]bool{}
	for _, t := range tripCsv {
		if t.ID == "" {
			return nil, fmt.Errorf("empty trip_id")
		}
		if trips[t.ID] {
			return nil, fmt.Errorf("repeated trip_id '%s'", t.ID)
		}
		trips[t.ID] = true

		if t.RouteID == "" {
			return nil, fmt.Errorf("empty route_id for trip_id '%s'", t.ID)
		}
		if !routes[t.RouteID] {
			return nil, fmt.Errorf("trip_id '%s' references unknown route_id '%s'", t.ID, t.RouteID)
		}
		if !services[t.ServiceID] {
			return nil, fmt.Errorf("trip_id '%s' references unknown service_id '%s'", t.ID, t.ServiceID)
		}

		err := writer.WriteTrip(model.Trip{
			ID:        t.ID,
			RouteID:   t.RouteID,
			ServiceID: t.ServiceID,
			ShortName: t.ShortName,
		})
		if err != nil {
			return nil, fmt.Errorf("writing trip: %w", err)
		}
	}

	return trips, nil
}
