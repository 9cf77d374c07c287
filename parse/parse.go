// Package parse turns the on-disk GTFS text files into the records a
// storage.FeedWriter accepts, validating the structural invariants
// the schedule index is allowed to assume (unique ids, known foreign
// keys, legal enum ranges) and rejecting anything else as a malformed
// schedule.
package parse

import (
	"fmt"
	"io"

	"connectionsearch.dev/gtfs/config"
	"connectionsearch.dev/gtfs/storage"
)

// Options carries the subset of configuration that changes how the
// feed is parsed, as opposed to how it's later searched.
type Options struct {
	TransferMode config.TransferMode

	// TransferNodeColumn is the stops.txt column read into
	// Stop.TransferNodeID. Only consulted under TransferModeByNodeID,
	// but harmless to read unconditionally.
	TransferNodeColumn string
}

// Files holds a reader per GTFS file that ParseFeed knows about.
// Calendar, CalendarDates and Transfers are optional; at least one of
// Calendar and CalendarDates must be non-nil.
type Files struct {
	Stops         io.Reader
	Routes        io.Reader
	Trips         io.Reader
	StopTimes     io.Reader
	Calendar      io.Reader
	CalendarDates io.Reader
	Transfers     io.Reader
}

// ParseFeed reads every file in a GTFS dataset into writer, in
// dependency order (stops and routes before trips, trips before
// stop_times), validating foreign keys as it goes. It does not call
// writer.Close(); the caller owns that, since the caller also owns
// the writer's construction.
func ParseFeed(writer storage.FeedWriter, files Files, opts Options) error {
	if files.Calendar == nil && files.CalendarDates == nil {
		return fmt.Errorf("missing both calendar.txt and calendar_dates.txt")
	}
	for name, r := range map[string]io.Reader{
		"stops.txt":      files.Stops,
		"routes.txt":     files.Routes,
		"trips.txt":      files.Trips,
		"stop_times.txt": files.StopTimes,
	} {
		if r == nil {
			return fmt.Errorf("missing %s", name)
		}
	}
	if opts.TransferMode == config.TransferModeByTransfersTxt && files.Transfers == nil {
		return fmt.Errorf("transfer_mode is by_transfers_txt but transfers.txt is missing")
	}

	stops, err := ParseStops(writer, files.Stops, opts.TransferNodeColumn)
	if err != nil {
		return fmt.Errorf("parsing stops.txt: %w", err)
	}

	routes, err := ParseRoutes(writer, files.Routes)
	if err != nil {
		return fmt.Errorf("parsing routes.txt: %w", err)
	}

	services := map[string]bool{}
	if files.Calendar != nil {
		services, err = ParseCalendar(writer, files.Calendar)
		if err != nil {
			return fmt.Errorf("parsing calendar.txt: %w", err)
		}
	}
	if files.CalendarDates != nil {
		cdServices, err := ParseCalendarDates(writer, files.CalendarDates)
		if err != nil {
			return fmt.Errorf("parsing calendar_dates.txt: %w", err)
		}
		for serviceID := range cdServices {
			services[serviceID] = true
		}
	}

	if err := writer.BeginTrips(); err != nil {
		return fmt.Errorf("beginning trips: %w", err)
	}
	trips, err := ParseTrips(writer, files.Trips, routes, services)
	if err != nil {
		return fmt.Errorf("parsing trips.txt: %w", err)
	}
	if err := writer.EndTrips(); err != nil {
		return fmt.Errorf("ending trips: %w", err)
	}

	if err := writer.BeginStopTimes(); err != nil {
		return fmt.Errorf("beginning stop_times: %w", err)
	}
	if err := ParseStopTimes(writer, files.StopTimes, trips, stops); err != nil {
		return fmt.Errorf("parsing stop_times.txt: %w", err)
	}
	if err := writer.EndStopTimes(); err != nil {
		return fmt.Errorf("ending stop_times: %w", err)
	}

	if opts.TransferMode == config.TransferModeByTransfersTxt {
		if err := ParseTransfers(writer, files.Transfers); err != nil {
			return fmt.Errorf("parsing transfers.txt: %w", err)
		}
	}

	return nil
}
