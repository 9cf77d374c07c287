// Package schedule builds and serves the read-only, in-memory model
// the search engine queries: stops, routes, trips and stop-times
// indexed for O(1) lookup, calendars reduced to a memoized
// runs_on_day predicate, and transfers enumerated per the configured
// transfer mode.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"connectionsearch.dev/gtfs/config"
	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

// Index is built once from a storage.FeedReader and then queried by
// one search at a time. RunsOnDay's memoization cache is written on
// every cache miss, so a single Index must not be shared between
// concurrent searches even though its schedule data never changes
// after Build returns.
type Index struct {
	stopsByID  map[string]model.Stop
	routesByID map[string]model.Route
	tripsByID  map[string]model.Trip

	stopTimesByTrip map[string][]model.StopTime
	stopTimesByStop map[string][]model.StopTime

	calendarByServiceID map[string]model.Calendar
	calendarExceptions  map[string]bool // key: serviceID + "/" + date, value: available

	transferMode           config.TransferMode
	minTransferTimeSeconds int
	stopsByTransferNodeID  map[string][]string
	stopsByParentStation   map[string][]string
	transfersByFromStopID  map[string][]model.Transfer

	runsOnDayCache map[string]bool
}

// Build reads every record out of reader and constructs an Index.
// Malformed input — duplicate primary keys, dangling foreign keys,
// out-of-range enums — is reported here rather than surfacing later
// as a search-time error.
func Build(reader storage.FeedReader, cfg config.Config) (*Index, error) {
	idx := &Index{
		stopsByID:              map[string]model.Stop{},
		routesByID:             map[string]model.Route{},
		tripsByID:              map[string]model.Trip{},
		stopTimesByTrip:        map[string][]model.StopTime{},
		stopTimesByStop:        map[string][]model.StopTime{},
		calendarByServiceID:    map[string]model.Calendar{},
		calendarExceptions:     map[string]bool{},
		transferMode:           cfg.TransferMode,
		minTransferTimeSeconds: cfg.MinTransferTimeSeconds,
		stopsByTransferNodeID:  map[string][]string{},
		stopsByParentStation:   map[string][]string{},
		transfersByFromStopID:  map[string][]model.Transfer{},
		runsOnDayCache:         map[string]bool{},
	}

	stops, err := reader.Stops()
	if err != nil {
		return nil, fmt.Errorf("reading stops: %w", err)
	}
	for _, s := range stops {
		if s.ID == "" {
			return nil, fmt.Errorf("stop with empty id")
		}
		if _, dup := idx.stopsByID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate stop_id '%s'", s.ID)
		}
		idx.stopsByID[s.ID] = s
		if s.TransferNodeID != "" {
			idx.stopsByTransferNodeID[s.TransferNodeID] = append(idx.stopsByTransferNodeID[s.TransferNodeID], s.ID)
		}
		if s.ParentStation != "" {
			idx.stopsByParentStation[s.ParentStation] = append(idx.stopsByParentStation[s.ParentStation], s.ID)
		}
	}

	routes, err := reader.Routes()
	if err != nil {
		return nil, fmt.Errorf("reading routes: %w", err)
	}
	for _, r := range routes {
		if r.ID == "" {
			return nil, fmt.Errorf("route with empty id")
		}
		if _, dup := idx.routesByID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate route_id '%s'", r.ID)
		}
		if r.ShortName == "" && r.LongName == "" {
			return nil, fmt.Errorf("route_id '%s' has no route_short_name or route_long_name", r.ID)
		}
		if _, ok := r.Type.ModeTag(); !ok {
			return nil, fmt.Errorf("route_id '%s' has invalid route_type %d", r.ID, r.Type)
		}
		idx.routesByID[r.ID] = r
	}

	trips, err := reader.Trips()
	if err != nil {
		return nil, fmt.Errorf("reading trips: %w", err)
	}
	for _, t := range trips {
		if t.ID == "" {
			return nil, fmt.Errorf("trip with empty id")
		}
		if _, dup := idx.tripsByID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate trip_id '%s'", t.ID)
		}
		if _, ok := idx.routesByID[t.RouteID]; !ok {
			return nil, fmt.Errorf("trip_id '%s' references unknown route_id '%s'", t.ID, t.RouteID)
		}
		idx.tripsByID[t.ID] = t
	}

	calendars, err := reader.Calendars()
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	for _, c := range calendars {
		if _, dup := idx.calendarByServiceID[c.ServiceID]; dup {
			return nil, fmt.Errorf("duplicate service_id '%s' in calendar", c.ServiceID)
		}
		idx.calendarByServiceID[c.ServiceID] = c
	}

	exceptions, err := reader.CalendarExceptions()
	if err != nil {
		return nil, fmt.Errorf("reading calendar_exceptions: %w", err)
	}
	for _, e := range exceptions {
		key := e.ServiceID + "/" + e.Date
		if _, dup := idx.calendarExceptions[key]; dup {
			return nil, fmt.Errorf("duplicate service_id/date '%s' in calendar_dates", key)
		}
		idx.calendarExceptions[key] = e.Available
	}

	stopTimes, err := reader.StopTimes()
	if err != nil {
		return nil, fmt.Errorf("reading stop_times: %w", err)
	}
	stopSeqSeen := map[string]map[int]bool{}
	for _, st := range stopTimes {
		if _, ok := idx.tripsByID[st.TripID]; !ok {
			return nil, fmt.Errorf("stop_time references unknown trip_id '%s'", st.TripID)
		}
		if _, ok := idx.stopsByID[st.StopID]; !ok {
			return nil, fmt.Errorf("stop_time references unknown stop_id '%s'", st.StopID)
		}
		if st.Arrival > st.Departure {
			return nil, fmt.Errorf("trip_id '%s' stop_sequence %d has arrival after departure", st.TripID, st.StopSequence)
		}
		if stopSeqSeen[st.TripID] == nil {
			stopSeqSeen[st.TripID] = map[int]bool{}
		}
		if stopSeqSeen[st.TripID][st.StopSequence] {
			return nil, fmt.Errorf("duplicate stop_sequence %d for trip_id '%s'", st.StopSequence, st.TripID)
		}
		stopSeqSeen[st.TripID][st.StopSequence] = true

		idx.stopTimesByTrip[st.TripID] = append(idx.stopTimesByTrip[st.TripID], st)
		idx.stopTimesByStop[st.StopID] = append(idx.stopTimesByStop[st.StopID], st)
	}

	for tripID, sts := range idx.stopTimesByTrip {
		sort.Slice(sts, func(i, j int) bool { return sts[i].StopSequence < sts[j].StopSequence })
		for i := 1; i < len(sts); i++ {
			if sts[i-1].Departure > sts[i].Arrival {
				return nil, fmt.Errorf("trip_id '%s' has decreasing times between stop_sequence %d and %d", tripID, sts[i-1].StopSequence, sts[i].StopSequence)
			}
		}
	}
	for _, sts := range idx.stopTimesByStop {
		sort.Slice(sts, func(i, j int) bool {
			return sts[i].Departure%(24*3600) < sts[j].Departure%(24*3600)
		})
	}

	if cfg.TransferMode == config.TransferModeByTransfersTxt {
		transfers, err := reader.Transfers()
		if err != nil {
			return nil, fmt.Errorf("reading transfers: %w", err)
		}
		for _, t := range transfers {
			if t.FromStopID == t.ToStopID {
				continue
			}
			idx.transfersByFromStopID[t.FromStopID] = append(idx.transfersByFromStopID[t.FromStopID], t)
		}
	}

	return idx, nil
}

// GetStop returns the stop with the given id, or an error if none
// exists.
func (idx *Index) GetStop(id string) (model.Stop, error) {
	s, ok := idx.stopsByID[id]
	if !ok {
		return model.Stop{}, fmt.Errorf("unknown stop_id '%s'", id)
	}
	return s, nil
}

// GetRoute returns the route with the given id, or an error if none
// exists.
func (idx *Index) GetRoute(id string) (model.Route, error) {
	r, ok := idx.routesByID[id]
	if !ok {
		return model.Route{}, fmt.Errorf("unknown route_id '%s'", id)
	}
	return r, nil
}

// GetTrip returns the trip with the given id, or an error if none
// exists.
func (idx *Index) GetTrip(id string) (model.Trip, error) {
	t, ok := idx.tripsByID[id]
	if !ok {
		return model.Trip{}, fmt.Errorf("unknown trip_id '%s'", id)
	}
	return t, nil
}

// StopTimesOnTrip returns the stop-times of trip, ordered by
// stop_sequence. The returned slice must not be mutated.
func (idx *Index) StopTimesOnTrip(tripID string) []model.StopTime {
	return idx.stopTimesByTrip[tripID]
}

// DeparturesAtStop returns the stop-times departing stop, ordered by
// departure-offset modulo 24h. The returned slice must not be
// mutated.
func (idx *Index) DeparturesAtStop(stopID string) []model.StopTime {
	return idx.stopTimesByStop[stopID]
}

func dateKey(d time.Time) string {
	return d.Format("20060102")
}

// RunsOnDay reports whether serviceID is active on d, combining the
// weekly calendar pattern with any calendar_dates exception. The
// result is memoized: repeated calls for the same (serviceID, d) pair
// are stable and cheap.
func (idx *Index) RunsOnDay(serviceID string, d time.Time) bool {
	dk := dateKey(d)
	cacheKey := serviceID + "/" + dk
	if v, ok := idx.runsOnDayCache[cacheKey]; ok {
		return v
	}

	result := idx.computeRunsOnDay(serviceID, dk)
	idx.runsOnDayCache[cacheKey] = result
	return result
}

func (idx *Index) computeRunsOnDay(serviceID, dateStr string) bool {
	if available, ok := idx.calendarExceptions[serviceID+"/"+dateStr]; ok {
		return available
	}

	cal, ok := idx.calendarByServiceID[serviceID]
	if !ok {
		return false
	}
	if dateStr < cal.StartDate || dateStr > cal.EndDate {
		return false
	}

	d, err := time.ParseInLocation("20060102", dateStr, time.UTC)
	if err != nil {
		return false
	}
	return cal.Weekday&(1<<d.Weekday()) != 0
}

// TransfersFrom enumerates the transfers originating at stopID under
// the configured transfer mode. Self-loops (to_stop_id == from_stop_id)
// are always excluded.
func (idx *Index) TransfersFrom(stopID string) []model.Transfer {
	switch idx.transferMode {
	case config.TransferModeByNodeID:
		stop, ok := idx.stopsByID[stopID]
		if !ok || stop.TransferNodeID == "" {
			return nil
		}
		var out []model.Transfer
		for _, otherID := range idx.stopsByTransferNodeID[stop.TransferNodeID] {
			if otherID == stopID {
				continue
			}
			out = append(out, model.Transfer{
				FromStopID:   stopID,
				ToStopID:     otherID,
				Kind:         model.TransferKindByNodeID,
				TransferTime: idx.minTransferTimeSeconds,
			})
		}
		return out

	case config.TransferModeByParentStation:
		stop, ok := idx.stopsByID[stopID]
		if !ok || stop.ParentStation == "" {
			return nil
		}
		var out []model.Transfer
		for _, otherID := range idx.stopsByParentStation[stop.ParentStation] {
			if otherID == stopID {
				continue
			}
			out = append(out, model.Transfer{
				FromStopID:   stopID,
				ToStopID:     otherID,
				Kind:         model.TransferKindByParentStation,
				TransferTime: idx.minTransferTimeSeconds,
			})
		}
		return out

	case config.TransferModeByTransfersTxt:
		stored := idx.transfersByFromStopID[stopID]
		if len(stored) == 0 {
			return nil
		}
		out := make([]model.Transfer, len(stored))
		for i, t := range stored {
			transferTime := t.TransferTime
			if idx.minTransferTimeSeconds > transferTime {
				transferTime = idx.minTransferTimeSeconds
			}
			out[i] = model.Transfer{
				FromStopID:   t.FromStopID,
				ToStopID:     t.ToStopID,
				Kind:         model.TransferKindTransfersTxt,
				TransferTime: transferTime,
			}
		}
		return out

	default: // config.TransferModeNone and any unrecognized value
		return nil
	}
}
