// Package search drives the time-expanded event-driven journey
// search: a priority queue of StopEvent, TripEvent and TransferEvent
// values, two dominance tables pruning non-improving discoveries, and
// a termination rule bounded by a configurable horizon.
package search

import (
	"time"

	"connectionsearch.dev/gtfs/connection"
	"connectionsearch.dev/gtfs/schedule"
)

// SearchParams holds everything the caller controls about one query.
type SearchParams struct {
	OriginStopIDs      []string
	DestinationStopIDs []string
	StartTime          time.Time
}

// SearchResult is the outcome of a query: a Connection if one was
// found within the horizon, nil otherwise.
type SearchResult struct {
	Connection *connection.Connection
}

// Search runs the engine to completion and returns the best
// connection reachable from any origin to any destination within
// horizon of params.StartTime, or a nil Connection if none exists.
//
// Every query gets a fresh queue and fresh dominance tables. Nothing
// here is safe to share across concurrent queries, and neither is the
// schedule.Index underneath: its RunsOnDay memoization cache is
// written during the search.
func Search(idx *schedule.Index, params SearchParams, horizon time.Duration) SearchResult {
	if len(params.OriginStopIDs) == 0 || len(params.DestinationStopIDs) == 0 {
		return SearchResult{}
	}

	queue := newEventQueue()
	bestPerStop := BestPerStop{}
	bestPerTrip := BestPerTrip{}
	horizonTime := params.StartTime.Add(horizon)

	origins := map[string]bool{}
	for _, o := range params.OriginStopIDs {
		origins[o] = true
	}

	for _, originID := range params.OriginStopIDs {
		if _, ok := bestPerStop[originID]; ok {
			continue // duplicate origin id
		}
		bestPerStop[originID] = connection.Empty()

		if se, ok := NewStopEventAtOrigin(idx, originID, params.StartTime); ok {
			queue.push(Event{Kind: EventKindStop, Stop: se})
		}

		for _, ev := range transferEventsFrom(idx, originID, connection.Empty(), params.StartTime) {
			if origins[ev.Transfer.Transfer.ToStopID] {
				continue
			}
			queue.push(ev)
		}
	}

	destinations := map[string]bool{}
	for _, d := range params.DestinationStopIDs {
		destinations[d] = true
	}

	// An origin that is also a destination is already reached with
	// the empty connection, which no other connection can ever beat;
	// no event needs to fire for the loop below to discover that.
	if best, ok := bestReached(bestPerStop, destinations); ok {
		return SearchResult{Connection: &best}
	}

	previousTime := params.StartTime

	for queue.Len() > 0 {
		e := queue.pop()

		if e.NextEventTime().After(previousTime) {
			previousTime = e.NextEventTime()

			if best, ok := bestReached(bestPerStop, destinations); ok {
				return SearchResult{Connection: &best}
			}
			if previousTime.After(horizonTime) {
				return SearchResult{}
			}
		}

		for _, next := range e.Step(idx, bestPerStop, bestPerTrip) {
			queue.push(next)
		}
	}

	if best, ok := bestReached(bestPerStop, destinations); ok {
		return SearchResult{Connection: &best}
	}
	return SearchResult{}
}

func bestReached(bestPerStop BestPerStop, destinations map[string]bool) (connection.Connection, bool) {
	var best connection.Connection
	found := false
	for d := range destinations {
		conn, ok := bestPerStop[d]
		if !ok {
			continue
		}
		if !found || conn.Quality().Better(best.Quality()) {
			best = conn
			found = true
		}
	}
	return best, found
}
