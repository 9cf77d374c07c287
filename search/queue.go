package search

import (
	"container/heap"
	"time"

	"connectionsearch.dev/gtfs/schedule"
)

// EventKind discriminates the three kinds of Event. Event is a tagged
// union rather than an interface: the queue never needs dynamic
// dispatch, only NextEventTime() for ordering and Step() to advance
// whichever payload is active.
type EventKind int

const (
	EventKindStop EventKind = iota
	EventKindTrip
	EventKindTransfer
)

// Event is one entry in the search engine's priority queue.
type Event struct {
	Kind     EventKind
	Stop     StopEvent
	Trip     TripEvent
	Transfer TransferEvent

	seq int
}

// NextEventTime is the wall-clock instant the event fires at; it's
// the heap's sole ordering key.
func (e Event) NextEventTime() time.Time {
	switch e.Kind {
	case EventKindStop:
		return e.Stop.DepartureTime
	case EventKindTrip:
		return e.Trip.ArrivalTime
	default:
		return e.Transfer.EndArrival
	}
}

// Step advances the event by one unit of progress, mutating the
// dominance tables in place and returning any events to enqueue next.
func (e Event) Step(idx *schedule.Index, bestPerStop BestPerStop, bestPerTrip BestPerTrip) []Event {
	switch e.Kind {
	case EventKindStop:
		return e.Stop.step(idx, bestPerStop, bestPerTrip)
	case EventKindTrip:
		return e.Trip.step(idx, bestPerStop, bestPerTrip)
	default:
		return e.Transfer.step(idx, bestPerStop)
	}
}

// eventQueue is a container/heap min-heap ordered by NextEventTime,
// with insertion order (seq) as the tie-break so equal-time events
// pop in FIFO order.
type eventQueue struct {
	events  []Event
	nextSeq int
}

func (q *eventQueue) Len() int { return len(q.events) }

func (q *eventQueue) Less(i, j int) bool {
	ti, tj := q.events[i].NextEventTime(), q.events[j].NextEventTime()
	if ti.Equal(tj) {
		return q.events[i].seq < q.events[j].seq
	}
	return ti.Before(tj)
}

func (q *eventQueue) Swap(i, j int) { q.events[i], q.events[j] = q.events[j], q.events[i] }

func (q *eventQueue) Push(x any) {
	e := x.(Event)
	e.seq = q.nextSeq
	q.nextSeq++
	q.events = append(q.events, e)
}

func (q *eventQueue) Pop() any {
	n := len(q.events)
	e := q.events[n-1]
	q.events = q.events[:n-1]
	return e
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	heap.Init(q)
	return q
}

func (q *eventQueue) push(e Event) { heap.Push(q, e) }

func (q *eventQueue) pop() Event { return heap.Pop(q).(Event) }
