package parse

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

type StopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  int    `csv:"stop_sequence"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	PickupType    string `csv:"pickup_type"`
	DropOffType   string `csv:"drop_off_type"`
}

// parseStopTimeSeconds parses a GTFS HH:MM:SS time, which may exceed
// 24:00:00 for trips that run past midnight, into an offset in
// seconds from service-day midnight.
func parseStopTimeSeconds(s string) (int, error) {
	split := strings.Split(s, ":")
	if len(split) != 3 {
		return 0, fmt.Errorf("found %d parts in '%s'", len(split), s)
	}

	hms := [3]int{}
	for i, str := range split {
		n, err := strconv.Atoi(str)
		if err != nil {
			return 0, fmt.Errorf("non-integer in '%s' pos %d", s, i)
		}
		hms[i] = n
	}

	if hms[0] < 0 {
		return 0, fmt.Errorf("invalid hour in '%s'", s)
	}
	if hms[1] < 0 || hms[1] > 59 {
		return 0, fmt.Errorf("invalid minute in '%s'", s)
	}
	if hms[2] < 0 || hms[2] > 59 {
		return 0, fmt.Errorf("invalid second in '%s'", s)
	}

	return hms[0]*3600 + hms[1]*60 + hms[2], nil
}

func parsePickupDropoffType(s string) (model.PickupDropoffType, error) {
	if s == "" {
		return model.PickupDropoffRegular, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 3 {
		return 0, fmt.Errorf("invalid value '%s'", s)
	}
	return model.PickupDropoffType(n), nil
}

// ParseStopTimes reads stop_times.txt, validating that every trip_id
// and stop_id is known and that stop_sequence is unique (but not
// necessarily contiguous or zero-based) within a trip. Writes the
// rows to writer in trip_id/stop_sequence order.
func ParseStopTimes(
	writer storage.FeedWriter,
	data io.Reader,
	trips map[string]bool,
	stops map[string]bool,
) error {
	stopTimes := []model.StopTime{}
	stopSeq := map[string]map[int]bool{}

	i := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(st *StopTimeCSV) error {
		i++
		if st.TripID == "" || !trips[st.TripID] {
			return fmt.Errorf("unknown trip_id '%s' (row %d)", st.TripID, i+1)
		}
		if st.StopID == "" || !stops[st.StopID] {
			return fmt.Errorf("unknown stop_id '%s' (row %d)", st.StopID, i+1)
		}

		if stopSeq[st.TripID] == nil {
			stopSeq[st.TripID] = map[int]bool{}
		}
		if stopSeq[st.TripID][st.StopSequence] {
			return fmt.Errorf("duplicate stop_sequence %d for trip_id '%s'", st.StopSequence, st.TripID)
		}
		stopSeq[st.TripID][st.StopSequence] = true

		arrival, err := parseStopTimeSeconds(st.ArrivalTime)
		if err != nil {
			return errors.Wrapf(err, "parsing arrival_time (row %d)", i+1)
		}
		departure, err := parseStopTimeSeconds(st.DepartureTime)
		if err != nil {
			return errors.Wrapf(err, "parsing departure_time (row %d)", i+1)
		}
		if departure < arrival {
			return fmt.Errorf("departure precedes arrival (row %d)", i+1)
		}

		pickupType, err := parsePickupDropoffType(st.PickupType)
		if err != nil {
			return errors.Wrapf(err, "parsing pickup_type (row %d)", i+1)
		}
		dropOffType, err := parsePickupDropoffType(st.DropOffType)
		if err != nil {
			return errors.Wrapf(err, "parsing drop_off_type (row %d)", i+1)
		}

		stopTimes = append(stopTimes, model.StopTime{
			TripID:       st.TripID,
			StopID:       st.StopID,
			StopSequence: st.StopSequence,
			Arrival:      arrival,
			Departure:    departure,
			PickupType:   pickupType,
			DropOffType:  dropOffType,
		})
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unmarshaling stop_times csv")
	}

	sort.SliceStable(stopTimes, func(i, j int) bool {
		if stopTimes[i].TripID != stopTimes[j].TripID {
			return stopTimes[i].TripID < stopTimes[j].TripID
		}
		return stopTimes[i].StopSequence < stopTimes[j].StopSequence
	})

	for _, st := range stopTimes {
		if err := writer.WriteStopTime(st); err != nil {
			return fmt.Errorf("writing stop_time: %w", err)
		}
	}

	return nil
}
