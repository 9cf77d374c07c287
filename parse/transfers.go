package parse

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

type TransferCSV struct {
	FromStopID      string `csv:"from_stop_id"`
	ToStopID        string `csv:"to_stop_id"`
	TransferType    string `csv:"transfer_type"`
	MinTransferTime string `csv:"min_transfer_time"`
	FromRouteID     string `csv:"from_route_id"`
	ToRouteID       string `csv:"to_route_id"`
	FromTripID      string `csv:"from_trip_id"`
	ToTripID        string `csv:"to_trip_id"`
}

// ParseTransfers reads transfers.txt. Only called under
// TRANSFER_MODE=by_transfers_txt. Rows scoped to a particular trip or
// route (from_trip_id/to_trip_id/from_route_id/to_route_id set) are
// outside what the stop-to-stop transfer model here can express, and
// are skipped rather than rejected. A transfer_type of 3 ("not
// possible") and a self-referencing row are also skipped: both convey
// the absence of a usable transfer, which is already the default.
func ParseTransfers(writer storage.FeedWriter, data io.Reader) error {
	transferCsv := []*TransferCSV{}
	if err := gocsv.Unmarshal(data, &transferCsv); err != nil {
		return fmt.Errorf("unmarshaling transfers csv: %w", err)
	}

	for _, t := range transferCsv {
		if t.FromStopID == "" || t.ToStopID == "" {
			return fmt.Errorf("transfer row missing from_stop_id or to_stop_id")
		}
		if t.FromRouteID != "" || t.ToRouteID != "" || t.FromTripID != "" || t.ToTripID != "" {
			continue
		}
		if t.FromStopID == t.ToStopID {
			continue
		}

		transferType := 0
		if t.TransferType != "" {
			n, err := strconv.Atoi(t.TransferType)
			if err != nil || n < 0 || n > 5 {
				return fmt.Errorf("invalid transfer_type '%s' for %s -> %s", t.TransferType, t.FromStopID, t.ToStopID)
			}
			transferType = n
		}
		if transferType == 3 {
			continue
		}

		transferTime := 0
		if t.MinTransferTime != "" {
			n, err := strconv.Atoi(t.MinTransferTime)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid min_transfer_time '%s' for %s -> %s", t.MinTransferTime, t.FromStopID, t.ToStopID)
			}
			transferTime = n
		}

		err := writer.WriteTransfer(model.Transfer{
			FromStopID:   t.FromStopID,
			ToStopID:     t.ToStopID,
			Kind:         model.TransferKindTransfersTxt,
			TransferTime: transferTime,
		})
		if err != nil {
			return fmt.Errorf("writing transfer: %w", err)
		}
	}

	return nil
}
