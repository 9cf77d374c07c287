package parse

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spkg/bom"

	"connectionsearch.dev/gtfs/model"
	"connectionsearch.dev/gtfs/storage"
)

// ParseStops reads stops.txt. Unlike the other GTFS files, it is not
// read via gocsv: the column holding the transfer-node id is only
// known at runtime (it's the configured TRANSFER_NODE_ID field name),
// so the set of relevant columns can't be fixed in a struct tag.
func ParseStops(writer storage.FeedWriter, data io.Reader, transferNodeColumn string) (map[string]bool, error) {
	r := csv.NewReader(bom.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("reading stops.txt header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"stop_id", "stop_name", "location_type", "parent_station"} {
		if _, found := col[required]; !found {
			return nil, fmt.Errorf("stops.txt missing column %q", required)
		}
	}
	transferCol, hasTransferCol := -1, false
	if transferNodeColumn != "" {
		transferCol, hasTransferCol = col[transferNodeColumn]
	}

	field := func(row []string, name string) string {
		i, found := col[name]
		if !found || i >= len(row) {
			return ""
		}
		return row[i]
	}

	stopIDs := map[string]bool{}
	parentRef := map[string]string{}

	for rowNum := 2; ; rowNum++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading stops.txt row %d: %w", rowNum, err)
		}

		id := field(row, "stop_id")
		if id == "" {
			return nil, fmt.Errorf("empty stop_id (row %d)", rowNum)
		}
		if stopIDs[id] {
			return nil, fmt.Errorf("repeated stop_id '%s'", id)
		}
		stopIDs[id] = true

		locationTypeStr := field(row, "location_type")
		locationType := model.LocationTypePlatform
		if locationTypeStr != "" {
			n, err := strconv.Atoi(locationTypeStr)
			if err != nil || n < 0 || n > 4 {
				return nil, fmt.Errorf("invalid location_type '%s' for stop_id '%s'", locationTypeStr, id)
			}
			locationType = model.LocationType(n)
		}

		parentStation := field(row, "parent_station")
		if parentStation != "" {
			parentRef[id] = parentStation
		}

		transferNodeID := ""
		if hasTransferCol && transferCol < len(row) {
			transferNodeID = row[transferCol]
		}

		err = writer.WriteStop(model.Stop{
			ID:             id,
			Name:           field(row, "stop_name"),
			LocationType:   locationType,
			ParentStation:  parentStation,
			TransferNodeID: transferNodeID,
		})
		if err != nil {
			return nil, fmt.Errorf("writing stop '%s': %w", id, err)
		}
	}

	for stopID, parentID := range parentRef {
		if !stopIDs[parentID] {
			return nil, fmt.Errorf("stop '%s' references unknown parent_station '%s'", stopID, parentID)
		}
	}

	return stopIDs, nil
}
