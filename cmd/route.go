package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"connectionsearch.dev/gtfs/connection"
	"connectionsearch.dev/gtfs/parse"
	"connectionsearch.dev/gtfs/schedule"
	"connectionsearch.dev/gtfs/search"
	"connectionsearch.dev/gtfs/storage"
)

var (
	originIDs      []string
	destinationIDs []string
	startTimeArg   string
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Find the earliest-arrival, minimum-transfer connection between stops",
	RunE:  route,
}

func init() {
	routeCmd.Flags().StringSliceVarP(&originIDs, "from", "f", nil, "origin stop id (repeatable)")
	routeCmd.Flags().StringSliceVarP(&destinationIDs, "to", "t", nil, "destination stop id (repeatable)")
	routeCmd.Flags().StringVarP(&startTimeArg, "at", "a", "", "search start time, RFC3339 (defaults to now)")
}

func route(cmd *cobra.Command, args []string) error {
	requestID := uuid.New()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatasetPath == "" {
		return fmt.Errorf("no dataset path: pass --dataset or set DATASET_PATH")
	}

	startTime := time.Now()
	if startTimeArg != "" {
		startTime, err = time.Parse(time.RFC3339, startTimeArg)
		if err != nil {
			return fmt.Errorf("parsing --at: %w", err)
		}
	}

	feed, err := openFeedBackend()
	if err != nil {
		return fmt.Errorf("opening storage backend: %w", err)
	}
	defer feed.Close()

	files, closeFiles, err := openDatasetFiles(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer closeFiles()

	if err := parse.ParseFeed(feed, files, parse.Options{
		TransferMode:       cfg.TransferMode,
		TransferNodeColumn: cfg.TransferNodeID,
	}); err != nil {
		return fmt.Errorf("parsing dataset: %w", err)
	}

	idx, err := schedule.Build(feed, cfg)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	result := search.Search(idx, search.SearchParams{
		OriginStopIDs:      originIDs,
		DestinationStopIDs: destinationIDs,
		StartTime:          startTime,
	}, time.Duration(cfg.MaxSearchTimeHours)*time.Hour)

	fmt.Printf("[%s] searched from %v at %s\n", requestID, originIDs, startTime.Format(time.RFC3339))

	if result.Connection == nil {
		fmt.Println("no connection found")
		return nil
	}

	printConnection(idx, *result.Connection)
	return nil
}

func printConnection(idx *schedule.Index, c connection.Connection) {
	if len(c.Segments) == 0 {
		fmt.Println("already there")
		return
	}

	for _, seg := range c.Segments {
		switch seg.Kind {
		case connection.SegmentKindTrip:
			trip, _ := idx.GetTrip(seg.Trip.StartStopTime.TripID)
			route, _ := idx.GetRoute(trip.RouteID)
			fmt.Printf("ride %s (%s) from %s at %s to %s at %s\n",
				trip.ID, route.ShortName,
				seg.Trip.StartStopTime.StopID,
				connection.ServiceDayTime(seg.Trip.ServiceDay, seg.Trip.StartStopTime.Departure).Format(time.RFC3339),
				seg.Trip.EndStopTime.StopID,
				connection.ServiceDayTime(seg.Trip.ServiceDay, seg.Trip.EndStopTime.Arrival).Format(time.RFC3339),
			)
		case connection.SegmentKindTransfer:
			fmt.Printf("transfer from %s to %s\n", seg.Transfer.Transfer.FromStopID, seg.Transfer.Transfer.ToStopID)
		}
	}

	fmt.Printf("%d transfer(s)\n", c.TransferCount())
}

func openFeedBackend() (interface {
	storage.FeedWriter
	storage.FeedReader
}, error) {
	switch storageKind {
	case "", "memory":
		return storage.NewMemoryFeed(), nil
	case "sqlite":
		return storage.NewSQLiteFeed(storagePath)
	case "postgres":
		return storage.NewPostgresFeed(storagePath)
	default:
		return nil, fmt.Errorf("unrecognized storage backend: %q", storageKind)
	}
}

// openDatasetFiles opens the known GTFS filenames under dir. Calendar,
// calendar_dates and transfers are optional; a missing one is left nil
// for parse.ParseFeed to reject or accept as appropriate.
func openDatasetFiles(dir string) (parse.Files, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	// open returns a nil io.Reader (not a typed-nil *os.File) for an
	// absent optional file, so parse.Files' nil checks work correctly.
	open := func(name string, required bool) (io.Reader, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) && !required {
				return nil, nil
			}
			return nil, err
		}
		opened = append(opened, f)
		return f, nil
	}

	var files parse.Files
	var err error

	if files.Stops, err = open("stops.txt", true); err != nil {
		closeAll()
		return parse.Files{}, nil, err
	}
	if files.Routes, err = open("routes.txt", true); err != nil {
		closeAll()
		return parse.Files{}, nil, err
	}
	if files.Trips, err = open("trips.txt", true); err != nil {
		closeAll()
		return parse.Files{}, nil, err
	}
	if files.StopTimes, err = open("stop_times.txt", true); err != nil {
		closeAll()
		return parse.Files{}, nil, err
	}
	if files.Calendar, err = open("calendar.txt", false); err != nil {
		closeAll()
		return parse.Files{}, nil, err
	}
	if files.CalendarDates, err = open("calendar_dates.txt", false); err != nil {
		closeAll()
		return parse.Files{}, nil, err
	}
	if files.Transfers, err = open("transfers.txt", false); err != nil {
		closeAll()
		return parse.Files{}, nil, err
	}

	return files, closeAll, nil
}
