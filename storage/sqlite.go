package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"connectionsearch.dev/gtfs/model"
)

// SQLiteFeed is a FeedWriter/FeedReader pair backed by a SQLite
// database, either on disk or (path == "" or ":memory:") in memory.
// It exists for feeds too large to comfortably hold twice over in
// process memory while the schedule index is being built from them.
type SQLiteFeed struct {
	db *sql.DB

	stopTimeTx    *sql.Tx
	stopTimeStmt  *sql.Stmt
}

func NewSQLiteFeed(path string) (*SQLiteFeed, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	schema := []string{
		`CREATE TABLE stops (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location_type INTEGER NOT NULL,
			parent_station TEXT,
			transfer_node_id TEXT
		)`,
		`CREATE INDEX stops_parent_station ON stops (parent_station)`,
		`CREATE TABLE routes (
			id TEXT PRIMARY KEY,
			short_name TEXT,
			long_name TEXT,
			type INTEGER NOT NULL
		)`,
		`CREATE TABLE trips (
			id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			short_name TEXT
		)`,
		`CREATE INDEX trips_service_id ON trips (service_id)`,
		`CREATE TABLE stop_times (
			trip_id TEXT NOT NULL,
			stop_sequence INTEGER NOT NULL,
			arrival INTEGER NOT NULL,
			departure INTEGER NOT NULL,
			stop_id TEXT NOT NULL,
			pickup_type INTEGER NOT NULL,
			drop_off_type INTEGER NOT NULL
		)`,
		`CREATE INDEX stop_times_trip_id ON stop_times (trip_id)`,
		`CREATE INDEX stop_times_stop_id ON stop_times (stop_id)`,
		`CREATE TABLE calendar (
			service_id TEXT PRIMARY KEY,
			weekday INTEGER NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL
		)`,
		`CREATE TABLE calendar_exceptions (
			service_id TEXT NOT NULL,
			date TEXT NOT NULL,
			available INTEGER NOT NULL
		)`,
		`CREATE TABLE transfers (
			from_stop_id TEXT NOT NULL,
			to_stop_id TEXT NOT NULL,
			kind INTEGER NOT NULL,
			transfer_time INTEGER NOT NULL
		)`,
		`CREATE INDEX transfers_from_stop_id ON transfers (from_stop_id)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteFeed{db: db}, nil
}

func (f *SQLiteFeed) WriteStop(s model.Stop) error {
	_, err := f.db.Exec(
		`INSERT INTO stops (id, name, location_type, parent_station, transfer_node_id) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.LocationType, s.ParentStation, s.TransferNodeID,
	)
	if err != nil {
		return fmt.Errorf("inserting stop: %w", err)
	}
	return nil
}

func (f *SQLiteFeed) WriteRoute(r model.Route) error {
	_, err := f.db.Exec(
		`INSERT INTO routes (id, short_name, long_name, type) VALUES (?, ?, ?, ?)`,
		r.ID, r.ShortName, r.LongName, r.Type,
	)
	if err != nil {
		return fmt.Errorf("inserting route: %w", err)
	}
	return nil
}

func (f *SQLiteFeed) BeginTrips() error { return nil }

func (f *SQLiteFeed) WriteTrip(t model.Trip) error {
	_, err := f.db.Exec(
		`INSERT INTO trips (id, route_id, service_id, short_name) VALUES (?, ?, ?, ?)`,
		t.ID, t.RouteID, t.ServiceID, t.ShortName,
	)
	if err != nil {
		return fmt.Errorf("inserting trip: %w", err)
	}
	return nil
}

func (f *SQLiteFeed) EndTrips() error { return nil }

func (f *SQLiteFeed) WriteCalendar(c model.Calendar) error {
	_, err := f.db.Exec(
		`INSERT INTO calendar (service_id, weekday, start_date, end_date) VALUES (?, ?, ?, ?)`,
		c.ServiceID, c.Weekday, c.StartDate, c.EndDate,
	)
	if err != nil {
		return fmt.Errorf("inserting calendar: %w", err)
	}
	return nil
}

func (f *SQLiteFeed) WriteCalendarException(e model.CalendarException) error {
	_, err := f.db.Exec(
		`INSERT INTO calendar_exceptions (service_id, date, available) VALUES (?, ?, ?)`,
		e.ServiceID, e.Date, e.Available,
	)
	if err != nil {
		return fmt.Errorf("inserting calendar exception: %w", err)
	}
	return nil
}

func (f *SQLiteFeed) WriteTransfer(t model.Transfer) error {
	_, err := f.db.Exec(
		`INSERT INTO transfers (from_stop_id, to_stop_id, kind, transfer_time) VALUES (?, ?, ?, ?)`,
		t.FromStopID, t.ToStopID, t.Kind, t.TransferTime,
	)
	if err != nil {
		return fmt.Errorf("inserting transfer: %w", err)
	}
	return nil
}

// BeginStopTimes opens a transaction with a prepared insert, since
// stop_times.txt tends to dwarf every other file in a feed.
func (f *SQLiteFeed) BeginStopTimes() error {
	tx, err := f.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning stop_time transaction: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO stop_times (trip_id, stop_sequence, arrival, departure, stop_id, pickup_type, drop_off_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing stop_time insert: %w", err)
	}
	f.stopTimeTx = tx
	f.stopTimeStmt = stmt
	return nil
}

func (f *SQLiteFeed) WriteStopTime(st model.StopTime) error {
	_, err := f.stopTimeStmt.Exec(
		st.TripID, st.StopSequence, st.Arrival, st.Departure, st.StopID, st.PickupType, st.DropOffType,
	)
	if err != nil {
		return fmt.Errorf("inserting stop_time: %w", err)
	}
	return nil
}

func (f *SQLiteFeed) EndStopTimes() error {
	if err := f.stopTimeStmt.Close(); err != nil {
		return fmt.Errorf("closing stop_time statement: %w", err)
	}
	if err := f.stopTimeTx.Commit(); err != nil {
		return fmt.Errorf("committing stop_time transaction: %w", err)
	}
	f.stopTimeTx = nil
	f.stopTimeStmt = nil
	return nil
}

func (f *SQLiteFeed) Close() error {
	return f.db.Close()
}

func (f *SQLiteFeed) Stops() ([]model.Stop, error) {
	rows, err := f.db.Query(`SELECT id, name, location_type, parent_station, transfer_node_id FROM stops`)
	if err != nil {
		return nil, fmt.Errorf("querying stops: %w", err)
	}
	defer rows.Close()

	var stops []model.Stop
	for rows.Next() {
		var s model.Stop
		var parentStation, transferNodeID sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.LocationType, &parentStation, &transferNodeID); err != nil {
			return nil, fmt.Errorf("scanning stop: %w", err)
		}
		s.ParentStation = parentStation.String
		s.TransferNodeID = transferNodeID.String
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

func (f *SQLiteFeed) Routes() ([]model.Route, error) {
	rows, err := f.db.Query(`SELECT id, short_name, long_name, type FROM routes`)
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		var r model.Route
		var shortName, longName sql.NullString
		if err := rows.Scan(&r.ID, &shortName, &longName, &r.Type); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		r.ShortName = shortName.String
		r.LongName = longName.String
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (f *SQLiteFeed) Trips() ([]model.Trip, error) {
	rows, err := f.db.Query(`SELECT id, route_id, service_id, short_name FROM trips`)
	if err != nil {
		return nil, fmt.Errorf("querying trips: %w", err)
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		var t model.Trip
		var shortName sql.NullString
		if err := rows.Scan(&t.ID, &t.RouteID, &t.ServiceID, &shortName); err != nil {
			return nil, fmt.Errorf("scanning trip: %w", err)
		}
		t.ShortName = shortName.String
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (f *SQLiteFeed) StopTimes() ([]model.StopTime, error) {
	rows, err := f.db.Query(
		`SELECT trip_id, stop_sequence, arrival, departure, stop_id, pickup_type, drop_off_type
		 FROM stop_times ORDER BY trip_id, stop_sequence`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying stop_times: %w", err)
	}
	defer rows.Close()

	var stopTimes []model.StopTime
	for rows.Next() {
		var st model.StopTime
		if err := rows.Scan(&st.TripID, &st.StopSequence, &st.Arrival, &st.Departure, &st.StopID, &st.PickupType, &st.DropOffType); err != nil {
			return nil, fmt.Errorf("scanning stop_time: %w", err)
		}
		stopTimes = append(stopTimes, st)
	}
	return stopTimes, rows.Err()
}

func (f *SQLiteFeed) Calendars() ([]model.Calendar, error) {
	rows, err := f.db.Query(`SELECT service_id, weekday, start_date, end_date FROM calendar`)
	if err != nil {
		return nil, fmt.Errorf("querying calendar: %w", err)
	}
	defer rows.Close()

	var calendars []model.Calendar
	for rows.Next() {
		var c model.Calendar
		if err := rows.Scan(&c.ServiceID, &c.Weekday, &c.StartDate, &c.EndDate); err != nil {
			return nil, fmt.Errorf("scanning calendar: %w", err)
		}
		calendars = append(calendars, c)
	}
	return calendars, rows.Err()
}

func (f *SQLiteFeed) CalendarExceptions() ([]model.CalendarException, error) {
	rows, err := f.db.Query(`SELECT service_id, date, available FROM calendar_exceptions`)
	if err != nil {
		return nil, fmt.Errorf("querying calendar_exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []model.CalendarException
	for rows.Next() {
		var e model.CalendarException
		if err := rows.Scan(&e.ServiceID, &e.Date, &e.Available); err != nil {
			return nil, fmt.Errorf("scanning calendar_exception: %w", err)
		}
		exceptions = append(exceptions, e)
	}
	return exceptions, rows.Err()
}

func (f *SQLiteFeed) Transfers() ([]model.Transfer, error) {
	rows, err := f.db.Query(`SELECT from_stop_id, to_stop_id, kind, transfer_time FROM transfers`)
	if err != nil {
		return nil, fmt.Errorf("querying transfers: %w", err)
	}
	defer rows.Close()

	var transfers []model.Transfer
	for rows.Next() {
		var t model.Transfer
		if err := rows.Scan(&t.FromStopID, &t.ToStopID, &t.Kind, &t.TransferTime); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
