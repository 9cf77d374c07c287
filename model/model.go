// Package model holds the GTFS entity types shared by the parser, the
// feed storage layer and the schedule index. Entities carry ids, not
// pointers to other entities: the schedule index is the one place
// that resolves an id into another entity, for the duration of a
// query.
package model

// LocationType classifies a stops.txt row, per the GTFS
// location_type column.
type LocationType int

const (
	LocationTypePlatform LocationType = iota
	LocationTypeStation
	LocationTypeEntranceExit
	LocationTypeGenericNode
	LocationTypeBoardingArea
)

// RouteType is the GTFS routes.txt route_type column, restricted to
// the basic 0-7/11/12 range used by Route.Type. Extended (Google
// Transit) ranges are only handled by ModeTag.
type RouteType int

const (
	RouteTypeTramLightRail RouteType = 0
	RouteTypeMetroSubway   RouteType = 1
	RouteTypeRail          RouteType = 2
	RouteTypeBus           RouteType = 3
	RouteTypeFerry         RouteType = 4
	RouteTypeCableTram     RouteType = 5
	RouteTypeAerialLift    RouteType = 6
	RouteTypeFunicular     RouteType = 7
	RouteTypeTrolleybus    RouteType = 11
	RouteTypeMonorail      RouteType = 12
)

// ModeTag collapses a route_type -- including the Google Transit
// extended ranges -- onto one of the ten UI-facing mode tags. The
// bool is false for a value outside every known range.
func (t RouteType) ModeTag() (string, bool) {
	switch {
	case t == RouteTypeCableTram:
		return "cable-tram", true
	case t == RouteTypeMonorail:
		return "monorail", true
	case t == RouteTypeTramLightRail || (t >= 900 && t <= 999):
		return "tram/light rail", true
	case t == RouteTypeMetroSubway || (t >= 400 && t <= 499):
		return "metro", true
	case t == RouteTypeRail || (t >= 100 && t <= 199):
		return "rail", true
	case t == RouteTypeBus || (t >= 700 && t <= 799) || (t >= 200 && t <= 299):
		return "bus", true
	case t == RouteTypeFerry || (t >= 1000 && t <= 1099) || (t >= 1200 && t <= 1299):
		return "ferry", true
	case t == RouteTypeAerialLift || (t >= 1300 && t <= 1399):
		return "aerial-lift", true
	case t == RouteTypeFunicular || (t >= 1400 && t <= 1499):
		return "funicular", true
	case t == RouteTypeTrolleybus || (t >= 800 && t <= 899):
		return "trolleybus", true
	default:
		return "", false
	}
}

// PickupDropoffType is the GTFS pickup_type / drop_off_type column.
type PickupDropoffType int

const (
	PickupDropoffRegular PickupDropoffType = iota
	PickupDropoffNotAvailable
	PickupDropoffPhoneAgency
	PickupDropoffCoordinateWithDriver
)

// TransferKind records how a Transfer was produced.
type TransferKind int

const (
	TransferKindNone TransferKind = iota
	TransferKindByNodeID
	TransferKindByParentStation
	TransferKindTransfersTxt
)

type Stop struct {
	ID             string
	Name           string
	LocationType   LocationType
	ParentStation  string
	TransferNodeID string
}

type Route struct {
	ID        string
	ShortName string
	LongName  string
	Type      RouteType
}

type Trip struct {
	ID        string
	RouteID   string
	ServiceID string
	ShortName string
}

// StopTime holds one row of stop_times.txt. Arrival and Departure are
// offsets from service-day midnight, in seconds, and may exceed
// 24*3600 for trips that run past midnight.
type StopTime struct {
	TripID       string
	StopSequence int
	Arrival      int
	Departure    int
	StopID       string
	PickupType   PickupDropoffType
	DropOffType  PickupDropoffType
}

// Calendar is a calendar.txt row. Weekday is a bitmask with bit
// time.Sunday..time.Saturday (0..6) set for each day the service is
// nominally active, subject to CalendarExceptions.
type Calendar struct {
	ServiceID string
	Weekday   int8
	StartDate string // YYYYMMDD
	EndDate   string // YYYYMMDD
}

// CalendarException is a calendar_dates.txt row. Available is true for
// exception_type=1 (added) and false for exception_type=2 (removed).
type CalendarException struct {
	ServiceID string
	Date      string // YYYYMMDD
	Available bool
}

// Transfer is either a transfers.txt row, or a transfer synthesized by
// the schedule index from a shared transfer-node id or parent
// station.
type Transfer struct {
	FromStopID   string
	ToStopID     string
	Kind         TransferKind
	TransferTime int // seconds
}
