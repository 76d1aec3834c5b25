package eventkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSessionClosed is returned when an operation is issued against a closed
// session, or when the session is closed while an operation is in flight.
var ErrSessionClosed = errors.New("eventkit: session closed")

// EntityType describes whether an item is an event or a reminder.
type EntityType string

const (
	// EntityTypeEvent scopes an operation to calendar events.
	EntityTypeEvent EntityType = "event"
	// EntityTypeReminder scopes an operation to reminders.
	EntityTypeReminder EntityType = "reminder"
)

// AuthorizationStatus describes store permission state for one entity type.
type AuthorizationStatus string

const (
	// AuthorizationNotDetermined indicates access has not been requested yet.
	AuthorizationNotDetermined AuthorizationStatus = "notDetermined"
	// AuthorizationRestricted indicates policy restrictions prevent access.
	AuthorizationRestricted AuthorizationStatus = "restricted"
	// AuthorizationDenied indicates the user denied access.
	AuthorizationDenied AuthorizationStatus = "denied"
	// AuthorizationAuthorized indicates full access on backends that do not
	// distinguish full from write-only grants.
	AuthorizationAuthorized AuthorizationStatus = "authorized"
	// AuthorizationFullAccess indicates a full read/write grant.
	AuthorizationFullAccess AuthorizationStatus = "fullAccess"
	// AuthorizationWriteOnly indicates events may be created and modified but
	// not read back.
	AuthorizationWriteOnly AuthorizationStatus = "writeOnly"
	// AuthorizationUnknown indicates an unmapped backend status.
	AuthorizationUnknown AuthorizationStatus = "unknown"
)

// CalendarType classifies a calendar by its backing account mechanism.
type CalendarType string

const (
	CalendarTypeLocal        CalendarType = "local"
	CalendarTypeCalDAV       CalendarType = "calDAV"
	CalendarTypeExchange     CalendarType = "exchange"
	CalendarTypeSubscription CalendarType = "subscription"
	CalendarTypeBirthday     CalendarType = "birthday"
	CalendarTypeUnknown      CalendarType = "unknown"
)

// SourceType classifies the account/provider that owns a calendar.
type SourceType string

const (
	SourceTypeLocal      SourceType = "local"
	SourceTypeExchange   SourceType = "exchange"
	SourceTypeCalDAV     SourceType = "calDAV"
	SourceTypeMobileMe   SourceType = "mobileMe"
	SourceTypeSubscribed SourceType = "subscribed"
	SourceTypeBirthdays  SourceType = "birthdays"
	SourceTypeUnknown    SourceType = "unknown"
)

// ColorSpace records the color model of a native calendar color.
type ColorSpace string

const (
	ColorSpaceRGB        ColorSpace = "rgb"
	ColorSpaceMonochrome ColorSpace = "monochrome"
	ColorSpaceCMYK       ColorSpace = "cmyk"
	ColorSpaceLab        ColorSpace = "lab"
	ColorSpaceDeviceN    ColorSpace = "deviceN"
	ColorSpaceIndexed    ColorSpace = "indexed"
	ColorSpacePattern    ColorSpace = "pattern"
	ColorSpaceUnknown    ColorSpace = "unknown"
)

// Availability describes how an event blocks its attendee's schedule.
type Availability string

const (
	AvailabilityFree        Availability = "free"
	AvailabilityBusy        Availability = "busy"
	AvailabilityTentative   Availability = "tentative"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityUnknown     Availability = "unknown"
)

// Span controls how edits and removals affect recurring events.
type Span string

const (
	// SpanThisEvent affects only the addressed occurrence.
	SpanThisEvent Span = "thisEvent"
	// SpanFutureEvents affects the addressed occurrence and all later ones.
	SpanFutureEvents Span = "futureEvents"
)

// PredicateType tags a compiled query filter with its query family.
type PredicateType string

const (
	PredicateTypeEvent              PredicateType = "event"
	PredicateTypeReminder           PredicateType = "reminder"
	PredicateTypeIncompleteReminder PredicateType = "incompleteReminder"
	PredicateTypeCompletedReminder  PredicateType = "completedReminder"
)

// ErrorCode classifies errors from the access layer and its backends.
type ErrorCode string

const (
	// ErrorCodeValidation indicates caller-fixable input problems detected
	// before the backend is touched.
	ErrorCodeValidation ErrorCode = "validation"
	// ErrorCodeNotFound indicates a referenced entity does not exist.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodePermissionDenied indicates authorization is missing.
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	// ErrorCodeStore indicates a backend save/remove/commit failure.
	ErrorCodeStore ErrorCode = "store"
	// ErrorCodeUnknown indicates an unmapped error.
	ErrorCodeUnknown ErrorCode = "unknown"
)

// Error is a typed package error for access-layer and backend operations.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "eventkit: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("eventkit: %s", e.Code)
	}
	return fmt.Sprintf("eventkit: %s: %s", e.Code, e.Message)
}

func validationErr(format string, args ...any) error {
	return &Error{Code: ErrorCodeValidation, Message: fmt.Sprintf(format, args...)}
}

func isNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrorCodeNotFound
}

// CalendarColor carries a calendar color in three coordinated forms: an RGBA
// hex approximation, the raw native channel values, and the original color
// space so callers can detect when the hex form is an approximation.
type CalendarColor struct {
	Hex        string     `json:"hex"`
	Components string     `json:"components"`
	Space      ColorSpace `json:"space"`
}

// Source is an account/provider that owns one or more calendars. Sources are
// owned by the backend and read-only from this layer.
type Source struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	SourceType SourceType `json:"sourceType"`
}

// Calendar is an immutable snapshot of one calendar.
//
// Source is the owning source's display title, not its identifier. Two
// sources sharing a title are therefore indistinguishable here; this mirrors
// the surface this layer replaces and is kept deliberately.
type Calendar struct {
	ID                         string        `json:"id"`
	Title                      string        `json:"title"`
	AllowsContentModifications bool          `json:"allowsContentModifications"`
	Type                       CalendarType  `json:"type"`
	Color                      CalendarColor `json:"color"`
	Source                     string        `json:"source"`
	AllowedEntityTypes         []EntityType  `json:"allowedEntityTypes"`
}

// Event is an immutable snapshot of one calendar event. Optional fields are
// nil when the backend has no value for them.
type Event struct {
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Notes              *string      `json:"notes"`
	StartDate          time.Time    `json:"startDate"`
	EndDate            time.Time    `json:"endDate"`
	IsAllDay           bool         `json:"isAllDay"`
	CalendarID         string       `json:"calendarId"`
	CalendarTitle      string       `json:"calendarTitle"`
	Location           *string      `json:"location"`
	URL                *string      `json:"url"`
	HasAlarms          bool         `json:"hasAlarms"`
	Availability       Availability `json:"availability"`
	ExternalIdentifier *string      `json:"externalIdentifier"`
}

// Reminder is an immutable snapshot of one reminder.
type Reminder struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Notes              *string    `json:"notes"`
	CalendarID         string     `json:"calendarId"`
	CalendarTitle      string     `json:"calendarTitle"`
	Completed          bool       `json:"completed"`
	CompletionDate     *time.Time `json:"completionDate"`
	DueDate            *time.Time `json:"dueDate"`
	StartDate          *time.Time `json:"startDate"`
	Priority           int        `json:"priority"`
	HasAlarms          bool       `json:"hasAlarms"`
	ExternalIdentifier *string    `json:"externalIdentifier"`
}

// CalendarItem is a tagged union holding either an event or a reminder.
// Exactly one of Event and Reminder is non-nil, matching Kind.
type CalendarItem struct {
	Kind     EntityType
	Event    *Event
	Reminder *Reminder
}

// MarshalJSON encodes the item as {"type": ..., "item": ...}.
func (i CalendarItem) MarshalJSON() ([]byte, error) {
	var item any
	switch i.Kind {
	case EntityTypeEvent:
		item = i.Event
	case EntityTypeReminder:
		item = i.Reminder
	}
	return json.Marshal(struct {
		Type EntityType `json:"type"`
		Item any        `json:"item"`
	}{Type: i.Kind, Item: item})
}

// ColorData is the write-path color input: an #RRGGBB or #RRGGBBAA hex string.
type ColorData struct {
	Hex string `json:"hex"`
}

// CalendarData is the mutation DTO for calendars. An empty ID means create;
// a populated ID means update. EntityType is required for creates and is used
// for entity-type compatibility checks on updates. SourceID, when set on a
// create, must name an existing source; when empty the backend default source
// is used.
type CalendarData struct {
	ID         string     `json:"id,omitempty"`
	Title      string     `json:"title"`
	SourceID   string     `json:"sourceId,omitempty"`
	EntityType EntityType `json:"entityType"`
	Color      *ColorData `json:"color,omitempty"`
}

// EventData is the mutation DTO for events. Nil pointer fields mean "no
// change" on update and "absent" on create. CalendarID, StartDate and EndDate
// are required for creates.
type EventData struct {
	ID           string       `json:"id,omitempty"`
	Title        string       `json:"title"`
	Notes        *string      `json:"notes,omitempty"`
	StartDate    *time.Time   `json:"startDate,omitempty"`
	EndDate      *time.Time   `json:"endDate,omitempty"`
	IsAllDay     *bool        `json:"isAllDay,omitempty"`
	CalendarID   string       `json:"calendarId,omitempty"`
	Location     *string      `json:"location,omitempty"`
	URL          *string      `json:"url,omitempty"`
	Availability Availability `json:"availability,omitempty"`
}

// ReminderData is the mutation DTO for reminders. Nil pointer fields mean "no
// change" on update and "absent" on create. CalendarID is required for
// creates. Setting Completed to true stamps the completion date with the
// current time unless the reminder was already complete; setting it to false
// clears the completion date.
type ReminderData struct {
	ID         string     `json:"id,omitempty"`
	Title      string     `json:"title"`
	Notes      *string    `json:"notes,omitempty"`
	CalendarID string     `json:"calendarId,omitempty"`
	Completed  *bool      `json:"completed,omitempty"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	Priority   *int       `json:"priority,omitempty"`
}
