package eventkit

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{Code: ErrorCodeValidation, Message: "calendar id is required"}
	be.Equal(t, err.Error(), "eventkit: validation: calendar id is required")

	be.Equal(t, (&Error{Code: ErrorCodeNotFound}).Error(), "eventkit: not_found")
}

func TestIsNotFoundUnwraps(t *testing.T) {
	inner := &Error{Code: ErrorCodeNotFound, Message: "event x not found"}
	be.True(t, isNotFound(inner))
	be.True(t, isNotFound(fmt.Errorf("query failed: %w", inner)))
	be.Equal(t, isNotFound(&Error{Code: ErrorCodeStore}), false)
	be.Equal(t, isNotFound(fmt.Errorf("plain")), false)
}

func TestCalendarItemJSONShape(t *testing.T) {
	ev := Event{
		ID:           "ev-1",
		Title:        "Standup",
		StartDate:    time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 9, 1, 9, 15, 0, 0, time.UTC),
		CalendarID:   "cal-1",
		Availability: AvailabilityBusy,
	}
	raw, err := json.Marshal(CalendarItem{Kind: EntityTypeEvent, Event: &ev})
	be.Err(t, err, nil)

	var decoded struct {
		Type string          `json:"type"`
		Item json.RawMessage `json:"item"`
	}
	be.Err(t, json.Unmarshal(raw, &decoded), nil)
	be.Equal(t, decoded.Type, "event")

	var fields map[string]any
	be.Err(t, json.Unmarshal(decoded.Item, &fields), nil)
	be.Equal(t, fields["id"], "ev-1")
	be.Equal(t, fields["title"], "Standup")
	// absent optionals are emitted as explicit nulls
	notes, present := fields["notes"]
	be.True(t, present)
	be.Equal(t, notes, nil)
}

func TestMapEventDefaults(t *testing.T) {
	ev := mapEvent(NativeEvent{ID: "ev-1", Availability: RawAvailabilityNotSupported})
	be.Equal(t, ev.Title, "Untitled Event")
	be.Equal(t, ev.Availability, AvailabilityUnknown)
	be.Equal(t, ev.Notes, nil)
}

func TestMapReminderResolvesComponents(t *testing.T) {
	due := DateComponents{Year: 2026, Month: 9, Day: 2, Hour: 17, HasTime: true}
	bogus := DateComponents{Year: 2026, Month: 2, Day: 30}
	rem := mapReminder(NativeReminder{ID: "rem-1", DueDate: &due, StartDate: &bogus}, time.UTC)
	be.Equal(t, rem.Title, "Untitled Reminder")
	be.True(t, rem.DueDate != nil)
	be.Equal(t, *rem.DueDate, time.Date(2026, 9, 2, 17, 0, 0, 0, time.UTC))
	be.Equal(t, rem.StartDate, nil)
}
