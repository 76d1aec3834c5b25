package eventkit

import "time"

// defaultPolicy is the single fill-in table for absent optional fields on
// read. Fields not listed here (notes, location, url, dates, external
// identifiers) stay nil when absent.
var defaultPolicy = struct {
	EventTitle    string
	ReminderTitle string
}{
	EventTitle:    "Untitled Event",
	ReminderTitle: "Untitled Reminder",
}

// The mappers below are total: a native snapshot always maps to a stable
// entity, with defaults applied instead of errors.

func mapSource(n NativeSource) Source {
	return Source{
		ID:         n.ID,
		Title:      n.Title,
		SourceType: sourceTypeTag(n.Type),
	}
}

func mapCalendar(n NativeCalendar) Calendar {
	return Calendar{
		ID:                         n.ID,
		Title:                      n.Title,
		AllowsContentModifications: n.AllowsModifications,
		Type:                       calendarTypeTag(n.Type),
		Color:                      encodeColor(n.Color),
		Source:                     n.SourceTitle,
		AllowedEntityTypes:         entityTypes(n.AllowedEntities),
	}
}

func mapEvent(n NativeEvent) Event {
	return Event{
		ID:                 n.ID,
		Title:              stringOr(n.Title, defaultPolicy.EventTitle),
		Notes:              n.Notes,
		StartDate:          n.StartDate,
		EndDate:            n.EndDate,
		IsAllDay:           n.IsAllDay,
		CalendarID:         n.CalendarID,
		CalendarTitle:      n.CalendarTitle,
		Location:           n.Location,
		URL:                n.URL,
		HasAlarms:          n.HasAlarms,
		Availability:       availabilityTag(n.Availability),
		ExternalIdentifier: n.ExternalID,
	}
}

// mapReminder resolves the partial due/start date components against loc;
// components that do not resolve yield a nil date.
func mapReminder(n NativeReminder, loc *time.Location) Reminder {
	return Reminder{
		ID:                 n.ID,
		Title:              stringOr(n.Title, defaultPolicy.ReminderTitle),
		Notes:              n.Notes,
		CalendarID:         n.CalendarID,
		CalendarTitle:      n.CalendarTitle,
		Completed:          n.Completed,
		CompletionDate:     n.CompletionDate,
		DueDate:            resolveComponents(n.DueDate, loc),
		StartDate:          resolveComponents(n.StartDate, loc),
		Priority:           n.Priority,
		HasAlarms:          n.HasAlarms,
		ExternalIdentifier: n.ExternalID,
	}
}

func stringOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func resolveComponents(dc *DateComponents, loc *time.Location) *time.Time {
	if dc == nil {
		return nil
	}
	t, ok := dc.Resolve(loc)
	if !ok {
		return nil
	}
	return &t
}
