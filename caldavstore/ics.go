package caldavstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/spachava753/ekcal/eventkit"
)

const (
	transpOpaque      = "OPAQUE"
	transpTransparent = "TRANSPARENT"

	statusCompleted   = "COMPLETED"
	statusNeedsAction = "NEEDS-ACTION"
)

// eventFromObject maps the first VEVENT of a calendar object into a backend
// snapshot. The object path doubles as the item id.
func eventFromObject(obj caldav.CalendarObject, cal eventkit.NativeCalendar) (eventkit.NativeEvent, bool) {
	if obj.Data == nil {
		return eventkit.NativeEvent{}, false
	}
	for _, comp := range obj.Data.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		ev := eventkit.NativeEvent{
			ID:            obj.Path,
			CalendarID:    cal.ID,
			CalendarTitle: cal.Title,
			Availability:  eventkit.RawAvailabilityNotSupported,
		}
		if prop := comp.Props.Get(ical.PropUID); prop != nil && prop.Value != "" {
			uid := prop.Value
			ev.ExternalID = &uid
		}
		if prop := comp.Props.Get(ical.PropSummary); prop != nil && prop.Value != "" {
			title := prop.Value
			ev.Title = &title
		}
		if prop := comp.Props.Get(ical.PropDescription); prop != nil && prop.Value != "" {
			notes := prop.Value
			ev.Notes = &notes
		}
		if prop := comp.Props.Get(ical.PropLocation); prop != nil && prop.Value != "" {
			loc := prop.Value
			ev.Location = &loc
		}
		if prop := comp.Props.Get(ical.PropURL); prop != nil && prop.Value != "" {
			u := prop.Value
			ev.URL = &u
		}
		if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil {
			if t, err := prop.DateTime(time.UTC); err == nil {
				ev.StartDate = t
			}
			if prop.Params.Get(ical.ParamValue) == string(ical.ValueDate) {
				ev.IsAllDay = true
			}
		}
		if prop := comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
			if t, err := prop.DateTime(time.UTC); err == nil {
				ev.EndDate = t
			}
		}
		if ev.EndDate.IsZero() {
			ev.EndDate = ev.StartDate
		}
		if prop := comp.Props.Get(ical.PropTransparency); prop != nil {
			switch strings.ToUpper(prop.Value) {
			case transpTransparent:
				ev.Availability = eventkit.RawAvailabilityFree
			case transpOpaque:
				ev.Availability = eventkit.RawAvailabilityBusy
			}
		}
		for _, child := range comp.Children {
			if child.Name == ical.CompAlarm {
				ev.HasAlarms = true
				break
			}
		}
		return ev, true
	}
	return eventkit.NativeEvent{}, false
}

// todoFromObject maps the first VTODO of a calendar object into a backend
// snapshot.
func todoFromObject(obj caldav.CalendarObject, cal eventkit.NativeCalendar) (eventkit.NativeReminder, bool) {
	if obj.Data == nil {
		return eventkit.NativeReminder{}, false
	}
	for _, comp := range obj.Data.Children {
		if comp.Name != ical.CompToDo {
			continue
		}
		rem := eventkit.NativeReminder{
			ID:            obj.Path,
			CalendarID:    cal.ID,
			CalendarTitle: cal.Title,
		}
		if prop := comp.Props.Get(ical.PropUID); prop != nil && prop.Value != "" {
			uid := prop.Value
			rem.ExternalID = &uid
		}
		if prop := comp.Props.Get(ical.PropSummary); prop != nil && prop.Value != "" {
			title := prop.Value
			rem.Title = &title
		}
		if prop := comp.Props.Get(ical.PropDescription); prop != nil && prop.Value != "" {
			notes := prop.Value
			rem.Notes = &notes
		}
		if prop := comp.Props.Get(ical.PropStatus); prop != nil && strings.EqualFold(prop.Value, statusCompleted) {
			rem.Completed = true
		}
		if prop := comp.Props.Get(ical.PropCompleted); prop != nil {
			if t, err := prop.DateTime(time.UTC); err == nil {
				rem.Completed = true
				rem.CompletionDate = &t
			}
		}
		if dc, ok := dateComponentsOf(comp.Props.Get(ical.PropDue)); ok {
			rem.DueDate = &dc
		}
		if dc, ok := dateComponentsOf(comp.Props.Get(ical.PropDateTimeStart)); ok {
			rem.StartDate = &dc
		}
		if prop := comp.Props.Get(ical.PropPriority); prop != nil {
			if n, err := strconv.Atoi(prop.Value); err == nil && n >= 0 && n <= 9 {
				rem.Priority = n
			}
		}
		for _, child := range comp.Children {
			if child.Name == ical.CompAlarm {
				rem.HasAlarms = true
				break
			}
		}
		return rem, true
	}
	return eventkit.NativeReminder{}, false
}

func dateComponentsOf(prop *ical.Prop) (eventkit.DateComponents, bool) {
	if prop == nil {
		return eventkit.DateComponents{}, false
	}
	t, err := prop.DateTime(time.UTC)
	if err != nil {
		return eventkit.DateComponents{}, false
	}
	dc := eventkit.ComponentsOf(t, time.UTC)
	if prop.Params.Get(ical.ParamValue) == string(ical.ValueDate) {
		dc.HasTime = false
		dc.Hour, dc.Minute, dc.Second = 0, 0, 0
	}
	return dc, true
}

// encodeEvent builds the VCALENDAR body for a PUT of one event.
func encodeEvent(draft eventkit.EventDraft, uid string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//ekcal//caldavstore//EN")

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetText(ical.PropSummary, draft.Title)
	if draft.Notes != nil && *draft.Notes != "" {
		ev.Props.SetText(ical.PropDescription, *draft.Notes)
	}
	if draft.Location != nil && *draft.Location != "" {
		ev.Props.SetText(ical.PropLocation, *draft.Location)
	}
	if draft.URL != nil && *draft.URL != "" {
		ev.Props.SetText(ical.PropURL, *draft.URL)
	}
	if draft.IsAllDay {
		ev.Props.SetDate(ical.PropDateTimeStart, draft.StartDate)
		ev.Props.SetDate(ical.PropDateTimeEnd, draft.EndDate)
	} else {
		ev.Props.SetDateTime(ical.PropDateTimeStart, draft.StartDate.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeEnd, draft.EndDate.UTC())
	}
	switch draft.Availability {
	case eventkit.RawAvailabilityFree:
		ev.Props.SetText(ical.PropTransparency, transpTransparent)
	case eventkit.RawAvailabilityBusy, eventkit.RawAvailabilityTentative, eventkit.RawAvailabilityUnavailable:
		ev.Props.SetText(ical.PropTransparency, transpOpaque)
	}
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	cal.Children = append(cal.Children, ev.Component)
	return cal
}

// encodeTodo builds the VCALENDAR body for a PUT of one reminder.
func encodeTodo(draft eventkit.ReminderDraft, uid string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//ekcal//caldavstore//EN")

	todo := &ical.Component{Name: ical.CompToDo, Props: make(ical.Props)}
	todo.Props.SetText(ical.PropUID, uid)
	todo.Props.SetText(ical.PropSummary, draft.Title)
	if draft.Notes != nil && *draft.Notes != "" {
		todo.Props.SetText(ical.PropDescription, *draft.Notes)
	}
	if draft.Completed {
		todo.Props.SetText(ical.PropStatus, statusCompleted)
		if draft.CompletionDate != nil {
			todo.Props.SetDateTime(ical.PropCompleted, draft.CompletionDate.UTC())
		}
	} else {
		todo.Props.SetText(ical.PropStatus, statusNeedsAction)
	}
	setComponentsProp(todo.Props, ical.PropDue, draft.DueDate)
	setComponentsProp(todo.Props, ical.PropDateTimeStart, draft.StartDate)
	if draft.Priority > 0 {
		todo.Props.SetText(ical.PropPriority, strconv.Itoa(draft.Priority))
	}
	todo.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	cal.Children = append(cal.Children, todo)
	return cal
}

func setComponentsProp(props ical.Props, name string, dc *eventkit.DateComponents) {
	if dc == nil {
		return
	}
	t, ok := dc.Resolve(time.UTC)
	if !ok {
		return
	}
	if dc.HasTime {
		props.SetDateTime(name, t)
	} else {
		props.SetDate(name, t)
	}
}
