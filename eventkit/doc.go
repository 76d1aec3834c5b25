// Package eventkit provides a typed access layer over a platform
// calendar/reminder store.
//
// The package exposes one Session over a pluggable Backend and four groups
// of operations:
//
//   - Authorization: request and inspect event/reminder access, including the
//     weaker write-only event grant.
//   - Lookups: calendars, sources, events, and calendar items by identifier.
//   - Predicate queries: compiled event/reminder filters bound to calendar
//     sets and date ranges.
//   - Mutations: save/remove for calendars, events, and reminders with an
//     explicit deferred-commit option.
//
// The intended composition model is:
//
//	open -> request access -> build predicate -> query -> mutate -> commit
//
// # Transactional Model
//
// Every save and remove takes a commit flag. With commit=true the change is
// durable immediately. With commit=false it is buffered in the session and
// invisible to reads until Commit flushes all buffered changes together;
// Reset discards them instead. Buffered state is shared per session, so
// batch related writes with commit=false plus one Commit rather than issuing
// concurrent independent transactions.
//
// # Error Model
//
// Caller-fixable problems (bad entity type, predicate/query family mismatch,
// missing required create fields, malformed color hex) surface as *Error
// with ErrorCodeValidation before the backend is touched. Not-found
// conditions degrade to zero values plus false on lookups and (false, nil)
// on removes; they are never raised. Backend save/remove/commit failures are
// returned with the backend's descriptive message and are never retried
// automatically.
//
// # Concurrency
//
// Authorization requests and reminder fetches suspend on a backend
// completion callback; event queries and all other operations are
// backend-synchronous. Both query paths share one contract: a blocking call
// taking a context. A pending reminder fetch keeps its predicate alive until
// the callback fires and checks session liveness before resolving, so an
// abandoned wait cannot leave a dangling completion.
//
// # Backends
//
// The store itself is opaque behind the Backend interface. This module ships
// memstore (in-memory, for tests and development) and caldavstore (CalDAV
// servers, events as VEVENT and reminders as VTODO).
//
// # Composition Examples
//
// 1) List this week's events:
//
//	session := eventkit.Open(backend)
//	defer session.Close()
//
//	granted, err := session.RequestFullAccessToEvents(ctx)
//	if err != nil || !granted {
//		// handle
//	}
//
//	start := time.Now()
//	pred, err := session.EventPredicate(start, start.AddDate(0, 0, 7), nil)
//	if err != nil {
//		// handle
//	}
//	events, err := session.Events(ctx, pred)
//
// 2) Batch writes under one commit:
//
//	calID, err := session.SaveCalendar(eventkit.CalendarData{
//		Title:      "Projects",
//		EntityType: eventkit.EntityTypeReminder,
//		Color:      &eventkit.ColorData{Hex: "#FF0000FF"},
//	}, false)
//	if err != nil {
//		// handle
//	}
//
//	_, err = session.SaveReminder(eventkit.ReminderData{
//		Title:      "File the report",
//		CalendarID: calID,
//	}, false)
//	if err != nil {
//		session.Reset()
//		// handle
//	}
//
//	if err := session.Commit(); err != nil {
//		// buffered changes were not applied
//	}
//
// 3) Complete a reminder found by predicate:
//
//	pred, _ := session.IncompleteReminderPredicate(nil, nil, nil)
//	reminders, err := session.Reminders(ctx, pred)
//	if err != nil || len(reminders) == 0 {
//		// handle
//	}
//
//	completed := true
//	_, err = session.SaveReminder(eventkit.ReminderData{
//		ID:        reminders[0].ID,
//		Completed: &completed,
//	}, true)
package eventkit
