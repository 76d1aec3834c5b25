package caldavstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/spachava753/ekcal/caldavstore"
	"github.com/spachava753/ekcal/eventkit"
)

const liveTestFlagEnv = "EKCAL_CALDAV_LIVE_TEST"

// TestLiveEventLifecycle runs the full open/query/save/remove cycle against a
// real CalDAV account. It only runs when explicitly enabled and needs
// EKCAL_CALDAV_URL, EKCAL_CALDAV_USERNAME and EKCAL_CALDAV_PASSWORD set.
func TestLiveEventLifecycle(t *testing.T) {
	if os.Getenv(liveTestFlagEnv) != "1" {
		t.Skipf("set %s=1 to run live CalDAV integration tests", liveTestFlagEnv)
	}

	cfg, err := caldavstore.ConfigFromEnv()
	be.Err(t, err, nil)
	if cfg.URL == "" || cfg.Username == "" || cfg.Password == "" {
		t.Skip("set EKCAL_CALDAV_URL, EKCAL_CALDAV_USERNAME and EKCAL_CALDAV_PASSWORD to run live CalDAV integration tests")
	}

	store, err := caldavstore.Open(cfg)
	be.Err(t, err, nil)
	session := eventkit.Open(store)
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	granted, err := session.RequestFullAccessToEvents(ctx)
	be.Err(t, err, nil)
	be.True(t, granted)
	be.Equal(t, session.AuthorizationStatus(eventkit.EntityTypeEvent), eventkit.AuthorizationAuthorized)

	calendars := session.Calendars(eventkit.EntityTypeEvent)
	if len(calendars) == 0 {
		t.Skip("account has no event calendars")
	}
	target := calendars[0]

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	end := start.Add(30 * time.Minute)
	eventID, err := session.SaveEvent(eventkit.EventData{
		Title:      "ekcal live test",
		CalendarID: target.ID,
		StartDate:  &start,
		EndDate:    &end,
	}, "", true)
	be.Err(t, err, nil)
	be.True(t, eventID != "")

	removed := false
	defer func() {
		if removed {
			return
		}
		_, err := session.RemoveEvent(eventID, "", true)
		be.Err(t, err, nil)
	}()

	fetched, ok := session.Event(eventID)
	be.True(t, ok)
	be.Equal(t, fetched.Title, "ekcal live test")
	be.Equal(t, fetched.CalendarID, target.ID)

	pred, err := session.EventPredicate(start.Add(-time.Hour), end.Add(time.Hour), []string{target.ID})
	be.Err(t, err, nil)
	events, err := session.Events(ctx, pred)
	be.Err(t, err, nil)
	found := false
	for _, ev := range events {
		if ev.ID == eventID {
			found = true
		}
	}
	be.True(t, found)

	ok, err = session.RemoveEvent(eventID, "", true)
	be.Err(t, err, nil)
	be.True(t, ok)
	removed = true

	_, ok = session.Event(eventID)
	be.Equal(t, ok, false)
}
