package eventkit

import (
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestDateComponentsResolve(t *testing.T) {
	dc := DateComponents{Year: 2026, Month: 9, Day: 1, Hour: 14, Minute: 30, Second: 15, HasTime: true}
	got, ok := dc.Resolve(time.UTC)
	be.True(t, ok)
	be.Equal(t, got, time.Date(2026, 9, 1, 14, 30, 15, 0, time.UTC))
}

func TestDateComponentsResolveRejectsImpossibleDates(t *testing.T) {
	// Feb 30 normalizes to Mar 2; the drift must be rejected, not silently
	// accepted.
	_, ok := DateComponents{Year: 2026, Month: 2, Day: 30}.Resolve(time.UTC)
	be.Equal(t, ok, false)

	_, ok = DateComponents{}.Resolve(time.UTC)
	be.Equal(t, ok, false)

	_, ok = DateComponents{Year: 2026, Month: 13, Day: 1}.Resolve(time.UTC)
	be.Equal(t, ok, false)
}

func TestComponentsOf(t *testing.T) {
	dc := ComponentsOf(time.Date(2026, 9, 1, 8, 45, 30, 0, time.UTC), time.UTC)
	be.Equal(t, dc, DateComponents{
		Year: 2026, Month: 9, Day: 1,
		Hour: 8, Minute: 45, Second: 30,
		HasTime: true,
	})

	back, ok := dc.Resolve(time.UTC)
	be.True(t, ok)
	be.Equal(t, back, time.Date(2026, 9, 1, 8, 45, 30, 0, time.UTC))
}

func TestEntityMask(t *testing.T) {
	both := EntityMaskEvent | EntityMaskReminder
	be.True(t, both.Has(EntityMaskEvent))
	be.True(t, both.Has(EntityMaskReminder))
	be.Equal(t, EntityMaskEvent.Has(EntityMaskReminder), false)
}
