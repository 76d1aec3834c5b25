package eventkit

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestAvailabilityTags(t *testing.T) {
	be.Equal(t, availabilityTag(RawAvailabilityBusy), AvailabilityBusy)
	be.Equal(t, availabilityTag(RawAvailabilityFree), AvailabilityFree)
	be.Equal(t, availabilityTag(RawAvailabilityNotSupported), AvailabilityUnknown)
	be.Equal(t, availabilityTag(RawAvailability(42)), AvailabilityUnknown)

	raw, ok := rawAvailability(AvailabilityTentative)
	be.True(t, ok)
	be.Equal(t, raw, RawAvailabilityTentative)

	_, ok = rawAvailability(AvailabilityUnknown)
	be.Equal(t, ok, false)
}

func TestAuthorizationTagFoldsGranularity(t *testing.T) {
	be.Equal(t, authorizationTag(RawAuthorizationFullAccess, true), AuthorizationFullAccess)
	be.Equal(t, authorizationTag(RawAuthorizationFullAccess, false), AuthorizationAuthorized)
	be.Equal(t, authorizationTag(RawAuthorizationWriteOnly, true), AuthorizationWriteOnly)
	be.Equal(t, authorizationTag(RawAuthorizationNotDetermined, false), AuthorizationNotDetermined)
	be.Equal(t, authorizationTag(RawAuthorizationDenied, true), AuthorizationDenied)
	be.Equal(t, authorizationTag(RawAuthorization(99), true), AuthorizationUnknown)
}

func TestCalendarAndSourceTypeTags(t *testing.T) {
	be.Equal(t, calendarTypeTag(RawCalendarTypeCalDAV), CalendarTypeCalDAV)
	be.Equal(t, calendarTypeTag(RawCalendarType(42)), CalendarTypeUnknown)
	be.Equal(t, sourceTypeTag(RawSourceTypeMobileMe), SourceTypeMobileMe)
	be.Equal(t, sourceTypeTag(RawSourceType(42)), SourceTypeUnknown)
	be.Equal(t, colorSpaceTag(RawColorSpaceDeviceN), ColorSpaceDeviceN)
	be.Equal(t, colorSpaceTag(RawColorSpace(42)), ColorSpaceUnknown)
}

func TestEntityTypesFromMask(t *testing.T) {
	be.Equal(t, entityTypes(EntityMaskEvent), []EntityType{EntityTypeEvent})
	be.Equal(t, entityTypes(EntityMaskEvent|EntityMaskReminder), []EntityType{EntityTypeEvent, EntityTypeReminder})
	be.Equal(t, len(entityTypes(0)), 0)
}
