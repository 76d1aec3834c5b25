package eventkit

// Normalizers from raw backend codes to the stable string enums. All of them
// are total: codes outside the known range map to the unknown tag.

func calendarTypeTag(raw RawCalendarType) CalendarType {
	switch raw {
	case RawCalendarTypeLocal:
		return CalendarTypeLocal
	case RawCalendarTypeCalDAV:
		return CalendarTypeCalDAV
	case RawCalendarTypeExchange:
		return CalendarTypeExchange
	case RawCalendarTypeSubscription:
		return CalendarTypeSubscription
	case RawCalendarTypeBirthday:
		return CalendarTypeBirthday
	default:
		return CalendarTypeUnknown
	}
}

func sourceTypeTag(raw RawSourceType) SourceType {
	switch raw {
	case RawSourceTypeLocal:
		return SourceTypeLocal
	case RawSourceTypeExchange:
		return SourceTypeExchange
	case RawSourceTypeCalDAV:
		return SourceTypeCalDAV
	case RawSourceTypeMobileMe:
		return SourceTypeMobileMe
	case RawSourceTypeSubscribed:
		return SourceTypeSubscribed
	case RawSourceTypeBirthdays:
		return SourceTypeBirthdays
	default:
		return SourceTypeUnknown
	}
}

func colorSpaceTag(raw RawColorSpace) ColorSpace {
	switch raw {
	case RawColorSpaceMonochrome:
		return ColorSpaceMonochrome
	case RawColorSpaceRGB:
		return ColorSpaceRGB
	case RawColorSpaceCMYK:
		return ColorSpaceCMYK
	case RawColorSpaceLab:
		return ColorSpaceLab
	case RawColorSpaceDeviceN:
		return ColorSpaceDeviceN
	case RawColorSpaceIndexed:
		return ColorSpaceIndexed
	case RawColorSpacePattern:
		return ColorSpacePattern
	default:
		return ColorSpaceUnknown
	}
}

func availabilityTag(raw RawAvailability) Availability {
	switch raw {
	case RawAvailabilityBusy:
		return AvailabilityBusy
	case RawAvailabilityFree:
		return AvailabilityFree
	case RawAvailabilityTentative:
		return AvailabilityTentative
	case RawAvailabilityUnavailable:
		return AvailabilityUnavailable
	default:
		return AvailabilityUnknown
	}
}

// rawAvailability is the write-path inverse of availabilityTag. It reports
// false for tags that cannot be stored.
func rawAvailability(tag Availability) (RawAvailability, bool) {
	switch tag {
	case AvailabilityBusy:
		return RawAvailabilityBusy, true
	case AvailabilityFree:
		return RawAvailabilityFree, true
	case AvailabilityTentative:
		return RawAvailabilityTentative, true
	case AvailabilityUnavailable:
		return RawAvailabilityUnavailable, true
	default:
		return RawAvailabilityNotSupported, false
	}
}

// authorizationTag folds OS-version differences: backends without granular
// access statuses report a plain authorized grant where granular ones report
// fullAccess or writeOnly.
func authorizationTag(raw RawAuthorization, granular bool) AuthorizationStatus {
	switch raw {
	case RawAuthorizationNotDetermined:
		return AuthorizationNotDetermined
	case RawAuthorizationRestricted:
		return AuthorizationRestricted
	case RawAuthorizationDenied:
		return AuthorizationDenied
	case RawAuthorizationFullAccess:
		if granular {
			return AuthorizationFullAccess
		}
		return AuthorizationAuthorized
	case RawAuthorizationWriteOnly:
		return AuthorizationWriteOnly
	default:
		return AuthorizationUnknown
	}
}

func entityTypes(mask EntityMask) []EntityType {
	types := make([]EntityType, 0, 2)
	if mask.Has(EntityMaskEvent) {
		types = append(types, EntityTypeEvent)
	}
	if mask.Has(EntityMaskReminder) {
		types = append(types, EntityTypeReminder)
	}
	return types
}

func validEntityType(entity EntityType) bool {
	return entity == EntityTypeEvent || entity == EntityTypeReminder
}

func validSpan(span Span) bool {
	return span == SpanThisEvent || span == SpanFutureEvents
}
