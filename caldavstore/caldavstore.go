// Package caldavstore implements eventkit.Backend against a CalDAV server.
//
// Calendars map to CalDAV collections, events to VEVENT objects, and
// reminders to VTODO objects. Entity identifiers are object paths on the
// server; external identifiers are iCal UIDs, which recurring families
// share. Calendar management (MKCALENDAR) is not implemented; calendar saves
// and removes fail with a store error.
//
// Authorization has no user-consent dialog over CalDAV: requesting access
// probes the account principal and reports granted when the credentials
// work. The store advertises no granular access statuses, so a working
// account reads as authorized.
package caldavstore

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-webdav/caldav"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/spachava753/ekcal/eventkit"
)

// Config carries CalDAV connection settings.
type Config struct {
	URL      string        `envconfig:"EKCAL_CALDAV_URL"`
	Username string        `envconfig:"EKCAL_CALDAV_USERNAME"`
	Password string        `envconfig:"EKCAL_CALDAV_PASSWORD"`
	Timeout  time.Duration `envconfig:"EKCAL_CALDAV_TIMEOUT" default:"30s"`
}

// ConfigFromEnv reads Config from EKCAL_CALDAV_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Store is a CalDAV-backed eventkit.Backend.
type Store struct {
	cfg    Config
	client *caldav.Client
	log    zerolog.Logger
	host   string

	mu        sync.Mutex
	status    eventkit.RawAuthorization
	homeSet   string
	calendars []caldav.Calendar
	staged    []func(ctx context.Context) error
}

var _ eventkit.Backend = (*Store)(nil)

// basicAuthTransport adds Basic Auth to every request.
type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// Open builds a store for the configured server. It does not touch the
// network; discovery happens lazily on first use.
func Open(cfg Config, opts ...Option) (*Store, error) {
	if cfg.URL == "" {
		return nil, &eventkit.Error{Code: eventkit.ErrorCodeValidation, Message: "caldav url is required"}
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, &eventkit.Error{Code: eventkit.ErrorCodeValidation, Message: "caldav credentials are required"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, &eventkit.Error{Code: eventkit.ErrorCodeValidation, Message: "invalid caldav url: " + err.Error()}
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{username: cfg.Username, password: cfg.Password},
		Timeout:   cfg.Timeout,
	}
	client, err := caldav.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, &eventkit.Error{Code: eventkit.ErrorCodeStore, Message: "connect to CalDAV: " + err.Error()}
	}

	s := &Store{
		cfg:    cfg,
		client: client,
		log:    zerolog.Nop(),
		host:   parsed.Host,
		status: eventkit.RawAuthorizationNotDetermined,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.Timeout)
}

// Capabilities implements eventkit.Backend.
func (s *Store) Capabilities() eventkit.Capabilities {
	return eventkit.Capabilities{GranularAccessStatus: false, DelegateSources: false}
}

// RequestAccess implements eventkit.Backend by probing the account
// principal. The grant callback fires on a separate goroutine.
func (s *Store) RequestAccess(entity eventkit.EntityType, level eventkit.AccessLevel, grant func(granted bool, err error)) {
	_, _ = entity, level
	go func() {
		ctx, cancel := s.ctx()
		defer cancel()
		_, err := s.client.FindCurrentUserPrincipal(ctx)

		s.mu.Lock()
		if err != nil {
			s.status = eventkit.RawAuthorizationDenied
		} else {
			s.status = eventkit.RawAuthorizationFullAccess
		}
		s.mu.Unlock()

		if err != nil {
			s.log.Debug().Err(err).Msg("principal probe failed")
			grant(false, nil)
			return
		}
		grant(true, nil)
	}()
}

// AuthorizationStatus implements eventkit.Backend. Both entity tracks share
// the account's single credential state.
func (s *Store) AuthorizationStatus(entity eventkit.EntityType) eventkit.RawAuthorization {
	_ = entity
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Sources implements eventkit.Backend. The account is the single source.
func (s *Store) Sources() []eventkit.NativeSource {
	return []eventkit.NativeSource{{
		ID:    s.host,
		Title: s.host,
		Type:  eventkit.RawSourceTypeCalDAV,
	}}
}

// DelegateSources implements eventkit.Backend.
func (s *Store) DelegateSources() []eventkit.NativeSource { return nil }

// Source implements eventkit.Backend.
func (s *Store) Source(id string) (eventkit.NativeSource, bool) {
	if id != s.host {
		return eventkit.NativeSource{}, false
	}
	return s.Sources()[0], true
}

// RefreshSources implements eventkit.Backend by dropping the cached
// discovery so the next read re-walks the server.
func (s *Store) RefreshSources() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.homeSet = ""
	s.calendars = nil
}

// discover walks principal -> home set -> calendars, caching the result.
func (s *Store) discover() ([]caldav.Calendar, error) {
	s.mu.Lock()
	if s.calendars != nil {
		cached := s.calendars
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	ctx, cancel := s.ctx()
	defer cancel()

	principal, err := s.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	homeSet, err := s.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, err
	}
	cals, err := s.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.homeSet = homeSet
	s.calendars = cals
	s.mu.Unlock()
	return cals, nil
}

// defaultColor is reported for every collection; CalDAV calendar color is a
// non-standard property this adapter does not read.
var defaultColor = eventkit.NativeColor{
	Components: []float64{0, 0.478, 1, 1},
	Space:      eventkit.RawColorSpaceRGB,
}

func (s *Store) nativeCalendar(cal caldav.Calendar) eventkit.NativeCalendar {
	return eventkit.NativeCalendar{
		ID:                  cal.Path,
		Title:               cal.Name,
		AllowsModifications: true,
		Type:                eventkit.RawCalendarTypeCalDAV,
		Color:               defaultColor,
		SourceID:            s.host,
		SourceTitle:         s.host,
		AllowedEntities:     supportedEntities(cal),
	}
}

func supportedEntities(cal caldav.Calendar) eventkit.EntityMask {
	if len(cal.SupportedComponentSet) == 0 {
		// Servers that do not advertise a component set accept both.
		return eventkit.EntityMaskEvent | eventkit.EntityMaskReminder
	}
	var mask eventkit.EntityMask
	for _, comp := range cal.SupportedComponentSet {
		switch strings.ToUpper(comp) {
		case "VEVENT":
			mask |= eventkit.EntityMaskEvent
		case "VTODO":
			mask |= eventkit.EntityMaskReminder
		}
	}
	return mask
}

// Calendars implements eventkit.Backend.
func (s *Store) Calendars(entity eventkit.EntityType) []eventkit.NativeCalendar {
	cals, err := s.discover()
	if err != nil {
		s.log.Debug().Err(err).Msg("calendar discovery failed")
		return nil
	}
	mask := eventkit.EntityMaskEvent
	if entity == eventkit.EntityTypeReminder {
		mask = eventkit.EntityMaskReminder
	}
	out := make([]eventkit.NativeCalendar, 0, len(cals))
	for _, cal := range cals {
		native := s.nativeCalendar(cal)
		if native.AllowedEntities.Has(mask) {
			out = append(out, native)
		}
	}
	return out
}

// Calendar implements eventkit.Backend.
func (s *Store) Calendar(id string) (eventkit.NativeCalendar, bool) {
	cals, err := s.discover()
	if err != nil {
		s.log.Debug().Err(err).Msg("calendar discovery failed")
		return eventkit.NativeCalendar{}, false
	}
	for _, cal := range cals {
		if cal.Path == id {
			return s.nativeCalendar(cal), true
		}
	}
	return eventkit.NativeCalendar{}, false
}

// DefaultCalendar implements eventkit.Backend. The first collection
// supporting the entity type is the default.
func (s *Store) DefaultCalendar(entity eventkit.EntityType) (eventkit.NativeCalendar, bool) {
	cals := s.Calendars(entity)
	if len(cals) == 0 {
		return eventkit.NativeCalendar{}, false
	}
	return cals[0], true
}

// SaveCalendar implements eventkit.Backend.
func (s *Store) SaveCalendar(draft eventkit.CalendarDraft, commit bool) (string, error) {
	_, _ = draft, commit
	return "", &eventkit.Error{Code: eventkit.ErrorCodeStore, Message: "calendar management is not supported by the CalDAV backend"}
}

// RemoveCalendar implements eventkit.Backend.
func (s *Store) RemoveCalendar(id string, commit bool) error {
	_, _ = id, commit
	return &eventkit.Error{Code: eventkit.ErrorCodeStore, Message: "calendar management is not supported by the CalDAV backend"}
}

// Commit implements eventkit.Backend. Buffered object writes run in order;
// the first failure stops the flush, leaving the failed and later writes
// buffered.
func (s *Store) Commit() error {
	s.mu.Lock()
	staged := s.staged
	s.mu.Unlock()

	for i, op := range staged {
		ctx, cancel := s.ctx()
		err := op(ctx)
		cancel()
		if err != nil {
			s.mu.Lock()
			s.staged = s.staged[i:]
			s.mu.Unlock()
			return &eventkit.Error{Code: eventkit.ErrorCodeStore, Message: err.Error()}
		}
	}
	s.mu.Lock()
	s.staged = nil
	s.mu.Unlock()
	return nil
}

// Reset implements eventkit.Backend.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}

func (s *Store) stage(commit bool, op func(ctx context.Context) error) error {
	if commit {
		ctx, cancel := s.ctx()
		defer cancel()
		if err := op(ctx); err != nil {
			return &eventkit.Error{Code: eventkit.ErrorCodeStore, Message: err.Error()}
		}
		return nil
	}
	s.mu.Lock()
	s.staged = append(s.staged, op)
	s.mu.Unlock()
	return nil
}
