// Package ekcal is a lightweight index for the calendar subpackages in this
// module.
//
// This root package is documentation-only. Import specific subpackages to use
// concrete helpers.
//
// Available subpackages:
//   - github.com/spachava753/ekcal/eventkit
//     Typed access layer over a calendar/reminder store: stable data model,
//     authorization, predicates, and deferred-commit mutations.
//   - github.com/spachava753/ekcal/memstore
//     In-memory eventkit backend with full commit/reset buffering. Useful for
//     tests and for exercising the session without a real store.
//   - github.com/spachava753/ekcal/caldavstore
//     CalDAV-backed eventkit backend (events as VEVENT, reminders as VTODO).
//
// Discovery workflow for agents:
//   - Run: go doc github.com/spachava753/ekcal
//   - Then drill in with:
//     go doc github.com/spachava753/ekcal/eventkit
//     go doc github.com/spachava753/ekcal/memstore
//     go doc github.com/spachava753/ekcal/caldavstore
package ekcal
