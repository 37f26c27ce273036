// Package domain defines the entities the REST mock dispatch engine
// operates on: services, operations, canned responses, and the small
// per-request contexts the dispatch pipeline builds and consumes.
//
// Entities are read-only from the dispatcher's point of view; they are
// owned by whatever loaded them (pkg/config, an admin API, a test fixture)
// and simply looked up through the pkg/store repository interfaces.
package domain
