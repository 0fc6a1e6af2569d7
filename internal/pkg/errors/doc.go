// Package errors defines the application error taxonomy.
//
// Lifecycle and recording errors (NOT_FOUND, INVALID_STATE, CONFLICT,
// INVALID_INPUT) surface to the caller immediately and must not be retried:
// they indicate a client or workflow bug. EXTERNAL_UNAVAILABLE is never
// surfaced as a hard failure from the enrichment pipeline; it is downgraded
// to an in-band degraded result so capture and export availability never
// couple to the analysis collaborator's availability.
package errors
