// Package engine implements the provider synchronization core.
//
// The package is organized around four pieces:
//
//   - [Coordinator] : per-provider state machine enforcing single-flight
//     syncs, the recently-synced skip policy, and the token precheck; owns
//     the cancellable task running a pipeline
//   - [FilePipeline] : recursive folder listing → supported-file filtering →
//     bounded-concurrency download+extract → normalization → persistence
//   - [APIPipeline] : paginated remote library listing → normalization →
//     persistence
//   - [Normalizer] : shared find-or-create resolution of artists, albums,
//     and tracks, deduplicating against both persisted records and the
//     current run's accumulator
//
// Every terminal outcome of a start command is expressed as a
// [models.Status] published through a [Reporter]; nothing escapes as a
// panic or an unhandled error to the process boundary.
//
// # Concurrency
//
// Each provider's sync runs as an independently cancellable goroutine. The
// coordinator's session map is the single authoritative record of "is this
// provider syncing"; all mutation happens under one mutex with no lookups
// across a blocking call. Cancellation is cooperative: pipelines observe
// their context between network calls and never write to the database or
// report status after it is cancelled.
package engine
