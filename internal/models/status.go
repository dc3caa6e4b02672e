package models

import "time"

// Status is the lifecycle status of a provider sync.
//
// Variants: [NotStarted] | [Syncing] | [Synced] | [SyncSkipped] | [Errored] | [Stopped].
// Statuses are transient: they are published over the status channel and
// consumed by the main process for display and by downstream workers as
// trigger signals. Consumers must tolerate duplicate Synced reports.
type Status interface {
	Kind() StatusKind
	isStatus()
}

// StatusKind discriminates [Status] variants for logging and serialization.
type StatusKind string

const (
	KindNotStarted  StatusKind = "not-started"
	KindSyncing     StatusKind = "syncing"
	KindSynced      StatusKind = "synced"
	KindSyncSkipped StatusKind = "sync-skipped"
	KindErrored     StatusKind = "errored"
	KindStopped     StatusKind = "stopped"
)

// NotStarted is reported for a provider that has never been synced.
type NotStarted struct{}

func (NotStarted) Kind() StatusKind { return KindNotStarted }
func (NotStarted) isStatus()        {}

// Syncing is reported when a pipeline begins.
type Syncing struct{}

func (Syncing) Kind() StatusKind { return KindSyncing }
func (Syncing) isStatus()        {}

// Synced is reported after persistence completes.
type Synced struct {
	LastSyncedAt    time.Time
	SyncedTracks    int
	TracksWithError int
}

func (Synced) Kind() StatusKind { return KindSynced }
func (Synced) isStatus()        {}

// SyncSkipped is reported when the recently-synced policy short-circuits a
// start command. It is not an error.
type SyncSkipped struct {
	LastSyncedAt time.Time
}

func (SyncSkipped) Kind() StatusKind { return KindSyncSkipped }
func (SyncSkipped) isStatus()        {}

// Errored is reported for token expiry, provider resolution failures, and
// pipeline-fatal failures.
type Errored struct {
	Err error
}

func (Errored) Kind() StatusKind { return KindErrored }
func (Errored) isStatus()        {}

// Stopped is reported when a provider's sync is cancelled by a stop command.
type Stopped struct{}

func (Stopped) Kind() StatusKind { return KindStopped }
func (Stopped) isStatus()        {}
