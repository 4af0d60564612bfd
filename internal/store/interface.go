package store

import (
	"io"

	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// CheckpointStore persists one serialized run snapshot per thread.
// Save overwrites; Load distinguishes "no checkpoint" from a store error.
type CheckpointStore interface {
	SaveCheckpoint(threadID string, snapshot []byte) error
	LoadCheckpoint(threadID string) ([]byte, bool, error)
	DeleteCheckpoint(threadID string) error
}

// PreferenceCache maps a user identifier to that user's latest saved
// preference. Last write wins; entries never expire.
type PreferenceCache interface {
	GetPreference(userID string) (string, bool, error)
	SetPreference(userID, preference string) error
}

// SupportData is the read contract the fetcher capabilities need from the
// underlying support database. The core never inspects how the data is kept.
type SupportData interface {
	FetchArticles(accountID string, tags []string) ([]models.Record, error)
	FetchPreviousTickets(userID string) ([]models.Record, error)
	FetchReservations(userID string) ([]models.Record, error)
	AvailableTags(accountID string) ([]string, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the full persistence interface. It composes focused
// sub-interfaces so clients can depend on only what they use.
type Store interface {
	io.Closer
	Migrator
	CheckpointStore
	PreferenceCache
	SupportData
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store           = (*DB)(nil)
	_ CheckpointStore = (*DB)(nil)
	_ PreferenceCache = (*DB)(nil)
	_ SupportData     = (*DB)(nil)
)
