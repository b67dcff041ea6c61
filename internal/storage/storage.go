package storage

import (
	"context"
	"errors"

	"github.com/vkrec/recommend-bot/internal/models"
)

// ErrNotFound is returned by lookups when no record matches.
var ErrNotFound = errors.New("storage: record not found")

// Store hands out a UnitOfWork per handler invocation. Implementations
// guarantee commit-or-rollback on every exit path of fn.
type Store interface {
	Do(ctx context.Context, fn func(UnitOfWork) error) error
	Close() error
}

// UnitOfWork is the storage surface a single message handler works against.
// All reads and writes inside one Do call share a transaction scope.
type UnitOfWork interface {
	// UserStatus returns the conversational state for a user, or
	// ErrNotFound when they have never interacted.
	UserStatus(userID int64) (*models.UserStatus, error)
	UpsertUserStatus(status *models.UserStatus) error

	// CuratedBySubjects returns every curated record whose subject exactly
	// matches one of the given labels, ordered by group id.
	CuratedBySubjects(subjects []string) ([]models.GroupRecord, error)
	// AppendCurated adds a record to the curated catalog.
	AppendCurated(rec models.GroupRecord) error
	// MaxCuratedID returns the largest curated group id, or 0 when the
	// catalog is empty. The labeling watermark is recomputed from this at
	// startup.
	MaxCuratedID() (int64, error)

	// CandidateByID looks up one candidate record.
	CandidateByID(groupID int64) (*models.GroupRecord, error)
	// NextCandidate returns the first candidate with group_id strictly
	// greater than after, in ascending id order, or ErrNotFound.
	NextCandidate(after int64) (*models.GroupRecord, error)
}
