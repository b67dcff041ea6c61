package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/vkrec/recommend-bot/internal/models"
)

// MemoryStore keeps everything in process memory. Used in tests and for
// running the bot without a database.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[int64]models.UserStatus
	candidates map[int64]models.GroupRecord
	curated    []models.GroupRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]models.UserStatus),
		candidates: make(map[int64]models.GroupRecord),
	}
}

// Do holds the store lock for the duration of fn, so each handler sees a
// consistent snapshot. There is no rollback: partial writes from a failed
// fn stay applied, which is acceptable for tests and local runs.
func (s *MemoryStore) Do(ctx context.Context, fn func(UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&memoryUnitOfWork{store: s})
}

func (s *MemoryStore) Close() error {
	return nil
}

// SeedCandidate and SeedCurated populate the catalogs outside a unit of
// work, for test setup and local fixtures.
func (s *MemoryStore) SeedCandidate(rec models.GroupRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[rec.GroupID] = rec
}

func (s *MemoryStore) SeedCurated(rec models.GroupRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.curated = append(s.curated, rec)
}

type memoryUnitOfWork struct {
	store *MemoryStore
}

func (u *memoryUnitOfWork) UserStatus(userID int64) (*models.UserStatus, error) {
	if status, ok := u.store.users[userID]; ok {
		copied := status
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (u *memoryUnitOfWork) UpsertUserStatus(status *models.UserStatus) error {
	u.store.users[status.UserID] = *status
	return nil
}

func (u *memoryUnitOfWork) CuratedBySubjects(subjects []string) ([]models.GroupRecord, error) {
	wanted := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		wanted[s] = struct{}{}
	}

	var records []models.GroupRecord
	for _, rec := range u.store.curated {
		if _, ok := wanted[rec.Subject]; ok {
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].GroupID < records[j].GroupID
	})

	return records, nil
}

func (u *memoryUnitOfWork) AppendCurated(rec models.GroupRecord) error {
	u.store.curated = append(u.store.curated, rec)
	return nil
}

func (u *memoryUnitOfWork) MaxCuratedID() (int64, error) {
	var max int64
	for _, rec := range u.store.curated {
		if rec.GroupID > max {
			max = rec.GroupID
		}
	}
	return max, nil
}

func (u *memoryUnitOfWork) CandidateByID(groupID int64) (*models.GroupRecord, error) {
	if rec, ok := u.store.candidates[groupID]; ok {
		copied := rec
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (u *memoryUnitOfWork) NextCandidate(after int64) (*models.GroupRecord, error) {
	var next *models.GroupRecord
	for id, rec := range u.store.candidates {
		if id <= after {
			continue
		}
		if next == nil || id < next.GroupID {
			copied := rec
			next = &copied
		}
	}

	if next == nil {
		return nil, ErrNotFound
	}
	return next, nil
}
