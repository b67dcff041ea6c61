package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/vkrec/recommend-bot/internal/models"
)

func TestMemoryStoreUserStatus(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Do(ctx, func(uow UnitOfWork) error {
		if _, err := uow.UserStatus(42); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
		}

		status := &models.UserStatus{UserID: 42, Status: models.StatusStarted}
		if err := uow.UpsertUserStatus(status); err != nil {
			return err
		}

		got, err := uow.UserStatus(42)
		if err != nil {
			return err
		}
		if got.Status != models.StatusStarted {
			t.Fatalf("unexpected status: %v", got.Status)
		}

		got.Status = models.StatusAdmin
		got.Page = 3
		if err := uow.UpsertUserStatus(got); err != nil {
			return err
		}

		updated, err := uow.UserStatus(42)
		if err != nil {
			return err
		}
		if updated.Status != models.StatusAdmin || updated.Page != 3 {
			t.Fatalf("upsert did not update: %+v", updated)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMemoryStoreCuratedCatalog(t *testing.T) {
	store := NewMemoryStore()
	store.SeedCurated(models.GroupRecord{GroupID: 3, Subject: "science", Name: "c"})
	store.SeedCurated(models.GroupRecord{GroupID: 1, Subject: "science", Name: "a"})
	store.SeedCurated(models.GroupRecord{GroupID: 2, Subject: "music", Name: "b"})

	err := store.Do(context.Background(), func(uow UnitOfWork) error {
		records, err := uow.CuratedBySubjects([]string{"science"})
		if err != nil {
			return err
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 science records, got %d", len(records))
		}
		if records[0].GroupID != 1 || records[1].GroupID != 3 {
			t.Fatalf("records not ordered by id: %+v", records)
		}

		// Matching is case-sensitive and exact.
		records, err = uow.CuratedBySubjects([]string{"Science"})
		if err != nil {
			return err
		}
		if len(records) != 0 {
			t.Fatalf("expected no records for mismatched casing, got %d", len(records))
		}

		max, err := uow.MaxCuratedID()
		if err != nil {
			return err
		}
		if max != 3 {
			t.Fatalf("expected max curated id 3, got %d", max)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMemoryStoreNextCandidate(t *testing.T) {
	store := NewMemoryStore()
	store.SeedCandidate(models.GroupRecord{GroupID: 10, Name: "ten"})
	store.SeedCandidate(models.GroupRecord{GroupID: 20, Name: "twenty"})
	store.SeedCandidate(models.GroupRecord{GroupID: 30, Name: "thirty"})

	tests := []struct {
		name    string
		after   int64
		want    int64
		missing bool
	}{
		{"from zero", 0, 10, false},
		{"skips processed", 10, 20, false},
		{"between ids", 25, 30, false},
		{"exhausted", 30, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Do(context.Background(), func(uow UnitOfWork) error {
				next, err := uow.NextCandidate(tt.after)
				if tt.missing {
					if !errors.Is(err, ErrNotFound) {
						t.Fatalf("expected ErrNotFound, got %v", err)
					}
					return nil
				}
				if err != nil {
					return err
				}
				if next.GroupID != tt.want {
					t.Fatalf("NextCandidate(%d) = %d, want %d", tt.after, next.GroupID, tt.want)
				}
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestMemoryStoreAppendCuratedKeepsDuplicates(t *testing.T) {
	store := NewMemoryStore()

	err := store.Do(context.Background(), func(uow UnitOfWork) error {
		if err := uow.AppendCurated(models.GroupRecord{GroupID: 5, Subject: "art"}); err != nil {
			return err
		}
		return uow.AppendCurated(models.GroupRecord{GroupID: 5, Subject: "music"})
	})
	if err != nil {
		t.Fatal(err)
	}

	err = store.Do(context.Background(), func(uow UnitOfWork) error {
		records, err := uow.CuratedBySubjects([]string{"art", "music"})
		if err != nil {
			return err
		}
		if len(records) != 2 {
			t.Fatalf("append must not overwrite, got %d records", len(records))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
