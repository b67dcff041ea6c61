package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vkrec/recommend-bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPostgresStore(config DatabaseConfig, logger *zap.Logger) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger}

	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

// Do runs fn inside a transaction, committing on success and rolling back
// on any error or panic.
func (s *PostgresStore) Do(ctx context.Context, fn func(UnitOfWork) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("Failed to roll back transaction", zap.Error(rbErr))
			}
		}
	}()

	if err := fn(&postgresUnitOfWork{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	committed = true

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type postgresUnitOfWork struct {
	tx *sqlx.Tx
}

func (u *postgresUnitOfWork) UserStatus(userID int64) (*models.UserStatus, error) {
	var status models.UserStatus
	query := `
		SELECT user_id, status, COALESCE(page, 0) AS page, COALESCE(subjects, '') AS subjects
		FROM user_statuses
		WHERE user_id = $1`

	if err := u.tx.Get(&status, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying user status: %w", err)
	}

	return &status, nil
}

func (u *postgresUnitOfWork) UpsertUserStatus(status *models.UserStatus) error {
	query := `
		INSERT INTO user_statuses (user_id, status, page, subjects)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET status = EXCLUDED.status, page = EXCLUDED.page, subjects = EXCLUDED.subjects`

	if _, err := u.tx.Exec(query, status.UserID, status.Status, status.Page, status.Subjects); err != nil {
		return fmt.Errorf("error upserting user status: %w", err)
	}

	return nil
}

func (u *postgresUnitOfWork) CuratedBySubjects(subjects []string) ([]models.GroupRecord, error) {
	if len(subjects) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT group_id, name, subject, link
		FROM curated_groups
		WHERE subject IN (?)
		ORDER BY group_id`, subjects)
	if err != nil {
		return nil, fmt.Errorf("error building curated query: %w", err)
	}

	var records []models.GroupRecord
	if err := u.tx.Select(&records, u.tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("error querying curated groups: %w", err)
	}

	return records, nil
}

func (u *postgresUnitOfWork) AppendCurated(rec models.GroupRecord) error {
	query := `
		INSERT INTO curated_groups (group_id, name, subject, link)
		VALUES ($1, $2, $3, $4)`

	if _, err := u.tx.Exec(query, rec.GroupID, rec.Name, rec.Subject, rec.Link); err != nil {
		return fmt.Errorf("error appending curated group: %w", err)
	}

	return nil
}

func (u *postgresUnitOfWork) MaxCuratedID() (int64, error) {
	var max int64
	if err := u.tx.Get(&max, `SELECT COALESCE(MAX(group_id), 0) FROM curated_groups`); err != nil {
		return 0, fmt.Errorf("error querying max curated id: %w", err)
	}
	return max, nil
}

func (u *postgresUnitOfWork) CandidateByID(groupID int64) (*models.GroupRecord, error) {
	var rec models.GroupRecord
	query := `
		SELECT group_id, name, COALESCE(subject, '') AS subject, link
		FROM candidate_groups
		WHERE group_id = $1`

	if err := u.tx.Get(&rec, query, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying candidate group: %w", err)
	}

	return &rec, nil
}

func (u *postgresUnitOfWork) NextCandidate(after int64) (*models.GroupRecord, error) {
	var rec models.GroupRecord
	query := `
		SELECT group_id, name, COALESCE(subject, '') AS subject, link
		FROM candidate_groups
		WHERE group_id > $1
		ORDER BY group_id
		LIMIT 1`

	if err := u.tx.Get(&rec, query, after); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying next candidate: %w", err)
	}

	return &rec, nil
}
