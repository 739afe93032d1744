package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/zhwltlr/ggaba-sub000/internal/config"
	"github.com/zhwltlr/ggaba-sub000/internal/models"

	postgres "github.com/zhwltlr/ggaba-sub000/internal/repository/db"

	"github.com/lib/pq"
)

// Repository is the Postgres-backed store. All multi-row effects (bid plus
// line items plus auction counters, the winner-selection sweep) run inside a
// single transaction so no partial state is ever observable.
type Repository struct {
	db  *sql.DB
	cfg *config.PostgresConfig
}

func NewRepository(db *sql.DB, cfg *config.PostgresConfig) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  db,
		cfg: cfg,
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = postgres.NewPostgresDB(repo.cfg)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open postgres db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp == "true" {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (repo *Repository) MigrateUp() error {
	err := postgres.MigrateUp(repo.db, repo.cfg.MigrationsURL)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	err := postgres.MigrateDown(repo.db, repo.cfg.MigrationsURL)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown == "true" {
		migErr = repo.MigrateDown()
	}

	err := repo.db.Close()
	return errors.Join(migErr, err)
}

//// Service

func wrapRollbackErr(tx *sql.Tx, err error) error {
	rollerr := tx.Rollback()
	if rollerr == nil {
		return err
	}
	return fmt.Errorf("failed to rollback transaction after previous error: %w, %w", rollerr, err)
}

// classifyErr maps raw driver errors onto the domain error taxonomy so no
// caller above the repository ever matches on pq internals. Constraint
// violations surface from the store itself rather than from pre-checks, which
// is what closes the submit/select race windows.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", models.ErrNotFound, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", models.ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", models.ErrUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %w", models.ErrDuplicateBid, err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %w", models.ErrNotFound, err)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %w", models.ErrUnavailable, err)
		}
		if pqErr.Code.Class() == "08" { // connection failures
			return fmt.Errorf("%w: %w", models.ErrUnavailable, err)
		}
	}

	return err
}

//// Test utils

func (repo *Repository) TestGetDB() *sql.DB {
	return repo.db
}
