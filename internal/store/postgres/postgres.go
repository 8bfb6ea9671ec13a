package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/semaphore"

	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/store"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db  *sqlx.DB
	sem *semaphore.Weighted
}

// New opens the pool and verifies connectivity. maxConcurrentTx bounds how
// many write transactions may hold row locks at the same time.
func New(ctx context.Context, databaseURL string, maxConcurrentTx int) (*Store, error) {
	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if maxConcurrentTx < 1 {
		maxConcurrentTx = 10
	}
	return &Store{db: db, sem: semaphore.NewWeighted(int64(maxConcurrentTx))}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on any error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.sem.Release(1)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// mapError translates constraint violations into store sentinels.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", store.ErrConflict, constraintLabel(pgErr))
	case "23503":
		return fmt.Errorf("%w: referenced record does not exist (%s)", store.ErrValidation, pgErr.ConstraintName)
	case "23514":
		return fmt.Errorf("%w: %s", store.ErrValidation, pgErr.ConstraintName)
	}
	return err
}

func constraintLabel(pgErr *pgconn.PgError) string {
	switch pgErr.ConstraintName {
	case "products_sku_key":
		return "product with this SKU"
	case "products_barcode_key":
		return "product with this barcode"
	case "categories_name_key":
		return "category with this name"
	case "suppliers_name_key":
		return "supplier with this name"
	case "users_email_key":
		return "email already registered"
	case "users_username_key":
		return "username already taken"
	case "sales_sale_number_key":
		return "sale number"
	}
	return pgErr.ConstraintName
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
