// Package postgres implements user.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type database interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db database
}

func NewStore(db database) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) Create(ctx context.Context, profile user.NewProfile) (user.Profile, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, role, created_at
	`, profile.Id, profile.Email, profile.Name, profile.Role)

	var created user.Profile
	err := row.Scan(&created.Id, &created.Email, &created.Name, &created.Role, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.Profile{}, ierr.New(ierr.ErrorCodeFailedPrecondition, errors.New("User already exists"))
		}

		return user.Profile{}, fmt.Errorf("insert user: %w", err)
	}

	return created, nil
}
