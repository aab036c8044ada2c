package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/clubsync/internal/domain/spondaccount"
	qb "github.com/riskibarqy/clubsync/internal/platform/querybuilder"
)

// spondCredentialsRowID pins the table to a single row.
const spondCredentialsRowID = 1

type SpondCredentialsRepository struct {
	db *sqlx.DB
}

func NewSpondCredentialsRepository(db *sqlx.DB) *SpondCredentialsRepository {
	return &SpondCredentialsRepository{db: db}
}

func (r *SpondCredentialsRepository) Get(ctx context.Context) (spondaccount.Credentials, bool, error) {
	query, args, err := qb.Select("id", "email", "sealed_password", "updated_at").From("spond_credentials").
		Where(qb.Eq("id", spondCredentialsRowID)).
		ToSQL()
	if err != nil {
		return spondaccount.Credentials{}, false, fmt.Errorf("build select spond credentials query: %w", err)
	}

	var row spondCredentialsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return spondaccount.Credentials{}, false, nil
		}
		return spondaccount.Credentials{}, false, fmt.Errorf("select spond credentials: %w", err)
	}
	return credentialsFromRow(row), true, nil
}

func (r *SpondCredentialsRepository) Save(ctx context.Context, c spondaccount.Credentials) error {
	row := spondCredentialsTableModel{
		ID:             spondCredentialsRowID,
		Email:          c.Email,
		SealedPassword: c.SealedPassword,
		UpdatedAt:      c.UpdatedAt.UTC(),
	}
	query, args, err := qb.InsertModel("spond_credentials", row,
		"ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, sealed_password = EXCLUDED.sealed_password, updated_at = EXCLUDED.updated_at")
	if err != nil {
		return fmt.Errorf("build upsert spond credentials query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert spond credentials: %w", err)
	}
	return nil
}

func (r *SpondCredentialsRepository) Delete(ctx context.Context) error {
	query, args, err := qb.DeleteFrom("spond_credentials").
		Where(qb.Eq("id", spondCredentialsRowID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete spond credentials query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete spond credentials: %w", err)
	}
	return nil
}
