package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

// PostgresDirectory lit la table "users" de l'identity-service (lecture seule).
type PostgresDirectory struct {
	db *pgxpool.Pool
}

func NewPostgresDirectory(db *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

var _ ports.UserDirectory = (*PostgresDirectory)(nil)

func (d *PostgresDirectory) Project(ctx context.Context, userIDs []string, fields ...domain.UserField) ([]domain.UserProjection, error) {
	if len(userIDs) == 0 {
		return []domain.UserProjection{}, nil
	}

	// id::text pour comparer des UUID avec un tableau de chaînes
	query := `
		SELECT id::text, full_name, username, email
		FROM users
		WHERE id::text = ANY($1)
	`
	rows, err := d.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("db: project users: %w", err)
	}
	defer rows.Close()

	found := make(map[string]domain.UserProjection, len(userIDs))
	for rows.Next() {
		var u domain.UserProjection
		if err := rows.Scan(&u.ID, &u.FullName, &u.Username, &u.Email); err != nil {
			return nil, fmt.Errorf("db: scan user: %w", err)
		}
		found[u.ID] = u.Only(fields...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: iterate users: %w", err)
	}

	return inOrder(userIDs, found), nil
}
