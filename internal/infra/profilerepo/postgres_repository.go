package profilerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/lumee/internal/domain/profile"
)

// Schema is the table the repository reads. Schedule is a JSON array of
// {date, title, location} objects.
const Schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id           TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	hobbies           TEXT[] NOT NULL DEFAULT '{}',
	sensitive_factors TEXT[] NOT NULL DEFAULT '{}',
	schedule          JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepository reads user profiles from Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the profiles table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (profile.Profile, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, name, hobbies, sensitive_factors, schedule
		FROM user_profiles
		WHERE user_id = $1
	`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, err
	}
	return p, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (profile.Profile, error) {
	var (
		p        profile.Profile
		schedule []byte
	)
	if err := row.Scan(&p.UserID, &p.Name, &p.Hobbies, &p.SensitiveFactors, &schedule); err != nil {
		return profile.Profile{}, err
	}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &p.Schedule); err != nil {
			return profile.Profile{}, fmt.Errorf("decode schedule for %s: %w", p.UserID, err)
		}
	}
	return p, nil
}

var _ profile.Repository = (*PostgresRepository)(nil)
