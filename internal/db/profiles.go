package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/jobcraft/internal/types"
)

// DefaultListLimit caps ListProfiles when no limit is given.
const DefaultListLimit = 50

// AppendGenerationLog inserts one append-only generation log row.
func (db *DB) AppendGenerationLog(ctx context.Context, rec types.LogRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO generation_log (generated_at, title, level, origin, critical_skill, operator)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.Timestamp, rec.Title, rec.Level, string(rec.Origin), rec.CriticalSkill, rec.Operator,
	)
	if err != nil {
		return fmt.Errorf("failed to append generation log: %w", err)
	}
	return nil
}

// SaveProfile stores a generated profile. A nil ID is replaced with a new one.
func (db *DB) SaveProfile(ctx context.Context, sp *types.StoredProfile) error {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	body, err := json.Marshal(sp.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_profiles (id, title, level, critical_skill, origin, attempts, operator, profile)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		sp.ID, sp.Request.Title, sp.Request.Level, sp.Request.CriticalSkill,
		string(sp.Profile.TitleOrigin), sp.Attempts, sp.Operator, body,
	).Scan(&sp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored profile, or nil when no row matches.
func (db *DB) GetProfile(ctx context.Context, id uuid.UUID) (*types.StoredProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, created_at, title, level, critical_skill, attempts, operator, profile
		 FROM job_profiles WHERE id = $1`, id)

	sp, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return sp, nil
}

// ListProfiles returns the most recent profiles first.
func (db *DB) ListProfiles(ctx context.Context, limit int) ([]*types.StoredProfile, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, created_at, title, level, critical_skill, attempts, operator, profile
		 FROM job_profiles ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*types.StoredProfile
	for rows.Next() {
		sp, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, sp)
	}
	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (*types.StoredProfile, error) {
	var sp types.StoredProfile
	var body []byte
	if err := row.Scan(&sp.ID, &sp.CreatedAt, &sp.Request.Title, &sp.Request.Level,
		&sp.Request.CriticalSkill, &sp.Attempts, &sp.Operator, &body); err != nil {
		return nil, err
	}

	var profile types.JobProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", sp.ID, err)
	}
	sp.Profile = &profile
	return &sp, nil
}
