package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evredo/SupportMatchBack/internal/models"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type UpsertProfileInput struct {
	Gender             *string
	GenderPreference   models.GenderPreference
	Timezone           *string
	TimezonePreference models.TimezonePreference
}

func (r *ProfileRepository) Create(
	ctx context.Context,
	userID string,
	input UpsertProfileInput,
) (*models.SupportProfile, error) {
	query := `
		INSERT INTO support_match_profiles
			(id, user_id, gender, gender_preference, timezone, timezone_preference, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, user_id, gender, gender_preference, timezone, timezone_preference,
			is_active, created_at, updated_at
	`
	return r.scanProfile(r.db.QueryRow(
		ctx,
		query,
		uuid.NewString(),
		userID,
		input.Gender,
		input.GenderPreference,
		input.Timezone,
		input.TimezonePreference,
	))
}

func (r *ProfileRepository) Update(
	ctx context.Context,
	userID string,
	input UpsertProfileInput,
) (*models.SupportProfile, error) {
	query := `
		UPDATE support_match_profiles
		SET gender = $2,
			gender_preference = $3,
			timezone = $4,
			timezone_preference = $5,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, gender, gender_preference, timezone, timezone_preference,
			is_active, created_at, updated_at
	`
	return r.scanProfile(r.db.QueryRow(
		ctx,
		query,
		userID,
		input.Gender,
		input.GenderPreference,
		input.Timezone,
		input.TimezonePreference,
	))
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.SupportProfile, error) {
	query := `
		SELECT id, user_id, gender, gender_preference, timezone, timezone_preference,
			is_active, created_at, updated_at
		FROM support_match_profiles
		WHERE user_id = $1
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *ProfileRepository) SetActive(ctx context.Context, userID string, isActive bool) error {
	query := `
		UPDATE support_match_profiles
		SET is_active = $2, updated_at = NOW()
		WHERE user_id = $1
	`
	tag, err := r.db.Exec(ctx, query, userID, isActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListActive returns active profiles in creation order. The matcher relies on
// this ordering being stable between runs.
func (r *ProfileRepository) ListActive(ctx context.Context) ([]models.SupportProfile, error) {
	query := `
		SELECT id, user_id, gender, gender_preference, timezone, timezone_preference,
			is_active, created_at, updated_at
		FROM support_match_profiles
		WHERE is_active = TRUE
		ORDER BY created_at ASC, user_id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *ProfileRepository) ListAll(ctx context.Context) ([]models.SupportProfile, error) {
	query := `
		SELECT id, user_id, gender, gender_preference, timezone, timezone_preference,
			is_active, created_at, updated_at
		FROM support_match_profiles
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *ProfileRepository) scanProfile(row pgx.Row) (*models.SupportProfile, error) {
	var profile models.SupportProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Gender,
		&profile.GenderPreference,
		&profile.Timezone,
		&profile.TimezonePreference,
		&profile.IsActive,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func scanProfiles(rows pgx.Rows) ([]models.SupportProfile, error) {
	profiles := []models.SupportProfile{}
	for rows.Next() {
		var profile models.SupportProfile
		if err := rows.Scan(
			&profile.ID,
			&profile.UserID,
			&profile.Gender,
			&profile.GenderPreference,
			&profile.Timezone,
			&profile.TimezonePreference,
			&profile.IsActive,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}
