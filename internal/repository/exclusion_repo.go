package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evredo/SupportMatchBack/internal/models"
)

type ExclusionRepository struct {
	db DBTX
}

func NewExclusionRepository(db DBTX) *ExclusionRepository {
	return &ExclusionRepository{db: db}
}

func (r *ExclusionRepository) Create(
	ctx context.Context,
	userID, excludedUserID string,
	reason *string,
) (*models.Exclusion, error) {
	query := `
		INSERT INTO exclusions (id, user_id, excluded_user_id, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, excluded_user_id, reason, created_at
	`
	var exclusion models.Exclusion
	err := r.db.QueryRow(ctx, query, uuid.NewString(), userID, excludedUserID, reason).Scan(
		&exclusion.ID,
		&exclusion.UserID,
		&exclusion.ExcludedUserID,
		&exclusion.Reason,
		&exclusion.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &exclusion, nil
}

func (r *ExclusionRepository) ListAll(ctx context.Context) ([]models.Exclusion, error) {
	query := `
		SELECT id, user_id, excluded_user_id, reason, created_at
		FROM exclusions
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExclusions(rows)
}

func (r *ExclusionRepository) ListByUser(ctx context.Context, userID string) ([]models.Exclusion, error) {
	query := `
		SELECT id, user_id, excluded_user_id, reason, created_at
		FROM exclusions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExclusions(rows)
}

// Delete removes an exclusion owned by userID. Scoping the delete to the owner
// keeps one user from lifting another user's block.
func (r *ExclusionRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM exclusions WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanExclusions(rows pgx.Rows) ([]models.Exclusion, error) {
	exclusions := []models.Exclusion{}
	for rows.Next() {
		var exclusion models.Exclusion
		if err := rows.Scan(
			&exclusion.ID,
			&exclusion.UserID,
			&exclusion.ExcludedUserID,
			&exclusion.Reason,
			&exclusion.CreatedAt,
		); err != nil {
			return nil, err
		}
		exclusions = append(exclusions, exclusion)
	}
	return exclusions, rows.Err()
}
