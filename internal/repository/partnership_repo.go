package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evredo/SupportMatchBack/internal/models"
)

// ErrActivePartnershipExists signals that a create would give one of the two
// users a second active partnership.
var ErrActivePartnershipExists = errors.New("active partnership already exists")

const partnershipColumns = `id, user1_id, user2_id, status, start_date, end_date, created_at, updated_at`

type PartnershipRepository struct {
	pool *pgxpool.Pool
}

func NewPartnershipRepository(pool *pgxpool.Pool) *PartnershipRepository {
	return &PartnershipRepository{pool: pool}
}

// Create inserts an active partnership for the pair. The one-active-partnership
// invariant is re-checked inside the transaction under per-user advisory locks,
// so a snapshot taken before the call going stale surfaces as
// ErrActivePartnershipExists instead of a double match. Locks are taken in
// sorted user order to keep overlapping runs from deadlocking.
func (r *PartnershipRepository) Create(
	ctx context.Context,
	user1ID, user2ID string,
	startDate, endDate time.Time,
) (*models.Partnership, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	first, second := user1ID, user2ID
	if second < first {
		first, second = second, first
	}
	for _, userID := range []string{first, second} {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", userID); err != nil {
			return nil, err
		}
	}

	var busy bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM partnerships
			WHERE status = 'active'
			  AND (user1_id = $1 OR user2_id = $1 OR user1_id = $2 OR user2_id = $2)
		)
	`, user1ID, user2ID).Scan(&busy)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrActivePartnershipExists
	}

	query := `
		INSERT INTO partnerships (id, user1_id, user2_id, status, start_date, end_date)
		VALUES ($1, $2, $3, 'active', $4, $5)
		RETURNING ` + partnershipColumns
	partnership, err := scanPartnership(tx.QueryRow(ctx, query, uuid.NewString(), user1ID, user2ID, startDate, endDate))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrActivePartnershipExists
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return partnership, nil
}

func (r *PartnershipRepository) GetByID(ctx context.Context, id string) (*models.Partnership, error) {
	query := `SELECT ` + partnershipColumns + ` FROM partnerships WHERE id = $1`
	return scanPartnership(r.pool.QueryRow(ctx, query, id))
}

func (r *PartnershipRepository) ListActive(ctx context.Context) ([]models.Partnership, error) {
	query := `SELECT ` + partnershipColumns + ` FROM partnerships WHERE status = 'active'`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPartnerships(rows)
}

func (r *PartnershipRepository) ListAll(ctx context.Context) ([]models.Partnership, error) {
	query := `SELECT ` + partnershipColumns + ` FROM partnerships ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPartnerships(rows)
}

func (r *PartnershipRepository) GetActiveByUser(ctx context.Context, userID string) (*models.Partnership, error) {
	query := `
		SELECT ` + partnershipColumns + `
		FROM partnerships
		WHERE status = 'active' AND (user1_id = $1 OR user2_id = $1)
	`
	return scanPartnership(r.pool.QueryRow(ctx, query, userID))
}

func (r *PartnershipRepository) ListByUser(ctx context.Context, userID string) ([]models.Partnership, error) {
	query := `
		SELECT ` + partnershipColumns + `
		FROM partnerships
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY start_date DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPartnerships(rows)
}

// UpdateStatus writes a new status. Ending overwrites end_date with the actual
// end time; the scheduled date survives in history otherwise.
func (r *PartnershipRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status models.PartnershipStatus,
) (*models.Partnership, error) {
	query := `
		UPDATE partnerships
		SET status = $2,
			end_date = CASE WHEN $2 = 'ended' THEN NOW() ELSE end_date END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + partnershipColumns
	return scanPartnership(r.pool.QueryRow(ctx, query, id, status))
}

func scanPartnership(row pgx.Row) (*models.Partnership, error) {
	var partnership models.Partnership
	err := row.Scan(
		&partnership.ID,
		&partnership.User1ID,
		&partnership.User2ID,
		&partnership.Status,
		&partnership.StartDate,
		&partnership.EndDate,
		&partnership.CreatedAt,
		&partnership.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &partnership, nil
}

func scanPartnerships(rows pgx.Rows) ([]models.Partnership, error) {
	partnerships := []models.Partnership{}
	for rows.Next() {
		var partnership models.Partnership
		if err := rows.Scan(
			&partnership.ID,
			&partnership.User1ID,
			&partnership.User2ID,
			&partnership.Status,
			&partnership.StartDate,
			&partnership.EndDate,
			&partnership.CreatedAt,
			&partnership.UpdatedAt,
		); err != nil {
			return nil, err
		}
		partnerships = append(partnerships, partnership)
	}
	return partnerships, rows.Err()
}
