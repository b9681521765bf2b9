package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evredo/SupportMatchBack/internal/models"
)

const announcementColumns = `id, title, content, type, is_active, expires_at, created_at, updated_at`

type AnnouncementRepository struct {
	db DBTX
}

func NewAnnouncementRepository(db DBTX) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	query := `
		INSERT INTO announcements (id, title, content, type, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	announcement.ID = uuid.NewString()
	return r.db.QueryRow(
		ctx,
		query,
		announcement.ID,
		announcement.Title,
		announcement.Content,
		announcement.Type,
		announcement.IsActive,
		announcement.ExpiresAt,
	).Scan(&announcement.CreatedAt, &announcement.UpdatedAt)
}

func (r *AnnouncementRepository) ListActive(ctx context.Context) ([]models.Announcement, error) {
	query := `
		SELECT ` + announcementColumns + `
		FROM announcements
		WHERE is_active = TRUE AND (expires_at IS NULL OR expires_at >= NOW())
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnnouncements(rows)
}

func (r *AnnouncementRepository) ListAll(ctx context.Context) ([]models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnnouncements(rows)
}

func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	query := `
		UPDATE announcements
		SET title = $2, content = $3, type = $4, is_active = $5, expires_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.db.QueryRow(
		ctx,
		query,
		announcement.ID,
		announcement.Title,
		announcement.Content,
		announcement.Type,
		announcement.IsActive,
		announcement.ExpiresAt,
	).Scan(&announcement.UpdatedAt)
}

func (r *AnnouncementRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE announcements SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAnnouncements(rows pgx.Rows) ([]models.Announcement, error) {
	announcements := []models.Announcement{}
	for rows.Next() {
		var announcement models.Announcement
		if err := rows.Scan(
			&announcement.ID,
			&announcement.Title,
			&announcement.Content,
			&announcement.Type,
			&announcement.IsActive,
			&announcement.ExpiresAt,
			&announcement.CreatedAt,
			&announcement.UpdatedAt,
		); err != nil {
			return nil, err
		}
		announcements = append(announcements, announcement)
	}
	return announcements, rows.Err()
}
