package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evredo/SupportMatchBack/internal/models"
	"github.com/evredo/SupportMatchBack/internal/repository"
)

var (
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrInvalidInput = errors.New("invalid input")
)

type partnershipStore interface {
	Create(ctx context.Context, user1ID, user2ID string, startDate, endDate time.Time) (*models.Partnership, error)
	GetByID(ctx context.Context, id string) (*models.Partnership, error)
	UpdateStatus(ctx context.Context, id string, status models.PartnershipStatus) (*models.Partnership, error)
}

// PartnershipService owns the partnership lifecycle: create as active with a
// scheduled end date, end exactly once. Ended is terminal.
type PartnershipService struct {
	store        partnershipStore
	durationDays int
}

func NewPartnershipService(store partnershipStore, durationDays int) *PartnershipService {
	return &PartnershipService{store: store, durationDays: durationDays}
}

func (s *PartnershipService) Create(ctx context.Context, user1ID, user2ID string) (*models.Partnership, error) {
	if user1ID == "" || user2ID == "" || user1ID == user2ID {
		return nil, ErrInvalidInput
	}

	startDate := time.Now()
	endDate := startDate.AddDate(0, 0, s.durationDays)
	partnership, err := s.store.Create(ctx, user1ID, user2ID, startDate, endDate)
	if err != nil {
		if errors.Is(err, repository.ErrActivePartnershipExists) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return partnership, nil
}

// End terminates an active partnership, overwriting the scheduled end date
// with the actual one.
func (s *PartnershipService) End(ctx context.Context, id string) (*models.Partnership, error) {
	partnership, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if partnership.Status != models.PartnershipStatusActive {
		return nil, ErrInvalidState
	}
	return s.store.UpdateStatus(ctx, id, models.PartnershipStatusEnded)
}
