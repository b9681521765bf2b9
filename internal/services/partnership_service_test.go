package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evredo/SupportMatchBack/internal/models"
	"github.com/evredo/SupportMatchBack/internal/repository"
)

type stubPartnershipStore struct {
	partnerships map[string]*models.Partnership
	activeUsers  map[string]bool
	nextID       int
}

func newStubPartnershipStore() *stubPartnershipStore {
	return &stubPartnershipStore{
		partnerships: map[string]*models.Partnership{},
		activeUsers:  map[string]bool{},
	}
}

func (s *stubPartnershipStore) Create(
	_ context.Context,
	user1ID, user2ID string,
	startDate, endDate time.Time,
) (*models.Partnership, error) {
	if s.activeUsers[user1ID] || s.activeUsers[user2ID] {
		return nil, repository.ErrActivePartnershipExists
	}
	s.nextID++
	partnership := &models.Partnership{
		ID:        fmt.Sprintf("partnership-%d", s.nextID),
		User1ID:   user1ID,
		User2ID:   user2ID,
		Status:    models.PartnershipStatusActive,
		StartDate: startDate,
		EndDate:   endDate,
	}
	s.partnerships[partnership.ID] = partnership
	s.activeUsers[user1ID] = true
	s.activeUsers[user2ID] = true
	return partnership, nil
}

func (s *stubPartnershipStore) GetByID(_ context.Context, id string) (*models.Partnership, error) {
	partnership, ok := s.partnerships[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return partnership, nil
}

func (s *stubPartnershipStore) UpdateStatus(
	_ context.Context,
	id string,
	status models.PartnershipStatus,
) (*models.Partnership, error) {
	partnership, ok := s.partnerships[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	partnership.Status = status
	if status == models.PartnershipStatusEnded {
		partnership.EndDate = time.Now()
		s.activeUsers[partnership.User1ID] = false
		s.activeUsers[partnership.User2ID] = false
	}
	return partnership, nil
}

func TestPartnershipCreateSetsScheduleAndStatus(t *testing.T) {
	store := newStubPartnershipStore()
	service := NewPartnershipService(store, 30)

	before := time.Now()
	partnership, err := service.Create(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if partnership.Status != models.PartnershipStatusActive {
		t.Fatalf("expected active status, got %s", partnership.Status)
	}
	wantEnd := partnership.StartDate.AddDate(0, 0, 30)
	if !partnership.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end date 30 days after start, got %s", partnership.EndDate)
	}
	if partnership.StartDate.Before(before.Add(-time.Second)) {
		t.Fatalf("start date should be at creation time, got %s", partnership.StartDate)
	}
}

func TestPartnershipCreateRejectsSelfAndEmpty(t *testing.T) {
	service := NewPartnershipService(newStubPartnershipStore(), 30)

	if _, err := service.Create(context.Background(), "A", "A"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("self-pairing must fail with ErrInvalidInput, got %v", err)
	}
	if _, err := service.Create(context.Background(), "", "B"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty user id must fail with ErrInvalidInput, got %v", err)
	}
}

func TestPartnershipCreateConflictsOnSecondActive(t *testing.T) {
	store := newStubPartnershipStore()
	service := NewPartnershipService(store, 30)

	if _, err := service.Create(context.Background(), "A", "B"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := service.Create(context.Background(), "A", "C"); !errors.Is(err, ErrConflict) {
		t.Fatalf("second active partnership for A must fail with ErrConflict, got %v", err)
	}
	if _, err := service.Create(context.Background(), "C", "B"); !errors.Is(err, ErrConflict) {
		t.Fatalf("second active partnership for B must fail with ErrConflict, got %v", err)
	}
}

func TestPartnershipEndIsTerminal(t *testing.T) {
	store := newStubPartnershipStore()
	service := NewPartnershipService(store, 30)

	created, err := service.Create(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	scheduledEnd := created.EndDate

	ended, err := service.End(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if ended.Status != models.PartnershipStatusEnded {
		t.Fatalf("expected ended status, got %s", ended.Status)
	}
	if !ended.EndDate.Before(scheduledEnd) {
		t.Fatalf("ending early must overwrite the scheduled end date")
	}

	if _, err := service.End(context.Background(), created.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second End must fail with ErrInvalidState, got %v", err)
	}
	final, err := store.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if final.Status != models.PartnershipStatusEnded {
		t.Fatalf("status must remain ended, got %s", final.Status)
	}
}

func TestPartnershipEndMissing(t *testing.T) {
	service := NewPartnershipService(newStubPartnershipStore(), 30)
	if _, err := service.End(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ending a missing partnership must fail with ErrNotFound, got %v", err)
	}
}

func TestPartnershipCreateAfterEndSucceeds(t *testing.T) {
	store := newStubPartnershipStore()
	service := NewPartnershipService(store, 30)

	first, err := service.Create(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := service.End(context.Background(), first.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := service.Create(context.Background(), "A", "C"); err != nil {
		t.Fatalf("Create after End: %v", err)
	}
}
