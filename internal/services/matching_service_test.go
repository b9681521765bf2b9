package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/evredo/SupportMatchBack/internal/models"
)

type stubProfilePool struct {
	profiles []models.SupportProfile
}

func (s *stubProfilePool) ListActive(_ context.Context) ([]models.SupportProfile, error) {
	return s.profiles, nil
}

type stubExclusionLister struct {
	exclusions []models.Exclusion
}

func (s *stubExclusionLister) ListAll(_ context.Context) ([]models.Exclusion, error) {
	return s.exclusions, nil
}

type stubPartnershipLister struct {
	partnerships []models.Partnership
}

func (s *stubPartnershipLister) ListActive(_ context.Context) ([]models.Partnership, error) {
	return s.partnerships, nil
}

type stubLifecycle struct {
	created   []models.Partnership
	conflicts map[string]bool
	err       error
}

func (s *stubLifecycle) Create(_ context.Context, user1ID, user2ID string) (*models.Partnership, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.conflicts[user1ID+"|"+user2ID] {
		return nil, ErrConflict
	}
	partnership := models.Partnership{
		ID:      fmt.Sprintf("partnership-%d", len(s.created)+1),
		User1ID: user1ID,
		User2ID: user2ID,
		Status:  models.PartnershipStatusActive,
	}
	s.created = append(s.created, partnership)
	return &partnership, nil
}

func buildProfile(
	userID, gender string,
	genderPref models.GenderPreference,
	timezone string,
	timezonePref models.TimezonePreference,
	order int,
) models.SupportProfile {
	profile := models.SupportProfile{
		ID:                 "profile-" + userID,
		UserID:             userID,
		GenderPreference:   genderPref,
		TimezonePreference: timezonePref,
		IsActive:           true,
		CreatedAt:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(order) * time.Minute),
	}
	if gender != "" {
		profile.Gender = &gender
	}
	if timezone != "" {
		profile.Timezone = &timezone
	}
	return profile
}

func newTestMatchingService(
	profiles []models.SupportProfile,
	exclusions []models.Exclusion,
	active []models.Partnership,
	lifecycle *stubLifecycle,
) *MatchingService {
	return NewMatchingService(
		&stubProfilePool{profiles: profiles},
		&stubExclusionLister{exclusions: exclusions},
		&stubPartnershipLister{partnerships: active},
		lifecycle,
		DefaultScoreWeights(),
		zerolog.Nop(),
	)
}

func TestRunMatchingPassConcreteScenario(t *testing.T) {
	profiles := []models.SupportProfile{
		buildProfile("A", "", models.GenderPreferenceAny, "America/Los_Angeles", models.TimezonePreferenceAny, 0),
		buildProfile("B", "", models.GenderPreferenceAny, "America/Los_Angeles", models.TimezonePreferenceAny, 1),
		buildProfile("C", "female", models.GenderPreferenceSame, "America/New_York", models.TimezonePreferenceAny, 2),
		buildProfile("D", "female", models.GenderPreferenceSame, "America/New_York", models.TimezonePreferenceAny, 3),
	}
	exclusions := []models.Exclusion{{ID: "e1", UserID: "A", ExcludedUserID: "B"}}
	lifecycle := &stubLifecycle{}
	service := newTestMatchingService(profiles, exclusions, nil, lifecycle)

	created, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 partnership, got %d", len(created))
	}
	if created[0].User1ID != "C" || created[0].User2ID != "D" {
		t.Fatalf("expected C paired with D, got %s and %s", created[0].User1ID, created[0].User2ID)
	}
}

func TestRunMatchingPassExclusionBlocksEitherDirection(t *testing.T) {
	for _, exclusion := range []models.Exclusion{
		{ID: "e1", UserID: "A", ExcludedUserID: "B"},
		{ID: "e1", UserID: "B", ExcludedUserID: "A"},
	} {
		profiles := []models.SupportProfile{
			buildProfile("A", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 0),
			buildProfile("B", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 1),
		}
		lifecycle := &stubLifecycle{}
		service := newTestMatchingService(profiles, []models.Exclusion{exclusion}, nil, lifecycle)

		created, err := service.RunMatchingPass(context.Background())
		if err != nil {
			t.Fatalf("RunMatchingPass: %v", err)
		}
		if len(created) != 0 {
			t.Fatalf("excluded pair (%s excludes %s) must stay unmatched, got %d partnerships",
				exclusion.UserID, exclusion.ExcludedUserID, len(created))
		}
	}
}

func TestRunMatchingPassTimezoneDemandBindsBothUsers(t *testing.T) {
	strict := buildProfile("A", "", models.GenderPreferenceAny, "America/Los_Angeles", models.TimezonePreferenceSame, 0)
	laxOtherZone := buildProfile("B", "", models.GenderPreferenceAny, "America/New_York", models.TimezonePreferenceAny, 1)

	lifecycle := &stubLifecycle{}
	service := newTestMatchingService([]models.SupportProfile{strict, laxOtherZone}, nil, nil, lifecycle)
	created, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("cross-timezone pair must not match when one user demands same timezone")
	}

	laxSameZone := buildProfile("B", "", models.GenderPreferenceAny, "America/Los_Angeles", models.TimezonePreferenceAny, 1)
	lifecycle = &stubLifecycle{}
	service = newTestMatchingService([]models.SupportProfile{strict, laxSameZone}, nil, nil, lifecycle)
	created, err = service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("same-timezone pair should match, got %d partnerships", len(created))
	}
}

func TestRunMatchingPassTimezoneDemandRequiresBothSet(t *testing.T) {
	profiles := []models.SupportProfile{
		buildProfile("A", "", models.GenderPreferenceAny, "America/Los_Angeles", models.TimezonePreferenceSame, 0),
		buildProfile("B", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 1),
	}
	lifecycle := &stubLifecycle{}
	service := newTestMatchingService(profiles, nil, nil, lifecycle)

	created, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("user without a timezone must not satisfy a same-timezone demand")
	}
}

func TestRunMatchingPassPrefersHigherScoringCandidate(t *testing.T) {
	profiles := []models.SupportProfile{
		buildProfile("A", "", models.GenderPreferenceAny, "America/Los_Angeles", models.TimezonePreferenceAny, 0),
		buildProfile("B", "", models.GenderPreferenceAny, "America/New_York", models.TimezonePreferenceAny, 1),
		buildProfile("C", "", models.GenderPreferenceAny, "America/Los_Angeles", models.TimezonePreferenceAny, 2),
	}
	lifecycle := &stubLifecycle{}
	service := newTestMatchingService(profiles, nil, nil, lifecycle)

	created, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 partnership, got %d", len(created))
	}
	if created[0].User1ID != "A" || created[0].User2ID != "C" {
		t.Fatalf("expected A paired with same-timezone C, got %s and %s", created[0].User1ID, created[0].User2ID)
	}
}

func TestRunMatchingPassTieBreaksByPoolOrder(t *testing.T) {
	profiles := []models.SupportProfile{
		buildProfile("A", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 0),
		buildProfile("B", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 1),
		buildProfile("C", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 2),
	}
	lifecycle := &stubLifecycle{}
	service := newTestMatchingService(profiles, nil, nil, lifecycle)

	created, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 partnership, got %d", len(created))
	}
	if created[0].User1ID != "A" || created[0].User2ID != "B" {
		t.Fatalf("equal scores must keep the earliest candidate, got %s and %s", created[0].User1ID, created[0].User2ID)
	}
}

func TestRunMatchingPassSkipsUsersWithActivePartnerships(t *testing.T) {
	profiles := []models.SupportProfile{
		buildProfile("A", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 0),
		buildProfile("B", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 1),
		buildProfile("C", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 2),
		buildProfile("D", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 3),
	}
	active := []models.Partnership{
		{ID: "existing", User1ID: "A", User2ID: "B", Status: models.PartnershipStatusActive},
	}
	lifecycle := &stubLifecycle{}
	service := newTestMatchingService(profiles, nil, active, lifecycle)

	created, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 partnership, got %d", len(created))
	}
	if created[0].User1ID != "C" || created[0].User2ID != "D" {
		t.Fatalf("already-partnered users must stay out of the pool, got %s and %s",
			created[0].User1ID, created[0].User2ID)
	}
}

func TestRunMatchingPassRerunCreatesNothing(t *testing.T) {
	profiles := []models.SupportProfile{
		buildProfile("A", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 0),
		buildProfile("B", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 1),
	}
	lifecycle := &stubLifecycle{}
	service := newTestMatchingService(profiles, nil, nil, lifecycle)

	first, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("first RunMatchingPass: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 partnership on first pass, got %d", len(first))
	}

	// Second pass sees the partnerships created by the first.
	rerun := newTestMatchingService(profiles, nil, lifecycle.created, &stubLifecycle{})
	second, err := rerun.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("second RunMatchingPass: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("rerun with unchanged data must create nothing, got %d", len(second))
	}
}

func TestRunMatchingPassContinuesAfterConflict(t *testing.T) {
	profiles := []models.SupportProfile{
		buildProfile("A", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 0),
		buildProfile("B", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 1),
		buildProfile("C", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 2),
	}
	lifecycle := &stubLifecycle{conflicts: map[string]bool{"A|B": true}}
	service := newTestMatchingService(profiles, nil, nil, lifecycle)

	created, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected the pass to continue past the conflict, got %d partnerships", len(created))
	}
	if created[0].User1ID != "B" || created[0].User2ID != "C" {
		t.Fatalf("expected B paired with C after the conflict, got %s and %s",
			created[0].User1ID, created[0].User2ID)
	}
}

func TestRunMatchingPassAbortsOnStoreError(t *testing.T) {
	profiles := []models.SupportProfile{
		buildProfile("A", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 0),
		buildProfile("B", "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 1),
	}
	storeErr := errors.New("connection reset")
	lifecycle := &stubLifecycle{err: storeErr}
	service := newTestMatchingService(profiles, nil, nil, lifecycle)

	created, err := service.RunMatchingPass(context.Background())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected the store error to propagate, got %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected no partnerships before the failure, got %d", len(created))
	}
}

func TestRunMatchingPassPairsAreDisjoint(t *testing.T) {
	profiles := make([]models.SupportProfile, 0, 7)
	for i := 0; i < 7; i++ {
		userID := fmt.Sprintf("user-%d", i)
		profiles = append(profiles, buildProfile(userID, "", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, i))
	}
	lifecycle := &stubLifecycle{}
	service := newTestMatchingService(profiles, nil, nil, lifecycle)

	created, err := service.RunMatchingPass(context.Background())
	if err != nil {
		t.Fatalf("RunMatchingPass: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 partnerships from 7 candidates, got %d", len(created))
	}

	seen := map[string]bool{}
	for _, partnership := range created {
		if partnership.User1ID == partnership.User2ID {
			t.Fatalf("partnership %s pairs a user with themselves", partnership.ID)
		}
		for _, userID := range []string{partnership.User1ID, partnership.User2ID} {
			if seen[userID] {
				t.Fatalf("user %s appears in more than one partnership", userID)
			}
			seen[userID] = true
		}
	}
}

func TestAreCompatibleGenderGate(t *testing.T) {
	female1 := buildProfile("A", "female", models.GenderPreferenceSame, "", models.TimezonePreferenceAny, 0)
	female2 := buildProfile("B", "female", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 1)
	male := buildProfile("C", "male", models.GenderPreferenceAny, "", models.TimezonePreferenceAny, 2)
	unset := buildProfile("D", "", models.GenderPreferenceSame, "", models.TimezonePreferenceAny, 3)

	index := buildExclusionIndex(nil)
	if !areCompatible(&female1, &female2, index) {
		t.Fatalf("same-gender preference with matching genders should pass")
	}
	if areCompatible(&female1, &male, index) {
		t.Fatalf("same-gender preference with different genders must fail")
	}
	// A same_gender preference with no gender on record can never be satisfied.
	if areCompatible(&unset, &female2, index) {
		t.Fatalf("same-gender preference without a gender set must fail")
	}
}

func TestMatchScoreUsesConfiguredWeights(t *testing.T) {
	user1 := buildProfile("A", "female", models.GenderPreferenceSame, "Europe/Berlin", models.TimezonePreferenceAny, 0)
	user2 := buildProfile("B", "female", models.GenderPreferenceSame, "Europe/Berlin", models.TimezonePreferenceAny, 1)

	weights := ScoreWeights{SameTimezone: 7, MutualPreference: 3}
	if got := matchScore(&user1, &user2, weights); got != 10 {
		t.Fatalf("expected score 10 with custom weights, got %d", got)
	}

	user2.GenderPreference = models.GenderPreferenceAny
	if got := matchScore(&user1, &user2, weights); got != 7 {
		t.Fatalf("expected timezone-only score 7, got %d", got)
	}
}

func TestExclusionIndexIsBidirectional(t *testing.T) {
	index := buildExclusionIndex([]models.Exclusion{
		{ID: "e1", UserID: "A", ExcludedUserID: "B"},
	})
	if !index.isMutuallyExcluded("A", "B") || !index.isMutuallyExcluded("B", "A") {
		t.Fatalf("a single directional record must block both directions")
	}
	if index.isMutuallyExcluded("A", "C") {
		t.Fatalf("unrelated users must not be excluded")
	}
}
