package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/evredo/SupportMatchBack/internal/models"
)

type profilePool interface {
	ListActive(ctx context.Context) ([]models.SupportProfile, error)
}

type exclusionLister interface {
	ListAll(ctx context.Context) ([]models.Exclusion, error)
}

type activePartnershipLister interface {
	ListActive(ctx context.Context) ([]models.Partnership, error)
}

type partnershipLifecycle interface {
	Create(ctx context.Context, user1ID, user2ID string) (*models.Partnership, error)
}

// ScoreWeights tunes the tie-break scoring between otherwise eligible
// candidates. The score only ranks candidates within one pass and is never
// persisted.
type ScoreWeights struct {
	SameTimezone     int
	MutualPreference int
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{SameTimezone: 10, MutualPreference: 5}
}

type MatchingService struct {
	profileRepo     profilePool
	exclusionRepo   exclusionLister
	partnershipRepo activePartnershipLister
	lifecycle       partnershipLifecycle
	weights         ScoreWeights
	logger          zerolog.Logger
}

func NewMatchingService(
	profileRepo profilePool,
	exclusionRepo exclusionLister,
	partnershipRepo activePartnershipLister,
	lifecycle partnershipLifecycle,
	weights ScoreWeights,
	logger zerolog.Logger,
) *MatchingService {
	return &MatchingService{
		profileRepo:     profileRepo,
		exclusionRepo:   exclusionRepo,
		partnershipRepo: partnershipRepo,
		lifecycle:       lifecycle,
		weights:         weights,
		logger:          logger,
	}
}

// RunMatchingPass pairs unmatched active profiles in a single greedy pass over
// a snapshot taken at the start of the call. Each profile is paired with the
// highest-scoring compatible later profile still available; ties go to pool
// order. A pairing that loses a create race to a concurrent run is skipped,
// any other store error aborts the pass and returns the partnerships committed
// so far.
func (s *MatchingService) RunMatchingPass(ctx context.Context) ([]models.Partnership, error) {
	profiles, err := s.profileRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	activePartnerships, err := s.partnershipRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	alreadyMatched := make(map[string]struct{}, 2*len(activePartnerships))
	for _, partnership := range activePartnerships {
		alreadyMatched[partnership.User1ID] = struct{}{}
		alreadyMatched[partnership.User2ID] = struct{}{}
	}

	pool := make([]models.SupportProfile, 0, len(profiles))
	for _, profile := range profiles {
		if _, ok := alreadyMatched[profile.UserID]; !ok {
			pool = append(pool, profile)
		}
	}

	exclusions, err := s.exclusionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	excluded := buildExclusionIndex(exclusions)

	created := []models.Partnership{}
	matched := make(map[string]struct{}, len(pool))
	for i := range pool {
		user1 := &pool[i]
		if _, ok := matched[user1.UserID]; ok {
			continue
		}

		var best *models.SupportProfile
		bestScore := -1
		for j := i + 1; j < len(pool); j++ {
			user2 := &pool[j]
			if _, ok := matched[user2.UserID]; ok {
				continue
			}
			if !areCompatible(user1, user2, excluded) {
				continue
			}
			if score := matchScore(user1, user2, s.weights); score > bestScore {
				bestScore = score
				best = user2
			}
		}
		if best == nil {
			continue
		}

		partnership, err := s.lifecycle.Create(ctx, user1.UserID, best.UserID)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				s.logger.Warn().
					Str("user1_id", user1.UserID).
					Str("user2_id", best.UserID).
					Msg("pairing lost to a concurrent partnership, skipping")
				continue
			}
			return created, err
		}
		created = append(created, *partnership)
		matched[user1.UserID] = struct{}{}
		matched[best.UserID] = struct{}{}
	}

	s.logger.Info().
		Int("pool_size", len(pool)).
		Int("partnerships_created", len(created)).
		Msg("matching pass complete")
	return created, nil
}

// exclusionIndex holds directional exclusion records; lookups check both
// directions, so a single record blocks the pair either way round.
type exclusionIndex map[string]map[string]struct{}

func buildExclusionIndex(exclusions []models.Exclusion) exclusionIndex {
	index := make(exclusionIndex, len(exclusions))
	for _, exclusion := range exclusions {
		set, ok := index[exclusion.UserID]
		if !ok {
			set = make(map[string]struct{})
			index[exclusion.UserID] = set
		}
		set[exclusion.ExcludedUserID] = struct{}{}
	}
	return index
}

func (index exclusionIndex) isMutuallyExcluded(userID, otherID string) bool {
	if _, ok := index[userID][otherID]; ok {
		return true
	}
	_, ok := index[otherID][userID]
	return ok
}

// areCompatible applies the gender, exclusion, and timezone gates. All three
// must pass; a failed gate makes the pair ineligible regardless of score.
func areCompatible(user1, user2 *models.SupportProfile, excluded exclusionIndex) bool {
	if !acceptsGender(user1, user2) || !acceptsGender(user2, user1) {
		return false
	}

	if excluded.isMutuallyExcluded(user1.UserID, user2.UserID) {
		return false
	}

	// If either user insists on a shared timezone, both must have one set and
	// they must match exactly. A lax partner never bypasses a strict one.
	if user1.TimezonePreference == models.TimezonePreferenceSame ||
		user2.TimezonePreference == models.TimezonePreferenceSame {
		if !timezoneSet(user1) || !timezoneSet(user2) {
			return false
		}
		if *user1.Timezone != *user2.Timezone {
			return false
		}
	}

	return true
}

func acceptsGender(holder, candidate *models.SupportProfile) bool {
	switch holder.GenderPreference {
	case models.GenderPreferenceAny:
		return true
	case models.GenderPreferenceSame:
		return holder.Gender != nil && candidate.Gender != nil && *holder.Gender == *candidate.Gender
	}
	return false
}

func matchScore(user1, user2 *models.SupportProfile, weights ScoreWeights) int {
	score := 0
	if timezoneSet(user1) && timezoneSet(user2) && *user1.Timezone == *user2.Timezone {
		score += weights.SameTimezone
	}
	if user1.GenderPreference != models.GenderPreferenceAny &&
		user2.GenderPreference != models.GenderPreferenceAny {
		score += weights.MutualPreference
	}
	return score
}

func timezoneSet(profile *models.SupportProfile) bool {
	return profile.Timezone != nil && *profile.Timezone != ""
}
