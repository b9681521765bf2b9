package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evredo/SupportMatchBack/internal/models"
	"github.com/evredo/SupportMatchBack/internal/repository"
)

type profileStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.SupportProfile, error)
	Create(ctx context.Context, userID string, input repository.UpsertProfileInput) (*models.SupportProfile, error)
	Update(ctx context.Context, userID string, input repository.UpsertProfileInput) (*models.SupportProfile, error)
	SetActive(ctx context.Context, userID string, isActive bool) error
}

type ProfileHandler struct {
	profileRepo profileStore
}

func NewProfileHandler(profileRepo profileStore) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo}
}

type profileRequest struct {
	Gender             *string `json:"gender"`
	GenderPreference   string  `json:"gender_preference"`
	Timezone           *string `json:"timezone"`
	TimezonePreference string  `json:"timezone_preference"`
}

// parseProfileRequest validates the preference enums at the boundary.
// Unrecognized values are rejected rather than silently defaulted.
func parseProfileRequest(req profileRequest) (repository.UpsertProfileInput, string) {
	genderPref, err := models.ParseGenderPreference(req.GenderPreference)
	if err != nil {
		return repository.UpsertProfileInput{}, "gender_preference must be 'any' or 'same_gender'"
	}
	timezonePref, err := models.ParseTimezonePreference(req.TimezonePreference)
	if err != nil {
		return repository.UpsertProfileInput{}, "timezone_preference must be 'any' or 'same_timezone'"
	}

	input := repository.UpsertProfileInput{
		GenderPreference:   genderPref,
		TimezonePreference: timezonePref,
	}
	if req.Gender != nil && strings.TrimSpace(*req.Gender) != "" {
		gender := strings.TrimSpace(*req.Gender)
		input.Gender = &gender
	}
	if req.Timezone != nil && strings.TrimSpace(*req.Timezone) != "" {
		timezone := strings.TrimSpace(*req.Timezone)
		input.Timezone = &timezone
	}
	return input, ""
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) CreateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, validationErr := parseProfileRequest(req)
	if validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileRepo.Create(c.Context(), userID, input)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Profile already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create profile"})
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, validationErr := parseProfileRequest(req)
	if validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileRepo.Update(c.Context(), userID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}
	return c.JSON(profile)
}

// DeactivateProfile takes the user out of the matching pool. History stays.
func (h *ProfileHandler) DeactivateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := h.profileRepo.SetActive(c.Context(), userID, false); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate profile"})
	}
	return c.JSON(fiber.Map{"status": "deactivated"})
}
