package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/evredo/SupportMatchBack/internal/models"
)

type exclusionStore interface {
	Create(ctx context.Context, userID, excludedUserID string, reason *string) (*models.Exclusion, error)
	ListByUser(ctx context.Context, userID string) ([]models.Exclusion, error)
	Delete(ctx context.Context, id, userID string) error
}

type ExclusionHandler struct {
	exclusionRepo exclusionStore
}

func NewExclusionHandler(exclusionRepo exclusionStore) *ExclusionHandler {
	return &ExclusionHandler{exclusionRepo: exclusionRepo}
}

type createExclusionRequest struct {
	ExcludedUserID string  `json:"excluded_user_id"`
	Reason         *string `json:"reason"`
}

func (h *ExclusionHandler) ListExclusions(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	exclusions, err := h.exclusionRepo.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch exclusions"})
	}
	return c.JSON(exclusions)
}

func (h *ExclusionHandler) CreateExclusion(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createExclusionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.ExcludedUserID = strings.TrimSpace(req.ExcludedUserID)
	if req.ExcludedUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "excluded_user_id is required"})
	}
	if req.ExcludedUserID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot exclude yourself"})
	}

	exclusion, err := h.exclusionRepo.Create(c.Context(), userID, req.ExcludedUserID, req.Reason)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create exclusion"})
	}
	return c.Status(fiber.StatusCreated).JSON(exclusion)
}

func (h *ExclusionHandler) DeleteExclusion(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := h.exclusionRepo.Delete(c.Context(), c.Params("id"), userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exclusion not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete exclusion"})
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
