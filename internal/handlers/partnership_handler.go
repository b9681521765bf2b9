package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/evredo/SupportMatchBack/internal/models"
	"github.com/evredo/SupportMatchBack/internal/services"
)

type partnershipReader interface {
	GetByID(ctx context.Context, id string) (*models.Partnership, error)
	GetActiveByUser(ctx context.Context, userID string) (*models.Partnership, error)
	ListByUser(ctx context.Context, userID string) ([]models.Partnership, error)
}

type partnershipEnder interface {
	End(ctx context.Context, id string) (*models.Partnership, error)
}

type PartnershipHandler struct {
	partnershipRepo    partnershipReader
	partnershipService partnershipEnder
}

func NewPartnershipHandler(
	partnershipRepo partnershipReader,
	partnershipService partnershipEnder,
) *PartnershipHandler {
	return &PartnershipHandler{
		partnershipRepo:    partnershipRepo,
		partnershipService: partnershipService,
	}
}

func (h *PartnershipHandler) GetActivePartnership(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	partnership, err := h.partnershipRepo.GetActiveByUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active partnership"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch partnership"})
	}
	return c.JSON(partnership)
}

func (h *PartnershipHandler) GetPartnershipHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	partnerships, err := h.partnershipRepo.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch history"})
	}
	return c.JSON(partnerships)
}

func (h *PartnershipHandler) GetPartnership(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	partnership, err := h.partnershipRepo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Partnership not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch partnership"})
	}
	if role != "admin" && partnership.PartnerID(userID) == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	return c.JSON(partnership)
}

// EndPartnership lets a participant end their own partnership early.
func (h *PartnershipHandler) EndPartnership(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	partnership, err := h.partnershipRepo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Partnership not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch partnership"})
	}
	if partnership.PartnerID(userID) == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	ended, err := h.partnershipService.End(c.Context(), partnership.ID)
	if err != nil {
		return respondPartnershipError(c, err)
	}
	return c.JSON(ended)
}

func respondPartnershipError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Partnership not found"})
	case errors.Is(err, services.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Partnership already ended"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update partnership"})
	}
}
