package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/evredo/SupportMatchBack/internal/models"
)

type matchRunner interface {
	RunMatchingPass(ctx context.Context) ([]models.Partnership, error)
}

type adminProfileLister interface {
	ListActive(ctx context.Context) ([]models.SupportProfile, error)
	ListAll(ctx context.Context) ([]models.SupportProfile, error)
}

type adminPartnershipLister interface {
	ListActive(ctx context.Context) ([]models.Partnership, error)
	ListAll(ctx context.Context) ([]models.Partnership, error)
}

type AdminHandler struct {
	matchingService    matchRunner
	partnershipService partnershipEnder
	profileRepo        adminProfileLister
	partnershipRepo    adminPartnershipLister
}

func NewAdminHandler(
	matchingService matchRunner,
	partnershipService partnershipEnder,
	profileRepo adminProfileLister,
	partnershipRepo adminPartnershipLister,
) *AdminHandler {
	return &AdminHandler{
		matchingService:    matchingService,
		partnershipService: partnershipService,
		profileRepo:        profileRepo,
		partnershipRepo:    partnershipRepo,
	}
}

// RunMatching triggers one synchronous matching pass. Partnerships committed
// before a mid-run failure are kept and reported alongside the error.
func (h *AdminHandler) RunMatching(c *fiber.Ctx) error {
	created, err := h.matchingService.RunMatchingPass(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":                "Matching pass aborted",
			"partnerships_created": created,
		})
	}
	return c.JSON(fiber.Map{
		"partnerships_created": created,
		"count":                len(created),
	})
}

type updatePartnershipStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdatePartnershipStatus(c *fiber.Ctx) error {
	var req updatePartnershipStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	status, err := models.ParsePartnershipStatus(req.Status)
	if err != nil || status != models.PartnershipStatusEnded {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status can only be set to 'ended'"})
	}

	ended, err := h.partnershipService.End(c.Context(), c.Params("id"))
	if err != nil {
		return respondPartnershipError(c, err)
	}
	return c.JSON(ended)
}

func (h *AdminHandler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := h.profileRepo.ListAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profiles"})
	}
	return c.JSON(profiles)
}

func (h *AdminHandler) ListPartnerships(c *fiber.Ctx) error {
	partnerships, err := h.partnershipRepo.ListAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch partnerships"})
	}
	return c.JSON(partnerships)
}

func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	profiles, err := h.profileRepo.ListActive(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}
	partnerships, err := h.partnershipRepo.ListActive(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}
	return c.JSON(fiber.Map{
		"active_users":         len(profiles),
		"current_partnerships": len(partnerships),
	})
}
