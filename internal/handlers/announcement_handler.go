package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/evredo/SupportMatchBack/internal/models"
)

type announcementStore interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	ListActive(ctx context.Context) ([]models.Announcement, error)
	ListAll(ctx context.Context) ([]models.Announcement, error)
	Update(ctx context.Context, announcement *models.Announcement) error
	Deactivate(ctx context.Context, id string) error
}

type AnnouncementHandler struct {
	announcementRepo announcementStore
}

func NewAnnouncementHandler(announcementRepo announcementStore) *AnnouncementHandler {
	return &AnnouncementHandler{announcementRepo: announcementRepo}
}

type announcementRequest struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Type      string     `json:"type"`
	IsActive  *bool      `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *AnnouncementHandler) ListActiveAnnouncements(c *fiber.Ctx) error {
	announcements, err := h.announcementRepo.ListActive(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch announcements"})
	}
	return c.JSON(announcements)
}

func (h *AnnouncementHandler) ListAllAnnouncements(c *fiber.Ctx) error {
	announcements, err := h.announcementRepo.ListAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch announcements"})
	}
	return c.JSON(announcements)
}

func (h *AnnouncementHandler) CreateAnnouncement(c *fiber.Ctx) error {
	var req announcementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and content are required"})
	}
	if req.Type == "" {
		req.Type = "info"
	}

	announcement := &models.Announcement{
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
	}
	if req.IsActive != nil {
		announcement.IsActive = *req.IsActive
	}
	if err := h.announcementRepo.Create(c.Context(), announcement); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create announcement"})
	}
	return c.Status(fiber.StatusCreated).JSON(announcement)
}

func (h *AnnouncementHandler) UpdateAnnouncement(c *fiber.Ctx) error {
	var req announcementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and content are required"})
	}

	announcement := &models.Announcement{
		ID:        c.Params("id"),
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
	}
	if req.Type == "" {
		announcement.Type = "info"
	}
	if req.IsActive != nil {
		announcement.IsActive = *req.IsActive
	}
	if err := h.announcementRepo.Update(c.Context(), announcement); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Announcement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update announcement"})
	}
	return c.JSON(announcement)
}

func (h *AnnouncementHandler) DeactivateAnnouncement(c *fiber.Ctx) error {
	if err := h.announcementRepo.Deactivate(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Announcement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate announcement"})
	}
	return c.JSON(fiber.Map{"status": "deactivated"})
}
