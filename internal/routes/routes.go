package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/evredo/SupportMatchBack/internal/config"
	"github.com/evredo/SupportMatchBack/internal/handlers"
	"github.com/evredo/SupportMatchBack/internal/middleware"
	"github.com/evredo/SupportMatchBack/internal/repository"
	"github.com/evredo/SupportMatchBack/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger zerolog.Logger) {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	exclusionRepo := repository.NewExclusionRepository(db)
	partnershipRepo := repository.NewPartnershipRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	partnershipService := services.NewPartnershipService(partnershipRepo, cfg.PartnershipDurationDays)
	matchingService := services.NewMatchingService(
		profileRepo,
		exclusionRepo,
		partnershipRepo,
		partnershipService,
		services.ScoreWeights{
			SameTimezone:     cfg.MatchTimezoneWeight,
			MutualPreference: cfg.MatchGenderPrefWeight,
		},
		logger,
	)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileRepo)
	exclusionHandler := handlers.NewExclusionHandler(exclusionRepo)
	partnershipHandler := handlers.NewPartnershipHandler(partnershipRepo, partnershipService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementRepo)
	adminHandler := handlers.NewAdminHandler(matchingService, partnershipService, profileRepo, partnershipRepo)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	profile := authProtected.Group("/profile")
	profile.Get("", profileHandler.GetProfile)
	profile.Post("", profileHandler.CreateProfile)
	profile.Put("", profileHandler.UpdateProfile)
	profile.Delete("", profileHandler.DeactivateProfile)

	exclusions := authProtected.Group("/exclusions")
	exclusions.Get("", exclusionHandler.ListExclusions)
	exclusions.Post("", exclusionHandler.CreateExclusion)
	exclusions.Delete("/:id", exclusionHandler.DeleteExclusion)

	partnership := authProtected.Group("/partnership")
	partnership.Get("/active", partnershipHandler.GetActivePartnership)
	partnership.Get("/history", partnershipHandler.GetPartnershipHistory)
	partnership.Get("/:id", partnershipHandler.GetPartnership)
	partnership.Post("/:id/end", partnershipHandler.EndPartnership)

	authProtected.Get("/announcements", announcementHandler.ListActiveAnnouncements)

	admin := authProtected.Group("/admin", middleware.AdminRequired())
	admin.Get("/stats", adminHandler.GetStats)
	admin.Get("/profiles", adminHandler.ListProfiles)
	admin.Get("/partnerships", adminHandler.ListPartnerships)
	admin.Put("/partnerships/:id/status", adminHandler.UpdatePartnershipStatus)
	admin.Post("/partnerships/run-matching", adminHandler.RunMatching)
	admin.Get("/announcements", announcementHandler.ListAllAnnouncements)
	admin.Post("/announcements", announcementHandler.CreateAnnouncement)
	admin.Put("/announcements/:id", announcementHandler.UpdateAnnouncement)
	admin.Delete("/announcements/:id", announcementHandler.DeactivateAnnouncement)
}
