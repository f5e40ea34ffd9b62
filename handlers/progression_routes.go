// handlers/progression_routes.go
package handlers

import (
	"errors"
	"time"

	"xp-progression-system/middleware"
	"xp-progression-system/models"
	"xp-progression-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// today is the calendar date passed into every engine call. The engine never
// reads a clock itself; the handler decides what "today" means (UTC).
func today() string {
	return time.Now().UTC().Format(services.DayFormat)
}

// resolveUserType looks the caller up in the local user mirror. Users the
// sync worker hasn't seen yet default to founder (the tighter budget).
func resolveUserType(db *gorm.DB, userID string) models.UserType {
	var m models.UserMirror
	if err := db.Where("user_id = ?", userID).First(&m).Error; err != nil {
		return models.UserTypeFounder
	}
	return m.UserType
}

func SetupProgressionRoutes(app *fiber.App, engine *services.EngineService) {
	// Public: the level table, for UI rendering (progress bars, titles)
	app.Get("/levels", func(c *fiber.Ctx) error {
		var levels []fiber.Map
		for _, t := range services.LevelThresholds {
			levels = append(levels, fiber.Map{
				"level": t.Level,
				"min":   t.Min,
				"max":   t.Max,
				"label": t.Label,
				"slug":  services.LevelSlug(t.Level),
			})
		}
		return c.JSON(levels)
	})

	// 🔐 Secured routes — require user context (userID, roles)
	// The gateway forwards paths like /api/v1/progression/s/... -> /s/...
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Post("/posts/record", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Category string `json:"category"`
			PostID   string `json:"post_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.PostID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "post_id is required",
			})
		}

		kind := resolveUserType(engine.DB, userID)
		result, err := engine.RecordPost(userID, kind, req.Category, req.PostID, today())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to record post",
				"cause": err.Error(),
			})
		}
		if !result.Admission.Allowed {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": result.Admission.Reason,
			})
		}
		return c.JSON(result)
	})

	securedGroup.Post("/comments/record", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			CommentID string `json:"comment_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.CommentID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "comment_id is required",
			})
		}

		kind := resolveUserType(engine.DB, userID)
		result, err := engine.RecordComment(userID, kind, req.CommentID, today())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to record comment",
				"cause": err.Error(),
			})
		}
		if !result.Admission.Allowed {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": result.Admission.Reason,
			})
		}
		return c.JSON(result)
	})

	securedGroup.Post("/investor-actions/record", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Action   string `json:"action"`
			TargetID string `json:"target_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Action == "" || req.TargetID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "action and target_id are required",
			})
		}

		result, err := engine.RecordInvestorAction(userID, req.Action, req.TargetID, today())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to record investor action",
				"cause": err.Error(),
			})
		}
		if !result.Admission.Allowed {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": result.Admission.Reason,
			})
		}
		return c.JSON(result)
	})

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prof, err := engine.Ledger.EnsureProfile(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progress",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"id":             prof.ID,
			"user_id":        prof.UserID,
			"total_xp":       prof.TotalXP,
			"level":          prof.CurrentLevel,
			"level_label":    services.LevelLabel(prof.CurrentLevel),
			"level_slug":     services.LevelSlug(prof.CurrentLevel),
			"current_streak": prof.CurrentStreak,
			"last_post_date": prof.LastPostDate,
		})
	})

	securedGroup.Get("/user/progress/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page := c.QueryInt("page", 1)
		size := c.QueryInt("size", 20)

		history, err := engine.Ledger.History(userID, page, size)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get history",
				"cause": err.Error(),
			})
		}
		return c.JSON(history)
	})

	securedGroup.Get("/user/progress/milestones", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		ms, err := engine.Milestones.ListMilestones(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get milestones",
				"cause": err.Error(),
			})
		}

		response := make([]fiber.Map, 0, len(ms))
		for _, m := range ms {
			response = append(response, fiber.Map{
				"id":          m.ID,
				"type":        m.MilestoneType,
				"name":        services.MilestoneDisplayName(m.MilestoneType),
				"achieved_at": m.AchievedAt,
			})
		}
		return c.JSON(response)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			XP     int64  `json:"xp" validate:"required,min=1"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.XP < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "xp must be non-negative",
			})
		}

		result, err := engine.Ledger.Award(req.UserID, req.XP, models.XPEventAdminGrant, nil, req.Reason, nil)
		if err != nil {
			var status int
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = fiber.StatusNotFound
			} else {
				status = fiber.StatusInternalServerError
			}
			return c.Status(status).JSON(fiber.Map{
				"error": "XP award failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message":  "XP granted successfully",
			"user_id":  req.UserID,
			"xp":       req.XP,
			"total_xp": result.TotalXP,
			"level":    result.Level,
		})
	})
}
