package controllers

import (
	"strconv"

	"academy/backend/config"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ProgressionController exposes the leveling and streak math without any
// account lookups.
type ProgressionController struct {
	Cfg *config.Config
}

func NewProgressionController(cfg *config.Config) *ProgressionController {
	return &ProgressionController{Cfg: cfg}
}

// Level godoc
// @Summary Level for an XP amount
// @Tags progression
// @Produce json
// @Param xp query int true "XP balance"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /progression/level [get]
func (pc *ProgressionController) Level(c *fiber.Ctx) error {
	xp, err := strconv.ParseUint(c.Query("xp"), 10, 64)
	if err != nil {
		return utils.BadRequest(c, "xp must be a non-negative integer")
	}
	return utils.Success(c, fiber.StatusOK, NewLevelView(pc.Cfg.Curve(), xp))
}

// Streak godoc
// @Summary Milestone status for a streak length
// @Tags progression
// @Produce json
// @Param days query int true "Current streak in days"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /progression/streak [get]
func (pc *ProgressionController) Streak(c *fiber.Ctx) error {
	days, err := strconv.ParseUint(c.Query("days"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "days must be a non-negative integer")
	}
	streak := uint32(days)
	return utils.Success(c, fiber.StatusOK, NewStreakView(pc.Cfg.Milestones(), streak, streak, 0))
}
