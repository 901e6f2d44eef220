package controllers

import (
	"errors"
	"time"

	"academy/backend/config"
	"academy/backend/ledger"
	"academy/backend/models"
	"academy/backend/progression"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LearnerController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Ledger ledger.Client
	Logger *zap.Logger
}

func NewLearnerController(db *gorm.DB, cfg *config.Config, client ledger.Client, logger *zap.Logger) *LearnerController {
	return &LearnerController{DB: db, Cfg: cfg, Ledger: client, Logger: logger}
}

type InitLearnerRequest struct {
	Referrer string `json:"referrer" validate:"omitempty,wallet"`
}

// InitLearner godoc
// @Summary Create the learner profile for the session wallet
// @Tags learner
// @Accept json
// @Produce json
// @Param request body InitLearnerRequest false "Optional referrer"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learner/init [post]
func (lc *LearnerController) InitLearner(c *fiber.Ctx) error {
	var input InitLearnerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "Cannot parse JSON")
		}
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	wallet := utils.CurrentWallet(c)
	if input.Referrer == wallet {
		input.Referrer = ""
	}

	receipt, err := lc.Ledger.SubmitInstruction(c.UserContext(), ledger.Instruction{
		Kind:     ledger.InitLearner,
		Learner:  wallet,
		Referrer: input.Referrer,
	})
	if err != nil {
		return utils.LedgerError(c, err)
	}
	return utils.Created(c, receipt)
}

// GetProfile godoc
// @Summary Learner profile with level and streak views
// @Tags learner
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learner/profile [get]
func (lc *LearnerController) GetProfile(c *fiber.Ctx) error {
	wallet := utils.CurrentWallet(c)
	ctx := c.UserContext()

	profile, err := lc.Ledger.FetchProfile(ctx, wallet)
	if err != nil {
		return utils.LedgerError(c, err)
	}
	xp, err := lc.Ledger.FetchBalance(ctx, wallet)
	if err != nil {
		return utils.LedgerError(c, err)
	}

	return utils.Success(c, fiber.StatusOK,
		NewProfileView(lc.Cfg.Curve(), lc.Cfg.Milestones(), profile, xp, time.Now()))
}

// GetAchievements godoc
// @Summary Achievement list with unlocked state
// @Tags learner
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learner/achievements [get]
func (lc *LearnerController) GetAchievements(c *fiber.Ctx) error {
	profile, err := lc.Ledger.FetchProfile(c.UserContext(), utils.CurrentWallet(c))
	if err != nil {
		return utils.LedgerError(c, err)
	}

	views := NewAchievementViews(profile.AchievementFlags)
	unlocked := 0
	for _, v := range views {
		if v.Unlocked {
			unlocked++
		}
	}
	return utils.Success(c, fiber.StatusOK, views, fiber.Map{
		"unlocked": unlocked,
		"total":    len(views),
	})
}

// GetCredentials godoc
// @Summary Completed courses and their credentials
// @Tags learner
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /learner/credentials [get]
func (lc *LearnerController) GetCredentials(c *fiber.Ctx) error {
	wallet := utils.CurrentWallet(c)
	ctx := c.UserContext()

	var courses []models.Course
	if err := lc.DB.Order("track_id, id").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	credentials := make([]fiber.Map, 0)
	for _, course := range courses {
		e, err := lc.Ledger.FetchEnrollment(ctx, course.Slug, wallet)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return utils.LedgerError(c, err)
		}
		if e.CompletedAt == nil {
			continue
		}

		credentials = append(credentials, fiber.Map{
			"course":         course.Slug,
			"name":           course.Name,
			"track":          progression.TrackName(course.TrackID),
			"completed_at":   *e.CompletedAt,
			"completed_on":   progression.FormatDate(*e.CompletedAt),
			"bonus_claimed":  e.BonusClaimed,
			"credential_url": progression.CredentialURL(e.CredentialAsset),
		})
	}

	return utils.Success(c, fiber.StatusOK, credentials)
}
