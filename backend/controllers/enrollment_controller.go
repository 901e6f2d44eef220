package controllers

import (
	"academy/backend/config"
	"academy/backend/ledger"
	"academy/backend/progression"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Ledger ledger.Client
}

func NewEnrollmentController(db *gorm.DB, cfg *config.Config, client ledger.Client) *EnrollmentController {
	return &EnrollmentController{DB: db, Cfg: cfg, Ledger: client}
}

// GetEnrollment godoc
// @Summary Lesson progress in a course
// @Tags enrollment
// @Produce json
// @Param id path string true "Course id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enrollment [get]
func (ec *EnrollmentController) GetEnrollment(c *fiber.Ctx) error {
	course, err := findCourse(ec.DB, c.Params("id"))
	if err != nil {
		return courseLookupError(c, err)
	}
	ctx := c.UserContext()

	onChain, err := ec.Ledger.FetchCourse(ctx, course.Slug)
	if err != nil {
		return utils.LedgerError(c, err)
	}
	enrollment, err := ec.Ledger.FetchEnrollment(ctx, course.Slug, utils.CurrentWallet(c))
	if err != nil {
		return utils.LedgerError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, NewEnrollmentView(enrollment, onChain.LessonCount, course.Lessons))
}

// Enroll godoc
// @Summary Enroll the session wallet in a course
// @Tags enrollment
// @Produce json
// @Param id path string true "Course id"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	course, err := findCourse(ec.DB, c.Params("id"))
	if err != nil {
		return courseLookupError(c, err)
	}

	receipt, err := ec.Ledger.SubmitInstruction(c.UserContext(), ledger.Instruction{
		Kind:     ledger.Enroll,
		Learner:  utils.CurrentWallet(c),
		CourseID: course.Slug,
	})
	if err != nil {
		return utils.LedgerError(c, err)
	}
	return utils.Created(c, receipt)
}

// CloseEnrollment godoc
// @Summary Drop a course enrollment
// @Tags enrollment
// @Produce json
// @Param id path string true "Course id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enrollment [delete]
func (ec *EnrollmentController) CloseEnrollment(c *fiber.Ctx) error {
	receipt, err := ec.Ledger.SubmitInstruction(c.UserContext(), ledger.Instruction{
		Kind:     ledger.CloseEnrollment,
		Learner:  utils.CurrentWallet(c),
		CourseID: c.Params("id"),
	})
	if err != nil {
		return utils.LedgerError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, receipt)
}

// ClaimCompletion godoc
// @Summary Claim the completion bonus and credential
// @Tags enrollment
// @Produce json
// @Param id path string true "Course id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/claim [post]
func (ec *EnrollmentController) ClaimCompletion(c *fiber.Ctx) error {
	ctx := c.UserContext()
	wallet := utils.CurrentWallet(c)
	courseID := c.Params("id")

	receipt, err := ec.Ledger.SubmitInstruction(ctx, ledger.Instruction{
		Kind:     ledger.FinalizeCourse,
		Learner:  wallet,
		CourseID: courseID,
	})
	if err != nil {
		return utils.LedgerError(c, err)
	}

	credential := ""
	for _, ev := range receipt.Events {
		if ev.Kind == ledger.EventCredentialIssued {
			credential = progression.CredentialURL(ev.Detail)
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"receipt":        receipt,
		"credential_url": credential,
	})
}
