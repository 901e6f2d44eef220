package controllers

import (
	"academy/backend/ledger"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SignerController accepts instructions that only the backend signer may
// authorize, such as lessons verified outside the quiz flow.
type SignerController struct {
	Ledger ledger.Client
	Logger *zap.Logger
}

func NewSignerController(client ledger.Client, logger *zap.Logger) *SignerController {
	return &SignerController{Ledger: client, Logger: logger}
}

type CompleteLessonRequest struct {
	Learner     string `json:"learner" validate:"required,wallet"`
	CourseID    string `json:"course_id" validate:"required"`
	LessonIndex *int   `json:"lesson_index" validate:"required,gte=0"`
}

type FinalizeCourseRequest struct {
	Learner  string `json:"learner" validate:"required,wallet"`
	CourseID string `json:"course_id" validate:"required"`
}

// CompleteLesson godoc
// @Summary Mark a lesson complete for a learner
// @Tags signer
// @Accept json
// @Produce json
// @Param request body CompleteLessonRequest true "Lesson to complete"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /signer/lessons/complete [post]
func (sc *SignerController) CompleteLesson(c *fiber.Ctx) error {
	var input CompleteLessonRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	receipt, err := sc.Ledger.SubmitInstruction(c.UserContext(), ledger.Instruction{
		Kind:        ledger.CompleteLesson,
		Learner:     input.Learner,
		CourseID:    input.CourseID,
		LessonIndex: *input.LessonIndex,
	})
	if err != nil {
		return utils.LedgerError(c, err)
	}

	sc.Logger.Info("signer completed lesson",
		zap.String("learner", input.Learner),
		zap.String("course", input.CourseID),
		zap.Int("lesson", *input.LessonIndex))
	return utils.Success(c, fiber.StatusOK, receipt)
}

// FinalizeCourse godoc
// @Summary Award the completion bonus for a learner
// @Tags signer
// @Accept json
// @Produce json
// @Param request body FinalizeCourseRequest true "Course to finalize"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /signer/courses/finalize [post]
func (sc *SignerController) FinalizeCourse(c *fiber.Ctx) error {
	var input FinalizeCourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	receipt, err := sc.Ledger.SubmitInstruction(c.UserContext(), ledger.Instruction{
		Kind:     ledger.FinalizeCourse,
		Learner:  input.Learner,
		CourseID: input.CourseID,
	})
	if err != nil {
		return utils.LedgerError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, receipt)
}
