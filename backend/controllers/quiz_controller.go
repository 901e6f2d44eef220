package controllers

import (
	"encoding/json"
	"errors"
	"math"

	"academy/backend/config"
	"academy/backend/ledger"
	"academy/backend/models"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Ledger ledger.Client
	Logger *zap.Logger
}

func NewQuizController(db *gorm.DB, cfg *config.Config, client ledger.Client, logger *zap.Logger) *QuizController {
	return &QuizController{DB: db, Cfg: cfg, Ledger: client, Logger: logger}
}

type QuizQuestionView struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type QuizSubmission struct {
	Answers []int `json:"answers"`
}

type QuizResult struct {
	Correct          int             `json:"correct"`
	Total            int             `json:"total"`
	Percent          int             `json:"percent"`
	PassPercent      int             `json:"pass_percent"`
	Passed           bool            `json:"passed"`
	Answers          []bool          `json:"answers"`
	AlreadyCompleted bool            `json:"already_completed,omitempty"`
	Receipt          *ledger.Receipt `json:"receipt,omitempty"`
}

// ScoreQuiz returns the number of correct answers and round(correct/total*100).
// A quiz without questions scores 100.
func ScoreQuiz(questions []models.QuizQuestion, answers []int) (int, int, []bool) {
	marks := make([]bool, len(questions))
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			marks[i] = true
			correct++
		}
	}
	if len(questions) == 0 {
		return 0, 100, marks
	}
	percent := int(math.Round(float64(correct) / float64(len(questions)) * 100))
	return correct, percent, marks
}

// loadQuiz resolves the lesson and its questions. A nil lesson means the
// error response has already been written and the returned error is the
// result of writing it.
func (qc *QuizController) loadQuiz(c *fiber.Ctx) (*models.Course, *models.Lesson, []models.QuizQuestion, error) {
	index, ok := lessonIndexParam(c)
	if !ok {
		return nil, nil, nil, utils.BadRequest(c, "Invalid lesson index")
	}
	course, err := findCourse(qc.DB, c.Params("id"))
	if err != nil {
		return nil, nil, nil, courseLookupError(c, err)
	}

	var lesson *models.Lesson
	for i := range course.Lessons {
		if course.Lessons[i].LessonIndex == index {
			lesson = &course.Lessons[i]
			break
		}
	}
	if lesson == nil {
		return nil, nil, nil, utils.NotFound(c, "Lesson not found")
	}

	var questions []models.QuizQuestion
	if err := qc.DB.Where("lesson_id = ?", lesson.ID).Order("sequence_order, id").Find(&questions).Error; err != nil {
		return nil, nil, nil, utils.InternalServerError(c, "Could not query database")
	}
	return course, lesson, questions, nil
}

// GetQuiz godoc
// @Summary Quiz questions for a lesson, without answers
// @Tags quiz
// @Produce json
// @Param id path string true "Course id"
// @Param index path int true "Lesson index"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{index}/quiz [get]
func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	_, lesson, questions, err := qc.loadQuiz(c)
	if lesson == nil {
		return err
	}

	views := make([]QuizQuestionView, 0, len(questions))
	for i, q := range questions {
		var options []string
		if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
			qc.Logger.Error("malformed quiz options", zap.Uint("question_id", q.ID), zap.Error(err))
			return utils.InternalServerError(c, "Malformed quiz")
		}
		views = append(views, QuizQuestionView{Index: i, Question: q.Question, Options: options})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lesson":       lesson.LessonIndex,
		"title":        lesson.Title,
		"pass_percent": qc.Cfg.QuizPassPercent,
		"questions":    views,
	})
}

// SubmitQuiz godoc
// @Summary Grade a quiz and complete the lesson when passed
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Course id"
// @Param index path int true "Lesson index"
// @Param request body QuizSubmission true "Selected option per question"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{index}/quiz [post]
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	var input QuizSubmission
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, lesson, questions, err := qc.loadQuiz(c)
	if lesson == nil {
		return err
	}
	if len(questions) > 0 && len(input.Answers) != len(questions) {
		return utils.BadRequest(c, "One answer is required per question")
	}

	correct, percent, marks := ScoreQuiz(questions, input.Answers)
	result := QuizResult{
		Correct:     correct,
		Total:       len(questions),
		Percent:     percent,
		PassPercent: qc.Cfg.QuizPassPercent,
		Passed:      percent >= qc.Cfg.QuizPassPercent,
		Answers:     marks,
	}
	if !result.Passed {
		return utils.Success(c, fiber.StatusOK, result)
	}

	receipt, err := qc.Ledger.SubmitInstruction(c.UserContext(), ledger.Instruction{
		Kind:        ledger.CompleteLesson,
		Learner:     utils.CurrentWallet(c),
		CourseID:    course.Slug,
		LessonIndex: lesson.LessonIndex,
	})
	switch {
	case errors.Is(err, ledger.ErrLessonAlreadyCompleted):
		result.AlreadyCompleted = true
	case err != nil:
		return utils.LedgerError(c, err)
	default:
		result.Receipt = receipt
	}

	return utils.Success(c, fiber.StatusOK, result)
}
