package controllers

import (
	"strconv"

	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

// ListCourses godoc
// @Summary List active courses
// @Tags courses
// @Produce json
// @Param track query int false "Track id"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.PaginatedResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	query := cc.DB.Model(&models.Course{}).Where("active = ?", true)
	if raw := c.Query("track"); raw != "" {
		track, err := strconv.Atoi(raw)
		if err != nil {
			return utils.BadRequest(c, "track must be an integer")
		}
		query = query.Where("track_id = ?", track)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var courses []models.Course
	if err := query.Preload("Lessons").Order("track_id, id").Offset(offset).Limit(pageSize).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]CourseSummary, 0, len(courses))
	for _, course := range courses {
		result = append(result, NewCourseSummary(course))
	}

	return utils.Paginate(c, result, total, page, pageSize)
}

// GetCourse godoc
// @Summary Course details with ordered lessons
// @Tags courses
// @Produce json
// @Param id path string true "Course id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	course, err := findCourse(cc.DB, c.Params("id"))
	if err != nil {
		return courseLookupError(c, err)
	}

	lessonIDs := make([]uint, 0, len(course.Lessons))
	for _, l := range course.Lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}
	var counts []struct {
		LessonID  uint
		Questions int64
	}
	if len(lessonIDs) > 0 {
		err := cc.DB.Model(&models.QuizQuestion{}).
			Select("lesson_id, count(*) AS questions").
			Where("lesson_id IN ?", lessonIDs).
			Group("lesson_id").
			Scan(&counts).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
	}
	questionsByLesson := make(map[uint]int64, len(counts))
	for _, n := range counts {
		questionsByLesson[n.LessonID] = n.Questions
	}

	lessons := make([]fiber.Map, 0, len(course.Lessons))
	for _, l := range course.Lessons {
		questions := questionsByLesson[l.ID]

		lessons = append(lessons, fiber.Map{
			"index":            l.LessonIndex,
			"title":            l.Title,
			"content":          l.Content,
			"code_example":     l.CodeExample,
			"duration_minutes": l.DurationMinutes,
			"xp":               course.XPPerLesson,
			"quiz_questions":   questions,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course":  NewCourseSummary(*course),
		"lessons": lessons,
	})
}
