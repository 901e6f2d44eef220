package routes

import (
	"academy/backend/config"
	"academy/backend/controllers"
	"academy/backend/ledger"
	"academy/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, client ledger.Client, logger *zap.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(cfg, logger)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	signerMiddleware := middleware.SignerMiddleware(cfg)

	// Progression routes
	progressionController := controllers.NewProgressionController(cfg)
	app.Get("/api/progression/level", progressionController.Level)
	app.Get("/api/progression/streak", progressionController.Streak)

	// Catalog routes
	coursesController := controllers.NewCoursesController(db, cfg)
	app.Get("/api/courses", coursesController.ListCourses)
	app.Get("/api/courses/:id", coursesController.GetCourse)

	// Learner routes
	learnerController := controllers.NewLearnerController(db, cfg, client, logger)
	learner := app.Group("/api/learner", authMiddleware)
	learner.Post("/init", learnerController.InitLearner)
	learner.Get("/profile", learnerController.GetProfile)
	learner.Get("/achievements", learnerController.GetAchievements)
	learner.Get("/credentials", learnerController.GetCredentials)

	// Enrollment and quiz routes
	enrollmentController := controllers.NewEnrollmentController(db, cfg, client)
	quizController := controllers.NewQuizController(db, cfg, client, logger)
	// Group middleware would also match the public /api/courses/:id route,
	// so auth is attached per route.
	app.Get("/api/courses/:id/enrollment", authMiddleware, enrollmentController.GetEnrollment)
	app.Post("/api/courses/:id/enroll", authMiddleware, enrollmentController.Enroll)
	app.Delete("/api/courses/:id/enrollment", authMiddleware, enrollmentController.CloseEnrollment)
	app.Post("/api/courses/:id/claim", authMiddleware, enrollmentController.ClaimCompletion)
	app.Get("/api/courses/:id/lessons/:index/quiz", authMiddleware, quizController.GetQuiz)
	app.Post("/api/courses/:id/lessons/:index/quiz", authMiddleware, quizController.SubmitQuiz)

	// Backend signer routes
	signerController := controllers.NewSignerController(client, logger)
	signer := app.Group("/api/signer", signerMiddleware)
	signer.Post("/lessons/complete", signerController.CompleteLesson)
	signer.Post("/courses/finalize", signerController.FinalizeCourse)
}
