package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/skillforge/skillforge-backend/internal/handlers"
	"github.com/skillforge/skillforge-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	UserHandler      *handlers.UserHandler
	GenerateHandler  *handlers.GenerateHandler
	SkillPathHandler *handlers.SkillPathHandler
	LessonHandler    *handlers.LessonHandler
	QuizHandler      *handlers.QuizHandler
	ProjectHandler   *handlers.ProjectHandler
	TheoryHandler    *handlers.TheoryHandler
	AllowOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.POST("/register", cfg.AuthHandler.Register)
	api.POST("/login", cfg.AuthHandler.Login)

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth + user
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/user", cfg.UserHandler.GetMe)

	// Generation
	protected.POST("/generate", cfg.GenerateHandler.Generate)
	protected.POST("/generate/exercise-content", cfg.GenerateHandler.GenerateExerciseContent)
	protected.POST("/generate/all-answers", cfg.GenerateHandler.GenerateAllAnswers)
	protected.POST("/generate/theory-variation", cfg.GenerateHandler.GenerateTheoryVariation)

	// Skill paths, units, modules
	protected.GET("/skillpaths", cfg.SkillPathHandler.List)
	protected.GET("/skillpaths/:id", cfg.SkillPathHandler.Get)
	protected.PATCH("/skillpaths/:id", cfg.SkillPathHandler.Patch)
	protected.DELETE("/skillpaths/:id", cfg.SkillPathHandler.Delete)
	protected.POST("/skillpaths/:id/units", cfg.SkillPathHandler.AppendUnit)
	protected.GET("/units/:id", cfg.SkillPathHandler.GetUnit)
	protected.PATCH("/units/:id", cfg.SkillPathHandler.PatchUnit)
	protected.DELETE("/units/:id", cfg.SkillPathHandler.DeleteUnit)
	protected.POST("/units/:id/modules", cfg.SkillPathHandler.AppendModule)
	protected.GET("/modules/:id", cfg.SkillPathHandler.GetModule)
	protected.PATCH("/modules/:id", cfg.SkillPathHandler.PatchModule)
	protected.DELETE("/modules/:id", cfg.SkillPathHandler.DeleteModule)

	// Lessons, exercises, instructions
	protected.POST("/modules/:id/lessons", cfg.LessonHandler.AppendLesson)
	protected.GET("/lessons/:id", cfg.LessonHandler.Get)
	protected.PATCH("/lessons/:id", cfg.LessonHandler.Patch)
	protected.DELETE("/lessons/:id", cfg.LessonHandler.Delete)
	protected.POST("/lessons/:id/exercises", cfg.LessonHandler.AppendExercise)
	protected.GET("/exercises/:id", cfg.LessonHandler.GetExercise)
	protected.PATCH("/exercises/:id", cfg.LessonHandler.PatchExercise)
	protected.DELETE("/exercises/:id", cfg.LessonHandler.DeleteExercise)
	protected.POST("/exercises/:id/instructions", cfg.LessonHandler.AppendInstruction)
	protected.GET("/instructions/:id", cfg.LessonHandler.GetInstruction)
	protected.PATCH("/instructions/:id", cfg.LessonHandler.PatchInstruction)
	protected.DELETE("/instructions/:id", cfg.LessonHandler.DeleteInstruction)
	protected.POST("/instructions/:id/answer", cfg.LessonHandler.UpsertAnswer)

	// Quizzes, questions
	protected.POST("/modules/:id/quizzes", cfg.QuizHandler.AppendQuiz)
	protected.GET("/quizzes/:id", cfg.QuizHandler.Get)
	protected.PATCH("/quizzes/:id", cfg.QuizHandler.Patch)
	protected.DELETE("/quizzes/:id", cfg.QuizHandler.Delete)
	protected.POST("/quizzes/:id/questions", cfg.QuizHandler.AppendQuestion)
	protected.GET("/questions/:id", cfg.QuizHandler.GetQuestion)
	protected.PATCH("/questions/:id", cfg.QuizHandler.PatchQuestion)
	protected.DELETE("/questions/:id", cfg.QuizHandler.DeleteQuestion)

	// Projects, tasks, task instructions
	protected.POST("/modules/:id/projects", cfg.ProjectHandler.AppendProject)
	protected.GET("/projects/:id", cfg.ProjectHandler.Get)
	protected.PATCH("/projects/:id", cfg.ProjectHandler.Patch)
	protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
	protected.POST("/projects/:id/tasks", cfg.ProjectHandler.AppendTask)
	protected.GET("/tasks/:id", cfg.ProjectHandler.GetTask)
	protected.PATCH("/tasks/:id", cfg.ProjectHandler.PatchTask)
	protected.DELETE("/tasks/:id", cfg.ProjectHandler.DeleteTask)
	protected.POST("/tasks/:id/task-instructions", cfg.ProjectHandler.AppendTaskInstruction)
	protected.GET("/task-instructions/:id", cfg.ProjectHandler.GetTaskInstruction)
	protected.PATCH("/task-instructions/:id", cfg.ProjectHandler.PatchTaskInstruction)
	protected.DELETE("/task-instructions/:id", cfg.ProjectHandler.DeleteTaskInstruction)
	protected.POST("/task-instructions/:id/answer", cfg.ProjectHandler.UpsertTaskAnswer)

	// Theory variations
	protected.GET("/lessons/:id/theory-variations", cfg.TheoryHandler.ListForLesson)
	protected.GET("/theory-variations/:id", cfg.TheoryHandler.Get)
	protected.PATCH("/theory-variations/:id", cfg.TheoryHandler.Patch)
	protected.DELETE("/theory-variations/:id", cfg.TheoryHandler.Delete)
	protected.POST("/theory-variations/:id/activate", cfg.TheoryHandler.Activate)

	return router
}
