package main

import (
	"fmt"
	"os"
	"time"

	"github.com/skillforge/skillforge-backend/internal/db"
	"github.com/skillforge/skillforge-backend/internal/handlers"
	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/middleware"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/server"
	"github.com/skillforge/skillforge-backend/internal/services"
	"github.com/skillforge/skillforge-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	skillPathRepo := repos.NewSkillPathRepo(thePG, log)
	unitRepo := repos.NewUnitRepo(thePG, log)
	moduleRepo := repos.NewModuleRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)
	exerciseRepo := repos.NewExerciseRepo(thePG, log)
	instructionRepo := repos.NewInstructionRepo(thePG, log)
	instructionAnswerRepo := repos.NewInstructionAnswerRepo(thePG, log)
	quizRepo := repos.NewQuizRepo(thePG, log)
	quizQuestionRepo := repos.NewQuizQuestionRepo(thePG, log)
	quizAnswerRepo := repos.NewQuizAnswerRepo(thePG, log)
	projectRepo := repos.NewProjectRepo(thePG, log)
	projectTaskRepo := repos.NewProjectTaskRepo(thePG, log)
	taskInstructionRepo := repos.NewTaskInstructionRepo(thePG, log)
	taskInstructionAnswerRepo := repos.NewTaskInstructionAnswerRepo(thePG, log)
	theoryVariationRepo := repos.NewTheoryVariationRepo(thePG, log)
	aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log, services.OpenAIConfig{
		BaseURL:    utils.GetEnv("OPENAI_BASE_URL", "", log),
		APIKey:     utils.GetEnv("OPENAI_API_KEY", "", log),
		Model:      utils.GetEnv("OPENAI_MODEL", "", log),
		Timeout:    time.Duration(utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 180, log)) * time.Second,
		MaxRetries: utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 3, log),
	})
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	owners := services.NewOwnership(
		skillPathRepo,
		unitRepo,
		moduleRepo,
		lessonRepo,
		exerciseRepo,
		instructionRepo,
		quizRepo,
		quizQuestionRepo,
		projectRepo,
		projectTaskRepo,
		taskInstructionRepo,
		theoryVariationRepo,
	)
	deleter := services.NewCascade(
		unitRepo,
		moduleRepo,
		lessonRepo,
		exerciseRepo,
		instructionRepo,
		instructionAnswerRepo,
		quizRepo,
		quizQuestionRepo,
		quizAnswerRepo,
		projectRepo,
		projectTaskRepo,
		taskInstructionRepo,
		taskInstructionAnswerRepo,
		theoryVariationRepo,
	)
	generationService := services.NewContentGenerationService(
		thePG,
		log,
		skillPathRepo,
		unitRepo,
		moduleRepo,
		lessonRepo,
		exerciseRepo,
		instructionRepo,
		instructionAnswerRepo,
		quizRepo,
		quizQuestionRepo,
		quizAnswerRepo,
		projectRepo,
		projectTaskRepo,
		taskInstructionRepo,
		taskInstructionAnswerRepo,
		aiCallLogRepo,
		owners,
		openaiClient,
	)
	contentService := services.NewExerciseContentService(
		thePG,
		log,
		lessonRepo,
		exerciseRepo,
		instructionRepo,
		instructionAnswerRepo,
		theoryVariationRepo,
		aiCallLogRepo,
		openaiClient,
	)
	skillPathService := services.NewSkillPathService(thePG, log, skillPathRepo, unitRepo, moduleRepo, owners, deleter)
	lessonService := services.NewLessonService(thePG, log, lessonRepo, exerciseRepo, instructionRepo, instructionAnswerRepo, theoryVariationRepo, owners, deleter)
	quizService := services.NewQuizService(thePG, log, quizRepo, quizQuestionRepo, quizAnswerRepo, owners, deleter)
	projectService := services.NewProjectService(thePG, log, projectRepo, projectTaskRepo, taskInstructionRepo, taskInstructionAnswerRepo, owners, deleter)
	theoryService := services.NewTheoryService(thePG, log, theoryVariationRepo, owners)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	generateHandler := handlers.NewGenerateHandler(generationService, contentService)
	skillPathHandler := handlers.NewSkillPathHandler(skillPathService)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	quizHandler := handlers.NewQuizHandler(quizService)
	projectHandler := handlers.NewProjectHandler(projectService)
	theoryHandler := handlers.NewTheoryHandler(theoryService, contentService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		UserHandler:      userHandler,
		GenerateHandler:  generateHandler,
		SkillPathHandler: skillPathHandler,
		LessonHandler:    lessonHandler,
		QuizHandler:      quizHandler,
		ProjectHandler:   projectHandler,
		TheoryHandler:    theoryHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
