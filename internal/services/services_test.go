package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillforge/skillforge-backend/internal/db"
	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

// fakeAI satisfies OpenAIClient with canned output, so generation tests
// exercise the materializer without the network.
type fakeAI struct {
	jsonOut      map[string]any
	jsonErr      error
	textOut      string
	textErr      error
	jsonCalls    int
	textCalls    int
	lastTextUser string
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.jsonCalls++
	return f.jsonOut, f.jsonErr
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string, maxOutputTokens int) (string, error) {
	f.textCalls++
	f.lastTextUser = user
	return f.textOut, f.textErr
}

func (f *fakeAI) Model() string { return "test-model" }

// harness wires every repo and service against an in-memory database.
type harness struct {
	gdb *gorm.DB
	ai  *fakeAI

	skillPathRepo   repos.SkillPathRepo
	unitRepo        repos.UnitRepo
	moduleRepo      repos.ModuleRepo
	lessonRepo      repos.LessonRepo
	exerciseRepo    repos.ExerciseRepo
	instructionRepo repos.InstructionRepo
	answerRepo      repos.InstructionAnswerRepo
	quizRepo        repos.QuizRepo
	questionRepo    repos.QuizQuestionRepo
	quizAnswerRepo  repos.QuizAnswerRepo
	projectRepo     repos.ProjectRepo
	taskRepo        repos.ProjectTaskRepo
	taskInstRepo    repos.TaskInstructionRepo
	taskAnswerRepo  repos.TaskInstructionAnswerRepo
	variationRepo   repos.TheoryVariationRepo
	callLogRepo     repos.AICallLogRepo

	generation ContentGenerationService
	content    ExerciseContentService
	skillPaths SkillPathService
	lessons    LessonService
	quizzes    QuizService
	projects   ProjectService
	theory     TheoryService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	h := &harness{gdb: gdb, ai: &fakeAI{}}

	h.skillPathRepo = repos.NewSkillPathRepo(gdb, log)
	h.unitRepo = repos.NewUnitRepo(gdb, log)
	h.moduleRepo = repos.NewModuleRepo(gdb, log)
	h.lessonRepo = repos.NewLessonRepo(gdb, log)
	h.exerciseRepo = repos.NewExerciseRepo(gdb, log)
	h.instructionRepo = repos.NewInstructionRepo(gdb, log)
	h.answerRepo = repos.NewInstructionAnswerRepo(gdb, log)
	h.quizRepo = repos.NewQuizRepo(gdb, log)
	h.questionRepo = repos.NewQuizQuestionRepo(gdb, log)
	h.quizAnswerRepo = repos.NewQuizAnswerRepo(gdb, log)
	h.projectRepo = repos.NewProjectRepo(gdb, log)
	h.taskRepo = repos.NewProjectTaskRepo(gdb, log)
	h.taskInstRepo = repos.NewTaskInstructionRepo(gdb, log)
	h.taskAnswerRepo = repos.NewTaskInstructionAnswerRepo(gdb, log)
	h.variationRepo = repos.NewTheoryVariationRepo(gdb, log)
	h.callLogRepo = repos.NewAICallLogRepo(gdb, log)

	owners := NewOwnership(
		h.skillPathRepo, h.unitRepo, h.moduleRepo, h.lessonRepo, h.exerciseRepo,
		h.instructionRepo, h.quizRepo, h.questionRepo, h.projectRepo, h.taskRepo,
		h.taskInstRepo, h.variationRepo,
	)
	deleter := NewCascade(
		h.unitRepo, h.moduleRepo, h.lessonRepo, h.exerciseRepo, h.instructionRepo,
		h.answerRepo, h.quizRepo, h.questionRepo, h.quizAnswerRepo, h.projectRepo,
		h.taskRepo, h.taskInstRepo, h.taskAnswerRepo, h.variationRepo,
	)

	h.generation = NewContentGenerationService(
		gdb, log,
		h.skillPathRepo, h.unitRepo, h.moduleRepo, h.lessonRepo, h.exerciseRepo,
		h.instructionRepo, h.answerRepo, h.quizRepo, h.questionRepo, h.quizAnswerRepo,
		h.projectRepo, h.taskRepo, h.taskInstRepo, h.taskAnswerRepo, h.callLogRepo,
		owners, h.ai,
	)
	h.content = NewExerciseContentService(
		gdb, log,
		h.lessonRepo, h.exerciseRepo, h.instructionRepo, h.answerRepo,
		h.variationRepo, h.callLogRepo, h.ai,
	)
	h.skillPaths = NewSkillPathService(gdb, log, h.skillPathRepo, h.unitRepo, h.moduleRepo, owners, deleter)
	h.lessons = NewLessonService(gdb, log, h.lessonRepo, h.exerciseRepo, h.instructionRepo, h.answerRepo, h.variationRepo, owners, deleter)
	h.quizzes = NewQuizService(gdb, log, h.quizRepo, h.questionRepo, h.quizAnswerRepo, owners, deleter)
	h.projects = NewProjectService(gdb, log, h.projectRepo, h.taskRepo, h.taskInstRepo, h.taskAnswerRepo, owners, deleter)
	h.theory = NewTheoryService(gdb, log, h.variationRepo, owners)
	return h
}

func (h *harness) seedUser(t *testing.T) uuid.UUID {
	t.Helper()
	now := time.Now()
	user := &types.User{
		ID:        uuid.New(),
		Email:     uuid.New().String() + "@example.com",
		Password:  "x",
		FirstName: "Test",
		LastName:  "User",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.gdb.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

// seedPath creates a skill path with one unit and one module and returns
// the three IDs.
func (h *harness) seedPath(t *testing.T, userID uuid.UUID) (uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()
	now := time.Now()
	sp := &types.SkillPath{
		ID: uuid.New(), CreatorID: userID, Title: "Path",
		Metadata: []byte(`{}`), CreatedAt: now, UpdatedAt: now,
	}
	if err := h.gdb.Create(sp).Error; err != nil {
		t.Fatalf("seed skill path: %v", err)
	}
	unit := &types.Unit{
		ID: uuid.New(), SkillPathID: sp.ID, Title: "Unit", Position: 1,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := h.gdb.Create(unit).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	mod := &types.Module{
		ID: uuid.New(), UnitID: unit.ID, Title: "Module", Position: 1,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := h.gdb.Create(mod).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}
	return sp.ID, unit.ID, mod.ID
}

func (h *harness) seedLesson(t *testing.T, userID uuid.UUID, moduleID *uuid.UUID) uuid.UUID {
	t.Helper()
	now := time.Now()
	lesson := &types.Lesson{
		ID: uuid.New(), ModuleID: moduleID, CreatorID: userID,
		Title: "Lesson", Position: 1, CreatedAt: now, UpdatedAt: now,
	}
	if err := h.gdb.Create(lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return lesson.ID
}

func (h *harness) seedExercise(t *testing.T, lessonID uuid.UUID, ct types.CodeType) uuid.UUID {
	t.Helper()
	now := time.Now()
	ex := &types.Exercise{
		ID: uuid.New(), LessonID: lessonID, Title: "Exercise",
		CodeType: ct, Position: 1, CreatedAt: now, UpdatedAt: now,
	}
	if err := h.gdb.Create(ex).Error; err != nil {
		t.Fatalf("seed exercise: %v", err)
	}
	return ex.ID
}

func (h *harness) seedInstructions(t *testing.T, exerciseID uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	now := time.Now()
	ids := make([]uuid.UUID, 0, n)
	for i := 1; i <= n; i++ {
		inst := &types.Instruction{
			ID: uuid.New(), ExerciseID: exerciseID, Title: "Step",
			Position: i, CreatedAt: now, UpdatedAt: now,
		}
		if err := h.gdb.Create(inst).Error; err != nil {
			t.Fatalf("seed instruction %d: %v", i, err)
		}
		ids = append(ids, inst.ID)
	}
	return ids
}

func (h *harness) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := h.gdb.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
