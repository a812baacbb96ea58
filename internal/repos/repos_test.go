package repos

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
	"github.com/skillforge/skillforge-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return gdb
}

// seedLesson creates a standalone lesson owned by a fresh user and returns
// both IDs.
func seedLesson(t *testing.T, gdb *gorm.DB) (uuid.UUID, uuid.UUID) {
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
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	lesson := &types.Lesson{
		ID:        uuid.New(),
		CreatorID: user.ID,
		Title:     "Lesson",
		Position:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gdb.Create(lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return user.ID, lesson.ID
}

func seedExercise(t *testing.T, gdb *gorm.DB, lessonID uuid.UUID) uuid.UUID {
	t.Helper()
	now := time.Now()
	ex := &types.Exercise{
		ID:        uuid.New(),
		LessonID:  lessonID,
		Title:     "Exercise",
		CodeType:  types.CodeTypeHTML,
		Position:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gdb.Create(ex).Error; err != nil {
		t.Fatalf("seed exercise: %v", err)
	}
	return ex.ID
}

func seedInstructions(t *testing.T, gdb *gorm.DB, exerciseID uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	now := time.Now()
	ids := make([]uuid.UUID, 0, n)
	for i := 1; i <= n; i++ {
		inst := &types.Instruction{
			ID:         uuid.New(),
			ExerciseID: exerciseID,
			Title:      "Step",
			Position:   i,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := gdb.Create(inst).Error; err != nil {
			t.Fatalf("seed instruction %d: %v", i, err)
		}
		ids = append(ids, inst.ID)
	}
	return ids
}

func TestNextPositionStartsAtOne(t *testing.T) {
	gdb := newTestDB(t)
	_, lessonID := seedLesson(t, gdb)
	exerciseID := seedExercise(t, gdb, lessonID)

	repo := NewInstructionRepo(gdb, logger.NewNop())
	next, err := repo.NextPosition(context.Background(), nil, exerciseID)
	if err != nil {
		t.Fatalf("NextPosition: %v", err)
	}
	if next != 1 {
		t.Fatalf("expected 1, got %d", next)
	}
}

func TestNextPositionIsMaxPlusOne(t *testing.T) {
	gdb := newTestDB(t)
	_, lessonID := seedLesson(t, gdb)
	exerciseID := seedExercise(t, gdb, lessonID)
	seedInstructions(t, gdb, exerciseID, 3)

	repo := NewInstructionRepo(gdb, logger.NewNop())
	next, err := repo.NextPosition(context.Background(), nil, exerciseID)
	if err != nil {
		t.Fatalf("NextPosition: %v", err)
	}
	if next != 4 {
		t.Fatalf("expected 4, got %d", next)
	}

	// A gap below MAX must not be reused.
	if err := gdb.Where("position = ?", 2).Delete(&types.Instruction{}).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	next, err = repo.NextPosition(context.Background(), nil, exerciseID)
	if err != nil {
		t.Fatalf("NextPosition after delete: %v", err)
	}
	if next != 4 {
		t.Fatalf("expected 4 after interior delete, got %d", next)
	}
}

func TestShiftPositionsAfterClosesGap(t *testing.T) {
	gdb := newTestDB(t)
	_, lessonID := seedLesson(t, gdb)
	exerciseID := seedExercise(t, gdb, lessonID)
	ids := seedInstructions(t, gdb, exerciseID, 5)

	ctx := context.Background()
	repo := NewInstructionRepo(gdb, logger.NewNop())

	// Remove position 2 then renumber.
	if err := repo.DeleteByIDs(ctx, nil, []uuid.UUID{ids[1]}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.ShiftPositionsAfter(ctx, nil, exerciseID, 2); err != nil {
		t.Fatalf("shift: %v", err)
	}

	rest, err := repo.GetByExerciseIDs(ctx, nil, []uuid.UUID{exerciseID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rest) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(rest))
	}
	for i, inst := range rest {
		if inst.Position != i+1 {
			t.Fatalf("expected contiguous positions, got %d at index %d", inst.Position, i)
		}
	}
}

func TestInstructionAnswerUpsertReplacesCode(t *testing.T) {
	gdb := newTestDB(t)
	_, lessonID := seedLesson(t, gdb)
	exerciseID := seedExercise(t, gdb, lessonID)
	instIDs := seedInstructions(t, gdb, exerciseID, 1)

	ctx := context.Background()
	repo := NewInstructionAnswerRepo(gdb, logger.NewNop())

	now := time.Now()
	first := &types.InstructionAnswer{
		ID:            uuid.New(),
		InstructionID: instIDs[0],
		AnswerHTML:    "<p>v1</p>",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := repo.Upsert(ctx, nil, []*types.InstructionAnswer{first}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &types.InstructionAnswer{
		ID:            uuid.New(),
		InstructionID: instIDs[0],
		AnswerHTML:    "<p>v2</p>",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := repo.Upsert(ctx, nil, []*types.InstructionAnswer{second}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.GetByInstructionIDs(ctx, nil, instIDs)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one row per instruction, got %d", len(got))
	}
	if got[0].AnswerHTML != "<p>v2</p>" {
		t.Fatalf("expected replaced code, got %q", got[0].AnswerHTML)
	}
}

func TestNextVariationNumberCounts(t *testing.T) {
	gdb := newTestDB(t)
	_, lessonID := seedLesson(t, gdb)

	ctx := context.Background()
	repo := NewTheoryVariationRepo(gdb, logger.NewNop())

	next, err := repo.NextVariationNumber(ctx, nil, lessonID)
	if err != nil {
		t.Fatalf("NextVariationNumber: %v", err)
	}
	if next != 1 {
		t.Fatalf("expected 1, got %d", next)
	}

	now := time.Now()
	v := &types.TheoryVariation{
		ID:              uuid.New(),
		LessonID:        lessonID,
		Title:           "Theory",
		Style:           types.TheoryStyleStandard,
		IsActive:        true,
		VariationNumber: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := repo.Create(ctx, nil, []*types.TheoryVariation{v}); err != nil {
		t.Fatalf("create: %v", err)
	}

	next, err = repo.NextVariationNumber(ctx, nil, lessonID)
	if err != nil {
		t.Fatalf("NextVariationNumber: %v", err)
	}
	if next != 2 {
		t.Fatalf("expected 2, got %d", next)
	}
}

func TestSetActiveSingleWinner(t *testing.T) {
	gdb := newTestDB(t)
	_, lessonID := seedLesson(t, gdb)

	ctx := context.Background()
	repo := NewTheoryVariationRepo(gdb, logger.NewNop())

	now := time.Now()
	var variations []*types.TheoryVariation
	for i := 1; i <= 3; i++ {
		variations = append(variations, &types.TheoryVariation{
			ID:              uuid.New(),
			LessonID:        lessonID,
			Title:           "Theory",
			Style:           types.TheoryStyleStandard,
			IsActive:        i == 1,
			VariationNumber: i,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	if _, err := repo.Create(ctx, nil, variations); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SetActive(ctx, nil, lessonID, variations[2].ID); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	got, err := repo.GetByLessonIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	active := 0
	for _, v := range got {
		if v.IsActive {
			active++
			if v.ID != variations[2].ID {
				t.Fatalf("wrong variation active: %s", v.ID)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active variation, got %d", active)
	}
}

func TestSetActiveScopedToLesson(t *testing.T) {
	gdb := newTestDB(t)
	_, lessonA := seedLesson(t, gdb)
	_, lessonB := seedLesson(t, gdb)

	ctx := context.Background()
	repo := NewTheoryVariationRepo(gdb, logger.NewNop())

	now := time.Now()
	va := &types.TheoryVariation{
		ID: uuid.New(), LessonID: lessonA, Title: "A", Style: types.TheoryStyleStandard,
		IsActive: true, VariationNumber: 1, CreatedAt: now, UpdatedAt: now,
	}
	vb := &types.TheoryVariation{
		ID: uuid.New(), LessonID: lessonB, Title: "B", Style: types.TheoryStyleStandard,
		IsActive: true, VariationNumber: 1, CreatedAt: now, UpdatedAt: now,
	}
	if _, err := repo.Create(ctx, nil, []*types.TheoryVariation{va, vb}); err != nil {
		t.Fatalf("create: %v", err)
	}

	vb2 := &types.TheoryVariation{
		ID: uuid.New(), LessonID: lessonB, Title: "B2", Style: types.TheoryStyleSimplified,
		IsActive: false, VariationNumber: 2, CreatedAt: now, UpdatedAt: now,
	}
	if _, err := repo.Create(ctx, nil, []*types.TheoryVariation{vb2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.SetActive(ctx, nil, lessonB, vb2.ID); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	got, err := repo.GetByIDs(ctx, nil, []uuid.UUID{va.ID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || !got[0].IsActive {
		t.Fatalf("other lesson's active variation must be untouched")
	}
}
