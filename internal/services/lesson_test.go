package services

import (
	"context"
	"errors"
	"testing"

	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestAppendLessonAndExercise(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	_, _, moduleID := h.seedPath(t, userID)

	ctx := context.Background()
	lesson, err := h.lessons.AppendLesson(ctx, userID, moduleID, "Intro", "First steps")
	if err != nil {
		t.Fatalf("AppendLesson: %v", err)
	}
	if lesson.Position != 1 || lesson.CreatorID != userID {
		t.Fatalf("unexpected lesson %+v", lesson)
	}

	ex, err := h.lessons.AppendExercise(ctx, userID, lesson.ID, NewExerciseInput{
		Title:    "Hello page",
		CodeType: types.CodeTypeHTML,
	})
	if err != nil {
		t.Fatalf("AppendExercise: %v", err)
	}
	if ex.Position != 1 {
		t.Fatalf("expected position 1, got %d", ex.Position)
	}

	_, err = h.lessons.AppendExercise(ctx, userID, lesson.ID, NewExerciseInput{
		Title:    "Bad",
		CodeType: types.CodeType("cobol"),
	})
	if err == nil {
		t.Fatalf("expected error for invalid code type")
	}
}

func TestDeleteInstructionRenumbersAndDropsAnswer(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypeJS)

	ctx := context.Background()
	var instIDs []*types.Instruction
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		inst, err := h.lessons.AppendInstruction(ctx, userID, exerciseID, title, "")
		if err != nil {
			t.Fatalf("AppendInstruction: %v", err)
		}
		instIDs = append(instIDs, inst)
	}

	// Give the doomed instruction an answer so the cascade is observable.
	if _, err := h.lessons.UpsertInstructionAnswer(ctx, userID, instIDs[1].ID, types.CodeTypeJS, "let x = 1"); err != nil {
		t.Fatalf("UpsertInstructionAnswer: %v", err)
	}

	if err := h.lessons.DeleteInstruction(ctx, userID, instIDs[1].ID); err != nil {
		t.Fatalf("DeleteInstruction: %v", err)
	}

	var rest []*types.Instruction
	if err := h.gdb.Where("exercise_id = ?", exerciseID).Order("position").Find(&rest).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rest) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(rest))
	}
	for i, inst := range rest {
		if inst.Position != i+1 {
			t.Fatalf("positions not contiguous after delete: %d at index %d", inst.Position, i)
		}
	}
	if n := h.countRows(t, &types.InstructionAnswer{}); n != 0 {
		t.Fatalf("expected orphaned answer removed, got %d rows", n)
	}
}

func TestUpsertInstructionAnswerReplaces(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypePython)

	ctx := context.Background()
	inst, err := h.lessons.AppendInstruction(ctx, userID, exerciseID, "Step", "")
	if err != nil {
		t.Fatalf("AppendInstruction: %v", err)
	}

	if _, err := h.lessons.UpsertInstructionAnswer(ctx, userID, inst.ID, types.CodeTypePython, "x = 1"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := h.lessons.UpsertInstructionAnswer(ctx, userID, inst.ID, types.CodeTypePython, "x = 2"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var answers []*types.InstructionAnswer
	if err := h.gdb.Where("instruction_id = ?", inst.ID).Find(&answers).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected single answer row, got %d", len(answers))
	}
	if answers[0].AnswerPython != "x = 2" {
		t.Fatalf("expected replaced code, got %q", answers[0].AnswerPython)
	}
}

func TestDeleteLessonClosesModuleGap(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	_, _, moduleID := h.seedPath(t, userID)

	ctx := context.Background()
	var lessons []*types.Lesson
	for _, title := range []string{"A", "B", "C"} {
		l, err := h.lessons.AppendLesson(ctx, userID, moduleID, title, "")
		if err != nil {
			t.Fatalf("AppendLesson: %v", err)
		}
		lessons = append(lessons, l)
	}

	if err := h.lessons.DeleteLesson(ctx, userID, lessons[0].ID); err != nil {
		t.Fatalf("DeleteLesson: %v", err)
	}

	var rest []*types.Lesson
	if err := h.gdb.Where("module_id = ?", moduleID).Order("position").Find(&rest).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rest) != 2 || rest[0].Position != 1 || rest[1].Position != 2 {
		t.Fatalf("expected renumbered siblings, got %+v", rest)
	}
}

func TestLessonOwnershipEnforced(t *testing.T) {
	h := newHarness(t)
	owner := h.seedUser(t)
	other := h.seedUser(t)
	lessonID := h.seedLesson(t, owner, nil)

	ctx := context.Background()
	if _, err := h.lessons.GetLesson(ctx, other, lessonID); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	if err := h.lessons.DeleteLesson(ctx, other, lessonID); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned on delete, got %v", err)
	}
}
