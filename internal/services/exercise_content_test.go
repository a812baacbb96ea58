package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestGenerateAllAnswersUpsertsPerInstruction(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypePython)
	instIDs := h.seedInstructions(t, exerciseID, 3)

	h.ai.textOut = `[
		{"step": 1, "code": "x = 1"},
		{"step": 2, "code": "y = 2"},
		{"step": 3, "code": "print(x + y)"}
	]`

	refs, err := h.content.GenerateAllAnswers(context.Background(), userID, exerciseID, "")
	if err != nil {
		t.Fatalf("GenerateAllAnswers: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	for i, ref := range refs {
		if ref.Step != i+1 {
			t.Fatalf("ref %d: expected step %d, got %d", i, i+1, ref.Step)
		}
		if ref.InstructionID != instIDs[i] {
			t.Fatalf("ref %d: wrong instruction", i)
		}
	}

	var answers []*types.InstructionAnswer
	if err := h.gdb.Order("created_at").Find(&answers).Error; err != nil {
		t.Fatalf("load answers: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("expected 3 answer rows, got %d", len(answers))
	}
	for _, a := range answers {
		if a.AnswerPython == "" {
			t.Fatalf("expected code in python field, got %+v", a)
		}
		if a.AnswerHTML != "" {
			t.Fatalf("code landed in wrong field")
		}
	}
}

func TestGenerateAllAnswersMalformedJSONWritesNothing(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypeHTML)
	h.seedInstructions(t, exerciseID, 2)

	h.ai.textOut = `here you go: step one is <div>`

	_, err := h.content.GenerateAllAnswers(context.Background(), userID, exerciseID, "")
	if !errors.Is(err, ErrMalformedAnswerJSON) {
		t.Fatalf("expected ErrMalformedAnswerJSON, got %v", err)
	}
	if n := h.countRows(t, &types.InstructionAnswer{}); n != 0 {
		t.Fatalf("expected 0 answer rows, got %d", n)
	}
}

func TestGenerateAllAnswersRejectsOutOfRangeStep(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypeHTML)
	h.seedInstructions(t, exerciseID, 2)

	h.ai.textOut = `[{"step": 1, "code": "a"}, {"step": 5, "code": "b"}]`

	_, err := h.content.GenerateAllAnswers(context.Background(), userID, exerciseID, "")
	if !errors.Is(err, ErrMalformedAnswerJSON) {
		t.Fatalf("expected ErrMalformedAnswerJSON, got %v", err)
	}
	if n := h.countRows(t, &types.InstructionAnswer{}); n != 0 {
		t.Fatalf("expected 0 answer rows, got %d", n)
	}
}

func TestGenerateAllAnswersRejectsMissingStep(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypeHTML)
	h.seedInstructions(t, exerciseID, 3)

	h.ai.textOut = `[{"step": 1, "code": "a"}, {"step": 3, "code": "c"}]`

	_, err := h.content.GenerateAllAnswers(context.Background(), userID, exerciseID, "")
	if !errors.Is(err, ErrMalformedAnswerJSON) {
		t.Fatalf("expected ErrMalformedAnswerJSON, got %v", err)
	}
	if n := h.countRows(t, &types.InstructionAnswer{}); n != 0 {
		t.Fatalf("expected 0 answer rows, got %d", n)
	}
}

func TestGenerateAllAnswersRequiresOwnership(t *testing.T) {
	h := newHarness(t)
	owner := h.seedUser(t)
	other := h.seedUser(t)
	lessonID := h.seedLesson(t, owner, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypeHTML)
	h.seedInstructions(t, exerciseID, 1)

	_, err := h.content.GenerateAllAnswers(context.Background(), other, exerciseID, "")
	if !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	if h.ai.textCalls != 0 {
		t.Fatalf("model must not be called for foreign exercises")
	}
}

func TestGenerateExerciseContentStripsFence(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypeJS)

	h.ai.textOut = "```js\nconsole.log(1)\n```"

	out, err := h.content.GenerateExerciseContent(context.Background(), userID, exerciseID, types.CodeTypeJS, string(types.CodeStyleComplete), "")
	if err != nil {
		t.Fatalf("GenerateExerciseContent: %v", err)
	}
	if out != "console.log(1)" {
		t.Fatalf("expected fence stripped, got %q", out)
	}
	// Preview only; nothing lands in the database.
	if n := h.countRows(t, &types.InstructionAnswer{}); n != 0 {
		t.Fatalf("expected no persisted rows, got %d", n)
	}
}

func TestGenerateExerciseContentRejectsUnknownStyle(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypeJS)

	_, err := h.content.GenerateExerciseContent(context.Background(), userID, exerciseID, types.CodeTypeJS, "haiku", "")
	if err == nil {
		t.Fatalf("expected error for unknown style")
	}
}

func TestCreateTheoryVariationFirstIsActive(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)

	h.ai.textOut = "<p>Variables hold values.</p>"

	first, err := h.content.CreateTheoryVariation(context.Background(), userID, lessonID, nil, types.TheoryStyleSimplified, "")
	if err != nil {
		t.Fatalf("first CreateTheoryVariation: %v", err)
	}
	if !first.IsActive || first.VariationNumber != 1 {
		t.Fatalf("first variation must be active number 1, got active=%v number=%d", first.IsActive, first.VariationNumber)
	}
	if first.Title == "" {
		t.Fatalf("expected a default title")
	}

	second, err := h.content.CreateTheoryVariation(context.Background(), userID, lessonID, nil, types.TheoryStyleTechnical, "Deep dive")
	if err != nil {
		t.Fatalf("second CreateTheoryVariation: %v", err)
	}
	if second.IsActive || second.VariationNumber != 2 {
		t.Fatalf("second variation must be inactive number 2, got active=%v number=%d", second.IsActive, second.VariationNumber)
	}
	if second.Title != "Deep dive" {
		t.Fatalf("explicit title must win, got %q", second.Title)
	}
}

func TestCreateTheoryVariationReworksActiveContent(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)

	h.ai.textOut = "<p>Variables hold values.</p>"
	first, err := h.content.CreateTheoryVariation(context.Background(), userID, lessonID, nil, types.TheoryStyleStandard, "")
	if err != nil {
		t.Fatalf("first CreateTheoryVariation: %v", err)
	}
	if strings.Contains(h.ai.lastTextUser, "Existing theory to rework") {
		t.Fatalf("first variation has no prior theory to feed the prompt")
	}

	h.ai.textOut = "<p>A variable is like a labeled box.</p>"
	if _, err := h.content.CreateTheoryVariation(context.Background(), userID, lessonID, nil, types.TheoryStyleSimplified, ""); err != nil {
		t.Fatalf("second CreateTheoryVariation: %v", err)
	}
	if !strings.Contains(h.ai.lastTextUser, first.Content) {
		t.Fatalf("prompt must carry the active variation content, got %q", h.ai.lastTextUser)
	}
}

func TestSetActiveTheoryVariationRejectsForeignLesson(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonA := h.seedLesson(t, userID, nil)
	lessonB := h.seedLesson(t, userID, nil)

	h.ai.textOut = "<p>Theory.</p>"
	v, err := h.content.CreateTheoryVariation(context.Background(), userID, lessonA, nil, types.TheoryStyleStandard, "")
	if err != nil {
		t.Fatalf("CreateTheoryVariation: %v", err)
	}

	err = h.content.SetActiveTheoryVariation(context.Background(), userID, lessonB, v.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for variation on another lesson, got %v", err)
	}
}

func TestSetActiveTheoryVariationSwitchesWinner(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	lessonID := h.seedLesson(t, userID, nil)

	h.ai.textOut = "<p>Theory.</p>"
	ctx := context.Background()
	v1, err := h.content.CreateTheoryVariation(ctx, userID, lessonID, nil, types.TheoryStyleStandard, "")
	if err != nil {
		t.Fatalf("v1: %v", err)
	}
	v2, err := h.content.CreateTheoryVariation(ctx, userID, lessonID, nil, types.TheoryStyleVisual, "")
	if err != nil {
		t.Fatalf("v2: %v", err)
	}

	if err := h.content.SetActiveTheoryVariation(ctx, userID, lessonID, v2.ID); err != nil {
		t.Fatalf("SetActiveTheoryVariation: %v", err)
	}

	var got []*types.TheoryVariation
	if err := h.gdb.Where("lesson_id = ?", lessonID).Order("variation_number").Find(&got).Error; err != nil {
		t.Fatalf("load variations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 variations, got %d", len(got))
	}
	if got[0].ID != v1.ID || got[0].IsActive {
		t.Fatalf("first variation must be demoted")
	}
	if got[1].ID != v2.ID || !got[1].IsActive {
		t.Fatalf("second variation must be the single winner")
	}
}
