package services

import (
	"context"
	"testing"

	"github.com/skillforge/skillforge-backend/internal/types"
)

func fourAnswers(correct int) []NewAnswerInput {
	out := make([]NewAnswerInput, 4)
	for i := range out {
		out[i] = NewAnswerInput{Text: "option", IsCorrect: i == correct}
	}
	return out
}

func TestAppendQuestionRequiresFourAnswers(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	_, _, moduleID := h.seedPath(t, userID)

	ctx := context.Background()
	quiz, err := h.quizzes.AppendQuiz(ctx, userID, moduleID, "Quiz", "")
	if err != nil {
		t.Fatalf("AppendQuiz: %v", err)
	}

	_, err = h.quizzes.AppendQuestion(ctx, userID, quiz.ID, NewQuestionInput{
		Text:    "Too few",
		Answers: fourAnswers(0)[:3],
	})
	if err == nil {
		t.Fatalf("expected error for 3 answers")
	}

	_, err = h.quizzes.AppendQuestion(ctx, userID, quiz.ID, NewQuestionInput{
		Text:    "None correct",
		Answers: fourAnswers(-1),
	})
	if err == nil {
		t.Fatalf("expected error when no answer is correct")
	}

	q, err := h.quizzes.AppendQuestion(ctx, userID, quiz.ID, NewQuestionInput{
		Text:    "Valid",
		Answers: fourAnswers(2),
	})
	if err != nil {
		t.Fatalf("AppendQuestion: %v", err)
	}
	if q.Position != 1 || len(q.Answers) != 4 {
		t.Fatalf("unexpected question %+v", q)
	}
	if n := h.countRows(t, &types.QuizAnswer{}); n != 4 {
		t.Fatalf("expected 4 answer rows, got %d", n)
	}
}

func TestDeleteQuestionRenumbersAndRemovesAnswers(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	_, _, moduleID := h.seedPath(t, userID)

	ctx := context.Background()
	quiz, err := h.quizzes.AppendQuiz(ctx, userID, moduleID, "Quiz", "")
	if err != nil {
		t.Fatalf("AppendQuiz: %v", err)
	}

	var questions []*types.QuizQuestion
	for i := 0; i < 3; i++ {
		q, err := h.quizzes.AppendQuestion(ctx, userID, quiz.ID, NewQuestionInput{
			Text:    "Q",
			Answers: fourAnswers(0),
		})
		if err != nil {
			t.Fatalf("AppendQuestion %d: %v", i, err)
		}
		questions = append(questions, q)
	}

	if err := h.quizzes.DeleteQuestion(ctx, userID, questions[1].ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}

	var rest []*types.QuizQuestion
	if err := h.gdb.Where("quiz_id = ?", quiz.ID).Order("position").Find(&rest).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rest) != 2 || rest[0].Position != 1 || rest[1].Position != 2 {
		t.Fatalf("expected renumbered questions, got %+v", rest)
	}
	if n := h.countRows(t, &types.QuizAnswer{}); n != 8 {
		t.Fatalf("expected 8 answer rows after cascade, got %d", n)
	}
}

func TestDeleteQuizCascadesToQuestions(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	_, _, moduleID := h.seedPath(t, userID)

	ctx := context.Background()
	quiz, err := h.quizzes.AppendQuiz(ctx, userID, moduleID, "Quiz", "")
	if err != nil {
		t.Fatalf("AppendQuiz: %v", err)
	}
	if _, err := h.quizzes.AppendQuestion(ctx, userID, quiz.ID, NewQuestionInput{
		Text:    "Q",
		Answers: fourAnswers(0),
	}); err != nil {
		t.Fatalf("AppendQuestion: %v", err)
	}

	if err := h.quizzes.DeleteQuiz(ctx, userID, quiz.ID); err != nil {
		t.Fatalf("DeleteQuiz: %v", err)
	}
	if n := h.countRows(t, &types.Quiz{}); n != 0 {
		t.Fatalf("quiz not deleted")
	}
	if n := h.countRows(t, &types.QuizQuestion{}); n != 0 {
		t.Fatalf("questions not cascaded")
	}
	if n := h.countRows(t, &types.QuizAnswer{}); n != 0 {
		t.Fatalf("answers not cascaded")
	}
}
