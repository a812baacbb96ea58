package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/normalization"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

// NewAnswerInput is one of the four answers of a new question.
type NewAnswerInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type NewQuestionInput struct {
	Text        string           `json:"text"`
	Explanation string           `json:"explanation"`
	Answers     []NewAnswerInput `json:"answers"`
}

type QuizService interface {
	AppendQuiz(ctx context.Context, userID uuid.UUID, moduleID uuid.UUID, title, description string) (*types.Quiz, error)
	GetQuiz(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Quiz, error)
	UpdateQuiz(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteQuiz(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	AppendQuestion(ctx context.Context, userID uuid.UUID, quizID uuid.UUID, input NewQuestionInput) (*types.QuizQuestion, error)
	GetQuestion(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteQuestion(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type quizService struct {
	db  *gorm.DB
	log *logger.Logger

	quizRepo       repos.QuizRepo
	questionRepo   repos.QuizQuestionRepo
	quizAnswerRepo repos.QuizAnswerRepo

	owners  *ownership
	deleter *cascade
}

func NewQuizService(
	db *gorm.DB,
	baseLog *logger.Logger,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuizQuestionRepo,
	quizAnswerRepo repos.QuizAnswerRepo,
	owners *ownership,
	deleter *cascade,
) QuizService {
	return &quizService{
		db:             db,
		log:            baseLog.With("service", "QuizService"),
		quizRepo:       quizRepo,
		questionRepo:   questionRepo,
		quizAnswerRepo: quizAnswerRepo,
		owners:         owners,
		deleter:        deleter,
	}
}

func (s *quizService) AppendQuiz(ctx context.Context, userID uuid.UUID, moduleID uuid.UUID, title, description string) (*types.Quiz, error) {
	title = normalization.ParseInputString(title)
	if title == "" {
		return nil, fmt.Errorf("title required")
	}
	_, creator, err := s.owners.module(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	var quiz *types.Quiz
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.quizRepo.NextPosition(ctx, tx, moduleID)
		if err != nil {
			return fmt.Errorf("quiz position: %w", err)
		}
		now := time.Now()
		quiz = &types.Quiz{
			ID:          uuid.New(),
			ModuleID:    &moduleID,
			CreatorID:   userID,
			Title:       title,
			Description: description,
			Position:    pos,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = s.quizRepo.Create(ctx, tx, []*types.Quiz{quiz})
		return err
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// GetQuiz loads the quiz with its questions and each question's answers.
func (s *quizService) GetQuiz(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Quiz, error) {
	quiz, creator, err := s.owners.quiz(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByQuizIDs(ctx, nil, []uuid.UUID{quiz.ID})
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	qIDs := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		qIDs = append(qIDs, q.ID)
	}
	answers, err := s.quizAnswerRepo.GetByQuestionIDs(ctx, nil, qIDs)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	byQuestion := make(map[uuid.UUID][]*types.QuizAnswer, len(questions))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}
	for _, q := range questions {
		q.Answers = byQuestion[q.ID]
	}
	quiz.Questions = questions
	return quiz, nil
}

func (s *quizService) UpdateQuiz(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.quiz(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	updates := filterFields(fields, "title", "description", "published")
	if len(updates) == 0 {
		return nil
	}
	return s.quizRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *quizService) DeleteQuiz(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	quiz, creator, err := s.owners.quiz(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteQuizzes(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		if quiz.ModuleID != nil {
			return s.quizRepo.ShiftPositionsAfter(ctx, tx, *quiz.ModuleID, quiz.Position)
		}
		return nil
	})
}

func (s *quizService) AppendQuestion(ctx context.Context, userID uuid.UUID, quizID uuid.UUID, input NewQuestionInput) (*types.QuizQuestion, error) {
	input.Text = normalization.ParseInputString(input.Text)
	if input.Text == "" {
		return nil, fmt.Errorf("question text required")
	}
	if len(input.Answers) != 4 {
		return nil, fmt.Errorf("expected 4 answers, got %d", len(input.Answers))
	}
	correct := 0
	for _, a := range input.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return nil, fmt.Errorf("at least one answer must be correct")
	}

	_, creator, err := s.owners.quiz(ctx, nil, quizID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	var question *types.QuizQuestion
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.questionRepo.NextPosition(ctx, tx, quizID)
		if err != nil {
			return fmt.Errorf("question position: %w", err)
		}
		now := time.Now()
		question = &types.QuizQuestion{
			ID:          uuid.New(),
			QuizID:      quizID,
			Text:        input.Text,
			Explanation: input.Explanation,
			Position:    pos,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := s.questionRepo.Create(ctx, tx, []*types.QuizQuestion{question}); err != nil {
			return fmt.Errorf("create question: %w", err)
		}
		answers := make([]*types.QuizAnswer, 0, 4)
		for _, in := range input.Answers {
			answers = append(answers, &types.QuizAnswer{
				ID:         uuid.New(),
				QuestionID: question.ID,
				Text:       in.Text,
				IsCorrect:  in.IsCorrect,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
		if _, err := s.quizAnswerRepo.Create(ctx, tx, answers); err != nil {
			return fmt.Errorf("create answers: %w", err)
		}
		question.Answers = answers
		return nil
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *quizService) GetQuestion(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.QuizQuestion, error) {
	question, creator, err := s.owners.question(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	answers, err := s.quizAnswerRepo.GetByQuestionIDs(ctx, nil, []uuid.UUID{question.ID})
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	question.Answers = answers
	return question, nil
}

func (s *quizService) UpdateQuestion(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.question(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	updates := filterFields(fields, "text", "explanation")
	if len(updates) == 0 {
		return nil
	}
	return s.questionRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *quizService) DeleteQuestion(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	question, creator, err := s.owners.question(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteQuestions(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.questionRepo.ShiftPositionsAfter(ctx, tx, question.QuizID, question.Position)
	})
}
