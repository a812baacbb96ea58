package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type QuizAnswerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, answers []*types.QuizAnswer) ([]*types.QuizAnswer, error)
	GetByQuestionIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.QuizAnswer, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, answerID uuid.UUID, fields map[string]any) error
	DeleteByQuestionIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) error
}

type quizAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAnswerRepo(db *gorm.DB, baseLog *logger.Logger) QuizAnswerRepo {
	repoLog := baseLog.With("repo", "QuizAnswerRepo")
	return &quizAnswerRepo{db: db, log: repoLog}
}

func (r *quizAnswerRepo) Create(ctx context.Context, tx *gorm.DB, answers []*types.QuizAnswer) ([]*types.QuizAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(answers) == 0 {
		return []*types.QuizAnswer{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *quizAnswerRepo) GetByQuestionIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.QuizAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizAnswer
	if len(questionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Order("question_id, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAnswerRepo) UpdateFields(ctx context.Context, tx *gorm.DB, answerID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.QuizAnswer{}).
		Where("id = ?", answerID).
		Updates(fields).Error
}

func (r *quizAnswerRepo) DeleteByQuestionIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(questionIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Delete(&types.QuizAnswer{}).Error
}
