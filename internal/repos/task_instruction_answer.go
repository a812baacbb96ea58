package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type TaskInstructionAnswerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, answers []*types.TaskInstructionAnswer) ([]*types.TaskInstructionAnswer, error)
	GetByTaskInstructionIDs(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) ([]*types.TaskInstructionAnswer, error)
	Upsert(ctx context.Context, tx *gorm.DB, answers []*types.TaskInstructionAnswer) ([]*types.TaskInstructionAnswer, error)
	DeleteByTaskInstructionIDs(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) error
}

type taskInstructionAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskInstructionAnswerRepo(db *gorm.DB, baseLog *logger.Logger) TaskInstructionAnswerRepo {
	repoLog := baseLog.With("repo", "TaskInstructionAnswerRepo")
	return &taskInstructionAnswerRepo{db: db, log: repoLog}
}

func (r *taskInstructionAnswerRepo) Create(ctx context.Context, tx *gorm.DB, answers []*types.TaskInstructionAnswer) ([]*types.TaskInstructionAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(answers) == 0 {
		return []*types.TaskInstructionAnswer{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *taskInstructionAnswerRepo) GetByTaskInstructionIDs(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) ([]*types.TaskInstructionAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TaskInstructionAnswer
	if len(taskInstructionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("task_instruction_id IN ?", taskInstructionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskInstructionAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, answers []*types.TaskInstructionAnswer) ([]*types.TaskInstructionAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(answers) == 0 {
		return []*types.TaskInstructionAnswer{}, nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_instruction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answer_html", "answer_css", "answer_js", "answer_python", "updated_at"}),
		}).
		Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *taskInstructionAnswerRepo) DeleteByTaskInstructionIDs(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(taskInstructionIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("task_instruction_id IN ?", taskInstructionIDs).
		Delete(&types.TaskInstructionAnswer{}).Error
}
