package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type TaskInstructionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, taskInstructions []*types.TaskInstruction) ([]*types.TaskInstruction, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) ([]*types.TaskInstruction, error)
	GetByTaskIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.TaskInstruction, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, taskInstructionID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) error
	DeleteByTaskIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) error
	NextPosition(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (int, error)
	ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, position int) error
}

type taskInstructionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskInstructionRepo(db *gorm.DB, baseLog *logger.Logger) TaskInstructionRepo {
	repoLog := baseLog.With("repo", "TaskInstructionRepo")
	return &taskInstructionRepo{db: db, log: repoLog}
}

func (r *taskInstructionRepo) Create(ctx context.Context, tx *gorm.DB, taskInstructions []*types.TaskInstruction) ([]*types.TaskInstruction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(taskInstructions) == 0 {
		return []*types.TaskInstruction{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&taskInstructions).Error; err != nil {
		return nil, err
	}
	return taskInstructions, nil
}

func (r *taskInstructionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) ([]*types.TaskInstruction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TaskInstruction
	if len(taskInstructionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", taskInstructionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskInstructionRepo) GetByTaskIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.TaskInstruction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TaskInstruction
	if len(taskIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Order("task_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskInstructionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, taskInstructionID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.TaskInstruction{}).
		Where("id = ?", taskInstructionID).
		Updates(fields).Error
}

func (r *taskInstructionRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(taskInstructionIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", taskInstructionIDs).
		Delete(&types.TaskInstruction{}).Error
}

func (r *taskInstructionRepo) DeleteByTaskIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(taskIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Delete(&types.TaskInstruction{}).Error
}

// NextPosition computes the next 1-based position under the parent. Call it
// inside the same transaction as the insert so appends stay collision-free.
func (r *taskInstructionRepo) NextPosition(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var next int
	if err := transaction.WithContext(ctx).
		Model(&types.TaskInstruction{}).
		Where("task_id = ?", taskID).
		Select("COALESCE(MAX(position), 0) + 1").
		Scan(&next).Error; err != nil {
		return 0, err
	}
	if next < 1 {
		next = 1
	}
	return next, nil
}

// ShiftPositionsAfter closes the gap left by a deleted sibling.
func (r *taskInstructionRepo) ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.TaskInstruction{}).
		Where("task_id = ? AND position > ?", taskID, position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}
