package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type ProjectTaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tasks []*types.ProjectTask) ([]*types.ProjectTask, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.ProjectTask, error)
	GetByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) ([]*types.ProjectTask, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) error
	DeleteByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error
	NextPosition(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int, error)
	ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, position int) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectTaskRepo(db *gorm.DB, baseLog *logger.Logger) ProjectTaskRepo {
	repoLog := baseLog.With("repo", "ProjectTaskRepo")
	return &taskRepo{db: db, log: repoLog}
}

func (r *taskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.ProjectTask) ([]*types.ProjectTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(tasks) == 0 {
		return []*types.ProjectTask{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) GetByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.ProjectTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProjectTask
	if len(taskIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", taskIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskRepo) GetByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) ([]*types.ProjectTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProjectTask
	if len(projectIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("project_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskRepo) UpdateFields(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.ProjectTask{}).
		Where("id = ?", taskID).
		Updates(fields).Error
}

func (r *taskRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(taskIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", taskIDs).
		Delete(&types.ProjectTask{}).Error
}

func (r *taskRepo) DeleteByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(projectIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Delete(&types.ProjectTask{}).Error
}

// NextPosition computes the next 1-based position under the parent. Call it
// inside the same transaction as the insert so appends stay collision-free.
func (r *taskRepo) NextPosition(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var next int
	if err := transaction.WithContext(ctx).
		Model(&types.ProjectTask{}).
		Where("project_id = ?", projectID).
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
func (r *taskRepo) ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.ProjectTask{}).
		Where("project_id = ? AND position > ?", projectID, position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}
