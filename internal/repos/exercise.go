package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type ExerciseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) ([]*types.Exercise, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) ([]*types.Exercise, error)
	GetByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Exercise, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, exerciseID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) error
	DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error
	NextPosition(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int, error)
	ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, position int) error
}

type exerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	repoLog := baseLog.With("repo", "ExerciseRepo")
	return &exerciseRepo{db: db, log: repoLog}
}

func (r *exerciseRepo) Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) ([]*types.Exercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(exercises) == 0 {
		return []*types.Exercise{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) ([]*types.Exercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Exercise
	if len(exerciseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", exerciseIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepo) GetByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Exercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Exercise
	if len(lessonIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Order("lesson_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepo) UpdateFields(ctx context.Context, tx *gorm.DB, exerciseID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Exercise{}).
		Where("id = ?", exerciseID).
		Updates(fields).Error
}

func (r *exerciseRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(exerciseIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", exerciseIDs).
		Delete(&types.Exercise{}).Error
}

func (r *exerciseRepo) DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(lessonIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Delete(&types.Exercise{}).Error
}

// NextPosition computes the next 1-based position under the parent. Call it
// inside the same transaction as the insert so appends stay collision-free.
func (r *exerciseRepo) NextPosition(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var next int
	if err := transaction.WithContext(ctx).
		Model(&types.Exercise{}).
		Where("lesson_id = ?", lessonID).
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
func (r *exerciseRepo) ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Exercise{}).
		Where("lesson_id = ? AND position > ?", lessonID, position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}
