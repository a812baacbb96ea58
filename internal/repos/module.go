package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type ModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, modules []*types.Module) ([]*types.Module, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Module, error)
	GetByUnitIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.Module, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) error
	DeleteByUnitIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) error
	NextPosition(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (int, error)
	ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, position int) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	repoLog := baseLog.With("repo", "ModuleRepo")
	return &moduleRepo{db: db, log: repoLog}
}

func (r *moduleRepo) Create(ctx context.Context, tx *gorm.DB, modules []*types.Module) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(modules) == 0 {
		return []*types.Module{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *moduleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Module
	if len(moduleIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", moduleIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) GetByUnitIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Module
	if len(unitIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("unit_id IN ?", unitIDs).
		Order("unit_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) UpdateFields(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Module{}).
		Where("id = ?", moduleID).
		Updates(fields).Error
}

func (r *moduleRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(moduleIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", moduleIDs).
		Delete(&types.Module{}).Error
}

func (r *moduleRepo) DeleteByUnitIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(unitIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("unit_id IN ?", unitIDs).
		Delete(&types.Module{}).Error
}

// NextPosition computes the next 1-based position under the parent. Call it
// inside the same transaction as the insert so appends stay collision-free.
func (r *moduleRepo) NextPosition(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var next int
	if err := transaction.WithContext(ctx).
		Model(&types.Module{}).
		Where("unit_id = ?", unitID).
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
func (r *moduleRepo) ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Module{}).
		Where("unit_id = ? AND position > ?", unitID, position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}
