package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type UnitRepo interface {
	Create(ctx context.Context, tx *gorm.DB, units []*types.Unit) ([]*types.Unit, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.Unit, error)
	GetBySkillPathIDs(ctx context.Context, tx *gorm.DB, skillPathIDs []uuid.UUID) ([]*types.Unit, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) error
	DeleteBySkillPathIDs(ctx context.Context, tx *gorm.DB, skillPathIDs []uuid.UUID) error
	NextPosition(ctx context.Context, tx *gorm.DB, skillPathID uuid.UUID) (int, error)
	ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, skillPathID uuid.UUID, position int) error
}

type unitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnitRepo(db *gorm.DB, baseLog *logger.Logger) UnitRepo {
	repoLog := baseLog.With("repo", "UnitRepo")
	return &unitRepo{db: db, log: repoLog}
}

func (r *unitRepo) Create(ctx context.Context, tx *gorm.DB, units []*types.Unit) ([]*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(units) == 0 {
		return []*types.Unit{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *unitRepo) GetByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Unit
	if len(unitIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", unitIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *unitRepo) GetBySkillPathIDs(ctx context.Context, tx *gorm.DB, skillPathIDs []uuid.UUID) ([]*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Unit
	if len(skillPathIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("skill_path_id IN ?", skillPathIDs).
		Order("skill_path_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *unitRepo) UpdateFields(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Unit{}).
		Where("id = ?", unitID).
		Updates(fields).Error
}

func (r *unitRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(unitIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", unitIDs).
		Delete(&types.Unit{}).Error
}

func (r *unitRepo) DeleteBySkillPathIDs(ctx context.Context, tx *gorm.DB, skillPathIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(skillPathIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("skill_path_id IN ?", skillPathIDs).
		Delete(&types.Unit{}).Error
}

// NextPosition computes the next 1-based position under the parent. Call it
// inside the same transaction as the insert so appends stay collision-free.
func (r *unitRepo) NextPosition(ctx context.Context, tx *gorm.DB, skillPathID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var next int
	if err := transaction.WithContext(ctx).
		Model(&types.Unit{}).
		Where("skill_path_id = ?", skillPathID).
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
func (r *unitRepo) ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, skillPathID uuid.UUID, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Unit{}).
		Where("skill_path_id = ? AND position > ?", skillPathID, position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}
