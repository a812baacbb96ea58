package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type SkillPathRepo interface {
	Create(ctx context.Context, tx *gorm.DB, paths []*types.SkillPath) ([]*types.SkillPath, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, pathIDs []uuid.UUID) ([]*types.SkillPath, error)
	GetByCreatorIDs(ctx context.Context, tx *gorm.DB, creatorIDs []uuid.UUID) ([]*types.SkillPath, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, pathID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, pathIDs []uuid.UUID) error
}

type skillPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillPathRepo(db *gorm.DB, baseLog *logger.Logger) SkillPathRepo {
	repoLog := baseLog.With("repo", "SkillPathRepo")
	return &skillPathRepo{db: db, log: repoLog}
}

func (r *skillPathRepo) Create(ctx context.Context, tx *gorm.DB, paths []*types.SkillPath) ([]*types.SkillPath, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(paths) == 0 {
		return []*types.SkillPath{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&paths).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *skillPathRepo) GetByIDs(ctx context.Context, tx *gorm.DB, pathIDs []uuid.UUID) ([]*types.SkillPath, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SkillPath
	if len(pathIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", pathIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *skillPathRepo) GetByCreatorIDs(ctx context.Context, tx *gorm.DB, creatorIDs []uuid.UUID) ([]*types.SkillPath, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SkillPath
	if len(creatorIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("creator_id IN ?", creatorIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *skillPathRepo) UpdateFields(ctx context.Context, tx *gorm.DB, pathID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.SkillPath{}).
		Where("id = ?", pathID).
		Updates(fields).Error
}

func (r *skillPathRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, pathIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(pathIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", pathIDs).
		Delete(&types.SkillPath{}).Error
}
