package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type TheoryVariationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, variations []*types.TheoryVariation) ([]*types.TheoryVariation, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, variationIDs []uuid.UUID) ([]*types.TheoryVariation, error)
	GetByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.TheoryVariation, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, variationID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, variationIDs []uuid.UUID) error
	DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error
	NextVariationNumber(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int, error)
	SetActive(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, variationID uuid.UUID) error
}

type theoryVariationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTheoryVariationRepo(db *gorm.DB, baseLog *logger.Logger) TheoryVariationRepo {
	repoLog := baseLog.With("repo", "TheoryVariationRepo")
	return &theoryVariationRepo{db: db, log: repoLog}
}

func (r *theoryVariationRepo) Create(ctx context.Context, tx *gorm.DB, variations []*types.TheoryVariation) ([]*types.TheoryVariation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(variations) == 0 {
		return []*types.TheoryVariation{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&variations).Error; err != nil {
		return nil, err
	}
	return variations, nil
}

func (r *theoryVariationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, variationIDs []uuid.UUID) ([]*types.TheoryVariation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TheoryVariation
	if len(variationIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", variationIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *theoryVariationRepo) GetByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.TheoryVariation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TheoryVariation
	if len(lessonIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Order("lesson_id, variation_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *theoryVariationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, variationID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.TheoryVariation{}).
		Where("id = ?", variationID).
		Updates(fields).Error
}

func (r *theoryVariationRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, variationIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(variationIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", variationIDs).
		Delete(&types.TheoryVariation{}).Error
}

func (r *theoryVariationRepo) DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(lessonIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Delete(&types.TheoryVariation{}).Error
}

func (r *theoryVariationRepo) NextVariationNumber(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var next int
	if err := transaction.WithContext(ctx).
		Model(&types.TheoryVariation{}).
		Where("lesson_id = ?", lessonID).
		Select("COALESCE(MAX(variation_number), 0) + 1").
		Scan(&next).Error; err != nil {
		return 0, err
	}
	if next < 1 {
		next = 1
	}
	return next, nil
}

// SetActive flips the single-winner flag in one statement so there is no
// window where zero or two variations are active.
func (r *theoryVariationRepo) SetActive(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, variationID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Exec(`UPDATE theory_variation SET is_active = (id = ?), updated_at = ? WHERE lesson_id = ?`,
			variationID, time.Now(), lessonID).Error
}
