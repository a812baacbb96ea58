package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type InstructionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, instructions []*types.Instruction) ([]*types.Instruction, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) ([]*types.Instruction, error)
	GetByExerciseIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) ([]*types.Instruction, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, instructionID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) error
	DeleteByExerciseIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) error
	NextPosition(ctx context.Context, tx *gorm.DB, exerciseID uuid.UUID) (int, error)
	ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, exerciseID uuid.UUID, position int) error
}

type instructionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInstructionRepo(db *gorm.DB, baseLog *logger.Logger) InstructionRepo {
	repoLog := baseLog.With("repo", "InstructionRepo")
	return &instructionRepo{db: db, log: repoLog}
}

func (r *instructionRepo) Create(ctx context.Context, tx *gorm.DB, instructions []*types.Instruction) ([]*types.Instruction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(instructions) == 0 {
		return []*types.Instruction{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&instructions).Error; err != nil {
		return nil, err
	}
	return instructions, nil
}

func (r *instructionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) ([]*types.Instruction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Instruction
	if len(instructionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", instructionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *instructionRepo) GetByExerciseIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) ([]*types.Instruction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Instruction
	if len(exerciseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("exercise_id IN ?", exerciseIDs).
		Order("exercise_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *instructionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, instructionID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Instruction{}).
		Where("id = ?", instructionID).
		Updates(fields).Error
}

func (r *instructionRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(instructionIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", instructionIDs).
		Delete(&types.Instruction{}).Error
}

func (r *instructionRepo) DeleteByExerciseIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(exerciseIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("exercise_id IN ?", exerciseIDs).
		Delete(&types.Instruction{}).Error
}

// NextPosition computes the next 1-based position under the parent. Call it
// inside the same transaction as the insert so appends stay collision-free.
func (r *instructionRepo) NextPosition(ctx context.Context, tx *gorm.DB, exerciseID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var next int
	if err := transaction.WithContext(ctx).
		Model(&types.Instruction{}).
		Where("exercise_id = ?", exerciseID).
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
func (r *instructionRepo) ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, exerciseID uuid.UUID, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Instruction{}).
		Where("exercise_id = ? AND position > ?", exerciseID, position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}
