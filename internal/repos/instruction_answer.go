package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type InstructionAnswerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, answers []*types.InstructionAnswer) ([]*types.InstructionAnswer, error)
	GetByInstructionIDs(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) ([]*types.InstructionAnswer, error)
	Upsert(ctx context.Context, tx *gorm.DB, answers []*types.InstructionAnswer) ([]*types.InstructionAnswer, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, answerID uuid.UUID, fields map[string]any) error
	DeleteByInstructionIDs(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) error
}

type instructionAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInstructionAnswerRepo(db *gorm.DB, baseLog *logger.Logger) InstructionAnswerRepo {
	repoLog := baseLog.With("repo", "InstructionAnswerRepo")
	return &instructionAnswerRepo{db: db, log: repoLog}
}

func (r *instructionAnswerRepo) Create(ctx context.Context, tx *gorm.DB, answers []*types.InstructionAnswer) ([]*types.InstructionAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(answers) == 0 {
		return []*types.InstructionAnswer{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *instructionAnswerRepo) GetByInstructionIDs(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) ([]*types.InstructionAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.InstructionAnswer
	if len(instructionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("instruction_id IN ?", instructionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Upsert writes one answer row per instruction, replacing the code fields on
// conflict. An instruction owns at most one answer.
func (r *instructionAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, answers []*types.InstructionAnswer) ([]*types.InstructionAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(answers) == 0 {
		return []*types.InstructionAnswer{}, nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "instruction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answer_html", "answer_css", "answer_js", "answer_python", "updated_at"}),
		}).
		Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *instructionAnswerRepo) UpdateFields(ctx context.Context, tx *gorm.DB, answerID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.InstructionAnswer{}).
		Where("id = ?", answerID).
		Updates(fields).Error
}

func (r *instructionAnswerRepo) DeleteByInstructionIDs(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(instructionIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("instruction_id IN ?", instructionIDs).
		Delete(&types.InstructionAnswer{}).Error
}
