package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type TheoryService interface {
	ListVariations(ctx context.Context, userID uuid.UUID, lessonID uuid.UUID) ([]*types.TheoryVariation, error)
	GetVariation(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.TheoryVariation, error)
	UpdateVariation(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteVariation(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type theoryService struct {
	db  *gorm.DB
	log *logger.Logger

	variationRepo repos.TheoryVariationRepo
	owners        *ownership
}

func NewTheoryService(db *gorm.DB, baseLog *logger.Logger, variationRepo repos.TheoryVariationRepo, owners *ownership) TheoryService {
	return &theoryService{
		db:            db,
		log:           baseLog.With("service", "TheoryService"),
		variationRepo: variationRepo,
		owners:        owners,
	}
}

func (s *theoryService) ListVariations(ctx context.Context, userID uuid.UUID, lessonID uuid.UUID) ([]*types.TheoryVariation, error) {
	_, creator, err := s.owners.lesson(ctx, nil, lessonID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	return s.variationRepo.GetByLessonIDs(ctx, nil, []uuid.UUID{lessonID})
}

func (s *theoryService) GetVariation(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.TheoryVariation, error) {
	variation, creator, err := s.owners.variation(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	return variation, nil
}

func (s *theoryService) UpdateVariation(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.variation(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	if v, ok := fields["style"]; ok {
		if !types.TheoryStyle(strFromAny(v)).Valid() {
			return fmt.Errorf("invalid theory style %q", v)
		}
	}
	updates := filterFields(fields, "title", "content", "style")
	if len(updates) == 0 {
		return nil
	}
	return s.variationRepo.UpdateFields(ctx, nil, id, updates)
}

// DeleteVariation removes the variation. Variation numbers are historical,
// so later siblings keep theirs; deleting the active variation leaves the
// lesson with no active variation until the caller activates another.
func (s *theoryService) DeleteVariation(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	_, creator, err := s.owners.variation(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.variationRepo.DeleteByIDs(ctx, nil, []uuid.UUID{id})
}
