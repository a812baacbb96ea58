package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/normalization"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

// filterFields keeps only whitelisted keys from a PATCH payload and stamps
// updated_at. Unknown keys are dropped silently.
func filterFields(fields map[string]any, allowed ...string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for _, key := range allowed {
		if v, ok := fields[key]; ok {
			out[key] = v
		}
	}
	if len(out) == 0 {
		return out
	}
	out["updated_at"] = time.Now()
	return out
}

type SkillPathService interface {
	ListSkillPaths(ctx context.Context, userID uuid.UUID) ([]*types.SkillPath, error)
	GetSkillPath(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.SkillPath, error)
	UpdateSkillPath(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteSkillPath(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	AppendUnit(ctx context.Context, userID uuid.UUID, skillPathID uuid.UUID, title, description string) (*types.Unit, error)
	GetUnit(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Unit, error)
	UpdateUnit(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteUnit(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	AppendModule(ctx context.Context, userID uuid.UUID, unitID uuid.UUID, title, description string) (*types.Module, error)
	GetModule(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Module, error)
	UpdateModule(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteModule(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type skillPathService struct {
	db  *gorm.DB
	log *logger.Logger

	skillPathRepo repos.SkillPathRepo
	unitRepo      repos.UnitRepo
	moduleRepo    repos.ModuleRepo

	owners  *ownership
	deleter *cascade
}

func NewSkillPathService(
	db *gorm.DB,
	baseLog *logger.Logger,
	skillPathRepo repos.SkillPathRepo,
	unitRepo repos.UnitRepo,
	moduleRepo repos.ModuleRepo,
	owners *ownership,
	deleter *cascade,
) SkillPathService {
	return &skillPathService{
		db:            db,
		log:           baseLog.With("service", "SkillPathService"),
		skillPathRepo: skillPathRepo,
		unitRepo:      unitRepo,
		moduleRepo:    moduleRepo,
		owners:        owners,
		deleter:       deleter,
	}
}

func (s *skillPathService) ListSkillPaths(ctx context.Context, userID uuid.UUID) ([]*types.SkillPath, error) {
	return s.skillPathRepo.GetByCreatorIDs(ctx, nil, []uuid.UUID{userID})
}

// GetSkillPath loads the path with its units and each unit's modules, in
// position order.
func (s *skillPathService) GetSkillPath(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.SkillPath, error) {
	sp, err := s.owners.skillPath(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(sp.CreatorID, userID); err != nil {
		return nil, err
	}

	units, err := s.unitRepo.GetBySkillPathIDs(ctx, nil, []uuid.UUID{sp.ID})
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	unitIDs := make([]uuid.UUID, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
	}
	mods, err := s.moduleRepo.GetByUnitIDs(ctx, nil, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	byUnit := make(map[uuid.UUID][]*types.Module, len(units))
	for _, m := range mods {
		byUnit[m.UnitID] = append(byUnit[m.UnitID], m)
	}
	for _, u := range units {
		u.Modules = byUnit[u.ID]
	}
	sp.Units = units
	return sp, nil
}

func (s *skillPathService) UpdateSkillPath(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	sp, err := s.owners.skillPath(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(sp.CreatorID, userID); err != nil {
		return err
	}
	updates := filterFields(fields, "title", "description", "published", "metadata")
	if len(updates) == 0 {
		return nil
	}
	if v, ok := updates["metadata"]; ok {
		updates["metadata"] = datatypes.JSON(mustJSON(v))
	}
	return s.skillPathRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *skillPathService) DeleteSkillPath(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	sp, err := s.owners.skillPath(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(sp.CreatorID, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		units, err := s.unitRepo.GetBySkillPathIDs(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return fmt.Errorf("load units: %w", err)
		}
		unitIDs := make([]uuid.UUID, 0, len(units))
		for _, u := range units {
			unitIDs = append(unitIDs, u.ID)
		}
		if err := s.deleter.deleteUnits(ctx, tx, unitIDs); err != nil {
			return err
		}
		return s.skillPathRepo.DeleteByIDs(ctx, tx, []uuid.UUID{id})
	})
}

func (s *skillPathService) AppendUnit(ctx context.Context, userID uuid.UUID, skillPathID uuid.UUID, title, description string) (*types.Unit, error) {
	title = normalization.ParseInputString(title)
	if title == "" {
		return nil, fmt.Errorf("title required")
	}
	sp, err := s.owners.skillPath(ctx, nil, skillPathID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(sp.CreatorID, userID); err != nil {
		return nil, err
	}

	var unit *types.Unit
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.unitRepo.NextPosition(ctx, tx, skillPathID)
		if err != nil {
			return fmt.Errorf("unit position: %w", err)
		}
		now := time.Now()
		unit = &types.Unit{
			ID:          uuid.New(),
			SkillPathID: skillPathID,
			Title:       title,
			Description: description,
			Position:    pos,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = s.unitRepo.Create(ctx, tx, []*types.Unit{unit})
		return err
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *skillPathService) GetUnit(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Unit, error) {
	unit, creator, err := s.owners.unit(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	mods, err := s.moduleRepo.GetByUnitIDs(ctx, nil, []uuid.UUID{unit.ID})
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	unit.Modules = mods
	return unit, nil
}

func (s *skillPathService) UpdateUnit(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.unit(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	updates := filterFields(fields, "title", "description")
	if len(updates) == 0 {
		return nil
	}
	return s.unitRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *skillPathService) DeleteUnit(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	unit, creator, err := s.owners.unit(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteUnits(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.unitRepo.ShiftPositionsAfter(ctx, tx, unit.SkillPathID, unit.Position)
	})
}

func (s *skillPathService) AppendModule(ctx context.Context, userID uuid.UUID, unitID uuid.UUID, title, description string) (*types.Module, error) {
	title = normalization.ParseInputString(title)
	if title == "" {
		return nil, fmt.Errorf("title required")
	}
	_, creator, err := s.owners.unit(ctx, nil, unitID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	var mod *types.Module
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.moduleRepo.NextPosition(ctx, tx, unitID)
		if err != nil {
			return fmt.Errorf("module position: %w", err)
		}
		now := time.Now()
		mod = &types.Module{
			ID:          uuid.New(),
			UnitID:      unitID,
			Title:       title,
			Description: description,
			Position:    pos,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = s.moduleRepo.Create(ctx, tx, []*types.Module{mod})
		return err
	})
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func (s *skillPathService) GetModule(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Module, error) {
	mod, creator, err := s.owners.module(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	return mod, nil
}

func (s *skillPathService) UpdateModule(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.module(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	updates := filterFields(fields, "title", "description")
	if len(updates) == 0 {
		return nil
	}
	return s.moduleRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *skillPathService) DeleteModule(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	mod, creator, err := s.owners.module(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteModules(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.moduleRepo.ShiftPositionsAfter(ctx, tx, mod.UnitID, mod.Position)
	})
}
