package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestAppendUnitAssignsNextPosition(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	spID, _, _ := h.seedPath(t, userID)

	ctx := context.Background()
	u2, err := h.skillPaths.AppendUnit(ctx, userID, spID, "Second", "")
	if err != nil {
		t.Fatalf("AppendUnit: %v", err)
	}
	if u2.Position != 2 {
		t.Fatalf("expected position 2, got %d", u2.Position)
	}
	u3, err := h.skillPaths.AppendUnit(ctx, userID, spID, "Third", "")
	if err != nil {
		t.Fatalf("AppendUnit: %v", err)
	}
	if u3.Position != 3 {
		t.Fatalf("expected position 3, got %d", u3.Position)
	}
}

func TestDeleteUnitRenumbersSiblings(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	spID, firstUnit, _ := h.seedPath(t, userID)

	ctx := context.Background()
	u2, err := h.skillPaths.AppendUnit(ctx, userID, spID, "Second", "")
	if err != nil {
		t.Fatalf("AppendUnit: %v", err)
	}
	u3, err := h.skillPaths.AppendUnit(ctx, userID, spID, "Third", "")
	if err != nil {
		t.Fatalf("AppendUnit: %v", err)
	}

	if err := h.skillPaths.DeleteUnit(ctx, userID, u2.ID); err != nil {
		t.Fatalf("DeleteUnit: %v", err)
	}

	var units []*types.Unit
	if err := h.gdb.Where("skill_path_id = ?", spID).Order("position").Find(&units).Error; err != nil {
		t.Fatalf("load units: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].ID != firstUnit || units[0].Position != 1 {
		t.Fatalf("first unit moved unexpectedly")
	}
	if units[1].ID != u3.ID || units[1].Position != 2 {
		t.Fatalf("third unit not renumbered, position %d", units[1].Position)
	}
}

func TestDeleteSkillPathCascades(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	spID, _, moduleID := h.seedPath(t, userID)
	lessonID := h.seedLesson(t, userID, &moduleID)
	exerciseID := h.seedExercise(t, lessonID, types.CodeTypeHTML)
	h.seedInstructions(t, exerciseID, 2)

	if err := h.skillPaths.DeleteSkillPath(context.Background(), userID, spID); err != nil {
		t.Fatalf("DeleteSkillPath: %v", err)
	}

	for _, model := range []any{
		&types.SkillPath{}, &types.Unit{}, &types.Module{},
		&types.Lesson{}, &types.Exercise{}, &types.Instruction{},
	} {
		if n := h.countRows(t, model); n != 0 {
			t.Fatalf("expected %T fully removed, found %d rows", model, n)
		}
	}
}

func TestSkillPathOwnershipHidesForeignRows(t *testing.T) {
	h := newHarness(t)
	owner := h.seedUser(t)
	other := h.seedUser(t)
	spID, unitID, moduleID := h.seedPath(t, owner)

	ctx := context.Background()
	if _, err := h.skillPaths.GetSkillPath(ctx, other, spID); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	if _, err := h.skillPaths.AppendUnit(ctx, other, spID, "X", ""); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned on append, got %v", err)
	}
	if err := h.skillPaths.DeleteUnit(ctx, other, unitID); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned on delete, got %v", err)
	}
	if err := h.skillPaths.UpdateModule(ctx, other, moduleID, map[string]any{"title": "X"}); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned on update, got %v", err)
	}
}

func TestUpdateSkillPathWhitelistsFields(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	spID, _, _ := h.seedPath(t, userID)

	ctx := context.Background()
	err := h.skillPaths.UpdateSkillPath(ctx, userID, spID, map[string]any{
		"title":      "Renamed",
		"published":  true,
		"creator_id": uuid.New(), // must be dropped, not applied
	})
	if err != nil {
		t.Fatalf("UpdateSkillPath: %v", err)
	}

	var sp types.SkillPath
	if err := h.gdb.First(&sp, "id = ?", spID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if sp.Title != "Renamed" || !sp.Published {
		t.Fatalf("whitelisted fields not applied: %+v", sp)
	}
	if sp.CreatorID != userID {
		t.Fatalf("creator_id must never change")
	}
}

func TestGetSkillPathMissingIsNotFound(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)

	_, err := h.skillPaths.GetSkillPath(context.Background(), userID, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
