package services

import (
	"context"
	"testing"

	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestAppendTaskValidatesTypes(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	_, _, moduleID := h.seedPath(t, userID)

	ctx := context.Background()
	project, err := h.projects.AppendProject(ctx, userID, moduleID, "Portfolio", "", "<p>Build a site</p>")
	if err != nil {
		t.Fatalf("AppendProject: %v", err)
	}

	_, err = h.projects.AppendTask(ctx, userID, project.ID, NewTaskInput{
		Title:    "Bad",
		TaskType: types.TaskType("review"),
		CodeType: types.CodeTypeHTML,
	})
	if err == nil {
		t.Fatalf("expected error for invalid task type")
	}

	task, err := h.projects.AppendTask(ctx, userID, project.ID, NewTaskInput{
		Title:    "Scaffold",
		TaskType: types.TaskTypeSetup,
		CodeType: types.CodeTypeHTML,
	})
	if err != nil {
		t.Fatalf("AppendTask: %v", err)
	}
	if task.Position != 1 {
		t.Fatalf("expected position 1, got %d", task.Position)
	}
}

func TestDeleteTaskRenumbersAndCascades(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	_, _, moduleID := h.seedPath(t, userID)

	ctx := context.Background()
	project, err := h.projects.AppendProject(ctx, userID, moduleID, "App", "", "")
	if err != nil {
		t.Fatalf("AppendProject: %v", err)
	}

	var tasks []*types.ProjectTask
	for i := 0; i < 3; i++ {
		task, err := h.projects.AppendTask(ctx, userID, project.ID, NewTaskInput{
			Title:    "Task",
			TaskType: types.TaskTypeCode,
			CodeType: types.CodeTypeJS,
		})
		if err != nil {
			t.Fatalf("AppendTask %d: %v", i, err)
		}
		tasks = append(tasks, task)
	}

	inst, err := h.projects.AppendTaskInstruction(ctx, userID, tasks[0].ID, "Step", "")
	if err != nil {
		t.Fatalf("AppendTaskInstruction: %v", err)
	}
	if _, err := h.projects.UpsertTaskInstructionAnswer(ctx, userID, inst.ID, types.CodeTypeJS, "done()"); err != nil {
		t.Fatalf("UpsertTaskInstructionAnswer: %v", err)
	}

	if err := h.projects.DeleteTask(ctx, userID, tasks[0].ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	var rest []*types.ProjectTask
	if err := h.gdb.Where("project_id = ?", project.ID).Order("position").Find(&rest).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rest) != 2 || rest[0].Position != 1 || rest[1].Position != 2 {
		t.Fatalf("expected renumbered tasks, got %+v", rest)
	}
	if n := h.countRows(t, &types.TaskInstruction{}); n != 0 {
		t.Fatalf("task instructions not cascaded")
	}
	if n := h.countRows(t, &types.TaskInstructionAnswer{}); n != 0 {
		t.Fatalf("task answers not cascaded")
	}
}

func TestDeleteProjectRemovesWholeSubtree(t *testing.T) {
	h := newHarness(t)
	userID := h.seedUser(t)
	_, _, moduleID := h.seedPath(t, userID)

	ctx := context.Background()
	project, err := h.projects.AppendProject(ctx, userID, moduleID, "App", "", "")
	if err != nil {
		t.Fatalf("AppendProject: %v", err)
	}
	task, err := h.projects.AppendTask(ctx, userID, project.ID, NewTaskInput{
		Title:    "Task",
		TaskType: types.TaskTypeCode,
		CodeType: types.CodeTypePython,
	})
	if err != nil {
		t.Fatalf("AppendTask: %v", err)
	}
	if _, err := h.projects.AppendTaskInstruction(ctx, userID, task.ID, "Step", ""); err != nil {
		t.Fatalf("AppendTaskInstruction: %v", err)
	}

	if err := h.projects.DeleteProject(ctx, userID, project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	for _, model := range []any{&types.Project{}, &types.ProjectTask{}, &types.TaskInstruction{}} {
		if n := h.countRows(t, model); n != 0 {
			t.Fatalf("expected %T removed, found %d rows", model, n)
		}
	}
}
