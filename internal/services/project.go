package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/normalization"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type NewTaskInput struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	TaskType      types.TaskType `json:"task_type"`
	CodeType      types.CodeType `json:"code_type"`
	StarterHTML   string         `json:"starter_html"`
	StarterCSS    string         `json:"starter_css"`
	StarterJS     string         `json:"starter_js"`
	StarterPython string         `json:"starter_python"`
}

type ProjectService interface {
	AppendProject(ctx context.Context, userID uuid.UUID, moduleID uuid.UUID, title, description, brief string) (*types.Project, error)
	GetProject(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Project, error)
	UpdateProject(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteProject(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	AppendTask(ctx context.Context, userID uuid.UUID, projectID uuid.UUID, input NewTaskInput) (*types.ProjectTask, error)
	GetTask(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.ProjectTask, error)
	UpdateTask(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteTask(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	AppendTaskInstruction(ctx context.Context, userID uuid.UUID, taskID uuid.UUID, title, content string) (*types.TaskInstruction, error)
	GetTaskInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.TaskInstruction, error)
	UpdateTaskInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteTaskInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	UpsertTaskInstructionAnswer(ctx context.Context, userID uuid.UUID, taskInstructionID uuid.UUID, codeType types.CodeType, code string) (*types.TaskInstructionAnswer, error)
}

type projectService struct {
	db  *gorm.DB
	log *logger.Logger

	projectRepo    repos.ProjectRepo
	taskRepo       repos.ProjectTaskRepo
	taskInstRepo   repos.TaskInstructionRepo
	taskAnswerRepo repos.TaskInstructionAnswerRepo

	owners  *ownership
	deleter *cascade
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	taskRepo repos.ProjectTaskRepo,
	taskInstRepo repos.TaskInstructionRepo,
	taskAnswerRepo repos.TaskInstructionAnswerRepo,
	owners *ownership,
	deleter *cascade,
) ProjectService {
	return &projectService{
		db:             db,
		log:            baseLog.With("service", "ProjectService"),
		projectRepo:    projectRepo,
		taskRepo:       taskRepo,
		taskInstRepo:   taskInstRepo,
		taskAnswerRepo: taskAnswerRepo,
		owners:         owners,
		deleter:        deleter,
	}
}

func (s *projectService) AppendProject(ctx context.Context, userID uuid.UUID, moduleID uuid.UUID, title, description, brief string) (*types.Project, error) {
	title = normalization.ParseInputString(title)
	if title == "" {
		return nil, fmt.Errorf("title required")
	}
	_, creator, err := s.owners.module(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	var project *types.Project
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.projectRepo.NextPosition(ctx, tx, moduleID)
		if err != nil {
			return fmt.Errorf("project position: %w", err)
		}
		now := time.Now()
		project = &types.Project{
			ID:          uuid.New(),
			ModuleID:    &moduleID,
			CreatorID:   userID,
			Title:       title,
			Description: description,
			Brief:       brief,
			Position:    pos,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = s.projectRepo.Create(ctx, tx, []*types.Project{project})
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject loads the project with tasks, task instructions and their
// answers.
func (s *projectService) GetProject(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Project, error) {
	project, creator, err := s.owners.project(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.GetByProjectIDs(ctx, nil, []uuid.UUID{project.ID})
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	taskIDs := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	insts, err := s.taskInstRepo.GetByTaskIDs(ctx, nil, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("load task instructions: %w", err)
	}
	instIDs := make([]uuid.UUID, 0, len(insts))
	for _, inst := range insts {
		instIDs = append(instIDs, inst.ID)
	}
	answers, err := s.taskAnswerRepo.GetByTaskInstructionIDs(ctx, nil, instIDs)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	answerByInst := make(map[uuid.UUID]*types.TaskInstructionAnswer, len(answers))
	for _, a := range answers {
		answerByInst[a.TaskInstructionID] = a
	}
	instsByTask := make(map[uuid.UUID][]*types.TaskInstruction, len(tasks))
	for _, inst := range insts {
		inst.Answer = answerByInst[inst.ID]
		instsByTask[inst.TaskID] = append(instsByTask[inst.TaskID], inst)
	}
	for _, t := range tasks {
		t.Instructions = instsByTask[t.ID]
	}
	project.Tasks = tasks
	return project, nil
}

func (s *projectService) UpdateProject(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.project(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	updates := filterFields(fields, "title", "description", "brief", "published")
	if len(updates) == 0 {
		return nil
	}
	return s.projectRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *projectService) DeleteProject(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	project, creator, err := s.owners.project(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteProjects(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		if project.ModuleID != nil {
			return s.projectRepo.ShiftPositionsAfter(ctx, tx, *project.ModuleID, project.Position)
		}
		return nil
	})
}

func (s *projectService) AppendTask(ctx context.Context, userID uuid.UUID, projectID uuid.UUID, input NewTaskInput) (*types.ProjectTask, error) {
	input.Title = normalization.ParseInputString(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("title required")
	}
	if !input.TaskType.Valid() {
		return nil, fmt.Errorf("invalid task type %q", input.TaskType)
	}
	if !input.CodeType.Valid() {
		return nil, fmt.Errorf("invalid code type %q", input.CodeType)
	}
	_, creator, err := s.owners.project(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	var task *types.ProjectTask
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.taskRepo.NextPosition(ctx, tx, projectID)
		if err != nil {
			return fmt.Errorf("task position: %w", err)
		}
		now := time.Now()
		task = &types.ProjectTask{
			ID:            uuid.New(),
			ProjectID:     projectID,
			Title:         input.Title,
			Description:   input.Description,
			TaskType:      input.TaskType,
			CodeType:      input.CodeType,
			StarterHTML:   input.StarterHTML,
			StarterCSS:    input.StarterCSS,
			StarterJS:     input.StarterJS,
			StarterPython: input.StarterPython,
			Position:      pos,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, err = s.taskRepo.Create(ctx, tx, []*types.ProjectTask{task})
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *projectService) GetTask(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.ProjectTask, error) {
	task, creator, err := s.owners.task(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	insts, err := s.taskInstRepo.GetByTaskIDs(ctx, nil, []uuid.UUID{task.ID})
	if err != nil {
		return nil, fmt.Errorf("load task instructions: %w", err)
	}
	task.Instructions = insts
	return task, nil
}

func (s *projectService) UpdateTask(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.task(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	if v, ok := fields["task_type"]; ok {
		if !types.TaskType(strFromAny(v)).Valid() {
			return fmt.Errorf("invalid task type %q", v)
		}
	}
	if v, ok := fields["code_type"]; ok {
		if !types.CodeType(strFromAny(v)).Valid() {
			return fmt.Errorf("invalid code type %q", v)
		}
	}
	updates := filterFields(fields, "title", "description", "task_type", "code_type",
		"starter_html", "starter_css", "starter_js", "starter_python")
	if len(updates) == 0 {
		return nil
	}
	return s.taskRepo.UpdateFields(ctx, nil, id, updates)
}

// DeleteTask cascades the task's instructions and answers, then renumbers
// the remaining tasks of the project.
func (s *projectService) DeleteTask(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	task, creator, err := s.owners.task(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteTasks(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.taskRepo.ShiftPositionsAfter(ctx, tx, task.ProjectID, task.Position)
	})
}

func (s *projectService) AppendTaskInstruction(ctx context.Context, userID uuid.UUID, taskID uuid.UUID, title, content string) (*types.TaskInstruction, error) {
	title = normalization.ParseInputString(title)
	if title == "" {
		return nil, fmt.Errorf("title required")
	}
	_, creator, err := s.owners.task(ctx, nil, taskID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	var inst *types.TaskInstruction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.taskInstRepo.NextPosition(ctx, tx, taskID)
		if err != nil {
			return fmt.Errorf("task instruction position: %w", err)
		}
		now := time.Now()
		inst = &types.TaskInstruction{
			ID:        uuid.New(),
			TaskID:    taskID,
			Title:     title,
			Content:   content,
			Position:  pos,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err = s.taskInstRepo.Create(ctx, tx, []*types.TaskInstruction{inst})
		return err
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *projectService) GetTaskInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.TaskInstruction, error) {
	inst, creator, err := s.owners.taskInstruction(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	answers, err := s.taskAnswerRepo.GetByTaskInstructionIDs(ctx, nil, []uuid.UUID{inst.ID})
	if err != nil {
		return nil, fmt.Errorf("load answer: %w", err)
	}
	if len(answers) > 0 {
		inst.Answer = answers[0]
	}
	return inst, nil
}

func (s *projectService) UpdateTaskInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.taskInstruction(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	updates := filterFields(fields, "title", "content")
	if len(updates) == 0 {
		return nil
	}
	return s.taskInstRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *projectService) DeleteTaskInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	inst, creator, err := s.owners.taskInstruction(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteTaskInstructions(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.taskInstRepo.ShiftPositionsAfter(ctx, tx, inst.TaskID, inst.Position)
	})
}

func (s *projectService) UpsertTaskInstructionAnswer(ctx context.Context, userID uuid.UUID, taskInstructionID uuid.UUID, codeType types.CodeType, code string) (*types.TaskInstructionAnswer, error) {
	if !codeType.Valid() {
		return nil, fmt.Errorf("invalid code type %q", codeType)
	}
	_, creator, err := s.owners.taskInstruction(ctx, nil, taskInstructionID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	answer := &types.TaskInstructionAnswer{
		ID:                uuid.New(),
		TaskInstructionID: taskInstructionID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	answer.SetCode(codeType, code)

	saved, err := s.taskAnswerRepo.Upsert(ctx, nil, []*types.TaskInstructionAnswer{answer})
	if err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	return saved[0], nil
}
