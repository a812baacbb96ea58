package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

// ownership resolves the creator of any content entity by walking up to the
// owning skill path, or reading the creator column directly where one
// exists. Every CRUD service authorizes through it.
type ownership struct {
	skillPathRepo repos.SkillPathRepo
	unitRepo      repos.UnitRepo
	moduleRepo    repos.ModuleRepo
	lessonRepo    repos.LessonRepo
	exerciseRepo  repos.ExerciseRepo
	instRepo      repos.InstructionRepo
	quizRepo      repos.QuizRepo
	questionRepo  repos.QuizQuestionRepo
	projectRepo   repos.ProjectRepo
	taskRepo      repos.ProjectTaskRepo
	taskInstRepo  repos.TaskInstructionRepo
	variationRepo repos.TheoryVariationRepo
}

func NewOwnership(
	skillPathRepo repos.SkillPathRepo,
	unitRepo repos.UnitRepo,
	moduleRepo repos.ModuleRepo,
	lessonRepo repos.LessonRepo,
	exerciseRepo repos.ExerciseRepo,
	instRepo repos.InstructionRepo,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuizQuestionRepo,
	projectRepo repos.ProjectRepo,
	taskRepo repos.ProjectTaskRepo,
	taskInstRepo repos.TaskInstructionRepo,
	variationRepo repos.TheoryVariationRepo,
) *ownership {
	return &ownership{
		skillPathRepo: skillPathRepo,
		unitRepo:      unitRepo,
		moduleRepo:    moduleRepo,
		lessonRepo:    lessonRepo,
		exerciseRepo:  exerciseRepo,
		instRepo:      instRepo,
		quizRepo:      quizRepo,
		questionRepo:  questionRepo,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		taskInstRepo:  taskInstRepo,
		variationRepo: variationRepo,
	}
}

// requireOwner returns ErrNotOwned when the resolved creator differs from
// the caller.
func requireOwner(creatorID, userID uuid.UUID) error {
	if creatorID != userID {
		return ErrNotOwned
	}
	return nil
}

func (o *ownership) skillPath(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SkillPath, error) {
	sps, err := o.skillPathRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load skill path: %w", err)
	}
	if len(sps) == 0 || sps[0] == nil {
		return nil, ErrNotFound
	}
	return sps[0], nil
}

func (o *ownership) unit(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Unit, uuid.UUID, error) {
	units, err := o.unitRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load unit: %w", err)
	}
	if len(units) == 0 || units[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	sp, err := o.skillPath(ctx, tx, units[0].SkillPathID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return units[0], sp.CreatorID, nil
}

func (o *ownership) module(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Module, uuid.UUID, error) {
	mods, err := o.moduleRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load module: %w", err)
	}
	if len(mods) == 0 || mods[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	_, creator, err := o.unit(ctx, tx, mods[0].UnitID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return mods[0], creator, nil
}

func (o *ownership) lesson(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lesson, uuid.UUID, error) {
	lessons, err := o.lessonRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load lesson: %w", err)
	}
	if len(lessons) == 0 || lessons[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	return lessons[0], lessons[0].CreatorID, nil
}

func (o *ownership) exercise(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, uuid.UUID, error) {
	exs, err := o.exerciseRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load exercise: %w", err)
	}
	if len(exs) == 0 || exs[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	_, creator, err := o.lesson(ctx, tx, exs[0].LessonID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return exs[0], creator, nil
}

func (o *ownership) instruction(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Instruction, uuid.UUID, error) {
	insts, err := o.instRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load instruction: %w", err)
	}
	if len(insts) == 0 || insts[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	_, creator, err := o.exercise(ctx, tx, insts[0].ExerciseID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return insts[0], creator, nil
}

func (o *ownership) quiz(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Quiz, uuid.UUID, error) {
	quizzes, err := o.quizRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load quiz: %w", err)
	}
	if len(quizzes) == 0 || quizzes[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	return quizzes[0], quizzes[0].CreatorID, nil
}

func (o *ownership) question(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizQuestion, uuid.UUID, error) {
	qs, err := o.questionRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load question: %w", err)
	}
	if len(qs) == 0 || qs[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	_, creator, err := o.quiz(ctx, tx, qs[0].QuizID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return qs[0], creator, nil
}

func (o *ownership) project(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, uuid.UUID, error) {
	projects, err := o.projectRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load project: %w", err)
	}
	if len(projects) == 0 || projects[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	return projects[0], projects[0].CreatorID, nil
}

func (o *ownership) task(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ProjectTask, uuid.UUID, error) {
	tasks, err := o.taskRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load task: %w", err)
	}
	if len(tasks) == 0 || tasks[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	_, creator, err := o.project(ctx, tx, tasks[0].ProjectID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return tasks[0], creator, nil
}

func (o *ownership) taskInstruction(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TaskInstruction, uuid.UUID, error) {
	insts, err := o.taskInstRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load task instruction: %w", err)
	}
	if len(insts) == 0 || insts[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	_, creator, err := o.task(ctx, tx, insts[0].TaskID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return insts[0], creator, nil
}

func (o *ownership) variation(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TheoryVariation, uuid.UUID, error) {
	vars, err := o.variationRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load theory variation: %w", err)
	}
	if len(vars) == 0 || vars[0] == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	_, creator, err := o.lesson(ctx, tx, vars[0].LessonID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return vars[0], creator, nil
}
