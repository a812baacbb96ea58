package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/repos"
)

// cascade deletes content subtrees bottom-up with explicit statements, so
// the behavior does not depend on database foreign key enforcement. Always
// call inside a transaction.
type cascade struct {
	unitRepo       repos.UnitRepo
	moduleRepo     repos.ModuleRepo
	lessonRepo     repos.LessonRepo
	exerciseRepo   repos.ExerciseRepo
	instRepo       repos.InstructionRepo
	answerRepo     repos.InstructionAnswerRepo
	quizRepo       repos.QuizRepo
	questionRepo   repos.QuizQuestionRepo
	quizAnswerRepo repos.QuizAnswerRepo
	projectRepo    repos.ProjectRepo
	taskRepo       repos.ProjectTaskRepo
	taskInstRepo   repos.TaskInstructionRepo
	taskAnswerRepo repos.TaskInstructionAnswerRepo
	variationRepo  repos.TheoryVariationRepo
}

func NewCascade(
	unitRepo repos.UnitRepo,
	moduleRepo repos.ModuleRepo,
	lessonRepo repos.LessonRepo,
	exerciseRepo repos.ExerciseRepo,
	instRepo repos.InstructionRepo,
	answerRepo repos.InstructionAnswerRepo,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuizQuestionRepo,
	quizAnswerRepo repos.QuizAnswerRepo,
	projectRepo repos.ProjectRepo,
	taskRepo repos.ProjectTaskRepo,
	taskInstRepo repos.TaskInstructionRepo,
	taskAnswerRepo repos.TaskInstructionAnswerRepo,
	variationRepo repos.TheoryVariationRepo,
) *cascade {
	return &cascade{
		unitRepo:       unitRepo,
		moduleRepo:     moduleRepo,
		lessonRepo:     lessonRepo,
		exerciseRepo:   exerciseRepo,
		instRepo:       instRepo,
		answerRepo:     answerRepo,
		quizRepo:       quizRepo,
		questionRepo:   questionRepo,
		quizAnswerRepo: quizAnswerRepo,
		projectRepo:    projectRepo,
		taskRepo:       taskRepo,
		taskInstRepo:   taskInstRepo,
		taskAnswerRepo: taskAnswerRepo,
		variationRepo:  variationRepo,
	}
}

func (c *cascade) deleteInstructions(ctx context.Context, tx *gorm.DB, instructionIDs []uuid.UUID) error {
	if len(instructionIDs) == 0 {
		return nil
	}
	if err := c.answerRepo.DeleteByInstructionIDs(ctx, tx, instructionIDs); err != nil {
		return fmt.Errorf("delete instruction answers: %w", err)
	}
	if err := c.instRepo.DeleteByIDs(ctx, tx, instructionIDs); err != nil {
		return fmt.Errorf("delete instructions: %w", err)
	}
	return nil
}

func (c *cascade) deleteExercises(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) error {
	if len(exerciseIDs) == 0 {
		return nil
	}
	insts, err := c.instRepo.GetByExerciseIDs(ctx, tx, exerciseIDs)
	if err != nil {
		return fmt.Errorf("load instructions: %w", err)
	}
	instIDs := make([]uuid.UUID, 0, len(insts))
	for _, inst := range insts {
		instIDs = append(instIDs, inst.ID)
	}
	if err := c.deleteInstructions(ctx, tx, instIDs); err != nil {
		return err
	}
	if err := c.exerciseRepo.DeleteByIDs(ctx, tx, exerciseIDs); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}
	return nil
}

func (c *cascade) deleteLessons(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	exs, err := c.exerciseRepo.GetByLessonIDs(ctx, tx, lessonIDs)
	if err != nil {
		return fmt.Errorf("load exercises: %w", err)
	}
	exIDs := make([]uuid.UUID, 0, len(exs))
	for _, ex := range exs {
		exIDs = append(exIDs, ex.ID)
	}
	if err := c.deleteExercises(ctx, tx, exIDs); err != nil {
		return err
	}
	if err := c.variationRepo.DeleteByLessonIDs(ctx, tx, lessonIDs); err != nil {
		return fmt.Errorf("delete theory variations: %w", err)
	}
	if err := c.lessonRepo.DeleteByIDs(ctx, tx, lessonIDs); err != nil {
		return fmt.Errorf("delete lessons: %w", err)
	}
	return nil
}

func (c *cascade) deleteQuestions(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) error {
	if len(questionIDs) == 0 {
		return nil
	}
	if err := c.quizAnswerRepo.DeleteByQuestionIDs(ctx, tx, questionIDs); err != nil {
		return fmt.Errorf("delete quiz answers: %w", err)
	}
	if err := c.questionRepo.DeleteByIDs(ctx, tx, questionIDs); err != nil {
		return fmt.Errorf("delete quiz questions: %w", err)
	}
	return nil
}

func (c *cascade) deleteQuizzes(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) error {
	if len(quizIDs) == 0 {
		return nil
	}
	questions, err := c.questionRepo.GetByQuizIDs(ctx, tx, quizIDs)
	if err != nil {
		return fmt.Errorf("load quiz questions: %w", err)
	}
	qIDs := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		qIDs = append(qIDs, q.ID)
	}
	if err := c.deleteQuestions(ctx, tx, qIDs); err != nil {
		return err
	}
	if err := c.quizRepo.DeleteByIDs(ctx, tx, quizIDs); err != nil {
		return fmt.Errorf("delete quizzes: %w", err)
	}
	return nil
}

func (c *cascade) deleteTaskInstructions(ctx context.Context, tx *gorm.DB, taskInstructionIDs []uuid.UUID) error {
	if len(taskInstructionIDs) == 0 {
		return nil
	}
	if err := c.taskAnswerRepo.DeleteByTaskInstructionIDs(ctx, tx, taskInstructionIDs); err != nil {
		return fmt.Errorf("delete task instruction answers: %w", err)
	}
	if err := c.taskInstRepo.DeleteByIDs(ctx, tx, taskInstructionIDs); err != nil {
		return fmt.Errorf("delete task instructions: %w", err)
	}
	return nil
}

func (c *cascade) deleteTasks(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}
	insts, err := c.taskInstRepo.GetByTaskIDs(ctx, tx, taskIDs)
	if err != nil {
		return fmt.Errorf("load task instructions: %w", err)
	}
	instIDs := make([]uuid.UUID, 0, len(insts))
	for _, inst := range insts {
		instIDs = append(instIDs, inst.ID)
	}
	if err := c.deleteTaskInstructions(ctx, tx, instIDs); err != nil {
		return err
	}
	if err := c.taskRepo.DeleteByIDs(ctx, tx, taskIDs); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

func (c *cascade) deleteProjects(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error {
	if len(projectIDs) == 0 {
		return nil
	}
	tasks, err := c.taskRepo.GetByProjectIDs(ctx, tx, projectIDs)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	taskIDs := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	if err := c.deleteTasks(ctx, tx, taskIDs); err != nil {
		return err
	}
	if err := c.projectRepo.DeleteByIDs(ctx, tx, projectIDs); err != nil {
		return fmt.Errorf("delete projects: %w", err)
	}
	return nil
}

func (c *cascade) deleteModules(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	lessons, err := c.lessonRepo.GetByModuleIDs(ctx, tx, moduleIDs)
	if err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}
	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}
	if err := c.deleteLessons(ctx, tx, lessonIDs); err != nil {
		return err
	}

	quizzes, err := c.quizRepo.GetByModuleIDs(ctx, tx, moduleIDs)
	if err != nil {
		return fmt.Errorf("load quizzes: %w", err)
	}
	quizIDs := make([]uuid.UUID, 0, len(quizzes))
	for _, q := range quizzes {
		quizIDs = append(quizIDs, q.ID)
	}
	if err := c.deleteQuizzes(ctx, tx, quizIDs); err != nil {
		return err
	}

	projects, err := c.projectRepo.GetByModuleIDs(ctx, tx, moduleIDs)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	projectIDs := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}
	if err := c.deleteProjects(ctx, tx, projectIDs); err != nil {
		return err
	}

	if err := c.moduleRepo.DeleteByIDs(ctx, tx, moduleIDs); err != nil {
		return fmt.Errorf("delete modules: %w", err)
	}
	return nil
}

func (c *cascade) deleteUnits(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) error {
	if len(unitIDs) == 0 {
		return nil
	}
	mods, err := c.moduleRepo.GetByUnitIDs(ctx, tx, unitIDs)
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	modIDs := make([]uuid.UUID, 0, len(mods))
	for _, m := range mods {
		modIDs = append(modIDs, m.ID)
	}
	if err := c.deleteModules(ctx, tx, modIDs); err != nil {
		return err
	}
	if err := c.unitRepo.DeleteByIDs(ctx, tx, unitIDs); err != nil {
		return fmt.Errorf("delete units: %w", err)
	}
	return nil
}
