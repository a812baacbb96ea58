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

// NewExerciseInput carries the caller-provided fields for a manual exercise
// append.
type NewExerciseInput struct {
	Title         string         `json:"title"`
	CodeType      types.CodeType `json:"code_type"`
	StarterHTML   string         `json:"starter_html"`
	StarterCSS    string         `json:"starter_css"`
	StarterJS     string         `json:"starter_js"`
	StarterPython string         `json:"starter_python"`
}

type LessonService interface {
	AppendLesson(ctx context.Context, userID uuid.UUID, moduleID uuid.UUID, title, description string) (*types.Lesson, error)
	GetLesson(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Lesson, error)
	UpdateLesson(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteLesson(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	AppendExercise(ctx context.Context, userID uuid.UUID, lessonID uuid.UUID, input NewExerciseInput) (*types.Exercise, error)
	GetExercise(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Exercise, error)
	UpdateExercise(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteExercise(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	AppendInstruction(ctx context.Context, userID uuid.UUID, exerciseID uuid.UUID, title, content string) (*types.Instruction, error)
	GetInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Instruction, error)
	UpdateInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error
	DeleteInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	UpsertInstructionAnswer(ctx context.Context, userID uuid.UUID, instructionID uuid.UUID, codeType types.CodeType, code string) (*types.InstructionAnswer, error)
}

type lessonService struct {
	db  *gorm.DB
	log *logger.Logger

	lessonRepo    repos.LessonRepo
	exerciseRepo  repos.ExerciseRepo
	instRepo      repos.InstructionRepo
	answerRepo    repos.InstructionAnswerRepo
	variationRepo repos.TheoryVariationRepo

	owners  *ownership
	deleter *cascade
}

func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	exerciseRepo repos.ExerciseRepo,
	instRepo repos.InstructionRepo,
	answerRepo repos.InstructionAnswerRepo,
	variationRepo repos.TheoryVariationRepo,
	owners *ownership,
	deleter *cascade,
) LessonService {
	return &lessonService{
		db:            db,
		log:           baseLog.With("service", "LessonService"),
		lessonRepo:    lessonRepo,
		exerciseRepo:  exerciseRepo,
		instRepo:      instRepo,
		answerRepo:    answerRepo,
		variationRepo: variationRepo,
		owners:        owners,
		deleter:       deleter,
	}
}

func (s *lessonService) AppendLesson(ctx context.Context, userID uuid.UUID, moduleID uuid.UUID, title, description string) (*types.Lesson, error) {
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

	var lesson *types.Lesson
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.lessonRepo.NextPosition(ctx, tx, moduleID)
		if err != nil {
			return fmt.Errorf("lesson position: %w", err)
		}
		now := time.Now()
		lesson = &types.Lesson{
			ID:          uuid.New(),
			ModuleID:    &moduleID,
			CreatorID:   userID,
			Title:       title,
			Description: description,
			Position:    pos,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = s.lessonRepo.Create(ctx, tx, []*types.Lesson{lesson})
		return err
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// GetLesson loads the lesson with exercises, their instructions and answers,
// and theory variations.
func (s *lessonService) GetLesson(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Lesson, error) {
	lesson, creator, err := s.owners.lesson(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	exs, err := s.exerciseRepo.GetByLessonIDs(ctx, nil, []uuid.UUID{lesson.ID})
	if err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}
	exIDs := make([]uuid.UUID, 0, len(exs))
	for _, ex := range exs {
		exIDs = append(exIDs, ex.ID)
	}
	insts, err := s.instRepo.GetByExerciseIDs(ctx, nil, exIDs)
	if err != nil {
		return nil, fmt.Errorf("load instructions: %w", err)
	}
	instIDs := make([]uuid.UUID, 0, len(insts))
	for _, inst := range insts {
		instIDs = append(instIDs, inst.ID)
	}
	answers, err := s.answerRepo.GetByInstructionIDs(ctx, nil, instIDs)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	answerByInst := make(map[uuid.UUID]*types.InstructionAnswer, len(answers))
	for _, a := range answers {
		answerByInst[a.InstructionID] = a
	}
	instsByEx := make(map[uuid.UUID][]*types.Instruction, len(exs))
	for _, inst := range insts {
		inst.Answer = answerByInst[inst.ID]
		instsByEx[inst.ExerciseID] = append(instsByEx[inst.ExerciseID], inst)
	}
	for _, ex := range exs {
		ex.Instructions = instsByEx[ex.ID]
	}
	lesson.Exercises = exs

	variations, err := s.variationRepo.GetByLessonIDs(ctx, nil, []uuid.UUID{lesson.ID})
	if err != nil {
		return nil, fmt.Errorf("load variations: %w", err)
	}
	lesson.Variations = variations
	return lesson, nil
}

func (s *lessonService) UpdateLesson(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.lesson(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	updates := filterFields(fields, "title", "description", "published")
	if len(updates) == 0 {
		return nil
	}
	return s.lessonRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *lessonService) DeleteLesson(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	lesson, creator, err := s.owners.lesson(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteLessons(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		if lesson.ModuleID != nil {
			return s.lessonRepo.ShiftPositionsAfter(ctx, tx, *lesson.ModuleID, lesson.Position)
		}
		return nil
	})
}

func (s *lessonService) AppendExercise(ctx context.Context, userID uuid.UUID, lessonID uuid.UUID, input NewExerciseInput) (*types.Exercise, error) {
	input.Title = normalization.ParseInputString(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("title required")
	}
	if !input.CodeType.Valid() {
		return nil, fmt.Errorf("invalid code type %q", input.CodeType)
	}
	_, creator, err := s.owners.lesson(ctx, nil, lessonID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	var ex *types.Exercise
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.exerciseRepo.NextPosition(ctx, tx, lessonID)
		if err != nil {
			return fmt.Errorf("exercise position: %w", err)
		}
		now := time.Now()
		ex = &types.Exercise{
			ID:            uuid.New(),
			LessonID:      lessonID,
			Title:         input.Title,
			CodeType:      input.CodeType,
			StarterHTML:   input.StarterHTML,
			StarterCSS:    input.StarterCSS,
			StarterJS:     input.StarterJS,
			StarterPython: input.StarterPython,
			Position:      pos,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, err = s.exerciseRepo.Create(ctx, tx, []*types.Exercise{ex})
		return err
	})
	if err != nil {
		return nil, err
	}
	return ex, nil
}

func (s *lessonService) GetExercise(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Exercise, error) {
	ex, creator, err := s.owners.exercise(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	insts, err := s.instRepo.GetByExerciseIDs(ctx, nil, []uuid.UUID{ex.ID})
	if err != nil {
		return nil, fmt.Errorf("load instructions: %w", err)
	}
	instIDs := make([]uuid.UUID, 0, len(insts))
	for _, inst := range insts {
		instIDs = append(instIDs, inst.ID)
	}
	answers, err := s.answerRepo.GetByInstructionIDs(ctx, nil, instIDs)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	answerByInst := make(map[uuid.UUID]*types.InstructionAnswer, len(answers))
	for _, a := range answers {
		answerByInst[a.InstructionID] = a
	}
	for _, inst := range insts {
		inst.Answer = answerByInst[inst.ID]
	}
	ex.Instructions = insts
	return ex, nil
}

func (s *lessonService) UpdateExercise(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.exercise(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	if v, ok := fields["code_type"]; ok {
		if !types.CodeType(strFromAny(v)).Valid() {
			return fmt.Errorf("invalid code type %q", v)
		}
	}
	updates := filterFields(fields, "title", "code_type", "starter_html", "starter_css", "starter_js", "starter_python")
	if len(updates) == 0 {
		return nil
	}
	return s.exerciseRepo.UpdateFields(ctx, nil, id, updates)
}

func (s *lessonService) DeleteExercise(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	ex, creator, err := s.owners.exercise(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteExercises(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.exerciseRepo.ShiftPositionsAfter(ctx, tx, ex.LessonID, ex.Position)
	})
}

func (s *lessonService) AppendInstruction(ctx context.Context, userID uuid.UUID, exerciseID uuid.UUID, title, content string) (*types.Instruction, error) {
	title = normalization.ParseInputString(title)
	if title == "" {
		return nil, fmt.Errorf("title required")
	}
	_, creator, err := s.owners.exercise(ctx, nil, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	var inst *types.Instruction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.instRepo.NextPosition(ctx, tx, exerciseID)
		if err != nil {
			return fmt.Errorf("instruction position: %w", err)
		}
		now := time.Now()
		inst = &types.Instruction{
			ID:         uuid.New(),
			ExerciseID: exerciseID,
			Title:      title,
			Content:    content,
			Position:   pos,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		_, err = s.instRepo.Create(ctx, tx, []*types.Instruction{inst})
		return err
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *lessonService) GetInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*types.Instruction, error) {
	inst, creator, err := s.owners.instruction(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}
	answers, err := s.answerRepo.GetByInstructionIDs(ctx, nil, []uuid.UUID{inst.ID})
	if err != nil {
		return nil, fmt.Errorf("load answer: %w", err)
	}
	if len(answers) > 0 {
		inst.Answer = answers[0]
	}
	return inst, nil
}

func (s *lessonService) UpdateInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID, fields map[string]any) error {
	_, creator, err := s.owners.instruction(ctx, nil, id)
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
	return s.instRepo.UpdateFields(ctx, nil, id, updates)
}

// DeleteInstruction removes the instruction and its answer, then renumbers
// the later siblings so positions stay contiguous.
func (s *lessonService) DeleteInstruction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	inst, creator, err := s.owners.instruction(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := requireOwner(creator, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleter.deleteInstructions(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.instRepo.ShiftPositionsAfter(ctx, tx, inst.ExerciseID, inst.Position)
	})
}

func (s *lessonService) UpsertInstructionAnswer(ctx context.Context, userID uuid.UUID, instructionID uuid.UUID, codeType types.CodeType, code string) (*types.InstructionAnswer, error) {
	if !codeType.Valid() {
		return nil, fmt.Errorf("invalid code type %q", codeType)
	}
	_, creator, err := s.owners.instruction(ctx, nil, instructionID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(creator, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	answer := &types.InstructionAnswer{
		ID:            uuid.New(),
		InstructionID: instructionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	answer.SetCode(codeType, code)

	saved, err := s.answerRepo.Upsert(ctx, nil, []*types.InstructionAnswer{answer})
	if err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	return saved[0], nil
}
