package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/normalization"
	"github.com/skillforge/skillforge-backend/internal/prompts"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

const freeTextMaxOutputTokens = 4096

// AnswerRef identifies one upserted answer row from a bulk-answer run.
type AnswerRef struct {
	InstructionID uuid.UUID `json:"instructionId"`
	AnswerID      uuid.UUID `json:"answerId"`
	Step          int       `json:"step"`
}

type ExerciseContentService interface {
	GenerateExerciseContent(ctx context.Context, userID uuid.UUID, exerciseID uuid.UUID, codeType types.CodeType, style string, customPrompt string) (string, error)
	GenerateAllAnswers(ctx context.Context, userID uuid.UUID, exerciseID uuid.UUID, codeType types.CodeType) ([]AnswerRef, error)
	CreateTheoryVariation(ctx context.Context, userID uuid.UUID, lessonID uuid.UUID, exerciseID *uuid.UUID, style types.TheoryStyle, title string) (*types.TheoryVariation, error)
	SetActiveTheoryVariation(ctx context.Context, userID uuid.UUID, lessonID uuid.UUID, variationID uuid.UUID) error
}

type exerciseContentService struct {
	db  *gorm.DB
	log *logger.Logger

	lessonRepo      repos.LessonRepo
	exerciseRepo    repos.ExerciseRepo
	instructionRepo repos.InstructionRepo
	answerRepo      repos.InstructionAnswerRepo
	variationRepo   repos.TheoryVariationRepo
	callLogRepo     repos.AICallLogRepo

	ai OpenAIClient
}

func NewExerciseContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	exerciseRepo repos.ExerciseRepo,
	instructionRepo repos.InstructionRepo,
	answerRepo repos.InstructionAnswerRepo,
	variationRepo repos.TheoryVariationRepo,
	callLogRepo repos.AICallLogRepo,
	ai OpenAIClient,
) ExerciseContentService {
	return &exerciseContentService{
		db:              db,
		log:             baseLog.With("service", "ExerciseContentService"),
		lessonRepo:      lessonRepo,
		exerciseRepo:    exerciseRepo,
		instructionRepo: instructionRepo,
		answerRepo:      answerRepo,
		variationRepo:   variationRepo,
		callLogRepo:     callLogRepo,
		ai:              ai,
	}
}

// loadOwnedExercise loads the exercise, its lesson and its ordered
// instructions, rejecting callers who do not own the lesson.
func (s *exerciseContentService) loadOwnedExercise(ctx context.Context, userID uuid.UUID, exerciseID uuid.UUID) (*types.Exercise, *types.Lesson, []*types.Instruction, error) {
	exs, err := s.exerciseRepo.GetByIDs(ctx, nil, []uuid.UUID{exerciseID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load exercise: %w", err)
	}
	if len(exs) == 0 || exs[0] == nil {
		return nil, nil, nil, ErrNotFound
	}
	ex := exs[0]

	lessons, err := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{ex.LessonID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load lesson: %w", err)
	}
	if len(lessons) == 0 || lessons[0] == nil {
		return nil, nil, nil, ErrNotFound
	}
	lesson := lessons[0]
	if lesson.CreatorID != userID {
		return nil, nil, nil, ErrNotOwned
	}

	insts, err := s.instructionRepo.GetByExerciseIDs(ctx, nil, []uuid.UUID{ex.ID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load instructions: %w", err)
	}
	return ex, lesson, insts, nil
}

func instructionList(insts []*types.Instruction) string {
	var b strings.Builder
	for i, inst := range insts {
		fmt.Fprintf(&b, "%d. %s", i+1, inst.Title)
		if inst.Content != "" {
			fmt.Fprintf(&b, " — %s", inst.Content)
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

func (s *exerciseContentService) recordCall(ctx context.Context, userID uuid.UUID, kind string, started time.Time, callErr error, meta map[string]any) {
	status := "ok"
	errText := ""
	if callErr != nil {
		status = "error"
		errText = callErr.Error()
	}
	entry := &types.AICallLog{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       kind,
		Model:      s.ai.Model(),
		DurationMS: time.Since(started).Milliseconds(),
		Status:     status,
		Error:      errText,
		Metadata:   datatypes.JSON(mustJSON(meta)),
	}
	if _, err := s.callLogRepo.Create(ctx, nil, []*types.AICallLog{entry}); err != nil {
		s.log.Warn("Failed to record AI call", "kind", kind, "error", err)
	}
}

// GenerateExerciseContent produces a single block of styled code (or theory
// prose, when the style is a theory style) for one exercise. The result is
// returned to the caller for review; nothing is persisted.
func (s *exerciseContentService) GenerateExerciseContent(ctx context.Context, userID uuid.UUID, exerciseID uuid.UUID, codeType types.CodeType, style string, customPrompt string) (string, error) {
	if !codeType.Valid() {
		return "", fmt.Errorf("invalid code type %q", codeType)
	}
	if !types.CodeStyle(style).Valid() && !types.TheoryStyle(style).Valid() {
		return "", fmt.Errorf("invalid style %q", style)
	}

	ex, lesson, insts, err := s.loadOwnedExercise(ctx, userID, exerciseID)
	if err != nil {
		return "", err
	}

	in := prompts.Input{
		ExerciseTitle:     ex.Title,
		LessonTitle:       lesson.Title,
		LessonDescription: lesson.Description,
		CodeType:          string(codeType),
		Style:             style,
		InstructionList:   instructionList(insts),
		Custom:            customPrompt,
	}

	var system, user string
	theory := types.TheoryStyle(style).Valid() && !types.CodeStyle(style).Valid()
	if theory {
		system, user = prompts.BuildTheoryVariation(in)
	} else {
		system, user = prompts.BuildExerciseContent(in)
	}

	started := time.Now()
	raw, genErr := s.ai.GenerateText(ctx, system, user, freeTextMaxOutputTokens)
	s.recordCall(ctx, userID, "exercise.content", started, genErr, map[string]any{
		"exercise_id": exerciseID.String(),
		"style":       style,
	})
	if genErr != nil {
		return "", fmt.Errorf("generate exercise content: %w", genErr)
	}

	if theory {
		return normalization.NormalizeGeneratedHTML(raw), nil
	}
	return normalization.StripCodeFence(raw), nil
}

// GenerateAllAnswers makes one model call covering every instruction of the
// exercise and upserts one answer row per instruction. A malformed response
// writes nothing.
func (s *exerciseContentService) GenerateAllAnswers(ctx context.Context, userID uuid.UUID, exerciseID uuid.UUID, codeType types.CodeType) ([]AnswerRef, error) {
	ex, lesson, insts, err := s.loadOwnedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if len(insts) == 0 {
		return nil, fmt.Errorf("exercise has no instructions")
	}
	if codeType == "" {
		codeType = ex.CodeType
	}
	if !codeType.Valid() {
		return nil, fmt.Errorf("invalid code type %q", codeType)
	}

	in := prompts.Input{
		ExerciseTitle:   ex.Title,
		LessonTitle:     lesson.Title,
		CodeType:        string(codeType),
		StepCount:       len(insts),
		InstructionList: instructionList(insts),
	}
	system, user := prompts.BuildAllAnswers(in)

	started := time.Now()
	raw, genErr := s.ai.GenerateText(ctx, system, user, freeTextMaxOutputTokens)
	s.recordCall(ctx, userID, "exercise.all_answers", started, genErr, map[string]any{
		"exercise_id": exerciseID.String(),
		"steps":       len(insts),
	})
	if genErr != nil {
		return nil, fmt.Errorf("generate answers: %w", genErr)
	}

	steps, err := normalization.ParseAnswerSteps(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnswerJSON, err)
	}

	// Index answers by 1-based step; out-of-range steps reject the batch
	// so a misaligned response never writes a partial set.
	byStep := make(map[int]string, len(steps))
	for _, st := range steps {
		if st.Step < 1 || st.Step > len(insts) {
			return nil, fmt.Errorf("%w: step %d out of range 1..%d", ErrMalformedAnswerJSON, st.Step, len(insts))
		}
		byStep[st.Step] = normalization.StripCodeFence(st.Code)
	}

	now := time.Now()
	answers := make([]*types.InstructionAnswer, 0, len(insts))
	refs := make([]AnswerRef, 0, len(insts))
	for i, inst := range insts {
		code, ok := byStep[i+1]
		if !ok {
			return nil, fmt.Errorf("%w: missing step %d", ErrMalformedAnswerJSON, i+1)
		}
		a := &types.InstructionAnswer{
			ID:            uuid.New(),
			InstructionID: inst.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		a.SetCode(codeType, code)
		answers = append(answers, a)
		refs = append(refs, AnswerRef{InstructionID: inst.ID, AnswerID: a.ID, Step: i + 1})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		saved, err := s.answerRepo.Upsert(ctx, tx, answers)
		if err != nil {
			return err
		}
		// Upsert may resolve to existing row IDs; reflect them in the refs.
		for i, a := range saved {
			if i < len(refs) {
				refs[i].AnswerID = a.ID
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save answers: %w", err)
	}
	return refs, nil
}

// CreateTheoryVariation generates alternate theory prose for a lesson and
// persists it. The first variation for a lesson becomes active; later ones
// start inactive.
func (s *exerciseContentService) CreateTheoryVariation(ctx context.Context, userID uuid.UUID, lessonID uuid.UUID, exerciseID *uuid.UUID, style types.TheoryStyle, title string) (*types.TheoryVariation, error) {
	if !style.Valid() {
		return nil, fmt.Errorf("invalid theory style %q", style)
	}

	lessons, err := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if len(lessons) == 0 || lessons[0] == nil {
		return nil, ErrNotFound
	}
	lesson := lessons[0]
	if lesson.CreatorID != userID {
		return nil, ErrNotOwned
	}

	in := prompts.Input{
		LessonTitle:       lesson.Title,
		LessonDescription: lesson.Description,
		Style:             string(style),
	}
	// Rework the currently active theory, when one exists, rather than
	// generating from the lesson description alone.
	existing, err := s.variationRepo.GetByLessonIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return nil, fmt.Errorf("load variations: %w", err)
	}
	for _, v := range existing {
		if v.IsActive {
			in.TheoryExcerpt = v.Content
			break
		}
	}
	if exerciseID != nil {
		exs, err := s.exerciseRepo.GetByIDs(ctx, nil, []uuid.UUID{*exerciseID})
		if err != nil {
			return nil, fmt.Errorf("load exercise: %w", err)
		}
		if len(exs) > 0 && exs[0] != nil && exs[0].LessonID == lessonID {
			in.ExerciseTitle = exs[0].Title
		}
	}
	system, user := prompts.BuildTheoryVariation(in)

	started := time.Now()
	raw, genErr := s.ai.GenerateText(ctx, system, user, freeTextMaxOutputTokens)
	s.recordCall(ctx, userID, "theory.variation", started, genErr, map[string]any{
		"lesson_id": lessonID.String(),
		"style":     string(style),
	})
	if genErr != nil {
		return nil, fmt.Errorf("generate theory variation: %w", genErr)
	}
	content := normalization.NormalizeGeneratedHTML(raw)

	if title == "" {
		title = fmt.Sprintf("%s (%s)", lesson.Title, style)
	}

	var variation *types.TheoryVariation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		num, err := s.variationRepo.NextVariationNumber(ctx, tx, lessonID)
		if err != nil {
			return fmt.Errorf("variation number: %w", err)
		}
		now := time.Now()
		variation = &types.TheoryVariation{
			ID:              uuid.New(),
			LessonID:        lessonID,
			Title:           title,
			Content:         content,
			Style:           style,
			IsActive:        num == 1,
			VariationNumber: num,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := s.variationRepo.Create(ctx, tx, []*types.TheoryVariation{variation}); err != nil {
			return fmt.Errorf("create variation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return variation, nil
}

// SetActiveTheoryVariation flips the active flag to the given variation in
// one statement, so there is never a window with two active variations.
func (s *exerciseContentService) SetActiveTheoryVariation(ctx context.Context, userID uuid.UUID, lessonID uuid.UUID, variationID uuid.UUID) error {
	lessons, err := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return fmt.Errorf("load lesson: %w", err)
	}
	if len(lessons) == 0 || lessons[0] == nil {
		return ErrNotFound
	}
	if lessons[0].CreatorID != userID {
		return ErrNotOwned
	}

	variations, err := s.variationRepo.GetByIDs(ctx, nil, []uuid.UUID{variationID})
	if err != nil {
		return fmt.Errorf("load variation: %w", err)
	}
	if len(variations) == 0 || variations[0] == nil || variations[0].LessonID != lessonID {
		return ErrNotFound
	}

	return s.variationRepo.SetActive(ctx, nil, lessonID, variationID)
}
