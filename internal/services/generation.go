package services

import (
	"context"
	"encoding/json"
	"fmt"
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

// ContentKind selects which generator handles a request.
type ContentKind string

const (
	KindSkillPath ContentKind = "skillpath"
	KindLesson    ContentKind = "lesson"
	KindQuiz      ContentKind = "quiz"
	KindProject   ContentKind = "project"
)

// GenerateOptions are the caller-tunable knobs forwarded into the prompt.
type GenerateOptions struct {
	Audience     string `json:"audience"`
	Difficulty   string `json:"difficulty"`
	Custom       string `json:"custom"`
	NumUnits     int    `json:"units"`
	NumModules   int    `json:"modules"`
	NumLessons   int    `json:"lessons"`
	NumExercises int    `json:"exercises"`
	NumQuestions int    `json:"questions"`
	NumTasks     int    `json:"tasks"`
}

type GenerateParams struct {
	Kind     ContentKind
	Topic    string
	Options  GenerateOptions
	ModuleID *uuid.UUID
	UserID   uuid.UUID
}

// GenerateResult carries the persisted root entity plus the raw model tree
// for clients that want to render it without a refetch.
type GenerateResult struct {
	Kind    ContentKind    `json:"kind"`
	Content any            `json:"content"`
	Raw     map[string]any `json:"raw"`
}

type ContentGenerationService interface {
	Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error)
}

// contentGenerator is the per-kind contract: produce a tree from the model,
// then materialize it inside the caller's transaction.
type contentGenerator interface {
	generate(ctx context.Context, s *contentGenerationService, params GenerateParams) (map[string]any, error)
	persist(ctx context.Context, s *contentGenerationService, tx *gorm.DB, tree map[string]any, params GenerateParams) (any, error)
}

type contentGenerationService struct {
	db  *gorm.DB
	log *logger.Logger

	skillPathRepo   repos.SkillPathRepo
	unitRepo        repos.UnitRepo
	moduleRepo      repos.ModuleRepo
	lessonRepo      repos.LessonRepo
	exerciseRepo    repos.ExerciseRepo
	instructionRepo repos.InstructionRepo
	answerRepo      repos.InstructionAnswerRepo
	quizRepo        repos.QuizRepo
	questionRepo    repos.QuizQuestionRepo
	quizAnswerRepo  repos.QuizAnswerRepo
	projectRepo     repos.ProjectRepo
	taskRepo        repos.ProjectTaskRepo
	taskInstRepo    repos.TaskInstructionRepo
	taskAnswerRepo  repos.TaskInstructionAnswerRepo
	callLogRepo     repos.AICallLogRepo

	owners *ownership
	ai     OpenAIClient

	generators map[ContentKind]contentGenerator
}

func NewContentGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	skillPathRepo repos.SkillPathRepo,
	unitRepo repos.UnitRepo,
	moduleRepo repos.ModuleRepo,
	lessonRepo repos.LessonRepo,
	exerciseRepo repos.ExerciseRepo,
	instructionRepo repos.InstructionRepo,
	answerRepo repos.InstructionAnswerRepo,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuizQuestionRepo,
	quizAnswerRepo repos.QuizAnswerRepo,
	projectRepo repos.ProjectRepo,
	taskRepo repos.ProjectTaskRepo,
	taskInstRepo repos.TaskInstructionRepo,
	taskAnswerRepo repos.TaskInstructionAnswerRepo,
	callLogRepo repos.AICallLogRepo,
	owners *ownership,
	ai OpenAIClient,
) ContentGenerationService {
	s := &contentGenerationService{
		db:              db,
		log:             baseLog.With("service", "ContentGenerationService"),
		skillPathRepo:   skillPathRepo,
		unitRepo:        unitRepo,
		moduleRepo:      moduleRepo,
		lessonRepo:      lessonRepo,
		exerciseRepo:    exerciseRepo,
		instructionRepo: instructionRepo,
		answerRepo:      answerRepo,
		quizRepo:        quizRepo,
		questionRepo:    questionRepo,
		quizAnswerRepo:  quizAnswerRepo,
		projectRepo:     projectRepo,
		taskRepo:        taskRepo,
		taskInstRepo:    taskInstRepo,
		taskAnswerRepo:  taskAnswerRepo,
		callLogRepo:     callLogRepo,
		owners:          owners,
		ai:              ai,
	}
	s.generators = map[ContentKind]contentGenerator{
		KindSkillPath: skillPathGenerator{},
		KindLesson:    lessonGenerator{},
		KindQuiz:      quizGenerator{},
		KindProject:   projectGenerator{},
	}
	return s
}

func (s *contentGenerationService) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	gen, ok := s.generators[params.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown content kind: %s", params.Kind)
	}
	if params.Topic == "" {
		return nil, fmt.Errorf("prompt topic required")
	}
	if params.ModuleID != nil {
		_, creator, err := s.owners.module(ctx, nil, *params.ModuleID)
		if err != nil {
			return nil, err
		}
		if err := requireOwner(creator, params.UserID); err != nil {
			return nil, err
		}
	}

	started := time.Now()
	tree, genErr := gen.generate(ctx, s, params)
	s.recordCall(ctx, params.UserID, string(params.Kind)+".generate", started, genErr, map[string]any{
		"topic": params.Topic,
	})
	if genErr != nil {
		return nil, fmt.Errorf("generate %s: %w", params.Kind, genErr)
	}

	var content any
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		saved, err := gen.persist(ctx, s, tx, tree, params)
		if err != nil {
			return err
		}
		content = saved
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist %s: %w", params.Kind, err)
	}

	return &GenerateResult{Kind: params.Kind, Content: content, Raw: tree}, nil
}

// recordCall writes an AICallLog row. Failures are logged, never surfaced.
func (s *contentGenerationService) recordCall(ctx context.Context, userID uuid.UUID, kind string, started time.Time, callErr error, meta map[string]any) {
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

func (s *contentGenerationService) generateTree(ctx context.Context, name prompts.PromptName, params GenerateParams) (map[string]any, error) {
	in := prompts.Input{
		Topic:        params.Topic,
		Audience:     params.Options.Audience,
		Difficulty:   params.Options.Difficulty,
		Custom:       params.Options.Custom,
		NumUnits:     params.Options.NumUnits,
		NumModules:   params.Options.NumModules,
		NumLessons:   params.Options.NumLessons,
		NumExercises: params.Options.NumExercises,
		NumQuestions: params.Options.NumQuestions,
		NumTasks:     params.Options.NumTasks,
	}
	p, err := prompts.Build(name, in)
	if err != nil {
		return nil, err
	}
	return s.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
}

// ---- skill path ----

type skillPathGenerator struct{}

func (skillPathGenerator) generate(ctx context.Context, s *contentGenerationService, params GenerateParams) (map[string]any, error) {
	return s.generateTree(ctx, prompts.PromptSkillPathTree, params)
}

func (skillPathGenerator) persist(ctx context.Context, s *contentGenerationService, tx *gorm.DB, tree map[string]any, params GenerateParams) (any, error) {
	now := time.Now()
	sp := &types.SkillPath{
		ID:          uuid.New(),
		CreatorID:   params.UserID,
		Title:       strFromAny(tree["title"]),
		Description: strFromAny(tree["description"]),
		Metadata:    datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if sp.Title == "" {
		return nil, fmt.Errorf("generated skill path missing title")
	}
	if _, err := s.skillPathRepo.Create(ctx, tx, []*types.SkillPath{sp}); err != nil {
		return nil, fmt.Errorf("create skill path: %w", err)
	}

	unitsAny, err := sliceOfMaps(tree["units"])
	if err != nil {
		return nil, fmt.Errorf("skill path units: %w", err)
	}
	for ui, um := range unitsAny {
		unit := &types.Unit{
			ID:          uuid.New(),
			SkillPathID: sp.ID,
			Title:       strFromAny(um["title"]),
			Description: strFromAny(um["description"]),
			Position:    ui + 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := s.unitRepo.Create(ctx, tx, []*types.Unit{unit}); err != nil {
			return nil, fmt.Errorf("create unit %d: %w", ui+1, err)
		}

		modsAny, err := sliceOfMaps(um["modules"])
		if err != nil {
			return nil, fmt.Errorf("unit %d modules: %w", ui+1, err)
		}
		mods := make([]*types.Module, 0, len(modsAny))
		for mi, mm := range modsAny {
			mods = append(mods, &types.Module{
				ID:          uuid.New(),
				UnitID:      unit.ID,
				Title:       strFromAny(mm["title"]),
				Description: strFromAny(mm["description"]),
				Position:    mi + 1,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		if _, err := s.moduleRepo.Create(ctx, tx, mods); err != nil {
			return nil, fmt.Errorf("create modules for unit %d: %w", ui+1, err)
		}
		unit.Modules = mods
		sp.Units = append(sp.Units, unit)
	}
	return sp, nil
}

// ---- lesson ----

type lessonGenerator struct{}

func (lessonGenerator) generate(ctx context.Context, s *contentGenerationService, params GenerateParams) (map[string]any, error) {
	return s.generateTree(ctx, prompts.PromptLessonTree, params)
}

func (lessonGenerator) persist(ctx context.Context, s *contentGenerationService, tx *gorm.DB, tree map[string]any, params GenerateParams) (any, error) {
	now := time.Now()
	lesson := &types.Lesson{
		ID:          uuid.New(),
		ModuleID:    params.ModuleID,
		CreatorID:   params.UserID,
		Title:       strFromAny(tree["title"]),
		Description: normalization.NormalizeGeneratedHTML(strFromAny(tree["description"])),
		Position:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if lesson.Title == "" {
		return nil, fmt.Errorf("generated lesson missing title")
	}
	if params.ModuleID != nil {
		pos, err := s.lessonRepo.NextPosition(ctx, tx, *params.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("lesson position: %w", err)
		}
		lesson.Position = pos
	}
	if _, err := s.lessonRepo.Create(ctx, tx, []*types.Lesson{lesson}); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	exsAny, err := sliceOfMaps(tree["exercises"])
	if err != nil {
		return nil, fmt.Errorf("lesson exercises: %w", err)
	}
	for ei, em := range exsAny {
		codeType := types.CodeType(strFromAny(em["code_type"]))
		if !codeType.Valid() {
			return nil, fmt.Errorf("exercise %d: invalid code type %q", ei+1, codeType)
		}
		ex := &types.Exercise{
			ID:            uuid.New(),
			LessonID:      lesson.ID,
			Title:         strFromAny(em["title"]),
			CodeType:      codeType,
			StarterHTML:   strFromAny(em["starter_html"]),
			StarterCSS:    strFromAny(em["starter_css"]),
			StarterJS:     strFromAny(em["starter_js"]),
			StarterPython: strFromAny(em["starter_python"]),
			Position:      ei + 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := s.exerciseRepo.Create(ctx, tx, []*types.Exercise{ex}); err != nil {
			return nil, fmt.Errorf("create exercise %d: %w", ei+1, err)
		}

		instsAny, err := sliceOfMaps(em["instructions"])
		if err != nil {
			return nil, fmt.Errorf("exercise %d instructions: %w", ei+1, err)
		}
		for ii, im := range instsAny {
			inst := &types.Instruction{
				ID:         uuid.New(),
				ExerciseID: ex.ID,
				Title:      strFromAny(im["title"]),
				Content:    normalization.NormalizeGeneratedHTML(strFromAny(im["content"])),
				Position:   ii + 1,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if _, err := s.instructionRepo.Create(ctx, tx, []*types.Instruction{inst}); err != nil {
				return nil, fmt.Errorf("create instruction %d.%d: %w", ei+1, ii+1, err)
			}

			if code := normalization.StripCodeFence(strFromAny(im["answer_code"])); code != "" {
				ans := &types.InstructionAnswer{
					ID:            uuid.New(),
					InstructionID: inst.ID,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				ans.SetCode(codeType, code)
				if _, err := s.answerRepo.Create(ctx, tx, []*types.InstructionAnswer{ans}); err != nil {
					return nil, fmt.Errorf("create answer %d.%d: %w", ei+1, ii+1, err)
				}
				inst.Answer = ans
			}
			ex.Instructions = append(ex.Instructions, inst)
		}
		lesson.Exercises = append(lesson.Exercises, ex)
	}
	return lesson, nil
}

// ---- quiz ----

type quizGenerator struct{}

func (quizGenerator) generate(ctx context.Context, s *contentGenerationService, params GenerateParams) (map[string]any, error) {
	return s.generateTree(ctx, prompts.PromptQuizTree, params)
}

func (quizGenerator) persist(ctx context.Context, s *contentGenerationService, tx *gorm.DB, tree map[string]any, params GenerateParams) (any, error) {
	now := time.Now()
	quiz := &types.Quiz{
		ID:          uuid.New(),
		ModuleID:    params.ModuleID,
		CreatorID:   params.UserID,
		Title:       strFromAny(tree["title"]),
		Description: strFromAny(tree["description"]),
		Position:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if quiz.Title == "" {
		return nil, fmt.Errorf("generated quiz missing title")
	}
	if params.ModuleID != nil {
		pos, err := s.quizRepo.NextPosition(ctx, tx, *params.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("quiz position: %w", err)
		}
		quiz.Position = pos
	}
	if _, err := s.quizRepo.Create(ctx, tx, []*types.Quiz{quiz}); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	qsAny, err := sliceOfMaps(tree["questions"])
	if err != nil {
		return nil, fmt.Errorf("quiz questions: %w", err)
	}
	for qi, qm := range qsAny {
		question := &types.QuizQuestion{
			ID:          uuid.New(),
			QuizID:      quiz.ID,
			Text:        strFromAny(qm["text"]),
			Explanation: strFromAny(qm["explanation"]),
			Position:    qi + 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ansAny, err := sliceOfMaps(qm["answers"])
		if err != nil {
			return nil, fmt.Errorf("question %d answers: %w", qi+1, err)
		}
		if len(ansAny) != 4 {
			return nil, fmt.Errorf("question %d: expected 4 answers, got %d", qi+1, len(ansAny))
		}
		answers := make([]*types.QuizAnswer, 0, 4)
		correct := 0
		for _, am := range ansAny {
			a := &types.QuizAnswer{
				ID:         uuid.New(),
				QuestionID: question.ID,
				Text:       strFromAny(am["text"]),
				IsCorrect:  boolFromAny(am["is_correct"]),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if a.IsCorrect {
				correct++
			}
			answers = append(answers, a)
		}
		if correct == 0 {
			return nil, fmt.Errorf("question %d: no correct answer", qi+1)
		}

		if _, err := s.questionRepo.Create(ctx, tx, []*types.QuizQuestion{question}); err != nil {
			return nil, fmt.Errorf("create question %d: %w", qi+1, err)
		}
		if _, err := s.quizAnswerRepo.Create(ctx, tx, answers); err != nil {
			return nil, fmt.Errorf("create answers for question %d: %w", qi+1, err)
		}
		question.Answers = answers
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

// ---- project ----

type projectGenerator struct{}

func (projectGenerator) generate(ctx context.Context, s *contentGenerationService, params GenerateParams) (map[string]any, error) {
	return s.generateTree(ctx, prompts.PromptProjectTree, params)
}

func (projectGenerator) persist(ctx context.Context, s *contentGenerationService, tx *gorm.DB, tree map[string]any, params GenerateParams) (any, error) {
	now := time.Now()
	project := &types.Project{
		ID:          uuid.New(),
		ModuleID:    params.ModuleID,
		CreatorID:   params.UserID,
		Title:       strFromAny(tree["title"]),
		Description: strFromAny(tree["description"]),
		Brief:       normalization.NormalizeGeneratedHTML(strFromAny(tree["brief"])),
		Position:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if project.Title == "" {
		return nil, fmt.Errorf("generated project missing title")
	}
	if params.ModuleID != nil {
		pos, err := s.projectRepo.NextPosition(ctx, tx, *params.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("project position: %w", err)
		}
		project.Position = pos
	}
	if _, err := s.projectRepo.Create(ctx, tx, []*types.Project{project}); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	tasksAny, err := sliceOfMaps(tree["tasks"])
	if err != nil {
		return nil, fmt.Errorf("project tasks: %w", err)
	}
	for ti, tm := range tasksAny {
		taskType := types.TaskType(strFromAny(tm["task_type"]))
		if !taskType.Valid() {
			return nil, fmt.Errorf("task %d: invalid task type %q", ti+1, taskType)
		}
		codeType := types.CodeType(strFromAny(tm["code_type"]))
		if !codeType.Valid() {
			return nil, fmt.Errorf("task %d: invalid code type %q", ti+1, codeType)
		}
		task := &types.ProjectTask{
			ID:            uuid.New(),
			ProjectID:     project.ID,
			Title:         strFromAny(tm["title"]),
			Description:   normalization.NormalizeGeneratedHTML(strFromAny(tm["description"])),
			TaskType:      taskType,
			CodeType:      codeType,
			StarterHTML:   strFromAny(tm["starter_html"]),
			StarterCSS:    strFromAny(tm["starter_css"]),
			StarterJS:     strFromAny(tm["starter_js"]),
			StarterPython: strFromAny(tm["starter_python"]),
			Position:      ti + 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := s.taskRepo.Create(ctx, tx, []*types.ProjectTask{task}); err != nil {
			return nil, fmt.Errorf("create task %d: %w", ti+1, err)
		}

		instsAny, err := sliceOfMaps(tm["instructions"])
		if err != nil {
			return nil, fmt.Errorf("task %d instructions: %w", ti+1, err)
		}
		for ii, im := range instsAny {
			inst := &types.TaskInstruction{
				ID:        uuid.New(),
				TaskID:    task.ID,
				Title:     strFromAny(im["title"]),
				Content:   normalization.NormalizeGeneratedHTML(strFromAny(im["content"])),
				Position:  ii + 1,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := s.taskInstRepo.Create(ctx, tx, []*types.TaskInstruction{inst}); err != nil {
				return nil, fmt.Errorf("create task instruction %d.%d: %w", ti+1, ii+1, err)
			}

			if code := normalization.StripCodeFence(strFromAny(im["answer_code"])); code != "" {
				ans := &types.TaskInstructionAnswer{
					ID:                uuid.New(),
					TaskInstructionID: inst.ID,
					CreatedAt:         now,
					UpdatedAt:         now,
				}
				ans.SetCode(codeType, code)
				if _, err := s.taskAnswerRepo.Create(ctx, tx, []*types.TaskInstructionAnswer{ans}); err != nil {
					return nil, fmt.Errorf("create task answer %d.%d: %w", ti+1, ii+1, err)
				}
				inst.Answer = ans
			}
			task.Instructions = append(task.Instructions, inst)
		}
		project.Tasks = append(project.Tasks, task)
	}
	return project, nil
}

// ---- coercion helpers ----

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}

func strFromAny(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func boolFromAny(v any) bool {
	b, _ := v.(bool)
	return b
}

func sliceOfMaps(v any) ([]map[string]any, error) {
	if v == nil {
		return nil, fmt.Errorf("missing array")
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]map[string]any, 0, len(arr))
	for i, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d: expected object, got %T", i, item)
		}
		out = append(out, m)
	}
	return out, nil
}
