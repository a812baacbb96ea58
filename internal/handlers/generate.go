package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/services"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type GenerateHandler struct {
	generation services.ContentGenerationService
	content    services.ExerciseContentService
}

func NewGenerateHandler(generation services.ContentGenerationService, content services.ExerciseContentService) *GenerateHandler {
	return &GenerateHandler{generation: generation, content: content}
}

// Generate handles POST /api/generate: schema-constrained generation of a
// full content tree, persisted before the response returns.
func (gh *GenerateHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Type     string                   `json:"type"`
		Prompt   string                   `json:"prompt"`
		Options  services.GenerateOptions `json:"options"`
		ModuleID *uuid.UUID               `json:"moduleId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	kind := services.ContentKind(req.Type)
	switch kind {
	case services.KindSkillPath, services.KindLesson, services.KindQuiz, services.KindProject:
	default:
		RespondError(c, http.StatusBadRequest, "bad_type", errors.New("unknown content type"))
		return
	}
	if req.Prompt == "" {
		RespondError(c, http.StatusBadRequest, "bad_prompt", errors.New("prompt required"))
		return
	}

	result, err := gh.generation.Generate(c.Request.Context(), services.GenerateParams{
		Kind:     kind,
		Topic:    req.Prompt,
		Options:  req.Options,
		ModuleID: req.ModuleID,
		UserID:   userID,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "content": result.Content, "raw": result.Raw})
}

// GenerateExerciseContent handles POST /api/generate/exercise-content.
func (gh *GenerateHandler) GenerateExerciseContent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		ExerciseID   uuid.UUID `json:"exerciseId"`
		CodeType     string    `json:"codeType"`
		Style        string    `json:"style"`
		CustomPrompt string    `json:"customPrompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ExerciseID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	if !types.CodeType(req.CodeType).Valid() {
		RespondError(c, http.StatusBadRequest, "bad_code_type", errors.New("invalid code type"))
		return
	}
	if !types.CodeStyle(req.Style).Valid() && !types.TheoryStyle(req.Style).Valid() {
		RespondError(c, http.StatusBadRequest, "bad_style", errors.New("invalid style"))
		return
	}

	content, err := gh.content.GenerateExerciseContent(c.Request.Context(), userID, req.ExerciseID, types.CodeType(req.CodeType), req.Style, req.CustomPrompt)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "content": content, "exerciseId": req.ExerciseID})
}

// GenerateAllAnswers handles POST /api/generate/all-answers: one model call
// producing a solution per instruction of the exercise.
func (gh *GenerateHandler) GenerateAllAnswers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		ExerciseID uuid.UUID `json:"exerciseId"`
		CodeType   string    `json:"codeType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ExerciseID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}

	refs, err := gh.content.GenerateAllAnswers(c.Request.Context(), userID, req.ExerciseID, types.CodeType(req.CodeType))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "message": "answers generated", "answers": refs})
}

// GenerateTheoryVariation handles POST /api/generate/theory-variation.
func (gh *GenerateHandler) GenerateTheoryVariation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		LessonID   uuid.UUID  `json:"lessonId"`
		ExerciseID *uuid.UUID `json:"exerciseId"`
		Style      string     `json:"style"`
		Title      string     `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.LessonID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	if !types.TheoryStyle(req.Style).Valid() {
		RespondError(c, http.StatusBadRequest, "bad_style", errors.New("invalid theory style"))
		return
	}

	variation, err := gh.content.CreateTheoryVariation(c.Request.Context(), userID, req.LessonID, req.ExerciseID, types.TheoryStyle(req.Style), req.Title)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "variation": gin.H{
		"id":    variation.ID,
		"title": variation.Title,
		"style": variation.Style,
	}})
}
