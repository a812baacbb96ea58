package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillforge/skillforge-backend/internal/services"
)

type TheoryHandler struct {
	theoryService  services.TheoryService
	contentService services.ExerciseContentService
}

func NewTheoryHandler(theoryService services.TheoryService, contentService services.ExerciseContentService) *TheoryHandler {
	return &TheoryHandler{theoryService: theoryService, contentService: contentService}
}

// ListForLesson handles GET /api/lessons/:id/theory-variations.
func (h *TheoryHandler) ListForLesson(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}
	variations, err := h.theoryService.ListVariations(c.Request.Context(), userID, lessonID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"variations": variations})
}

func (h *TheoryHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	variation, err := h.theoryService.GetVariation(c.Request.Context(), userID, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"variation": variation})
}

func (h *TheoryHandler) Patch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	if err := h.theoryService.UpdateVariation(c.Request.Context(), userID, id, fields); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (h *TheoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.theoryService.DeleteVariation(c.Request.Context(), userID, id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

// Activate handles POST /api/theory-variations/:id/activate: the named
// variation becomes the single active one for its lesson.
func (h *TheoryHandler) Activate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	variation, err := h.theoryService.GetVariation(c.Request.Context(), userID, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := h.contentService.SetActiveTheoryVariation(c.Request.Context(), userID, variation.LessonID, id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
