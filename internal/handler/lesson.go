package handler

import (
	"log/slog"
	"net/http"

	models "carelearn/internal/domain/models/content"
	contentSvc "carelearn/internal/domain/services/content"
	"carelearn/internal/httputil"
)

// LessonHandler serves lessons and session snapshots.
type LessonHandler struct {
	lessonService contentSvc.LessonService
	logger        *slog.Logger
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(lessonService contentSvc.LessonService, logger *slog.Logger) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		logger:        logger,
	}
}

// ListLessons lists lessons, optionally of one kind
// GET /api/lessons?kind=lesson|session
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	kind := models.Kind(r.URL.Query().Get("kind"))

	lessons, err := h.lessonService.ListLessons(r.Context(), kind)
	if err != nil {
		h.fail(w, r, "list lessons", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lessons)
}

// CreateLesson creates a lesson. Without content it starts from one empty section.
// POST /api/lessons
func (h *LessonHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req contentSvc.CreateLessonRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	lesson, err := h.lessonService.CreateLesson(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "create lesson", err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, lesson)
}

// GetLesson
// GET /api/lessons/{id}
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	lesson, err := h.lessonService.GetLesson(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get lesson", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lesson)
}

// UpdateContent replaces the lesson's document. Client metadata is ignored.
// PUT /api/lessons/{id}/content
func (h *LessonHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req contentSvc.UpdateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	lesson, err := h.lessonService.UpdateContent(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, "update lesson content", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lesson)
}

// GenerateContent regenerates the document from the lesson title and an
// optional context string. An empty body is allowed.
// POST /api/lessons/{id}/generate
func (h *LessonHandler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req contentSvc.GenerateContentRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	lesson, err := h.lessonService.GenerateContent(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, "generate lesson content", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lesson)
}

// RenderLesson returns display-ready HTML and media galleries
// GET /api/lessons/{id}/render
func (h *LessonHandler) RenderLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rendered, err := h.lessonService.RenderLesson(r.Context(), id)
	if err != nil {
		h.fail(w, r, "render lesson", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, rendered)
}

// DeleteLesson
// DELETE /api/lessons/{id}
func (h *LessonHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.lessonService.DeleteLesson(r.Context(), id); err != nil {
		h.fail(w, r, "delete lesson", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LessonHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if isServerError(err) {
		h.logger.Error("request failed",
			"op", op,
			"path", r.URL.Path,
			"user_id", httputil.GetUserID(r),
			"error", err,
		)
	} else {
		h.logger.Debug("request rejected", "op", op, "path", r.URL.Path, "error", err)
	}
	handleError(w, err)
}
