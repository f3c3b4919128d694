package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	contentSvc "carelearn/internal/domain/services/content"
	"carelearn/internal/httputil"
)

// RenderHandler exposes render helpers that do not need a stored lesson.
type RenderHandler struct {
	embeds contentSvc.EmbedResolver
	logger *slog.Logger
}

func NewRenderHandler(embeds contentSvc.EmbedResolver, logger *slog.Logger) *RenderHandler {
	return &RenderHandler{embeds: embeds, logger: logger}
}

type embedRequest struct {
	URL string `json:"url"`
}

type embedResponse struct {
	EmbedURL string `json:"embed_url"`
	Resolved bool   `json:"resolved"`
}

// ResolveEmbed previews how a video link will be embedded. An unrecognised
// link is not an error: resolved is false and embed_url is empty.
// POST /api/render/embed
func (h *RenderHandler) ResolveEmbed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		httputil.RespondError(w, http.StatusBadRequest, "url is required")
		return
	}

	embedURL, ok := h.embeds.Resolve(raw)
	httputil.RespondJSON(w, http.StatusOK, embedResponse{EmbedURL: embedURL, Resolved: ok})
}

// HealthCheck
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
