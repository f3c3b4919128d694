package handler

import "net/http"

// NewRouter registers every API route (Go 1.22+ method patterns).
func NewRouter(lessons *LessonHandler, render *RenderHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthCheck)

	mux.HandleFunc("GET /api/lessons", lessons.ListLessons)
	mux.HandleFunc("POST /api/lessons", lessons.CreateLesson)
	mux.HandleFunc("GET /api/lessons/{id}", lessons.GetLesson)
	mux.HandleFunc("PUT /api/lessons/{id}/content", lessons.UpdateContent)
	mux.HandleFunc("POST /api/lessons/{id}/generate", lessons.GenerateContent)
	mux.HandleFunc("GET /api/lessons/{id}/render", lessons.RenderLesson)
	mux.HandleFunc("DELETE /api/lessons/{id}", lessons.DeleteLesson)

	mux.HandleFunc("POST /api/render/embed", render.ResolveEmbed)

	return mux
}
