package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carelearn/internal/domain"
	models "carelearn/internal/domain/models/content"
	contentSvc "carelearn/internal/domain/services/content"
	"carelearn/internal/httputil"
	"carelearn/internal/service/content/embed"
)

// stubLessonService records the last call and returns err when set.
type stubLessonService struct {
	lesson   *models.Lesson
	err      error
	created  *contentSvc.CreateLessonRequest
	updated  *contentSvc.UpdateContentRequest
	generate *contentSvc.GenerateContentRequest
	kind     models.Kind
	deleted  string
}

func (s *stubLessonService) CreateLesson(ctx context.Context, req *contentSvc.CreateLessonRequest) (*models.Lesson, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Lesson{ID: "l-1", Kind: req.Kind, OwnerID: req.OwnerID, Title: req.Title, Content: models.NewEmptyDocument()}, nil
}

func (s *stubLessonService) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.lesson, nil
}

func (s *stubLessonService) ListLessons(ctx context.Context, kind models.Kind) ([]models.Lesson, error) {
	s.kind = kind
	if s.err != nil {
		return nil, s.err
	}
	return []models.Lesson{*s.lesson}, nil
}

func (s *stubLessonService) UpdateContent(ctx context.Context, id string, req *contentSvc.UpdateContentRequest) (*models.Lesson, error) {
	s.updated = req
	if s.err != nil {
		return nil, s.err
	}
	return s.lesson, nil
}

func (s *stubLessonService) GenerateContent(ctx context.Context, id string, req *contentSvc.GenerateContentRequest) (*models.Lesson, error) {
	s.generate = req
	if s.err != nil {
		return nil, s.err
	}
	return s.lesson, nil
}

func (s *stubLessonService) RenderLesson(ctx context.Context, id string) (*contentSvc.RenderedDocument, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &contentSvc.RenderedDocument{HTML: `<article class="lesson-content"></article>`}, nil
}

func (s *stubLessonService) DeleteLesson(ctx context.Context, id string) error {
	s.deleted = id
	return s.err
}

func newTestRouter(t *testing.T, svc contentSvc.LessonService) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	embeds, err := embed.NewDefaultResolver()
	if err != nil {
		t.Fatalf("NewDefaultResolver() error = %v", err)
	}
	mux := NewRouter(NewLessonHandler(svc, logger), NewRenderHandler(embeds, logger))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, httputil.WithUserID(r, "staff-1"))
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestLessonHandler_CreateLesson(t *testing.T) {
	svc := &stubLessonService{}
	h := newTestRouter(t, svc)

	rec := do(t, h, http.MethodPost, "/api/lessons", `{"kind":"lesson","title":"Hand hygiene"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if svc.created.OwnerID != "staff-1" {
		t.Errorf("owner = %q, want the authenticated user", svc.created.OwnerID)
	}

	var lesson models.Lesson
	if err := json.Unmarshal(rec.Body.Bytes(), &lesson); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lesson.Content == nil || len(lesson.Content.Sections) != 1 {
		t.Errorf("content = %+v", lesson.Content)
	}
	if strings.Contains(rec.Body.String(), "legacy") {
		t.Errorf("legacy text leaked into response: %s", rec.Body)
	}

	if rec := do(t, h, http.MethodPost, "/api/lessons", `{"kind":`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestLessonHandler_ListLessons(t *testing.T) {
	svc := &stubLessonService{lesson: &models.Lesson{ID: "l-1"}}
	h := newTestRouter(t, svc)

	rec := do(t, h, http.MethodGet, "/api/lessons?kind=session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.kind != models.KindSession {
		t.Errorf("kind = %q, want session", svc.kind)
	}
}

func TestLessonHandler_UpdateContent(t *testing.T) {
	svc := &stubLessonService{lesson: &models.Lesson{ID: "l-1"}}
	h := newTestRouter(t, svc)

	body := `{"content":{"sections":[{"id":"s1","title":"A","content":"<p>x</p>","media":[],"subsections":[]}],"metadata":{"section_count":99}}}`
	rec := do(t, h, http.MethodPut, "/api/lessons/l-1/content", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if svc.updated.Content == nil || svc.updated.Content.Sections[0].ID != "s1" {
		t.Errorf("content passed to service = %+v", svc.updated.Content)
	}
}

func TestLessonHandler_GenerateContent(t *testing.T) {
	svc := &stubLessonService{lesson: &models.Lesson{ID: "l-1"}}
	h := newTestRouter(t, svc)

	if rec := do(t, h, http.MethodPost, "/api/lessons/l-1/generate", ""); rec.Code != http.StatusOK {
		t.Fatalf("empty body status = %d", rec.Code)
	}

	if rec := do(t, h, http.MethodPost, "/api/lessons/l-1/generate", `{"context":"night shift"}`); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.generate.Context != "night shift" {
		t.Errorf("context = %q", svc.generate.Context)
	}
}

func TestLessonHandler_RenderAndDelete(t *testing.T) {
	svc := &stubLessonService{lesson: &models.Lesson{ID: "l-1"}}
	h := newTestRouter(t, svc)

	rec := do(t, h, http.MethodGet, "/api/lessons/l-1/render", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "lesson-content") {
		t.Errorf("render status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodDelete, "/api/lessons/l-1", "")
	if rec.Code != http.StatusNoContent || svc.deleted != "l-1" {
		t.Errorf("delete status = %d, deleted = %q", rec.Code, svc.deleted)
	}
}

func TestLessonHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", &domain.NotFoundError{ResourceType: "lesson", ResourceID: "x"}, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest},
		{"validation fields", &domain.ValidationError{Message: "bad", Fields: map[string]string{"sections": "cannot be blank"}}, http.StatusBadRequest},
		{"generation", fmt.Errorf("%w: provider timeout", domain.ErrGenerationFailed), http.StatusBadGateway},
		{"transition", &domain.TransitionError{LessonID: "x", From: "pending", To: "finalized"}, http.StatusConflict},
		{"conflict", domain.ErrConflict, http.StatusConflict},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &stubLessonService{err: tt.err})
			rec := do(t, h, http.MethodGet, "/api/lessons/x", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "connection reset") {
				t.Error("internal error detail leaked to the client")
			}
		})
	}
}

func TestLessonHandler_ValidationFields(t *testing.T) {
	h := newTestRouter(t, &stubLessonService{err: &domain.ValidationError{
		Message: "sections.0.id: cannot be blank",
		Fields:  map[string]string{"sections.0.id": "cannot be blank"},
	}})

	rec := do(t, h, http.MethodPut, "/api/lessons/x/content", `{"content":{"sections":[]}}`)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["sections.0.id"] != "cannot be blank" {
		t.Errorf("fields = %v", body.Fields)
	}
}

func TestRenderHandler_ResolveEmbed(t *testing.T) {
	h := newTestRouter(t, &stubLessonService{})

	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantResolved bool
		wantURL      string
	}{
		{"youtube", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`, http.StatusOK, true, "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"unknown host", `{"url":"https://example.com/video.mp4"}`, http.StatusOK, false, ""},
		{"missing url", `{}`, http.StatusBadRequest, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/render/embed", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got embedResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Resolved != tt.wantResolved || got.EmbedURL != tt.wantURL {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, newTestRouter(t, &stubLessonService{}), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body)
	}
}
