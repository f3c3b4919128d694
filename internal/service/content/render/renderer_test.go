package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	models "carelearn/internal/domain/models/content"
	"carelearn/internal/service/content/embed"
	"carelearn/internal/service/content/sanitizer"
)

type fakeStorage struct {
	fail map[string]bool
}

func (f *fakeStorage) Resolve(ctx context.Context, path string) (string, error) {
	if f.fail[path] {
		return "", errors.New("storage unavailable")
	}
	return "https://cdn.example.com/" + path, nil
}

func newTestRenderer(t *testing.T, storage *fakeStorage) *HTMLRenderer {
	t.Helper()

	s, err := sanitizer.NewHTMLSanitizer()
	if err != nil {
		t.Fatalf("NewHTMLSanitizer() error = %v", err)
	}
	e, err := embed.NewDefaultResolver()
	if err != nil {
		t.Fatalf("NewDefaultResolver() error = %v", err)
	}
	if storage == nil {
		storage = &fakeStorage{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHTMLRenderer(s, s.DefaultAllowList(), e, storage, logger)
}

func TestHTMLRenderer_MediaGalleries(t *testing.T) {
	r := newTestRenderer(t, &fakeStorage{fail: map[string]bool{"broken.png": true}})

	doc := &models.Document{
		Sections: []models.Section{
			{
				ID:      "s1",
				Title:   "Hand hygiene",
				Content: "<p>Wash for 20 seconds.</p>",
				Media: []models.MediaItem{
					{Type: models.MediaTypeImage, Path: "steps.png", Caption: "Steps"},
					{Type: models.MediaTypeImage},
					{Type: models.MediaTypeImage, Path: "broken.png"},
					{Type: models.MediaTypeVideo, URL: "https://youtu.be/abc123", Title: "Demo"},
					{Type: models.MediaTypeVideo, URL: "https://videos.example.com/v/9"},
					{Type: models.MediaTypeVideo, URL: "javascript:alert(1)"},
					{Type: models.MediaTypeVideo},
					{Type: models.MediaTypeDocument, Path: "handout.pdf", Title: "Handout"},
					{Type: "audio", Path: "a.mp3"},
				},
			},
		},
	}

	out, err := r.RenderDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	if len(out.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(out.Sections))
	}
	s := out.Sections[0]

	if len(s.Images) != 1 || s.Images[0].URL != "https://cdn.example.com/steps.png" || s.Images[0].Label != "Steps" {
		t.Errorf("images = %+v", s.Images)
	}

	if len(s.Videos) != 2 {
		t.Fatalf("expected 2 videos, got %+v", s.Videos)
	}
	if s.Videos[0].EmbedURL != "https://www.youtube.com/embed/abc123" || s.Videos[0].LinkURL != "" {
		t.Errorf("first video should embed, got %+v", s.Videos[0])
	}
	if s.Videos[1].EmbedURL != "" || s.Videos[1].LinkURL != "https://videos.example.com/v/9" {
		t.Errorf("second video should be a link, got %+v", s.Videos[1])
	}

	if len(s.Documents) != 1 || s.Documents[0].URL != "https://cdn.example.com/handout.pdf" {
		t.Errorf("documents = %+v", s.Documents)
	}

	for _, want := range []string{
		`<iframe src="https://www.youtube.com/embed/abc123"`,
		`href="https://videos.example.com/v/9" target="_blank" rel="noopener noreferrer"`,
		`<img src="https://cdn.example.com/steps.png" alt="Steps"`,
		`<a href="https://cdn.example.com/handout.pdf" download>Handout</a>`,
	} {
		if !strings.Contains(s.HTML, want) {
			t.Errorf("block html missing %q:\n%s", want, s.HTML)
		}
	}
	if strings.Contains(s.HTML, "javascript:") {
		t.Errorf("block html contains a javascript: url:\n%s", s.HTML)
	}
	if strings.Contains(s.HTML, "broken.png") {
		t.Errorf("unresolvable image should be skipped:\n%s", s.HTML)
	}
}

func TestHTMLRenderer_SanitizesContentAndTitles(t *testing.T) {
	r := newTestRenderer(t, nil)

	doc := &models.Document{
		Sections: []models.Section{
			{
				ID:      "s1",
				Title:   "<b>Bold</b> title",
				Content: `<p onclick="x()">Hi</p><script>steal()</script><iframe src="https://evil.example"></iframe>`,
				Subsections: []models.Subsection{
					{Title: "Sub", Content: "<p>nested <span>text</span></p>"},
				},
			},
		},
	}

	out, err := r.RenderDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	s := out.Sections[0]

	if s.ContentHTML != "<p>Hi</p>" {
		t.Errorf("ContentHTML = %q, want %q", s.ContentHTML, "<p>Hi</p>")
	}
	if !strings.Contains(s.HTML, "<h2 class=\"lesson-block__title\">&lt;b&gt;Bold&lt;/b&gt; title</h2>") {
		t.Errorf("title not escaped:\n%s", s.HTML)
	}
	if len(s.Subsections) != 1 || s.Subsections[0].ContentHTML != "<p>nested text</p>" {
		t.Errorf("subsections = %+v", s.Subsections)
	}
	if !strings.Contains(s.Subsections[0].HTML, "<h3") {
		t.Errorf("subsection should use h3:\n%s", s.Subsections[0].HTML)
	}

	for _, unwanted := range []string{"<script", "evil.example", "onclick"} {
		if strings.Contains(out.HTML, unwanted) {
			t.Errorf("document html contains %q:\n%s", unwanted, out.HTML)
		}
	}
	if !strings.HasPrefix(out.HTML, `<article class="lesson-content"><section class="lesson-section" id="section-s1">`) {
		t.Errorf("unexpected document html:\n%s", out.HTML)
	}
}

func TestHTMLRenderer_EmptyDocuments(t *testing.T) {
	r := newTestRenderer(t, nil)

	html, err := r.RenderHTML(context.Background(), nil)
	if err != nil {
		t.Fatalf("RenderHTML(nil) error = %v", err)
	}
	if html != `<article class="lesson-content"></article>` {
		t.Errorf("RenderHTML(nil) = %q", html)
	}

	out, err := r.RenderDocument(context.Background(), models.NewEmptyDocument())
	if err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	s := out.Sections[0]
	if s.ContentHTML != "<p></p>" {
		t.Errorf("ContentHTML = %q", s.ContentHTML)
	}
	if s.Images == nil || s.Videos == nil || s.Documents == nil {
		t.Error("galleries should be empty lists, not nil")
	}
	if strings.Contains(s.HTML, "<h2") {
		t.Errorf("untitled section should have no heading:\n%s", s.HTML)
	}
}
