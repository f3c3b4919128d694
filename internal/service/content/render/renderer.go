package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"

	models "carelearn/internal/domain/models/content"
	contentSvc "carelearn/internal/domain/services/content"
)

// EmbedResolver maps video links to embeddable player URLs and vouches for
// the hosts those URLs point at.
type EmbedResolver interface {
	contentSvc.EmbedResolver
	AllowedEmbedHost(embedURL string) bool
}

// HTMLRenderer turns a structured document into sanitized HTML with one
// gallery per media type for every section and subsection.
//
// It never rejects a document: media missing their source field, videos
// with unusable links and items whose storage path cannot be resolved are
// dropped from the gallery while their siblings still render.
type HTMLRenderer struct {
	sanitizer contentSvc.Sanitizer
	allow     []string
	embeds    EmbedResolver
	storage   contentSvc.StorageResolver
	logger    *slog.Logger
}

// NewHTMLRenderer creates a renderer that sanitizes block content against allow.
func NewHTMLRenderer(
	sanitizer contentSvc.Sanitizer,
	allow []string,
	embeds EmbedResolver,
	storage contentSvc.StorageResolver,
	logger *slog.Logger,
) *HTMLRenderer {
	return &HTMLRenderer{
		sanitizer: sanitizer,
		allow:     allow,
		embeds:    embeds,
		storage:   storage,
		logger:    logger,
	}
}

type blockView struct {
	Title     string
	Sub       bool
	Content   template.HTML
	Images    []contentSvc.RenderedMedia
	Videos    []contentSvc.RenderedMedia
	Documents []contentSvc.RenderedMedia
}

type sectionView struct {
	ID          string
	Block       template.HTML
	Subsections []template.HTML
}

// RenderDocument renders every block of doc. A nil document renders as an
// empty article.
func (r *HTMLRenderer) RenderDocument(ctx context.Context, doc *models.Document) (*contentSvc.RenderedDocument, error) {
	out := &contentSvc.RenderedDocument{Sections: []contentSvc.RenderedSection{}}
	var sectionsHTML []template.HTML

	if doc != nil {
		for _, section := range doc.Sections {
			block, err := r.renderBlock(ctx, section, false)
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", section.ID, err)
			}

			rendered := contentSvc.RenderedSection{
				ID:            section.ID,
				RenderedBlock: block,
				Subsections:   make([]contentSvc.RenderedBlock, 0, len(section.Subsections)),
			}
			view := sectionView{ID: section.ID, Block: template.HTML(block.HTML)}

			for i, sub := range section.Subsections {
				subBlock, err := r.renderBlock(ctx, sub, true)
				if err != nil {
					return nil, fmt.Errorf("section %s subsection %d: %w", section.ID, i, err)
				}
				rendered.Subsections = append(rendered.Subsections, subBlock)
				view.Subsections = append(view.Subsections, template.HTML(subBlock.HTML))
			}

			html, err := execute(sectionTemplate, view)
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", section.ID, err)
			}
			sectionsHTML = append(sectionsHTML, template.HTML(html))
			out.Sections = append(out.Sections, rendered)
		}
	}

	html, err := execute(documentTemplate, sectionsHTML)
	if err != nil {
		return nil, err
	}
	out.HTML = html
	return out, nil
}

// RenderHTML returns only the assembled article fragment.
func (r *HTMLRenderer) RenderHTML(ctx context.Context, doc *models.Document) (string, error) {
	rendered, err := r.RenderDocument(ctx, doc)
	if err != nil {
		return "", err
	}
	return rendered.HTML, nil
}

func (r *HTMLRenderer) renderBlock(ctx context.Context, b models.Block, sub bool) (contentSvc.RenderedBlock, error) {
	images, videos, documents := r.assembleMedia(ctx, b.BlockMedia())

	content := r.sanitizer.Sanitize(b.BlockContent(), r.allow)
	html, err := execute(blockTemplate, blockView{
		Title:     b.BlockTitle(),
		Sub:       sub,
		Content:   template.HTML(content), // sanitized above
		Images:    images,
		Videos:    videos,
		Documents: documents,
	})
	if err != nil {
		return contentSvc.RenderedBlock{}, err
	}

	return contentSvc.RenderedBlock{
		Title:       b.BlockTitle(),
		ContentHTML: content,
		Images:      images,
		Videos:      videos,
		Documents:   documents,
		HTML:        html,
	}, nil
}

// assembleMedia partitions items by type, resolving each to the URL it is
// displayed from. Order within a type follows the input.
func (r *HTMLRenderer) assembleMedia(ctx context.Context, items []models.MediaItem) (images, videos, documents []contentSvc.RenderedMedia) {
	images = []contentSvc.RenderedMedia{}
	videos = []contentSvc.RenderedMedia{}
	documents = []contentSvc.RenderedMedia{}

	for _, item := range items {
		if !item.HasSource() {
			continue
		}

		switch item.Type {
		case models.MediaTypeImage, models.MediaTypeDocument:
			resolved, err := r.storage.Resolve(ctx, item.Path)
			if err != nil {
				r.logger.Warn("skipping media with unresolvable path",
					"type", item.Type,
					"path", item.Path,
					"error", err,
				)
				continue
			}
			media := contentSvc.RenderedMedia{
				Type:      item.Type,
				URL:       resolved,
				Label:     item.Label(),
				Suggested: item.Suggested,
			}
			if item.Type == models.MediaTypeImage {
				images = append(images, media)
			} else {
				documents = append(documents, media)
			}

		case models.MediaTypeVideo:
			media := contentSvc.RenderedMedia{
				Type:      item.Type,
				URL:       item.URL,
				Label:     item.Label(),
				Suggested: item.Suggested,
			}
			if embedURL, ok := r.embeds.Resolve(item.URL); ok && r.embeds.AllowedEmbedHost(embedURL) {
				media.EmbedURL = embedURL
			} else if isWebLink(item.URL) {
				media.LinkURL = item.URL
			} else {
				r.logger.Debug("skipping video with non-web link", "url", item.URL)
				continue
			}
			videos = append(videos, media)
		}
	}
	return images, videos, documents
}

func isWebLink(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
