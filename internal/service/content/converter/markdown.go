package converter

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	models "carelearn/internal/domain/models/content"
	contentSvc "carelearn/internal/domain/services/content"
	"carelearn/internal/service/content/metadata"
)

// markdownConverter wraps legacy markdown into a single-section document.
//
// goldmark runs without html.WithUnsafe, so dangerous link destinations
// (javascript:, vbscript:, file:, non-image data:) are blanked. Raw HTML in the
// source is written back escaped instead of omitted so nothing the author
// typed disappears.
type markdownConverter struct {
	engine goldmark.Markdown
}

// NewMarkdownConverter creates the legacy text → structured converter.
func NewMarkdownConverter() contentSvc.LegacyConverter {
	return &markdownConverter{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				renderer.WithNodeRenderers(util.Prioritized(&escapedHTMLRenderer{}, 100)),
			),
		),
	}
}

// Convert never fails. The whole text, including any leading "---" block,
// becomes the body of one section titled DefaultSectionTitle. Empty input
// produces a section whose content is an empty paragraph.
func (c *markdownConverter) Convert(legacy string) *models.Document {
	doc := &models.Document{
		Sections: []models.Section{models.NewSection(models.DefaultSectionTitle, c.toHTML(legacy))},
	}
	metadata.Stamp(doc)
	return doc
}

func (c *markdownConverter) toHTML(body string) string {
	if strings.TrimSpace(body) == "" {
		return models.EmptyContent
	}

	var buf bytes.Buffer
	if err := c.engine.Convert([]byte(body), &buf); err != nil {
		return "<p>" + html.EscapeString(body) + "</p>"
	}

	out := strings.TrimSpace(buf.String())
	if out == "" {
		return models.EmptyContent
	}
	return out
}

// escapedHTMLRenderer overrides goldmark's raw HTML handling: block and inline
// HTML is emitted as escaped text.
type escapedHTMLRenderer struct{}

func (r *escapedHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
}

func (r *escapedHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.HTMLBlock)
	if entering {
		_, _ = w.WriteString("<p>")
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			_, _ = w.Write(util.EscapeHTML(line.Value(source)))
		}
		return ast.WalkContinue, nil
	}
	if n.HasClosure() {
		_, _ = w.Write(util.EscapeHTML(n.ClosureLine.Value(source)))
	}
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}

func (r *escapedHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		_, _ = w.Write(util.EscapeHTML(segment.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}
