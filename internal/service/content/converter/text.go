package converter

import (
	"log/slog"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	models "carelearn/internal/domain/models/content"
	contentSvc "carelearn/internal/domain/services/content"
)

// blockElements get a line break after them when flattening so paragraphs and
// list items do not run together.
const blockElements = "p,div,br,li,ul,ol,h1,h2,h3,h4,h5,h6,blockquote,pre,tr,table,hr,section,article"

// textExtractor flattens a document for rollback to the legacy column.
// Media, captions and formatting are dropped.
type textExtractor struct {
	markdown *md.Converter // nil = plain text
	logger   *slog.Logger
}

// NewTextExtractor creates an extractor that strips all tags.
func NewTextExtractor(logger *slog.Logger) contentSvc.TextExtractor {
	return &textExtractor{logger: logger}
}

// NewMarkdownExtractor creates an extractor that converts each block's HTML
// back to markdown, keeping emphasis, lists and links. Media is still dropped.
func NewMarkdownExtractor(logger *slog.Logger) contentSvc.TextExtractor {
	return &textExtractor{
		markdown: md.NewConverter("", true, nil),
		logger:   logger,
	}
}

// Extract emits "# title" + body per section and "## title" + body per
// subsection, blocks separated by a blank line.
func (e *textExtractor) Extract(doc *models.Document) string {
	if doc == nil {
		return ""
	}

	var parts []string
	for _, section := range doc.Sections {
		parts = append(parts, e.block("#", section))
		for _, sub := range section.Subsections {
			parts = append(parts, e.block("##", sub))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (e *textExtractor) block(marker string, b models.Block) string {
	heading := strings.TrimSpace(marker + " " + strings.TrimSpace(b.BlockTitle()))
	body := e.body(b.BlockContent())
	if body == "" {
		return heading
	}
	return heading + "\n\n" + body
}

func (e *textExtractor) body(content string) string {
	if e.markdown != nil {
		out, err := e.markdown.ConvertString(content)
		if err == nil {
			return strings.TrimSpace(out)
		}
		e.logger.Warn("markdown extraction failed, falling back to plain text", "error", err)
	}
	return StripTags(content)
}

// StripTags returns the text of an HTML fragment. script and style bodies
// are discarded; whitespace is collapsed per line and blank lines removed.
func StripTags(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("script,style").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
