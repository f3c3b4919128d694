package generator

import (
	"context"
	"encoding/json"
	"html"
	"strings"
)

// sampleCompleter turns the prose of an offline provider into a document in
// the JSON shape the generator expects, so local development can exercise the
// whole generate path without an API key.
type sampleCompleter struct {
	prose completer
}

func (c *sampleCompleter) Name() string { return c.prose.Name() }

func (c *sampleCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	reply, err := c.prose.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	paragraphs := splitParagraphs(reply)
	if len(paragraphs) == 0 {
		paragraphs = []string{"Sample content."}
	}

	type block struct {
		Title       string  `json:"title"`
		Content     string  `json:"content"`
		Subsections []block `json:"subsections,omitempty"`
	}

	section := block{Title: promptTitle(prompt), Content: htmlParagraphs(paragraphs[:1])}
	if rest := paragraphs[1:]; len(rest) > 0 {
		section.Subsections = []block{{Title: "Key points", Content: htmlParagraphs(rest)}}
	}

	out, err := json.Marshal(map[string][]block{"sections": {section}})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// promptTitle returns the lesson title line of a prompt built by buildPrompt.
func promptTitle(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if title, ok := strings.CutPrefix(line, "Lesson title: "); ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
	}
	return "Overview"
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func htmlParagraphs(paragraphs []string) string {
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>")
	}
	return b.String()
}
