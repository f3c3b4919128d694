package generator

import (
	"fmt"
	"strings"

	contentSvc "carelearn/internal/domain/services/content"
)

const instructions = `You write structured training content for care workers.
Reply with a single JSON object and nothing else. The object has a "sections"
array. Each section has "title", "content" (simple HTML: p, ul, ol, li, strong,
em, h3) and optional "media" and "subsections" arrays. Subsections have
"title", "content" and optional "media", and never contain subsections.
Media items have "type" ("video" or "document"), a "title", and for videos a
"url" on youtube.com or vimeo.com. Only suggest videos you are confident exist.`

// buildPrompt renders the single user message sent to the provider.
func buildPrompt(req *contentSvc.GenerateRequest) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Lesson title: %s\n", req.Title)
	if req.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", req.Category)
	}
	if req.Context != "" {
		fmt.Fprintf(&b, "Additional context:\n%s\n", req.Context)
	}
	return b.String()
}
