package content

import (
	"context"

	models "carelearn/internal/domain/models/content"
)

// GenerateRequest describes what the generation capability should write.
type GenerateRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Context  string `json:"context,omitempty"`
}

// Generator produces a complete document, or fails.
// Failures wrap domain.ErrGenerationFailed.
type Generator interface {
	Generate(ctx context.Context, req *GenerateRequest) (*models.Document, error)
}
