// Package generator produces lesson documents with an LLM. The model is asked
// for JSON; the reply is checked against an embedded JSON schema before it is
// decoded into a document.
package generator

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"carelearn/internal/domain"
	models "carelearn/internal/domain/models/content"
	contentSvc "carelearn/internal/domain/services/content"
	"carelearn/internal/service/content/metadata"
)

//go:embed config/document.schema.json
var schemaFiles embed.FS

const schemaName = "document.schema.json"

// Generator implements contentSvc.Generator on top of an LLM provider.
type Generator struct {
	llm    completer
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewGenerator creates a generator that calls provider with model. The
// offline lorem provider only writes prose, so its replies are wrapped into a
// sample document.
func NewGenerator(provider llmprovider.Provider, model string, logger *slog.Logger) (*Generator, error) {
	var llm completer = &providerAdapter{provider: provider, model: model}
	if provider.Name().String() == "lorem" {
		llm = &sampleCompleter{prose: llm}
	}
	return newGenerator(llm, logger)
}

func newGenerator(llm completer, logger *slog.Logger) (*Generator, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Generator{llm: llm, schema: schema, logger: logger}, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	data, err := schemaFiles.ReadFile("config/" + schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to read document schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaName, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to load document schema: %w", err)
	}
	return compiler.Compile(schemaName)
}

// Generate asks the model for a document. Every failure (provider error,
// unparseable or schema-invalid reply) wraps domain.ErrGenerationFailed.
// Media in the result is marked as suggested.
func (g *Generator) Generate(ctx context.Context, req *contentSvc.GenerateRequest) (*models.Document, error) {
	if req == nil || strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: a title is required", domain.ErrGenerationFailed)
	}

	reply, err := g.llm.Complete(ctx, buildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("%w: provider %s: %v", domain.ErrGenerationFailed, g.llm.Name(), err)
	}

	doc, err := g.parse(reply)
	if err != nil {
		g.logger.Warn("discarding generated document",
			"provider", g.llm.Name(),
			"title", req.Title,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	g.logger.Debug("document generated",
		"provider", g.llm.Name(),
		"sections", doc.Metadata.SectionCount,
	)
	return doc, nil
}

// parse extracts, validates and decodes the JSON object in reply.
func (g *Generator) parse(reply string) (*models.Document, error) {
	payload, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}

	var value interface{}
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	if err := g.schema.Validate(value); err != nil {
		return nil, schemaError(err)
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	out := doc.Clone()
	for i := range out.Sections {
		section := &out.Sections[i]
		if strings.TrimSpace(section.ID) == "" {
			section.ID = models.NewSectionID()
		}
		markSuggested(section.Media)
		for j := range section.Subsections {
			markSuggested(section.Subsections[j].Media)
		}
	}
	metadata.Stamp(out)
	return out, nil
}

func markSuggested(items []models.MediaItem) {
	for i := range items {
		items[i].Suggested = true
	}
}

// extractJSON returns the outermost JSON object in text, dropping markdown
// code fences and any prose around it.
func extractJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end < start {
		return "", errors.New("reply contains no JSON object")
	}
	return trimmed[start : end+1], nil
}

func schemaError(err error) error {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("reply does not match the document schema: %w", err)
	}

	var problems []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := node.InstanceLocation
			if location == "" {
				location = "/"
			}
			problems = append(problems, location+": "+node.Message)
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)

	return fmt.Errorf("reply does not match the document schema: %s", strings.Join(problems, "; "))
}
