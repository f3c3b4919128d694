package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"carelearn/internal/config"
	"carelearn/internal/domain"
	models "carelearn/internal/domain/models/content"
	"carelearn/internal/service/storage"
)

var mediaTypeRule = validation.In(
	models.MediaTypeImage,
	models.MediaTypeVideo,
	models.MediaTypeDocument,
).Error("must be one of image, video, document")

// ValidateDocument checks the structural rules every persisted document obeys.
// Problems are reported per location, e.g. "sections.1.media.0.path".
func ValidateDocument(doc *models.Document) error {
	if doc == nil {
		return &domain.ValidationError{
			Message: "content is required",
			Fields:  map[string]string{"content": "cannot be blank"},
		}
	}

	fields := make(map[string]string)

	if err := validation.Validate(doc.Sections,
		validation.Required.Error("at least one section is required"),
		validation.Length(1, config.MaxSections),
	); err != nil {
		fields["sections"] = err.Error()
	}

	seen := make(map[string]int, len(doc.Sections))
	for i := range doc.Sections {
		section := &doc.Sections[i]
		prefix := fmt.Sprintf("sections.%d", i)

		collect(fields, prefix, validateSection(section))

		if section.ID != "" {
			if first, dup := seen[section.ID]; dup {
				fields[prefix+".id"] = fmt.Sprintf("duplicates the id of section %d", first)
			} else {
				seen[section.ID] = i
			}
		}

		for j := range section.Media {
			collect(fields, fmt.Sprintf("%s.media.%d", prefix, j), validateMedia(&section.Media[j]))
		}

		for j := range section.Subsections {
			sub := &section.Subsections[j]
			subPrefix := fmt.Sprintf("%s.subsections.%d", prefix, j)
			collect(fields, subPrefix, validateSubsection(sub))
			for k := range sub.Media {
				collect(fields, fmt.Sprintf("%s.media.%d", subPrefix, k), validateMedia(&sub.Media[k]))
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return newValidationError("content is invalid", fields)
}

func validateSection(s *models.Section) error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ID, validation.Required.Error("section id is required")),
		validation.Field(&s.Title, validation.RuneLength(0, config.MaxSectionTitleLength)),
		validation.Field(&s.Media, validation.Length(0, config.MaxMediaPerBlock)),
		validation.Field(&s.Subsections, validation.Length(0, config.MaxSubsections)),
	)
}

func validateSubsection(s *models.Subsection) error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Title, validation.RuneLength(0, config.MaxSectionTitleLength)),
		validation.Field(&s.Media, validation.Length(0, config.MaxMediaPerBlock)),
	)
}

// validateMedia enforces that stored files carry a path and videos carry a
// url, never both.
func validateMedia(m *models.MediaItem) error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Type, validation.Required, mediaTypeRule),
		validation.Field(&m.Path,
			validation.When(m.Type.UsesPath(),
				validation.Required.Error("is required for "+string(m.Type)),
				validation.By(storagePath),
			).Else(
				validation.When(m.Type == models.MediaTypeVideo, validation.Empty.Error("must be empty for video")),
			),
		),
		validation.Field(&m.URL,
			validation.When(m.Type == models.MediaTypeVideo,
				validation.Required.Error("is required for video"),
				is.URL,
			).Else(
				validation.When(m.Type.UsesPath(), validation.Empty.Error("must be empty for "+string(m.Type))),
			),
		),
	)
}

func storagePath(value interface{}) error {
	p, _ := value.(string)
	if p == "" {
		return nil
	}
	if err := storage.ValidatePath(p); err != nil {
		return errors.New(strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": "))
	}
	return nil
}

// collect flattens ozzo's nested error maps into dotted field paths.
func collect(fields map[string]string, prefix string, err error) {
	if err == nil {
		return
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for key, fieldErr := range errs {
			collect(fields, joinPath(prefix, key), fieldErr)
		}
		return
	}
	fields[prefix] = err.Error()
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func newValidationError(summary string, fields map[string]string) *domain.ValidationError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return &domain.ValidationError{
		Message: summary + ": " + strings.Join(parts, "; "),
		Fields:  fields,
	}
}
