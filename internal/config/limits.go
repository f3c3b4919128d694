package config

const (
	// MaxLessonTitleLength is the maximum length for lesson and session titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxLessonTitleLength = 255

	// MaxCategoryLength is the maximum length for a lesson category.
	MaxCategoryLength = 100

	// MaxSectionTitleLength is the maximum length for section and subsection titles.
	MaxSectionTitleLength = 255

	// MaxSections bounds the number of sections in one document. Generated
	// documents over this size are rejected rather than truncated.
	MaxSections = 100

	// MaxSubsections bounds the subsections under a single section.
	MaxSubsections = 50

	// MaxMediaPerBlock bounds the media list of a section or subsection.
	MaxMediaPerBlock = 50

	// MaxGenerationContextLength bounds the free-text context passed to generation.
	MaxGenerationContextLength = 4000
)
