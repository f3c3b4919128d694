// Package metadata derives the cached counts stored next to a document.
// The tree is the source of truth; these functions are the only way the
// counts are produced.
package metadata

import (
	models "carelearn/internal/domain/models/content"
)

// Recalculate walks the tree and counts sections, subsections and media by
// type across both section and subsection media lists.
func Recalculate(doc *models.Document) models.Metadata {
	var m models.Metadata
	if doc == nil {
		return m
	}

	m.SectionCount = len(doc.Sections)
	for _, block := range doc.Blocks() {
		if _, ok := block.(models.Subsection); ok {
			m.SubsectionCount++
		}
		for _, item := range block.BlockMedia() {
			switch item.Type {
			case models.MediaTypeVideo:
				m.VideoCount++
			case models.MediaTypeImage:
				m.ImageCount++
			case models.MediaTypeDocument:
				m.DocumentCount++
			}
		}
	}
	return m
}

// Stamp overwrites doc.Metadata with the derived counts.
func Stamp(doc *models.Document) {
	if doc == nil {
		return
	}
	doc.Metadata = Recalculate(doc)
}

// Discrepancy is one count where the stored metadata disagrees with the tree.
type Discrepancy struct {
	Field   string `json:"field"`
	Stored  int    `json:"stored"`
	Derived int    `json:"derived"`
}

// Verify compares the stored counts with the derived ones. An empty result
// means the cache is consistent.
func Verify(doc *models.Document) []Discrepancy {
	if doc == nil {
		return nil
	}

	stored := doc.Metadata
	derived := Recalculate(doc)

	checks := []struct {
		field           string
		stored, derived int
	}{
		{"section_count", stored.SectionCount, derived.SectionCount},
		{"subsection_count", stored.SubsectionCount, derived.SubsectionCount},
		{"video_count", stored.VideoCount, derived.VideoCount},
		{"image_count", stored.ImageCount, derived.ImageCount},
		{"document_count", stored.DocumentCount, derived.DocumentCount},
	}

	var out []Discrepancy
	for _, c := range checks {
		if c.stored != c.derived {
			out = append(out, Discrepancy{Field: c.field, Stored: c.stored, Derived: c.derived})
		}
	}
	return out
}
