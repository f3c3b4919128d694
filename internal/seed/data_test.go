package seed

import (
	"testing"

	models "carelearn/internal/domain/models/content"
	"carelearn/internal/service/content"
	"carelearn/internal/service/content/converter"
)

func TestStructuredLessons_AreValid(t *testing.T) {
	for _, req := range StructuredLessons() {
		t.Run(req.Title, func(t *testing.T) {
			if !req.Kind.Valid() {
				t.Fatalf("kind %q is invalid", req.Kind)
			}
			if req.Content == nil {
				return
			}
			doc := req.Content.Clone()
			for i := range doc.Sections {
				doc.Sections[i].ID = models.NewSectionID()
			}
			if err := content.ValidateDocument(doc); err != nil {
				t.Errorf("ValidateDocument() error = %v", err)
			}
		})
	}
}

func TestStructuredLessons_FreshCopies(t *testing.T) {
	first := StructuredLessons()
	first[0].Content.Sections[0].Title = "changed"
	if StructuredLessons()[0].Content.Sections[0].Title == "changed" {
		t.Error("StructuredLessons shares state between calls")
	}
}

func TestLegacyLessons_Convert(t *testing.T) {
	conv := converter.NewMarkdownConverter()
	for _, legacy := range LegacyLessons() {
		t.Run(legacy.Title, func(t *testing.T) {
			doc := conv.Convert(legacy.Body)
			if err := content.ValidateDocument(doc); err != nil {
				t.Errorf("converted document invalid: %v", err)
			}
		})
	}
}
