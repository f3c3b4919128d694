package metadata

import (
	"testing"

	models "carelearn/internal/domain/models/content"
)

func media(types ...models.MediaType) []models.MediaItem {
	items := make([]models.MediaItem, 0, len(types))
	for _, t := range types {
		items = append(items, models.MediaItem{Type: t, Path: "x", URL: "https://example.com"})
	}
	return items
}

func TestRecalculate(t *testing.T) {
	tests := []struct {
		name string
		doc  *models.Document
		want models.Metadata
	}{
		{
			name: "nil document",
			doc:  nil,
			want: models.Metadata{},
		},
		{
			name: "empty document",
			doc:  models.NewEmptyDocument(),
			want: models.Metadata{SectionCount: 1},
		},
		{
			name: "media at both levels",
			doc: &models.Document{
				Sections: []models.Section{
					{
						ID:    "a",
						Media: media(models.MediaTypeImage, models.MediaTypeVideo),
						Subsections: []models.Subsection{
							{Media: media(models.MediaTypeImage, models.MediaTypeDocument)},
							{},
						},
					},
					{
						ID:          "b",
						Media:       media(models.MediaTypeVideo, models.MediaTypeVideo),
						Subsections: []models.Subsection{{Media: media(models.MediaTypeDocument)}},
					},
				},
			},
			want: models.Metadata{
				SectionCount:    2,
				SubsectionCount: 3,
				VideoCount:      3,
				ImageCount:      2,
				DocumentCount:   2,
			},
		},
		{
			name: "unknown media types are not counted",
			doc: &models.Document{
				Sections: []models.Section{{ID: "a", Media: media("audio")}},
			},
			want: models.Metadata{SectionCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recalculate(tt.doc); got != tt.want {
				t.Errorf("Recalculate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStamp_OverwritesClientCounts(t *testing.T) {
	doc := &models.Document{
		Sections: []models.Section{{ID: "a", Media: media(models.MediaTypeImage)}},
		Metadata: models.Metadata{SectionCount: 99, ImageCount: 42},
	}

	Stamp(doc)

	want := models.Metadata{SectionCount: 1, ImageCount: 1}
	if doc.Metadata != want {
		t.Errorf("Stamp() left %+v, want %+v", doc.Metadata, want)
	}
	if got := Verify(doc); len(got) != 0 {
		t.Errorf("Verify() after Stamp = %+v, want none", got)
	}
}

func TestVerify(t *testing.T) {
	doc := &models.Document{
		Sections: []models.Section{
			{ID: "a", Media: media(models.MediaTypeVideo), Subsections: []models.Subsection{{}}},
		},
		Metadata: models.Metadata{SectionCount: 1, SubsectionCount: 0, VideoCount: 2},
	}

	got := Verify(doc)
	want := []Discrepancy{
		{Field: "subsection_count", Stored: 0, Derived: 1},
		{Field: "video_count", Stored: 2, Derived: 1},
	}

	if len(got) != len(want) {
		t.Fatalf("Verify() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("discrepancy %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
