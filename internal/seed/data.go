package seed

import (
	models "carelearn/internal/domain/models/content"
	contentSvc "carelearn/internal/domain/services/content"
)

// LegacyLesson is a pre-migration row: free text, no document.
type LegacyLesson struct {
	Kind     models.Kind
	Title    string
	Category string
	Body     string
}

// StructuredLessons returns fresh create requests on every call; section ids
// are left empty so the service mints them.
func StructuredLessons() []*contentSvc.CreateLessonRequest {
	return []*contentSvc.CreateLessonRequest{
		{
			Kind:     models.KindLesson,
			Title:    "Safe moving and handling",
			Category: "Mobility",
			Content: &models.Document{
				Sections: []models.Section{
					{
						Title:   "Before you start",
						Content: "<p>Check the care plan and the resident's mobility assessment.</p><ul><li>Clear the area</li><li>Explain what you are about to do</li></ul>",
						Media: []models.MediaItem{
							{Type: models.MediaTypeImage, Path: "lessons/moving/hoist-checklist.png", Caption: "Hoist pre-use checklist"},
							{Type: models.MediaTypeVideo, URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Title: "Standing transfer demonstration"},
						},
						Subsections: []models.Subsection{
							{
								Title:   "Equipment checks",
								Content: "<p>Inspect slings for <strong>fraying</strong> and confirm the service date.</p>",
								Media: []models.MediaItem{
									{Type: models.MediaTypeDocument, Path: "lessons/moving/sling-guide.pdf", Title: "Sling selection guide"},
								},
							},
						},
					},
					{
						Title:   "During the transfer",
						Content: "<p>Keep the load close and move your feet, not your spine.</p>",
					},
				},
			},
		},
		{
			Kind:     models.KindLesson,
			Title:    "Medication rounds",
			Category: "Medication",
			Content: &models.Document{
				Sections: []models.Section{
					{
						Title:   "The six rights",
						Content: "<ol><li>Right resident</li><li>Right medicine</li><li>Right route</li><li>Right dose</li><li>Right time</li><li>Right to refuse</li></ol>",
						Media: []models.MediaItem{
							{Type: models.MediaTypeVideo, URL: "https://vimeo.com/76979871", Title: "Recording a refusal"},
						},
					},
				},
			},
		},
		{
			Kind:     models.KindSession,
			Title:    "Mentor session: first week on nights",
			Category: "Induction",
		},
	}
}

// LegacyLessons returns rows in the shape the free-text column held before
// structured documents existed.
func LegacyLessons() []LegacyLesson {
	return []LegacyLesson{
		{
			Kind:     models.KindLesson,
			Title:    "Infection control basics",
			Category: "Infection control",
			Body:     "---\ntitle: Infection control basics\n---\n# Hand hygiene\n\nWash for **20 seconds**.\n\n- Before resident contact\n- After removing gloves\n",
		},
		{
			Kind:     models.KindLesson,
			Title:    "Nutrition and hydration",
			Category: "Nutrition",
			Body:     "Offer drinks every hour.\n\n| Time | Target |\n|------|--------|\n| AM | 500ml |\n| PM | 700ml |\n",
		},
		{
			Kind:     models.KindSession,
			Title:    "Session notes: falls review",
			Category: "Falls",
			Body:     "Discussed the sensor mat trial. <script>alert('x')</script> Follow up next week.",
		},
		{
			Kind:     models.KindSession,
			Title:    "Session notes: empty",
			Category: "Induction",
			Body:     "",
		},
	}
}
