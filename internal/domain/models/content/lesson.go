package content

import "time"

// Kind distinguishes mentorship lessons from recorded session snapshots.
// Both own a structured document and are handled identically by the engine.
type Kind string

const (
	KindLesson  Kind = "lesson"
	KindSession Kind = "session"
)

func (k Kind) Valid() bool {
	return k == KindLesson || k == KindSession
}

type Lesson struct {
	ID       string `json:"id" db:"id"`
	Kind     Kind   `json:"kind" db:"kind"`
	OwnerID  string `json:"owner_id" db:"owner_id"`
	Title    string `json:"title" db:"title"`
	Category string `json:"category" db:"category"`
	// Content is nil for rows that have only legacy text and were never migrated.
	Content *Document `json:"content" db:"content"`
	// LegacyBody is the free-text column the structured tree replaces.
	// Cleared once the row's migration is finalized.
	LegacyBody *string   `json:"-" db:"legacy_body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
