package content

import (
	"encoding/json"

	"github.com/google/uuid"
)

// DefaultSectionTitle is the title given to the single section produced when
// legacy text is wrapped into a structured document.
const DefaultSectionTitle = "Lesson Content"

// EmptyContent is the content of a section that has no text yet.
const EmptyContent = "<p></p>"

// MediaType discriminates what a MediaItem points at.
type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
)

// MediaTypes lists every supported media type in gallery order.
var MediaTypes = []MediaType{MediaTypeImage, MediaTypeVideo, MediaTypeDocument}

// Valid reports whether t is one of the supported media types.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeImage, MediaTypeVideo, MediaTypeDocument:
		return true
	}
	return false
}

// UsesPath reports whether items of this type are stored files addressed by a
// storage-relative path. Videos are addressed by an external URL instead.
func (t MediaType) UsesPath() bool {
	return t == MediaTypeImage || t == MediaTypeDocument
}

// MediaItem is an attached or linked resource.
// Images and documents carry Path; videos carry URL.
type MediaItem struct {
	Type      MediaType `json:"type"`
	Path      string    `json:"path,omitempty"`
	URL       string    `json:"url,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	Title     string    `json:"title,omitempty"`
	Suggested bool      `json:"ai_suggested,omitempty"` // set for resources proposed by generation
}

// HasSource reports whether the item carries the field its type requires.
func (m MediaItem) HasSource() bool {
	switch m.Type {
	case MediaTypeImage, MediaTypeDocument:
		return m.Path != ""
	case MediaTypeVideo:
		return m.URL != ""
	}
	return false
}

// Label returns the caption, falling back to the title.
func (m MediaItem) Label() string {
	if m.Caption != "" {
		return m.Caption
	}
	return m.Title
}

// Block is the shape shared by sections and subsections: something with a
// title, an HTML body and a media list. Rendering and counting work on Blocks
// so they do not care which level of the tree they are looking at.
type Block interface {
	BlockTitle() string
	BlockContent() string
	BlockMedia() []MediaItem
}

// Section is a top-level node of a document.
type Section struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Media       []MediaItem  `json:"media"`
	Subsections []Subsection `json:"subsections"`
}

func (s Section) BlockTitle() string      { return s.Title }
func (s Section) BlockContent() string    { return s.Content }
func (s Section) BlockMedia() []MediaItem { return s.Media }

// Subsection is the second and last level of the tree. It has no children.
type Subsection struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Media   []MediaItem `json:"media"`
}

func (s Subsection) BlockTitle() string      { return s.Title }
func (s Subsection) BlockContent() string    { return s.Content }
func (s Subsection) BlockMedia() []MediaItem { return s.Media }

// Metadata holds counts derived from the tree. It is a cache: the content tree
// is always authoritative.
type Metadata struct {
	SectionCount    int `json:"section_count"`
	SubsectionCount int `json:"subsection_count"`
	VideoCount      int `json:"video_count"`
	ImageCount      int `json:"image_count"`
	DocumentCount   int `json:"document_count"`
}

// Document is the structured body of a lesson or session snapshot.
type Document struct {
	Sections []Section `json:"sections"`
	Metadata Metadata  `json:"metadata"`
}

// NewSectionID mints a fresh opaque section identifier.
func NewSectionID() string {
	return uuid.NewString()
}

// NewEmptyDocument returns the document an author starts from: one empty
// section and nothing else.
func NewEmptyDocument() *Document {
	return &Document{
		Sections: []Section{NewSection("", EmptyContent)},
		Metadata: Metadata{SectionCount: 1},
	}
}

// NewSection returns a section with a fresh ID and empty media/subsections.
func NewSection(title, content string) Section {
	return Section{
		ID:          NewSectionID(),
		Title:       title,
		Content:     content,
		Media:       []MediaItem{},
		Subsections: []Subsection{},
	}
}

// Blocks returns every section and subsection in display order.
func (d *Document) Blocks() []Block {
	if d == nil {
		return nil
	}
	blocks := make([]Block, 0, len(d.Sections))
	for _, s := range d.Sections {
		blocks = append(blocks, s)
		for _, sub := range s.Subsections {
			blocks = append(blocks, sub)
		}
	}
	return blocks
}

// Clone returns a deep copy with nil slices replaced by empty ones.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Sections: make([]Section, len(d.Sections)),
		Metadata: d.Metadata,
	}
	for i, s := range d.Sections {
		subs := make([]Subsection, len(s.Subsections))
		for j, sub := range s.Subsections {
			sub.Media = cloneMedia(sub.Media)
			subs[j] = sub
		}
		s.Media = cloneMedia(s.Media)
		s.Subsections = subs
		out.Sections[i] = s
	}
	return out
}

func cloneMedia(items []MediaItem) []MediaItem {
	out := make([]MediaItem, len(items))
	copy(out, items)
	return out
}

// MarshalJSON writes empty lists as [] rather than null so the stored shape
// always matches the persisted schema.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	return json.Marshal((*plain)(d.Clone()))
}
