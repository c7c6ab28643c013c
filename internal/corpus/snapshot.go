package corpus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/virtualta/internal/models"
)

// Snapshot is the on-disk cache format: course pages and forum posts kept
// in separate lists.
type Snapshot struct {
	CourseContent  []SnapshotItem   `json:"course_content"`
	DiscoursePosts []SnapshotItem   `json:"discourse_posts"`
	Metadata       SnapshotMetadata `json:"metadata"`
}

// SnapshotItem is one document in a snapshot. Course pages usually carry a
// section, forum posts a date.
type SnapshotItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Type    string `json:"type,omitempty"`
	Section string `json:"section,omitempty"`
	Date    string `json:"date,omitempty"`
}

// SnapshotMetadata describes when a snapshot was taken.
type SnapshotMetadata struct {
	LastUpdated    *time.Time `json:"last_updated"`
	TotalDocuments int        `json:"total_documents"`
}

// DecodeSnapshot parses a snapshot file.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corpus: decode snapshot: %w", err)
	}
	return &s, nil
}

// Documents flattens the snapshot: course content first, then posts. The
// list an item sits in decides its type when the item has none.
func (s *Snapshot) Documents() []models.Document {
	out := make([]models.Document, 0, len(s.CourseContent)+len(s.DiscoursePosts))
	for _, it := range s.CourseContent {
		out = append(out, it.document(models.CourseMaterial))
	}
	for _, it := range s.DiscoursePosts {
		out = append(out, it.document(models.DiscoursePost))
	}
	return out
}

func (it SnapshotItem) document(def models.DocumentType) models.Document {
	t := models.DocumentType(it.Type)
	if !t.Valid() {
		t = def
	}
	sod := it.Section
	if sod == "" {
		sod = it.Date
	}
	return models.Document{
		Title:         it.Title,
		Content:       it.Content,
		URL:           it.URL,
		Type:          t,
		SectionOrDate: sod,
	}
}

// NewSnapshot splits docs back into the two snapshot lists.
func NewSnapshot(docs []models.Document, at time.Time) *Snapshot {
	s := &Snapshot{
		CourseContent:  []SnapshotItem{},
		DiscoursePosts: []SnapshotItem{},
	}
	for _, d := range docs {
		it := SnapshotItem{Title: d.Title, Content: d.Content, URL: d.URL, Type: string(d.Type)}
		if d.Type == models.DiscoursePost {
			it.Date = d.SectionOrDate
			s.DiscoursePosts = append(s.DiscoursePosts, it)
		} else {
			it.Section = d.SectionOrDate
			s.CourseContent = append(s.CourseContent, it)
		}
	}
	at = at.UTC()
	s.Metadata = SnapshotMetadata{LastUpdated: &at, TotalDocuments: len(docs)}
	return s
}

// Encode renders the snapshot as indented JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("corpus: encode snapshot: %w", err)
	}
	return data, nil
}
