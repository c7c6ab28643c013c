// Package models defines the domain types for the virtual TA.
package models

// DocumentType distinguishes course pages from forum posts.
type DocumentType string

// Document types.
const (
	CourseMaterial DocumentType = "course_material"
	DiscoursePost  DocumentType = "discourse_post"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == CourseMaterial || t == DiscoursePost
}

// Document is one cached piece of course content. URL is its identity.
type Document struct {
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	URL           string       `json:"url"`
	Type          DocumentType `json:"type"`
	SectionOrDate string       `json:"section_or_date,omitempty"`
}

// ScoredDocument pairs a document with its relevance to a question.
type ScoredDocument struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Link is a supporting reference attached to an answer.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Answer is the response to a student question. Links is never nil.
type Answer struct {
	Answer string `json:"answer"`
	Links  []Link `json:"links"`
}
