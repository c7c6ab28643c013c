// Package parser turns Markdown content files with YAML frontmatter into
// cache documents.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/virtualta/internal/models"
)

// Frontmatter holds the recognised frontmatter keys of a content file.
type Frontmatter struct {
	Title   string `yaml:"title"`
	URL     string `yaml:"url"`
	Type    string `yaml:"type"`
	Section string `yaml:"section"`
	Date    string `yaml:"date"`
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter *Frontmatter
	Body        string
	Title       string
}

// Parse extracts frontmatter, body and title from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
	}, nil
}

// Document converts a content file into a cache document. path is the file's
// location relative to the content root and backs the url when frontmatter
// has none. Files without frontmatter type are treated as course material.
func Document(path string, data []byte) (models.Document, error) {
	res, err := Parse(data)
	if err != nil {
		return models.Document{}, err
	}
	doc := models.Document{
		Title:   res.Title,
		Content: strings.TrimSpace(res.Body),
		URL:     "file://" + path,
		Type:    models.CourseMaterial,
	}
	if fm := res.Frontmatter; fm != nil {
		if fm.URL != "" {
			doc.URL = fm.URL
		}
		if fm.Type != "" {
			t := models.DocumentType(fm.Type)
			if !t.Valid() {
				return models.Document{}, fmt.Errorf("parser: %s: unknown document type %q", path, fm.Type)
			}
			doc.Type = t
		}
		doc.SectionOrDate = fm.Section
		if doc.SectionOrDate == "" {
			doc.SectionOrDate = fm.Date
		}
	}
	return doc, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no valid frontmatter is found the entire content
// is body.
func splitFrontmatter(data []byte) (*Frontmatter, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return &fm, body
}

// deriveTitle returns the frontmatter title if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm *Frontmatter, body string) string {
	if fm != nil && fm.Title != "" {
		return fm.Title
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
