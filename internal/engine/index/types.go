package index

import "time"

// DocType is the closed document-type enumeration.
type DocType string

const (
	TypeDocument DocType = "document"
	TypeCode     DocType = "code"
	TypeAPI      DocType = "api"
	TypeImage    DocType = "image"
	TypeVideo    DocType = "video"
)

// Valid reports whether t is one of the known document types.
func (t DocType) Valid() bool {
	switch t {
	case TypeDocument, TypeCode, TypeAPI, TypeImage, TypeVideo:
		return true
	}
	return false
}

// Metadata carries the structural attributes of a document used by the
// query engine's filter chain.
type Metadata struct {
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	Language     string    `json:"language,omitempty"`
	Tags         []string  `json:"tags"`
}

// Document is the indexable unit. The ID is caller-assigned and stable;
// title and content are indexed, URL is opaque.
type Document struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	URL      string   `json:"url"`
	Type     DocType  `json:"type"`
	Metadata Metadata `json:"metadata"`
}

// Stats holds corpus-level counters, updated incrementally on every insert.
type Stats struct {
	TotalDocuments int       `json:"totalDocuments"`
	TotalWords     int       `json:"totalWords"`
	LastIndexed    time.Time `json:"lastIndexed"`
}

// TermCount pairs an index term with its posting-set size.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"frequency"`
}
