package index

// DocumentIndex is the read/write surface of the corpus mirror.
type DocumentIndex interface {
	UpsertDocument(r DocumentRow) error
	DeleteDocument(url string) error
	GetDocument(url string) (*DocumentRow, error)
	ListDocuments(limit, offset int, docType string) ([]DocumentRow, int, error)
	CountByType() (map[string]int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]Entry, error)
	Close() error
}

var _ DocumentIndex = (*DB)(nil)
