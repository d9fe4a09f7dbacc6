package model

// Corpus is a named, ordered collection of documents. It owns no shared
// mutable state beyond the list itself.
type Corpus struct {
	Name      string
	Documents []*Document
}

// NewCorpus creates an empty corpus.
func NewCorpus(name string) *Corpus {
	return &Corpus{Name: name}
}

// Add appends a document.
func (c *Corpus) Add(doc *Document) {
	c.Documents = append(c.Documents, doc)
}

// Get returns the document with the given id, or nil.
func (c *Corpus) Get(docID string) *Document {
	for _, doc := range c.Documents {
		if doc.ID == docID {
			return doc
		}
	}
	return nil
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.Documents)
}

// CorpusAnnotation is an annotation joined with its document id, for
// cross-document aggregation and export.
type CorpusAnnotation struct {
	DocID string `json:"doc_id"`
	Annotation
}

// AllAnnotations returns every annotation across the corpus, optionally
// filtered, each tagged with its document id.
func (c *Corpus) AllAnnotations(f AnnotationFilter) []CorpusAnnotation {
	var out []CorpusAnnotation
	for _, doc := range c.Documents {
		for _, a := range doc.Annotations(f) {
			out = append(out, CorpusAnnotation{DocID: doc.ID, Annotation: a})
		}
	}
	return out
}
