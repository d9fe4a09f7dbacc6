package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jmaren/glosa/internal/model"
)

// annotationRow is one JSONL line: the annotation plus its document
// provenance.
type annotationRow struct {
	model.Annotation
	DocID    string `json:"doc_id"`
	Language string `json:"language"`
}

// AnnotationsJSONL writes every annotation in the corpus as one JSON
// object per line.
func (e *Exporter) AnnotationsJSONL(corpus *model.Corpus, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	total := 0
	for _, doc := range corpus.Documents {
		for _, a := range doc.Annotations(model.AnnotationFilter{}) {
			if err := enc.Encode(annotationRow{
				Annotation: a,
				DocID:      doc.ID,
				Language:   doc.Language,
			}); err != nil {
				return fmt.Errorf("encode annotation: %w", err)
			}
			total++
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	e.logger.Debug("wrote annotations", zap.Int("count", total), zap.String("path", path))
	return nil
}
