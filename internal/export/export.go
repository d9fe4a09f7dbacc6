// Package export writes analysis results to standard formats:
// annotations as JSONL, turn and document summaries as CSV, a combined
// XLSX workbook, and a human-readable Markdown report.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jmaren/glosa/internal/model"
)

// modules lists the analytic passes in report order.
var modules = []string{
	model.ModuleNarrative,
	model.ModulePosition,
	model.ModuleDiscourse,
	model.ModuleAffect,
}

// Exporter writes corpus results to an output directory.
type Exporter struct {
	logger *zap.Logger
}

// New creates an exporter. A nil logger disables logging.
func New(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{logger: logger}
}

// WriteAll writes all export formats into dir, timestamped so repeated
// runs never overwrite earlier exports. Returns the written paths.
func (e *Exporter) WriteAll(corpus *model.Corpus, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	ts := time.Now().Format("20060102_1504")

	paths := []string{
		filepath.Join(dir, "annotations_"+ts+".jsonl"),
		filepath.Join(dir, "turn_summary_"+ts+".csv"),
		filepath.Join(dir, "doc_summary_"+ts+".csv"),
		filepath.Join(dir, "analysis_"+ts+".xlsx"),
	}
	if err := e.AnnotationsJSONL(corpus, paths[0]); err != nil {
		return nil, err
	}
	if err := e.TurnSummaryCSV(corpus, paths[1]); err != nil {
		return nil, err
	}
	if err := e.DocSummaryCSV(corpus, paths[2]); err != nil {
		return nil, err
	}
	if err := e.Workbook(corpus, paths[3]); err != nil {
		return nil, err
	}
	e.logger.Info("export complete",
		zap.Int("documents", corpus.Len()),
		zap.String("dir", dir))
	return paths, nil
}
