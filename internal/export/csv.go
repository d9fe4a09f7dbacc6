package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jmaren/glosa/internal/annotate"
	"github.com/jmaren/glosa/internal/model"
)

// TurnSummaryCSV writes one row per respondent turn with per-module
// annotation counts and categories.
func (e *Exporter) TurnSummaryCSV(corpus *model.Corpus, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := []string{"doc_id", "turn_id", "speaker", "n_words", "n_sentences", "text_preview"}
	for _, m := range modules {
		header = append(header, m+"_n", m+"_categories")
	}
	header = append(header, "total_n", "total_density")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, doc := range corpus.Documents {
		for _, turn := range doc.RespondentTurns() {
			row := []string{
				doc.ID,
				strconv.Itoa(turn.ID),
				turn.Speaker,
				strconv.Itoa(turn.WordCount()),
				strconv.Itoa(turn.SentenceCount()),
				annotate.Preview(turn.Text, 150),
			}
			total := 0
			for _, m := range modules {
				anns := doc.Annotations(model.AnnotationFilter{Module: m, TurnID: turn.ID})
				row = append(row, strconv.Itoa(len(anns)), categoryList(anns))
				total += len(anns)
			}
			words := turn.WordCount()
			if words < 1 {
				words = 1
			}
			row = append(row, strconv.Itoa(total),
				strconv.FormatFloat(annotate.Density(total, words), 'f', 1, 64))
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

// DocSummaryCSV writes one row of interview-level counts per document.
func (e *Exporter) DocSummaryCSV(corpus *model.Corpus, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"doc_id", "language", "n_turns", "n_respondent_turns", "n_words", "n_annotations",
	}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, doc := range corpus.Documents {
		s := doc.Summarize()
		if err := w.Write([]string{
			doc.ID,
			doc.Language,
			strconv.Itoa(s.Turns),
			strconv.Itoa(s.RespondentTurns),
			strconv.Itoa(s.Words),
			strconv.Itoa(s.Annotations),
		}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func categoryList(anns []model.Annotation) string {
	set := make(map[string]bool)
	for _, a := range anns {
		set[a.Category] = true
	}
	cats := make([]string, 0, len(set))
	for c := range set {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return strings.Join(cats, "; ")
}
