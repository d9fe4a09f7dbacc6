package export

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jmaren/glosa/internal/model"
)

// Workbook writes the combined XLSX export with four sheets: document
// overview, per-turn annotation counts, the full annotation list, and
// the frame distribution.
func (e *Exporter) Workbook(corpus *model.Corpus, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := e.documentsSheet(f, corpus); err != nil {
		return err
	}
	if err := e.turnsSheet(f, corpus); err != nil {
		return err
	}
	if err := e.annotationsSheet(f, corpus); err != nil {
		return err
	}
	if err := e.framesSheet(f, corpus); err != nil {
		return err
	}
	// Drop the default sheet created by excelize.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (e *Exporter) documentsSheet(f *excelize.File, corpus *model.Corpus) error {
	const sheet = "Documents"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := []interface{}{"doc_id", "language", "n_turns", "n_respondent_turns",
		"n_sentences", "n_words", "n_annotations", "parse_mode"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, doc := range corpus.Documents {
		s := doc.Summarize()
		row := []interface{}{s.DocID, s.Language, s.Turns, s.RespondentTurns,
			s.Sentences, s.Words, s.Annotations, s.ParseMode}
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

func (e *Exporter) turnsSheet(f *excelize.File, corpus *model.Corpus) error {
	const sheet = "Turns"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := []interface{}{"doc_id", "turn_id", "n_words"}
	for _, m := range modules {
		header = append(header, m+"_n")
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rowNum := 2
	for _, doc := range corpus.Documents {
		for _, turn := range doc.RespondentTurns() {
			row := []interface{}{doc.ID, turn.ID, turn.WordCount()}
			for _, m := range modules {
				row = append(row, len(doc.Annotations(model.AnnotationFilter{Module: m, TurnID: turn.ID})))
			}
			if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(rowNum), &row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			rowNum++
		}
	}
	return nil
}

// framesSheet counts discourse annotations per category and document.
func (e *Exporter) framesSheet(f *excelize.File, corpus *model.Corpus) error {
	const sheet = "Frames"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := []interface{}{"doc_id", "category", "n", "n_turns"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rowNum := 2
	for _, doc := range corpus.Documents {
		counts := make(map[string]int)
		turns := make(map[string]map[int]bool)
		for _, a := range doc.Annotations(model.AnnotationFilter{Module: model.ModuleDiscourse}) {
			counts[a.Category]++
			if turns[a.Category] == nil {
				turns[a.Category] = make(map[int]bool)
			}
			turns[a.Category][a.TurnID] = true
		}
		cats := make([]string, 0, len(counts))
		for c := range counts {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			row := []interface{}{doc.ID, c, counts[c], len(turns[c])}
			if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(rowNum), &row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			rowNum++
		}
	}
	return nil
}

func (e *Exporter) annotationsSheet(f *excelize.File, corpus *model.Corpus) error {
	const sheet = "Annotations"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := []interface{}{"doc_id", "module", "category", "rule_id", "matched_text",
		"matched_start", "matched_end", "turn_id", "confidence", "note"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rowNum := 2
	for _, doc := range corpus.Documents {
		for _, a := range doc.Annotations(model.AnnotationFilter{}) {
			row := []interface{}{doc.ID, a.Module, a.Category, a.RuleID, a.Matched,
				a.Start, a.End, a.TurnID, string(a.Confidence), a.Note}
			if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(rowNum), &row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			rowNum++
		}
	}
	return nil
}
