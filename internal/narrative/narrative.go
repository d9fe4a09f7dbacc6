// Package narrative analyzes narrative structure: discourse types per
// sentence, their transitions within a turn, process-structure markers,
// and turning-point candidates.
package narrative

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmaren/glosa/internal/annotate"
	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
)

// Pass implements the narrative-structure analysis.
type Pass struct {
	gate      *language.Gate
	types     framebook.CategorySet
	processes framebook.CategorySet
	an        *annotate.Annotator
}

// New creates the pass from the framebook's discourse-type and
// process-structure sections.
func New(gate *language.Gate, fb *framebook.Framebook, diags *model.Diagnostics) *Pass {
	return &Pass{
		gate:      gate,
		types:     fb.DiscourseTypes,
		processes: fb.ProcessStructures,
		an:        annotate.New(model.ModuleNarrative, diags),
	}
}

// Module returns the pass's module id.
func (p *Pass) Module() string { return model.ModuleNarrative }

// Analyze classifies every sentence by discourse type and scans each turn
// for process-structure markers. Returns the number of annotations
// written.
func (p *Pass) Analyze(doc *model.Document) (int, error) {
	n := 0
	for _, turn := range doc.RespondentTurns() {
		offset := 0
		for _, sentence := range turn.Sentences {
			idx := strings.Index(turn.Text[offset:], sentence)
			if idx < 0 {
				idx = 0
			}
			sentStart := offset + idx
			offset = sentStart + len(sentence)

			typ := p.classifySentence(sentence)
			if typ == model.TypeUndetermined {
				continue
			}
			cat, _ := p.types.Get(typ)
			anns := p.an.Search(sentence, model.PrefixType+typ, p.gate.Patterns(cat),
				turn.ID, "type_"+strings.ToLower(typ))
			for _, a := range anns {
				// Spans are recorded against the turn text, not the sentence.
				a.Start += sentStart
				a.End += sentStart
				a.Sentence = sentence
				doc.AddAnnotation(a)
				n++
			}
		}

		for _, proc := range p.processes {
			anns := p.an.Search(turn.Text, proc.Name, p.gate.Patterns(proc),
				turn.ID, "ps_"+strings.ToLower(proc.Name))
			for _, a := range anns {
				doc.AddAnnotation(a)
				n++
			}
		}
	}
	return n, nil
}

// classifySentence returns the discourse type with the strictly highest
// match count. Ties keep the category encountered first in configuration
// order; zero matches anywhere yields UNDETERMINED.
func (p *Pass) classifySentence(sentence string) string {
	best := model.TypeUndetermined
	bestScore := 0
	for _, cat := range p.types {
		score := p.an.CountMatches(sentence, p.gate.Patterns(cat), cat.Name)
		if score > bestScore {
			bestScore = score
			best = cat.Name
		}
	}
	return best
}

// TurnSummary is the per-turn narrative view.
type TurnSummary struct {
	TurnID            int      `json:"turn_id"`
	Sentences         int      `json:"n_sentences"`
	Sequence          []string `json:"sequence"`
	SequenceShort     string   `json:"sequence_short"` // first letters, e.g. "NAN"
	Transitions       int      `json:"n_transitions"`
	ProcessStructures []string `json:"process_structures"`
	Annotations       int      `json:"n_annotations"`
}

// Summarize returns one row per respondent turn.
func (p *Pass) Summarize(doc *model.Document) []TurnSummary {
	var rows []TurnSummary
	for _, turn := range doc.RespondentTurns() {
		seq := p.sequence(turn)
		var short strings.Builder
		for _, s := range seq {
			short.WriteByte(s[0])
		}
		rows = append(rows, TurnSummary{
			TurnID:            turn.ID,
			Sentences:         turn.SentenceCount(),
			Sequence:          seq,
			SequenceShort:     short.String(),
			Transitions:       countTransitions(seq),
			ProcessStructures: p.processCategories(doc, turn.ID),
			Annotations:       len(doc.Annotations(model.AnnotationFilter{Module: p.Module(), TurnID: turn.ID})),
		})
	}
	return rows
}

func (p *Pass) sequence(turn *model.Turn) []string {
	seq := make([]string, len(turn.Sentences))
	for i, s := range turn.Sentences {
		seq[i] = p.classifySentence(s)
	}
	return seq
}

// countTransitions counts adjacent positions with differing, determined
// types. UNDETERMINED on either side never counts.
func countTransitions(seq []string) int {
	n := 0
	for i := 1; i < len(seq); i++ {
		if seq[i] != seq[i-1] &&
			seq[i] != model.TypeUndetermined && seq[i-1] != model.TypeUndetermined {
			n++
		}
	}
	return n
}

func (p *Pass) processCategories(doc *model.Document, turnID int) []string {
	set := make(map[string]bool)
	for _, a := range doc.Annotations(model.AnnotationFilter{Module: p.Module(), TurnID: turnID}) {
		if !strings.HasPrefix(a.Category, model.PrefixType) {
			set[a.Category] = true
		}
	}
	var out []string
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// TurningPoint is a candidate biographic turning point with its score
// breakdown.
type TurningPoint struct {
	TurnID      int      `json:"turn_id"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
	Sequence    []string `json:"sequence"`
	TextPreview string   `json:"text_preview"`
}

// TurningPoints ranks turns by turning-point score and returns the top n.
// Score: 2 per discourse-type transition; 3 per distinct process category
// when more than one co-occurs, 1 when exactly one is present; 2 extra
// when the trajectory category is among them.
func (p *Pass) TurningPoints(doc *model.Document, n int) []TurningPoint {
	var candidates []TurningPoint
	for _, turn := range doc.RespondentTurns() {
		seq := p.sequence(turn)
		transitions := countTransitions(seq)
		procs := p.processCategories(doc, turn.ID)

		score := 0
		var reasons []string
		if transitions > 0 {
			score += transitions * 2
			reasons = append(reasons, pluralf("%d discourse-type transition", transitions))
		}
		switch {
		case len(procs) > 1:
			score += len(procs) * 3
			reasons = append(reasons, "overlapping process structures: "+strings.Join(procs, ", "))
		case len(procs) == 1:
			score++
			reasons = append(reasons, "process structure: "+procs[0])
		}
		if contains(procs, model.PSTrajectory) {
			score += 2
			reasons = append(reasons, "trajectory marker present")
		}

		if score > 0 {
			candidates = append(candidates, TurningPoint{
				TurnID:      turn.ID,
				Score:       score,
				Reasons:     reasons,
				Sequence:    seq,
				TextPreview: annotate.Preview(turn.Text, 200),
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func pluralf(format string, n int) string {
	s := fmt.Sprintf(format, n)
	if n != 1 {
		s += "s"
	}
	return s
}
