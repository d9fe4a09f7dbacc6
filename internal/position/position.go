// Package position analyzes subject positioning: pronoun usage, agency
// framing, and, when a dependency parser is available, grammatical
// subject roles.
package position

import (
	"sort"
	"strings"

	"github.com/jmaren/glosa/internal/annotate"
	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
)

// Pass implements the positioning analysis.
type Pass struct {
	gate   *language.Gate
	fb     *framebook.Framebook
	agency framebook.CategorySet
	an     *annotate.Annotator
	diags  *model.Diagnostics
}

// New creates the pass from the framebook's pronoun table and agency
// section.
func New(gate *language.Gate, fb *framebook.Framebook, diags *model.Diagnostics) *Pass {
	return &Pass{
		gate:   gate,
		fb:     fb,
		agency: fb.Agency,
		an:     annotate.New(model.ModulePosition, diags),
		diags:  diags,
	}
}

// Module returns the pass's module id.
func (p *Pass) Module() string { return model.ModulePosition }

// Analyze runs the pronoun and agency scans over every respondent turn,
// plus the syntactic subject scan when the gate carries a parser.
func (p *Pass) Analyze(doc *model.Document) (int, error) {
	n := 0
	pronouns := p.gate.Pronouns(p.fb)
	for _, turn := range doc.RespondentTurns() {
		for _, label := range sortedKeys(pronouns) {
			anns := p.an.Search(turn.Text, model.PrefixPronoun+strings.ToUpper(label),
				[]string{pronouns[label]}, turn.ID, "pron_"+strings.ToLower(label))
			for _, a := range anns {
				doc.AddAnnotation(a)
				n++
			}
		}
		for _, cat := range p.agency {
			anns := p.an.Search(turn.Text, cat.Name, p.gate.Patterns(cat),
				turn.ID, "ag_"+strings.ToLower(cat.Name))
			for _, a := range anns {
				doc.AddAnnotation(a)
				n++
			}
		}
		if p.gate.HasParser() {
			n += p.analyzeSubjects(doc, turn)
		}
	}
	return n, nil
}

// analyzeSubjects classifies each grammatical subject by referent class
// and voice. These annotations carry syntactic confidence since they
// depend on parser output rather than surface patterns.
func (p *Pass) analyzeSubjects(doc *model.Document, turn *model.Turn) int {
	n := 0
	for _, tok := range p.gate.Subjects(turn.Text) {
		class := referentClass(tok.Lemma)
		if class == "" {
			continue
		}
		voice := voiceOf(tok)
		end := tok.Offset + len(tok.Text)
		if end > len(turn.Text) {
			end = len(turn.Text)
		}
		doc.AddAnnotation(model.Annotation{
			Module:     p.Module(),
			Category:   model.PrefixSyntactic + class + "_" + voice,
			RuleID:     "syn_subject",
			Pattern:    tok.Dep,
			Matched:    tok.Text,
			Start:      tok.Offset,
			End:        end,
			Sentence:   annotate.ContainingSentence(turn.Text, tok.Offset),
			TurnID:     turn.ID,
			Confidence: model.ConfidenceSyntactic,
			Note:       "head=" + tok.HeadText,
		})
		n++
	}
	return n
}

// referentClass maps a subject lemma to a positioning class. Unmapped
// lemmas are skipped.
func referentClass(lemma string) string {
	switch strings.ToLower(lemma) {
	case "i", "ich", "je", "me", "myself":
		return "SELF"
	case "we", "wir", "nous", "us":
		return "WE"
	case "one", "man", "on", "you":
		return "GENERIC"
	case "they", "sie", "ils", "elles", "them":
		return "OTHER"
	}
	return ""
}

// voiceOf derives the clause voice from the parse. Passive subjects and
// passive auxiliaries mark PASSIVE, modal auxiliaries mark MODAL,
// everything else is ACTIVE.
func voiceOf(tok language.Token) string {
	if strings.Contains(tok.Dep, "pass") {
		return "PASSIVE"
	}
	for _, aux := range tok.AuxLemmas {
		switch strings.ToLower(aux) {
		case "must", "should", "can", "could", "may", "might",
			"müssen", "sollen", "können", "dürfen", "devoir", "pouvoir":
			return "MODAL"
		}
	}
	if tok.HeadPOS == "AUX" {
		return "MODAL"
	}
	return "ACTIVE"
}

// TurnProfile is the per-turn positioning view.
type TurnProfile struct {
	TurnID        int            `json:"turn_id"`
	Words         int            `json:"n_words"`
	PronounCounts map[string]int `json:"pronoun_counts"`
	AgencyCounts  map[string]int `json:"agency_counts"`
	Dominant      string         `json:"dominant_agency"`
	AgencyDensity float64        `json:"agency_density"`
}

// Summarize returns one profile per respondent turn. The dominant agency
// frame is the one with the highest marker count; ties resolve
// lexicographically so repeated runs agree.
func (p *Pass) Summarize(doc *model.Document) []TurnProfile {
	var rows []TurnProfile
	for _, turn := range doc.RespondentTurns() {
		anns := doc.Annotations(model.AnnotationFilter{Module: p.Module(), TurnID: turn.ID})
		pron := make(map[string]int)
		agency := make(map[string]int)
		for _, a := range anns {
			switch {
			case strings.HasPrefix(a.Category, model.PrefixPronoun):
				pron[strings.TrimPrefix(a.Category, model.PrefixPronoun)]++
			case strings.HasPrefix(a.Category, model.PrefixSyntactic):
				// Subject roles inform the narrative reading but do not
				// count toward agency density.
			default:
				agency[a.Category]++
			}
		}
		total := 0
		for _, c := range agency {
			total += c
		}
		rows = append(rows, TurnProfile{
			TurnID:        turn.ID,
			Words:         turn.WordCount(),
			PronounCounts: pron,
			AgencyCounts:  agency,
			Dominant:      dominantAgency(agency),
			AgencyDensity: annotate.Density(total, turn.WordCount()),
		})
	}
	return rows
}

func dominantAgency(counts map[string]int) string {
	best := ""
	bestCount := 0
	for _, name := range sortedKeys(counts) {
		if counts[name] > bestCount {
			bestCount = counts[name]
			best = name
		}
	}
	return best
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
