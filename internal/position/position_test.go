package position

import (
	"strings"
	"testing"

	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
)

const testFramebook = `
agency:
  ACTIVE_AGENTIVE:
    indicators:
      en: ['\bI decided\b', '\bI chose\b']
  PASSIVE_SUFFERING:
    indicators:
      en: ['\bI had to\b', '\bthey made me\b']
pronouns:
  en:
    self: '\bI\b'
    we: '\bwe\b'
    generic_one: '\bone\b'
`

type fixedParser struct {
	tokens []language.Token
}

func (f *fixedParser) Subjects(text string) ([]language.Token, error) {
	return f.tokens, nil
}

func newTestPass(t *testing.T, parser language.DependencyParser) *Pass {
	t.Helper()
	fb, err := framebook.Parse([]byte(testFramebook))
	if err != nil {
		t.Fatal(err)
	}
	return New(language.NewGate("en", parser, nil, nil), fb, nil)
}

func docWithText(text string) *model.Document {
	doc := model.NewDocument("d", "en", text)
	doc.Turns = []model.Turn{
		{ID: 1, Speaker: "Respondent", SpeakerOriginal: "B", Text: text, Sentences: []string{text}},
	}
	return doc
}

func TestAnalyze_PronounsAndAgency(t *testing.T) {
	p := newTestPass(t, nil)
	doc := docWithText("I had to leave because they made me, but we stayed close and I decided to return.")

	if _, err := p.Analyze(doc); err != nil {
		t.Fatal(err)
	}

	rows := p.Summarize(doc)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 profile, got %d", len(rows))
	}
	row := rows[0]
	if row.PronounCounts["SELF"] != 2 {
		t.Errorf("Expected 2 SELF pronouns, got %d", row.PronounCounts["SELF"])
	}
	if row.PronounCounts["WE"] != 1 {
		t.Errorf("Expected 1 WE pronoun, got %d", row.PronounCounts["WE"])
	}
	if row.AgencyCounts[model.AgencyPassive] != 2 {
		t.Errorf("Expected 2 passive markers, got %d", row.AgencyCounts[model.AgencyPassive])
	}
	if row.Dominant != model.AgencyPassive {
		t.Errorf("Expected passive dominance, got %q", row.Dominant)
	}
	if row.AgencyDensity <= 0 {
		t.Error("Expected positive agency density")
	}
}

func TestDominantAgency_TieIsLexicographic(t *testing.T) {
	got := dominantAgency(map[string]int{
		"PASSIVE_SUFFERING": 2,
		"ACTIVE_AGENTIVE":   2,
	})
	if got != "ACTIVE_AGENTIVE" {
		t.Errorf("Expected lexicographic tie-break, got %q", got)
	}
	if got := dominantAgency(nil); got != "" {
		t.Errorf("Expected empty dominant for no markers, got %q", got)
	}
}

func TestAnalyze_SyntacticSubjects(t *testing.T) {
	text := "I was sent away."
	parser := &fixedParser{tokens: []language.Token{
		{Text: "I", Lemma: "i", Offset: 0, Dep: "nsubj:pass", HeadText: "sent", HeadPOS: "VERB"},
	}}
	p := newTestPass(t, parser)
	doc := docWithText(text)

	if _, err := p.Analyze(doc); err != nil {
		t.Fatal(err)
	}

	var syn []model.Annotation
	for _, a := range doc.Annotations(model.AnnotationFilter{Module: model.ModulePosition}) {
		if strings.HasPrefix(a.Category, model.PrefixSyntactic) {
			syn = append(syn, a)
		}
	}
	if len(syn) != 1 {
		t.Fatalf("Expected 1 syntactic annotation, got %d", len(syn))
	}
	if syn[0].Category != "SYN_SELF_PASSIVE" {
		t.Errorf("Expected SYN_SELF_PASSIVE, got %q", syn[0].Category)
	}
	if syn[0].Confidence != model.ConfidenceSyntactic {
		t.Errorf("Expected syntactic confidence, got %q", syn[0].Confidence)
	}

	// Syntactic annotations stay out of the agency counts
	row := p.Summarize(doc)[0]
	if len(row.AgencyCounts) != 0 {
		t.Errorf("Syntactic categories must not count as agency, got %v", row.AgencyCounts)
	}
}

func TestVoiceOf(t *testing.T) {
	if got := voiceOf(language.Token{Dep: "nsubj:pass"}); got != "PASSIVE" {
		t.Errorf("Expected PASSIVE, got %q", got)
	}
	if got := voiceOf(language.Token{Dep: "nsubj", AuxLemmas: []string{"must"}}); got != "MODAL" {
		t.Errorf("Expected MODAL, got %q", got)
	}
	if got := voiceOf(language.Token{Dep: "nsubj"}); got != "ACTIVE" {
		t.Errorf("Expected ACTIVE, got %q", got)
	}
}

func TestReferentClass(t *testing.T) {
	cases := map[string]string{"i": "SELF", "we": "WE", "one": "GENERIC", "they": "OTHER", "table": ""}
	for lemma, want := range cases {
		if got := referentClass(lemma); got != want {
			t.Errorf("referentClass(%q) = %q, want %q", lemma, got, want)
		}
	}
}
