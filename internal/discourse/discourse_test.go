package discourse

import (
	"testing"

	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
)

const testFramebook = `
frames:
  ECONOMIZATION:
    indicators:
      en: ['\bcost\b', '\befficiency\b']
  LEGITIMACY_JUSTICE:
    indicators:
      en: ['\bunfair\b', '\bdeserve\b']
  VULNERABILITY:
    indicators:
      en: ['\bfragile\b']
topoi:
  TIME_PRESSURE:
    indicators:
      en: ['\bno time\b']
frame_priorities:
  LEGITIMACY_JUSTICE: 20
frame_conflicts:
  - if_present: LEGITIMACY_JUSTICE
    downweight: ECONOMIZATION
    downweight_factor: 0.5
frame_tensions:
  - frame_a: LEGITIMACY_JUSTICE
    frame_b: ECONOMIZATION
    description: justice vs. efficiency
`

func newTestPass(t *testing.T) *Pass {
	t.Helper()
	fb, err := framebook.Parse([]byte(testFramebook))
	if err != nil {
		t.Fatal(err)
	}
	return New(language.NewGate("en", nil, nil, nil), fb, nil)
}

func docWithTexts(texts ...string) *model.Document {
	doc := model.NewDocument("d", "en", "")
	for i, text := range texts {
		doc.Turns = append(doc.Turns, model.Turn{
			ID: i + 1, Speaker: "Respondent", SpeakerOriginal: "B",
			Text: text, Sentences: []string{text},
		})
	}
	return doc
}

func TestAnalyze_FramesAndTopoi(t *testing.T) {
	p := newTestPass(t)
	doc := docWithTexts("The cost was unfair and there was no time.")

	n, err := p.Analyze(doc)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("Expected 3 annotations, got %d", n)
	}

	row := p.Summarize(doc)[0]
	if row.Frames["ECONOMIZATION"] != 1 || row.Frames["LEGITIMACY_JUSTICE"] != 1 {
		t.Errorf("Frame counts wrong: %v", row.Frames)
	}
	if row.Topoi["TOPOS_TIME_PRESSURE"] != 1 {
		t.Errorf("Expected prefixed topos count, got %v", row.Topoi)
	}
	if row.ActiveFrames != 2 {
		t.Errorf("Topoi must not count as frames, got %d active", row.ActiveFrames)
	}
}

func TestApplyConflicts(t *testing.T) {
	p := newTestPass(t)

	adjusted := p.applyConflicts(map[string]int{"ECONOMIZATION": 4, "LEGITIMACY_JUSTICE": 1})
	if adjusted["ECONOMIZATION"] != 2.0 {
		t.Errorf("Expected downweight 4*0.5=2, got %v", adjusted["ECONOMIZATION"])
	}
	if adjusted["LEGITIMACY_JUSTICE"] != 1.0 {
		t.Errorf("Trigger frame must stay untouched, got %v", adjusted["LEGITIMACY_JUSTICE"])
	}

	// No trigger present: no downweight
	adjusted = p.applyConflicts(map[string]int{"ECONOMIZATION": 4})
	if adjusted["ECONOMIZATION"] != 4.0 {
		t.Errorf("Expected raw count without trigger, got %v", adjusted["ECONOMIZATION"])
	}
}

func TestDominant(t *testing.T) {
	p := newTestPass(t)

	if got := p.dominant(map[string]float64{}); got != "-" {
		t.Errorf("Expected '-' for empty input, got %q", got)
	}
	if got := p.dominant(map[string]float64{"ECONOMIZATION": 3, "VULNERABILITY": 1}); got != "ECONOMIZATION" {
		t.Errorf("Expected highest adjusted count, got %q", got)
	}
	// Tie on adjusted count: higher configured priority wins
	if got := p.dominant(map[string]float64{"ECONOMIZATION": 2, "LEGITIMACY_JUSTICE": 2}); got != "LEGITIMACY_JUSTICE" {
		t.Errorf("Expected priority tie-break, got %q", got)
	}
	// Tie on count and priority: lexicographic
	if got := p.dominant(map[string]float64{"VULNERABILITY": 2, "ECONOMIZATION": 2}); got != "ECONOMIZATION" {
		t.Errorf("Expected lexicographic tie-break, got %q", got)
	}
}

func TestClaims_CoOccurrenceAndTension(t *testing.T) {
	p := newTestPass(t)
	doc := docWithTexts(
		"The cost felt unfair.",
		"Efficiency first, they said, which was unfair.",
		"Nothing relevant.",
	)
	if _, err := p.Analyze(doc); err != nil {
		t.Fatal(err)
	}

	claims := p.Claims(doc)

	var kinds []string
	for _, c := range claims {
		kinds = append(kinds, c.Kind)
	}

	var co *Claim
	for i := range claims {
		if claims[i].Kind == ClaimCoOccurrence {
			co = &claims[i]
			break
		}
	}
	if co == nil {
		t.Fatalf("Expected a co-occurrence claim, kinds: %v", kinds)
	}
	if len(co.Turns) != 2 || co.Strength != 2 {
		t.Errorf("Expected pair in 2 turns, got turns=%v strength=%v", co.Turns, co.Strength)
	}

	var tension *Claim
	for i := range claims {
		if claims[i].Kind == ClaimTension {
			tension = &claims[i]
			break
		}
	}
	if tension == nil {
		t.Fatalf("Expected a tension claim, kinds: %v", kinds)
	}
	if tension.Description != "frame tension: justice vs. efficiency" {
		t.Errorf("Unexpected tension description: %q", tension.Description)
	}

	// Sorted strongest first
	for i := 1; i < len(claims); i++ {
		if claims[i].Strength > claims[i-1].Strength {
			t.Errorf("Claims not sorted by strength: %v then %v", claims[i-1].Strength, claims[i].Strength)
		}
	}
}

func TestClaims_Dominance(t *testing.T) {
	p := newTestPass(t)
	doc := docWithTexts("Cost, cost and more cost.", "The cost of efficiency.")
	if _, err := p.Analyze(doc); err != nil {
		t.Fatal(err)
	}

	claims := p.Claims(doc)
	var dom *Claim
	for i := range claims {
		if claims[i].Kind == ClaimDominance {
			dom = &claims[i]
			break
		}
	}
	if dom == nil {
		t.Fatal("Expected a dominance claim for a single-frame interview")
	}
	if dom.Frames[0] != "ECONOMIZATION" {
		t.Errorf("Expected ECONOMIZATION dominant, got %v", dom.Frames)
	}
}

func TestTrajectoryClaims_NeedThreeTurns(t *testing.T) {
	p := newTestPass(t)
	doc := docWithTexts("The cost.", "Unfair.")
	if _, err := p.Analyze(doc); err != nil {
		t.Fatal(err)
	}
	if got := p.trajectoryClaims(doc); got != nil {
		t.Errorf("Expected no trajectory for 2 turns, got %v", got)
	}
}

func TestTrajectoryClaims_ShiftAndGrowth(t *testing.T) {
	p := newTestPass(t)
	// First third carries only ECONOMIZATION, the last third only
	// LEGITIMACY_JUSTICE.
	doc := docWithTexts(
		"The cost was everything.",
		"Middle turn without frame markers.",
		"It was unfair, unfair and unfair again, we deserve better.",
	)
	if _, err := p.Analyze(doc); err != nil {
		t.Fatal(err)
	}

	claims := p.trajectoryClaims(doc)
	var shift *Claim
	for i := range claims {
		if claims[i].Kind == ClaimTrajectory {
			shift = &claims[i]
		}
	}
	if shift == nil {
		t.Fatalf("Expected a frame-shift claim, got %v", claims)
	}
	if shift.Strength != 2 {
		t.Errorf("Expected strength 2 (one early-only + one late-only), got %v", shift.Strength)
	}
}
