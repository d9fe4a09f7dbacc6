package integrate

import (
	"testing"

	"github.com/jmaren/glosa/internal/affect"
	"github.com/jmaren/glosa/internal/discourse"
	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
	"github.com/jmaren/glosa/internal/narrative"
	"github.com/jmaren/glosa/internal/position"
)

const testFramebook = `
discourse_types:
  NARRATION:
    indicators:
      en: ['\bthen\b']
  ARGUMENTATION:
    indicators:
      en: ['\bbecause\b']
process_structures:
  TRAJECTORY:
    indicators:
      en: ['\bno way out\b']
  TRANSFORMATION:
    indicators:
      en: ['\bturning point\b']
agency:
  ACTIVE_AGENTIVE:
    indicators:
      en: ['\bI decided\b']
  PASSIVE_SUFFERING:
    indicators:
      en: ['\bI had to\b']
frames:
  SYSTEM_FAILURE:
    indicators:
      en: ['\bthe system failed\b']
  CALLING:
    indicators:
      en: ['\bmy calling\b']
  ECONOMIZATION:
    indicators:
      en: ['\bcost\b']
affect_dimensions:
  AMBIVALENCE:
    indicators:
      en: ['\bon the other hand\b']
  BODILY_REFERENCE:
    indicators:
      en: ['\bstomach\b']
pronouns:
  en:
    self: '\bI\b'
`

// runPasses analyzes the document with all four passes and returns a
// ready integrator.
func runPasses(t *testing.T, doc *model.Document) *Integrator {
	t.Helper()
	fb, err := framebook.Parse([]byte(testFramebook))
	if err != nil {
		t.Fatal(err)
	}
	gate := language.NewGate("en", nil, nil, nil)
	n := narrative.New(gate, fb, nil)
	p := position.New(gate, fb, nil)
	d := discourse.New(gate, fb, nil)
	a := affect.New(gate, fb, nil)
	for _, pass := range []interface {
		Analyze(*model.Document) (int, error)
	}{n, p, d, a} {
		if _, err := pass.Analyze(doc); err != nil {
			t.Fatal(err)
		}
	}
	return New(doc, n, p, d, a)
}

func turn(id int, text string) model.Turn {
	return model.Turn{ID: id, Speaker: "Respondent", SpeakerOriginal: "B", Text: text, Sentences: []string{text}}
}

func TestRun_FullReport(t *testing.T) {
	doc := model.NewDocument("d", "en", "")
	doc.Turns = []model.Turn{
		turn(1, "There was no way out and I had to stay, my stomach hurt."),
		turn(2, "Then came the turning point because I decided to leave."),
	}
	in := runPasses(t, doc)

	rep := in.Run()
	if len(rep.TurnProfiles) != 2 {
		t.Fatalf("Expected 2 turn profiles, got %d", len(rep.TurnProfiles))
	}
	if rep.Summary.DocID != "d" {
		t.Errorf("Summary missing, got %+v", rep.Summary)
	}

	p1 := rep.TurnProfiles[0]
	if !contains(p1.Flags, FlagTrajectory) {
		t.Errorf("Expected TRAJECTORY_CURVE flag on turn 1, got %v", p1.Flags)
	}
	if !contains(p1.Flags, FlagPassive) {
		t.Errorf("Expected PASSIVE flag on turn 1, got %v", p1.Flags)
	}
	p2 := rep.TurnProfiles[1]
	if !contains(p2.Flags, FlagTransform) {
		t.Errorf("Expected TRANSFORMATION flag on turn 2, got %v", p2.Flags)
	}

	if len(rep.CondensationSites) == 0 {
		t.Error("Expected condensation sites")
	}
	if rep.CondensationSites[0].Score == 0 {
		t.Error("Expected a scored top site")
	}
	if len(rep.Claims) == 0 {
		t.Error("Expected fused claims")
	}
}

func TestTriangulate_Patterns(t *testing.T) {
	in := &Integrator{}
	profiles := []TurnProfile{
		{
			TurnID:     1,
			Flags:      []string{FlagTrajectory, FlagPassive},
			AffectDens: 4.0,
			Agency:     model.AgencyPassive,
		},
		{
			TurnID: 2,
			Frames: map[string]int{"SYSTEM_FAILURE": 2},
			Agency: model.AgencyActive,
		},
		{
			TurnID:     3,
			Frames:     map[string]int{"CALLING": 1, "ECONOMIZATION": 1},
			AffectDims: []string{model.AffectAmbivalence},
		},
		{TurnID: 4},
	}

	out := in.Triangulate(profiles)
	if len(out) != 3 {
		t.Fatalf("Expected 3 matching turns, got %d", len(out))
	}

	byTurn := make(map[int][]string)
	for _, tri := range out {
		for _, pat := range tri.Patterns {
			byTurn[tri.TurnID] = append(byTurn[tri.TurnID], pat.Name)
		}
	}
	if byTurn[1][0] != "CRISIS" {
		t.Errorf("Expected CRISIS on turn 1, got %v", byTurn[1])
	}
	if byTurn[2][0] != "RESISTANCE" {
		t.Errorf("Expected RESISTANCE on turn 2, got %v", byTurn[2])
	}
	if byTurn[3][0] != "AMBIVALENT_HOLDING_ON" {
		t.Errorf("Expected AMBIVALENT_HOLDING_ON on turn 3, got %v", byTurn[3])
	}
}

func TestTriangulate_EmbodiedAffectNeedsDensity(t *testing.T) {
	in := &Integrator{}
	low := []TurnProfile{{TurnID: 1, AffectDims: []string{model.AffectBodily}, AffectDens: 2.0}}
	if got := in.Triangulate(low); got != nil {
		t.Errorf("Expected no pattern below density threshold, got %v", got)
	}
	high := []TurnProfile{{TurnID: 1, AffectDims: []string{model.AffectBodily}, AffectDens: 3.5}}
	if got := in.Triangulate(high); len(got) != 1 || got[0].Patterns[0].Name != "EMBODIED_AFFECT" {
		t.Errorf("Expected EMBODIED_AFFECT, got %v", got)
	}
}

func TestHypotheses_AgencyArc(t *testing.T) {
	in := &Integrator{}
	profiles := []TurnProfile{
		{TurnID: 1, Agency: model.AgencyActive},
		{TurnID: 2, Agency: model.AgencyActive},
		{TurnID: 3, Agency: model.AgencyPassive},
	}
	hyps := in.Hypotheses(profiles)
	if len(hyps) != 1 {
		t.Fatalf("Expected 1 hypothesis, got %d", len(hyps))
	}
	if hyps[0].Question != "Is this a biographic trajectory curve in Schütze's sense?" {
		t.Errorf("Expected trajectory-curve hypothesis, got %q", hyps[0].Question)
	}

	// Reversed order flips the reading
	reversed := []TurnProfile{
		{TurnID: 1, Agency: model.AgencyPassive},
		{TurnID: 2, Agency: model.AgencyActive},
		{TurnID: 3, Agency: model.AgencyActive},
	}
	hyps = in.Hypotheses(reversed)
	if len(hyps) != 1 || hyps[0].Question != "Is this a transformation process in Schütze's sense?" {
		t.Errorf("Expected transformation hypothesis, got %v", hyps)
	}
}

func TestHypotheses_FrameDominance(t *testing.T) {
	in := &Integrator{}
	profiles := []TurnProfile{
		{TurnID: 1, Frames: map[string]int{"ECONOMIZATION": 5, "CALLING": 1}},
		{TurnID: 2, Frames: map[string]int{"ECONOMIZATION": 3}},
	}
	hyps := in.Hypotheses(profiles)
	if len(hyps) != 1 {
		t.Fatalf("Expected 1 hypothesis, got %d: %v", len(hyps), hyps)
	}

	// Below the 35% bar: no dominance hypothesis
	balanced := []TurnProfile{
		{TurnID: 1, Frames: map[string]int{"A": 1, "B": 1, "C": 1}},
	}
	if hyps := in.Hypotheses(balanced); len(hyps) != 0 {
		t.Errorf("Expected no hypothesis for balanced frames, got %v", hyps)
	}
}

func TestHypotheses_AffectTrend(t *testing.T) {
	in := &Integrator{}
	profiles := []TurnProfile{
		{TurnID: 1, AffectDens: 1.0},
		{TurnID: 2, AffectDens: 1.0},
		{TurnID: 3, AffectDens: 2.0},
		{TurnID: 4, AffectDens: 4.0},
	}
	hyps := in.Hypotheses(profiles)
	if len(hyps) != 1 {
		t.Fatalf("Expected rising-affect hypothesis, got %d: %v", len(hyps), hyps)
	}
	if hyps[0].ToVerify != "key passage: turn 4" {
		t.Errorf("Expected the densest turn named, got %q", hyps[0].ToVerify)
	}
}

func TestCondensationSites_FlagWeight(t *testing.T) {
	in := &Integrator{}
	profiles := []TurnProfile{
		{TurnID: 1, Flags: []string{FlagTrajectory, FlagPassive}, Processes: []string{"TRAJECTORY"}},
		{TurnID: 2},
	}
	sites := in.condensationSites(profiles, 5)
	// 2 flags x3 + process structures x2 = 8
	if sites[0].TurnID != 1 || sites[0].Score != 8 {
		t.Errorf("Expected turn 1 with score 8, got turn %d score %d", sites[0].TurnID, sites[0].Score)
	}
	if sites[1].Score != 0 {
		t.Errorf("Expected empty turn unscored, got %d", sites[1].Score)
	}
}
