package integrate

import (
	"fmt"
	"sort"

	"github.com/jmaren/glosa/internal/model"
)

// Hypothesis is a check question derived from the overall picture.
// Phrased as "there are indications of X, verify against Y" rather than
// as a finding.
type Hypothesis struct {
	Statement string `json:"statement"`
	Evidence  string `json:"evidence"`
	Question  string `json:"question"`
	ToVerify  string `json:"to_verify"`
}

// Hypotheses derives interview-level hypotheses from the merged turn
// profiles: the agency arc, frame dominance, and the affect trend.
func (in *Integrator) Hypotheses(profiles []TurnProfile) []Hypothesis {
	var out []Hypothesis
	if len(profiles) == 0 {
		return out
	}

	if h, ok := agencyArc(profiles); ok {
		out = append(out, h)
	}
	if h, ok := frameDominance(profiles); ok {
		out = append(out, h)
	}
	if h, ok := affectTrend(profiles); ok {
		out = append(out, h)
	}
	return out
}

// agencyArc compares the mean positions of actively and passively
// dominated turns. Earlier active turns suggest a trajectory curve,
// earlier passive turns a transformation dynamic.
func agencyArc(profiles []TurnProfile) (Hypothesis, bool) {
	var activeIdx, passiveIdx []int
	for i, p := range profiles {
		switch p.Agency {
		case model.AgencyActive:
			activeIdx = append(activeIdx, i)
		case model.AgencyPassive:
			passiveIdx = append(passiveIdx, i)
		}
	}
	if len(activeIdx) == 0 || len(passiveIdx) == 0 {
		return Hypothesis{}, false
	}
	avgActive := mean(activeIdx)
	avgPassive := mean(passiveIdx)

	switch {
	case avgActive < avgPassive:
		return Hypothesis{
			Statement: "the interview shows a possible trajectory curve: active agency early on gives way to a suffering mode",
			Evidence:  "active agency dominant in early turns, passive in later ones",
			Question:  "Is this a biographic trajectory curve in Schütze's sense?",
			ToVerify:  "read the original passages in the flagged turns",
		}, true
	case avgPassive < avgActive:
		return Hypothesis{
			Statement: "the interview shows a possible transformation dynamic: from passive suffering to active shaping",
			Evidence:  "passive agency dominant in early turns, active in later ones",
			Question:  "Is this a transformation process in Schütze's sense?",
			ToVerify:  "where exactly does the perspective tip, and is there a trigger?",
		}, true
	}
	return Hypothesis{}, false
}

// frameDominance flags a frame carrying more than 35% of all raw frame
// markers across the interview.
func frameDominance(profiles []TurnProfile) (Hypothesis, bool) {
	totals := make(map[string]int)
	sum := 0
	for _, p := range profiles {
		for f, c := range p.Frames {
			totals[f] += c
			sum += c
		}
	}
	if sum == 0 {
		return Hypothesis{}, false
	}
	dominant := ""
	for _, f := range sortedFrameNames(totals) {
		if dominant == "" || totals[f] > totals[dominant] {
			dominant = f
		}
	}
	pct := float64(totals[dominant]) / float64(sum) * 100
	if pct <= 35 {
		return Hypothesis{}, false
	}
	return Hypothesis{
		Statement: fmt.Sprintf("the frame %s dominates the interview (%.0f%%); it may be the respondent's central interpretive frame", dominant, pct),
		Evidence:  fmt.Sprintf("frame distribution: %v", totals),
		Question:  fmt.Sprintf("Is %s a genuine interpretation or an effect of how the interview was conducted?", dominant),
		ToVerify:  "does the frame recur in answers to different questions?",
	}, true
}

// affectTrend flags a rising affective intensity: the second half of
// the interview carrying more than 1.5 times the first half's density
// sum. Needs at least three turns.
func affectTrend(profiles []TurnProfile) (Hypothesis, bool) {
	if len(profiles) < 3 {
		return Hypothesis{}, false
	}
	half := len(profiles) / 2
	first, second := 0.0, 0.0
	for i, p := range profiles {
		if i < half {
			first += p.AffectDens
		} else {
			second += p.AffectDens
		}
	}
	if second <= first*1.5 {
		return Hypothesis{}, false
	}
	keyTurn := profiles[0].TurnID
	maxDens := -1.0
	for _, p := range profiles {
		if p.AffectDens > maxDens {
			maxDens = p.AffectDens
			keyTurn = p.TurnID
		}
	}
	return Hypothesis{
		Statement: "affective intensity rises over the interview; the conversation may be moving toward an emotionally charged core issue",
		Evidence:  fmt.Sprintf("first half: %.1f, second half: %.1f", first, second),
		Question:  "Do the interview questions steer there, or does the respondent open up gradually?",
		ToVerify:  fmt.Sprintf("key passage: turn %d", keyTurn),
	}, true
}

func sortedFrameNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for f := range m {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

func mean(idx []int) float64 {
	sum := 0
	for _, i := range idx {
		sum += i
	}
	return float64(sum) / float64(len(idx))
}
