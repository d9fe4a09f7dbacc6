package discourse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmaren/glosa/internal/model"
)

// Claim kinds produced by this pass.
const (
	ClaimCoOccurrence = "CO_OCCURRENCE"
	ClaimTrajectory   = "TRAJECTORY_SHIFT"
	ClaimGrowing      = "TRAJECTORY_GROWING"
	ClaimShrinking    = "TRAJECTORY_SHRINKING"
	ClaimTension      = "TENSION"
	ClaimDominance    = "DOMINANCE"
)

// Claim is an analytic proposal derived from the annotations, not a
// finding. Each carries its evidence and a follow-up question for the
// researcher to check it against the material.
type Claim struct {
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Turns       []int    `json:"turns"`
	Frames      []string `json:"frames"`
	Strength    float64  `json:"strength"`
	Question    string   `json:"question"`
}

// Claims generates all claim families and returns them ordered by
// strength, strongest first.
func (p *Pass) Claims(doc *model.Document) []Claim {
	var claims []Claim
	claims = append(claims, p.coOccurrenceClaims(doc)...)
	claims = append(claims, p.trajectoryClaims(doc)...)
	claims = append(claims, p.tensionClaims(doc)...)
	claims = append(claims, p.dominanceClaims(doc)...)
	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].Strength > claims[j].Strength
	})
	return claims
}

// coOccurrenceClaims reports frame pairs that appear together in at
// least two turns.
func (p *Pass) coOccurrenceClaims(doc *model.Document) []Claim {
	pairTurns := make(map[[2]string][]int)
	for _, turn := range doc.RespondentTurns() {
		present := framesInTurn(doc, p.Module(), turn.ID)
		names := make([]string, 0, len(present))
		for f := range present {
			names = append(names, f)
		}
		sort.Strings(names)
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				pair := [2]string{names[i], names[j]}
				pairTurns[pair] = append(pairTurns[pair], turn.ID)
			}
		}
	}

	pairs := make([][2]string, 0, len(pairTurns))
	for pair := range pairTurns {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	var claims []Claim
	for _, pair := range pairs {
		turns := pairTurns[pair]
		if len(turns) < 2 {
			continue
		}
		claims = append(claims, Claim{
			Kind:        ClaimCoOccurrence,
			Description: fmt.Sprintf("frames %s and %s co-occur in %d turns", pair[0], pair[1], len(turns)),
			Evidence:    fmt.Sprintf("turns: %v", turns),
			Turns:       turns,
			Frames:      []string{pair[0], pair[1]},
			Strength:    float64(len(turns)),
			Question: fmt.Sprintf("Is there a systematic link between %s and %s, or do they stand in tension?",
				pair[0], pair[1]),
		})
	}
	return claims
}

// trajectoryClaims compares the first and last third of the interview.
// Fewer than three respondent turns give no trajectory.
func (p *Pass) trajectoryClaims(doc *model.Document) []Claim {
	summary := p.Summarize(doc)
	if len(summary) < 3 {
		return nil
	}
	third := len(summary) / 3
	early := sumFrames(summary[:third])
	late := sumFrames(summary[len(summary)-third:])

	var claims []Claim

	onlyEarly := exclusiveFrames(early, late)
	onlyLate := exclusiveFrames(late, early)
	if len(onlyEarly)+len(onlyLate) > 0 {
		claims = append(claims, Claim{
			Kind: ClaimTrajectory,
			Description: fmt.Sprintf("frame shift across the interview: early-only %v, late-only %v",
				onlyEarly, onlyLate),
			Evidence: fmt.Sprintf("first third: %s | last third: %s", fmtCounts(early), fmtCounts(late)),
			Frames:   append(append([]string{}, onlyEarly...), onlyLate...),
			Strength: float64(len(onlyEarly) + len(onlyLate)),
			Question: "Does the frame shift coincide with a narrative turning point or an agency shift?",
		})
	}

	for _, frame := range unionFrames(early, late) {
		a, b := early[frame], late[frame]
		switch {
		case b > a+1:
			claims = append(claims, Claim{
				Kind:        ClaimGrowing,
				Description: fmt.Sprintf("frame %s grows over the interview (%d to %d)", frame, a, b),
				Evidence:    fmt.Sprintf("first third: %d, last third: %d", a, b),
				Frames:      []string{frame},
				Strength:    float64(b - a),
				Question:    fmt.Sprintf("Why does %s gain presence: interviewer prompting or an inner dynamic?", frame),
			})
		case a > b+1:
			claims = append(claims, Claim{
				Kind:        ClaimShrinking,
				Description: fmt.Sprintf("frame %s recedes over the interview (%d to %d)", frame, a, b),
				Evidence:    fmt.Sprintf("first third: %d, last third: %d", a, b),
				Frames:      []string{frame},
				Strength:    float64(a - b),
				Question:    fmt.Sprintf("Why does %s lose presence: is another frame taking over?", frame),
			})
		}
	}
	return claims
}

// tensionClaims checks the framebook's configured frame tensions.
func (p *Pass) tensionClaims(doc *model.Document) []Claim {
	var claims []Claim
	for _, tension := range p.fb.FrameTensions {
		var turns []int
		for _, turn := range doc.RespondentTurns() {
			present := framesInTurn(doc, p.Module(), turn.ID)
			if present[tension.FrameA] && present[tension.FrameB] {
				turns = append(turns, turn.ID)
			}
		}
		if len(turns) == 0 {
			continue
		}
		desc := tension.Description
		if desc == "" {
			desc = tension.FrameA + " vs. " + tension.FrameB
		}
		claims = append(claims, Claim{
			Kind:        ClaimTension,
			Description: "frame tension: " + desc,
			Evidence:    fmt.Sprintf("both frames co-occur in turns: %v", turns),
			Turns:       turns,
			Frames:      []string{tension.FrameA, tension.FrameB},
			Strength:    float64(len(turns)),
			Question: fmt.Sprintf("How does the respondent handle the tension between %s and %s: resolution, endurance, suppression?",
				tension.FrameA, tension.FrameB),
		})
	}
	return claims
}

// dominanceClaims reports a frame holding more than 40% of the
// conflict-weighted markers. When downweighting changed which frame is
// on top, the raw dominant is noted alongside.
func (p *Pass) dominanceClaims(doc *model.Document) []Claim {
	raw, adjusted := p.DocumentAdjusted(doc)
	if len(raw) == 0 {
		return nil
	}
	totalAdj := 0.0
	for _, v := range adjusted {
		totalAdj += v
	}
	if totalAdj == 0 {
		return nil
	}
	dominant := p.dominant(adjusted)
	pct := adjusted[dominant] / totalAdj * 100
	if pct <= 40 {
		return nil
	}

	note := ""
	rawDominant := rawMax(raw)
	if rawDominant != dominant {
		rawTotal := 0
		for _, c := range raw {
			rawTotal += c
		}
		rawPct := float64(raw[rawDominant]) / float64(rawTotal) * 100
		note = fmt.Sprintf(" (without conflict weighting %s would dominate at %.0f%%)", rawDominant, rawPct)
	}

	return []Claim{{
		Kind: ClaimDominance,
		Description: fmt.Sprintf("frame %s dominates the interview (%.0f%% of weighted frame markers)%s",
			dominant, pct, note),
		Evidence: "raw: " + fmtCounts(raw) + " | adjusted: " + fmtAdjusted(adjusted),
		Frames:   []string{dominant},
		Strength: float64(int(pct + 0.5)),
		Question: fmt.Sprintf("Is %s the respondent's central interpretive frame, or an artifact of the interview questions?",
			dominant),
	}}
}

func sumFrames(rows []TurnProfile) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		for f, c := range r.Frames {
			counts[f] += c
		}
	}
	return counts
}

func exclusiveFrames(in, notIn map[string]int) []string {
	var out []string
	for f := range in {
		if _, ok := notIn[f]; !ok {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func unionFrames(a, b map[string]int) []string {
	set := make(map[string]bool)
	for f := range a {
		set[f] = true
	}
	for f := range b {
		set[f] = true
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func rawMax(counts map[string]int) string {
	best := ""
	bestCount := -1
	names := make([]string, 0, len(counts))
	for f := range counts {
		names = append(names, f)
	}
	sort.Strings(names)
	for _, f := range names {
		if counts[f] > bestCount {
			bestCount = counts[f]
			best = f
		}
	}
	return best
}

func fmtAdjusted(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%.1f", k, m[k])
	}
	return strings.Join(parts, ", ")
}
