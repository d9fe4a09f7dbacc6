// Package justice models social (in)justice as a relational pattern
// between claim frames and structure frames. It writes no annotations
// of its own: it sits on top of the position, discourse, and affect
// passes and computes tension profiles from their results. All outputs
// are proposals for the researcher, not findings.
package justice

import (
	"math"
	"sort"
	"sync"

	"github.com/jmaren/glosa/internal/affect"
	"github.com/jmaren/glosa/internal/annotate"
	"github.com/jmaren/glosa/internal/discourse"
	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/model"
	"github.com/jmaren/glosa/internal/position"
)

// Trajectory verdicts for the tension curve across an interview.
const (
	TrajectoryRising       = "RISING"
	TrajectoryFalling      = "FALLING"
	TrajectoryStable       = "STABLE"
	TrajectoryInsufficient = "INSUFFICIENT_DATA"
	TrajectoryNone         = "NONE"
)

// axisLabels gives readable names to the tension axes of the standard
// framebook. Unlisted axes fall back to "A × S".
var axisLabels = map[[2]string]string{
	{"LEGITIMACY_JUSTICE", "ECONOMIZATION"}:                 "fairness vs. market logic",
	{"LEGITIMACY_JUSTICE", "EXCLUSION_OTHERING"}:            "rights vs. exclusion",
	{"LEGITIMACY_JUSTICE", "BUREAUCRATIC_ORDER"}:            "dignity vs. procedure",
	{"LEGITIMACY_JUSTICE", "INSTITUTIONAL_LOGIC"}:           "justice vs. system logic",
	{"AUTONOMY_SELF_DETERMINATION", "ECONOMIZATION"}:        "self-determination vs. cost pressure",
	{"AUTONOMY_SELF_DETERMINATION", "BUREAUCRATIC_ORDER"}:   "capacity to act vs. bureaucracy",
	{"AUTONOMY_SELF_DETERMINATION", "EXCLUSION_OTHERING"}:   "participation vs. exclusion",
	{"AUTONOMY_SELF_DETERMINATION", "INSTITUTIONAL_LOGIC"}:  "autonomy vs. system constraint",
	{"SOLIDARITY_COMMUNITY", "ECONOMIZATION"}:               "community vs. market logic",
	{"SOLIDARITY_COMMUNITY", "EXCLUSION_OTHERING"}:          "cohesion vs. division",
	{"SOLIDARITY_COMMUNITY", "BUREAUCRATIC_ORDER"}:          "solidarity vs. procedural logic",
	{"SOLIDARITY_COMMUNITY", "INSTITUTIONAL_LOGIC"}:         "community vs. system",
}

// AxisLabel returns the readable label for a claim/structure frame
// pair.
func AxisLabel(aFrame, sFrame string) string {
	if l, ok := axisLabels[[2]string{aFrame, sFrame}]; ok {
		return l
	}
	return aFrame + " × " + sFrame
}

// Analyzer computes (in)justice tension profiles for one document.
type Analyzer struct {
	doc       *model.Document
	position  *position.Pass
	discourse *discourse.Pass
	affect    *affect.Pass

	claimFrames     map[string]bool
	structureFrames map[string]bool
	amplifying      map[string]bool
	dampening       map[string]bool
	classified      map[string]bool

	mu          sync.Mutex
	memoRev     uint64
	memoTurns   []TurnProfile
	memoProfile *InterviewProfile
}

// New creates an analyzer. The frame classification comes from the
// framebook, with built-in defaults when the framebook carries none.
func New(doc *model.Document, pos *position.Pass, disc *discourse.Pass, aff *affect.Pass, fb *framebook.Framebook) *Analyzer {
	cls := fb.EffectiveClassification()
	a := &Analyzer{
		doc:             doc,
		position:        pos,
		discourse:       disc,
		affect:          aff,
		claimFrames:     toSet(cls.Claim),
		structureFrames: toSet(cls.Structure),
		amplifying:      toSet(cls.Context.Amplifying),
		dampening:       toSet(cls.Context.Dampening),
	}
	a.classified = make(map[string]bool)
	for _, group := range [][]string{cls.Claim, cls.Structure, cls.Context.Amplifying, cls.Context.Dampening, cls.Context.Neutral} {
		for _, f := range group {
			a.classified[f] = true
		}
	}
	return a
}

// AxisTension is one claim/structure pairing inside a turn.
type AxisTension struct {
	AFrame      string   `json:"a_frame"`
	SFrame      string   `json:"s_frame"`
	Label       string   `json:"label"`
	Intensity   float64  `json:"intensity"`
	OverlayTags []string `json:"overlay_tags,omitempty"`
}

// TurnProfile is the tension profile of one respondent turn. All
// multiplier inputs are retained so the score stays auditable.
type TurnProfile struct {
	TurnID        int            `json:"turn_id"`
	AFrames       map[string]int `json:"a_frames"`
	SFrames       map[string]int `json:"s_frames"`
	ATotal        int            `json:"a_total"`
	STotal        int            `json:"s_total"`
	Base          float64        `json:"base"`
	AffectMult    float64        `json:"affect_mult"`
	AgencyMult    float64        `json:"agency_mult"`
	AgencyLabel   string         `json:"agency_label"`
	ContextMult   float64        `json:"context_mult"`
	ContextFrames []string       `json:"context_frames,omitempty"`
	Intensity     float64        `json:"intensity"`
	IntensityNorm float64        `json:"intensity_norm"`
	TensionAxes   []AxisTension  `json:"tension_axes,omitempty"`
	OverlayTags   []string       `json:"overlay_tags,omitempty"`
	IsSite        bool           `json:"is_justice_site"`
	Strong        bool           `json:"is_justice_site_strong"`
	TextPreview   string         `json:"text_preview"`
}

// TurnProfiles computes the per-turn tension profiles. Results are
// memoized against the document's annotation revision; adding
// annotations invalidates the memo.
func (ja *Analyzer) TurnProfiles() []TurnProfile {
	ja.mu.Lock()
	defer ja.mu.Unlock()
	ja.computeLocked()
	return ja.memoTurns
}

// InterviewProfile aggregates the turn profiles, memoized the same way.
func (ja *Analyzer) InterviewProfile() *InterviewProfile {
	ja.mu.Lock()
	defer ja.mu.Unlock()
	ja.computeLocked()
	return ja.memoProfile
}

func (ja *Analyzer) computeLocked() {
	rev := ja.doc.Revision()
	if ja.memoProfile != nil && ja.memoRev == rev {
		return
	}
	turns := ja.computeTurnProfiles()
	ja.memoProfile = ja.aggregate(turns)
	ja.memoTurns = turns
	ja.memoRev = rev
}

func (ja *Analyzer) computeTurnProfiles() []TurnProfile {
	posRows := make(map[int]position.TurnProfile)
	for _, r := range ja.position.Summarize(ja.doc) {
		posRows[r.TurnID] = r
	}
	discRows := make(map[int]discourse.TurnProfile)
	for _, r := range ja.discourse.Summarize(ja.doc) {
		discRows[r.TurnID] = r
	}
	affRows := make(map[int]affect.TurnProfile)
	for _, r := range ja.affect.Summarize(ja.doc) {
		affRows[r.TurnID] = r
	}

	var profiles []TurnProfile
	for _, turn := range ja.doc.RespondentTurns() {
		frames := discRows[turn.ID].Frames

		aCounts := make(map[string]int)
		sCounts := make(map[string]int)
		overlay := make([]string, 0)
		var context []string
		for _, f := range sortedKeys(frames) {
			switch {
			case ja.claimFrames[f]:
				aCounts[f] = frames[f]
			case ja.structureFrames[f]:
				sCounts[f] = frames[f]
			case ja.amplifying[f] || ja.dampening[f]:
				context = append(context, f)
			case !ja.classified[f]:
				overlay = append(overlay, f)
			}
		}
		aTotal := sumCounts(aCounts)
		sTotal := sumCounts(sCounts)

		p := TurnProfile{
			TurnID:      turn.ID,
			AFrames:     aCounts,
			SFrames:     sCounts,
			ATotal:      aTotal,
			STotal:      sTotal,
			AffectMult:  1.0,
			AgencyMult:  1.0,
			AgencyLabel: "-",
			ContextMult: 1.0,
			OverlayTags: overlay,
			TextPreview: annotate.Preview(turn.Text, 120),
		}

		// The tension exists only where claim and structure meet: either
		// side empty gives a zero base and no site.
		base := math.Sqrt(float64(aTotal * sTotal))
		if base == 0 {
			profiles = append(profiles, p)
			continue
		}

		affectMult := math.Min(1.0+affRows[turn.ID].Density/100, 1.25)
		agencyLabel := posRows[turn.ID].Dominant
		agencyMult := 1.0
		switch agencyLabel {
		case model.AgencyPassive:
			agencyMult = 1.2
		case model.AgencyReflective:
			agencyMult = 1.1
		}
		contextMult := 1.0
		for _, f := range context {
			if ja.amplifying[f] {
				contextMult *= 1.10
			} else {
				contextMult *= 0.90
			}
		}

		intensity := base * affectMult * agencyMult * contextMult
		textLen := len(turn.Text)
		if textLen < 1 {
			textLen = 1
		}
		intensityNorm := intensity / (float64(textLen) / 1000)

		var axes []AxisTension
		for _, af := range sortedKeys(aCounts) {
			for _, sf := range sortedKeys(sCounts) {
				axes = append(axes, AxisTension{
					AFrame:      af,
					SFrame:      sf,
					Label:       AxisLabel(af, sf),
					Intensity:   round2(math.Sqrt(float64(aCounts[af]*sCounts[sf])) * affectMult * agencyMult * contextMult),
					OverlayTags: overlay,
				})
			}
		}
		sort.SliceStable(axes, func(i, j int) bool { return axes[i].Intensity > axes[j].Intensity })

		p.Base = round2(base)
		p.AffectMult = round3(affectMult)
		p.AgencyMult = agencyMult
		p.AgencyLabel = orDash(agencyLabel)
		p.ContextMult = round2(contextMult)
		p.ContextFrames = context
		p.Intensity = round2(intensity)
		p.IntensityNorm = round2(intensityNorm)
		p.TensionAxes = axes
		p.IsSite = true
		profiles = append(profiles, p)
	}
	return profiles
}

// AxisSummary aggregates one tension axis over the interview.
type AxisSummary struct {
	AFrame         string   `json:"a_frame"`
	SFrame         string   `json:"s_frame"`
	Label          string   `json:"label"`
	Count          int      `json:"count"`
	TotalIntensity float64  `json:"total_intensity"`
	Turns          []int    `json:"turns"`
	OverlayTags    []string `json:"overlay_tags,omitempty"`
}

// InterviewProfile is the aggregated (in)justice profile.
type InterviewProfile struct {
	Score           float64       `json:"justice_score"`
	Density         float64       `json:"justice_density"`
	Sites           int           `json:"n_justice_sites"`
	TurnsTotal      int           `json:"n_turns_total"`
	PeakTurns       []int         `json:"peak_turns"`
	DominantTension *AxisSummary  `json:"dominant_tension,omitempty"`
	Trajectory      string        `json:"trajectory"`
	Axes            []AxisSummary `json:"tension_axes"`
	StrongThreshold float64       `json:"justice_site_strong_threshold"`
}

func (ja *Analyzer) aggregate(profiles []TurnProfile) *InterviewProfile {
	var sites []*TurnProfile
	for i := range profiles {
		if profiles[i].IsSite {
			sites = append(sites, &profiles[i])
		}
	}
	nTotal := len(profiles)
	if len(sites) == 0 {
		return &InterviewProfile{
			TurnsTotal: nTotal,
			PeakTurns:  []int{},
			Trajectory: TrajectoryNone,
			Axes:       []AxisSummary{},
		}
	}

	total := 0.0
	for _, p := range sites {
		total += p.IntensityNorm
	}
	density := float64(len(sites)) / float64(nTotal)

	byIntensity := make([]*TurnProfile, len(sites))
	copy(byIntensity, sites)
	sort.SliceStable(byIntensity, func(i, j int) bool {
		return byIntensity[i].IntensityNorm > byIntensity[j].IntensityNorm
	})
	var peaks []int
	for i := 0; i < len(byIntensity) && i < 3; i++ {
		peaks = append(peaks, byIntensity[i].TurnID)
	}

	// P75 threshold: ascending sort, index at 75% of the length. Sites
	// at or above it count as strong.
	intensities := make([]float64, len(sites))
	for i, p := range sites {
		intensities[i] = p.IntensityNorm
	}
	sort.Float64s(intensities)
	threshold := intensities[int(float64(len(intensities))*0.75)]
	for _, p := range sites {
		p.Strong = p.IntensityNorm >= threshold
	}

	axisAgg := make(map[[2]string]*AxisSummary)
	for _, p := range sites {
		for _, ax := range p.TensionAxes {
			key := [2]string{ax.AFrame, ax.SFrame}
			agg, ok := axisAgg[key]
			if !ok {
				agg = &AxisSummary{AFrame: ax.AFrame, SFrame: ax.SFrame, Label: ax.Label}
				axisAgg[key] = agg
			}
			agg.Count++
			agg.TotalIntensity += ax.Intensity
			agg.Turns = append(agg.Turns, p.TurnID)
			agg.OverlayTags = mergeTags(agg.OverlayTags, ax.OverlayTags)
		}
	}
	axes := make([]AxisSummary, 0, len(axisAgg))
	for _, agg := range axisAgg {
		agg.TotalIntensity = round2(agg.TotalIntensity)
		axes = append(axes, *agg)
	}
	sort.SliceStable(axes, func(i, j int) bool {
		if axes[i].TotalIntensity != axes[j].TotalIntensity {
			return axes[i].TotalIntensity > axes[j].TotalIntensity
		}
		if axes[i].AFrame != axes[j].AFrame {
			return axes[i].AFrame < axes[j].AFrame
		}
		return axes[i].SFrame < axes[j].SFrame
	})
	var dominant *AxisSummary
	if len(axes) > 0 {
		d := axes[0]
		dominant = &d
	}

	return &InterviewProfile{
		Score:           round2(total),
		Density:         round2(density),
		Sites:           len(sites),
		TurnsTotal:      nTotal,
		PeakTurns:       peaks,
		DominantTension: dominant,
		Trajectory:      trajectory(sites),
		Axes:            axes,
		StrongThreshold: round2(threshold),
	}
}

// trajectory compares the mean normalized intensity of the first and
// last third of the sites, in turn order. A 30% margin separates
// rising/falling from stable.
func trajectory(sites []*TurnProfile) string {
	if len(sites) < 3 {
		return TrajectoryInsufficient
	}
	ordered := make([]*TurnProfile, len(sites))
	copy(ordered, sites)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].TurnID < ordered[j].TurnID })

	third := len(ordered) / 3
	if third < 1 {
		third = 1
	}
	first, last := 0.0, 0.0
	for i := 0; i < third; i++ {
		first += ordered[i].IntensityNorm
		last += ordered[len(ordered)-third+i].IntensityNorm
	}
	firstMean := first / float64(third)
	lastMean := last / float64(third)

	switch {
	case lastMean > firstMean*1.3:
		return TrajectoryRising
	case firstMean > lastMean*1.3:
		return TrajectoryFalling
	default:
		return TrajectoryStable
	}
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sumCounts(m map[string]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

func mergeTags(into, tags []string) []string {
	for _, t := range tags {
		found := false
		for _, have := range into {
			if have == t {
				found = true
				break
			}
		}
		if !found {
			into = append(into, t)
		}
	}
	sort.Strings(into)
	return into
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
