// Package integrate merges the per-module results into cross-module
// findings: combined turn profiles, condensation sites, triangulation
// patterns, hypotheses, and a fused claim list. Every output is an
// epistemic proposal for the researcher to check, never a verdict.
package integrate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmaren/glosa/internal/affect"
	"github.com/jmaren/glosa/internal/annotate"
	"github.com/jmaren/glosa/internal/discourse"
	"github.com/jmaren/glosa/internal/model"
	"github.com/jmaren/glosa/internal/narrative"
	"github.com/jmaren/glosa/internal/position"
)

// Cross-module flags attached to turn profiles.
const (
	FlagTrajectory = "TRAJECTORY_CURVE"
	FlagTransform  = "TRANSFORMATION"
	FlagAffectHigh = "AFFECT_HIGH"
	FlagPassive    = "PASSIVE"
	FlagMultiFrame = "MULTI_FRAME"
	FlagTypeShift  = "TYPE_SHIFT"
)

// Integrator joins the four analysis passes over one document.
type Integrator struct {
	doc       *model.Document
	narrative *narrative.Pass
	position  *position.Pass
	discourse *discourse.Pass
	affect    *affect.Pass
}

// New creates an integrator. All four passes must already have run
// Analyze on the document.
func New(doc *model.Document, n *narrative.Pass, p *position.Pass, d *discourse.Pass, a *affect.Pass) *Integrator {
	return &Integrator{doc: doc, narrative: n, position: p, discourse: d, affect: a}
}

// TurnProfile is the fully merged per-turn view.
type TurnProfile struct {
	TurnID       int            `json:"turn_id"`
	Words        int            `json:"n_words"`
	TextPreview  string         `json:"text_preview"`
	TypeSequence string         `json:"type_sequence"`
	Processes    []string       `json:"process_structures"`
	Transitions  int            `json:"n_transitions"`
	Agency       string         `json:"dominant_agency"`
	AgencyDens   float64        `json:"agency_density"`
	Pronouns     map[string]int `json:"pronouns"`
	Frame        string         `json:"dominant_frame"`
	ActiveFrames int            `json:"n_frames_active"`
	Frames       map[string]int `json:"frames"`
	AffectDens   float64        `json:"affect_density"`
	AffectDims   []string       `json:"affect_dimensions"`
	Flags        []string       `json:"flags"`
	Annotations  int            `json:"total_annotations"`

	Score   int      `json:"condensation_score,omitempty"`
	Reasons []string `json:"condensation_reasons,omitempty"`
}

// Report is the integrated analysis output.
type Report struct {
	TurnProfiles      []TurnProfile      `json:"turn_profiles"`
	CondensationSites []TurnProfile      `json:"condensation_sites"`
	Triangulations    []Triangulation    `json:"triangulations"`
	Hypotheses        []Hypothesis       `json:"hypotheses"`
	Claims            []Claim            `json:"claims"`
	Summary           model.Summary      `json:"summary"`
	Diagnostics       []model.Diagnostic `json:"diagnostics,omitempty"`
}

// Run produces the full integrated report.
func (in *Integrator) Run() *Report {
	profiles := in.TurnProfiles()
	return &Report{
		TurnProfiles:      profiles,
		CondensationSites: in.condensationSites(profiles, 5),
		Triangulations:    in.Triangulate(profiles),
		Hypotheses:        in.Hypotheses(profiles),
		Claims:            in.Claims(),
		Summary:           in.doc.Summarize(),
	}
}

// TurnProfiles merges the four module summaries into one row per
// respondent turn.
func (in *Integrator) TurnProfiles() []TurnProfile {
	narr := indexByTurn(in.narrative.Summarize(in.doc), func(r narrative.TurnSummary) int { return r.TurnID })
	pos := indexByTurn(in.position.Summarize(in.doc), func(r position.TurnProfile) int { return r.TurnID })
	disc := indexByTurn(in.discourse.Summarize(in.doc), func(r discourse.TurnProfile) int { return r.TurnID })
	aff := indexByTurn(in.affect.Summarize(in.doc), func(r affect.TurnProfile) int { return r.TurnID })

	var profiles []TurnProfile
	for _, turn := range in.doc.RespondentTurns() {
		a := narr[turn.ID]
		b := pos[turn.ID]
		c := disc[turn.ID]
		d := aff[turn.ID]

		var flags []string
		if contains(a.ProcessStructures, model.PSTrajectory) {
			flags = append(flags, FlagTrajectory)
		}
		if contains(a.ProcessStructures, model.PSTransformation) {
			flags = append(flags, FlagTransform)
		}
		if d.Density > 5 {
			flags = append(flags, FlagAffectHigh)
		}
		if b.Dominant == model.AgencyPassive {
			flags = append(flags, FlagPassive)
		}
		if c.ActiveFrames >= 3 {
			flags = append(flags, FlagMultiFrame)
		}
		if a.Transitions >= 2 {
			flags = append(flags, FlagTypeShift)
		}

		profiles = append(profiles, TurnProfile{
			TurnID:       turn.ID,
			Words:        turn.WordCount(),
			TextPreview:  annotate.Preview(turn.Text, 150),
			TypeSequence: a.SequenceShort,
			Processes:    a.ProcessStructures,
			Transitions:  a.Transitions,
			Agency:       b.Dominant,
			AgencyDens:   b.AgencyDensity,
			Pronouns:     b.PronounCounts,
			Frame:        c.Dominant,
			ActiveFrames: c.ActiveFrames,
			Frames:       c.Frames,
			AffectDens:   d.Density,
			AffectDims:   d.Active,
			Flags:        flags,
			Annotations:  len(in.doc.Annotations(model.AnnotationFilter{TurnID: turn.ID})),
		})
	}
	return profiles
}

// condensationSites ranks turns by how much the modules converge on
// them. Flags weigh heaviest since each flag is a cross-module signal.
func (in *Integrator) condensationSites(profiles []TurnProfile, n int) []TurnProfile {
	scored := make([]TurnProfile, len(profiles))
	copy(scored, profiles)
	for i := range scored {
		p := &scored[i]
		score := len(p.Flags) * 3
		var reasons []string
		if len(p.Flags) > 0 {
			reasons = append(reasons, "flags: "+strings.Join(p.Flags, ", "))
		}
		switch {
		case p.AffectDens > 5:
			score += 3
			reasons = append(reasons, fmt.Sprintf("high affect density: %.1f%%", p.AffectDens))
		case p.AffectDens > 2:
			score++
		}
		if p.ActiveFrames >= 3 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("%d frames active", p.ActiveFrames))
		}
		if p.Transitions >= 2 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("%d discourse-type shifts", p.Transitions))
		}
		if len(p.Processes) > 0 {
			score += 2
			reasons = append(reasons, "process structures: "+strings.Join(p.Processes, ", "))
		}
		p.Score = score
		p.Reasons = reasons
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

func indexByTurn[T any](rows []T, id func(T) int) map[int]T {
	m := make(map[int]T, len(rows))
	for _, r := range rows {
		m[id(r)] = r
	}
	return m
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
