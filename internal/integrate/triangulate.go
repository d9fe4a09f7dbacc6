package integrate

import (
	"sort"

	"github.com/jmaren/glosa/internal/model"
)

// Frame names the pattern catalog keys on. They match the standard
// framebook shipped with the tool; interviews analyzed with a custom
// framebook simply never match the patterns naming absent frames.
const (
	frameSystemFailure = "SYSTEM_FAILURE"
	frameCalling       = "CALLING"
	frameEconomization = "ECONOMIZATION"
)

// Pattern is one matched entry from the cross-module catalog.
type Pattern struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Modules     []string `json:"modules"`
	Question    string   `json:"question"`
}

// Triangulation lists the catalog patterns matching one turn.
type Triangulation struct {
	TurnID      int       `json:"turn_id"`
	Patterns    []Pattern `json:"patterns"`
	TextPreview string    `json:"text_preview"`
}

// Triangulate evaluates the fixed pattern catalog against every turn
// profile. A turn may match several patterns; turns are returned by
// descending match count. Convergence of independent passes is the
// strongest signal this tool produces.
func (in *Integrator) Triangulate(profiles []TurnProfile) []Triangulation {
	var out []Triangulation
	for _, p := range profiles {
		var patterns []Pattern

		// Crisis: trajectory curve + passive subject + affective load.
		if contains(p.Flags, FlagTrajectory) && contains(p.Flags, FlagPassive) && p.AffectDens > 2 {
			patterns = append(patterns, Pattern{
				Name:        "CRISIS",
				Description: "narrative trajectory curve + passive subject + high affective intensity",
				Modules:     []string{"narrative (trajectory)", "position (passive)", "affect (density)"},
				Question:    "Is this a biographic turning point, and how is the crisis worked through narratively?",
			})
		}

		// Resistance: system critique framed with active or morally
		// reflective agency.
		if p.Frames[frameSystemFailure] > 0 && isAgentive(p.Agency) {
			patterns = append(patterns, Pattern{
				Name:        "RESISTANCE",
				Description: "system critique + active/moral agency",
				Modules:     []string{"position (agency)", "discourse (system failure)"},
				Question:    "Does the respondent position themselves as a resisting subject, and against what?",
			})
		}

		// Ambivalent holding-on: calling frame under economic pressure
		// or affective ambivalence.
		if p.Frames[frameCalling] > 0 &&
			(p.Frames[frameEconomization] > 0 || contains(p.AffectDims, model.AffectAmbivalence)) {
			patterns = append(patterns, Pattern{
				Name:        "AMBIVALENT_HOLDING_ON",
				Description: "calling frame + economic pressure or ambivalence",
				Modules:     []string{"discourse (calling, economization)", "affect (ambivalence)"},
				Question:    "How does the respondent negotiate the contradiction between inner conviction and outer pressure?",
			})
		}

		// Narrative transformation: transformation marker alongside at
		// least one discourse-type shift.
		if contains(p.Flags, FlagTransform) && p.Transitions >= 1 {
			patterns = append(patterns, Pattern{
				Name:        "NARRATIVE_TRANSFORMATION",
				Description: "transformation marker + discourse-type shift, possible reorientation",
				Modules:     []string{"narrative (transformation)", "narrative (type shift)"},
				Question:    "Is a transition from a suffering to an agentive perspective visible here?",
			})
		}

		// Embodied affect: bodily references under elevated density.
		if contains(p.AffectDims, model.AffectBodily) && p.AffectDens > 3 {
			patterns = append(patterns, Pattern{
				Name:        "EMBODIED_AFFECT",
				Description: "high affect density + bodily references",
				Modules:     []string{"affect (intensity)", "affect (bodily)"},
				Question:    "Is something being expressed here that language does not fully carry? Check the bodily dimension.",
			})
		}

		if len(patterns) > 0 {
			out = append(out, Triangulation{
				TurnID:      p.TurnID,
				Patterns:    patterns,
				TextPreview: p.TextPreview,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Patterns) > len(out[j].Patterns)
	})
	return out
}

func isAgentive(agency string) bool {
	return agency == model.AgencyActive || agency == model.AgencyReflective
}
