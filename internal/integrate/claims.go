package integrate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmaren/glosa/internal/model"
)

// Claim is the fused claim format: one record regardless of which
// module produced the underlying signal.
type Claim struct {
	Module      string   `json:"module"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Turns       []int    `json:"turns,omitempty"`
	Frames      []string `json:"frames,omitempty"`
	Strength    float64  `json:"strength"`
	Question    string   `json:"question"`
}

// Claims collects claims from every claim-producing module and sorts
// them by strength, strongest first. Turning-point candidates and
// affect condensation sites are lifted into claim form so downstream
// consumers see a single list.
func (in *Integrator) Claims() []Claim {
	var claims []Claim

	for _, tp := range in.narrative.TurningPoints(in.doc, 5) {
		claims = append(claims, Claim{
			Module:      model.ModuleNarrative,
			Kind:        "TURNING_POINT",
			Description: fmt.Sprintf("narrative turning-point candidate in turn %d", tp.TurnID),
			Evidence:    strings.Join(tp.Reasons, "; "),
			Turns:       []int{tp.TurnID},
			Strength:    float64(tp.Score),
			Question:    "Does this turn actually mark a turning point in the biographic narrative?",
		})
	}

	for _, c := range in.discourse.Claims(in.doc) {
		claims = append(claims, Claim{
			Module:      model.ModuleDiscourse,
			Kind:        c.Kind,
			Description: c.Description,
			Evidence:    c.Evidence,
			Turns:       c.Turns,
			Frames:      c.Frames,
			Strength:    c.Strength,
			Question:    c.Question,
		})
	}

	for _, site := range in.affect.CondensationSites(in.doc, 5) {
		claims = append(claims, Claim{
			Module:      model.ModuleAffect,
			Kind:        "AFFECT_CONDENSATION",
			Description: fmt.Sprintf("affective condensation in turn %d", site.TurnID),
			Evidence:    strings.Join(site.Reasons, "; "),
			Turns:       []int{site.TurnID},
			Strength:    float64(site.Score),
			Question:    "Does the affective condensation coincide with a narrative turning point or frame shift?",
		})
	}

	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].Strength > claims[j].Strength
	})
	return claims
}
