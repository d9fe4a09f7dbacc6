package justice

import (
	"fmt"
	"sort"
	"strings"
)

// Claim kinds produced by the analyzer.
const (
	ClaimDominance  = "JUSTICE_DOMINANCE"
	ClaimTrajectory = "JUSTICE_TRAJECTORY"
	ClaimPeak       = "JUSTICE_PEAK"
	ClaimDensity    = "JUSTICE_DENSITY"
	ClaimContext    = "JUSTICE_CONTEXT"
)

// Claim is an analytic proposal derived from the tension profile.
type Claim struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Question    string  `json:"question"`
	Strength    float64 `json:"strength"`
	Turns       []int   `json:"turns,omitempty"`
}

// Claims derives the claim list from the interview profile: the
// dominant tension, a rising or falling trajectory, up to three peak
// sites, pervasive density, and overlay-frame context. Claims come
// back sorted by strength descending.
func (ja *Analyzer) Claims() []Claim {
	profile := ja.InterviewProfile()
	profiles := ja.TurnProfiles()
	var claims []Claim

	if dt := profile.DominantTension; dt != nil {
		tags := ""
		if len(dt.OverlayTags) > 0 {
			tags = " (contextualized by: " + strings.Join(dt.OverlayTags, ", ") + ")"
		}
		claims = append(claims, Claim{
			Kind: ClaimDominance,
			Description: fmt.Sprintf("the central justice tension is %s (%d turns, intensity %.2f)%s",
				dt.Label, dt.Count, dt.TotalIntensity, tags),
			Question: fmt.Sprintf("Is %s primarily experienced as a violation of %s, or is there another reading of the tension?",
				dt.SFrame, dt.AFrame),
			Strength: dt.TotalIntensity,
			Turns:    dt.Turns,
		})
	}

	if profile.Trajectory == TrajectoryRising || profile.Trajectory == TrajectoryFalling {
		claims = append(claims, Claim{
			Kind: ClaimTrajectory,
			Description: fmt.Sprintf("the justice tension is %s over the interview",
				strings.ToLower(profile.Trajectory)),
			Question: "Does the change correlate with frame shifts or agency changes?",
			Strength: profile.Score,
		})
	}

	var strong []TurnProfile
	for _, p := range profiles {
		if p.Strong {
			strong = append(strong, p)
		}
	}
	sort.SliceStable(strong, func(i, j int) bool {
		return strong[i].IntensityNorm > strong[j].IntensityNorm
	})
	if len(strong) > 3 {
		strong = strong[:3]
	}
	for _, p := range strong {
		axisInfo := ""
		if len(p.TensionAxes) > 0 {
			axisInfo = ", axis: " + p.TensionAxes[0].Label
		}
		tagInfo := ""
		if len(p.OverlayTags) > 0 {
			tagInfo = ", context: " + strings.Join(p.OverlayTags, ", ")
		}
		claims = append(claims, Claim{
			Kind: ClaimPeak,
			Description: fmt.Sprintf("turn %d is an intense (in)justice site (intensity %.2f per 1000 chars, %s%s%s)",
				p.TurnID, p.IntensityNorm, p.AgencyLabel, axisInfo, tagInfo),
			Question: fmt.Sprintf("What exactly is experienced as unjust in turn %d, and in which concrete situation?", p.TurnID),
			Strength: p.IntensityNorm,
			Turns:    []int{p.TurnID},
		})
	}

	if profile.Density >= 0.5 {
		claims = append(claims, Claim{
			Kind: ClaimDensity,
			Description: fmt.Sprintf("%.0f%% of turns carry justice tensions: the interview is pervaded by (in)justice",
				profile.Density*100),
			Question: "Is (in)justice the interview's central thread, or an effect of how it was conducted?",
			Strength: profile.Density,
		})
	}

	tagSet := make(map[string]bool)
	for _, ax := range profile.Axes {
		for _, t := range ax.OverlayTags {
			tagSet[t] = true
		}
	}
	if len(tagSet) > 0 {
		tags := make([]string, 0, len(tagSet))
		for t := range tagSet {
			tags = append(tags, t)
		}
		sort.Strings(tags)
		claims = append(claims, Claim{
			Kind: ClaimContext,
			Description: "the justice tensions are modulated by context-specific frames: " +
				strings.Join(tags, ", "),
			Question: "Are these context frames triggers or amplifiers of the (in)justice experience?",
			Strength: float64(len(tags)),
		})
	}

	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].Strength > claims[j].Strength
	})
	return claims
}
