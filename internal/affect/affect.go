// Package affect analyzes affective loading. It deliberately produces no
// positive/negative valence score: the output is marker density per
// dimension plus condensation sites where several dimensions overlap,
// each with a human-readable reason list.
package affect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmaren/glosa/internal/annotate"
	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
)

// Pass implements the affect analysis.
type Pass struct {
	gate       *language.Gate
	dimensions framebook.CategorySet
	an         *annotate.Annotator
}

// New creates the pass from the framebook's affect-dimension section.
func New(gate *language.Gate, fb *framebook.Framebook, diags *model.Diagnostics) *Pass {
	return &Pass{
		gate:       gate,
		dimensions: fb.AffectDimensions,
		an:         annotate.New(model.ModuleAffect, diags),
	}
}

// Module returns the pass's module id.
func (p *Pass) Module() string { return model.ModuleAffect }

// Analyze scans every respondent turn for markers of each affect
// dimension.
func (p *Pass) Analyze(doc *model.Document) (int, error) {
	n := 0
	for _, turn := range doc.RespondentTurns() {
		for _, dim := range p.dimensions {
			anns := p.an.Search(turn.Text, dim.Name, p.gate.Patterns(dim),
				turn.ID, "affect_"+strings.ToLower(dim.Name))
			for _, a := range anns {
				doc.AddAnnotation(a)
				n++
			}
		}
	}
	return n, nil
}

// TurnProfile is the per-turn affect view.
type TurnProfile struct {
	TurnID     int            `json:"turn_id"`
	Words      int            `json:"n_words"`
	Markers    int            `json:"n_markers"`
	Density    float64        `json:"marker_density"`
	Dimensions map[string]int `json:"dimensions"`
	Active     []string       `json:"active_dimensions"`
}

// Summarize returns marker counts and densities per respondent turn.
func (p *Pass) Summarize(doc *model.Document) []TurnProfile {
	var rows []TurnProfile
	for _, turn := range doc.RespondentTurns() {
		anns := doc.Annotations(model.AnnotationFilter{Module: p.Module(), TurnID: turn.ID})
		counts := make(map[string]int)
		for _, a := range anns {
			counts[a.Category]++
		}
		active := make([]string, 0, len(counts))
		for d := range counts {
			active = append(active, d)
		}
		sort.Strings(active)
		rows = append(rows, TurnProfile{
			TurnID:     turn.ID,
			Words:      turn.WordCount(),
			Markers:    len(anns),
			Density:    annotate.Density(len(anns), turn.WordCount()),
			Dimensions: counts,
			Active:     active,
		})
	}
	return rows
}

// Site is a condensation site: a turn where affect markers pile up.
type Site struct {
	TurnID      int            `json:"turn_id"`
	Score       int            `json:"score"`
	Reasons     []string       `json:"reasons"`
	Density     float64        `json:"marker_density"`
	Markers     int            `json:"n_markers"`
	Dimensions  map[string]int `json:"dimensions"`
	TextPreview string         `json:"text_preview"`
}

// CondensationSites returns the top n turns by affective loading.
// Scoring: density above 5% gives 3, above 2% gives 1; three or more
// active dimensions give 3, two give 1; ambivalence and bodily
// reference give 2 each, distancing gives 1.
func (p *Pass) CondensationSites(doc *model.Document, n int) []Site {
	var sites []Site
	for _, row := range p.Summarize(doc) {
		if row.Markers == 0 {
			continue
		}
		score := 0
		var reasons []string

		switch {
		case row.Density > 5:
			score += 3
			reasons = append(reasons, fmt.Sprintf("high marker density: %.1f%%", row.Density))
		case row.Density > 2:
			score++
			reasons = append(reasons, fmt.Sprintf("moderate marker density: %.1f%%", row.Density))
		}

		switch {
		case len(row.Active) >= 3:
			score += 3
			reasons = append(reasons, fmt.Sprintf("multidimensional: %d dimensions active", len(row.Active)))
		case len(row.Active) >= 2:
			score++
			reasons = append(reasons, fmt.Sprintf("%d dimensions active", len(row.Active)))
		}

		if c := row.Dimensions[model.AffectAmbivalence]; c > 0 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("ambivalence detected (%dx)", c))
		}
		if c := row.Dimensions[model.AffectBodily]; c > 0 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("bodily expression (%dx)", c))
		}
		if c := row.Dimensions[model.AffectDistancing]; c > 0 {
			score++
			reasons = append(reasons, fmt.Sprintf("distancing markers (%dx)", c))
		}

		preview := ""
		if turn := doc.Turn(row.TurnID); turn != nil {
			preview = annotate.Preview(turn.Text, 200)
		}
		sites = append(sites, Site{
			TurnID:      row.TurnID,
			Score:       score,
			Reasons:     reasons,
			Density:     row.Density,
			Markers:     row.Markers,
			Dimensions:  row.Dimensions,
			TextPreview: preview,
		})
	}
	sort.SliceStable(sites, func(i, j int) bool {
		return sites[i].Score > sites[j].Score
	})
	if len(sites) > n {
		sites = sites[:n]
	}
	return sites
}
