package annotate

import (
	"sort"
	"unicode/utf8"

	"github.com/jmaren/glosa/internal/model"
)

// Pass is the contract shared by the four analytic passes. Each pass
// writes annotations under its own module id and never mutates turns;
// summaries are separate, pass-specific views.
type Pass interface {
	Module() string
	Analyze(doc *model.Document) (int, error)
}

// Site is one turn ranked by annotation density for a module. These are
// the places to read first in the original transcript.
type Site struct {
	TurnID      int      `json:"turn_id"`
	Annotations int      `json:"n_annotations"`
	Density     float64  `json:"density"`
	Categories  []string `json:"categories"`
	TextPreview string   `json:"text_preview"`
}

// TopSites ranks a module's turns by annotation density and returns the
// top n.
func TopSites(doc *model.Document, module string, n int) []Site {
	counts := make(map[int]int)
	cats := make(map[int]map[string]bool)
	for _, a := range doc.Annotations(model.AnnotationFilter{Module: module}) {
		counts[a.TurnID]++
		if cats[a.TurnID] == nil {
			cats[a.TurnID] = make(map[string]bool)
		}
		cats[a.TurnID][a.Category] = true
	}

	var sites []Site
	for tid, count := range counts {
		turn := doc.Turn(tid)
		if turn == nil {
			continue
		}
		var catList []string
		for c := range cats[tid] {
			catList = append(catList, c)
		}
		sort.Strings(catList)
		sites = append(sites, Site{
			TurnID:      tid,
			Annotations: count,
			Density:     Density(count, turn.WordCount()),
			Categories:  catList,
			TextPreview: Preview(turn.Text, 150),
		})
	}
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].Density != sites[j].Density {
			return sites[i].Density > sites[j].Density
		}
		return sites[i].TurnID < sites[j].TurnID
	})
	if len(sites) > n {
		sites = sites[:n]
	}
	return sites
}

// Preview truncates text for report rows. The cut backs up to a rune
// boundary so multibyte characters never split into invalid UTF-8.
func Preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
