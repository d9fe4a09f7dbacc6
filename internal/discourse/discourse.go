// Package discourse analyzes discursive framing: frame and topos
// markers, conflict-weighted frame dominance, and analytic claims about
// how frames co-occur and shift across an interview.
package discourse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmaren/glosa/internal/annotate"
	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
)

// Pass implements the framing analysis.
type Pass struct {
	gate   *language.Gate
	fb     *framebook.Framebook
	frames framebook.CategorySet
	topoi  framebook.CategorySet
	an     *annotate.Annotator
}

// New creates the pass from the framebook's frame and topos sections.
func New(gate *language.Gate, fb *framebook.Framebook, diags *model.Diagnostics) *Pass {
	return &Pass{
		gate:   gate,
		fb:     fb,
		frames: fb.Frames,
		topoi:  fb.Topoi,
		an:     annotate.New(model.ModuleDiscourse, diags),
	}
}

// Module returns the pass's module id.
func (p *Pass) Module() string { return model.ModuleDiscourse }

// Analyze scans every respondent turn for frame and topos markers.
// Frame annotations carry the bare frame name as category; topoi are
// prefixed so the two stay distinguishable downstream.
func (p *Pass) Analyze(doc *model.Document) (int, error) {
	n := 0
	for _, turn := range doc.RespondentTurns() {
		for _, frame := range p.frames {
			anns := p.an.Search(turn.Text, frame.Name, p.gate.Patterns(frame),
				turn.ID, "frame_"+strings.ToLower(frame.Name))
			for _, a := range anns {
				doc.AddAnnotation(a)
				n++
			}
		}
		for _, topos := range p.topoi {
			anns := p.an.Search(turn.Text, model.PrefixTopos+topos.Name, p.gate.Patterns(topos),
				turn.ID, "topos_"+strings.ToLower(topos.Name))
			for _, a := range anns {
				doc.AddAnnotation(a)
				n++
			}
		}
	}
	return n, nil
}

// TurnProfile is the per-turn framing view. Raw counts stay untouched
// for the audit trail; the adjusted counts carry the conflict weighting
// used for dominance.
type TurnProfile struct {
	TurnID       int                `json:"turn_id"`
	Frames       map[string]int     `json:"frames"`
	Adjusted     map[string]float64 `json:"frames_adjusted"`
	Topoi        map[string]int     `json:"topoi"`
	Dominant     string             `json:"dominant_frame"`
	ActiveFrames int                `json:"n_frames_active"`
	FrameDensity float64            `json:"frame_density"`
}

// Summarize returns one profile per respondent turn.
func (p *Pass) Summarize(doc *model.Document) []TurnProfile {
	var rows []TurnProfile
	for _, turn := range doc.RespondentTurns() {
		frames, topoi := p.countCategories(doc, turn.ID)
		adjusted := p.applyConflicts(frames)
		total := 0
		for _, c := range frames {
			total += c
		}
		rows = append(rows, TurnProfile{
			TurnID:       turn.ID,
			Frames:       frames,
			Adjusted:     adjusted,
			Topoi:        topoi,
			Dominant:     p.dominant(adjusted),
			ActiveFrames: len(frames),
			FrameDensity: annotate.Density(total, turn.WordCount()),
		})
	}
	return rows
}

func (p *Pass) countCategories(doc *model.Document, turnID int) (frames, topoi map[string]int) {
	frames = make(map[string]int)
	topoi = make(map[string]int)
	for _, a := range doc.Annotations(model.AnnotationFilter{Module: p.Module(), TurnID: turnID}) {
		if strings.HasPrefix(a.Category, model.PrefixTopos) {
			topoi[a.Category]++
		} else {
			frames[a.Category]++
		}
	}
	return frames, topoi
}

// applyConflicts downweights a frame's count when a conflicting trigger
// frame is present in the same scope. Raw counts are never modified.
func (p *Pass) applyConflicts(frames map[string]int) map[string]float64 {
	adjusted := make(map[string]float64, len(frames))
	for f, c := range frames {
		adjusted[f] = float64(c)
	}
	for _, rule := range p.fb.FrameConflicts {
		if _, triggered := frames[rule.Trigger]; !triggered {
			continue
		}
		if _, ok := adjusted[rule.Target]; ok {
			adjusted[rule.Target] *= rule.Factor
		}
	}
	return adjusted
}

// dominant picks the frame with the highest adjusted count. Ties go to
// the frame with the higher configured priority, then lexicographically
// so repeated runs agree. Empty input yields "-".
func (p *Pass) dominant(adjusted map[string]float64) string {
	if len(adjusted) == 0 {
		return "-"
	}
	names := make([]string, 0, len(adjusted))
	for f := range adjusted {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if adjusted[a] != adjusted[b] {
			return adjusted[a] > adjusted[b]
		}
		pa, pb := p.fb.Priority(a), p.fb.Priority(b)
		if pa != pb {
			return pa > pb
		}
		return a < b
	})
	return names[0]
}

// DocumentAdjusted applies the conflict weighting to the whole-document
// frame totals.
func (p *Pass) DocumentAdjusted(doc *model.Document) (raw map[string]int, adjusted map[string]float64) {
	raw = make(map[string]int)
	for _, a := range doc.Annotations(model.AnnotationFilter{Module: p.Module()}) {
		if !strings.HasPrefix(a.Category, model.PrefixTopos) {
			raw[a.Category]++
		}
	}
	return raw, p.applyConflicts(raw)
}

func framesInTurn(doc *model.Document, module string, turnID int) map[string]bool {
	set := make(map[string]bool)
	for _, a := range doc.Annotations(model.AnnotationFilter{Module: module, TurnID: turnID}) {
		if !strings.HasPrefix(a.Category, model.PrefixTopos) {
			set[a.Category] = true
		}
	}
	return set
}

func fmtCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ", ")
}
