// Package annotate implements the single pattern-matching primitive every
// analytic pass is built on. Passes configure it with their own module id
// and rule prefixes; none duplicates the matching or sentence-boundary
// logic.
package annotate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/jmaren/glosa/internal/model"
)

// Annotator produces annotations for one module. Matching is
// case-insensitive but runs over the original-cased text, so stored spans
// preserve the source casing for auditability.
type Annotator struct {
	Module string
	diags  *model.Diagnostics

	compiled map[string]*regexp.Regexp
	bad      map[string]bool
}

// New creates an annotator for the given module id.
func New(module string, diags *model.Diagnostics) *Annotator {
	if diags == nil {
		diags = model.NewDiagnostics()
	}
	return &Annotator{
		Module:   module,
		diags:    diags,
		compiled: make(map[string]*regexp.Regexp),
		bad:      make(map[string]bool),
	}
}

// Search scans text with every pattern and returns one annotation per
// non-overlapping match. Rule ids are <prefix>_<two-digit pattern index>.
// An uncompilable pattern is reported once and skipped; the remaining
// rules keep working.
func (an *Annotator) Search(text, category string, patterns []string, turnID int, rulePrefix string) []model.Annotation {
	var out []model.Annotation
	for i, pattern := range patterns {
		re := an.compile(pattern, category)
		if re == nil {
			continue
		}
		ruleID := fmt.Sprintf("%s_%02d", rulePrefix, i)
		if rulePrefix == "" {
			ruleID = fmt.Sprintf("%s_%s_%02d", an.Module, strings.ToLower(category), i)
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, model.Annotation{
				Module:     an.Module,
				Category:   category,
				RuleID:     ruleID,
				Pattern:    pattern,
				Matched:    text[loc[0]:loc[1]],
				Start:      loc[0],
				End:        loc[1],
				Sentence:   ContainingSentence(text, loc[0]),
				TurnID:     turnID,
				Confidence: model.ConfidencePattern,
				CreatedAt:  time.Now().UTC(),
			})
		}
	}
	return out
}

// CountMatches returns how many non-overlapping matches the patterns
// produce in text, without building annotations. Used by the narrative
// pass for per-sentence classification.
func (an *Annotator) CountMatches(text string, patterns []string, category string) int {
	n := 0
	for _, pattern := range patterns {
		if re := an.compile(pattern, category); re != nil {
			n += len(re.FindAllStringIndex(text, -1))
		}
	}
	return n
}

func (an *Annotator) compile(pattern, category string) *regexp.Regexp {
	if re, ok := an.compiled[pattern]; ok {
		return re
	}
	if an.bad[pattern] {
		return nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		an.bad[pattern] = true
		an.diags.Warn(an.Module, "invalid pattern %q in category %q: %v", pattern, category, err)
		return nil
	}
	an.compiled[pattern] = re
	return re
}

// ContainingSentence recovers the sentence around position by scanning
// left and right for the nearest terminator (. ! ?) or line break,
// defaulting to the text boundaries.
func ContainingSentence(text string, position int) string {
	left := strings.LastIndexByte(text[:position], '\n')
	for _, term := range []byte{'.', '!', '?'} {
		if idx := strings.LastIndexByte(text[:position], term); idx > left {
			left = idx
		}
	}
	start := left + 1

	end := len(text)
	for _, term := range []byte{'.', '!', '?', '\n'} {
		if idx := strings.IndexByte(text[position:], term); idx != -1 && position+idx+1 < end {
			end = position + idx + 1
		}
	}
	return strings.TrimSpace(text[start:end])
}

// Density is the marker rate per 100 words, rounded to one decimal.
// 3 markers over 60 words → 5.0.
func Density(markers, words int) float64 {
	if words == 0 {
		return 0
	}
	return math.Round(float64(markers)/float64(words)*100*10) / 10
}
