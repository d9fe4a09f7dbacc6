package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmaren/glosa/internal/integrate"
	"github.com/jmaren/glosa/internal/justice"
	"github.com/jmaren/glosa/internal/model"
)

// ReportMarkdown renders the integrated report for one document as
// Markdown. The epistemic framing is deliberate: every section presents
// proposals to check, not findings.
func ReportMarkdown(doc *model.Document, rep *integrate.Report, jp *justice.InterviewProfile, jclaims []justice.Claim, includeFooter bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report: %s\n\n", doc.ID)
	b.WriteString("Epistemic status: all entries below are proposals for verification against the transcript, not findings.\n\n")

	s := rep.Summary
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Language: %s\n", s.Language)
	fmt.Fprintf(&b, "- Turns: %d (%d respondent, %d interviewer)\n", s.Turns, s.RespondentTurns, s.InterviewerTurns)
	fmt.Fprintf(&b, "- Words: %d, sentences: %d\n", s.Words, s.Sentences)
	fmt.Fprintf(&b, "- Annotations: %d\n\n", s.Annotations)

	if len(rep.CondensationSites) > 0 {
		b.WriteString("## Condensation Sites\n\n")
		for _, site := range rep.CondensationSites {
			if site.Score == 0 {
				continue
			}
			fmt.Fprintf(&b, "### Turn %d (score %d)\n\n", site.TurnID, site.Score)
			for _, r := range site.Reasons {
				fmt.Fprintf(&b, "- %s\n", r)
			}
			fmt.Fprintf(&b, "\n> %s\n\n", site.TextPreview)
		}
	}

	if len(rep.Triangulations) > 0 {
		b.WriteString("## Triangulations\n\n")
		for _, tri := range rep.Triangulations {
			fmt.Fprintf(&b, "### Turn %d\n\n", tri.TurnID)
			for _, p := range tri.Patterns {
				fmt.Fprintf(&b, "- **%s**: %s (%s)\n", p.Name, p.Description, strings.Join(p.Modules, ", "))
				fmt.Fprintf(&b, "  - Check: %s\n", p.Question)
			}
			b.WriteString("\n")
		}
	}

	if len(rep.Claims) > 0 {
		b.WriteString("## Claims\n\n")
		for i, c := range rep.Claims {
			fmt.Fprintf(&b, "%d. [%s/%s] %s (strength %.1f)\n", i+1, c.Module, c.Kind, c.Description, c.Strength)
			if c.Evidence != "" {
				fmt.Fprintf(&b, "   - Evidence: %s\n", c.Evidence)
			}
			fmt.Fprintf(&b, "   - Check: %s\n", c.Question)
		}
		b.WriteString("\n")
	}

	if len(rep.Hypotheses) > 0 {
		b.WriteString("## Hypotheses\n\n")
		for _, h := range rep.Hypotheses {
			fmt.Fprintf(&b, "- %s\n", h.Statement)
			fmt.Fprintf(&b, "  - Evidence: %s\n", h.Evidence)
			fmt.Fprintf(&b, "  - Check: %s\n", h.Question)
			fmt.Fprintf(&b, "  - To verify: %s\n", h.ToVerify)
		}
		b.WriteString("\n")
	}

	if jp != nil {
		b.WriteString("## Justice Tension Profile\n\n")
		fmt.Fprintf(&b, "- Score: %.2f\n", jp.Score)
		fmt.Fprintf(&b, "- Density: %.0f%% (%d/%d turns)\n", jp.Density*100, jp.Sites, jp.TurnsTotal)
		fmt.Fprintf(&b, "- Trajectory: %s\n", jp.Trajectory)
		fmt.Fprintf(&b, "- Peak turns: %v\n", jp.PeakTurns)
		if jp.DominantTension != nil {
			dt := jp.DominantTension
			fmt.Fprintf(&b, "- Dominant tension: %s (%d turns, intensity %.2f)\n", dt.Label, dt.Count, dt.TotalIntensity)
		}
		b.WriteString("\n")
		if len(jp.Axes) > 0 {
			b.WriteString("| Axis | Turns | Intensity |\n|---|---|---|\n")
			for _, ax := range jp.Axes {
				fmt.Fprintf(&b, "| %s | %d | %.2f |\n", ax.Label, ax.Count, ax.TotalIntensity)
			}
			b.WriteString("\n")
		}
		if len(jclaims) > 0 {
			b.WriteString("### Justice Claims\n\n")
			for _, c := range jclaims {
				fmt.Fprintf(&b, "- [%s] %s\n", c.Kind, c.Description)
				fmt.Fprintf(&b, "  - Check: %s\n", c.Question)
			}
			b.WriteString("\n")
		}
	}

	if len(rep.Diagnostics) > 0 {
		b.WriteString("## Diagnostics\n\n")
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(&b, "- [%s] %s\n", d.Component, d.Message)
		}
		b.WriteString("\n")
	}

	if includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("These outputs do not replace qualitative interpretation. Read the flagged passages in the original transcript.\n")
	}
	return b.String()
}

// WriteMarkdown renders the report and writes it to path.
func WriteMarkdown(path string, doc *model.Document, rep *integrate.Report, jp *justice.InterviewProfile, jclaims []justice.Claim, includeFooter bool) error {
	content := ReportMarkdown(doc, rep, jp, jclaims, includeFooter)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}
