package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmaren/glosa/internal/export"
	"github.com/jmaren/glosa/internal/integrate"
	"github.com/jmaren/glosa/internal/parse"
	"github.com/jmaren/glosa/internal/pipeline"
)

var (
	analyzeJSON      bool
	analyzeMarkdown  bool
	analyzeOutDir    string
	analyzeFramebook string
	analyzeOverlay   string
	analyzeLang      string
	analyzeNoCache   bool
	analyzeNoFooter  bool
	analyzeTimeout   time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript.txt>",
	Short: "Annotate and score a single interview transcript",
	Long: `Analyze runs the narrative, position, discourse, and affect passes
over one transcript, integrates the results, and scores justice
tensions.

By default it prints a short summary to stdout. Use --md or --json to
write the full report to the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "write the full result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeMarkdown, "md", false, "write the report as Markdown")
	analyzeCmd.Flags().StringVarP(&analyzeOutDir, "out-dir", "o", ".", "directory for report files")
	analyzeCmd.Flags().StringVar(&analyzeFramebook, "framebook", "", "framebook file (overrides config)")
	analyzeCmd.Flags().StringVar(&analyzeOverlay, "overlay", "", "project overlay file (overrides config)")
	analyzeCmd.Flags().StringVar(&analyzeLang, "lang", "", "transcript language code (overrides config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "recompute even if a cached result exists")
	analyzeCmd.Flags().BoolVar(&analyzeNoFooter, "no-footer", false, "omit the methods footer from reports")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "per-run timeout")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if analyzeFramebook != "" {
		cfg.Framebook.Path = analyzeFramebook
	}
	if analyzeOverlay != "" {
		cfg.Framebook.Overlay = analyzeOverlay
	}
	if analyzeLang != "" {
		cfg.Analysis.Language = analyzeLang
	}
	if analyzeNoCache {
		cfg.Cache.Enabled = false
	}
	if analyzeNoFooter {
		cfg.Output.IncludeFooter = false
	}

	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	res, err := p.Analyze(ctx, string(raw), parse.Options{
		DocID:    docIDFromPath(path),
		Language: cfg.Analysis.Language,
	})
	if err != nil {
		return err
	}

	if analyzeJSON {
		out := filepath.Join(analyzeOutDir, res.DocID+"_result.json")
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Printf("Result written to %s\n", out)
	}
	if analyzeMarkdown {
		out := filepath.Join(analyzeOutDir, res.DocID+"_report.md")
		err := export.WriteMarkdown(out, res.Document, res.Report, res.Justice, res.JusticeClaims, cfg.Output.IncludeFooter)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", out)
	}

	printSummary(res)
	return nil
}

// printSummary writes the one-screen overview shown after every run.
func printSummary(res *pipeline.Result) {
	doc := res.Document
	fmt.Printf("\nDocument:     %s (%s, %d turns)\n", doc.ID, doc.Language, len(doc.Turns))
	fmt.Printf("Annotations:  %d\n", doc.AnnotationCount())
	if res.FromCache {
		fmt.Println("Source:       cache")
	} else {
		fmt.Printf("Duration:     %s\n", res.Duration.Round(time.Millisecond))
	}

	rep := res.Report
	fmt.Printf("Flags:        %s\n", orNone(distinctFlags(rep.TurnProfiles)))
	fmt.Printf("Cond. sites:  %d   Triangulations: %d   Claims: %d\n",
		len(rep.CondensationSites), len(rep.Triangulations), len(rep.Claims))

	if jp := res.Justice; jp != nil {
		axis := "-"
		if jp.DominantTension != nil {
			axis = jp.DominantTension.Label
		}
		fmt.Printf("Justice:      %d tension sites, dominant axis %s, trajectory %s\n",
			jp.Sites, axis, jp.Trajectory)
	}
	if n := len(rep.Diagnostics); n > 0 {
		fmt.Printf("Diagnostics:  %d warning(s), see report\n", n)
	}
}

// distinctFlags collects the flags raised anywhere in the interview,
// in first-seen order.
func distinctFlags(profiles []integrate.TurnProfile) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range profiles {
		for _, f := range p.Flags {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// docIDFromPath derives a document id from a file name.
func docIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
