package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/model"
)

// framebookCmd represents the framebook command
var framebookCmd = &cobra.Command{
	Use:   "framebook [file.yaml]",
	Short: "Validate a framebook and list its categories",
	Long: `Framebook loads a rulebook (plus the configured overlay), runs the
structural checks that the analysis passes rely on, and prints an
inventory of categories per module. Warnings are the same ones that
would surface in an analysis report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFramebook,
}

func init() {
	rootCmd.AddCommand(framebookCmd)
}

func runFramebook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Framebook.Path
	if len(args) > 0 {
		path = args[0]
	}

	diags := model.NewDiagnostics()
	fb, err := framebook.Load(path, cfg.Framebook.Overlay, diags)
	if err != nil {
		return err
	}

	fmt.Printf("Framebook:   %s (version %s, fingerprint %s)\n", path, fb.Version, fb.Fingerprint())
	if fb.OverlayName != "" {
		fmt.Printf("Overlay:     %s\n", fb.OverlayName)
	}
	fmt.Printf("Languages:   %v\n", fb.Languages())
	fmt.Println()

	sets := []struct {
		name string
		set  framebook.CategorySet
	}{
		{"discourse_types", fb.DiscourseTypes},
		{"process_structures", fb.ProcessStructures},
		{"agency", fb.Agency},
		{"frames", fb.Frames},
		{"topoi", fb.Topoi},
		{"affect_dimensions", fb.AffectDimensions},
	}
	for _, s := range sets {
		fmt.Printf("%-20s %3d  %v\n", s.name, len(s.set), s.set.Names())
	}
	fmt.Printf("%-20s %3d\n", "frame_conflicts", len(fb.FrameConflicts))
	fmt.Printf("%-20s %3d\n", "frame_tensions", len(fb.FrameTensions))

	warnings := diags.List()
	if len(warnings) == 0 {
		fmt.Println("\nNo structural warnings.")
		return nil
	}
	fmt.Printf("\n%d warning(s):\n", len(warnings))
	for _, d := range warnings {
		fmt.Printf("  [%s] %s\n", d.Component, d.Message)
	}
	return nil
}
