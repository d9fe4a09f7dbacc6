package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jmaren/glosa/internal/export"
	"github.com/jmaren/glosa/internal/model"
	"github.com/jmaren/glosa/internal/pipeline"
	"github.com/jmaren/glosa/internal/worker"
)

var (
	batchListFile  string
	batchOutDir    string
	batchWorkers   int
	batchFramebook string
	batchOverlay   string
	batchLang      string
	batchTimeout   time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze a whole directory of transcripts and export the corpus",
	Long: `Batch analyzes every .txt transcript in a directory (or the paths
listed in a file via --list) using a worker pool, then writes the
corpus exports: annotations as JSONL, turn and document summaries as
CSV, and a combined Excel workbook.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchListFile, "list", "l", "", "file with transcript paths, one per line")
	batchCmd.Flags().StringVarP(&batchOutDir, "out-dir", "o", "exports", "directory for export files")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent analyses (default: number of CPUs)")
	batchCmd.Flags().StringVar(&batchFramebook, "framebook", "", "framebook file (overrides config)")
	batchCmd.Flags().StringVar(&batchOverlay, "overlay", "", "project overlay file (overrides config)")
	batchCmd.Flags().StringVar(&batchLang, "lang", "", "transcript language code (overrides config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total batch timeout")

	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && batchListFile == "" {
		return fmt.Errorf("provide a transcript directory or --list file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchFramebook != "" {
		cfg.Framebook.Path = batchFramebook
	}
	if batchOverlay != "" {
		cfg.Framebook.Overlay = batchOverlay
	}
	if batchLang != "" {
		cfg.Analysis.Language = batchLang
	}
	if batchWorkers > 0 {
		cfg.Concurrency.Workers = batchWorkers
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

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	proc := worker.NewBatchProcessor(p, cfg.Analysis.Language, cfg.Concurrency.Workers)

	var results []*worker.AnalyzeResult
	if batchListFile != "" {
		results, err = proc.ProcessFile(ctx, batchListFile)
	} else {
		results, err = proc.ProcessDir(ctx, args[0])
	}
	if err != nil {
		return err
	}

	corpus := model.NewCorpus("batch")
	failed := 0
	for _, r := range results {
		if rerr := r.GetError(); rerr != nil {
			failed++
			logger.Warn("transcript failed", zap.String("path", r.Path), zap.Error(rerr))
			fmt.Printf("FAILED  %s: %v\n", r.Path, rerr)
			continue
		}
		corpus.Add(r.Result.Document)
		fmt.Printf("ok      %s (%d turns, %d annotations)\n",
			r.Path, len(r.Result.Document.Turns), r.Result.Document.AnnotationCount())
	}

	if corpus.Len() == 0 {
		return fmt.Errorf("no transcript analyzed successfully (%d failed)", failed)
	}

	files, err := export.New(logger).WriteAll(corpus, batchOutDir)
	if err != nil {
		return fmt.Errorf("export corpus: %w", err)
	}

	fmt.Printf("\nAnalyzed %d/%d transcripts\n", corpus.Len(), len(results))
	for _, f := range files {
		fmt.Printf("Wrote %s\n", f)
	}
	return nil
}
