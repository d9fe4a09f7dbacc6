package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmaren/glosa/internal/parse"
	"github.com/jmaren/glosa/internal/pipeline"
)

// Analyzer runs one transcript through the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, raw string, opts parse.Options) (*pipeline.Result, error)
}

// AnalyzeJob analyzes one transcript file.
type AnalyzeJob struct {
	Path     string
	Language string
	Analyzer Analyzer
}

// Execute reads the transcript and runs the analysis.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return &AnalyzeResult{Path: j.Path, Error: fmt.Errorf("read transcript: %w", err)}
	}
	res, err := j.Analyzer.Analyze(ctx, string(data), parse.Options{
		DocID:    docID(j.Path),
		Language: j.Language,
	})
	return &AnalyzeResult{Path: j.Path, Result: res, Error: err}
}

// AnalyzeResult pairs a transcript path with its analysis outcome.
type AnalyzeResult struct {
	Path   string
	Result *pipeline.Result
	Error  error
}

// GetError returns the job's error, if any.
func (r *AnalyzeResult) GetError() error { return r.Error }

// BatchProcessor analyzes many transcripts concurrently.
type BatchProcessor struct {
	analyzer    Analyzer
	language    string
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(analyzer Analyzer, language string, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		language:    language,
		concurrency: concurrency,
	}
}

// ProcessPaths analyzes the given transcript files concurrently.
// Results are drained into a collector while jobs are still being
// submitted, so the corpus size is never bounded by the pool's channel
// buffers. Results come back sorted by path so batch output is
// deterministic regardless of worker scheduling. Cancelling ctx stops
// the batch; already-collected results are still returned.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}
	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	collector := NewResultCollector()
	done := pool.Collect(collector)

	for _, path := range paths {
		pool.Submit(&AnalyzeJob{Path: path, Language: b.language, Analyzer: b.analyzer})
	}
	pool.Wait()
	<-done

	results := collector.Results()
	out := make([]*AnalyzeResult, len(results))
	for i, r := range results {
		out[i] = r.(*AnalyzeResult)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ProcessDir analyzes every .txt transcript in a directory.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*AnalyzeResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("glob transcripts: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .txt transcripts in %s", dir)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ProcessFile reads transcript paths from a list file and analyzes
// them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*AnalyzeResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads transcript paths from a file, one per line.
// Blank lines and # comments are skipped; duplicates are dropped.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}

// docID derives a document id from a transcript path.
func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
