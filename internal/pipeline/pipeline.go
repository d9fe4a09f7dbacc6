// Package pipeline orchestrates a full analysis run: prepare the
// document, run the four annotation passes, integrate, and score
// justice tensions. Results for unchanged inputs come from the cache.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmaren/glosa/internal/affect"
	"github.com/jmaren/glosa/internal/cache"
	"github.com/jmaren/glosa/internal/discourse"
	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/integrate"
	"github.com/jmaren/glosa/internal/justice"
	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
	"github.com/jmaren/glosa/internal/narrative"
	"github.com/jmaren/glosa/internal/parse"
	"github.com/jmaren/glosa/internal/position"
)

// Result is the complete output of one analysis run.
type Result struct {
	RunID         string                    `json:"run_id"`
	DocID         string                    `json:"doc_id"`
	Fingerprint   string                    `json:"fingerprint"`
	FromCache     bool                      `json:"from_cache"`
	Duration      time.Duration             `json:"duration_ns"`
	Document      *model.Document           `json:"document"`
	Report        *integrate.Report         `json:"report"`
	Justice       *justice.InterviewProfile `json:"justice_profile"`
	JusticeTurns  []justice.TurnProfile     `json:"justice_turns"`
	JusticeClaims []justice.Claim           `json:"justice_claims"`
}

// Pipeline wires the preparer, the passes, and the scoring layers.
type Pipeline struct {
	cfg    *model.Config
	fb     *framebook.Framebook
	fbHash string
	diags  *model.Diagnostics
	parser *parse.Parser
	gate   *language.Gate
	cache  cache.Cache
	logger *zap.Logger

	// DependencyParser is optional; when set the position pass runs its
	// syntactic step.
	depParser language.DependencyParser
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithDependencyParser attaches an external dependency parser.
func WithDependencyParser(dp language.DependencyParser) Option {
	return func(p *Pipeline) { p.depParser = dp }
}

// WithCache overrides the cache implementation.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// New builds a pipeline from configuration. The framebook is loaded
// once and shared by all runs.
func New(cfg *model.Config, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	diags := model.NewDiagnostics()

	fb, err := framebook.Load(cfg.Framebook.Path, cfg.Framebook.Overlay, diags)
	if err != nil {
		return nil, fmt.Errorf("load framebook: %w", err)
	}

	p := &Pipeline{
		cfg:    cfg,
		fb:     fb,
		fbHash: fb.Fingerprint(),
		diags:  diags,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.gate = language.NewGate(cfg.Analysis.Language, p.depParser, diags, logger)
	p.parser = parse.New(p.gate)

	if p.cache == nil && cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if cfg.Cache.Dir != "" {
			p.cache = cache.NewLayeredCache(ttl, cfg.Cache.Dir, ttl)
		} else {
			p.cache = cache.NewMemoryCache(ttl, 10*time.Minute)
		}
	}
	return p, nil
}

// Diagnostics exposes the warnings collected across runs.
func (p *Pipeline) Diagnostics() []model.Diagnostic {
	return p.diags.List()
}

// Analyze runs the full pipeline over one raw transcript.
func (p *Pipeline) Analyze(ctx context.Context, raw string, opts parse.Options) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID), zap.String("doc_id", opts.DocID))

	if opts.Language == "" {
		opts.Language = p.cfg.Analysis.Language
	}

	key := cache.Key(raw, opts.Language, p.fbHash)
	if p.cache != nil {
		if data, found := p.cache.Get(key); found {
			var res Result
			if err := json.Unmarshal(data, &res); err == nil {
				res.FromCache = true
				res.RunID = runID
				log.Debug("cache hit", zap.String("fingerprint", res.Fingerprint))
				return &res, nil
			}
			// A corrupt entry is dropped and recomputed.
			_ = p.cache.Delete(key)
		}
	}

	doc, err := p.parser.Prepare(raw, opts)
	if err != nil {
		return nil, fmt.Errorf("prepare document: %w", err)
	}
	log.Info("document prepared",
		zap.Int("turns", len(doc.Turns)),
		zap.String("language", doc.Language))

	narrPass := narrative.New(p.gate, p.fb, p.diags)
	posPass := position.New(p.gate, p.fb, p.diags)
	discPass := discourse.New(p.gate, p.fb, p.diags)
	affPass := affect.New(p.gate, p.fb, p.diags)

	for _, pass := range []interface {
		Module() string
		Analyze(*model.Document) (int, error)
	}{narrPass, posPass, discPass, affPass} {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		n, err := pass.Analyze(doc)
		if err != nil {
			return nil, fmt.Errorf("%s pass: %w", pass.Module(), err)
		}
		log.Debug("pass complete", zap.String("module", pass.Module()), zap.Int("annotations", n))
	}

	report := integrate.New(doc, narrPass, posPass, discPass, affPass).Run()
	report.Diagnostics = p.diags.List()

	ja := justice.New(doc, posPass, discPass, affPass, p.fb)
	res := &Result{
		RunID:         runID,
		DocID:         doc.ID,
		Fingerprint:   parse.Fingerprint(raw),
		Duration:      time.Since(start),
		Document:      doc,
		Report:        report,
		Justice:       ja.InterviewProfile(),
		JusticeTurns:  ja.TurnProfiles(),
		JusticeClaims: ja.Claims(),
	}

	if p.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			if err := p.cache.Set(key, data, 0); err != nil {
				log.Warn("cache write failed", zap.Error(err))
			}
		}
	}
	log.Info("analysis complete",
		zap.Int("annotations", doc.AnnotationCount()),
		zap.Duration("elapsed", res.Duration))
	return res, nil
}
