// Package language provides the capability gate every pass consults
// before using optional language resources. Regex patterns always work;
// punkt sentence segmentation and dependency parsing are best-effort and
// their absence only disables the corresponding enrichment.
package language

import (
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"

	"github.com/jmaren/glosa/internal/framebook"
	"github.com/jmaren/glosa/internal/model"
)

// Token is one parser-classified token. Only grammatical subjects are
// reported; everything the positioning pass needs to decide lemma class
// and voice is carried on the token.
type Token struct {
	Text      string   // surface form
	Lemma     string   // lowercased lemma
	Offset    int      // byte offset into the analyzed text
	Dep       string   // dependency relation, e.g. "nsubj", "nsubj:pass"
	HeadText  string   // governing verb surface form
	HeadPOS   string   // governing head part of speech, e.g. "VERB", "AUX"
	AuxLemmas []string // lemmas of auxiliary children of the head
}

// DependencyParser extracts grammatical-subject tokens from text.
// Implementations are injected; none ships with the engine.
type DependencyParser interface {
	Subjects(text string) ([]Token, error)
}

// Gate holds the capability flags for one language, determined once at
// construction. Call sites check the flags; they never probe resources
// themselves.
type Gate struct {
	Language string

	hasSegmenter bool
	hasParser    bool

	segmenter *sentences.DefaultSentenceTokenizer
	parser    DependencyParser
	diags     *model.Diagnostics
	logger    *zap.Logger
}

// sentenceBoundary is the segmentation fallback when no punkt model is
// available for the language.
var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

// NewGate probes resources for the language. parser may be nil.
func NewGate(lang string, parser DependencyParser, diags *model.Diagnostics, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if diags == nil {
		diags = model.NewDiagnostics()
	}
	g := &Gate{
		Language:  lang,
		parser:    parser,
		hasParser: parser != nil,
		diags:     diags,
		logger:    logger,
	}
	if lang == "en" {
		if tok, err := english.NewSentenceTokenizer(nil); err == nil {
			g.segmenter = tok
			g.hasSegmenter = true
		} else {
			logger.Warn("punkt segmenter unavailable, using regex fallback",
				zap.String("language", lang), zap.Error(err))
		}
	}
	return g
}

// HasSegmenter reports whether a trained sentence segmenter is available.
func (g *Gate) HasSegmenter() bool { return g.hasSegmenter }

// HasParser reports whether a dependency parser is available.
func (g *Gate) HasParser() bool { return g.hasParser }

// CapabilityLevel is "full" with a parser, otherwise "light".
func (g *Gate) CapabilityLevel() string {
	if g.hasParser {
		return "full"
	}
	return "light"
}

// SplitSentences segments text into sentences, via punkt when available
// and a terminator-based splitter otherwise.
func (g *Gate) SplitSentences(text string) []string {
	if g.hasSegmenter {
		var out []string
		for _, s := range g.segmenter.Tokenize(text) {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	var out []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Subjects runs the dependency parser. Any failure is caught here and
// degrades to the pattern-only path: the returned slice is nil and a
// warning is recorded once.
func (g *Gate) Subjects(text string) []Token {
	if !g.hasParser {
		return nil
	}
	toks, err := g.parser.Subjects(text)
	if err != nil {
		g.diags.WarnOnce("parser:"+g.Language, "language",
			"dependency parser failed for language %q, syntactic enrichment disabled: %v", g.Language, err)
		g.logger.Warn("dependency parse failed", zap.String("language", g.Language), zap.Error(err))
		return nil
	}
	return toks
}

// Patterns returns the category's indicators for the gate's language.
// A category with no patterns for this language yields an empty list and
// a once-per-category warning so the researcher knows coverage is
// degraded.
func (g *Gate) Patterns(c framebook.Category) []string {
	patterns := c.Patterns(g.Language)
	if len(patterns) == 0 {
		g.diags.WarnOnce("patterns:"+g.Language+":"+c.Name, "language",
			"no %q patterns for language %q", c.Name, g.Language)
	}
	return patterns
}

// Pronouns returns the pronoun label→pattern map for the gate's language.
func (g *Gate) Pronouns(fb *framebook.Framebook) map[string]string {
	prons := fb.Pronouns[g.Language]
	if len(prons) == 0 {
		g.diags.WarnOnce("pronouns:"+g.Language, "language",
			"no pronoun patterns for language %q", g.Language)
	}
	return prons
}

// Stopwords returns a minimal stopword set for the language. Empty when
// the language is not covered.
func (g *Gate) Stopwords() map[string]bool {
	return minimalStopwords[g.Language]
}

var minimalStopwords = map[string]map[string]bool{
	"en": wordSet("the a an and or but is are was has have i you he she it we they in on at with for from to not also then if"),
	"de": wordSet("der die das ein eine und oder aber ist sind war hat haben ich du er sie es wir ihr in an auf mit für von zu nicht auch noch dann wenn als nach bei"),
	"fr": wordSet("le la les un une et ou mais est sont je tu il elle nous vous ils dans sur avec pour de ne pas aussi puis si"),
}

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}
