// Package framebook loads and validates the pattern-and-priority
// configuration all analytic passes draw their rules from.
//
// Two-layer model: the base framebook carries universal meta categories;
// an optional project overlay extends indicator lists and adds
// project-specific frames, topics, tensions, priorities and conflicts.
package framebook

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jmaren/glosa/internal/model"
)

// Category is one analytic category with language-specific regex
// indicators. Declaration order in the YAML is preserved: several
// tie-breaks are defined as "first in configuration order".
type Category struct {
	Name       string
	Indicators map[string][]string // language code → ordered patterns
}

// Patterns returns the indicator list for a language, or nil.
func (c Category) Patterns(lang string) []string {
	return c.Indicators[lang]
}

// CategorySet is an ordered list of categories decoded from a YAML mapping.
type CategorySet []Category

// UnmarshalYAML decodes a mapping node while keeping key order.
func (s *CategorySet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping, got %v", node.Kind)
	}
	for i := 0; i < len(node.Content); i += 2 {
		var body struct {
			Indicators map[string][]string `yaml:"indicators"`
		}
		if err := node.Content[i+1].Decode(&body); err != nil {
			return fmt.Errorf("category %q: %w", node.Content[i].Value, err)
		}
		*s = append(*s, Category{Name: node.Content[i].Value, Indicators: body.Indicators})
	}
	return nil
}

// Get returns the category with the given name, if present.
func (s CategorySet) Get(name string) (Category, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Names returns the category names in declaration order.
func (s CategorySet) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// ConflictRule downweights a target frame's count when a trigger frame is
// present in the same turn. Raw counts are never modified, only the
// derived adjusted counts.
type ConflictRule struct {
	Trigger string  `yaml:"if_present"`
	Target  string  `yaml:"downweight"`
	Factor  float64 `yaml:"downweight_factor"`
}

// TensionRule declares a theoretically expected tension between two frames.
type TensionRule struct {
	FrameA      string `yaml:"frame_a"`
	FrameB      string `yaml:"frame_b"`
	Description string `yaml:"description"`
}

// Classification partitions frames into the roles the justice engine
// needs: claim (entitlement framings), structure (systemic framings) and
// context (amplifying / dampening / neutral moderators).
type Classification struct {
	Claim     []string `yaml:"claim"`
	Structure []string `yaml:"structure"`
	Context   struct {
		Amplifying []string `yaml:"amplifying"`
		Dampening  []string `yaml:"dampening"`
		Neutral    []string `yaml:"neutral"`
	} `yaml:"context"`
}

// Empty reports whether no roles are declared at all.
func (c Classification) Empty() bool {
	return len(c.Claim) == 0 && len(c.Structure) == 0 &&
		len(c.Context.Amplifying) == 0 && len(c.Context.Dampening) == 0 &&
		len(c.Context.Neutral) == 0
}

// Framebook is the full decoded configuration.
type Framebook struct {
	Version     string `yaml:"version"`
	Description string `yaml:"description"`

	DiscourseTypes    CategorySet `yaml:"discourse_types"`
	ProcessStructures CategorySet `yaml:"process_structures"`
	Agency            CategorySet `yaml:"agency"`
	Frames            CategorySet `yaml:"frames"`
	Topoi             CategorySet `yaml:"topoi"`
	AffectDimensions  CategorySet `yaml:"affect_dimensions"`

	// Pronouns maps language code → pronoun label → pattern.
	Pronouns map[string]map[string]string `yaml:"pronouns"`

	FramePriorities map[string]int `yaml:"frame_priorities"`
	FrameConflicts  []ConflictRule `yaml:"frame_conflicts"`
	FrameTensions   []TensionRule  `yaml:"frame_tensions"`

	FrameClassification Classification `yaml:"frame_classification"`

	OverlayName string `yaml:"-"`

	fingerprint string
}

// Fingerprint identifies the loaded configuration content, overlay
// included. Cache keys use it so a framebook edit invalidates cached
// results.
func (fb *Framebook) Fingerprint() string {
	return fb.fingerprint
}

// DefaultPriority is assigned to frames without a declared priority.
const DefaultPriority = 10

// Load reads and validates a framebook, merging an optional overlay.
// A missing or unreadable file is fatal; structural problems are collected
// into diags and the recognized parts keep working.
func Load(path, overlayPath string, diags *model.Diagnostics) (*Framebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read framebook %s: %w", path, err)
	}
	fb, err := Parse(data)
	if err != nil {
		return nil, err
	}
	sum := sha256.New()
	sum.Write(data)
	if overlayPath != "" {
		odata, err := os.ReadFile(overlayPath)
		if err != nil {
			return nil, fmt.Errorf("read overlay %s: %w", overlayPath, err)
		}
		if err := fb.mergeOverlay(overlayPath, odata); err != nil {
			return nil, err
		}
		sum.Write(odata)
	}
	fb.fingerprint = hex.EncodeToString(sum.Sum(nil))[:12]
	fb.validate(diags)
	return fb, nil
}

// Parse decodes a framebook from YAML bytes.
func Parse(data []byte) (*Framebook, error) {
	var fb Framebook
	if err := yaml.Unmarshal(data, &fb); err != nil {
		return nil, fmt.Errorf("parse framebook: %w", err)
	}
	if fb.FramePriorities == nil {
		fb.FramePriorities = make(map[string]int)
	}
	return &fb, nil
}

// overlay is the decoded shape of a project overlay file.
type overlay struct {
	Overlay struct {
		Name string `yaml:"name"`
	} `yaml:"overlay"`
	Frames          map[string]overlayExt `yaml:"frames"`
	OverlayFrames   CategorySet           `yaml:"overlay_frames"`
	Topoi           map[string]overlayExt `yaml:"topoi"`
	OverlayTopoi    CategorySet           `yaml:"overlay_topoi"`
	FrameTensions   []TensionRule         `yaml:"overlay_frame_tensions"`
	FramePriorities map[string]int        `yaml:"frame_priorities"`
	FrameConflicts  []ConflictRule        `yaml:"frame_conflicts"`
}

type overlayExt struct {
	Indicators map[string][]string `yaml:"indicators"`
}

func (fb *Framebook) mergeOverlay(path string, data []byte) error {
	var ov overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("parse overlay %s: %w", path, err)
	}
	fb.OverlayName = ov.Overlay.Name
	if fb.OverlayName == "" {
		fb.OverlayName = path
	}

	fb.Frames = extendCategories(fb.Frames, ov.Frames)
	fb.Frames = append(fb.Frames, ov.OverlayFrames...)
	fb.Topoi = extendCategories(fb.Topoi, ov.Topoi)
	fb.Topoi = append(fb.Topoi, ov.OverlayTopoi...)
	fb.FrameTensions = append(fb.FrameTensions, ov.FrameTensions...)
	for name, prio := range ov.FramePriorities {
		fb.FramePriorities[name] = prio
	}
	fb.FrameConflicts = append(fb.FrameConflicts, ov.FrameConflicts...)
	return nil
}

// extendCategories appends overlay indicators onto existing categories,
// skipping duplicates. Unknown names are ignored: overlays add new
// categories through overlay_frames / overlay_topoi instead.
func extendCategories(base CategorySet, exts map[string]overlayExt) CategorySet {
	for i, c := range base {
		ext, ok := exts[c.Name]
		if !ok {
			continue
		}
		if base[i].Indicators == nil {
			base[i].Indicators = make(map[string][]string)
		}
		for lang, patterns := range ext.Indicators {
			existing := make(map[string]bool, len(base[i].Indicators[lang]))
			for _, p := range base[i].Indicators[lang] {
				existing[p] = true
			}
			for _, p := range patterns {
				if !existing[p] {
					base[i].Indicators[lang] = append(base[i].Indicators[lang], p)
				}
			}
		}
	}
	return base
}

// validate checks the structure and cross-references. Problems are
// warnings, not errors: the engine keeps operating on the frames it does
// recognize.
func (fb *Framebook) validate(diags *model.Diagnostics) {
	if diags == nil {
		return
	}
	required := []struct {
		name string
		set  CategorySet
	}{
		{"discourse_types", fb.DiscourseTypes},
		{"process_structures", fb.ProcessStructures},
		{"frames", fb.Frames},
		{"affect_dimensions", fb.AffectDimensions},
	}
	for _, sec := range required {
		if len(sec.set) == 0 {
			diags.Warn("framebook", "section %q is missing or empty", sec.name)
		}
	}

	known := make(map[string]bool, len(fb.Frames))
	for _, f := range fb.Frames {
		known[f.Name] = true
	}
	for _, t := range fb.FrameTensions {
		for _, name := range []string{t.FrameA, t.FrameB} {
			if !known[name] {
				diags.Warn("framebook", "frame tension references undeclared frame %q", name)
			}
		}
	}
	for name := range fb.FramePriorities {
		if !known[name] {
			diags.Warn("framebook", "frame_priorities references undeclared frame %q", name)
		}
	}
	for _, c := range fb.FrameConflicts {
		for _, name := range []string{c.Trigger, c.Target} {
			if !known[name] {
				diags.Warn("framebook", "frame_conflicts references undeclared frame %q", name)
			}
		}
	}
}

// Priority returns the declared priority of a frame, or DefaultPriority.
func (fb *Framebook) Priority(frame string) int {
	if p, ok := fb.FramePriorities[frame]; ok {
		return p
	}
	return DefaultPriority
}

// Languages returns every language code any section declares indicators
// for, sorted.
func (fb *Framebook) Languages() []string {
	set := make(map[string]bool)
	for _, cs := range []CategorySet{
		fb.DiscourseTypes, fb.ProcessStructures, fb.Agency,
		fb.Frames, fb.Topoi, fb.AffectDimensions,
	} {
		for _, c := range cs {
			for lang := range c.Indicators {
				set[lang] = true
			}
		}
	}
	for lang := range fb.Pronouns {
		set[lang] = true
	}
	langs := make([]string, 0, len(set))
	for lang := range set {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
