package model

import "time"

// Confidence classifies how an annotation was produced.
type Confidence string

const (
	// ConfidencePattern marks annotations produced by regex rules.
	ConfidencePattern Confidence = "pattern"
	// ConfidenceSyntactic marks annotations backed by a dependency parse.
	ConfidenceSyntactic Confidence = "syntactic"
	// ConfidenceManual marks annotations overridden or added by a researcher.
	ConfidenceManual Confidence = "manual"
)

// Annotation is a single analytic marker. It is immutable once created:
// every heuristic produces annotations, never findings, and each one stays
// attributable to the rule that produced it.
type Annotation struct {
	Module     string     `json:"module"`         // producing pass: narrative, position, discourse, affect
	Category   string     `json:"category"`       // e.g. "NARRATION", "ECONOMIZATION", "PRON_SELF"
	RuleID     string     `json:"rule_id"`        // which rule fired, e.g. "frame_economization_02"
	Pattern    string     `json:"pattern"`        // the literal regex that matched
	Matched    string     `json:"matched_text"`   // matched span, original casing preserved
	Start      int        `json:"matched_start"`  // span start offset into the turn text
	End        int        `json:"matched_end"`    // span end offset into the turn text
	Sentence   string     `json:"sentence"`       // containing sentence, recovered at match time
	TurnID     int        `json:"turn_id"`        // owning turn
	Confidence Confidence `json:"confidence"`
	Note       string     `json:"note,omitempty"` // optional researcher note
	CreatedAt  time.Time  `json:"timestamp"`
}

// AnnotationFilter selects annotations by module, category and/or turn.
// Zero values match everything.
type AnnotationFilter struct {
	Module   string
	Category string
	TurnID   int
}

func (f AnnotationFilter) matches(a Annotation) bool {
	if f.Module != "" && a.Module != f.Module {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.TurnID != 0 && a.TurnID != f.TurnID {
		return false
	}
	return true
}
