package model

import (
	"encoding/json"
	"sync"
)

// Metadata keys written by the document preparer.
const (
	MetaParseMode        = "parse_mode"        // "dialog" or "monologue"
	MetaDetectedSpeakers = "detected_speakers" // []string of labels found in source
	MetaSpeakerMapping   = "speaker_mapping"   // map[string]string label → role
	MetaFingerprint      = "fingerprint"       // content hash of the normalized source
)

// Document is a single interview. Turns are fixed after preparation; the
// annotation list grows append-only as passes run. The document owns both —
// passes hold only a transient reference during analysis.
type Document struct {
	ID       string                 `json:"doc_id"`
	Language string                 `json:"language"`
	RawText  string                 `json:"-"`
	Turns    []Turn                 `json:"turns"`
	Metadata map[string]interface{} `json:"metadata"`

	mu          sync.Mutex
	annotations []Annotation
	revision    uint64
}

// NewDocument creates an empty document shell. Turns are attached by the
// preparer before any pass runs.
func NewDocument(id, language, rawText string) *Document {
	return &Document{
		ID:       id,
		Language: language,
		RawText:  rawText,
		Metadata: make(map[string]interface{}),
	}
}

// AddAnnotation appends an annotation. Safe for concurrent use by passes
// that partition the write space by module id.
func (d *Document) AddAnnotation(a Annotation) {
	d.mu.Lock()
	d.annotations = append(d.annotations, a)
	d.revision++
	d.mu.Unlock()
}

// Annotations returns the annotations matching the filter, in insertion
// order. The returned slice is a copy; the stored annotations are never
// edited or deleted.
func (d *Document) Annotations(f AnnotationFilter) []Annotation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Annotation, 0, len(d.annotations))
	for _, a := range d.annotations {
		if f.matches(a) {
			out = append(out, a)
		}
	}
	return out
}

// AnnotationCount returns the total number of annotations.
func (d *Document) AnnotationCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.annotations)
}

// Revision returns a counter that increases whenever the annotation set
// grows. Memoized aggregates are valid only while the revision they were
// computed at is still current.
func (d *Document) Revision() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revision
}

// documentJSON is the serialized form. Annotations travel with the
// document so cached results round-trip losslessly.
type documentJSON struct {
	ID          string                 `json:"doc_id"`
	Language    string                 `json:"language"`
	Turns       []Turn                 `json:"turns"`
	Metadata    map[string]interface{} `json:"metadata"`
	Annotations []Annotation           `json:"annotations"`
}

// MarshalJSON serializes the document including its annotations.
func (d *Document) MarshalJSON() ([]byte, error) {
	d.mu.Lock()
	anns := make([]Annotation, len(d.annotations))
	copy(anns, d.annotations)
	d.mu.Unlock()
	return json.Marshal(documentJSON{
		ID:          d.ID,
		Language:    d.Language,
		Turns:       d.Turns,
		Metadata:    d.Metadata,
		Annotations: anns,
	})
}

// UnmarshalJSON restores a serialized document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var dj documentJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return err
	}
	d.ID = dj.ID
	d.Language = dj.Language
	d.Turns = dj.Turns
	d.Metadata = dj.Metadata
	d.mu.Lock()
	d.annotations = dj.Annotations
	d.revision = uint64(len(dj.Annotations))
	d.mu.Unlock()
	return nil
}

// Turn returns the turn with the given id, or nil.
func (d *Document) Turn(id int) *Turn {
	for i := range d.Turns {
		if d.Turns[i].ID == id {
			return &d.Turns[i]
		}
	}
	return nil
}

// RespondentTurns returns every turn not attributed to the interviewer.
func (d *Document) RespondentTurns() []*Turn {
	var out []*Turn
	for i := range d.Turns {
		if d.Turns[i].IsRespondent() {
			out = append(out, &d.Turns[i])
		}
	}
	return out
}

// InterviewerTurns returns the interviewer's turns.
func (d *Document) InterviewerTurns() []*Turn {
	var out []*Turn
	for i := range d.Turns {
		if d.Turns[i].IsInterviewer() {
			out = append(out, &d.Turns[i])
		}
	}
	return out
}

// Summary aggregates basic document statistics.
type Summary struct {
	DocID            string         `json:"doc_id"`
	Language         string         `json:"language"`
	Turns            int            `json:"n_turns"`
	InterviewerTurns int            `json:"n_interviewer_turns"`
	RespondentTurns  int            `json:"n_respondent_turns"`
	Sentences        int            `json:"n_sentences"`
	Words            int            `json:"n_words"`
	Annotations      int            `json:"n_annotations"`
	PerModule        map[string]int `json:"annotations_per_module"`
	ParseMode        string         `json:"parse_mode"`
}

// Summarize computes the document summary.
func (d *Document) Summarize() Summary {
	s := Summary{
		DocID:     d.ID,
		Language:  d.Language,
		Turns:     len(d.Turns),
		PerModule: make(map[string]int),
	}
	for i := range d.Turns {
		t := &d.Turns[i]
		if t.IsInterviewer() {
			s.InterviewerTurns++
		} else {
			s.RespondentTurns++
		}
		s.Sentences += t.SentenceCount()
		s.Words += t.WordCount()
	}
	for _, a := range d.Annotations(AnnotationFilter{}) {
		s.PerModule[a.Module]++
		s.Annotations++
	}
	if mode, ok := d.Metadata[MetaParseMode].(string); ok {
		s.ParseMode = mode
	}
	return s
}
