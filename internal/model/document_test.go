package model

import (
	"encoding/json"
	"testing"
)

func testDoc() *Document {
	doc := NewDocument("doc_test", "en", "raw")
	doc.Turns = []Turn{
		{ID: 1, Speaker: RoleInterviewer, SpeakerOriginal: "I", Text: "How did it start?", Sentences: []string{"How did it start?"}},
		{ID: 2, Speaker: "Respondent", SpeakerOriginal: "B", Text: "It started slowly. Then everything changed.", Sentences: []string{"It started slowly.", "Then everything changed."}},
		{ID: 3, Speaker: "Respondent", SpeakerOriginal: "B", Text: "I had no choice.", Sentences: []string{"I had no choice."}},
	}
	doc.Metadata[MetaParseMode] = "dialog"
	return doc
}

func TestDocument_AnnotationFilter(t *testing.T) {
	doc := testDoc()
	doc.AddAnnotation(Annotation{Module: ModuleNarrative, Category: "NARRATION", TurnID: 2})
	doc.AddAnnotation(Annotation{Module: ModuleNarrative, Category: "TRAJECTORY", TurnID: 3})
	doc.AddAnnotation(Annotation{Module: ModuleAffect, Category: "AMBIVALENCE", TurnID: 2})

	if got := len(doc.Annotations(AnnotationFilter{})); got != 3 {
		t.Errorf("Expected 3 annotations, got %d", got)
	}
	if got := len(doc.Annotations(AnnotationFilter{Module: ModuleNarrative})); got != 2 {
		t.Errorf("Expected 2 narrative annotations, got %d", got)
	}
	if got := len(doc.Annotations(AnnotationFilter{TurnID: 2})); got != 2 {
		t.Errorf("Expected 2 annotations in turn 2, got %d", got)
	}
	if got := len(doc.Annotations(AnnotationFilter{Module: ModuleAffect, Category: "AMBIVALENCE"})); got != 1 {
		t.Errorf("Expected 1 filtered annotation, got %d", got)
	}
}

func TestDocument_RevisionGrows(t *testing.T) {
	doc := testDoc()
	if doc.Revision() != 0 {
		t.Errorf("Expected revision 0 on fresh document, got %d", doc.Revision())
	}
	doc.AddAnnotation(Annotation{Module: ModuleAffect, TurnID: 2})
	doc.AddAnnotation(Annotation{Module: ModuleAffect, TurnID: 3})
	if doc.Revision() != 2 {
		t.Errorf("Expected revision 2, got %d", doc.Revision())
	}
}

func TestDocument_RespondentTurns(t *testing.T) {
	doc := testDoc()
	resp := doc.RespondentTurns()
	if len(resp) != 2 {
		t.Fatalf("Expected 2 respondent turns, got %d", len(resp))
	}
	if resp[0].ID != 2 || resp[1].ID != 3 {
		t.Errorf("Expected turns 2 and 3, got %d and %d", resp[0].ID, resp[1].ID)
	}
	if got := len(doc.InterviewerTurns()); got != 1 {
		t.Errorf("Expected 1 interviewer turn, got %d", got)
	}
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	doc := testDoc()
	doc.AddAnnotation(Annotation{Module: ModuleDiscourse, Category: "ECONOMIZATION", TurnID: 2, Matched: "cost"})

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored Document
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if restored.ID != doc.ID || restored.Language != doc.Language {
		t.Errorf("Identity fields lost: got %s/%s", restored.ID, restored.Language)
	}
	if len(restored.Turns) != len(doc.Turns) {
		t.Errorf("Expected %d turns, got %d", len(doc.Turns), len(restored.Turns))
	}
	anns := restored.Annotations(AnnotationFilter{})
	if len(anns) != 1 {
		t.Fatalf("Expected 1 annotation after round trip, got %d", len(anns))
	}
	if anns[0].Matched != "cost" {
		t.Errorf("Expected matched text preserved, got %q", anns[0].Matched)
	}
	if restored.Revision() != 1 {
		t.Errorf("Expected restored revision 1, got %d", restored.Revision())
	}
}

func TestDocument_Summarize(t *testing.T) {
	doc := testDoc()
	doc.AddAnnotation(Annotation{Module: ModuleNarrative, TurnID: 2})
	doc.AddAnnotation(Annotation{Module: ModuleAffect, TurnID: 2})

	s := doc.Summarize()
	if s.Turns != 3 || s.InterviewerTurns != 1 || s.RespondentTurns != 2 {
		t.Errorf("Turn counts wrong: %+v", s)
	}
	if s.Sentences != 4 {
		t.Errorf("Expected 4 sentences, got %d", s.Sentences)
	}
	if s.Annotations != 2 || s.PerModule[ModuleNarrative] != 1 {
		t.Errorf("Annotation counts wrong: %+v", s)
	}
	if s.ParseMode != "dialog" {
		t.Errorf("Expected parse mode dialog, got %q", s.ParseMode)
	}
}

func TestTurn_Counts(t *testing.T) {
	turn := Turn{Text: "one two three", Sentences: []string{"one two three"}}
	if turn.WordCount() != 3 {
		t.Errorf("Expected 3 words, got %d", turn.WordCount())
	}
	if turn.SentenceCount() != 1 {
		t.Errorf("Expected 1 sentence, got %d", turn.SentenceCount())
	}
	if !turn.IsRespondent() {
		t.Error("Turn without interviewer role should count as respondent")
	}
}
