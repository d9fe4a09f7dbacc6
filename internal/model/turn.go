package model

import "strings"

// RoleInterviewer is the canonical speaker role for the interviewing side.
// Every other role value counts as respondent: downstream logic must test
// against RoleInterviewer, never against a specific respondent label.
const RoleInterviewer = "Interviewer"

// Turn is one contiguous speech contribution.
type Turn struct {
	ID              int      `json:"turn_id"`          // 1-based, contiguous
	Speaker         string   `json:"speaker"`          // normalized role: "Interviewer" or a respondent value
	SpeakerOriginal string   `json:"speaker_original"` // label as found in the source, e.g. "Amara"
	Text            string   `json:"text"`
	Sentences       []string `json:"sentences"`
}

// IsRespondent reports whether this turn belongs to the interviewed person.
func (t *Turn) IsRespondent() bool {
	return t.Speaker != RoleInterviewer
}

// IsInterviewer reports whether this turn belongs to the interviewer.
func (t *Turn) IsInterviewer() bool {
	return t.Speaker == RoleInterviewer
}

// WordCount returns the number of whitespace-separated tokens.
func (t *Turn) WordCount() int {
	return len(strings.Fields(t.Text))
}

// SentenceCount returns the number of tokenized sentences.
func (t *Turn) SentenceCount() int {
	return len(t.Sentences)
}
