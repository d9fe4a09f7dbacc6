// Package parse turns raw transcript text into an immutable Document.
// It detects arbitrary speaker labels, classifies who is interviewing,
// and falls back to monologue mode when no dialog structure is found.
// Everything downstream only ever sees its output contract: an ordered,
// fixed turn list.
package parse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jmaren/glosa/internal/language"
	"github.com/jmaren/glosa/internal/model"
)

// RoleRespondent is the normalized role for interviewed speakers. The
// role model is binary: anything not equal to model.RoleInterviewer is a
// respondent, so label variants never break downstream filters.
const RoleRespondent = "Respondent"

// roleMonologue is assigned to every paragraph-turn of an unlabeled text.
const roleMonologue = "Speaker"

// Options controls document preparation.
type Options struct {
	DocID            string
	Language         string
	SpeakerMapping   map[string]string // optional explicit label → role; autodetected when nil
	InterviewerLabel string            // optional explicit interviewer label
	SkipPreprocess   bool              // disable inline speaker-change normalization
}

// Parser prepares documents using a language gate for sentence
// tokenization.
type Parser struct {
	gate *language.Gate
}

// New creates a parser.
func New(gate *language.Gate) *Parser {
	return &Parser{gate: gate}
}

// speakerLabel matches "Name:", "I:", "Dr. Smith:", "Speaker A:" at the
// start of a line.
var speakerLabel = regexp.MustCompile(`(?m)^([A-ZÄÖÜ][A-Za-zäöüßÄÖÜ.\s]{0,30}?):[ \t]`)

// inlineSpeaker finds candidate names for inline speaker-change cleanup.
var inlineSpeaker = regexp.MustCompile(`([A-ZÄÖÜ][a-zäöüß]+):\s`)

// Prepare builds a Document from raw transcript text.
func (p *Parser) Prepare(raw string, opts Options) (*model.Document, error) {
	if opts.DocID == "" {
		opts.DocID = "doc_001"
	}
	if opts.Language == "" {
		opts.Language = p.gate.Language
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("document %s: empty transcript", opts.DocID)
	}

	text := norm.NFC.String(raw)
	doc := model.NewDocument(opts.DocID, opts.Language, text)

	if !opts.SkipPreprocess {
		text = normalizeInlineSpeakers(text)
	}

	labels := detectSpeakers(text)
	if len(labels) > 0 {
		mapping := opts.SpeakerMapping
		if mapping == nil {
			mapping = classifySpeakers(text, labels, opts.InterviewerLabel)
		}
		doc.Turns = p.parseDialog(text, labels, mapping)
		doc.Metadata[model.MetaParseMode] = "dialog"
		doc.Metadata[model.MetaDetectedSpeakers] = labels
		doc.Metadata[model.MetaSpeakerMapping] = mapping
	} else {
		doc.Turns = p.parseMonologue(text)
		doc.Metadata[model.MetaParseMode] = "monologue"
		doc.Metadata[model.MetaDetectedSpeakers] = []string{}
		doc.Metadata[model.MetaSpeakerMapping] = map[string]string{}
	}
	doc.Metadata[model.MetaFingerprint] = Fingerprint(text)

	return doc, nil
}

// Fingerprint returns a short content hash of the normalized source.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:12]
}

// normalizeInlineSpeakers moves mid-line speaker changes
// ("... question? Amara: answer ...") onto their own lines so the dialog
// segmentation sees them.
func normalizeInlineSpeakers(text string) string {
	counts := make(map[string]int)
	for _, m := range inlineSpeaker.FindAllStringSubmatch(text, -1) {
		counts[m[1]]++
	}
	for name, n := range counts {
		if n < 2 {
			continue
		}
		re := regexp.MustCompile(`([.!?])\s+(` + regexp.QuoteMeta(name) + `):\s`)
		text = re.ReplaceAllString(text, "$1\n\n$2: ")
	}
	return text
}

// detectSpeakers returns all distinct speaker labels, or nil when fewer
// than two are found. Two distinct labels are required for dialog mode;
// repeated turns of a single label still parse as monologue.
func detectSpeakers(text string) []string {
	set := make(map[string]bool)
	for _, m := range speakerLabel.FindAllStringSubmatch(text, -1) {
		set[strings.TrimSpace(m[1])] = true
	}
	if len(set) < 2 {
		return nil
	}
	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

var interviewerKeywords = wordSet(
	"interviewer", "interviewerin", "int", "i",
	"moderator", "moderatorin", "mod",
	"forscher", "forscherin", "researcher",
	"fragender", "fragende",
)

var respondentKeywords = wordSet(
	"befragter", "befragte", "b", "respondent", "interviewee",
	"teilnehmer", "teilnehmerin", "participant", "p",
	"erzähler", "erzählerin", "narrator",
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// speakerStats aggregates per-label turn properties for the
// classification heuristics.
type speakerStats struct {
	turns         int
	avgLength     float64
	questionRatio float64
}

// classifySpeakers assigns Interviewer / Respondent roles to detected
// labels. Explicit and well-known labels win; the rest are classified by
// who asks more questions in shorter turns.
func classifySpeakers(text string, labels []string, explicitInterviewer string) map[string]string {
	mapping := make(map[string]string, len(labels))

	for _, label := range labels {
		lower := strings.ToLower(strings.TrimSpace(label))
		switch {
		case explicitInterviewer != "" && lower == strings.ToLower(explicitInterviewer):
			mapping[label] = model.RoleInterviewer
		case interviewerKeywords[lower]:
			mapping[label] = model.RoleInterviewer
		case respondentKeywords[lower]:
			mapping[label] = RoleRespondent
		}
	}

	var unclassified []string
	for _, label := range labels {
		if _, ok := mapping[label]; !ok {
			unclassified = append(unclassified, label)
		}
	}
	if len(unclassified) > 0 {
		stats := collectStats(text, labels)
		for _, label := range unclassified {
			st, ok := stats[label]
			if !ok {
				continue
			}
			var otherLen, otherQ float64
			others := 0
			for _, l := range labels {
				if l == label {
					continue
				}
				if ost, ok := stats[l]; ok {
					otherLen += ost.avgLength
					otherQ += ost.questionRatio
					others++
				}
			}
			if others == 0 {
				continue
			}
			otherLen /= float64(others)
			otherQ /= float64(others)

			isInterviewer := st.avgLength < otherLen*0.5 ||
				st.questionRatio > otherQ*2 ||
				st.questionRatio > 0.8
			if isInterviewer {
				mapping[label] = model.RoleInterviewer
			} else {
				mapping[label] = RoleRespondent
			}
		}
	}

	// Whatever is still open: respondent if an interviewer exists,
	// otherwise the first open label becomes the interviewer.
	for _, label := range labels {
		if _, ok := mapping[label]; ok {
			continue
		}
		if hasRole(mapping, model.RoleInterviewer) {
			mapping[label] = RoleRespondent
		} else {
			mapping[label] = model.RoleInterviewer
		}
	}
	return mapping
}

func hasRole(mapping map[string]string, role string) bool {
	for _, r := range mapping {
		if r == role {
			return true
		}
	}
	return false
}

func collectStats(text string, labels []string) map[string]speakerStats {
	segments := segmentDialog(text, labels)
	byLabel := make(map[string][]string)
	for _, seg := range segments {
		byLabel[seg.label] = append(byLabel[seg.label], seg.content)
	}
	stats := make(map[string]speakerStats, len(byLabel))
	for label, contents := range byLabel {
		total := strings.Join(contents, " ")
		stats[label] = speakerStats{
			turns:         len(contents),
			avgLength:     float64(len(total)) / float64(len(contents)),
			questionRatio: float64(strings.Count(total, "?")) / float64(len(contents)),
		}
	}
	return stats
}

type segment struct {
	label   string
	content string
}

// segmentDialog slices the text at line-initial speaker labels. Labels
// are matched longest-first so "Interviewer B" never loses to "I".
func segmentDialog(text string, labels []string) []segment {
	sorted := append([]string(nil), labels...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, l := range sorted {
		quoted[i] = regexp.QuoteMeta(l)
	}
	re := regexp.MustCompile(`(?m)^(` + strings.Join(quoted, "|") + `):[ \t]*`)

	matches := re.FindAllStringSubmatchIndex(text, -1)
	var segments []segment
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segments = append(segments, segment{
			label:   text[m[2]:m[3]],
			content: strings.TrimSpace(text[m[1]:end]),
		})
	}
	return segments
}

func (p *Parser) parseDialog(text string, labels []string, mapping map[string]string) []model.Turn {
	var turns []model.Turn
	for i, seg := range segmentDialog(text, labels) {
		content := strings.Join(strings.Fields(seg.content), " ")
		role, ok := mapping[seg.label]
		if !ok {
			role = RoleRespondent
		}
		turns = append(turns, model.Turn{
			ID:              i + 1,
			Speaker:         role,
			SpeakerOriginal: seg.label,
			Text:            content,
			Sentences:       p.gate.SplitSentences(content),
		})
	}
	return turns
}

// parseMonologue treats each non-empty paragraph as one turn of a single
// non-interviewer speaker.
func (p *Parser) parseMonologue(text string) []model.Turn {
	paragraphs := strings.Split(text, "\n\n")
	var turns []model.Turn
	for _, para := range paragraphs {
		content := strings.Join(strings.Fields(para), " ")
		if content == "" {
			continue
		}
		turns = append(turns, model.Turn{
			ID:              len(turns) + 1,
			Speaker:         roleMonologue,
			SpeakerOriginal: roleMonologue,
			Text:            content,
			Sentences:       p.gate.SplitSentences(content),
		})
	}
	if len(turns) == 0 {
		content := strings.Join(strings.Fields(text), " ")
		turns = append(turns, model.Turn{
			ID:              1,
			Speaker:         roleMonologue,
			SpeakerOriginal: roleMonologue,
			Text:            content,
			Sentences:       p.gate.SplitSentences(content),
		})
	}
	return turns
}
