package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmaren/glosa/internal/integrate"
	"github.com/jmaren/glosa/internal/justice"
	"github.com/jmaren/glosa/internal/model"
)

func testCorpus() *model.Corpus {
	doc := model.NewDocument("iv01", "en", "")
	doc.Metadata[model.MetaParseMode] = "dialog"
	doc.Turns = []model.Turn{
		{ID: 1, Speaker: model.RoleInterviewer, SpeakerOriginal: "I",
			Text: "How did it begin?", Sentences: []string{"How did it begin?"}},
		{ID: 2, Speaker: "Respondent", SpeakerOriginal: "B",
			Text:      "Then it got worse. The cost was unfair.",
			Sentences: []string{"Then it got worse.", "The cost was unfair."}},
	}
	doc.AddAnnotation(model.Annotation{
		Module: model.ModuleNarrative, Category: "NARRATION", RuleID: "discourse_narration_00",
		Matched: "Then", TurnID: 2, Confidence: model.ConfidencePattern,
	})
	doc.AddAnnotation(model.Annotation{
		Module: model.ModuleDiscourse, Category: "ECONOMIZATION", RuleID: "frame_economization_00",
		Matched: "cost", TurnID: 2, Confidence: model.ConfidencePattern,
	})
	doc.AddAnnotation(model.Annotation{
		Module: model.ModuleDiscourse, Category: "LEGITIMACY_JUSTICE", RuleID: "frame_legitimacy_justice_00",
		Matched: "unfair", TurnID: 2, Confidence: model.ConfidencePattern,
	})

	corpus := model.NewCorpus("test")
	corpus.Add(doc)
	return corpus
}

func TestAnnotationsJSONL(t *testing.T) {
	corpus := testCorpus()
	path := filepath.Join(t.TempDir(), "annotations.jsonl")

	if err := New(nil).AnnotationsJSONL(corpus, path); err != nil {
		t.Fatalf("AnnotationsJSONL failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var row map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v", lines+1, err)
		}
		if row["doc_id"] != "iv01" {
			t.Errorf("Expected doc_id iv01, got %v", row["doc_id"])
		}
		if row["language"] != "en" {
			t.Errorf("Expected language en, got %v", row["language"])
		}
		if row["module"] == "" {
			t.Error("Expected the annotation fields to be flattened into the row")
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("Expected 3 JSONL lines, got %d", lines)
	}
}

func TestTurnSummaryCSV(t *testing.T) {
	corpus := testCorpus()
	path := filepath.Join(t.TempDir(), "turns.csv")

	if err := New(nil).TurnSummaryCSV(corpus, path); err != nil {
		t.Fatalf("TurnSummaryCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// Header plus one row: interviewer turns are excluded.
	if len(rows) != 2 {
		t.Fatalf("Expected header and 1 respondent row, got %d rows", len(rows))
	}
	header := rows[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("Missing column %q in header %v", name, header)
		return -1
	}

	row := rows[1]
	if row[col("doc_id")] != "iv01" || row[col("turn_id")] != "2" {
		t.Errorf("Expected row for iv01 turn 2, got %v", row)
	}
	if row[col("narrative_n")] != "1" {
		t.Errorf("Expected 1 narrative annotation, got %q", row[col("narrative_n")])
	}
	if row[col("discourse_n")] != "2" {
		t.Errorf("Expected 2 discourse annotations, got %q", row[col("discourse_n")])
	}
	if row[col("discourse_categories")] != "ECONOMIZATION; LEGITIMACY_JUSTICE" {
		t.Errorf("Expected sorted category list, got %q", row[col("discourse_categories")])
	}
	if row[col("total_n")] != "3" {
		t.Errorf("Expected 3 total annotations, got %q", row[col("total_n")])
	}
}

func TestDocSummaryCSV(t *testing.T) {
	corpus := testCorpus()
	path := filepath.Join(t.TempDir(), "docs.csv")

	if err := New(nil).DocSummaryCSV(corpus, path); err != nil {
		t.Fatalf("DocSummaryCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header and 1 document row, got %d rows", len(rows))
	}
	want := []string{"iv01", "en", "2", "1", "12", "3"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("Expected column %d = %q, got %q", i, v, rows[1][i])
		}
	}
}

func TestWriteAll(t *testing.T) {
	corpus := testCorpus()
	dir := filepath.Join(t.TempDir(), "exports")

	paths, err := New(nil).WriteAll(corpus, dir)
	if err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("Expected 4 export files, got %d", len(paths))
	}
	wantSuffix := []string{".jsonl", ".csv", ".csv", ".xlsx"}
	for i, p := range paths {
		if !strings.HasSuffix(p, wantSuffix[i]) {
			t.Errorf("Expected %s file, got %q", wantSuffix[i], p)
		}
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("Expected %s to exist: %v", p, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("Expected %s to be non-empty", p)
		}
	}
}

func TestReportMarkdown(t *testing.T) {
	corpus := testCorpus()
	doc := corpus.Get("iv01")
	rep := &integrate.Report{
		Summary: doc.Summarize(),
		Claims: []integrate.Claim{{
			Module: "discourse", Kind: "FRAME_COOCCURRENCE",
			Description: "frames ECONOMIZATION and LEGITIMACY_JUSTICE co-occur in 2 turns",
			Question:    "Do the frames support or contradict each other?",
			Strength:    2,
		}},
		Hypotheses: []integrate.Hypothesis{{
			Statement: "the frame ECONOMIZATION organizes this account",
			Evidence:  "evidence",
			Question:  "question",
			ToVerify:  "verify",
		}},
	}
	jp := &justice.InterviewProfile{
		Score: 1.5, Density: 1.0, Sites: 1, TurnsTotal: 1,
		PeakTurns:  []int{2},
		Trajectory: justice.TrajectoryInsufficient,
		Axes: []justice.AxisSummary{{
			AFrame: "LEGITIMACY_JUSTICE", SFrame: "ECONOMIZATION",
			Label: "fairness vs. market logic", Count: 1, TotalIntensity: 1.5, Turns: []int{2},
		}},
	}
	jclaims := []justice.Claim{{
		Kind: justice.ClaimDensity, Description: "100% of turns carry justice tensions",
		Question: "Is it central?", Strength: 1,
	}}

	md := ReportMarkdown(doc, rep, jp, jclaims, true)

	for _, want := range []string{
		"# Analysis Report: iv01",
		"Epistemic status",
		"## Overview",
		"## Claims",
		"FRAME_COOCCURRENCE",
		"## Hypotheses",
		"## Justice Tension Profile",
		"| fairness vs. market logic | 1 | 1.50 |",
		"### Justice Claims",
		"[JUSTICE_DENSITY]",
		"do not replace qualitative interpretation",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected report to contain %q", want)
		}
	}

	noFooter := ReportMarkdown(doc, rep, jp, jclaims, false)
	if strings.Contains(noFooter, "do not replace qualitative interpretation") {
		t.Error("Expected the footer to be omitted")
	}
	if strings.Contains(md, "## Condensation Sites") {
		t.Error("Expected no condensation section without sites")
	}
}

func TestWriteMarkdown(t *testing.T) {
	corpus := testCorpus()
	doc := corpus.Get("iv01")
	rep := &integrate.Report{Summary: doc.Summarize()}
	path := filepath.Join(t.TempDir(), "report.md")

	if err := WriteMarkdown(path, doc, rep, nil, nil, true); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# Analysis Report: iv01") {
		t.Error("Expected the rendered report on disk")
	}
}
