package markup

import (
	"strings"
	"testing"
)

const sampleAssessment = `<?xml version="1.0" encoding="UTF-8"?>
<questestinterop>
  <assessment ident="quiz_1" title="Unit Quiz">
    <section ident="root_section">
      <item ident="q_pick" title="Pick One">
        <itemmetadata>
          <qtimetadata>
            <qtimetadatafield>
              <fieldlabel>question_type</fieldlabel>
              <fieldentry>multiple_choice_question</fieldentry>
            </qtimetadatafield>
            <qtimetadatafield>
              <fieldlabel>points_possible</fieldlabel>
              <fieldentry>2.0</fieldentry>
            </qtimetadatafield>
          </qtimetadata>
        </itemmetadata>
        <presentation>
          <material>
            <mattext texttype="text/html">&lt;p&gt;Which one?&lt;/p&gt;</mattext>
          </material>
          <response_lid ident="response1">
            <render_choice>
              <response_label ident="1001">
                <material><mattext>Right</mattext></material>
              </response_label>
              <response_label ident="1002">
                <material><mattext>Wrong</mattext></material>
              </response_label>
            </render_choice>
          </response_lid>
        </presentation>
        <resprocessing>
          <respcondition continue="No">
            <conditionvar><varequal respident="response1">1001</varequal></conditionvar>
            <setvar action="Set" varname="SCORE">100</setvar>
          </respcondition>
        </resprocessing>
      </item>
      <item ident="q_essay" title="Explain">
        <itemmetadata>
          <qtimetadata>
            <qtimetadatafield>
              <fieldlabel>question_type</fieldlabel>
              <fieldentry>essay_question</fieldentry>
            </qtimetadatafield>
          </qtimetadata>
        </itemmetadata>
        <presentation>
          <material><mattext>Explain the tradeoff.</mattext></material>
        </presentation>
      </item>
    </section>
  </assessment>
</questestinterop>`

func TestParseQuestionsAssessmentDocument(t *testing.T) {
	questions, err := ParseQuestions([]byte(sampleAssessment))
	if err != nil {
		t.Fatalf("Expected parse to succeed, got %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}

	q := questions[0]
	if q.Identifier != "q_pick" || q.Title != "Pick One" {
		t.Errorf("Expected q_pick/Pick One, got %q/%q", q.Identifier, q.Title)
	}
	if q.Kind != "multiple_choice_question" {
		t.Errorf("Expected metadata question kind, got %q", q.Kind)
	}
	if q.Points != 2.0 {
		t.Errorf("Expected 2.0 points from metadata, got %v", q.Points)
	}
	if !strings.Contains(q.Text, "Which one?") {
		t.Errorf("Expected question text from mattext, got %q", q.Text)
	}

	if len(q.Answers) != 2 {
		t.Fatalf("Expected 2 answers, got %d", len(q.Answers))
	}
	if q.Answers[0].ID != "1001" || q.Answers[0].Weight != 100 {
		t.Errorf("Expected answer 1001 scored 100, got %q/%v", q.Answers[0].ID, q.Answers[0].Weight)
	}
	if q.Answers[1].Weight != 0 {
		t.Errorf("Expected answer 1002 scored 0, got %v", q.Answers[1].Weight)
	}
	if !strings.Contains(q.Answers[0].Text, "Right") || strings.Contains(q.Answers[0].Text, "<material>") {
		t.Errorf("Expected plain answer text, got %q", q.Answers[0].Text)
	}

	if questions[1].Kind != "essay_question" {
		t.Errorf("Expected essay kind, got %q", questions[1].Kind)
	}
	if len(questions[1].Answers) != 0 {
		t.Errorf("Expected no answers on an essay question, got %d", len(questions[1].Answers))
	}
	if questions[1].Points != 1.0 {
		t.Errorf("Expected default 1.0 points, got %v", questions[1].Points)
	}
}

func TestParseQuestionSingleItemDocument(t *testing.T) {
	doc := `<item identifier="q1">
  <title>Standalone</title>
  <question_type>true_false_question</question_type>
  <itemBody><p>Water is wet.</p></itemBody>
  <responseDeclaration cardinality="single">
    <correctResponse><value>t</value></correctResponse>
  </responseDeclaration>
  <simpleChoice identifier="t">True</simpleChoice>
  <simpleChoice identifier="f">False</simpleChoice>
</item>`

	q, err := ParseQuestion([]byte(doc))
	if err != nil {
		t.Fatalf("Expected parse to succeed, got %v", err)
	}
	if q.Kind != "true_false_question" {
		t.Errorf("Expected declared kind, got %q", q.Kind)
	}
	if len(q.Answers) != 2 || q.Answers[0].Weight != 100 || q.Answers[1].Weight != 0 {
		t.Errorf("Unexpected answers: %+v", q.Answers)
	}
}

func TestParseQuestionUnknownShapeDefaultsToEssay(t *testing.T) {
	q, err := ParseQuestion([]byte(`<item identifier="odd"><blob>?</blob></item>`))
	if err != nil {
		t.Fatalf("Expected parse to succeed, got %v", err)
	}
	if q.Kind != "essay_question" {
		t.Errorf("Expected essay default for unknown shape, got %q", q.Kind)
	}
	if q.Title != "Question" {
		t.Errorf("Expected default title, got %q", q.Title)
	}
}

func TestParseQuizMeta(t *testing.T) {
	doc := `<quiz identifier="quiz_1">
  <title>Unit Quiz</title>
  <description>&lt;p&gt;Covers unit one.&lt;/p&gt;</description>
  <quiz_type>graded_quiz</quiz_type>
  <points_possible>10.0</points_possible>
  <time_limit>25</time_limit>
  <allowed_attempts>3</allowed_attempts>
  <workflow_state>unpublished</workflow_state>
</quiz>`

	m, err := ParseQuizMeta([]byte(doc))
	if err != nil {
		t.Fatalf("Expected parse to succeed, got %v", err)
	}
	if m.Title != "Unit Quiz" || m.QuizType != "graded_quiz" {
		t.Errorf("Unexpected title/type: %q/%q", m.Title, m.QuizType)
	}
	if m.PointsPossible != 10 || m.TimeLimitMin != 25 || m.AllowedAttempts != 3 {
		t.Errorf("Unexpected numbers: %v/%d/%d", m.PointsPossible, m.TimeLimitMin, m.AllowedAttempts)
	}
	if m.WorkflowState != "unpublished" {
		t.Errorf("Expected unpublished state, got %q", m.WorkflowState)
	}
}

func TestParseQuizMetaDefaults(t *testing.T) {
	m, err := ParseQuizMeta([]byte(`<quiz><title>Bare</title></quiz>`))
	if err != nil {
		t.Fatalf("Expected parse to succeed, got %v", err)
	}
	if m.QuizType != "assignment" {
		t.Errorf("Expected default quiz type, got %q", m.QuizType)
	}
	if m.AllowedAttempts != 1 {
		t.Errorf("Expected default 1 attempt, got %d", m.AllowedAttempts)
	}
}

func TestParseAssignmentMeta(t *testing.T) {
	doc := `<assignment identifier="a1">
  <title>Homework 1</title>
  <text>&lt;p&gt;Do the thing.&lt;/p&gt;</text>
  <points_possible>15.0</points_possible>
  <grading_type>points</grading_type>
  <submission_types>online_upload,online_text_entry</submission_types>
  <due_at>2024-03-01T00:00:00Z</due_at>
  <workflow_state>active</workflow_state>
</assignment>`

	m, err := ParseAssignmentMeta([]byte(doc))
	if err != nil {
		t.Fatalf("Expected parse to succeed, got %v", err)
	}
	if m.Title != "Homework 1" || m.Points != 15 || m.GradingType != "points" {
		t.Errorf("Unexpected fields: %q/%v/%q", m.Title, m.Points, m.GradingType)
	}
	if len(m.SubmissionTypes) != 2 || m.SubmissionTypes[0] != "online_upload" {
		t.Errorf("Unexpected submission types: %v", m.SubmissionTypes)
	}
	if m.DueAt != "2024-03-01T00:00:00Z" {
		t.Errorf("Unexpected due date: %q", m.DueAt)
	}
}

func TestParseAssignmentMetaAbsentFields(t *testing.T) {
	m, err := ParseAssignmentMeta([]byte(`<assignment><title>Bare</title></assignment>`))
	if err != nil {
		t.Fatalf("Expected parse to succeed, got %v", err)
	}
	if m.Points != 0 || m.DueAt != "" {
		t.Errorf("Expected zero-value defaults, got %v/%q", m.Points, m.DueAt)
	}
}
