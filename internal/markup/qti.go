package markup

import (
	"strconv"
)

// QuizMeta carries the assessment-level settings of one quiz document.
type QuizMeta struct {
	Title           string
	Description     string
	QuizType        string
	PointsPossible  float64
	TimeLimitMin    int
	AllowedAttempts int
	WorkflowState   string
}

// ParseQuizMeta extracts quiz settings from an assessment meta document.
func ParseQuizMeta(doc []byte) (QuizMeta, error) {
	root, err := ParseXML(doc)
	if err != nil {
		return QuizMeta{}, err
	}

	m := QuizMeta{
		QuizType:        "assignment",
		AllowedAttempts: 1,
	}
	if n := root.FindFirst("title"); n != nil {
		m.Title = n.Text()
	}
	if n := root.FindFirst("description"); n != nil {
		m.Description = n.Inner()
	}
	if n := root.FindFirst("quiz_type"); n != nil && n.Text() != "" {
		m.QuizType = n.Text()
	}
	if n := root.FindFirst("points_possible"); n != nil {
		if v, err := strconv.ParseFloat(n.Text(), 64); err == nil {
			m.PointsPossible = v
		}
	}
	if n := root.FindFirst("time_limit"); n != nil {
		if v, err := strconv.Atoi(n.Text()); err == nil {
			m.TimeLimitMin = v
		}
	}
	if n := root.FindFirst("allowed_attempts"); n != nil {
		if v, err := strconv.Atoi(n.Text()); err == nil {
			m.AllowedAttempts = v
		}
	}
	if n := root.FindFirst("workflow_state"); n != nil {
		m.WorkflowState = n.Text()
	}
	return m, nil
}

// AnswerDoc is one answer choice pulled from a question document.
type AnswerDoc struct {
	ID     string
	Text   string
	Weight float64
}

// QuestionDoc is the structured form of one QTI question document.
type QuestionDoc struct {
	Identifier string
	Title      string
	Kind       string
	Text       string
	Points     float64
	Answers    []AnswerDoc
	Feedback   string
}

// Kinds that carry no answer choices.
var answerlessKinds = map[string]bool{
	"essay_question":       true,
	"file_upload_question": true,
	"text_only_question":   true,
}

// ParseQuestion extracts one question from a QTI item document. The kind
// is taken from the question_type element when present, inferred from
// the response declaration's cardinality otherwise, and defaults to
// essay so no document is ever rejected for having an unknown shape.
func ParseQuestion(doc []byte) (QuestionDoc, error) {
	root, err := ParseXML(doc)
	if err != nil {
		return QuestionDoc{}, err
	}
	return parseQuestionNode(root), nil
}

// ParseQuestions extracts every question from a QTI assessment document
// holding multiple item elements, in document order. A document with no
// item elements is treated as a single-question document.
func ParseQuestions(doc []byte) ([]QuestionDoc, error) {
	root, err := ParseXML(doc)
	if err != nil {
		return nil, err
	}
	items := root.FindAll("item")
	if len(items) == 0 {
		items = root.FindAll("assessmentItem")
	}
	if len(items) == 0 {
		return []QuestionDoc{parseQuestionNode(root)}, nil
	}
	out := make([]QuestionDoc, 0, len(items))
	for _, item := range items {
		out = append(out, parseQuestionNode(item))
	}
	return out, nil
}

func parseQuestionNode(root *Node) QuestionDoc {
	q := QuestionDoc{
		Identifier: root.Attr("identifier"),
		Title:      "Question",
		Points:     1.0,
	}
	if q.Identifier == "" {
		q.Identifier = root.Attr("ident")
	}
	if n := root.FindFirst("title"); n != nil && n.Text() != "" {
		q.Title = n.Text()
	} else if t := root.Attr("title"); t != "" {
		q.Title = t
	}

	q.Text = questionText(root)
	q.Kind = questionKind(root)
	q.Points = questionPoints(root)

	if !answerlessKinds[q.Kind] {
		q.Answers = questionAnswers(root)
	}

	if n := root.FindFirst("generalFeedback"); n != nil {
		q.Feedback = n.Inner()
	} else if n := root.FindFirst("modalFeedback"); n != nil {
		q.Feedback = n.Inner()
	}
	return q
}

func questionText(root *Node) string {
	// itemBody is the QTI standard location.
	if n := root.FindFirst("itemBody"); n != nil {
		return n.Inner()
	}
	if p := root.FindFirst("presentation"); p != nil {
		if n := p.FindFirst("material"); n != nil {
			if m := n.FindFirst("mattext"); m != nil {
				return m.Inner()
			}
			return n.Inner()
		}
	}
	if n := root.FindFirst("question_text"); n != nil {
		return n.Inner()
	}
	return ""
}

func questionKind(root *Node) string {
	if n := root.FindFirst("question_type"); n != nil && n.Text() != "" {
		return n.Text()
	}
	if v := metadataField(root, "question_type"); v != "" {
		return v
	}
	if n := root.FindFirst("responseDeclaration"); n != nil {
		if n.Attr("cardinality") == "multiple" {
			return "multiple_answers_question"
		}
		return "multiple_choice_question"
	}
	return "essay_question"
}

// metadataField reads a QTI 1.2 label/entry metadata pair.
func metadataField(root *Node, label string) string {
	for _, f := range root.FindAll("qtimetadatafield") {
		l := f.FindFirst("fieldlabel")
		e := f.FindFirst("fieldentry")
		if l != nil && e != nil && l.Text() == label {
			return e.Text()
		}
	}
	return ""
}

func questionPoints(root *Node) float64 {
	for _, tag := range []string{"maxScore", "points_possible"} {
		if n := root.FindFirst(tag); n != nil {
			if v, err := strconv.ParseFloat(n.Text(), 64); err == nil {
				return v
			}
		}
	}
	if s := metadataField(root, "points_possible"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return 1.0
}

func questionAnswers(root *Node) []AnswerDoc {
	choices := root.FindAll("simpleChoice")
	if len(choices) == 0 {
		choices = root.FindAll("response_choice")
	}
	if len(choices) == 0 {
		choices = root.FindAll("response_label")
	}
	if len(choices) == 0 {
		return nil
	}

	correct := map[string]bool{}
	if cr := root.FindFirst("correctResponse"); cr != nil {
		for _, v := range cr.FindAll("value") {
			if id := v.Text(); id != "" {
				correct[id] = true
			}
		}
	}
	// QTI 1.2 marks the right choice through response processing
	// conditions instead of a correctResponse block.
	for _, cond := range root.FindAll("respcondition") {
		if !scoringCondition(cond) {
			continue
		}
		for _, v := range cond.FindAll("varequal") {
			if id := v.Text(); id != "" {
				correct[id] = true
			}
		}
	}

	out := make([]AnswerDoc, 0, len(choices))
	for _, ch := range choices {
		a := AnswerDoc{
			ID:   ch.Attr("identifier"),
			Text: ch.Inner(),
		}
		if m := ch.FindFirst("mattext"); m != nil {
			a.Text = m.Inner()
		}
		if a.ID == "" {
			a.ID = ch.Attr("ident")
		}
		if correct[a.ID] {
			a.Weight = 100.0
		}
		out = append(out, a)
	}
	return out
}

func scoringCondition(cond *Node) bool {
	for _, sv := range cond.FindAll("setvar") {
		if v, err := strconv.ParseFloat(sv.Text(), 64); err == nil && v > 0 {
			return true
		}
	}
	return false
}
