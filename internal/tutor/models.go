// Package tutor holds the target Tutor LMS course schema. Everything
// here is a plain serializable record: the transformer copies content in,
// nothing aliases the source graph.
package tutor

// QuestionKind is a Tutor LMS question type.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindTrueFalse      QuestionKind = "true_false"
	KindFillInBlank    QuestionKind = "fill_in_the_blank"
	KindOpenEnded      QuestionKind = "open_ended"
	KindShortAnswer    QuestionKind = "short_answer"
	KindMatching       QuestionKind = "matching"
)

// Confidence records whether a question type conversion was exact or an
// approximation that needs human review.
type Confidence string

const (
	ConfidenceDirect   Confidence = "direct"
	ConfidenceFallback Confidence = "fallback_requires_review"
)

type Course struct {
	ExportKey   string  `json:"export_key"`
	PostTitle   string  `json:"post_title"`
	PostContent string  `json:"post_content"`
	PostStatus  string  `json:"post_status"`
	SourceID    string  `json:"source_id"`
	Topics      []Topic `json:"topics"`
}

type Topic struct {
	ExportKey   string       `json:"export_key"`
	Title       string       `json:"title"`
	Order       int          `json:"order"`
	SourceID    string       `json:"source_id"`
	Lessons     []Lesson     `json:"lessons"`
	Quizzes     []Quiz       `json:"quizzes"`
	Assignments []Assignment `json:"assignments"`
}

type Lesson struct {
	ExportKey   string `json:"export_key"`
	PostTitle   string `json:"post_title"`
	PostContent string `json:"post_content"`
	PostStatus  string `json:"post_status"`
	Order       int    `json:"order"`
	SourceID    string `json:"source_id"`
	Origin      string `json:"origin"`
}

type Quiz struct {
	ExportKey   string      `json:"export_key"`
	PostTitle   string      `json:"post_title"`
	PostContent string      `json:"post_content"`
	PostStatus  string      `json:"post_status"`
	Order       int         `json:"order"`
	SourceID    string      `json:"source_id"`
	Options     QuizOptions `json:"options"`
	Questions   []Question  `json:"questions"`
}

type QuizOptions struct {
	TimeLimitMinutes int    `json:"time_limit_minutes"`
	AttemptsAllowed  int    `json:"attempts_allowed"`
	PassingGrade     int    `json:"passing_grade"`
	FeedbackMode     string `json:"feedback_mode"`
}

type Question struct {
	ExportKey   string           `json:"export_key"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Kind        QuestionKind     `json:"kind"`
	Confidence  Confidence       `json:"confidence"`
	Mark        float64          `json:"mark"`
	Order       int              `json:"order"`
	SourceID    string           `json:"source_id"`
	Answers     []QuestionAnswer `json:"answers"`
}

type QuestionAnswer struct {
	Title     string `json:"title"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

type Assignment struct {
	ExportKey   string            `json:"export_key"`
	PostTitle   string            `json:"post_title"`
	PostContent string            `json:"post_content"`
	PostStatus  string            `json:"post_status"`
	Order       int               `json:"order"`
	SourceID    string            `json:"source_id"`
	Options     AssignmentOptions `json:"options"`
}

type AssignmentOptions struct {
	TotalMark float64 `json:"total_mark"`
	PassMark  float64 `json:"pass_mark"`
	DueAt     string  `json:"due_at,omitempty"`
}

// ContentCounts returns per-type entity counts for the report.
func (c *Course) ContentCounts() map[string]int {
	counts := map[string]int{"topics": len(c.Topics)}
	for _, t := range c.Topics {
		counts["lessons"] += len(t.Lessons)
		counts["quizzes"] += len(t.Quizzes)
		counts["assignments"] += len(t.Assignments)
		for _, q := range t.Quizzes {
			counts["questions"] += len(q.Questions)
		}
	}
	return counts
}
