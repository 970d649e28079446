package domain

// Origin records whether an entity came from the manifest or was
// recovered from an unreferenced file.
type Origin string

const (
	OriginManifest  Origin = "manifest"
	OriginRecovered Origin = "recovered"
)

// WorkflowState is the Canvas publication state of a piece of content.
type WorkflowState string

const (
	StateActive      WorkflowState = "active"
	StateUnpublished WorkflowState = "unpublished"
	StateDeleted     WorkflowState = "deleted"
)

// ParseWorkflowState defaults anything unrecognized to active, the way
// Canvas exports do.
func ParseWorkflowState(s string) WorkflowState {
	switch WorkflowState(s) {
	case StateUnpublished:
		return StateUnpublished
	case StateDeleted:
		return StateDeleted
	default:
		return StateActive
	}
}

// Page is a wiki page or any recovered document promoted to a page.
type Page struct {
	Identifier string
	Title      string
	Body       string
	Notes      string
	SourcePath string
	Origin     Origin
	State      WorkflowState
}

// Canvas question type identifiers, the closed source kind set.
const (
	QMultipleChoice  = "multiple_choice_question"
	QTrueFalse       = "true_false_question"
	QEssay           = "essay_question"
	QShortAnswer     = "short_answer_question"
	QFillInBlanks    = "fill_in_multiple_blanks_question"
	QMatching        = "matching_question"
	QNumerical       = "numerical_question"
	QCalculated      = "calculated_question"
	QMultipleAnswers = "multiple_answers_question"
	QFileUpload      = "file_upload_question"
	QTextOnly        = "text_only_question"
)

// Answer is one answer choice of a question. Weight 100 marks the
// correct response, per QTI scoring.
type Answer struct {
	ID     string
	Text   string
	Weight float64
}

type Question struct {
	Identifier string
	Title      string
	Kind       string
	Text       string
	Points     float64
	Answers    []Answer
	Feedback   string
	SourcePath string
}

type Quiz struct {
	Identifier      string
	Title           string
	Description     string
	QuizType        string
	Points          float64
	TimeLimitMin    int
	AllowedAttempts int
	Questions       []Question
	SourcePath      string
	Origin          Origin
	State           WorkflowState
}

type Assignment struct {
	Identifier      string
	Title           string
	Description     string
	Points          float64
	GradingType     string
	SubmissionTypes []string
	DueAt           string
	SourcePath      string
	Origin          Origin
	State           WorkflowState
}
