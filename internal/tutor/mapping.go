package tutor

// MappingRule is one row of the question type conversion table.
type MappingRule struct {
	Kind       QuestionKind
	Confidence Confidence
}

// questionTypeTable maps every known Canvas question kind. Kinds with no
// Tutor equivalent degrade to an approximation and are flagged for
// review; they are never dropped.
var questionTypeTable = map[string]MappingRule{
	"multiple_choice_question":         {KindMultipleChoice, ConfidenceDirect},
	"true_false_question":              {KindTrueFalse, ConfidenceDirect},
	"essay_question":                   {KindOpenEnded, ConfidenceDirect},
	"short_answer_question":            {KindShortAnswer, ConfidenceDirect},
	"fill_in_multiple_blanks_question": {KindFillInBlank, ConfidenceDirect},
	"matching_question":                {KindMatching, ConfidenceDirect},
	"numerical_question":               {KindShortAnswer, ConfidenceFallback},
	"calculated_question":              {KindShortAnswer, ConfidenceFallback},
	"multiple_answers_question":        {KindMultipleChoice, ConfidenceFallback},
	"file_upload_question":             {KindOpenEnded, ConfidenceFallback},
	"text_only_question":               {KindOpenEnded, ConfidenceFallback},
}

// MapQuestionKind converts a source question kind. It is total: a kind
// absent from the table yields the open-ended default with fallback
// confidence, never an error.
func MapQuestionKind(sourceKind string) MappingRule {
	if rule, ok := questionTypeTable[sourceKind]; ok {
		return rule
	}
	return MappingRule{KindOpenEnded, ConfidenceFallback}
}

// KnownSourceKinds returns the closed set of source kinds the table
// covers, for reporting and tests.
func KnownSourceKinds() []string {
	out := make([]string, 0, len(questionTypeTable))
	for k := range questionTypeTable {
		out = append(out, k)
	}
	return out
}
