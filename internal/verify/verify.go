// Package verify checks the transformed graph against the source graph
// before anything is exported. Structural corruption (a target entity
// whose source cannot be found, colliding export keys) is an error and
// fails the run; count drift is reported as a warning so the run still
// completes with its output intact.
package verify

import (
	"fmt"

	"course-migrate/internal/domain"
	"course-migrate/internal/mappers"
	"course-migrate/internal/report"
	"course-migrate/internal/tutor"
)

// Run performs all integrity checks and appends findings to the report.
// It never modifies either graph.
func Run(src *domain.Course, course *tutor.Course, rep *report.Report) {
	checkSourceRefs(src, course, rep)
	checkLessonCount(src, course, rep)
	checkOrderingKeys(course, rep)
	checkExportKeys(course, rep)
}

// checkSourceRefs confirms every target entity still resolves back to a
// source entity. A dangling reference means the transformer invented or
// lost content, which the export must not paper over.
func checkSourceRefs(src *domain.Course, course *tutor.Course, rep *report.Report) {
	modules := map[string]bool{
		// The transformer synthesizes this topic for resources outside
		// the organization tree; it has no source module on purpose.
		mappers.UnlinkedTopicID: true,
	}
	for _, m := range src.Modules {
		modules[m.Identifier] = true
	}

	for _, topic := range course.Topics {
		if !modules[topic.SourceID] {
			rep.Error(report.StageVerify,
				fmt.Sprintf("topic %q has no source module", topic.Title), topic.SourceID)
		}
		for _, lesson := range topic.Lessons {
			if _, ok := src.Pages[lesson.SourceID]; !ok {
				rep.Error(report.StageVerify,
					fmt.Sprintf("lesson %q has no source page", lesson.PostTitle), lesson.SourceID)
			}
		}
		for _, quiz := range topic.Quizzes {
			srcQuiz, ok := src.Quizzes[quiz.SourceID]
			if !ok {
				rep.Error(report.StageVerify,
					fmt.Sprintf("quiz %q has no source assessment", quiz.PostTitle), quiz.SourceID)
				continue
			}
			if len(quiz.Questions) != len(srcQuiz.Questions) {
				rep.Error(report.StageVerify,
					fmt.Sprintf("quiz %q carries %d questions, source has %d",
						quiz.PostTitle, len(quiz.Questions), len(srcQuiz.Questions)), quiz.SourceID)
			}
		}
		for _, assign := range topic.Assignments {
			if _, ok := src.Assignments[assign.SourceID]; !ok {
				rep.Error(report.StageVerify,
					fmt.Sprintf("assignment %q has no source settings", assign.PostTitle), assign.SourceID)
			}
		}
	}
}

// checkLessonCount reconciles lesson totals: every parsed page, whether
// it came from the manifest or from orphan recovery, should surface as
// exactly one lesson. Drift is a loss-risk warning, not a failure.
func checkLessonCount(src *domain.Course, course *tutor.Course, rep *report.Report) {
	expected := len(src.Pages)
	actual := 0
	for _, topic := range course.Topics {
		actual += len(topic.Lessons)
	}
	if actual != expected {
		rep.Warn(report.StageVerify,
			fmt.Sprintf("lesson count %d does not match parsed page count %d", actual, expected), "")
	}
	rep.Count("verified_lessons", actual)
}

// checkOrderingKeys flags sibling entities that share an ordering key.
// Imports sort on the key, so a collision makes sibling order
// platform-defined instead of deterministic.
func checkOrderingKeys(course *tutor.Course, rep *report.Report) {
	seen := map[int]bool{}
	for _, topic := range course.Topics {
		if seen[topic.Order] {
			rep.Warn(report.StageVerify,
				fmt.Sprintf("duplicate topic ordering key %d", topic.Order), topic.SourceID)
		}
		seen[topic.Order] = true

		siblings := map[int]bool{}
		flag := func(order int, sourceID string) {
			if siblings[order] {
				rep.Warn(report.StageVerify,
					fmt.Sprintf("duplicate sibling ordering key %d in topic %q", order, topic.Title), sourceID)
			}
			siblings[order] = true
		}
		for _, l := range topic.Lessons {
			flag(l.Order, l.SourceID)
		}
		for _, q := range topic.Quizzes {
			flag(q.Order, q.SourceID)
		}
		for _, a := range topic.Assignments {
			flag(a.Order, a.SourceID)
		}
	}
}

// checkExportKeys confirms export keys are unique across the whole
// graph. A collision would make the import overwrite one entity with
// another.
func checkExportKeys(course *tutor.Course, rep *report.Report) {
	seen := map[string]string{}
	record := func(key, sourceID string) {
		if prev, dup := seen[key]; dup {
			rep.Error(report.StageVerify,
				fmt.Sprintf("export key collision between %q and %q", prev, sourceID), sourceID)
			return
		}
		seen[key] = sourceID
	}

	record(course.ExportKey, course.SourceID)
	for _, topic := range course.Topics {
		record(topic.ExportKey, topic.SourceID)
		for _, l := range topic.Lessons {
			record(l.ExportKey, l.SourceID)
		}
		for _, q := range topic.Quizzes {
			record(q.ExportKey, q.SourceID)
			for _, qu := range q.Questions {
				record(qu.ExportKey, qu.SourceID)
			}
		}
		for _, a := range topic.Assignments {
			record(a.ExportKey, a.SourceID)
		}
	}
}
