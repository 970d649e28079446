// Package mappers transforms the resolved Canvas entity graph into the
// Tutor LMS course schema. Content is copied and cleaned on the way
// through; source entities are never mutated.
package mappers

import (
	"fmt"
	"strings"

	"course-migrate/internal/domain"
	"course-migrate/internal/markup"
	"course-migrate/internal/report"
	"course-migrate/internal/tutor"
)

// DefaultAssetBase is where lesson-relative asset references point in
// the exported layout (lessons live two levels under the output root).
const DefaultAssetBase = "../../assets/"

// UnlinkedTopicID identifies the synthetic topic that collects manifest
// resources no organization item references. Canvas writes assignments
// and quizzes outside any module; they still belong in the output.
const (
	UnlinkedTopicID    = "unlinked_content"
	UnlinkedTopicTitle = "Assignments"
)

// Transformer maps a domain.Course to a tutor.Course. Inventory is the
// scanned relative-path set used to validate rewritten asset
// references.
type Transformer struct {
	AssetBase string
	Inventory map[string]bool
	Report    *report.Report
}

func New(assetBase string, inventory []string, rep *report.Report) *Transformer {
	if assetBase == "" {
		assetBase = DefaultAssetBase
	}
	inv := make(map[string]bool, len(inventory))
	for _, p := range inventory {
		inv[p] = true
	}
	return &Transformer{AssetBase: assetBase, Inventory: inv, Report: rep}
}

// Transform walks the merged organization tree in document order and
// builds the target graph. Node position becomes the ordering key at
// every level.
func (t *Transformer) Transform(src *domain.Course) *tutor.Course {
	course := &tutor.Course{
		ExportKey:   tutor.ExportKey("course", src.Identifier),
		PostTitle:   src.Title,
		PostContent: "Course: " + src.Title,
		PostStatus:  "publish",
		SourceID:    src.Identifier,
	}

	processed := map[string]bool{}
	for i, module := range src.Modules {
		course.Topics = append(course.Topics, t.transformModule(src, module, i, processed))
	}
	if topic, ok := t.unlinkedTopic(src, processed, len(course.Topics)); ok {
		course.Topics = append(course.Topics, topic)
	}
	return course
}

func (t *Transformer) transformModule(src *domain.Course, module *domain.OrgNode, position int, processed map[string]bool) tutor.Topic {
	topic := tutor.Topic{
		ExportKey: tutor.ExportKey("topic", src.Identifier, module.Identifier),
		Title:     module.Title,
		Order:     position,
		SourceID:  module.Identifier,
	}

	// Leaves anywhere under the module land in the topic in document
	// order; a shared position counter keeps sibling ordering keys
	// unique across lessons, quizzes and assignments.
	pos := 0
	var walk func(nodes []*domain.OrgNode)
	walk = func(nodes []*domain.OrgNode) {
		for _, node := range nodes {
			if node.ResourceRef != "" {
				processed[node.ResourceRef] = true
				if t.transformLeaf(src, node, &topic, pos) {
					pos++
				}
			} else if len(node.Children) == 0 {
				t.Report.Info(report.StageTransform,
					fmt.Sprintf("item %q has no content, title kept in report only", node.Title), node.Identifier)
			}
			walk(node.Children)
		}
	}
	walk(module.Children)

	return topic
}

// unlinkedTopic sweeps up resources with parsed content that the module
// walk never reached and places them in a trailing topic, so content
// outside the organization tree is not lost. The second return is false
// when everything was already placed.
func (t *Transformer) unlinkedTopic(src *domain.Course, processed map[string]bool, position int) (tutor.Topic, bool) {
	topic := tutor.Topic{
		ExportKey: tutor.ExportKey("topic", src.Identifier, UnlinkedTopicID),
		Title:     UnlinkedTopicTitle,
		Order:     position,
		SourceID:  UnlinkedTopicID,
	}

	pos := 0
	for _, res := range src.Resources {
		if processed[res.Identifier] || !hasParsedContent(src, res) {
			continue
		}
		processed[res.Identifier] = true
		node := &domain.OrgNode{Identifier: res.Identifier, Title: res.Title, ResourceRef: res.Identifier}
		if t.transformLeaf(src, node, &topic, pos) {
			pos++
			t.Report.Info(report.StageTransform,
				fmt.Sprintf("resource %q not referenced by any module, placed under %q", res.Identifier, UnlinkedTopicTitle), res.Identifier)
		}
	}
	return topic, pos > 0
}

// hasParsedContent reports whether the parse stage produced an entity
// for the resource. Resources without one are assets and stay out of the
// topic graph.
func hasParsedContent(src *domain.Course, res domain.Resource) bool {
	switch res.Type {
	case domain.ResourcePage:
		_, ok := src.Pages[res.Identifier]
		return ok
	case domain.ResourceQuiz:
		_, ok := src.Quizzes[res.Identifier]
		return ok
	case domain.ResourceAssignment:
		_, ok := src.Assignments[res.Identifier]
		return ok
	default:
		return false
	}
}

// transformLeaf dispatches one content-bearing node. Returns false when
// the node produced no target entity.
func (t *Transformer) transformLeaf(src *domain.Course, node *domain.OrgNode, topic *tutor.Topic, pos int) bool {
	res, ok := src.ResourceByID(node.ResourceRef)
	if !ok {
		// Manifest resolution already cleared truly unknown refs; this
		// is a structural inconsistency.
		t.Report.Error(report.StageTransform,
			fmt.Sprintf("item %q references resource %q missing from resource map", node.Identifier, node.ResourceRef), node.Identifier)
		return false
	}

	switch res.Type {
	case domain.ResourcePage:
		page, ok := src.Pages[res.Identifier]
		if !ok {
			t.Report.Info(report.StageTransform,
				fmt.Sprintf("resource %q (%s) carried no parsed content, treated as asset", res.Identifier, res.Href), node.Identifier)
			return false
		}
		topic.Lessons = append(topic.Lessons, t.transformPage(src, node, res, page, pos))
		return true

	case domain.ResourceQuiz:
		quiz, ok := src.Quizzes[res.Identifier]
		if !ok {
			t.Report.Warn(report.StageTransform,
				fmt.Sprintf("quiz resource %q has no parsed assessment", res.Identifier), node.Identifier)
			return false
		}
		topic.Quizzes = append(topic.Quizzes, t.transformQuiz(src, node, quiz, pos))
		return true

	case domain.ResourceAssignment:
		assign, ok := src.Assignments[res.Identifier]
		if !ok {
			t.Report.Warn(report.StageTransform,
				fmt.Sprintf("assignment resource %q has no parsed settings", res.Identifier), node.Identifier)
			return false
		}
		topic.Assignments = append(topic.Assignments, t.transformAssignment(src, node, assign, pos))
		return true

	default:
		t.Report.Info(report.StageTransform,
			fmt.Sprintf("resource %q of type %q not transformed", res.Identifier, res.Type), node.Identifier)
		return false
	}
}

func (t *Transformer) transformPage(src *domain.Course, node *domain.OrgNode, res domain.Resource, page *domain.Page, pos int) tutor.Lesson {
	body := t.cleanBody(page.Body, page.Identifier)
	return tutor.Lesson{
		ExportKey:   tutor.ExportKey("lesson", src.Identifier, page.Identifier),
		PostTitle:   resolveTitle(page.Title, node.Title, res.Href),
		PostContent: body,
		PostStatus:  postStatus(page.State, page.Identifier, t.Report),
		Order:       pos,
		SourceID:    page.Identifier,
		Origin:      string(page.Origin),
	}
}

func (t *Transformer) transformQuiz(src *domain.Course, node *domain.OrgNode, quiz *domain.Quiz, pos int) tutor.Quiz {
	out := tutor.Quiz{
		ExportKey:   tutor.ExportKey("quiz", src.Identifier, quiz.Identifier),
		PostTitle:   resolveTitle(quiz.Title, node.Title, quiz.SourcePath),
		PostContent: t.cleanBody(quiz.Description, quiz.Identifier),
		PostStatus:  postStatus(quiz.State, quiz.Identifier, t.Report),
		Order:       pos,
		SourceID:    quiz.Identifier,
		Options: tutor.QuizOptions{
			TimeLimitMinutes: quiz.TimeLimitMin,
			AttemptsAllowed:  quiz.AllowedAttempts,
			PassingGrade:     80,
			FeedbackMode:     "default",
		},
	}

	for i, q := range quiz.Questions {
		out.Questions = append(out.Questions, t.transformQuestion(src, quiz, q, i))
	}
	return out
}

func (t *Transformer) transformQuestion(src *domain.Course, quiz *domain.Quiz, q domain.Question, pos int) tutor.Question {
	rule := tutor.MapQuestionKind(q.Kind)
	if rule.Confidence == tutor.ConfidenceFallback {
		t.Report.Warn(report.StageTransform,
			fmt.Sprintf("question kind %q mapped to %q, flagged for review", q.Kind, rule.Kind), q.Identifier)
	}

	out := tutor.Question{
		ExportKey:   tutor.ExportKey("question", src.Identifier, quiz.Identifier, q.Identifier),
		Title:       q.Title,
		Description: t.cleanBody(q.Text, q.Identifier),
		Kind:        rule.Kind,
		Confidence:  rule.Confidence,
		Mark:        q.Points,
		Order:       pos,
		SourceID:    q.Identifier,
	}
	for i, a := range q.Answers {
		out.Answers = append(out.Answers, tutor.QuestionAnswer{
			Title:     t.cleanBody(a.Text, q.Identifier),
			IsCorrect: a.Weight >= 100,
			Order:     i,
		})
	}
	return out
}

func (t *Transformer) transformAssignment(src *domain.Course, node *domain.OrgNode, assign *domain.Assignment, pos int) tutor.Assignment {
	if assign.DueAt == "" {
		t.Report.Warn(report.StageTransform, "assignment has no due date", assign.Identifier)
	}
	if assign.Points == 0 {
		t.Report.Warn(report.StageTransform, "assignment has no points, defaulting to zero", assign.Identifier)
	}

	return tutor.Assignment{
		ExportKey:   tutor.ExportKey("assignment", src.Identifier, assign.Identifier),
		PostTitle:   resolveTitle(assign.Title, node.Title, assign.SourcePath),
		PostContent: t.cleanBody(assign.Description, assign.Identifier),
		PostStatus:  postStatus(assign.State, assign.Identifier, t.Report),
		Order:       pos,
		SourceID:    assign.Identifier,
		Options: tutor.AssignmentOptions{
			TotalMark: assign.Points,
			PassMark:  assign.Points * 0.6,
			DueAt:     assign.DueAt,
		},
	}
}

// cleanBody produces the target payload copy: entities unescaped, asset
// placeholders rewritten, markup sanitized en route to the new LMS.
// Rewritten asset references that do not resolve against the inventory
// stay in place but are reported.
func (t *Transformer) cleanBody(raw, entityID string) string {
	body := markup.Sanitize(markup.CleanBody(raw, t.AssetBase))
	for _, ref := range markup.AssetRefs(body, t.AssetBase) {
		if t.Inventory[ref] || t.Inventory["web_resources/"+ref] {
			continue
		}
		t.Report.Warn(report.StageTransform,
			fmt.Sprintf("asset reference %q does not exist in the export", ref), entityID)
	}
	return body
}

// resolveTitle applies the title precedence: explicit content title,
// then manifest item title, then a humanized file name.
func resolveTitle(contentTitle, itemTitle, href string) string {
	if s := strings.TrimSpace(contentTitle); s != "" {
		return s
	}
	if s := strings.TrimSpace(itemTitle); s != "" && s != "Untitled Item" {
		return s
	}
	if href != "" {
		return markup.HumanizeFilename(href)
	}
	return "Untitled"
}

func postStatus(state domain.WorkflowState, entityID string, rep *report.Report) string {
	switch state {
	case domain.StateUnpublished:
		return "draft"
	case domain.StateDeleted:
		rep.Warn(report.StageTransform, "content marked deleted in source, imported as draft", entityID)
		return "draft"
	default:
		return "publish"
	}
}
