// Package pipeline runs the five migration stages in order: manifest
// resolution, content parsing, inventory reconciliation, transformation
// and verification. Stages are strictly sequential; each one reads the
// complete output of the one before it. The report is the only state
// shared across stages and is append-only.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"course-migrate/internal/domain"
	"course-migrate/internal/inventory"
	"course-migrate/internal/manifest"
	"course-migrate/internal/mappers"
	"course-migrate/internal/markup"
	"course-migrate/internal/report"
	"course-migrate/internal/tutor"
	"course-migrate/internal/verify"
)

const ManifestFile = "imsmanifest.xml"

type Options struct {
	// OutputDir is recorded in the report and skipped during the
	// inventory scan when it lives under the course root.
	OutputDir string
	// AssetBase is where rewritten asset references point; empty means
	// the default lesson-relative convention.
	AssetBase string
	// Workers bounds the orphan extraction pool; zero means default.
	Workers int
	Logger  *zap.Logger
}

// Run migrates one course export directory. A fatal manifest error
// aborts the remaining stages and returns a nil course together with a
// FAILED report; every other condition lands in the report and the run
// completes.
func Run(ctx context.Context, root string, opts Options) (*tutor.Course, *report.Report) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rep := report.New(root, opts.OutputDir)

	// Stage 1: the manifest is the sole source of truth for hierarchy,
	// so nothing else can run without it.
	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	if err != nil {
		rep.Error(report.StageManifest, fmt.Sprintf("manifest unreadable: %v", err), "")
		return nil, rep
	}
	course, err := manifest.Resolve(data, rep)
	if err != nil {
		rep.Error(report.StageManifest, err.Error(), "")
		return nil, rep
	}
	log.Info("manifest resolved",
		zap.String("course", course.Title),
		zap.Int("resources", len(course.Resources)),
		zap.Int("modules", len(course.Modules)))
	course.SourceDir = root

	// Stage 2: load content for every manifest resource.
	used := course.ReferencedPaths()
	parseContent(root, course, used, rep)
	log.Info("content parsed",
		zap.Int("pages", len(course.Pages)),
		zap.Int("quizzes", len(course.Quizzes)),
		zap.Int("assignments", len(course.Assignments)))

	// Stage 3: reconcile the manifest against what is actually on disk
	// and recover anything the manifest never mentioned.
	inv, err := inventory.Scan(root, outputDirName(opts.OutputDir))
	if err != nil {
		rep.Error(report.StageInventory, fmt.Sprintf("inventory scan: %v", err), "")
		inv = nil
	}
	orphans := inventory.Unreferenced(inv, used)
	rep.Count("inventory_files", len(inv))
	rep.Count("unreferenced_files", len(orphans))
	inventory.Recover(ctx, root, orphans, opts.Workers, course, rep)
	log.Info("inventory reconciled",
		zap.Int("files", len(inv)),
		zap.Int("unreferenced", len(orphans)),
		zap.Int("recovered", rep.Counter("recovered")))

	for name, n := range course.ContentCounts() {
		rep.Count(name, n)
	}

	// Stage 4.
	out := mappers.New(opts.AssetBase, inv, rep).Transform(course)

	// Stage 5.
	verify.Run(course, out, rep)
	log.Info("migration finished",
		zap.String("status", string(rep.Status())),
		zap.Int("errors", rep.TotalBySeverity(report.SeverityError)),
		zap.Int("warnings", rep.TotalBySeverity(report.SeverityWarning)))

	return out, rep
}

// parseContent fills the course content maps from disk, one resource at
// a time in manifest order. Every file it touches is added to used so
// the inventory stage does not mistake it for an orphan. A malformed
// document excludes only its own entity, as an error event.
func parseContent(root string, course *domain.Course, used map[string]bool, rep *report.Report) {
	for _, res := range course.Resources {
		switch res.Type {
		case domain.ResourcePage:
			parsePage(root, course, res, used, rep)
		case domain.ResourceQuiz:
			parseQuiz(root, course, res, used, rep)
		case domain.ResourceAssignment:
			parseAssignment(root, course, res, used, rep)
		}
	}
}

func parsePage(root string, course *domain.Course, res domain.Resource, used map[string]bool, rep *report.Report) {
	if res.Href == "" || !markup.RecognizedContentPath(res.Href) {
		// Plain web content (images, PDFs) stays an asset.
		return
	}
	data, err := readResource(root, res.Href, used)
	if err != nil {
		rep.Error(report.StageParse, fmt.Sprintf("page %s: %v", res.Href, err), res.Identifier)
		return
	}
	fields, err := markup.ExtractFields(res.Href, data)
	if err != nil {
		rep.Error(report.StageParse, fmt.Sprintf("page %s: %v", res.Href, err), res.Identifier)
		return
	}

	title := fields.Title
	if title == "" {
		title = res.Title
	}
	course.Pages[res.Identifier] = &domain.Page{
		Identifier: res.Identifier,
		Title:      title,
		Body:       fields.Body,
		Notes:      fields.Notes,
		SourcePath: res.Href,
		Origin:     domain.OriginManifest,
		State:      domain.StateActive,
	}
}

// parseQuiz loads the assessment meta document beside the QTI file, then
// every question in the resource directory. Canvas keeps one QTI file
// with all items plus assessment_meta.xml in a directory named after the
// quiz identifier.
func parseQuiz(root string, course *domain.Course, res domain.Resource, used map[string]bool, rep *report.Report) {
	dir := dirOf(res.Href)

	quiz := &domain.Quiz{
		Identifier:      res.Identifier,
		Title:           res.Title,
		QuizType:        "assignment",
		AllowedAttempts: 1,
		SourcePath:      res.Href,
		Origin:          domain.OriginManifest,
		State:           domain.StateActive,
	}

	metaPath := joinRel(dir, "assessment_meta.xml")
	if data, err := readResource(root, metaPath, used); err == nil {
		meta, err := markup.ParseQuizMeta(data)
		if err != nil {
			rep.Error(report.StageParse, fmt.Sprintf("quiz meta %s: %v", metaPath, err), res.Identifier)
		} else {
			if meta.Title != "" {
				quiz.Title = meta.Title
			}
			quiz.Description = meta.Description
			quiz.QuizType = meta.QuizType
			quiz.Points = meta.PointsPossible
			quiz.TimeLimitMin = meta.TimeLimitMin
			quiz.AllowedAttempts = meta.AllowedAttempts
			quiz.State = domain.ParseWorkflowState(meta.WorkflowState)
		}
	} else {
		rep.Warn(report.StageParse, fmt.Sprintf("quiz %s has no assessment meta", res.Identifier), res.Identifier)
	}

	for _, qtiPath := range quizDocuments(root, dir, res.Href, used) {
		data, err := readResource(root, qtiPath, used)
		if err != nil {
			rep.Error(report.StageParse, fmt.Sprintf("quiz %s: %v", qtiPath, err), res.Identifier)
			continue
		}
		docs, err := markup.ParseQuestions(data)
		if err != nil {
			rep.Error(report.StageParse, fmt.Sprintf("quiz %s: %v", qtiPath, err), res.Identifier)
			continue
		}
		for _, d := range docs {
			id := d.Identifier
			if id == "" {
				id = fmt.Sprintf("%s_q%d", res.Identifier, len(quiz.Questions)+1)
			}
			quiz.Questions = append(quiz.Questions, domain.Question{
				Identifier: id,
				Title:      d.Title,
				Kind:       d.Kind,
				Text:       d.Text,
				Points:     d.Points,
				Answers:    answersFromDocs(d.Answers),
				Feedback:   d.Feedback,
				SourcePath: qtiPath,
			})
		}
	}

	if quiz.Title == "" {
		quiz.Title = markup.HumanizeFilename(res.Href)
	}
	course.Quizzes[res.Identifier] = quiz
}

// quizDocuments lists the QTI documents of one quiz: the manifest href
// plus any sibling XML files that are not meta or system documents,
// sorted for stable question order.
func quizDocuments(root, dir, href string, used map[string]bool) []string {
	docs := map[string]bool{}
	if strings.HasSuffix(href, ".xml") && !isMetaDocument(href) {
		docs[href] = true
	}

	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".xml") {
				continue
			}
			rel := joinRel(dir, name)
			if inventory.IsSystemFile(name) || isMetaDocument(rel) {
				used[rel] = true
				continue
			}
			docs[rel] = true
		}
	}

	out := make([]string, 0, len(docs))
	for p := range docs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func isMetaDocument(path string) bool {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	return base == "assessment_meta.xml"
}

// parseAssignment loads assignment_settings.xml from the resource
// directory and, when the settings carry no description, the first HTML
// document beside it (Canvas writes the assignment body there).
func parseAssignment(root string, course *domain.Course, res domain.Resource, used map[string]bool, rep *report.Report) {
	dir := dirOf(res.Href)

	assign := &domain.Assignment{
		Identifier: res.Identifier,
		Title:      res.Title,
		SourcePath: res.Href,
		Origin:     domain.OriginManifest,
		State:      domain.StateActive,
	}

	settingsPath := joinRel(dir, "assignment_settings.xml")
	data, err := readResource(root, settingsPath, used)
	if err != nil {
		rep.Warn(report.StageParse, fmt.Sprintf("assignment %s has no settings document", res.Identifier), res.Identifier)
	} else {
		meta, err := markup.ParseAssignmentMeta(data)
		if err != nil {
			rep.Error(report.StageParse, fmt.Sprintf("assignment settings %s: %v", settingsPath, err), res.Identifier)
			return
		}
		if meta.Title != "" {
			assign.Title = meta.Title
		}
		assign.Description = meta.Description
		assign.Points = meta.Points
		assign.GradingType = meta.GradingType
		assign.SubmissionTypes = meta.SubmissionTypes
		assign.DueAt = meta.DueAt
		assign.State = domain.ParseWorkflowState(meta.WorkflowState)
	}

	if assign.Description == "" {
		if body, ok := assignmentBody(root, dir, used); ok {
			assign.Description = body
		}
	}
	if assign.Title == "" {
		assign.Title = markup.HumanizeFilename(res.Href)
	}
	course.Assignments[res.Identifier] = assign
}

// assignmentBody extracts the body from the first HTML document in the
// assignment directory.
func assignmentBody(root, dir string, used map[string]bool) (string, bool) {
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
	if err != nil {
		return "", false
	}

	var htmlFiles []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && (strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm")) {
			htmlFiles = append(htmlFiles, name)
		}
	}
	if len(htmlFiles) == 0 {
		return "", false
	}
	sort.Strings(htmlFiles)

	rel := joinRel(dir, htmlFiles[0])
	data, err := readResource(root, rel, used)
	if err != nil {
		return "", false
	}
	fields, err := markup.ExtractFields(rel, data)
	if err != nil {
		return "", false
	}
	return fields.Body, true
}

func answersFromDocs(docs []markup.AnswerDoc) []domain.Answer {
	out := make([]domain.Answer, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Answer{ID: d.ID, Text: d.Text, Weight: d.Weight})
	}
	return out
}

// readResource reads a course-relative file and marks it consumed for
// the inventory diff.
func readResource(root, rel string, used map[string]bool) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	used[rel] = true
	return data, nil
}

func dirOf(href string) string {
	if i := strings.LastIndexByte(href, '/'); i >= 0 {
		return href[:i]
	}
	return ""
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// outputDirName returns the scan-skip directory name in case the output
// directory sits inside the course root.
func outputDirName(outputDir string) string {
	if outputDir == "" {
		return "tutor_lms_output"
	}
	return filepath.Base(outputDir)
}
