package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"course-migrate/internal/inventory"
	"course-migrate/internal/mappers"
	"course-migrate/internal/report"
)

const welcomeManifest = `<?xml version="1.0" encoding="UTF-8"?>
<manifest identifier="course_demo">
  <metadata>
    <lom><general><title><string>Demo Course</string></title></general></lom>
  </metadata>
  <organizations>
    <organization identifier="org_1">
      <item identifier="mod_1">
        <title>Module One</title>
        <item identifier="item_1" identifierref="res_welcome">
          <title>Welcome</title>
        </item>
      </item>
    </organization>
  </organizations>
  <resources>
    <resource identifier="res_welcome" type="webcontent" href="wiki_content/welcome.xml"/>
  </resources>
</manifest>`

func writeCourse(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"imsmanifest.xml":          welcomeManifest,
		"wiki_content/welcome.xml": `<document><title>Welcome</title><body><h1>Hi</h1><p>Text</p></body></document>`,
		"notes.xml":                `<document><title>Notes</title><content><p>Extra</p></content></document>`,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestRunRecoversOrphans(t *testing.T) {
	root := writeCourse(t)

	course, rep := Run(context.Background(), root, Options{})
	if course == nil {
		t.Fatal("Expected a course, got nil")
	}

	if rep.Status() != report.StatusSuccess {
		t.Fatalf("Expected success, got %q; events: %+v", rep.Status(), rep.Events())
	}
	if rep.TotalBySeverity(report.SeverityError) != 0 {
		t.Errorf("Expected 0 errors, got %d", rep.TotalBySeverity(report.SeverityError))
	}

	if len(course.Topics) != 2 {
		t.Fatalf("Expected 2 topics (module + recovered), got %d", len(course.Topics))
	}
	if course.Topics[1].SourceID != inventory.RecoveredModuleID {
		t.Errorf("Expected recovered module last, got %q", course.Topics[1].SourceID)
	}

	lessons := 0
	for _, topic := range course.Topics {
		lessons += len(topic.Lessons)
	}
	if lessons != 2 {
		t.Fatalf("Expected 2 lessons total, got %d", lessons)
	}

	welcome := course.Topics[0].Lessons[0]
	if welcome.PostTitle != "Welcome" {
		t.Errorf("Expected lesson 'Welcome', got %q", welcome.PostTitle)
	}

	recovered := course.Topics[1].Lessons[0]
	if recovered.PostTitle != "Notes" {
		t.Errorf("Expected recovered lesson 'Notes', got %q", recovered.PostTitle)
	}
	if recovered.Origin != "recovered" {
		t.Errorf("Expected recovered origin, got %q", recovered.Origin)
	}
	if rep.Counter("recovered") != 1 {
		t.Errorf("Expected recovered counter 1, got %d", rep.Counter("recovered"))
	}
}

func TestRunPlacesAssignmentOutsideModules(t *testing.T) {
	root := writeCourse(t)

	// Canvas lists assignments in <resources> without any <item>
	// referencing them. They must still reach the output.
	manifest := strings.Replace(welcomeManifest,
		`<resource identifier="res_welcome" type="webcontent" href="wiki_content/welcome.xml"/>`,
		`<resource identifier="res_welcome" type="webcontent" href="wiki_content/welcome.xml"/>
    <resource identifier="res_orphan_assign" type="associatedcontent/imscc_xmlv1p1/learning-application-resource" href="assign_1/assignment_settings.xml"/>`, 1)
	if err := os.WriteFile(filepath.Join(root, "imsmanifest.xml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	settings := `<assignment identifier="res_orphan_assign">
  <title>Final Project</title>
  <text>&lt;p&gt;Build something.&lt;/p&gt;</text>
  <points_possible>25</points_possible>
  <due_at>2024-05-01T00:00:00Z</due_at>
  <workflow_state>published</workflow_state>
</assignment>`
	dir := filepath.Join(root, "assign_1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assignment_settings.xml"), []byte(settings), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	course, rep := Run(context.Background(), root, Options{})
	if course == nil {
		t.Fatal("Expected a course, got nil")
	}
	if rep.TotalBySeverity(report.SeverityError) != 0 {
		t.Fatalf("Expected 0 errors, got %d; events: %+v",
			rep.TotalBySeverity(report.SeverityError), rep.Events())
	}

	sweep := -1
	for i, topic := range course.Topics {
		if topic.SourceID == mappers.UnlinkedTopicID {
			sweep = i
		}
	}
	if sweep < 0 {
		t.Fatal("Expected a topic for the unreferenced assignment")
	}
	assigns := course.Topics[sweep].Assignments
	if len(assigns) != 1 || assigns[0].SourceID != "res_orphan_assign" {
		t.Fatalf("Expected the unreferenced assignment placed, got %+v", assigns)
	}
	if assigns[0].PostTitle != "Final Project" || assigns[0].Options.TotalMark != 25 {
		t.Errorf("Expected parsed settings carried through, got %q/%v",
			assigns[0].PostTitle, assigns[0].Options.TotalMark)
	}
}

func TestRunDeterministic(t *testing.T) {
	root := writeCourse(t)

	first, repA := Run(context.Background(), root, Options{Workers: 4})
	second, repB := Run(context.Background(), root, Options{Workers: 4})

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Error("Expected byte-identical serialized graphs across runs")
	}
	if !reflect.DeepEqual(repA.Events(), repB.Events()) {
		t.Error("Expected identical report event sequences across runs")
	}
}

func TestRunMissingManifestFails(t *testing.T) {
	course, rep := Run(context.Background(), t.TempDir(), Options{})

	if course != nil {
		t.Error("Expected no course on fatal manifest error")
	}
	if rep.Status() != report.StatusFailed {
		t.Errorf("Expected failed status, got %q", rep.Status())
	}
}

func TestRunMalformedContentExcludesEntityOnly(t *testing.T) {
	root := writeCourse(t)
	path := filepath.Join(root, "wiki_content", "welcome.xml")
	if err := os.WriteFile(path, []byte("not markup at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	course, rep := Run(context.Background(), root, Options{})
	if course == nil {
		t.Fatal("Expected a course despite the malformed page")
	}
	if rep.Status() != report.StatusSuccessWithWarnings {
		t.Errorf("Expected warnings status, got %q", rep.Status())
	}
	if rep.TotalBySeverity(report.SeverityError) == 0 {
		t.Error("Expected an error event for the malformed page")
	}

	// The recovered lesson still comes through.
	lessons := 0
	for _, topic := range course.Topics {
		lessons += len(topic.Lessons)
	}
	if lessons != 1 {
		t.Errorf("Expected 1 surviving lesson, got %d", lessons)
	}
}
