package markup

import (
	"strconv"
	"strings"
)

// AssignmentMeta carries the settings of one assignment document.
// Absent fields keep their zero value; the transformer decides which
// absences are worth a warning.
type AssignmentMeta struct {
	Title           string
	Description     string
	Points          float64
	GradingType     string
	SubmissionTypes []string
	DueAt           string
	WorkflowState   string
}

// ParseAssignmentMeta extracts assignment settings from an assignment
// settings document.
func ParseAssignmentMeta(doc []byte) (AssignmentMeta, error) {
	root, err := ParseXML(doc)
	if err != nil {
		return AssignmentMeta{}, err
	}

	var m AssignmentMeta
	if n := root.FindFirst("title"); n != nil {
		m.Title = n.Text()
	}
	if n := root.FindFirst("text"); n != nil {
		m.Description = n.Inner()
	} else if n := root.FindFirst("description"); n != nil {
		m.Description = n.Inner()
	}
	for _, tag := range []string{"points_possible", "points"} {
		if n := root.FindFirst(tag); n != nil {
			if v, err := strconv.ParseFloat(n.Text(), 64); err == nil {
				m.Points = v
				break
			}
		}
	}
	if n := root.FindFirst("grading_type"); n != nil {
		m.GradingType = n.Text()
	}
	if n := root.FindFirst("submission_types"); n != nil {
		for _, t := range strings.Split(n.Text(), ",") {
			if t = strings.TrimSpace(t); t != "" {
				m.SubmissionTypes = append(m.SubmissionTypes, t)
			}
		}
	}
	if n := root.FindFirst("due_at"); n != nil {
		m.DueAt = n.Text()
	}
	if n := root.FindFirst("workflow_state"); n != nil {
		m.WorkflowState = n.Text()
	}
	return m, nil
}
