package domain

// Course is the canonical in-memory representation of a parsed Canvas
// export. The manifest resolver builds the tree and resource list, the
// parse and inventory stages fill in the content maps keyed by resource
// identifier. Everything downstream (mappers, verify) reads from this
// model and never writes back into it.
type Course struct {
	Identifier string
	Title      string
	SourceDir  string

	// Modules is the organization tree in manifest document order, with
	// the synthetic recovered-content module appended last when the
	// inventory stage finds orphaned files.
	Modules []*OrgNode

	// Resources preserves manifest document order; lookups go through
	// ResourceByID.
	Resources []Resource

	Pages       map[string]*Page
	Quizzes     map[string]*Quiz
	Assignments map[string]*Assignment
}

func NewCourse(identifier, title, sourceDir string) *Course {
	return &Course{
		Identifier:  identifier,
		Title:       title,
		SourceDir:   sourceDir,
		Pages:       map[string]*Page{},
		Quizzes:     map[string]*Quiz{},
		Assignments: map[string]*Assignment{},
	}
}

// ResourceByID resolves a resource identifier. Later manifest entries win
// on duplicates, matching how the resource list is built.
func (c *Course) ResourceByID(id string) (Resource, bool) {
	var found Resource
	ok := false
	for _, r := range c.Resources {
		if r.Identifier == id {
			found = r
			ok = true
		}
	}
	return found, ok
}

// ReferencedPaths returns the set of relative file paths referenced by any
// manifest resource, used by the inventory reconciler's set difference.
func (c *Course) ReferencedPaths() map[string]bool {
	out := map[string]bool{}
	for _, r := range c.Resources {
		if r.Href != "" {
			out[r.Href] = true
		}
	}
	return out
}

// ContentCounts returns per-type entity counts for the report.
func (c *Course) ContentCounts() map[string]int {
	questions := 0
	for _, q := range c.Quizzes {
		questions += len(q.Questions)
	}
	return map[string]int{
		"modules":     len(c.Modules),
		"pages":       len(c.Pages),
		"quizzes":     len(c.Quizzes),
		"questions":   questions,
		"assignments": len(c.Assignments),
	}
}
