// Package manifest resolves the imsmanifest.xml descriptor into the
// course resource map and organization tree. The manifest is the sole
// source of truth for hierarchy: anything unreadable here is fatal for
// the whole run.
package manifest

import (
	"fmt"

	"course-migrate/internal/domain"
	"course-migrate/internal/markup"
	"course-migrate/internal/report"
)

const untitledCourse = "Untitled Course"

// Resolve parses the manifest document once and builds the course
// skeleton: identifier, title, resource list (document order, duplicates
// warned and last-write-wins) and the organization tree. Content maps
// stay empty; the parse stage fills them.
func Resolve(data []byte, rep *report.Report) (*domain.Course, error) {
	root, err := markup.ParseXML(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if root.Name != "manifest" {
		return nil, fmt.Errorf("manifest: unexpected root element <%s>", root.Name)
	}

	course := domain.NewCourse(root.Attr("identifier"), courseTitle(root), "")
	if course.Identifier == "" {
		course.Identifier = "unknown"
	}

	if err := resolveResources(root, course, rep); err != nil {
		return nil, err
	}
	if err := resolveOrganization(root, course, rep); err != nil {
		return nil, err
	}
	return course, nil
}

// courseTitle walks the LOM metadata title chain, falling back through
// the shapes different exporters produce.
func courseTitle(root *markup.Node) string {
	meta := root.FindFirst("metadata")
	if meta == nil {
		return untitledCourse
	}
	if t := meta.FindFirst("title"); t != nil {
		if s := t.FindFirst("string"); s != nil && s.Text() != "" {
			return s.Text()
		}
		if t.Text() != "" {
			return t.Text()
		}
	}
	return untitledCourse
}

func resolveResources(root *markup.Node, course *domain.Course, rep *report.Report) error {
	resources := root.FindFirst("resources")
	if resources == nil {
		return fmt.Errorf("manifest: missing <resources> section")
	}

	seen := map[string]bool{}
	for _, el := range resources.FindAll("resource") {
		id := el.Attr("identifier")
		if id == "" {
			rep.Warn(report.StageManifest, "resource without identifier skipped", "")
			continue
		}
		if seen[id] {
			rep.Warn(report.StageManifest, fmt.Sprintf("duplicate resource identifier %q, keeping the later entry", id), id)
		}
		seen[id] = true

		course.Resources = append(course.Resources, domain.Resource{
			Identifier: id,
			Type:       domain.ClassifyResourceType(el.Attr("type")),
			Href:       el.Attr("href"),
			Title:      directChildText(el, "title"),
		})
	}
	return nil
}

func resolveOrganization(root *markup.Node, course *domain.Course, rep *report.Report) error {
	orgs := root.FindFirst("organizations")
	if orgs == nil {
		return fmt.Errorf("manifest: missing <organizations> section")
	}
	org := orgs.FindFirst("organization")
	if org == nil {
		return fmt.Errorf("manifest: no <organization> element")
	}

	items := directChildren(org, "item")

	// Canvas wraps all modules in a single root item without title or
	// content; flatten it so the wrapper does not become a topic of its
	// own. A lone titled module stays as-is.
	if len(items) == 1 && items[0].Attr("identifierref") == "" && directChildText(items[0], "title") == "" {
		if children := directChildren(items[0], "item"); len(children) > 0 {
			rep.Info(report.StageManifest, "flattened wrapper module", items[0].Attr("identifier"))
			items = children
		}
	}

	known := map[string]bool{}
	for _, r := range course.Resources {
		known[r.Identifier] = true
	}

	for _, el := range items {
		course.Modules = append(course.Modules, buildNode(el, known, rep))
	}
	return nil
}

func buildNode(el *markup.Node, known map[string]bool, rep *report.Report) *domain.OrgNode {
	n := &domain.OrgNode{
		Identifier:  el.Attr("identifier"),
		Title:       directChildText(el, "title"),
		ResourceRef: el.Attr("identifierref"),
	}
	if n.Title == "" {
		n.Title = "Untitled Item"
	}

	// An unresolvable reference keeps the node's title but carries no
	// content.
	if n.ResourceRef != "" && !known[n.ResourceRef] {
		rep.Warn(report.StageManifest,
			fmt.Sprintf("item %q references unknown resource %q", n.Identifier, n.ResourceRef), n.Identifier)
		n.ResourceRef = ""
	}

	for _, child := range directChildren(el, "item") {
		n.Children = append(n.Children, buildNode(child, known, rep))
	}
	return n
}

// directChildren returns only the immediate child elements with the
// given name; descending would steal titles from nested items.
func directChildren(n *markup.Node, name string) []*markup.Node {
	var out []*markup.Node
	for _, c := range n.Children {
		if c.Node != nil && c.Node.Name == name {
			out = append(out, c.Node)
		}
	}
	return out
}

func directChildText(n *markup.Node, name string) string {
	for _, c := range n.Children {
		if c.Node != nil && c.Node.Name == name {
			return c.Node.Text()
		}
	}
	return ""
}
