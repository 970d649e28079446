package domain

import "strings"

// ResourceType is the declared content type of a manifest resource.
type ResourceType string

const (
	ResourcePage       ResourceType = "page"
	ResourceAssignment ResourceType = "assignment"
	ResourceQuiz       ResourceType = "quiz"
	ResourceAsset      ResourceType = "asset"
	ResourceUnknown    ResourceType = "unknown"
)

// Resource is one manifest resource entry. Immutable after manifest
// parsing.
type Resource struct {
	Identifier string
	Type       ResourceType
	// Href is the file path relative to the course root, forward-slash
	// separated as written in the manifest.
	Href  string
	Title string
}

// ClassifyResourceType maps an IMS-CC resource type attribute to our
// closed type set. Canvas writes values like
// "imsqti_xmlv1p2/imscc_xmlv1p1/assessment" and "webcontent".
func ClassifyResourceType(raw string) ResourceType {
	t := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case t == "":
		return ResourceUnknown
	case strings.Contains(t, "assessment"), strings.Contains(t, "question-bank"):
		return ResourceQuiz
	case strings.Contains(t, "assignment"):
		return ResourceAssignment
	case strings.Contains(t, "associatedcontent"):
		// Canvas marks assignment folders as associated content.
		return ResourceAssignment
	case strings.Contains(t, "webcontent"):
		return ResourcePage
	case strings.Contains(t, "imswl"):
		// Web links carry no local content file.
		return ResourceAsset
	default:
		return ResourceUnknown
	}
}

// OrgNode is one node of the manifest organization tree. Order of
// Children is significant and drives target ordering.
type OrgNode struct {
	Identifier string
	Title      string
	// ResourceRef is the identifierref attribute, "" for structural
	// nodes (modules without content).
	ResourceRef string
	Children    []*OrgNode
}

// Walk visits the node and all descendants depth-first in document order.
func (n *OrgNode) Walk(fn func(*OrgNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
