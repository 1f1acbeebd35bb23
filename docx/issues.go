package docx

import "fmt"

// IssueKind classifies a degraded-extraction issue.
type IssueKind int

const (
	// IssueRelationships means the relationship table was missing or
	// malformed; no image relationship could be resolved.
	IssueRelationships IssueKind = iota
	// IssueUnresolvedImage means an image reference had no matching asset
	// and a fallback marker was emitted.
	IssueUnresolvedImage
	// IssueImageType means a media file had an unrecognized extension.
	IssueImageType
	// IssueUnreachableImage means a media file has no relationship entry
	// and cannot be referenced by inline markers.
	IssueUnreachableImage
	// IssueMalformedDocument means the document part stopped parsing
	// part-way; paragraphs read before the error are kept.
	IssueMalformedDocument
)

// String returns the issue kind name.
func (k IssueKind) String() string {
	switch k {
	case IssueRelationships:
		return "relationships"
	case IssueUnresolvedImage:
		return "unresolved image"
	case IssueImageType:
		return "image type"
	case IssueUnreachableImage:
		return "unreachable image"
	case IssueMalformedDocument:
		return "malformed document"
	default:
		return "unknown"
	}
}

// Issue is a non-fatal problem found while reading a document.
type Issue struct {
	Kind    IssueKind
	Part    string
	Message string
}

// String formats the issue for display.
func (i Issue) String() string {
	if i.Part == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Kind, i.Message, i.Part)
}
