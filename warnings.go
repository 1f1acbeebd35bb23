package examdoc

import (
	"fmt"
	"strings"

	"github.com/tsawler/examdoc/assemble"
	"github.com/tsawler/examdoc/docx"
)

// WarningType classifies a non-fatal problem found while parsing.
type WarningType int

const (
	// WarningRelationships means image relationships could not be read.
	WarningRelationships WarningType = iota
	// WarningUnresolvedImage means an image reference fell back to its
	// relationship id.
	WarningUnresolvedImage
	// WarningImageType means a media file has an unrecognized type.
	WarningImageType
	// WarningUnreachableImage means a media file is never referenced.
	WarningUnreachableImage
	// WarningMalformedDocument means the document body was only partly read.
	WarningMalformedDocument
	// WarningNoSections means no part heading was found and the whole
	// document was read as multiple choice.
	WarningNoSections
	// WarningValidation is a finding of the document validator.
	WarningValidation
)

// String returns the warning type name.
func (t WarningType) String() string {
	switch t {
	case WarningRelationships:
		return "relationships"
	case WarningUnresolvedImage:
		return "unresolved image"
	case WarningImageType:
		return "image type"
	case WarningUnreachableImage:
		return "unreachable image"
	case WarningMalformedDocument:
		return "malformed document"
	case WarningNoSections:
		return "no sections"
	case WarningValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal issue: parsing succeeded but the result may be
// incomplete.
type Warning struct {
	Type    WarningType
	Message string
}

// String formats the warning for display.
func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Type, w.Message)
}

// FormatWarnings joins warnings into one human-readable string.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

var issueWarnings = map[docx.IssueKind]WarningType{
	docx.IssueRelationships:     WarningRelationships,
	docx.IssueUnresolvedImage:   WarningUnresolvedImage,
	docx.IssueImageType:         WarningImageType,
	docx.IssueUnreachableImage:  WarningUnreachableImage,
	docx.IssueMalformedDocument: WarningMalformedDocument,
}

func issueWarning(iss docx.Issue) Warning {
	msg := iss.Message
	if iss.Part != "" {
		msg += " (" + iss.Part + ")"
	}
	return Warning{Type: issueWarnings[iss.Kind], Message: msg}
}

func findingWarning(f assemble.Finding) Warning {
	return Warning{Type: WarningValidation, Message: f.String()}
}
