package docx

import "encoding/xml"

// Namespaces recognized by the paragraph walker. Documents saved in strict
// mode use the purl.oclc.org variants.
const (
	nsW        = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsWStrict  = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	nsR        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRStrict  = "http://purl.oclc.org/ooxml/officeDocument/relationships"
	nsM        = "http://schemas.openxmlformats.org/officeDocument/2006/math"
	nsMStrict  = "http://purl.oclc.org/ooxml/officeDocument/math"
	nsA        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsAStrict  = "http://purl.oclc.org/ooxml/drawingml/main"
	nsV        = "urn:schemas-microsoft-com:vml"
	nsO        = "urn:schemas-microsoft-com:office:office"
	nsMC       = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	partDoc    = "word/document.xml"
	partRels   = "word/_rels/document.xml.rels"
	partCore   = "docProps/core.xml"
	mediaDir   = "word/media/"
	mediaToken = "media/"
)

// prefix maps an element or attribute namespace to its conventional prefix.
// Undeclared prefixes are reported by encoding/xml as the bare prefix, which
// is accepted as well.
func prefix(n xml.Name) string {
	switch n.Space {
	case nsW, nsWStrict, "w":
		return "w"
	case nsR, nsRStrict, "r":
		return "r"
	case nsM, nsMStrict, "m":
		return "m"
	case nsA, nsAStrict, "a":
		return "a"
	case nsV, "v":
		return "v"
	case nsO, "o":
		return "o"
	case nsMC, "mc":
		return "mc"
	}
	return ""
}

// is reports whether n is the element prefix:local.
func is(n xml.Name, pfx, local string) bool {
	return n.Local == local && prefix(n) == pfx
}

// relationshipsXML represents word/_rels/document.xml.rels.
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// corePropertiesXML represents docProps/core.xml.
type corePropertiesXML struct {
	XMLName xml.Name `xml:"coreProperties"`
	Title   string   `xml:"title"`
	Subject string   `xml:"subject"`
	Creator string   `xml:"creator"`
}
