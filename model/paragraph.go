package model

// Paragraph is one reconstructed source paragraph.
//
// Text is normalized and never empty; it may contain inline image markers
// and literal newlines from explicit line breaks.
type Paragraph struct {
	Text               string
	HasUnderline       bool
	UnderlinedSegments []string
}
