// Package format identifies the kind of file handed to the importer so that
// anything other than a DOCX package can be rejected with a clear message.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a document format the importer can recognize.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Word (.docx) package, the only importable format.
	DOCX
	// DOC indicates a legacy Word 97-2003 binary document.
	DOC
	// PDF indicates a PDF document.
	PDF
	// ODT indicates an OpenDocument Text (.odt) document.
	ODT
	// RTF indicates a Rich Text Format document.
	RTF
	// ZIP indicates a ZIP archive that is not an office document.
	ZIP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case DOC:
		return "DOC"
	case PDF:
		return "PDF"
	case ODT:
		return "ODT"
	case RTF:
		return "RTF"
	case ZIP:
		return "ZIP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case DOC:
		return ".doc"
	case PDF:
		return ".pdf"
	case ODT:
		return ".odt"
	case RTF:
		return ".rtf"
	case ZIP:
		return ".zip"
	default:
		return ""
	}
}

// Supported reports whether exams can be imported from the format.
func (f Format) Supported() bool {
	return f == DOCX
}

// Hint returns advice for converting an unsupported format, or "".
func (f Format) Hint() string {
	switch f {
	case DOC, RTF, ODT:
		return "open the file in Word and save it as .docx"
	case PDF:
		return "PDF files carry no underline or equation markup; export the source document as .docx"
	}
	return ""
}

// Detect determines the format from a filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx", ".docm", ".dotx":
		return DOCX
	case ".doc", ".dot":
		return DOC
	case ".pdf":
		return PDF
	case ".odt":
		return ODT
	case ".rtf":
		return RTF
	case ".zip":
		return ZIP
	default:
		return Unknown
	}
}

var (
	magicPDF = []byte("%PDF")
	magicZIP = []byte{0x50, 0x4B, 0x03, 0x04}
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	magicRTF = []byte(`{\rtf`)
)

// DetectBytes inspects content to determine the format. ZIP archives are
// opened to tell DOCX and ODT packages apart from plain archives.
func DetectBytes(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicPDF):
		return PDF
	case bytes.HasPrefix(data, magicOLE):
		return DOC
	case bytes.HasPrefix(data, magicRTF):
		return RTF
	case bytes.HasPrefix(data, magicZIP):
		return detectZIP(data)
	}
	return Unknown
}

// wordMainType is the content type of the main part of a Word document.
const wordMainType = "wordprocessingml.document.main+xml"

// detectZIP inspects a ZIP archive for office document markers. A package
// whose content types declare a Word main part is DOCX even when the part
// itself is missing, so the reader can report the missing body.
func detectZIP(data []byte) Format {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}

	docx := false
	for _, f := range zr.File {
		switch {
		case f.Name == "mimetype":
			if strings.Contains(readEntry(f, 256), "application/vnd.oasis.opendocument.text") {
				return ODT
			}
		case f.Name == "[Content_Types].xml":
			if strings.Contains(readEntry(f, 64<<10), wordMainType) {
				docx = true
			}
		case strings.HasPrefix(f.Name, "word/"):
			docx = true
		}
	}
	if docx {
		return DOCX
	}
	return ZIP
}

// readEntry returns up to limit bytes of a ZIP entry, or "" if it cannot
// be read.
func readEntry(f *zip.File, limit int64) string {
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	b, _ := io.ReadAll(io.LimitReader(rc, limit))
	return string(b)
}
