package model

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// ImageAsset is one media file extracted from the document container.
type ImageAsset struct {
	// ID is the local identifier ("img_0", "img_1", ...) in extraction order.
	ID string

	// Filename is the base name of the media part, e.g. "image1.png".
	Filename string

	// Path is the full part name inside the container, e.g. "word/media/image1.png".
	Path string

	// Data holds the raw bytes of the image.
	Data []byte

	// MIMEType is inferred from the file extension.
	MIMEType string

	// RelationshipID is the first relationship id that targets this file.
	// Empty when the relationship table has no entry for it.
	RelationshipID string

	// Width and Height in pixels, 0 when the format cannot be probed.
	Width  int
	Height int
}

// LocalID returns the local asset id for a sequence number.
func LocalID(n int) string {
	return "img_" + strconv.Itoa(n)
}

// Reachable reports whether inline markers can point at this asset.
func (a ImageAsset) Reachable() bool {
	return a.RelationshipID != ""
}

// DataURL returns the image as a data: URL.
func (a ImageAsset) DataURL() string {
	if len(a.Data) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(a.MIMEType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(a.Data))
	return b.String()
}

// IsWebCompatible reports whether browsers render the MIME type natively.
func (a ImageAsset) IsWebCompatible() bool {
	switch a.MIMEType {
	case "image/png", "image/jpeg", "image/gif", "image/webp", "image/svg+xml":
		return true
	}
	return false
}
