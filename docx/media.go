package docx

import (
	"bytes"
	"image"
	"path"
	"strings"

	// Decoders registered for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/examdoc/model"
)

// defaultMIMEType is used for media files with an unrecognized extension.
const defaultMIMEType = "image/png"

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"jpe":  "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

// MIMEType returns the MIME type for a media filename and whether the
// extension was recognized. Unknown extensions map to image/png.
func MIMEType(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if mt, ok := mimeTypes[ext]; ok {
		return mt, true
	}
	return defaultMIMEType, false
}

// mediaIndex is the two-pass resolution between relationship ids, media
// filenames and local asset ids.
type mediaIndex struct {
	ridToFile   map[string]string
	fileToRID   map[string]string
	fileToLocal map[string]string
	ridToLocal  map[string]string
}

// extractImages decodes every part under word/media/ into an ImageAsset and
// builds the relationship id to local id index used by the paragraph walker.
func (r *Reader) extractImages() {
	idx := mediaIndex{
		ridToFile:   make(map[string]string),
		fileToRID:   make(map[string]string),
		fileToLocal: make(map[string]string),
		ridToLocal:  make(map[string]string),
	}

	// Pass 1: relationship id -> media filename, in table order.
	for _, rel := range r.rels {
		if rel.ID == "" || !strings.Contains(rel.Target, mediaToken) || strings.EqualFold(rel.TargetMode, "External") {
			continue
		}
		name := path.Base(rel.Target)
		idx.ridToFile[rel.ID] = name
		if _, seen := idx.fileToRID[name]; !seen {
			idx.fileToRID[name] = rel.ID
		}
	}

	for _, f := range r.order {
		if !strings.HasPrefix(f.Name, mediaDir) || strings.HasSuffix(f.Name, "/") {
			continue
		}
		data, err := r.readFile(f.Name)
		if err != nil {
			r.logger.Warn("docx: failed to read media file", "part", f.Name, "error", err)
			continue
		}

		name := path.Base(f.Name)
		mt, known := MIMEType(name)
		if !known {
			r.addIssue(IssueImageType, f.Name, "unrecognized image extension, assuming "+defaultMIMEType)
		}

		asset := model.ImageAsset{
			ID:             model.LocalID(len(r.images)),
			Filename:       name,
			Path:           f.Name,
			Data:           data,
			MIMEType:       mt,
			RelationshipID: idx.fileToRID[name],
		}
		asset.Width, asset.Height = probeSize(data)
		if !asset.Reachable() {
			r.addIssue(IssueUnreachableImage, f.Name, "no relationship targets this media file")
		}

		idx.fileToLocal[name] = asset.ID
		r.images = append(r.images, asset)
	}

	// Pass 2: every relationship whose file was extracted resolves.
	for rid, name := range idx.ridToFile {
		if id, ok := idx.fileToLocal[name]; ok {
			idx.ridToLocal[rid] = id
		}
	}

	r.media = idx
}

// probeSize returns image dimensions, or zeros for formats without a
// registered decoder (EMF, WMF, SVG).
func probeSize(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
