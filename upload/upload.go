// Package upload sends extracted images to a remote store so that inline
// markers can point at remote ids instead of local asset ids.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/examdoc/markers"
	"github.com/tsawler/examdoc/model"
)

// DefaultConcurrency is the number of uploads UploadAll runs at once when
// no limit is given.
const DefaultConcurrency = 4

// ErrNoData is reported for assets without a payload.
var ErrNoData = errors.New("upload: image has no data")

// Uploader stores one image and returns its remote id.
type Uploader interface {
	Upload(ctx context.Context, asset model.ImageAsset) (string, error)
}

// Failure records an image that could not be uploaded.
type Failure struct {
	ID       string
	Filename string
	Err      error
}

// String formats the failure for display.
func (f Failure) String() string {
	return fmt.Sprintf("%s (%s): %v", f.Filename, f.ID, f.Err)
}

// Result collects the outcome of UploadAll.
type Result struct {
	// ByLocalID maps local asset ids to remote ids.
	ByLocalID map[string]string
	// ByRelationshipID maps relationship ids to remote ids.
	ByRelationshipID map[string]string
	// Failures lists the assets that were not uploaded, in asset order.
	Failures []Failure
}

// Uploaded returns the number of assets that were stored.
func (r Result) Uploaded() int {
	return len(r.ByLocalID)
}

// Table returns the marker substitution table for the uploaded images.
func (r Result) Table() markers.Table {
	return markers.Table{ByLocalID: r.ByLocalID, ByRelationshipID: r.ByRelationshipID}
}

// UploadAll uploads every asset with at most limit uploads in flight.
// A failed upload never stops the others; it is recorded in
// Result.Failures and its markers stay local. The error is non-nil only
// when ctx ends before all uploads finish.
func UploadAll(ctx context.Context, u Uploader, images []model.ImageAsset, limit int, logger *slog.Logger) (Result, error) {
	if limit < 1 {
		limit = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	ids := make([]string, len(images))
	errs := make([]error, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	done := 0
	for i, img := range images {
		if len(img.Data) == 0 {
			errs[i] = ErrNoData
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			id, err := u.Upload(gctx, img)
			if err == nil && id == "" {
				err = errors.New("upload: empty remote id")
			}
			ids[i], errs[i] = id, err

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if err != nil {
				logger.Warn("image upload failed", "id", img.ID, "file", img.Filename, "error", err)
			} else {
				logger.Debug("image uploaded", "id", img.ID, "file", img.Filename, "remote", id, "done", n, "total", len(images))
			}
			return nil
		})
	}
	g.Wait()

	res := Result{
		ByLocalID:        make(map[string]string),
		ByRelationshipID: make(map[string]string),
	}
	for i, img := range images {
		if errs[i] != nil {
			res.Failures = append(res.Failures, Failure{ID: img.ID, Filename: img.Filename, Err: errs[i]})
			continue
		}
		res.ByLocalID[img.ID] = ids[i]
		if img.RelationshipID != "" {
			res.ByRelationshipID[img.RelationshipID] = ids[i]
		}
	}

	logger.Info("image upload finished", "uploaded", res.Uploaded(), "failed", len(res.Failures), "total", len(images))
	return res, ctx.Err()
}
