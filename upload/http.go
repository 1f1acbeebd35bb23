package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tsawler/examdoc/model"
)

// ErrRejected is returned when the server answers without a success status.
var ErrRejected = errors.New("upload: rejected by server")

// HTTPUploader posts images as JSON to an upload endpoint:
//
//	{"action":"uploadImage","imageData":"data:image/png;base64,...","fileName":"image1.png"}
//
// and expects {"status":"success","data":{"fileId":"..."}} in return.
type HTTPUploader struct {
	url        string
	action     string
	client     *http.Client
	maxRetries int
	logger     *slog.Logger
}

// Option configures an HTTPUploader.
type Option func(*HTTPUploader)

// WithClient sets the HTTP client. Default: 30s timeout.
func WithClient(c *http.Client) Option {
	return func(u *HTTPUploader) { u.client = c }
}

// WithRetries sets the maximum number of retries for transport errors and
// 5xx responses. Default: 2.
func WithRetries(n int) Option {
	return func(u *HTTPUploader) { u.maxRetries = max(n, 0) }
}

// WithAction sets the action field sent with every request. An empty
// action omits the field.
func WithAction(action string) Option {
	return func(u *HTTPUploader) { u.action = action }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(u *HTTPUploader) { u.logger = l }
}

// NewHTTPUploader creates an uploader targeting url.
func NewHTTPUploader(url string, opts ...Option) *HTTPUploader {
	u := &HTTPUploader{
		url:        url,
		action:     "uploadImage",
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 2,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

type uploadRequest struct {
	Action    string `json:"action,omitempty"`
	ImageData string `json:"imageData"`
	FileName  string `json:"fileName"`
}

type uploadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		FileID string `json:"fileId"`
	} `json:"data"`
}

// Upload implements Uploader.
func (u *HTTPUploader) Upload(ctx context.Context, asset model.ImageAsset) (string, error) {
	if len(asset.Data) == 0 {
		return "", ErrNoData
	}
	name := asset.Filename
	if name == "" {
		name = asset.ID + ".png"
	}
	body, err := json.Marshal(uploadRequest{
		Action:    u.action,
		ImageData: asset.DataURL(),
		FileName:  name,
	})
	if err != nil {
		return "", fmt.Errorf("upload: marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		id, retry, err := u.post(ctx, body)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !retry {
			break
		}
		u.logger.Warn("upload: attempt failed", "file", name, "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

// post sends one request. retry reports whether the failure is transient.
func (u *HTTPUploader) post(ctx context.Context, body []byte) (id string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("upload: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("upload: POST %s: %w", u.url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("upload: read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("upload: HTTP %d: %s", resp.StatusCode, truncate(raw))
	}

	var out uploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", false, fmt.Errorf("upload: response is not JSON (HTTP %d): %s", resp.StatusCode, truncate(raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("%w: HTTP %d: %s", ErrRejected, resp.StatusCode, out.Message)
	}
	if out.Status != "success" {
		msg := out.Message
		if msg == "" {
			msg = "status " + out.Status
		}
		return "", false, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if out.Data.FileID == "" {
		return "", false, fmt.Errorf("%w: success without fileId", ErrRejected)
	}
	return out.Data.FileID, false, nil
}

func truncate(b []byte) string {
	const n = 256
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
