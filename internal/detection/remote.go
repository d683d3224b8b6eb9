package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/ironsheep/plate-service/internal/imaging"
)

// remoteBox is one detection as returned by the inference service.
type remoteBox struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// RemoteLocalizer delegates detection to an HTTP inference service.
//
// The image is posted as a multipart form (field "file", JPEG) together with the
// confidence threshold (field "conf"). The service answers with
// {"detections":[{"x","y","width","height","class","confidence"}]} in pixel
// coordinates of the posted image.
type RemoteLocalizer struct {
	inferenceURL string
	client       *http.Client
}

// NewRemoteLocalizer creates a localizer for the service at inferenceURL. A zero
// timeout means no client-side timeout.
func NewRemoteLocalizer(inferenceURL string, timeout time.Duration) *RemoteLocalizer {
	return &RemoteLocalizer{
		inferenceURL: inferenceURL,
		client:       &http.Client{Timeout: timeout},
	}
}

// Name implements Localizer.
func (r *RemoteLocalizer) Name() string { return "remote" }

// Detect implements Localizer.
func (r *RemoteLocalizer) Detect(ctx context.Context, img image.Image, minConfidence float64) ([]Candidate, error) {
	data, err := imaging.EncodeJPEG(img, 95)
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.WriteField("conf", strconv.FormatFloat(minConfidence, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("write conf field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.inferenceURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Detections []remoteBox `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	bounds := img.Bounds()
	candidates := make([]Candidate, 0, len(result.Detections))
	for _, d := range result.Detections {
		if d.Confidence < minConfidence {
			continue
		}
		box := image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height).Add(bounds.Min).Intersect(bounds)
		if box.Empty() {
			continue
		}
		candidates = append(candidates, Candidate{
			Box:        box,
			Confidence: d.Confidence,
			Label:      d.Class,
		})
	}

	sortByConfidence(candidates)
	return candidates, nil
}

// CheckHealth queries the service's /health endpoint, a sibling of the inference path.
func (r *RemoteLocalizer) CheckHealth(ctx context.Context) error {
	u, err := url.Parse(r.inferenceURL)
	if err != nil {
		return fmt.Errorf("parse inference url: %w", err)
	}
	u.Path = path.Join(path.Dir(u.Path), "health")
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}
	return nil
}
