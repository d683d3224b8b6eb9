package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/ironsheep/plate-service/internal/imaging"
	"github.com/ironsheep/plate-service/internal/logging"
	"github.com/ironsheep/plate-service/internal/plate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plate_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	ctx = logging.WithRequestID(ctx, uuid.NewString())
	logging.Debugf(ctx, "tool call %s", params.Name)

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		logging.Printf(ctx, "Tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches to the tool handler. A panicking handler fails only its
// own call.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "plate_image_info":
		return s.handleImageInfo(args)
	case "plate_image_evict":
		return s.handleImageEvict(args)
	case "plate_detect":
		return s.handleDetect(ctx, args)
	case "plate_detect_high_accuracy":
		return s.handleDetectHighAccuracy(ctx, args)
	case "plate_clean":
		return s.handleClean(args)
	case "plate_dominant_colors":
		return s.handleDominantColors(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

var errNoPath = errors.New("path is required")

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) loadImage(args json.RawMessage) (image.Image, string, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, "", err
	}
	if a.Path == "" {
		return nil, "", errNoPath
	}
	img, err := s.cache.Load(a.Path)
	return img, a.Path, err
}

// === Image handlers ===

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errNoPath
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type evictResult struct {
	Path   string `json:"path"`
	Cached int    `json:"cached"`
}

func (s *Server) handleImageEvict(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		s.cache.Clear()
	} else {
		s.cache.Evict(a.Path)
	}
	return evictResult{Path: a.Path, Cached: s.cache.Len()}, nil
}

// === Detection handlers ===

type detectResult struct {
	Detected    bool    `json:"detected"`
	PlateNumber string  `json:"plate_number"`
	Confidence  float64 `json:"confidence"`
	Message     string  `json:"message"`
}

func (s *Server) handleDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	img, _, err := s.loadImage(args)
	if err != nil {
		return nil, err
	}

	res, err := s.detector.DetectBikeNumber(ctx, img)
	if err != nil {
		return nil, err
	}

	switch {
	case res.Found() && res.IsConfident():
		return detectResult{Detected: true, PlateNumber: res.Text, Confidence: res.Confidence, Message: "Detected: " + res.Text}, nil
	case res.Found():
		return detectResult{PlateNumber: res.Text, Confidence: res.Confidence, Message: "Low confidence: " + res.Text}, nil
	}
	return detectResult{Message: "No number plate detected"}, nil
}

type detectHighAccuracyArgs struct {
	Path        string `json:"path"`
	IncludeCrop bool   `json:"include_crop"`
}

type highAccuracyResult struct {
	Detected bool             `json:"detected"`
	Plate    *plate.Detection `json:"plate,omitempty"`
	Color    string           `json:"plate_color,omitempty"`
	Category string           `json:"category,omitempty"`
	Crop     string           `json:"crop_png_base64,omitempty"`
	Message  string           `json:"message"`
}

func (s *Server) handleDetectHighAccuracy(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectHighAccuracyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, _, err := s.loadImage(args)
	if err != nil {
		return nil, err
	}

	det, err := s.detector.DetectNumberPlate(ctx, img)
	if err != nil {
		return nil, err
	}
	if det == nil {
		return highAccuracyResult{Message: "No number plate detected with high confidence"}, nil
	}

	pc := s.detector.ClassifyColor(img, det.Box)
	out := highAccuracyResult{
		Detected: true,
		Plate:    det,
		Color:    string(pc),
		Category: pc.Category(),
		Message:  "High-confidence number plate detected",
	}

	if a.IncludeCrop {
		if crop, ok := imaging.CropBox(img, det.Box); ok {
			data, err := imaging.EncodePNG(crop)
			if err != nil {
				return nil, fmt.Errorf("encode crop: %w", err)
			}
			out.Crop = base64.StdEncoding.EncodeToString(data)
		}
	}
	return out, nil
}

type cleanArgs struct {
	Text string `json:"text"`
}

type cleanResult struct {
	Cleaned string `json:"cleaned"`
	Plate   string `json:"plate"`
}

func (s *Server) handleClean(args json.RawMessage) (interface{}, error) {
	var a cleanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return cleanResult{Cleaned: plate.Clean(a.Text), Plate: plate.CleanPlate(a.Text)}, nil
}

type box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type dominantColorsArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
	Box   *box   `json:"box"`
}

type dominantColorsResult struct {
	Colors   []imaging.ColorFrequency `json:"colors"`
	Color    string                   `json:"plate_color"`
	Category string                   `json:"category"`
}

func (s *Server) handleDominantColors(args json.RawMessage) (interface{}, error) {
	var a dominantColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count <= 0 {
		a.Count = 5
	}
	img, _, err := s.loadImage(args)
	if err != nil {
		return nil, err
	}

	if a.Box != nil {
		crop, ok := imaging.CropBox(img, image.Rect(a.Box.X1, a.Box.Y1, a.Box.X2, a.Box.Y2))
		if !ok {
			return nil, fmt.Errorf("box (%d,%d)-(%d,%d) is outside the image", a.Box.X1, a.Box.Y1, a.Box.X2, a.Box.Y2)
		}
		img = crop
	}

	pc := imaging.ClassifyPlateColor(img)
	return dominantColorsResult{
		Colors:   imaging.DominantColors(img, a.Count),
		Color:    string(pc),
		Category: pc.Category(),
	}, nil
}
