package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/ironsheep/scan-merge-mcp/internal/imaging"
	"github.com/ironsheep/scan-merge-mcp/internal/merge"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "merge_search").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token of long-running calls.
	Meta *RequestMeta `json:"_meta,omitempty"`
}

// RequestMeta is the MCP "_meta" object of a request.
type RequestMeta struct {
	// ProgressToken is echoed in every progress notification for the call.
	// It is a string or a number.
	ProgressToken interface{} `json:"progressToken,omitempty"`
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	var reporter merge.Reporter
	if params.Meta != nil && params.Meta.ProgressToken != nil {
		reporter = s.newProgressNotifier(params.Meta.ProgressToken)
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments, reporter)
	if err != nil {
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

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/merge function
//  5. Returns the result or error
//
// reporter may be nil; only the merge tools use it.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage, reporter merge.Reporter) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Test Material
	case "image_split_fragments":
		return s.handleImageSplitFragments(args)
	case "image_synthetic_page":
		return s.handleImageSyntheticPage(args)

	// Merge Operations
	case "merge_search":
		return s.handleMergeSearch(ctx, args, reporter)
	case "merge_compose":
		return s.handleMergeCompose(args)
	case "merge_fragments":
		return s.handleMergeFragments(ctx, args, reporter)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadRaster loads path through the cache as a merge raster.
func (s *Server) loadRaster(path string) (*merge.Raster, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	r, err := merge.NewRaster(img)
	if err != nil {
		return nil, fmt.Errorf("failed to use %s: %w", path, err)
	}
	return r, nil
}

// saveResult writes img to path and keeps it cached under the same path.
func (s *Server) saveResult(path string, img image.Image) error {
	if err := imaging.Save(path, img); err != nil {
		return err
	}
	s.cache.Put(path, img)
	return nil
}

func (s *Server) searchOptions(reporter merge.Reporter) merge.SearchOptions {
	opts := merge.DefaultSearchOptions()
	opts.Reporter = reporter
	if s.debug {
		opts.Logf = log.Printf
	}
	return opts
}

func composeOptions(seam bool, background string) (merge.ComposeOptions, error) {
	bg, err := imaging.ParseColor(background)
	if err != nil {
		return merge.ComposeOptions{}, err
	}
	return merge.ComposeOptions{SeamCorrection: seam, Background: bg}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Test Material Handlers ===

type imageSplitFragmentsArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
	Count     int    `json:"count"`
}

// FragmentInfo describes one fragment written by image_split_fragments.
type FragmentInfo struct {
	Path   string `json:"path"`
	X      int    `json:"x"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SplitResult is the result of image_split_fragments.
type SplitResult struct {
	Fragments []FragmentInfo `json:"fragments"`
}

func (s *Server) handleImageSplitFragments(args json.RawMessage) (interface{}, error) {
	var a imageSplitFragmentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 3
	}
	if a.OutputDir == "" {
		return nil, fmt.Errorf("output_dir is required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	frags, positions, err := imaging.SplitDIN(img, a.Count)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &SplitResult{}
	for i, f := range frags {
		path := filepath.Join(a.OutputDir, fmt.Sprintf("fragment_%d.png", i+1))
		if err := s.saveResult(path, f); err != nil {
			return nil, err
		}
		b := f.Bounds()
		result.Fragments = append(result.Fragments, FragmentInfo{
			Path:   path,
			X:      positions[i],
			Width:  b.Dx(),
			Height: b.Dy(),
		})
	}
	return result, nil
}

type imageSyntheticPageArgs struct {
	OutputPath string `json:"output_path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

func (s *Server) handleImageSyntheticPage(args json.RawMessage) (interface{}, error) {
	var a imageSyntheticPageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width == 0 {
		a.Width = 2480
	}
	if a.Height == 0 {
		a.Height = 1754
	}
	if a.Width < 0 || a.Height < 0 {
		return nil, fmt.Errorf("invalid page size %dx%d", a.Width, a.Height)
	}
	page := imaging.SyntheticPage(a.Width, a.Height)
	if err := s.saveResult(a.OutputPath, page); err != nil {
		return nil, err
	}
	return &imaging.DimensionsResult{Width: a.Width, Height: a.Height}, nil
}

// === Merge Handlers ===

type mergeSearchArgs struct {
	Reference     string `json:"reference"`
	Candidate     string `json:"candidate"`
	IncludeLevels bool   `json:"include_levels"`
}

// SearchResult is the result of merge_search.
type SearchResult struct {
	merge.MergeResult
	AngleDegrees float64             `json:"angle_degrees"`
	Quality      merge.Quality       `json:"quality"`
	FirstScale   int                 `json:"first_scale"`
	Levels       []merge.LevelResult `json:"levels,omitempty"`
}

func (s *Server) handleMergeSearch(ctx context.Context, args json.RawMessage, reporter merge.Reporter) (interface{}, error) {
	var a mergeSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ref, err := s.loadRaster(a.Reference)
	if err != nil {
		return nil, err
	}
	cand, err := s.loadRaster(a.Candidate)
	if err != nil {
		return nil, err
	}

	report, err := merge.Search(ctx, ref, cand, s.searchOptions(reporter))
	if err != nil {
		return nil, err
	}
	out := &SearchResult{
		MergeResult:  report.Result,
		AngleDegrees: report.Result.AngleDegrees(),
		Quality:      merge.QualityFor(report.Result.Deviation),
		FirstScale:   report.FirstScale,
	}
	if a.IncludeLevels {
		out.Levels = report.Levels
	}
	return out, nil
}

type mergeComposeArgs struct {
	Reference      string  `json:"reference"`
	Candidate      string  `json:"candidate"`
	OutputPath     string  `json:"output_path"`
	X              int     `json:"x"`
	Y              int     `json:"y"`
	Angle          float64 `json:"angle"`
	SeamCorrection bool    `json:"seam_correction"`
	Background     string  `json:"background"`
	IncludeImage   bool    `json:"include_image"`
}

// ComposeResult is the result of merge_compose and merge_fragments.
type ComposeResult struct {
	OutputPath string                `json:"output_path"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Background string                `json:"background"`
	Poses      []merge.MergeResult   `json:"poses,omitempty"`
	Image      *imaging.EncodedImage `json:"image,omitempty"`
}

// finishCompose saves a merge result and describes it.
func (s *Server) finishCompose(path string, out *merge.Raster, opts merge.ComposeOptions, includeImage bool) (*ComposeResult, error) {
	img := out.NRGBA()
	if err := s.saveResult(path, img); err != nil {
		return nil, err
	}
	res := &ComposeResult{
		OutputPath: path,
		Width:      out.Width(),
		Height:     out.Height(),
		Background: imaging.HexColor(opts.Background),
	}
	if includeImage {
		enc, err := imaging.EncodeBase64PNG(img)
		if err != nil {
			return nil, err
		}
		res.Image = enc
	}
	return res, nil
}

func (s *Server) handleMergeCompose(args json.RawMessage) (interface{}, error) {
	var a mergeComposeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := composeOptions(a.SeamCorrection, a.Background)
	if err != nil {
		return nil, err
	}
	ref, err := s.loadRaster(a.Reference)
	if err != nil {
		return nil, err
	}
	cand, err := s.loadRaster(a.Candidate)
	if err != nil {
		return nil, err
	}

	out, err := merge.Compose(ref, cand, merge.MergeResult{X: a.X, Y: a.Y, Angle: a.Angle}, opts)
	if err != nil {
		return nil, err
	}
	return s.finishCompose(a.OutputPath, out, opts, a.IncludeImage)
}

type mergeFragmentsArgs struct {
	Paths          []string `json:"paths"`
	OutputPath     string   `json:"output_path"`
	SeamCorrection bool     `json:"seam_correction"`
	Background     string   `json:"background"`
	IncludeImage   bool     `json:"include_image"`
}

func (s *Server) handleMergeFragments(ctx context.Context, args json.RawMessage, reporter merge.Reporter) (interface{}, error) {
	var a mergeFragmentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("paths must name at least one fragment")
	}
	opts, err := composeOptions(a.SeamCorrection, a.Background)
	if err != nil {
		return nil, err
	}

	frags := make([]*merge.Raster, 0, len(a.Paths))
	for _, p := range a.Paths {
		r, err := s.loadRaster(p)
		if err != nil {
			return nil, err
		}
		frags = append(frags, r)
	}

	search := s.searchOptions(nil)
	if reporter != nil && len(frags) > 1 {
		search.Reporter = &foldReporter{next: reporter, steps: len(frags) - 1}
	}

	out, poses, err := merge.MergeAll(ctx, frags, search, opts)
	if err != nil {
		return nil, err
	}
	res, err := s.finishCompose(a.OutputPath, out, opts, a.IncludeImage)
	if err != nil {
		return nil, err
	}
	res.Poses = poses
	return res, nil
}
