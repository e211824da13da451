package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Murmeldyret/DUNK/internal/artifact"
	"github.com/Murmeldyret/DUNK/internal/geostore"
	"github.com/Murmeldyret/DUNK/internal/imaging"
	"github.com/Murmeldyret/DUNK/internal/metrics"
	"github.com/Murmeldyret/DUNK/internal/mosaic"
	"github.com/Murmeldyret/DUNK/internal/raster"
)

var (
	// ErrStoreNotConfigured is returned by geostore_* tools when the server
	// was built without WithStore.
	ErrStoreNotConfigured = errors.New("geo store not configured")

	// ErrArtifactsNotConfigured is returned by artifact_publish when the
	// server was built without WithArtifacts.
	ErrArtifactsNotConfigured = errors.New("artifact store not configured")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mosaic_build", "mosaic_render").
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
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	start := time.Now()
	s.log.Debugf("tools/call %s %s", params.Name, params.Arguments)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	metrics.ObserveTool(params.Name, start, err)
	if err != nil {
		s.log.Errorf("tool %s failed: %v", params.Name, err)
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
//  3. Looks up the cached mosaic as needed
//  4. Calls the appropriate mosaic/geostore/artifact function
//  5. Returns the result or error
//
// A panic inside a handler (an elevation raster with a singular geotransform)
// is returned as an error so the server keeps running.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()

	switch name {
	// Mosaic Construction
	case "mosaic_import":
		return s.handleMosaicImport(args)
	case "mosaic_build":
		return s.handleMosaicBuild(args)
	case "mosaic_configure":
		return s.handleMosaicConfigure(args)

	// Mosaic Information
	case "mosaic_dimensions":
		return s.handleMosaicDimensions(args)
	case "mosaic_stats":
		return s.handleMosaicStats(args)

	// Rendering
	case "mosaic_render":
		return s.handleMosaicRender(args)
	case "mosaic_sample_color":
		return s.handleMosaicSampleColor(args)

	// Coordinates
	case "mosaic_attach_elevation":
		return s.handleMosaicAttachElevation(args)
	case "mosaic_world_coordinates":
		return s.handleMosaicWorldCoordinates(ctx, args)
	case "geostore_world_coordinates":
		return s.handleGeostoreWorldCoordinates(ctx, args)
	case "geostore_ingest_elevation":
		return s.handleGeostoreIngestElevation(ctx, args)

	// Publishing
	case "artifact_publish":
		return s.handleArtifactPublish(ctx, args)

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

// === Shared Arguments ===

type nameArgs struct {
	Name string `json:"name"`
}

func (a nameArgs) mosaicName() string {
	if a.Name == "" {
		return DefaultMosaicName
	}
	return a.Name
}

type optionArgs struct {
	RedBand       int `json:"red_band"`
	GreenBand     int `json:"green_band"`
	BlueBand      int `json:"blue_band"`
	ScalingWidth  int `json:"scaling_width"`
	ScalingHeight int `json:"scaling_height"`
}

// apply overrides the fields of opts that were given; zero means unset.
func (a optionArgs) apply(opts mosaic.DatasetOptions) mosaic.DatasetOptions {
	b := opts.Builder()
	if a.RedBand != 0 || a.GreenBand != 0 || a.BlueBand != 0 {
		bands := opts.Bands()
		for i, v := range [3]int{a.RedBand, a.GreenBand, a.BlueBand} {
			if v != 0 {
				bands[i] = v
			}
		}
		b = b.SetBandIndexes(bands[0], bands[1], bands[2])
	}
	if a.ScalingWidth != 0 || a.ScalingHeight != 0 {
		w, h := opts.Scaling.Width, opts.Scaling.Height
		if a.ScalingWidth != 0 {
			w = a.ScalingWidth
		}
		if a.ScalingHeight != 0 {
			h = a.ScalingHeight
		}
		b = b.SetScaling(w, h)
	}
	return b.Build()
}

// mosaicSummary describes a cached mosaic.
type mosaicSummary struct {
	Name      string                `json:"name"`
	Path      string                `json:"path"`
	Width     int                   `json:"width"`
	Height    int                   `json:"height"`
	Bands     int                   `json:"bands"`
	Options   mosaic.DatasetOptions `json:"options"`
	Elevation bool                  `json:"elevation"`
}

func summarize(name string, m *mosaic.Mosaic) mosaicSummary {
	w, h := m.Dimensions()
	_, hasElevation := m.Elevation()
	return mosaicSummary{
		Name:      name,
		Path:      m.Dataset().Path(),
		Width:     w,
		Height:    h,
		Bands:     m.Dataset().BandCount(),
		Options:   m.Options(),
		Elevation: hasElevation,
	}
}

func (s *Server) mosaic(a nameArgs) (*mosaic.Mosaic, error) {
	return s.cache.Get(a.mosaicName())
}

// === Mosaic Construction Handlers ===

type mosaicImportArgs struct {
	nameArgs
	optionArgs
	Path string `json:"path"`
}

func (s *Server) handleMosaicImport(args json.RawMessage) (interface{}, error) {
	var a mosaicImportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	m, err := mosaic.ImportMosaicDataset(s.backend, a.Path)
	if err != nil {
		return nil, err
	}
	m.SetOptions(a.apply(m.Options()))
	if err := s.cache.Put(a.mosaicName(), m); err != nil {
		return nil, err
	}
	s.log.Infof("imported mosaic %q from %s", a.mosaicName(), a.Path)
	return summarize(a.mosaicName(), m), nil
}

type mosaicBuildArgs struct {
	nameArgs
	optionArgs
	Directory string `json:"directory"`
	OutputDir string `json:"output_dir"`
	VRTOnly   bool   `json:"vrt_only"`
}

type mosaicBuildResult struct {
	mosaicSummary
	Tiles []string `json:"tiles"`
	VRT   string   `json:"vrt,omitempty"`
	COG   string   `json:"cog,omitempty"`
}

func (s *Server) handleMosaicBuild(args json.RawMessage) (interface{}, error) {
	var a mosaicBuildArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Directory == "" {
		return nil, fmt.Errorf("directory is required")
	}
	if a.OutputDir == "" {
		a.OutputDir = a.Directory
	}

	raw, err := mosaic.ImportDatasets(s.backend, a.Directory)
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	var m *mosaic.Mosaic
	result := mosaicBuildResult{Tiles: raw.Paths()}
	if a.VRTOnly {
		m, err = raw.ToVRTDataset()
	} else {
		m, err = raw.ToMosaicDataset(a.OutputDir)
		result.VRT = filepath.Join(a.OutputDir, mosaic.VRTFileName)
		result.COG = filepath.Join(a.OutputDir, mosaic.COGFileName)
	}
	if err != nil {
		return nil, err
	}

	m.SetOptions(a.apply(m.Options()))
	if err := s.cache.Put(a.mosaicName(), m); err != nil {
		return nil, err
	}
	s.log.Infof("built mosaic %q from %d tiles in %s", a.mosaicName(), raw.Len(), a.Directory)
	result.mosaicSummary = summarize(a.mosaicName(), m)
	return result, nil
}

type mosaicConfigureArgs struct {
	nameArgs
	optionArgs
}

func (s *Server) handleMosaicConfigure(args json.RawMessage) (interface{}, error) {
	var a mosaicConfigureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.mosaic(a.nameArgs)
	if err != nil {
		return nil, err
	}
	m.SetOptions(a.apply(m.Options()))
	return summarize(a.mosaicName(), m), nil
}

// === Mosaic Information Handlers ===

type dimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleMosaicDimensions(args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.mosaic(a)
	if err != nil {
		return nil, err
	}
	w, h := m.Dimensions()
	return dimensionsResult{Width: w, Height: h}, nil
}

func (s *Server) handleMosaicStats(args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.mosaic(a)
	if err != nil {
		return nil, err
	}
	return m.DatasetsMinMax()
}

// === Rendering Handlers ===

type mosaicRenderArgs struct {
	nameArgs
	X               int     `json:"x"`
	Y               int     `json:"y"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	OutWidth        int     `json:"out_width"`
	OutHeight       int     `json:"out_height"`
	Scale           float64 `json:"scale"`
	GridSpacing     int     `json:"grid_spacing"`
	ShowCoordinates bool    `json:"show_coordinates"`
	GridColor       string  `json:"grid_color"`
	Palette         int     `json:"palette"`
	OutputPath      string  `json:"output_path"`
}

type mosaicRenderResult struct {
	imaging.EncodedImage
	Window  raster.Window            `json:"window"`
	Palette []imaging.ColorFrequency `json:"palette,omitempty"`
	SavedTo string                   `json:"saved_to,omitempty"`
}

func (s *Server) handleMosaicRender(args json.RawMessage) (interface{}, error) {
	var a mosaicRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.mosaic(a.nameArgs)
	if err != nil {
		return nil, err
	}

	rw, rh := m.Dimensions()
	win := raster.Window{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
	if win.Width == 0 {
		win.Width = rw - win.X
	}
	if win.Height == 0 {
		win.Height = rh - win.Y
	}
	if a.OutWidth == 0 {
		a.OutWidth = m.Options().Scaling.Width
	}
	if a.OutHeight == 0 {
		a.OutHeight = m.Options().Scaling.Height
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, err := m.RenderImage(win, a.OutWidth, a.OutHeight)
	if err != nil {
		return nil, err
	}

	result := mosaicRenderResult{Window: win}
	if a.Palette > 0 {
		result.Palette = imaging.DominantColors(img, a.Palette)
	}
	if a.GridSpacing > 0 {
		vp := imaging.NewViewport(win.X, win.Y, win.Width, win.Height, a.OutWidth, a.OutHeight)
		img, err = imaging.GridOverlay(img, vp, imaging.GridOptions{
			Spacing:         a.GridSpacing,
			ShowCoordinates: a.ShowCoordinates,
			ColorHex:        a.GridColor,
		})
		if err != nil {
			return nil, err
		}
	}

	encoded, err := imaging.EncodePNG(img, a.Scale)
	if err != nil {
		return nil, err
	}
	result.EncodedImage = *encoded

	if a.OutputPath != "" {
		if err := imaging.SavePNG(imaging.Scale(img, a.Scale), a.OutputPath); err != nil {
			return nil, err
		}
		result.SavedTo = a.OutputPath
	}
	return result, nil
}

type pixelArgs struct {
	nameArgs
	X int `json:"x"`
	Y int `json:"y"`
}

type sampleColorResult struct {
	X     int                 `json:"x"`
	Y     int                 `json:"y"`
	Color imaging.ColorResult `json:"color"`
}

func (s *Server) handleMosaicSampleColor(args json.RawMessage) (interface{}, error) {
	var a pixelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.mosaic(a.nameArgs)
	if err != nil {
		return nil, err
	}

	img, err := m.RenderImage(raster.Window{X: a.X, Y: a.Y, Width: 1, Height: 1}, 1, 1)
	if err != nil {
		return nil, err
	}
	c, err := imaging.SampleColor(img, 0, 0)
	if err != nil {
		return nil, err
	}
	return sampleColorResult{X: a.X, Y: a.Y, Color: *c}, nil
}

// === Coordinate Handlers ===

type attachElevationArgs struct {
	nameArgs
	Directory string `json:"directory"`
	OutputDir string `json:"output_dir"`
}

func (s *Server) handleMosaicAttachElevation(args json.RawMessage) (interface{}, error) {
	var a attachElevationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Directory == "" {
		return nil, fmt.Errorf("directory is required")
	}
	if a.OutputDir == "" {
		a.OutputDir = a.Directory
	}
	m, err := s.mosaic(a.nameArgs)
	if err != nil {
		return nil, err
	}
	if err := m.SetElevationDataset(a.Directory, a.OutputDir); err != nil {
		return nil, err
	}
	return summarize(a.mosaicName(), m), nil
}

type coordinateArgs struct {
	nameArgs
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handleMosaicWorldCoordinates(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a coordinateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.mosaic(a.nameArgs)
	if err != nil {
		return nil, err
	}
	return m.WorldCoordinates(ctx, a.X, a.Y)
}

func (s *Server) handleGeostoreWorldCoordinates(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	var a coordinateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.store.WorldCoordinates(ctx, a.X, a.Y)
}

type ingestElevationArgs struct {
	Mosaic        string `json:"mosaic"`
	Path          string `json:"path"`
	Transactional bool   `json:"transactional"`
}

type ingestElevationResult struct {
	geostore.IngestResult
	XSize      int      `json:"x_size"`
	YSize      int      `json:"y_size"`
	Transforms []string `json:"transforms"`
}

func (s *Server) handleGeostoreIngestElevation(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	var a ingestElevationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	// Everything is read before anything is written, so a failed call
	// leaves no transform rows behind.
	var (
		result     ingestElevationResult
		elevation  raster.Dataset
		transforms []geostore.NamedTransform
	)
	if a.Mosaic != "" {
		m, err := s.cache.Get(a.Mosaic)
		if err != nil {
			return nil, err
		}
		gt, err := m.Dataset().GeoTransform()
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, geostore.NamedTransform{Name: geostore.DatasetTransformName, Transform: gt})
		elevation, _ = m.Elevation()
	}

	if a.Path != "" {
		ds, err := s.backend.Open(a.Path)
		if err != nil {
			return nil, err
		}
		defer ds.Close()
		elevation = ds
	}
	if elevation == nil {
		return nil, fmt.Errorf("no elevation raster: give path or attach one to the mosaic")
	}

	gt, err := elevation.GeoTransform()
	if err != nil {
		return nil, err
	}
	transforms = append(transforms, geostore.NamedTransform{Name: geostore.ElevationTransformName, Transform: gt})

	grid, err := geostore.GridFromDataset(elevation)
	if err != nil {
		return nil, err
	}

	if a.Transactional {
		result.IngestResult, err = s.store.IngestInTransaction(ctx, grid, transforms...)
	} else {
		for _, nt := range transforms {
			if err := s.store.CreateGeotransform(ctx, nt.Name, nt.Transform); err != nil {
				return nil, err
			}
		}
		result.IngestResult, err = s.store.AddElevationData(ctx, grid)
	}
	if err != nil {
		return nil, err
	}
	for _, nt := range transforms {
		result.Transforms = append(result.Transforms, nt.Name)
	}
	result.XSize, result.YSize = grid.XSize, grid.YSize
	s.log.Infof("ingested %d elevation rows in %d statements", result.Rows, result.Statements)
	return result, nil
}

// === Publishing Handlers ===

type artifactPublishArgs struct {
	Path   string `json:"path"`
	Prefix string `json:"prefix"`
}

func (s *Server) handleArtifactPublish(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.artifacts == nil {
		return nil, ErrArtifactsNotConfigured
	}
	var a artifactPublishArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	info, err := artifact.Publish(ctx, s.artifacts, a.Path, a.Prefix)
	if err != nil {
		return nil, err
	}
	s.log.Infof("published %s to %s", a.Path, info.Location)
	return info, nil
}
