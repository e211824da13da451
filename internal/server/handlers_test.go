package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Murmeldyret/DUNK/internal/artifact"
	"github.com/Murmeldyret/DUNK/internal/geo"
	"github.com/Murmeldyret/DUNK/internal/geostore"
	"github.com/Murmeldyret/DUNK/internal/imaging"
	"github.com/Murmeldyret/DUNK/internal/logger"
	"github.com/Murmeldyret/DUNK/internal/mosaic"
	"github.com/Murmeldyret/DUNK/internal/raster/memory"
)

var baseTransform = geo.Geotransform{100, 10, 0, 500, 0, -10}

// addTile creates an empty file so directory imports find it and registers
// r under the same path.
func addTile(t *testing.T, backend *memory.Backend, dir, name string, r *memory.Raster) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	backend.Register(path, r)
	return path
}

// rgbTile is a 2x2 three-band tile whose band b holds b*10 + y*2 + x.
func rgbTile() *memory.Raster {
	r := memory.NewRaster(2, 2, 3, baseTransform)
	for b := 1; b <= 3; b++ {
		b := b
		r.Fill(b, func(x, y int) float32 { return float32(b*10 + y*2 + x) })
	}
	return r
}

// demTile covers the same area as rgbTile with samples 1000 + y*2 + x.
func demTile() *memory.Raster {
	r := memory.NewRaster(2, 2, 1, baseTransform)
	r.Fill(1, func(x, y int) float32 { return float32(1000 + y*2 + x) })
	return r
}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) *MCPError {
	t.Helper()
	rawArgs, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}
	params, _ := json.Marshal(ToolCallParams{Name: name, Arguments: rawArgs})

	resp := s.handleToolsCall(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp.Error != nil {
		return resp.Error
	}

	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %+v", content)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
			t.Fatalf("failed to decode %s result: %v", name, err)
		}
	}
	return nil
}

func mustCall(t *testing.T, s *Server, name string, args interface{}, out interface{}) {
	t.Helper()
	if e := callTool(t, s, name, args, out); e != nil {
		t.Fatalf("%s failed: %s (%v)", name, e.Message, e.Data)
	}
}

// newTestServer returns a server over a memory backend with one tile in a
// temporary directory.
func newTestServer(t *testing.T, opts ...Option) (*Server, *memory.Backend, string) {
	t.Helper()
	backend := memory.NewBackend()
	dir := t.TempDir()
	addTile(t, backend, dir, "tile.tif", rgbTile())

	s := New(backend, append([]Option{WithLogger(&logger.NullLogger{})}, opts...)...)
	t.Cleanup(func() { _ = s.Close() })
	return s, backend, dir
}

func TestMosaicBuild(t *testing.T) {
	s, _, dir := newTestServer(t)
	out := t.TempDir()

	var res mosaicBuildResult
	mustCall(t, s, "mosaic_build", map[string]interface{}{
		"directory":      dir,
		"output_dir":     out,
		"scaling_width":  2,
		"scaling_height": 2,
	}, &res)

	if res.Name != DefaultMosaicName || res.Width != 2 || res.Height != 2 || res.Bands != 3 {
		t.Errorf("summary: got %+v", res.mosaicSummary)
	}
	if len(res.Tiles) != 1 {
		t.Errorf("Tiles: got %v", res.Tiles)
	}
	if res.COG != filepath.Join(out, mosaic.COGFileName) || res.Path != res.COG {
		t.Errorf("COG: got %s (path %s)", res.COG, res.Path)
	}
	for _, p := range []string{res.VRT, res.COG} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("artifact %s not written: %v", p, err)
		}
	}
	if res.Options.Scaling != (mosaic.Scaling{Width: 2, Height: 2}) {
		t.Errorf("Scaling: got %+v", res.Options.Scaling)
	}
}

func TestMosaicBuild_VRTOnly(t *testing.T) {
	s, _, dir := newTestServer(t)

	var res mosaicBuildResult
	mustCall(t, s, "mosaic_build", map[string]interface{}{"name": "virtual", "directory": dir, "vrt_only": true}, &res)
	if res.VRT != "" || res.COG != "" || res.Path != "" {
		t.Errorf("vrt_only must not write files: %+v", res)
	}
	if _, err := s.cache.Get("virtual"); err != nil {
		t.Errorf("mosaic not cached: %v", err)
	}
}

func TestMosaicBuild_Errors(t *testing.T) {
	s, _, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing directory", map[string]interface{}{}},
		{"unknown directory", map[string]interface{}{"directory": "/Nowhere"}},
		{"empty directory", map[string]interface{}{"directory": t.TempDir()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e := callTool(t, s, "mosaic_build", tt.args, nil); e == nil || e.Code != -32000 {
				t.Errorf("got %+v, want tool execution error", e)
			}
		})
	}
}

func TestMosaicImportAndConfigure(t *testing.T) {
	s, backend, dir := newTestServer(t)
	path := filepath.Join(dir, "tile.tif")
	backend.Register(path, func() *memory.Raster {
		r := memory.NewRaster(2, 2, 4, baseTransform)
		for b := 1; b <= 4; b++ {
			b := b
			r.Fill(b, func(x, y int) float32 { return float32(b*10 + y*2 + x) })
		}
		return r
	}())

	var sum mosaicSummary
	mustCall(t, s, "mosaic_import", map[string]interface{}{"name": "scene", "path": path, "red_band": 4}, &sum)
	if got := sum.Options.Bands(); got != [3]int{4, 2, 3} {
		t.Errorf("bands after import: got %v", got)
	}

	var stats mosaic.BandsMinMax
	mustCall(t, s, "mosaic_stats", map[string]interface{}{"name": "scene"}, &stats)
	if stats.Red.Min != 40 || stats.Red.Max != 43 {
		t.Errorf("red stats: got %+v", stats.Red)
	}

	mustCall(t, s, "mosaic_configure", map[string]interface{}{"name": "scene", "red_band": 1, "blue_band": 4}, &sum)
	if got := sum.Options.Bands(); got != [3]int{1, 2, 4} {
		t.Errorf("bands after configure: got %v", got)
	}
	mustCall(t, s, "mosaic_stats", map[string]interface{}{"name": "scene"}, &stats)
	if stats.Red.Min != 10 || stats.Blue.Min != 40 {
		t.Errorf("stats after configure: got %+v", stats)
	}

	var dims dimensionsResult
	mustCall(t, s, "mosaic_dimensions", map[string]interface{}{"name": "scene"}, &dims)
	if dims.Width != 2 || dims.Height != 2 {
		t.Errorf("dimensions: got %+v", dims)
	}

	if e := callTool(t, s, "mosaic_import", map[string]interface{}{}, nil); e == nil {
		t.Error("import without path should fail")
	}
}

func TestMosaicRender(t *testing.T) {
	s, _, dir := newTestServer(t)
	mustCall(t, s, "mosaic_build", map[string]interface{}{"directory": dir, "vrt_only": true}, nil)

	saved := filepath.Join(t.TempDir(), "render.png")
	var res mosaicRenderResult
	mustCall(t, s, "mosaic_render", map[string]interface{}{
		"out_width":    2,
		"out_height":   2,
		"scale":        4,
		"palette":      2,
		"grid_spacing": 4,
		"output_path":  saved,
	}, &res)

	if res.Width != 8 || res.Height != 8 || res.MimeType != "image/png" {
		t.Errorf("image: got %dx%d %s", res.Width, res.Height, res.MimeType)
	}
	if res.Window.Width != 2 || res.Window.Height != 2 {
		t.Errorf("default window: got %+v", res.Window)
	}
	if _, err := base64.StdEncoding.DecodeString(res.ImageBase64); err != nil {
		t.Errorf("base64: %v", err)
	}
	if len(res.Palette) != 2 {
		t.Errorf("palette: got %+v", res.Palette)
	}
	if res.SavedTo != saved {
		t.Errorf("SavedTo: got %s", res.SavedTo)
	}
	img, err := imaging.LoadImage(saved)
	if err != nil {
		t.Fatalf("saved render unreadable: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("saved width: got %d", img.Bounds().Dx())
	}

	if e := callTool(t, s, "mosaic_render", map[string]interface{}{"x": 1, "width": 2, "out_width": 1, "out_height": 1}, nil); e == nil {
		t.Error("window outside the raster should fail")
	}
}

func TestMosaicSampleColor(t *testing.T) {
	s, _, dir := newTestServer(t)
	mustCall(t, s, "mosaic_build", map[string]interface{}{"directory": dir, "vrt_only": true}, nil)

	tests := []struct {
		x, y    int
		wantHex string
	}{
		{0, 0, "#000000"},
		{1, 1, "#ffffff"},
	}
	for _, tt := range tests {
		var res sampleColorResult
		mustCall(t, s, "mosaic_sample_color", map[string]interface{}{"x": tt.x, "y": tt.y}, &res)
		if res.Color.Hex != tt.wantHex {
			t.Errorf("(%d,%d): got %s, want %s", tt.x, tt.y, res.Color.Hex, tt.wantHex)
		}
		if res.Color.Transparent {
			t.Errorf("(%d,%d): pixel with data reported transparent", tt.x, tt.y)
		}
	}
}

func TestMosaicWorldCoordinates(t *testing.T) {
	s, backend, dir := newTestServer(t)
	mustCall(t, s, "mosaic_build", map[string]interface{}{"directory": dir, "vrt_only": true}, nil)

	var c geo.Coordinate
	mustCall(t, s, "mosaic_world_coordinates", map[string]interface{}{"x": 1, "y": 1}, &c)
	if c != (geo.Coordinate{X: 110, Y: 490, Height: 0}) {
		t.Errorf("without elevation: got %+v", c)
	}

	demDir := t.TempDir()
	addTile(t, backend, demDir, "dem.tif", demTile())
	var sum mosaicSummary
	mustCall(t, s, "mosaic_attach_elevation", map[string]interface{}{"directory": demDir}, &sum)
	if !sum.Elevation {
		t.Error("summary should report the attached elevation")
	}
	if _, err := os.Stat(filepath.Join(demDir, mosaic.ElevationFileName)); err != nil {
		t.Errorf("elevation.vrt not written: %v", err)
	}

	mustCall(t, s, "mosaic_world_coordinates", map[string]interface{}{"x": 1, "y": 1}, &c)
	if c != (geo.Coordinate{X: 110, Y: 490, Height: 1003}) {
		t.Errorf("with elevation: got %+v", c)
	}

	if e := callTool(t, s, "mosaic_attach_elevation", map[string]interface{}{"directory": demDir}, nil); e == nil {
		t.Error("second attach should fail")
	}
}

func TestMosaicWorldCoordinates_SingularElevationRecovered(t *testing.T) {
	s, backend, dir := newTestServer(t)
	mustCall(t, s, "mosaic_build", map[string]interface{}{"directory": dir, "vrt_only": true}, nil)

	demDir := t.TempDir()
	addTile(t, backend, demDir, "dem.tif", demTile())
	mustCall(t, s, "mosaic_attach_elevation", map[string]interface{}{"directory": demDir}, nil)

	m, _ := s.cache.Get(DefaultMosaicName)
	elevation, _ := m.Elevation()
	elevation.(*memory.Dataset).Raster().Transform = geo.Geotransform{}

	e := callTool(t, s, "mosaic_world_coordinates", map[string]interface{}{"x": 0, "y": 0}, nil)
	if e == nil || !strings.Contains(e.Data.(string), "panicked") {
		t.Errorf("got %+v, want recovered panic", e)
	}
}

func TestGeostoreTools(t *testing.T) {
	ctx := context.Background()
	store, err := geostore.Open(ctx, geostore.DriverSQLite, filepath.Join(t.TempDir(), "geo.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	s, backend, dir := newTestServer(t, WithStore(store))
	mustCall(t, s, "mosaic_build", map[string]interface{}{"directory": dir, "vrt_only": true}, nil)

	demDir := t.TempDir()
	addTile(t, backend, demDir, "dem.tif", demTile())
	mustCall(t, s, "mosaic_attach_elevation", map[string]interface{}{"directory": demDir}, nil)

	var res ingestElevationResult
	mustCall(t, s, "geostore_ingest_elevation", map[string]interface{}{"mosaic": DefaultMosaicName, "transactional": true}, &res)
	if res.Rows != 4 || res.Statements != 1 || res.XSize != 2 || res.YSize != 2 {
		t.Errorf("ingest: got %+v", res)
	}
	if len(res.Transforms) != 2 {
		t.Errorf("Transforms: got %v", res.Transforms)
	}

	var c geo.Coordinate
	mustCall(t, s, "geostore_world_coordinates", map[string]interface{}{"x": 1, "y": 1}, &c)
	if c.X != 110 || c.Y != 490 || math.Abs(c.Height-1003) > 1e-9 {
		t.Errorf("stored lookup: got %+v", c)
	}

	if e := callTool(t, s, "geostore_ingest_elevation", map[string]interface{}{}, nil); e == nil {
		t.Error("ingest without an elevation raster should fail")
	}
}

func TestGeostoreIngest_FailureWritesNothing(t *testing.T) {
	for _, transactional := range []bool{false, true} {
		transactional := transactional
		t.Run(fmt.Sprintf("transactional=%v", transactional), func(t *testing.T) {
			ctx := context.Background()
			store, err := geostore.Open(ctx, geostore.DriverSQLite, filepath.Join(t.TempDir(), "geo.db"))
			if err != nil {
				t.Fatalf("failed to open store: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })

			s, backend, dir := newTestServer(t, WithStore(store))
			mustCall(t, s, "mosaic_build", map[string]interface{}{"directory": dir, "vrt_only": true}, nil)

			// "shifted" has a different origin and no elevation.
			shiftedDir := t.TempDir()
			shifted := rgbTile()
			shifted.Transform = geo.Geotransform{0, 1, 0, 0, 0, -1}
			addTile(t, backend, shiftedDir, "shifted.tif", shifted)
			mustCall(t, s, "mosaic_build", map[string]interface{}{"name": "shifted", "directory": shiftedDir, "vrt_only": true}, nil)

			args := map[string]interface{}{"mosaic": "shifted", "transactional": transactional}
			if e := callTool(t, s, "geostore_ingest_elevation", args, nil); e == nil {
				t.Fatal("ingest without elevation should fail")
			}
			var rows int
			if err := store.DB().QueryRow(`SELECT COUNT(*) FROM geotransform`).Scan(&rows); err != nil {
				t.Fatalf("failed to count geotransforms: %v", err)
			}
			if rows != 0 {
				t.Fatalf("geotransform rows after failed ingest: got %d, want 0", rows)
			}

			demDir := t.TempDir()
			addTile(t, backend, demDir, "dem.tif", demTile())
			mustCall(t, s, "mosaic_attach_elevation", map[string]interface{}{"directory": demDir}, nil)
			args = map[string]interface{}{"mosaic": DefaultMosaicName, "transactional": transactional}
			mustCall(t, s, "geostore_ingest_elevation", args, nil)

			var c geo.Coordinate
			mustCall(t, s, "geostore_world_coordinates", map[string]interface{}{"x": 1, "y": 1}, &c)
			if c.X != 110 || c.Y != 490 || math.Abs(c.Height-1003) > 1e-9 {
				t.Errorf("lookup after failed then successful ingest: got %+v", c)
			}
		})
	}
}

func TestGeostoreTools_NotConfigured(t *testing.T) {
	s, _, _ := newTestServer(t)
	for _, name := range []string{"geostore_world_coordinates", "geostore_ingest_elevation"} {
		_, err := s.executeTool(context.Background(), name, json.RawMessage(`{}`))
		if !errors.Is(err, ErrStoreNotConfigured) {
			t.Errorf("%s: got %v, want ErrStoreNotConfigured", name, err)
		}
	}
}

func TestArtifactPublish(t *testing.T) {
	root := t.TempDir()
	store, err := artifact.NewFilesystem(root)
	if err != nil {
		t.Fatalf("NewFilesystem failed: %v", err)
	}
	s, _, dir := newTestServer(t, WithArtifacts(store))

	var build mosaicBuildResult
	mustCall(t, s, "mosaic_build", map[string]interface{}{"directory": dir, "output_dir": t.TempDir()}, &build)

	var info artifact.Info
	mustCall(t, s, "artifact_publish", map[string]interface{}{"path": build.COG, "prefix": "scenes/a"}, &info)
	if info.Key != "scenes/a/"+mosaic.COGFileName {
		t.Errorf("Key: got %s", info.Key)
	}
	if _, err := os.Stat(filepath.Join(root, "scenes", "a", mosaic.COGFileName)); err != nil {
		t.Errorf("artifact not stored: %v", err)
	}

	if e := callTool(t, s, "artifact_publish", map[string]interface{}{}, nil); e == nil {
		t.Error("publish without path should fail")
	}
}

func TestArtifactPublish_NotConfigured(t *testing.T) {
	s, _, _ := newTestServer(t)
	_, err := s.executeTool(context.Background(), "artifact_publish", json.RawMessage(`{"path":"/x"}`))
	if !errors.Is(err, ErrArtifactsNotConfigured) {
		t.Errorf("got %v, want ErrArtifactsNotConfigured", err)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s, _, _ := newTestServer(t)
	resp := s.handleToolsCall(context.Background(), &MCPRequest{ID: 1, Params: json.RawMessage(`"nope"`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want -32602", resp.Error)
	}
}
