// Package server implements the MCP (Model Context Protocol) server for
// geo-referenced raster mosaics.
//
// Clients import or build mosaics from GeoTIFF tiles, render windows of them
// as PNG, sample colours, and resolve pixels to world coordinates and
// elevation, either from the rasters themselves or from the SQL geostore.
//
// # Protocol
//
// JSON-RPC 2.0, one request per line. Run reads stdin and writes stdout;
// Serve takes any reader and writer and returns when the input ends or the
// context is cancelled, whichever comes first.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// A line that is not valid JSON gets a -32700 "Parse error" response with a
// null id; unknown methods get -32601.
//
// # Available Tools
//
// Mosaics:
//   - mosaic_import: Open one pre-built raster
//   - mosaic_build: Directory of tiles to dataset.vrt and a COG, or an in-memory VRT with vrt_only
//   - mosaic_configure: Change band mapping or default render size
//   - mosaic_dimensions: Width and height in pixels
//   - mosaic_stats: Per-band min/max, computed once per band selection
//
// Rendering:
//   - mosaic_render: Window to base64 PNG, with optional grid, palette and file export
//   - mosaic_sample_color: Colour of one mosaic pixel
//
// Coordinates:
//   - mosaic_attach_elevation: Build elevation.vrt from a directory and attach it
//   - mosaic_world_coordinates: Pixel to world X/Y and height from the rasters
//   - geostore_ingest_elevation: Store transforms and elevation samples
//   - geostore_world_coordinates: Pixel to world X/Y and height from the database
//
// Publishing:
//   - artifact_publish: Copy a produced file to the filesystem or S3 store
//
// Every mosaic_* tool takes an optional "name" (default "default"). Open
// mosaics live in an imaging.MosaicCache until replaced or the server is
// closed.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors with code -32000, message
// "Tool execution failed" and the Go error string as data. A panic inside a
// tool, such as a singular elevation geotransform, is recovered and reported
// the same way. The geostore_* and artifact_publish tools fail with
// ErrStoreNotConfigured or ErrArtifactsNotConfigured when the matching
// option was not given.
//
// # Usage
//
//	srv := server.New(backend,
//	    server.WithStore(store),
//	    server.WithArtifacts(artifacts),
//	    server.WithLogger(log),
//	)
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Errorf("server stopped: %v", err)
//	}
package server
