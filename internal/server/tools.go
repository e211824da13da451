package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// DefaultMosaicName is used when a tool call does not name a mosaic.
const DefaultMosaicName = "default"

func nameProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Name the mosaic is cached under. Default \"default\"",
		"default":     DefaultMosaicName,
	}
}

func integerProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// optionProperties are accepted by every tool that configures a mosaic.
func optionProperties(props map[string]interface{}) map[string]interface{} {
	props["red_band"] = integerProperty("1-based band rendered as red. Default 1")
	props["green_band"] = integerProperty("1-based band rendered as green. Default 2")
	props["blue_band"] = integerProperty("1-based band rendered as blue. Default 3")
	props["scaling_width"] = integerProperty("Default render width in pixels. Default 1024")
	props["scaling_height"] = integerProperty("Default render height in pixels. Default 1024")
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Mosaic Construction
		{
			Name:        "mosaic_import",
			Description: "Open an already composed raster (GeoTIFF, COG or VRT) as a mosaic and cache it under a name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": optionProperties(map[string]interface{}{
					"name": nameProperty(),
					"path": stringProperty("Absolute path to the raster file"),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "mosaic_build",
			Description: "Compose every raster tile in a directory into dataset.vrt and a cloud-optimized dataset.tif, then cache the result as a mosaic.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": optionProperties(map[string]interface{}{
					"name":       nameProperty(),
					"directory":  stringProperty("Directory holding the raster tiles"),
					"output_dir": stringProperty("Directory for dataset.vrt and dataset.tif. Default: the tile directory"),
					"vrt_only": map[string]interface{}{
						"type":        "boolean",
						"description": "Keep the composition virtual and in memory; no files are written. Default false",
						"default":     false,
					},
				}),
				"required": []string{"directory"},
			},
		},
		{
			Name:        "mosaic_configure",
			Description: "Change the band mapping or default render size of a cached mosaic. Band statistics are recomputed when the bands change.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": optionProperties(map[string]interface{}{
					"name": nameProperty(),
				}),
			},
		},

		// Mosaic Information
		{
			Name:        "mosaic_dimensions",
			Description: "Get the width and height of a cached mosaic in raster pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": nameProperty(),
				},
			},
		},
		{
			Name:        "mosaic_stats",
			Description: "Get the minimum and maximum of the red, green and blue bands. Computed on first use and cached.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": nameProperty(),
				},
			},
		},

		// Rendering
		{
			Name:        "mosaic_render",
			Description: "Render a window of the mosaic to 8-bit RGBA (normalized, gamma corrected, no-data transparent) and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":       nameProperty(),
					"x":          integerProperty("Window left edge in raster pixels. Default 0"),
					"y":          integerProperty("Window top edge in raster pixels. Default 0"),
					"width":      integerProperty("Window width in raster pixels. Default: to the right edge"),
					"height":     integerProperty("Window height in raster pixels. Default: to the bottom edge"),
					"out_width":  integerProperty("Output width in pixels. Default: the mosaic's scaling width"),
					"out_height": integerProperty("Output height in pixels. Default: the mosaic's scaling height"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor applied to the PNG after rendering. Default 1.0",
						"default":     1.0,
					},
					"grid_spacing":     integerProperty("Draw a grid every N output pixels. 0 disables. Default 0"),
					"show_coordinates": map[string]interface{}{"type": "boolean", "description": "Label grid intersections with raster pixel coordinates", "default": false},
					"grid_color":       stringProperty("Grid color as #rrggbb. Default #ff0000"),
					"palette":          integerProperty("Return the N dominant colors of the render. Default 0"),
					"output_path":      stringProperty("Also write the PNG to this path"),
				},
			},
		},
		{
			Name:        "mosaic_sample_color",
			Description: "Get the rendered color of a single raster pixel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": nameProperty(),
					"x":    integerProperty("X coordinate in raster pixels (0-based)"),
					"y":    integerProperty("Y coordinate in raster pixels (0-based)"),
				},
				"required": []string{"x", "y"},
			},
		},

		// Coordinates
		{
			Name:        "mosaic_attach_elevation",
			Description: "Compose the elevation tiles in a directory into elevation.vrt and attach it to a cached mosaic.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":       nameProperty(),
					"directory":  stringProperty("Directory holding the elevation tiles"),
					"output_dir": stringProperty("Directory for elevation.vrt. Default: the tile directory"),
				},
				"required": []string{"directory"},
			},
		},
		{
			Name:        "mosaic_world_coordinates",
			Description: "Map a mosaic pixel to world coordinates and the elevation there, read from the attached elevation raster (0 when none is attached).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": nameProperty(),
					"x":    map[string]interface{}{"type": "number", "description": "X coordinate in raster pixels"},
					"y":    map[string]interface{}{"type": "number", "description": "Y coordinate in raster pixels"},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "geostore_world_coordinates",
			Description: "Map a pixel of the stored base raster to world coordinates and the stored elevation there.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "number", "description": "X coordinate in raster pixels"},
					"y": map[string]interface{}{"type": "number", "description": "Y coordinate in raster pixels"},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "geostore_ingest_elevation",
			Description: "Store geotransforms and elevation samples in the geo database. With a mosaic, its base transform is stored as \"dataset\"; the elevation raster comes from path or from the mosaic's attached elevation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mosaic": stringProperty("Cached mosaic whose transforms to store"),
					"path":   stringProperty("Elevation raster to ingest. Default: the mosaic's attached elevation"),
					"transactional": map[string]interface{}{
						"type":        "boolean",
						"description": "Insert every chunk inside one transaction. Default false",
						"default":     false,
					},
				},
			},
		},

		// Publishing
		{
			Name:        "artifact_publish",
			Description: "Upload a produced file (dataset.tif, dataset.vrt, elevation.vrt, rendered PNG) to the configured artifact store.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   stringProperty("Absolute path to the file"),
					"prefix": stringProperty("Key prefix in the store"),
				},
				"required": []string{"path"},
			},
		},
	}
}
