// Package imaging turns rendered mosaic windows into something a client can
// look at: PNG bytes (base64 for the tool server, files for export), sampled
// pixel colors and a coordinate grid overlay. It also holds the MosaicCache
// the server keeps open datasets in.
//
// # Coordinate System
//
// Rendered images are 0-based with the origin at the top-left corner. A
// rendered window knows its origin and scale in mosaic pixels (see Viewport),
// so samples and grid labels can be reported in mosaic pixel coordinates
// rather than output pixel coordinates.
//
// # Transparency
//
// Rendered pixels whose three source samples were all no-data have alpha 0.
// SampleColor reports them as Transparent and DominantColors skips them.
//
// # Color Representation
//
// Colors are returned in multiple formats:
//   - Hex: "#rrggbb" (alpha excluded)
//   - RGBA: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// Hex and HSL come from github.com/lucasb-eyer/go-colorful.
//
// # Thread Safety
//
// MosaicCache is safe for concurrent use. The remaining functions are
// stateless.
package imaging
