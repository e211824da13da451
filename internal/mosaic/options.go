package mosaic

// Defaults applied by DatasetOptionsBuilder.Build for unset fields.
const (
	DefaultScalingWidth  = 1024
	DefaultScalingHeight = 1024
	DefaultRedBand       = 1
	DefaultGreenBand     = 2
	DefaultBlueBand      = 3
)

// Scaling is the default output size of a render, in pixels.
type Scaling struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DatasetOptions configures how a mosaic is rendered. Values are immutable;
// derive a changed copy through Builder.
type DatasetOptions struct {
	// Scaling is the output size used when a render request does not name
	// one.
	Scaling Scaling `json:"scaling"`

	// RedBandIndex, GreenBandIndex and BlueBandIndex are 1-based raster band
	// indices. They are not validated; an invalid index surfaces as a
	// backend error on the first read.
	RedBandIndex   int `json:"red_band_index"`
	GreenBandIndex int `json:"green_band_index"`
	BlueBandIndex  int `json:"blue_band_index"`
}

// DefaultDatasetOptions returns the options every new mosaic starts with.
func DefaultDatasetOptions() DatasetOptions {
	return NewDatasetOptionsBuilder().Build()
}

// Bands returns the red, green and blue band indices in that order.
func (o DatasetOptions) Bands() [3]int {
	return [3]int{o.RedBandIndex, o.GreenBandIndex, o.BlueBandIndex}
}

// Builder returns a builder with every field set from o.
func (o DatasetOptions) Builder() DatasetOptionsBuilder {
	return NewDatasetOptionsBuilder().
		SetScaling(o.Scaling.Width, o.Scaling.Height).
		SetBandIndexes(o.RedBandIndex, o.GreenBandIndex, o.BlueBandIndex)
}

// DatasetOptionsBuilder accumulates DatasetOptions fields. Setters take and
// return the builder by value, so an earlier builder is never changed by a
// later call.
type DatasetOptionsBuilder struct {
	scaling    Scaling
	hasScaling bool

	bands    [3]int
	hasBands bool
}

// NewDatasetOptionsBuilder returns a builder with every field unset.
func NewDatasetOptionsBuilder() DatasetOptionsBuilder {
	return DatasetOptionsBuilder{}
}

// SetScaling sets the default output size.
func (b DatasetOptionsBuilder) SetScaling(width, height int) DatasetOptionsBuilder {
	b.scaling = Scaling{Width: width, Height: height}
	b.hasScaling = true
	return b
}

// SetBandIndexes sets the red, green and blue band indices.
func (b DatasetOptionsBuilder) SetBandIndexes(red, green, blue int) DatasetOptionsBuilder {
	b.bands = [3]int{red, green, blue}
	b.hasBands = true
	return b
}

// Build returns the options, substituting defaults for unset fields.
func (b DatasetOptionsBuilder) Build() DatasetOptions {
	opts := DatasetOptions{
		Scaling:        Scaling{Width: DefaultScalingWidth, Height: DefaultScalingHeight},
		RedBandIndex:   DefaultRedBand,
		GreenBandIndex: DefaultGreenBand,
		BlueBandIndex:  DefaultBlueBand,
	}
	if b.hasScaling {
		opts.Scaling = b.scaling
	}
	if b.hasBands {
		opts.RedBandIndex, opts.GreenBandIndex, opts.BlueBandIndex = b.bands[0], b.bands[1], b.bands[2]
	}
	return opts
}
