package raster

import "sort"

// CreationProfile describes the output format and creation options of a
// translated raster.
type CreationProfile struct {
	// Driver is the GDAL driver short name, e.g. "COG".
	Driver string

	// Options are KEY=VALUE creation options.
	Options map[string]string
}

// COGProfile is the profile used for materialized mosaics: a tiled,
// ZSTD-compressed cloud-optimized GeoTIFF with horizontal differencing,
// BigTIFF offsets and all cores used for compression.
func COGProfile() CreationProfile {
	return CreationProfile{
		Driver: "COG",
		Options: map[string]string{
			"COMPRESS":    "ZSTD",
			"PREDICTOR":   "YES",
			"BIGTIFF":     "YES",
			"NUM_THREADS": "ALL_CPUS",
		},
	}
}

// OptionStrings returns the options as sorted KEY=VALUE strings.
func (p CreationProfile) OptionStrings() []string {
	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+p.Options[k])
	}
	return out
}
