// Package pixel converts floating-point band samples to display-ready 8-bit
// RGBA.
//
// Conversion of one sample has three steps:
//
//  1. Normalization: (s - min) / (max - min) using the band's statistics.
//  2. Gamma correction: v^(1/2.2). Values outside [0, 1] are rejected.
//  3. Quantization: v * 255, rounded to the nearest integer.
//
// F32ToU8 reports failures as *ConversionError (NotANumber for no-data
// samples, GammaOutOfRange for samples outside the band statistics).
// BandMerger is the one place where those failures are absorbed: a failed
// channel becomes 0, and a pixel whose three samples are all no-data becomes
// fully transparent.
package pixel
