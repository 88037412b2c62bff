// Package envi reads and writes ENVI raster files.
//
// An ENVI raster is a headerless binary data file holding one or more bands
// of lines*samples values, plus a plain-text ".hdr" file describing the
// geometry, sample type and free-form metadata. Only band sequential (bsq)
// interleave with little-endian samples is supported.
//
// Channels can be read into, and written from, any Go numeric type; samples
// are converted to and from the on-disk type with Go conversion rules.
package envi
