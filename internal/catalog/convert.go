package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samcharles93/envi/pkg/envi"
)

// ConvertOptions controls Convert.
type ConvertOptions struct {
	// DataType of the output. Zero keeps the input type.
	DataType envi.DataType
	// Description of the output. Empty keeps the input description.
	Description string
	// Options are passed to both the reader and the writer.
	Options []envi.Option
}

// Convert rewrites the raster at in as out, band by band, converting every
// sample to the output data type. Band names and metadata are copied.
func Convert(in, out string, opts ConvertOptions) (err error) {
	r, err := envi.Open(in, opts.Options...)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	if err := checkDistinct(in, out); err != nil {
		return err
	}

	h := r.Header()
	dt := opts.DataType
	if dt == 0 {
		dt = h.DataType
	}
	desc := opts.Description
	if desc == "" {
		desc = h.Description
	}

	w, err := envi.Create(out, desc, h.Lines, h.Samples, dt, opts.Options...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if err := w.AddMetaFrom(r.Metadata()); err != nil {
		return err
	}
	for i := range r.NumChannels() {
		if err := copyBand(r, w, dt, i); err != nil {
			return fmt.Errorf("band %d: %w", i, err)
		}
	}
	return nil
}

func copyBand(r *envi.Reader, w *envi.Writer, dt envi.DataType, i int) error {
	switch dt {
	case envi.Int8:
		return copyBandAs[int8](r, w, i)
	case envi.Int16:
		return copyBandAs[int16](r, w, i)
	case envi.Int32:
		return copyBandAs[int32](r, w, i)
	case envi.Float32:
		return copyBandAs[float32](r, w, i)
	case envi.Float64:
		return copyBandAs[float64](r, w, i)
	case envi.Complex64:
		return copyBandAs[complex64](r, w, i)
	case envi.Complex128:
		return copyBandAs[complex128](r, w, i)
	case envi.Uint16:
		return copyBandAs[uint16](r, w, i)
	case envi.Uint32:
		return copyBandAs[uint32](r, w, i)
	case envi.Int64:
		return copyBandAs[int64](r, w, i)
	case envi.Uint64:
		return copyBandAs[uint64](r, w, i)
	}
	return fmt.Errorf("%w: %d", envi.ErrUnknownDataType, uint8(dt))
}

func copyBandAs[T envi.Element](r *envi.Reader, w *envi.Writer, i int) error {
	data, err := envi.Channel[T](r, i)
	if err != nil {
		return err
	}
	_, err = envi.AddChannel(w, r.ChannelNames()[i], data)
	return err
}

// checkDistinct fails when writing out would truncate a file of in: the
// data files themselves, or a header both of them resolve to (scene.dat and
// scene.img share scene.hdr).
func checkDistinct(in, out string) error {
	outHdr, err := envi.HeaderName(out)
	if err != nil {
		return err
	}
	inFiles := []string{in}
	if hdr, err := headerFor(in); err == nil {
		inFiles = append(inFiles, hdr)
	}
	for _, src := range inFiles {
		for _, dst := range []string{out, outHdr} {
			if samePath(src, dst) {
				return fmt.Errorf("%w: writing %s would overwrite %s", envi.ErrInvalidArgument, out, src)
			}
		}
	}
	return nil
}

func samePath(a, b string) bool {
	if sa, err := os.Stat(a); err == nil {
		if sb, err := os.Stat(b); err == nil {
			return os.SameFile(sa, sb)
		}
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
