package envi

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// source is the random-access data stream of a read session.
type source interface {
	io.ReadSeeker
	io.Closer
}

// Reader is a read session over one raster: a parsed header plus a seekable
// data stream. Channels are loaded on demand.
//
// A Reader is not safe for concurrent use; open one per goroutine.
type Reader struct {
	hdr     *Header
	data    io.ReadSeeker
	closers []io.Closer
	log     DebugLogger
	closed  bool
}

// Open opens the data file at path and parses its header. The header is
// looked up with HeaderName, then at path+".hdr". The returned Reader owns
// the data file and must be closed.
func Open(path string, opts ...Option) (*Reader, error) {
	o := applyOptions(opts)

	hf, hdrPath, err := openHeader(path)
	if err != nil {
		return nil, fmt.Errorf("open header for %s: %w", path, err)
	}
	defer func() { _ = hf.Close() }()

	hdr, err := parseHeader(hf, o)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", hdrPath, err)
	}

	src, err := openSource(path, o.mmap)
	if err != nil {
		return nil, fmt.Errorf("open data %s: %w", path, err)
	}

	o.log.Debug("opened raster", "path", path, "header", hdrPath,
		"lines", hdr.Lines, "samples", hdr.Samples, "bands", hdr.Bands(), "data_type", hdr.DataType.String())

	return &Reader{
		hdr:     hdr,
		data:    src,
		closers: []io.Closer{src},
		log:     o.log,
	}, nil
}

// openHeader opens the header of the data file at path. When the derived
// name cannot be opened as a regular file, path+".hdr" is tried; if that
// fails too the error for the derived name is returned.
func openHeader(path string) (*os.File, string, error) {
	hdrPath, err := HeaderName(path)
	if err != nil {
		return nil, "", err
	}
	f, err := openRegular(hdrPath)
	if err == nil {
		return f, hdrPath, nil
	}
	if alt := fallbackHeaderName(path); alt != hdrPath {
		if af, aerr := openRegular(alt); aerr == nil {
			return af, alt, nil
		}
	}
	return nil, hdrPath, err
}

func openRegular(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrInvalidArgument, path)
	}
	return f, nil
}

// NewReader parses hdr and reads samples from data. The caller keeps
// ownership of both streams.
func NewReader(data io.ReadSeeker, hdr io.Reader, opts ...Option) (*Reader, error) {
	if data == nil || hdr == nil {
		return nil, fmt.Errorf("%w: nil stream", ErrInvalidArgument)
	}
	o := applyOptions(opts)
	h, err := parseHeader(hdr, o)
	if err != nil {
		return nil, err
	}
	return &Reader{hdr: h, data: data, log: o.log}, nil
}

// Header returns the parsed header. It must not be modified.
func (r *Reader) Header() *Header { return r.hdr }

// Extent returns the raster dimensions.
func (r *Reader) Extent() (lines, samples int) { return r.hdr.Lines, r.hdr.Samples }

// NumChannels returns the number of bands.
func (r *Reader) NumChannels() int { return r.hdr.Bands() }

// ChannelNames returns a copy of the band names in file order.
func (r *Reader) ChannelNames() []string {
	return append([]string(nil), r.hdr.BandNames...)
}

// ChannelIndex returns the index of the first band called name, or -1.
func (r *Reader) ChannelIndex(name string) int {
	for i, n := range r.hdr.BandNames {
		if n == name {
			return i
		}
	}
	return -1
}

// DataType returns the on-disk sample type.
func (r *Reader) DataType() DataType { return r.hdr.DataType }

// Metadata returns the free-form header entries.
func (r *Reader) Metadata() *Metadata { return &r.hdr.Metadata }

// Close releases the streams owned by the reader. It is safe to call more
// than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// ReadChannel loads band index into *dst, converting every sample to T.
// *dst is resized to lines*samples, reusing its backing array when large
// enough.
func ReadChannel[T Sample](r *Reader, index int, dst *[]T) (lines, samples int, err error) {
	if r.closed {
		return 0, 0, ErrClosed
	}
	if index < 0 || index >= r.NumChannels() {
		return 0, 0, fmt.Errorf("%w %d (have %d)", ErrInvalidChannel, index, r.NumChannels())
	}
	if err := r.checkBand(index); err != nil {
		return 0, 0, err
	}
	n := r.hdr.Pixels()
	if cap(*dst) >= n {
		*dst = (*dst)[:n]
	} else {
		*dst = make([]T, n)
	}
	if err := loadChannel(r, index, *dst); err != nil {
		return 0, 0, err
	}
	r.log.Debug("read channel", "index", index, "name", r.hdr.BandNames[index], "pixels", n)
	return r.hdr.Lines, r.hdr.Samples, nil
}

// checkBand fails when the data stream ends before band index does, so a
// header cannot make ReadChannel allocate more than the file holds.
func (r *Reader) checkBand(index int) error {
	size, err := r.data.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek data: %w", err)
	}
	end := r.hdr.ChannelOffset(index) + int64(r.hdr.Pixels())*int64(r.hdr.DataType.Size())
	if end > size {
		return fmt.Errorf("read channel %d: %w: band ends at byte %d, data has %d", index, io.ErrUnexpectedEOF, end, size)
	}
	return nil
}

// ReadChannelByName is ReadChannel for the first band called name.
func ReadChannelByName[T Sample](r *Reader, name string, dst *[]T) (lines, samples int, err error) {
	i := r.ChannelIndex(name)
	if i < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrChannelNotFound, name)
	}
	return ReadChannel(r, i, dst)
}

// Channel returns band index as a new slice of T.
func Channel[T Sample](r *Reader, index int) ([]T, error) {
	var out []T
	if _, _, err := ReadChannel(r, index, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChannelByName returns the first band called name as a new slice of T.
func ChannelByName[T Sample](r *Reader, name string) ([]T, error) {
	var out []T
	if _, _, err := ReadChannelByName(r, name, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadChannel finds the loader for the file's data type by walking the
// dispatch order, then reads the band either straight into dst or through a
// native buffer when T differs from the stored type.
func loadChannel[T Sample](r *Reader, index int, dst []T) error {
	disk := r.hdr.DataType
	kind := FirstDataType
	for kind != disk {
		next := kind.Next()
		if next == kind {
			return fmt.Errorf("%w: no loader for data type %d", ErrUnknownDataType, uint8(disk))
		}
		kind = next
	}

	if _, err := r.data.Seek(r.hdr.ChannelOffset(index), io.SeekStart); err != nil {
		return fmt.Errorf("seek channel %d: %w", index, err)
	}

	if want, ok := sampleKind[T](); ok && want == kind {
		if err := binary.Read(r.data, byteOrder, dst); err != nil {
			return fmt.Errorf("read channel %d: %w", index, err)
		}
		return nil
	}

	native := newSlice(kind, len(dst))
	if err := binary.Read(r.data, byteOrder, native); err != nil {
		return fmt.Errorf("read channel %d: %w", index, err)
	}
	return convertSlice(dst, native)
}

// Load reads the only band of a single-channel raster.
func Load[T Sample](path string, opts ...Option) (lines, samples int, data []T, err error) {
	r, err := Open(path, opts...)
	if err != nil {
		return 0, 0, nil, err
	}
	defer func() { _ = r.Close() }()

	if r.NumChannels() > 1 {
		return 0, 0, nil, fmt.Errorf("%w: %s has %d", ErrMultiChannel, path, r.NumChannels())
	}
	lines, samples, err = ReadChannel(r, 0, &data)
	if err != nil {
		return 0, 0, nil, err
	}
	return lines, samples, data, nil
}

// LoadChannel reads band index of the raster at path.
func LoadChannel[T Sample](path string, index int, opts ...Option) (lines, samples int, data []T, err error) {
	r, err := Open(path, opts...)
	if err != nil {
		return 0, 0, nil, err
	}
	defer func() { _ = r.Close() }()

	lines, samples, err = ReadChannel(r, index, &data)
	if err != nil {
		return 0, 0, nil, err
	}
	return lines, samples, data, nil
}

// LoadChannelByName reads the first band called name of the raster at path.
func LoadChannelByName[T Sample](path, name string, opts ...Option) (lines, samples int, data []T, err error) {
	r, err := Open(path, opts...)
	if err != nil {
		return 0, 0, nil, err
	}
	defer func() { _ = r.Close() }()

	lines, samples, err = ReadChannelByName(r, name, &data)
	if err != nil {
		return 0, 0, nil, err
	}
	return lines, samples, data, nil
}
