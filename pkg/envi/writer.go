package envi

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Writer builds a raster one channel at a time. Channel data is streamed to
// the data file as it is added; the header is only written by Close, once
// every channel and metadata entry is known.
//
// After the first failed write the writer is poisoned: further adds fail
// and Close skips writing the header.
type Writer struct {
	hdr     Header
	data    *bufio.Writer
	hdrOut  io.Writer
	closers []io.Closer
	syncs   []*os.File
	log     DebugLogger

	err    error
	closed bool

	mu sync.Mutex
}

// Create truncates or creates the data file at path and its header file
// (named by HeaderName) and returns a Writer that owns both.
func Create(path, description string, lines, samples int, dt DataType, opts ...Option) (*Writer, error) {
	if err := validateGeometry(lines, samples, dt); err != nil {
		return nil, err
	}
	if err := checkDescription(description); err != nil {
		return nil, err
	}
	hdrPath, err := HeaderName(path)
	if err != nil {
		return nil, err
	}

	df, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	hf, err := os.Create(hdrPath)
	if err != nil {
		_ = df.Close()
		return nil, err
	}

	w := newWriter(df, hf, description, lines, samples, dt, applyOptions(opts))
	w.closers = []io.Closer{df, hf}
	w.syncs = []*os.File{df, hf}
	w.log.Debug("created raster", "path", path, "header", hdrPath,
		"lines", lines, "samples", samples, "data_type", dt.String())
	return w, nil
}

// NewWriter returns a Writer over caller-owned streams. Close writes the
// header to hdr but closes neither stream.
func NewWriter(data, hdr io.Writer, description string, lines, samples int, dt DataType, opts ...Option) (*Writer, error) {
	if data == nil || hdr == nil {
		return nil, fmt.Errorf("%w: nil stream", ErrInvalidArgument)
	}
	if err := validateGeometry(lines, samples, dt); err != nil {
		return nil, err
	}
	if err := checkDescription(description); err != nil {
		return nil, err
	}
	return newWriter(data, hdr, description, lines, samples, dt, applyOptions(opts)), nil
}

func newWriter(data, hdr io.Writer, description string, lines, samples int, dt DataType, o *options) *Writer {
	return &Writer{
		hdr: Header{
			Description: description,
			Lines:       lines,
			Samples:     samples,
			DataType:    dt,
		},
		data:   bufio.NewWriter(data),
		hdrOut: hdr,
		log:    o.log,
	}
}

func validateGeometry(lines, samples int, dt DataType) error {
	if !dt.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownDataType, uint8(dt))
	}
	if lines < 0 || samples < 0 {
		return fmt.Errorf("%w: negative extent %dx%d", ErrInvalidArgument, lines, samples)
	}
	if !extentFits(lines, samples, 1, dt.Size(), 0) {
		return fmt.Errorf("%w: extent %dx%d overflows", ErrInvalidArgument, lines, samples)
	}
	return nil
}

// checkDescription rejects a description the header's brace block cannot
// hold.
func checkDescription(s string) error {
	if strings.Contains(s, "}") {
		return fmt.Errorf("%w: description contains '}'", ErrInvalidArgument)
	}
	return nil
}

// checkChannelName rejects names that would not read back unchanged from
// the "band names" list.
func checkChannelName(name string) error {
	if name == "" || name != trimSpace(name) || strings.ContainsAny(name, ",}\n\r") {
		return fmt.Errorf("%w: channel name %q must be non-empty, unpadded and free of ',', '}' and line breaks", ErrInvalidArgument, name)
	}
	return nil
}

// Extent returns the raster dimensions.
func (w *Writer) Extent() (lines, samples int) { return w.hdr.Lines, w.hdr.Samples }

// DataType returns the on-disk sample type.
func (w *Writer) DataType() DataType { return w.hdr.DataType }

// NumChannels returns the number of channels added so far.
func (w *Writer) NumChannels() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.hdr.BandNames)
}

// AddMeta records a single metadata value. See Metadata.Add.
func (w *Writer) AddMeta(key string, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return err
	}
	return w.hdr.Metadata.Add(key, value)
}

// AddMetaMulti records an array metadata value. See Metadata.AddMulti.
func (w *Writer) AddMetaMulti(key string, values ...any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return err
	}
	return w.hdr.Metadata.AddMulti(key, values...)
}

// AddMetaFrom copies every entry of src into the writer's metadata.
func (w *Writer) AddMetaFrom(src *Metadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return err
	}
	return w.hdr.Metadata.AddAll(src)
}

func (w *Writer) usable() error {
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return fmt.Errorf("envi: writer failed earlier: %w", w.err)
	}
	return nil
}

// AddChannel appends a channel whose samples are stored row-major in data,
// converting them to the writer's data type. It returns the channel index.
func AddChannel[S Sample](w *Writer, name string, data []S) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return -1, err
	}
	if err := checkChannelName(name); err != nil {
		return -1, err
	}
	if n := w.hdr.Pixels(); len(data) != n {
		return -1, fmt.Errorf("%w: channel %q has %d samples, want %d", ErrInvalidArgument, name, len(data), n)
	}
	if err := writeSamples(w, data); err != nil {
		return -1, err
	}
	return w.appendChannel(name), nil
}

// AddChannelRect appends a channel cut out of a larger row-major buffer.
// Row r of the channel starts at data[(row+r)*stride+col].
func AddChannelRect[S Sample](w *Writer, name string, data []S, stride, row, col int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return -1, err
	}
	if err := checkChannelName(name); err != nil {
		return -1, err
	}
	lines, samples := w.hdr.Lines, w.hdr.Samples
	if row < 0 || col < 0 {
		return -1, fmt.Errorf("%w: negative origin (%d, %d)", ErrInvalidArgument, row, col)
	}
	if stride < samples+col {
		return -1, fmt.Errorf("%w: stride %d too small for %d samples at column %d", ErrInvalidArgument, stride, samples, col)
	}
	if lines > 0 {
		if need := (row+lines-1)*stride + col + samples; len(data) < need {
			return -1, fmt.Errorf("%w: buffer has %d samples, need %d", ErrInvalidArgument, len(data), need)
		}
	}
	for l := range lines {
		start := (row+l)*stride + col
		if err := writeSamples(w, data[start:start+samples]); err != nil {
			return -1, err
		}
	}
	return w.appendChannel(name), nil
}

// AddChannelFunc appends a channel whose sample at (row, col) is fn(row, col).
// fn is called in row-major order.
func AddChannelFunc[S Sample](w *Writer, name string, fn func(row, col int) S) (int, error) {
	if fn == nil {
		return -1, fmt.Errorf("%w: nil sample function", ErrInvalidArgument)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return -1, err
	}
	if err := checkChannelName(name); err != nil {
		return -1, err
	}
	buf := make([]S, w.hdr.Samples)
	for r := range w.hdr.Lines {
		for c := range buf {
			buf[c] = fn(r, c)
		}
		if err := writeSamples(w, buf); err != nil {
			return -1, err
		}
	}
	return w.appendChannel(name), nil
}

func (w *Writer) appendChannel(name string) int {
	w.hdr.BandNames = append(w.hdr.BandNames, name)
	idx := len(w.hdr.BandNames) - 1
	w.log.Debug("wrote channel", "index", idx, "name", name, "pixels", w.hdr.Pixels())
	return idx
}

// writeSamples encodes src in the writer's data type. A stream failure
// poisons the writer.
func writeSamples[S Sample](w *Writer, src []S) error {
	var payload any = src
	if kind, ok := sampleKind[S](); !ok || kind != w.hdr.DataType {
		native := newSlice(w.hdr.DataType, len(src))
		if err := convertSlice(native, src); err != nil {
			return err
		}
		payload = native
	}
	if err := binary.Write(w.data, byteOrder, payload); err != nil {
		w.err = err
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}

// Close flushes the channel data, writes the header and closes the files
// the writer owns. The header is not written when an earlier write failed;
// Close then returns nil since that failure was already reported.
// Closing an already closed writer is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if w.err == nil {
		err = w.finalize()
		w.err = err
	}
	for _, c := range w.closers {
		_ = c.Close()
	}
	w.closers = nil
	return err
}

func (w *Writer) finalize() error {
	if err := w.data.Flush(); err != nil {
		return fmt.Errorf("flush data: %w", err)
	}
	if _, err := w.hdr.WriteTo(w.hdrOut); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, f := range w.syncs {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("sync %s: %w", f.Name(), err)
		}
	}
	w.log.Debug("finalized raster", "bands", len(w.hdr.BandNames), "metadata", w.hdr.Metadata.Len())
	return nil
}

// Dump writes data as a single-channel raster whose data type matches T.
// The channel is named after the description.
func Dump[T Element](path, description string, lines, samples int, data []T, opts ...Option) error {
	w, err := Create(path, description, lines, samples, KindOf[T](), opts...)
	if err != nil {
		return err
	}
	if _, err := AddChannel(w, description, data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
