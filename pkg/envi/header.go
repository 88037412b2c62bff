package envi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

const (
	// Magic is the mandatory first line of a header.
	Magic = "ENVI"

	// InterleaveBSQ is the only supported interleave: each band is stored
	// as one contiguous plane.
	InterleaveBSQ = "bsq"

	// LittleEndian is the "byte order" value for little-endian samples,
	// the only byte order supported.
	LittleEndian = 0
)

// whitespace trimmed from keys and values. \r is included so headers
// written with CRLF line endings parse the same way.
const whitespace = " \n\t\v\r"

func trimSpace(s string) string {
	return strings.Trim(s, whitespace)
}

// Header is the structural part of an ENVI header plus the free-form
// metadata that follows it.
type Header struct {
	Description  string
	Lines        int
	Samples      int
	DataType     DataType
	BandNames    []string
	HeaderOffset int64
	Metadata     Metadata
}

// Pixels is the number of samples in one band.
func (h *Header) Pixels() int { return h.Lines * h.Samples }

// Bands is the number of bands.
func (h *Header) Bands() int { return len(h.BandNames) }

// ChannelOffset returns the byte offset of band i in the data file. Parsed
// headers guarantee it does not overflow for any band index.
func (h *Header) ChannelOffset(i int) int64 {
	return h.HeaderOffset + int64(i)*int64(h.Pixels())*int64(h.DataType.Size())
}

// ParseHeader reads a complete header from r.
func ParseHeader(r io.Reader, opts ...Option) (*Header, error) {
	return parseHeader(r, applyOptions(opts))
}

func parseHeader(r io.Reader, o *options) (*Header, error) {
	p := &headerParser{
		r:   bufio.NewReader(r),
		h:   &Header{},
		log: o.log,
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.h, nil
}

type headerParser struct {
	r   *bufio.Reader
	h   *Header
	log DebugLogger

	declaredBands int
	haveBands     bool
	haveNames     bool
	haveDataType  bool
}

func (p *headerParser) parse() error {
	first, err := p.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if first != Magic {
		return fmt.Errorf("%w: missing %q marker", ErrMalformedHeader, Magic)
	}

	for {
		key, val, braced, err := p.readKeyVal()
		if err != nil {
			return err
		}
		if key == "" {
			break
		}
		p.log.Debug("header entry", "key", key, "value", val)
		if err := p.apply(key, val, braced); err != nil {
			return err
		}
	}

	if !p.haveDataType {
		return fmt.Errorf("%w: missing 'data type'", ErrMalformedHeader)
	}
	if !p.haveNames && p.declaredBands > 0 {
		p.h.BandNames = make([]string, p.declaredBands)
		for i := range p.h.BandNames {
			p.h.BandNames[i] = "Band " + strconv.Itoa(i+1)
		}
	}
	h := p.h
	if !extentFits(h.Lines, h.Samples, h.Bands(), h.DataType.Size(), h.HeaderOffset) {
		return fmt.Errorf("%w: %d lines x %d samples x %d bands of %s overflows",
			ErrMalformedHeader, h.Lines, h.Samples, h.Bands(), h.DataType)
	}
	return nil
}

// extentFits reports whether lines*samples fits an int and the end of the
// last band, offset + bands*pixels*width, fits an int64. All inputs are
// non-negative.
func extentFits(lines, samples, bands, width int, offset int64) bool {
	hi, pixels := bits.Mul64(uint64(lines), uint64(samples))
	if hi != 0 || pixels > math.MaxInt {
		return false
	}
	hi, band := bits.Mul64(pixels, uint64(width))
	if hi != 0 {
		return false
	}
	hi, total := bits.Mul64(band, uint64(bands))
	return hi == 0 && total <= math.MaxInt64-uint64(offset)
}

// readLine returns the next line without its terminator. io.EOF is only
// returned when no more data is available.
func (p *headerParser) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || line == "" {
			return "", err
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// readKeyVal reads one "key = value" entry. A value starting with '{'
// continues over following lines until a '}' is seen. An empty key means
// the end of the header.
func (p *headerParser) readKeyVal() (key, val string, braced bool, err error) {
	var line string
	for {
		line, err = p.readLine()
		if errors.Is(err, io.EOF) {
			return "", "", false, nil
		}
		if err != nil {
			return "", "", false, err
		}
		if trimSpace(line) != "" {
			break
		}
	}

	keyval := line
	open := strings.IndexByte(keyval, '{')
	end := strings.IndexByte(keyval, '}')
	if open >= 0 && end < 0 {
		for end < 0 {
			next, err := p.readLine()
			if errors.Is(err, io.EOF) {
				return "", "", false, fmt.Errorf("%w: missing '}' in %q", ErrMalformedHeader, line)
			}
			if err != nil {
				return "", "", false, err
			}
			keyval += "\n" + next
			end = strings.IndexByte(keyval, '}')
		}
	}

	eq := strings.IndexByte(keyval, '=')
	if eq < 0 || (open >= 0 && eq > open) {
		return "", "", false, fmt.Errorf("%w: missing '=' in %q", ErrMalformedHeader, line)
	}
	key = trimSpace(keyval[:eq])

	if open >= 0 {
		if end < open {
			return "", "", false, fmt.Errorf("%w: '}' before '{' in %q", ErrMalformedHeader, line)
		}
		return key, trimSpace(keyval[open+1 : end]), true, nil
	}
	return key, trimSpace(keyval[eq+1:]), false, nil
}

func (p *headerParser) apply(key, val string, braced bool) error {
	h := p.h
	switch key {
	case "description":
		h.Description = val
	case "samples":
		n, err := parseCount(key, val)
		if err != nil {
			return err
		}
		h.Samples = n
	case "lines":
		n, err := parseCount(key, val)
		if err != nil {
			return err
		}
		h.Lines = n
	case "bands":
		n, err := parseCount(key, val)
		if err != nil {
			return err
		}
		if p.haveNames && n != len(h.BandNames) {
			return fmt.Errorf("%w: bands = %d but %d band names", ErrInconsistentBands, n, len(h.BandNames))
		}
		p.declaredBands = n
		p.haveBands = true
	case "data type":
		code, err := strconv.Atoi(val)
		if err != nil || !IsValidCode(code) {
			return fmt.Errorf("%w: %q", ErrUnknownDataType, val)
		}
		h.DataType = DataType(code)
		p.haveDataType = true
	case "interleave":
		if val != InterleaveBSQ {
			return fmt.Errorf("%w: %q", ErrUnsupportedInterleave, val)
		}
	case "header offset":
		off, err := strconv.ParseInt(val, 10, 64)
		if err != nil || off < 0 {
			return fmt.Errorf("%w: invalid header offset %q", ErrMalformedHeader, val)
		}
		h.HeaderOffset = off
	case "byte order":
		bo, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: invalid byte order %q", ErrMalformedHeader, val)
		}
		if bo != LittleEndian {
			return fmt.Errorf("%w: %d", ErrUnsupportedByteOrder, bo)
		}
	case "band names":
		if p.haveNames {
			return fmt.Errorf("%w: 'band names' seen twice", ErrDuplicateKey)
		}
		p.haveNames = true
		h.BandNames = parseBandNames(val)
		if p.haveBands && p.declaredBands != 0 && len(h.BandNames) != p.declaredBands {
			return fmt.Errorf("%w: %d band names but bands = %d", ErrInconsistentBands, len(h.BandNames), p.declaredBands)
		}
	default:
		return h.Metadata.add(key, val, braced)
	}
	return nil
}

func parseCount(key, val string) (int, error) {
	n, err := strconv.ParseUint(val, 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedHeader, key, val)
	}
	return int(n), nil
}

// parseBandNames splits a comma separated list of names. Every piece before
// a comma is kept, even when blank; the piece after the last comma only when
// it is not. A name broken over two lines is joined back without the line
// break.
func parseBandNames(val string) []string {
	parts := strings.Split(strings.ReplaceAll(val, "\n", ""), ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts[:len(parts)-1] {
		names = append(names, trimSpace(part))
	}
	if last := trimSpace(parts[len(parts)-1]); last != "" {
		names = append(names, last)
	}
	return names
}

// WriteTo serializes the header. Structural keys come first in a fixed
// order, followed by the metadata in insertion order.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	sb.WriteString(Magic + "\n")
	fmt.Fprintf(&sb, "description = { %s }\n", h.Description)
	fmt.Fprintf(&sb, "samples = %d\n", h.Samples)
	fmt.Fprintf(&sb, "lines = %d\n", h.Lines)
	fmt.Fprintf(&sb, "bands = %d\n", len(h.BandNames))
	fmt.Fprintf(&sb, "data type = %d\n", h.DataType)
	fmt.Fprintf(&sb, "interleave = %s\n", InterleaveBSQ)
	fmt.Fprintf(&sb, "header offset = %d\n", h.HeaderOffset)
	fmt.Fprintf(&sb, "byte order = %d\n", LittleEndian)

	sb.WriteString("band names = {")
	switch len(h.BandNames) {
	case 0:
		sb.WriteString(" ")
	case 1:
		sb.WriteString(" " + h.BandNames[0] + " ")
	default:
		sb.WriteString("\n")
		sb.WriteString(strings.Join(h.BandNames, ",\n"))
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	for _, e := range h.Metadata.entries {
		sb.WriteString(e.key + " = " + e.headerText() + "\n")
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
