package envi

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
)

// floatPrecision is the number of significant digits used when formatting
// floating point metadata, enough to round-trip a float64 in practice.
const floatPrecision = 16

// Metadata is the ordered set of header keys that are not part of the
// raster geometry. Keys are unique and keep their insertion order, which is
// also the order they are written back out.
//
// The zero value is an empty store ready to use.
type Metadata struct {
	entries []metaEntry
	index   map[string]int
}

type metaEntry struct {
	key   string
	value string
	// braced records that the header held the value inside { }, so it is
	// written back the same way.
	braced bool
}

// Len returns the number of entries.
func (m *Metadata) Len() int { return len(m.entries) }

// Key returns the i-th key in insertion order.
func (m *Metadata) Key(i int) string { return m.entries[i].key }

// Value returns the i-th value in insertion order.
func (m *Metadata) Value(i int) string { return m.entries[i].value }

// Has reports whether key is present.
func (m *Metadata) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Get returns the value stored under key, or "" when absent.
func (m *Metadata) Get(key string) string {
	return m.GetOr(key, "")
}

// GetOr returns the value stored under key, or missing when absent.
func (m *Metadata) GetOr(key, missing string) string {
	i, ok := m.index[key]
	if !ok {
		return missing
	}
	return m.entries[i].value
}

// All iterates over the entries in insertion order.
func (m *Metadata) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Add stores a single value. Numbers are formatted in decimal, floating
// point values with 16 significant digits. Adding an existing key fails
// with ErrDuplicateKey.
//
// Keys must be non-empty, unpadded, free of '=', braces and line breaks, and
// must not name a structural header field. Values must not contain braces or
// line breaks. Anything else fails with ErrInvalidArgument, since it would
// not read back as the same entry.
func (m *Metadata) Add(key string, value any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	v := formatValue(value)
	if strings.ContainsAny(v, "{}\n\r") {
		return fmt.Errorf("%w: value of %q contains a brace or line break", ErrInvalidArgument, key)
	}
	return m.add(key, v, false)
}

// AddMulti stores values as one "{ v1, v2, ... }" array value. Keys follow
// the rules of Add; no value may contain a brace.
func (m *Metadata) AddMulti(key string, values ...any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fv := formatValue(v)
		if strings.ContainsAny(fv, "{}") {
			return fmt.Errorf("%w: value %d of %q contains a brace", ErrInvalidArgument, i, key)
		}
		sb.WriteString(fv)
	}
	sb.WriteString(" }")
	return m.add(key, sb.String(), false)
}

// AddAll copies every entry of src, in order, into m.
func (m *Metadata) AddAll(src *Metadata) error {
	for _, e := range src.entries {
		if err := m.add(e.key, e.value, e.braced); err != nil {
			return err
		}
	}
	return nil
}

// structuralKeys are parsed into Header fields, never into Metadata.
var structuralKeys = map[string]bool{
	"description":   true,
	"samples":       true,
	"lines":         true,
	"bands":         true,
	"data type":     true,
	"interleave":    true,
	"header offset": true,
	"byte order":    true,
	"band names":    true,
}

func checkKey(key string) error {
	switch {
	case key == "" || key != trimSpace(key):
		return fmt.Errorf("%w: metadata key %q is empty or padded", ErrInvalidArgument, key)
	case strings.ContainsAny(key, "={}\n\r"):
		return fmt.Errorf("%w: metadata key %q contains '=', a brace or a line break", ErrInvalidArgument, key)
	case structuralKeys[key]:
		return fmt.Errorf("%w: %q is a structural header key", ErrInvalidArgument, key)
	}
	return nil
}

func (m *Metadata) add(key, value string, braced bool) error {
	if i, ok := m.index[key]; ok {
		return fmt.Errorf("%w: key %q already exists with value %q", ErrDuplicateKey, key, m.entries[i].value)
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, metaEntry{key: key, value: value, braced: braced})
	return nil
}

// Values splits the value of key at commas and trims each piece. A single
// enclosing pair of braces is dropped first. Commas are not escaped in any
// way, so a piece can never contain one.
func (m *Metadata) Values(key string) []string {
	v := strings.TrimSpace(m.Get(key))
	if strings.HasPrefix(v, "{") && strings.HasSuffix(v, "}") {
		v = v[1 : len(v)-1]
	}
	return splitList(v)
}

// splitList splits s at commas, trimming every piece. An empty trailing
// piece is dropped, so "a," yields one element and "" yields none.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = trimSpace(p)
	}
	return out
}

// Scan decodes the array value of key positionally into fields. Decoding is
// lenient: positions past the end of the list, and pieces that do not parse
// as the field's type, leave the destination untouched.
//
//	var zone int
//	var hemi string
//	md.Scan("map info", envi.Ignore, nil, nil, nil, nil, nil, nil, envi.Into(&zone), envi.Into(&hemi))
//
// A nil Field behaves like Ignore.
func (m *Metadata) Scan(key string, fields ...Field) {
	values := m.Values(key)
	for i, f := range fields {
		if i >= len(values) {
			return
		}
		if f != nil {
			f.decode(values[i])
		}
	}
}

// Scalar is the set of types a metadata value can be decoded into.
type Scalar interface {
	string | bool | Real
}

// Field is one positional destination for Scan.
type Field interface {
	decode(s string)
}

// Into returns a Field that parses its piece into dst.
func Into[T Scalar](dst *T) Field {
	return scalarField[T]{dst: dst}
}

// Ignore skips one position in Scan.
var Ignore Field = ignoreField{}

type scalarField[T Scalar] struct {
	dst *T
}

func (f scalarField[T]) decode(s string) {
	if v, ok := parseScalar[T](s); ok {
		*f.dst = v
	}
}

type ignoreField struct{}

func (ignoreField) decode(string) {}

// Lookup returns the value of key parsed as T, or missing when the key is
// absent or does not parse.
func Lookup[T Scalar](m *Metadata, key string, missing T) T {
	if !m.Has(key) {
		return missing
	}
	v, ok := parseScalar[T](trimSpace(m.Get(key)))
	if !ok {
		return missing
	}
	return v
}

func parseScalar[T Scalar](s string) (T, bool) {
	var out T
	ok := true
	switch p := any(&out).(type) {
	case *string:
		*p = s
	case *bool:
		var err error
		*p, err = strconv.ParseBool(s)
		ok = err == nil
	case *float32:
		f, err := strconv.ParseFloat(s, 32)
		*p, ok = float32(f), err == nil
	case *float64:
		f, err := strconv.ParseFloat(s, 64)
		*p, ok = f, err == nil
	case *int8:
		v, good := parseInt(s, 8)
		*p, ok = int8(v), good
	case *int16:
		v, good := parseInt(s, 16)
		*p, ok = int16(v), good
	case *int32:
		v, good := parseInt(s, 32)
		*p, ok = int32(v), good
	case *int64:
		*p, ok = parseInt(s, 64)
	case *int:
		v, good := parseInt(s, strconv.IntSize)
		*p, ok = int(v), good
	case *uint8:
		v, good := parseUint(s, 8)
		*p, ok = uint8(v), good
	case *uint16:
		v, good := parseUint(s, 16)
		*p, ok = uint16(v), good
	case *uint32:
		v, good := parseUint(s, 32)
		*p, ok = uint32(v), good
	case *uint64:
		*p, ok = parseUint(s, 64)
	case *uint:
		v, good := parseUint(s, strconv.IntSize)
		*p, ok = uint(v), good
	default:
		ok = false
	}
	return out, ok
}

// parseInt accepts integers and, like stream extraction, the integral part
// of a decimal number ("30.0" is 30).
func parseInt(s string, bits int) (int64, bool) {
	if v, err := strconv.ParseInt(s, 10, bits); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	limit := math.Ldexp(1, bits-1)
	if f < -limit || f >= limit {
		return 0, false
	}
	return int64(f), true
}

func parseUint(s string, bits int) (uint64, bool) {
	if v, err := strconv.ParseUint(s, 10, bits); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0, false
	}
	f = math.Trunc(f)
	if f >= math.Ldexp(1, bits) {
		return 0, false
	}
	return uint64(f), true
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', floatPrecision, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', floatPrecision, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// headerText renders the value as it appears after "key = " in a header.
func (e metaEntry) headerText() string {
	if e.braced && !strings.HasPrefix(e.value, "{") {
		return "{ " + e.value + " }"
	}
	return e.value
}
