package envi

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is the ENVI "data type" code of one on-disk sample.
// Keep these stable: they are the values written to and read from headers.
type DataType uint8

const (
	Int8       DataType = 1
	Int16      DataType = 2
	Int32      DataType = 3
	Float32    DataType = 4
	Float64    DataType = 5
	Complex64  DataType = 6
	Complex128 DataType = 9
	Uint16     DataType = 12
	Uint32     DataType = 13
	Int64      DataType = 14
	Uint64     DataType = 15
)

// FirstDataType and LastDataType bound the dispatch order walked by Next.
const (
	FirstDataType = Int8
	LastDataType  = Uint64
)

// Element is the set of Go types with a one-to-one on-disk representation.
type Element interface {
	int8 | int16 | int32 | float32 | float64 | complex64 | complex128 |
		uint16 | uint32 | int64 | uint64
}

// Real is the set of non-complex Go numeric types a channel can be read into
// or written from.
type Real interface {
	int8 | int16 | int32 | int64 | int |
		uint8 | uint16 | uint32 | uint64 | uint |
		float32 | float64
}

// Complex is the set of complex Go types a channel can be read into or written from.
type Complex interface {
	complex64 | complex128
}

// Sample is any numeric type accepted by the channel loader and writer.
type Sample interface {
	Real | Complex
}

var dataTypeSizes = [...]int{
	Int8:       1,
	Int16:      2,
	Int32:      4,
	Float32:    4,
	Float64:    8,
	Complex64:  8,
	Complex128: 16,
	Uint16:     2,
	Uint32:     4,
	Int64:      8,
	Uint64:     8,
}

var dataTypeNames = [...]string{
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Int64:      "int64",
	Uint64:     "uint64",
}

// IsValidCode reports whether n is a declared data type code. The complex
// codes are only valid when complex support is compiled in.
func IsValidCode(n int) bool {
	if n < int(FirstDataType) || n > int(LastDataType) {
		return false
	}
	switch DataType(n) {
	case Complex64, Complex128:
		return ComplexSupported
	}
	return n <= int(Float64) || n >= int(Uint16)
}

// Valid reports whether t is a usable data type.
func (t DataType) Valid() bool {
	return IsValidCode(int(t))
}

// Next returns the data type following t in dispatch order, skipping the
// unassigned codes. Next on LastDataType returns LastDataType; callers must
// detect the lack of progress.
func (t DataType) Next() DataType {
	switch t {
	case Float64:
		if ComplexSupported {
			return Complex64
		}
		return Uint16
	case Complex64:
		return Complex128
	case Complex128:
		return Uint16
	case LastDataType:
		return LastDataType
	}
	return t + 1
}

// Size returns the on-disk width of one sample in bytes, or 0 for an
// invalid data type.
func (t DataType) Size() int {
	if int(t) >= len(dataTypeSizes) {
		return 0
	}
	return dataTypeSizes[t]
}

func (t DataType) String() string {
	if int(t) < len(dataTypeNames) && dataTypeNames[t] != "" {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("datatype(%d)", uint8(t))
}

// ParseDataType accepts a data type name ("float32", "uint16", ...) or its
// numeric code.
func ParseDataType(s string) (DataType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if !IsValidCode(n) {
			return 0, fmt.Errorf("%w: code %d", ErrUnknownDataType, n)
		}
		return DataType(n), nil
	}
	switch s {
	case "char", "i8":
		s = "int8"
	case "float", "f32":
		s = "float32"
	case "double", "f64":
		s = "float64"
	}
	for code, name := range dataTypeNames {
		if name != "" && name == s && IsValidCode(code) {
			return DataType(code), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDataType, s)
}

// KindOf returns the data type stored on disk for values of type T.
func KindOf[T Element]() DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case float32:
		return Float32
	case float64:
		return Float64
	case complex64:
		return Complex64
	case complex128:
		return Complex128
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case int64:
		return Int64
	default:
		return Uint64
	}
}

// sampleKind is KindOf for the wider Sample set; ok is false for Go types
// that have no on-disk representation (uint8, int, uint).
func sampleKind[T Sample]() (DataType, bool) {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8, true
	case int16:
		return Int16, true
	case int32:
		return Int32, true
	case float32:
		return Float32, true
	case float64:
		return Float64, true
	case complex64:
		return Complex64, true
	case complex128:
		return Complex128, true
	case uint16:
		return Uint16, true
	case uint32:
		return Uint32, true
	case int64:
		return Int64, true
	case uint64:
		return Uint64, true
	default:
		return 0, false
	}
}
