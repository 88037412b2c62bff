package envi

import (
	"encoding/binary"
	"fmt"
)

// byteOrder is the only sample byte order supported on disk.
var byteOrder = binary.LittleEndian

// newSlice allocates n native samples of data type t.
func newSlice(t DataType, n int) any {
	switch t {
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	case Complex64:
		return make([]complex64, n)
	case Complex128:
		return make([]complex128, n)
	case Uint16:
		return make([]uint16, n)
	case Uint32:
		return make([]uint32, n)
	case Int64:
		return make([]int64, n)
	case Uint64:
		return make([]uint64, n)
	}
	return nil
}

// convertSlice assigns every element of src to the same position of dst
// using Go conversion rules: float to integer truncates toward zero, complex
// to real keeps the real part, real to complex has a zero imaginary part.
// dst must be at least as long as src.
func convertSlice(dst, src any) error {
	switch s := src.(type) {
	case []int8:
		return convertFromReal(dst, s)
	case []int16:
		return convertFromReal(dst, s)
	case []int32:
		return convertFromReal(dst, s)
	case []int64:
		return convertFromReal(dst, s)
	case []int:
		return convertFromReal(dst, s)
	case []uint8:
		return convertFromReal(dst, s)
	case []uint16:
		return convertFromReal(dst, s)
	case []uint32:
		return convertFromReal(dst, s)
	case []uint64:
		return convertFromReal(dst, s)
	case []uint:
		return convertFromReal(dst, s)
	case []float32:
		return convertFromReal(dst, s)
	case []float64:
		return convertFromReal(dst, s)
	case []complex64:
		return convertFromComplex(dst, s)
	case []complex128:
		return convertFromComplex(dst, s)
	}
	return fmt.Errorf("%w: unsupported sample type %T", ErrInvalidArgument, src)
}

func convertFromReal[S Real](dst any, src []S) error {
	switch d := dst.(type) {
	case []int8:
		castReal(d, src)
	case []int16:
		castReal(d, src)
	case []int32:
		castReal(d, src)
	case []int64:
		castReal(d, src)
	case []int:
		castReal(d, src)
	case []uint8:
		castReal(d, src)
	case []uint16:
		castReal(d, src)
	case []uint32:
		castReal(d, src)
	case []uint64:
		castReal(d, src)
	case []uint:
		castReal(d, src)
	case []float32:
		castReal(d, src)
	case []float64:
		castReal(d, src)
	case []complex64:
		realToComplex(d, src)
	case []complex128:
		realToComplex(d, src)
	default:
		return fmt.Errorf("%w: unsupported sample type %T", ErrInvalidArgument, dst)
	}
	return nil
}

func convertFromComplex[S Complex](dst any, src []S) error {
	switch d := dst.(type) {
	case []int8:
		complexToReal(d, src)
	case []int16:
		complexToReal(d, src)
	case []int32:
		complexToReal(d, src)
	case []int64:
		complexToReal(d, src)
	case []int:
		complexToReal(d, src)
	case []uint8:
		complexToReal(d, src)
	case []uint16:
		complexToReal(d, src)
	case []uint32:
		complexToReal(d, src)
	case []uint64:
		complexToReal(d, src)
	case []uint:
		complexToReal(d, src)
	case []float32:
		complexToReal(d, src)
	case []float64:
		complexToReal(d, src)
	case []complex64:
		castComplex(d, src)
	case []complex128:
		castComplex(d, src)
	default:
		return fmt.Errorf("%w: unsupported sample type %T", ErrInvalidArgument, dst)
	}
	return nil
}

func castReal[D, S Real](dst []D, src []S) {
	for i, v := range src {
		dst[i] = D(v)
	}
}

func realToComplex[D Complex, S Real](dst []D, src []S) {
	for i, v := range src {
		dst[i] = D(complex(float64(v), 0))
	}
}

func complexToReal[D Real, S Complex](dst []D, src []S) {
	for i, v := range src {
		dst[i] = D(real(complex128(v)))
	}
}

func castComplex[D, S Complex](dst []D, src []S) {
	for i, v := range src {
		dst[i] = D(v)
	}
}
