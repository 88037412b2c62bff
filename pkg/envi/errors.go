package envi

import "errors"

var (
	ErrInvalidArgument       = errors.New("envi: invalid argument")
	ErrDuplicateKey          = errors.New("envi: duplicate key")
	ErrMalformedHeader       = errors.New("envi: malformed header")
	ErrUnknownDataType       = errors.New("envi: unknown data type")
	ErrUnsupportedInterleave = errors.New("envi: unsupported interleave")
	ErrUnsupportedByteOrder  = errors.New("envi: unsupported byte order")
	ErrInconsistentBands     = errors.New("envi: inconsistent bands and band names")
	ErrChannelNotFound       = errors.New("envi: channel not found")
	ErrMultiChannel          = errors.New("envi: file has multiple channels")
	ErrClosed                = errors.New("envi: file is closed")
)

// ErrInvalidChannel is returned for a channel index outside [0, NumChannels).
// It matches ErrInvalidArgument under errors.Is.
var ErrInvalidChannel error = invalidChannelError{}

type invalidChannelError struct{}

func (invalidChannelError) Error() string { return "envi: invalid channel" }

func (invalidChannelError) Unwrap() error { return ErrInvalidArgument }
