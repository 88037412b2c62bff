//go:build !envi_nocomplex

package envi

// ComplexSupported reports whether the complex64/complex128 data types are
// accepted. Build with -tags envi_nocomplex to reject them.
const ComplexSupported = true
