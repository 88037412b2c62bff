package envi

import (
	"fmt"
	"strings"
)

const headerExt = ".hdr"

// HeaderName derives the header path for a data file path:
//
//	"img"      -> "img.hdr"
//	"img.dat"  -> "img.hdr"
//	"a.b.c"    -> "a.b.hdr"
//	"img."     -> "img.hdr"
//	".hidden"  -> ".hidden.hdr"
//
// A dot within the first two characters of the file name is not treated as
// an extension separator. Directory components are never rewritten.
func HeaderName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: data filename cannot be empty", ErrInvalidArgument)
	}
	base := strings.LastIndexAny(name, `/\`) + 1
	dot := strings.LastIndexByte(name[base:], '.')
	switch {
	case dot >= 0 && base+dot == len(name)-1:
		return name + "hdr", nil
	case dot < 2:
		return name + headerExt, nil
	}
	return name[:base+dot] + headerExt, nil
}

// fallbackHeaderName is tried when HeaderName's file cannot be opened.
func fallbackHeaderName(name string) string {
	return name + headerExt
}
