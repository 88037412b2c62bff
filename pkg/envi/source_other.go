//go:build !unix

package envi

import "os"

func openSource(path string, _ bool) (source, error) {
	return os.Open(path)
}
