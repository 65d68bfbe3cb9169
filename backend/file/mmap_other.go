//go:build !linux && !darwin

package file

import (
	"errors"
	"os"
)

var errNoMmap = errors.New("memory mapping not supported on this platform")

func mapImage(_ *os.File, _ int64) ([]byte, error) {
	return nil, errNoMmap
}

func unmapImage(_ []byte) error {
	return nil
}
