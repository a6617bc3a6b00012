//go:build !linux && !darwin

package keyfile

import "os"

// preallocate sets the file length. Disk blocks may not be reserved.
func preallocate(file *os.File, size int64) error {
	return file.Truncate(size)
}
