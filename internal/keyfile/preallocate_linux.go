//go:build linux

package keyfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes of disk for file and sets its length, so a
// full disk fails here instead of raising SIGBUS on a mapped write.
func preallocate(file *os.File, size int64) error {
	if err := unix.Fallocate(int(file.Fd()), 0, 0, size); err != nil {
		// Not every filesystem supports fallocate (NFS, tmpfs on old kernels).
		return unix.Ftruncate(int(file.Fd()), size)
	}
	return unix.Ftruncate(int(file.Fd()), size)
}
