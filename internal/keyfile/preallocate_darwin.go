//go:build darwin

package keyfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes of disk for file with F_PREALLOCATE and
// sets its length.
func preallocate(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	// F_PREALLOCATE only reserves space; the truncate below sets the size
	// whether or not the reservation succeeded.
	_ = unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst)
	return unix.Ftruncate(int(file.Fd()), size)
}
