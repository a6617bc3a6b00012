//go:build linux

package keyfile

import "golang.org/x/sys/unix"

// MADV_POPULATE_WRITE, Linux 5.14+.
const madvPopulateWrite = 23

// populateForWrite prefaults a mapped region for writing. Older kernels
// reject the advice with EINVAL, which is ignored.
func populateForWrite(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, madvPopulateWrite)
}

// adviseSequential tells the kernel the file will be read front to back.
func adviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
