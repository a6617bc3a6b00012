//go:build !linux

package keyfile

func populateForWrite(data []byte) {}

func adviseSequential(fd int, offset, length int64) {}
