package keyfile

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	sorterrors "github.com/tamirms/radixsort/errors"
)

// File is a read-only, memory-mapped key file.
//
// Keys and Verify may be called concurrently. Close must only be called
// after they have returned.
type File struct {
	mmap mmap.MMap
	data []byte

	header Header
	keys   []byte // key region view into data

	closed atomic.Bool
}

// Open maps the key file at path and validates its header and size.
// The checksum is only checked by Verify.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat key file: %w", err)
	}
	if stat.Size() < headerSize+footerSize {
		return nil, sorterrors.ErrTruncatedFile
	}

	adviseSequential(int(file.Fd()), 0, stat.Size())
	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap key file: %w", err)
	}

	f := &File{mmap: mm, data: []byte(mm)}
	if err := f.init(); err != nil {
		return nil, errors.Join(err, f.Close())
	}
	return f, nil
}

func (f *File) init() error {
	hdr, err := decodeHeader(f.data[:headerSize])
	if err != nil {
		return err
	}

	// Compare in key units first so a corrupt Count cannot overflow.
	avail := uint64(len(f.data) - headerSize - footerSize)
	if hdr.Count > avail/uint64(hdr.KeyWidth) || hdr.Count*uint64(hdr.KeyWidth) != avail {
		return fmt.Errorf("%w: header declares %d keys of %d bytes, file holds %d bytes of keys",
			sorterrors.ErrTruncatedFile, hdr.Count, hdr.KeyWidth, avail)
	}
	if _, err := decodeFooter(f.data[len(f.data)-footerSize:]); err != nil {
		return err
	}

	f.header = hdr
	f.keys = f.data[headerSize : len(f.data)-footerSize]
	return nil
}

// Header returns the file's header.
func (f *File) Header() Header { return f.header }

// Verify recomputes the key checksum and compares it with the footer.
func (f *File) Verify() error {
	ftr, err := decodeFooter(f.data[len(f.data)-footerSize:])
	if err != nil {
		return err
	}

	chunkBytes := chunkKeys * f.header.KeyWidth
	hashes := make([]uint64, 0, (len(f.keys)+chunkBytes-1)/chunkBytes)
	for lo := 0; lo < len(f.keys); lo += chunkBytes {
		hashes = append(hashes, xxhash.Sum64(f.keys[lo:min(lo+chunkBytes, len(f.keys))]))
	}
	if got := foldChunkHashes(hashes); got != ftr.KeysHash {
		return fmt.Errorf("%w: keys hash %016x, footer %016x", sorterrors.ErrChecksumFailed, got, ftr.KeysHash)
	}
	return nil
}

// Close unmaps the file. Safe to call more than once.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	if f.mmap == nil {
		return nil
	}
	err := f.mmap.Unmap()
	f.mmap = nil
	f.data = nil
	f.keys = nil
	return err
}

// Keys decodes the file's keys into a new slice. K must have the key width
// recorded in the header.
func Keys[K Unsigned](f *File) ([]K, error) {
	if w := widthOf[K](); w != f.header.KeyWidth {
		return nil, fmt.Errorf("%w: file has %d-byte keys, requested %d-byte keys",
			sorterrors.ErrKeyWidthMismatch, f.header.KeyWidth, w)
	}
	out := make([]K, f.header.Count)
	decodeKeys(out, f.keys, f.header.KeyWidth)
	return out, nil
}

// Read opens path, verifies the checksum and returns its keys and header.
func Read[K Unsigned](path string) ([]K, Header, error) {
	f, err := Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	if err := f.Verify(); err != nil {
		return nil, Header{}, errors.Join(err, f.Close())
	}
	keys, err := Keys[K](f)
	if err != nil {
		return nil, Header{}, errors.Join(err, f.Close())
	}
	return keys, f.Header(), f.Close()
}
