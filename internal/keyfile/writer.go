package keyfile

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	"golang.org/x/sync/errgroup"
)

// WriteOption configures Write.
type WriteOption func(*writeConfig)

type writeConfig struct {
	maxKey    uint64
	maxKeySet bool
	sorted    bool
	workers   int
}

// WithMaxKey records maxKey in the header. By default the largest key is
// recorded.
func WithMaxKey(maxKey uint64) WriteOption {
	return func(c *writeConfig) {
		c.maxKey = maxKey
		c.maxKeySet = true
	}
}

// WithSorted marks the keys as sorted.
func WithSorted(sorted bool) WriteOption {
	return func(c *writeConfig) {
		c.sorted = sorted
	}
}

// WithWorkers sets how many goroutines encode keys. Default is 1.
func WithWorkers(n int) WriteOption {
	return func(c *writeConfig) {
		c.workers = n
	}
}

// Write stores keys in a new key file at path, replacing any existing file.
//
// The file is pre-allocated at its final size and written through a shared
// memory mapping; key chunks are encoded in parallel straight into the
// mapping.
func Write[K Unsigned](ctx context.Context, path string, keys []K, opts ...WriteOption) error {
	cfg := &writeConfig{workers: 1}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.maxKeySet && len(keys) > 0 {
		cfg.maxKey = uint64(slices.Max(keys))
	}

	hdr := Header{
		KeyWidth: widthOf[K](),
		Count:    uint64(len(keys)),
		MaxKey:   cfg.maxKey,
		Sorted:   cfg.sorted,
	}
	w, err := newWriter(path, hdr)
	if err != nil {
		return err
	}

	if err := writeKeys(ctx, w, keys, cfg.workers); err != nil {
		return errors.Join(err, w.close(), os.Remove(path))
	}
	return w.finalize()
}

// writer handles one key file write using an mmap of the pre-allocated file.
type writer struct {
	file *os.File
	mmap mmap.MMap
	data []byte

	header     Header
	keysOffset int
	keysSize   int

	chunkHashes []uint64 // one per chunk, folded in order by finalize
}

func newWriter(path string, hdr Header) (*writer, error) {
	keysSize := int(hdr.Count) * hdr.KeyWidth
	size := headerSize + keysSize + footerSize

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create key file: %w", err)
	}

	// Pre-allocate disk blocks to prevent SIGBUS on disk full
	if err := preallocate(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("allocate disk space: %w", err)
		return nil, errors.Join(primaryErr, file.Close())
	}

	mm, err := mmap.MapRegion(file, size, mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap key file: %w", err)
		return nil, errors.Join(primaryErr, file.Close())
	}

	w := &writer{
		file:        file,
		mmap:        mm,
		data:        []byte(mm),
		header:      hdr,
		keysOffset:  headerSize,
		keysSize:    keysSize,
		chunkHashes: make([]uint64, (int(hdr.Count)+chunkKeys-1)/chunkKeys),
	}
	populateForWrite(w.data[w.keysOffset : w.keysOffset+keysSize])
	return w, nil
}

// writeKeys encodes keys chunk by chunk. Chunks cover disjoint byte ranges
// of the mapping, so workers write without coordination.
func writeKeys[K Unsigned](ctx context.Context, w *writer, keys []K, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	width := w.header.KeyWidth
	for c := range w.chunkHashes {
		lo := c * chunkKeys
		hi := min(lo+chunkKeys, len(keys))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			region := w.data[w.keysOffset+lo*width : w.keysOffset+hi*width]
			encodeKeys(region, keys[lo:hi], width)
			w.chunkHashes[c] = xxhash.Sum64(region)
			return nil
		})
	}
	return g.Wait()
}

// foldChunkHashes folds per-chunk hashes, in chunk order, into one checksum.
func foldChunkHashes(hashes []uint64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, h := range hashes {
		binary.LittleEndian.PutUint64(buf[:], h)
		if _, err := d.Write(buf[:]); err != nil {
			panic("hash.Hash.Write returned unexpected error: " + err.Error())
		}
	}
	return d.Sum64()
}

// finalize writes header and footer and closes the file.
// On error, delegates to close() for idempotent cleanup.
func (w *writer) finalize() error {
	w.header.encodeTo(w.data[:headerSize])
	ftr := footer{KeysHash: foldChunkHashes(w.chunkHashes)}
	ftr.encodeTo(w.data[w.keysOffset+w.keysSize:])

	if err := w.mmap.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, w.close())
	}

	unmapErr := w.mmap.Unmap()
	w.mmap = nil
	if unmapErr != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", unmapErr)
		return errors.Join(primaryErr, w.close())
	}

	closeErr := w.file.Close()
	w.file = nil
	return closeErr
}

// close releases the writer without finalizing. Idempotent.
func (w *writer) close() error {
	var unmapErr error
	if w.mmap != nil {
		unmapErr = w.mmap.Unmap()
		w.mmap = nil
	}
	var closeErr error
	if w.file != nil {
		closeErr = w.file.Close()
		w.file = nil
	}
	return errors.Join(unmapErr, closeErr)
}
