package keyfile

import (
	"encoding/binary"

	sorterrors "github.com/tamirms/radixsort/errors"
)

const (
	// magic is "RDXK" in little-endian.
	magic = uint32(0x4B584452)

	// version is the current format version
	version = uint16(0x0001)

	headerSize = 32
	footerSize = 16

	flagSorted = 1 << 0

	// chunkKeys is the number of keys covered by one folded chunk hash.
	// Fixed so the checksum does not depend on how many workers wrote the file.
	chunkKeys = 1 << 18
)

// Header describes the keys stored in a key file.
//
// Layout (32 bytes):
//
//	Offset  Size  Field     Type
//	0       4     Magic     0x4B584452 ("RDXK")
//	4       2     Version   0x0001
//	6       1     KeyWidth  uint8 (bytes per key: 1, 2, 4 or 8)
//	7       1     Flags     bit 0: keys are sorted
//	8       8     Count     uint64_le
//	16      8     MaxKey    uint64_le
//	24      8     Reserved  (zero)
//
// Keys follow as Count little-endian integers of KeyWidth bytes, then the
// footer.
type Header struct {
	KeyWidth int
	Count    uint64
	MaxKey   uint64
	Sorted   bool
}

func (h *Header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[4:6], version)
	buf[6] = uint8(h.KeyWidth)
	buf[7] = 0
	if h.Sorted {
		buf[7] |= flagSorted
	}
	binary.LittleEndian.PutUint64(buf[8:16], h.Count)
	binary.LittleEndian.PutUint64(buf[16:24], h.MaxKey)
	clear(buf[24:32])
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, sorterrors.ErrTruncatedFile
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != magic {
		return Header{}, sorterrors.ErrInvalidMagic
	}
	if binary.LittleEndian.Uint16(buf[4:6]) != version {
		return Header{}, sorterrors.ErrInvalidVersion
	}
	h := Header{
		KeyWidth: int(buf[6]),
		Sorted:   buf[7]&flagSorted != 0,
		Count:    binary.LittleEndian.Uint64(buf[8:16]),
		MaxKey:   binary.LittleEndian.Uint64(buf[16:24]),
	}
	if !validWidth(h.KeyWidth) {
		return Header{}, sorterrors.ErrKeyWidthMismatch
	}
	return h, nil
}

// footer is the 16-byte trailer.
//
//	Offset  Size  Field     Type
//	0       8     KeysHash  uint64_le (xxHash64 fold of per-chunk hashes)
//	8       4     Magic     0x4B584452
//	12      4     Reserved  (zero)
type footer struct {
	KeysHash uint64
}

func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.KeysHash)
	binary.LittleEndian.PutUint32(buf[8:12], magic)
	clear(buf[12:16])
}

func decodeFooter(buf []byte) (footer, error) {
	if len(buf) < footerSize {
		return footer{}, sorterrors.ErrTruncatedFile
	}
	if binary.LittleEndian.Uint32(buf[8:12]) != magic {
		return footer{}, sorterrors.ErrInvalidMagic
	}
	return footer{KeysHash: binary.LittleEndian.Uint64(buf[0:8])}, nil
}

func validWidth(w int) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}

// Unsigned is the key type set a key file can hold.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// widthOf returns the size of K in bytes.
func widthOf[K Unsigned]() int {
	var zero K
	top := uint64(^zero)
	switch {
	case top <= 0xFF:
		return 1
	case top <= 0xFFFF:
		return 2
	case top <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

func encodeKeys[K Unsigned](dst []byte, keys []K, width int) {
	switch width {
	case 1:
		for i, k := range keys {
			dst[i] = byte(k)
		}
	case 2:
		for i, k := range keys {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(k))
		}
	case 4:
		for i, k := range keys {
			binary.LittleEndian.PutUint32(dst[i*4:], uint32(k))
		}
	default:
		for i, k := range keys {
			binary.LittleEndian.PutUint64(dst[i*8:], uint64(k))
		}
	}
}

func decodeKeys[K Unsigned](dst []K, src []byte, width int) {
	switch width {
	case 1:
		for i := range dst {
			dst[i] = K(src[i])
		}
	case 2:
		for i := range dst {
			dst[i] = K(binary.LittleEndian.Uint16(src[i*2:]))
		}
	case 4:
		for i := range dst {
			dst[i] = K(binary.LittleEndian.Uint32(src[i*4:]))
		}
	default:
		for i := range dst {
			dst[i] = K(binary.LittleEndian.Uint64(src[i*8:]))
		}
	}
}
