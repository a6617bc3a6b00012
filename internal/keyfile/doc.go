// Package keyfile reads and writes binary key files: a fixed header, the
// keys as little-endian integers of the header's width, and a footer with an
// xxHash64 checksum of the key region.
//
// Files are written through a shared mmap of a pre-allocated file and read
// through a read-only mmap.
package keyfile
