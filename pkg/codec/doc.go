// Package codec provides the payload compression used between log producers
// and the batching store.
//
// Every [Codec] is a pure bytes-to-bytes transform whose output is
// self-describing: Decompress needs nothing but the bytes Compress produced.
// Implementations are safe for concurrent use.
//
//   - [LZ4]: 4-byte little-endian length prefix followed by a raw LZ4 block (default)
//   - [Zstd]: standard zstd frames
//   - [S2]: S2 blocks with a varint length header
//   - [None]: identity, for debugging
//
// Decompression failures always wrap [ErrCorrupt].
package codec
