package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

const lz4PrefixLen = 4

// lz4MaxRatio is the largest expansion a single LZ4 block byte can encode.
const lz4MaxRatio = 255

// LZ4 stores the uncompressed length as a little-endian uint32 followed by
// one raw LZ4 block.
type LZ4 struct{}

var _ Codec = LZ4{}

// NewLZ4 returns the LZ4 codec.
func NewLZ4() LZ4 {
	return LZ4{}
}

// Name returns "lz4".
func (LZ4) Name() string { return NameLZ4 }

// Compress encodes src as a length-prefixed LZ4 block.
func (LZ4) Compress(src []byte) []byte {
	dst := make([]byte, lz4PrefixLen+lz4.CompressBlockBound(len(src)))
	binary.LittleEndian.PutUint32(dst, uint32(len(src)))

	// A destination of CompressBlockBound bytes always fits the block,
	// incompressible input included.
	n, err := lz4.CompressBlock(src, dst[lz4PrefixLen:], nil)
	if err != nil {
		panic(fmt.Sprintf("lz4: compress into bound-sized buffer: %v", err))
	}
	return dst[:lz4PrefixLen+n]
}

// Decompress validates the length prefix and decodes the block.
func (LZ4) Decompress(src []byte) ([]byte, error) {
	if len(src) < lz4PrefixLen {
		return nil, corrupt(NameLZ4, "missing length prefix (%d bytes)", len(src))
	}
	size := int(binary.LittleEndian.Uint32(src))
	body := src[lz4PrefixLen:]

	if size == 0 {
		if len(body) > 1 || (len(body) == 1 && body[0] != 0) {
			return nil, corrupt(NameLZ4, "trailing data after empty block")
		}
		return []byte{}, nil
	}
	if size > MaxDecodedSize || size > len(body)*lz4MaxRatio {
		return nil, corrupt(NameLZ4, "length prefix %d does not fit %d byte block", size, len(body))
	}

	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(body, dst)
	if err != nil {
		return nil, corrupt(NameLZ4, "%v", err)
	}
	if n != size {
		return nil, corrupt(NameLZ4, "decoded %d bytes, prefix says %d", n, size)
	}
	return dst, nil
}
