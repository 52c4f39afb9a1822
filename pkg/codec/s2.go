package codec

import (
	"github.com/klauspost/compress/s2"
)

// S2 encodes payloads as S2 blocks.
type S2 struct{}

var _ Codec = S2{}

// NewS2 returns the S2 codec.
func NewS2() S2 {
	return S2{}
}

// Name returns "s2".
func (S2) Name() string { return NameS2 }

// Compress encodes src as one block.
func (S2) Compress(src []byte) []byte {
	return s2.Encode(nil, src)
}

// Decompress checks the declared length before decoding.
func (S2) Decompress(src []byte) ([]byte, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return nil, corrupt(NameS2, "%v", err)
	}
	if n > MaxDecodedSize {
		return nil, corrupt(NameS2, "declared length %d exceeds limit", n)
	}
	out, err := s2.Decode(nil, src)
	if err != nil {
		return nil, corrupt(NameS2, "%v", err)
	}
	return out, nil
}
