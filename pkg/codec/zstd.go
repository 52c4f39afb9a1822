package codec

import (
	"github.com/klauspost/compress/zstd"
)

// Zstd encodes each payload as a standalone zstd frame.
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ Codec = (*Zstd)(nil)

// NewZstd creates a zstd codec tuned for short, independent payloads.
func NewZstd() (*Zstd, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(MaxDecodedSize),
	)
	if err != nil {
		encoder.Close()
		return nil, err
	}

	return &Zstd{encoder: encoder, decoder: decoder}, nil
}

// Name returns "zstd".
func (*Zstd) Name() string { return NameZstd }

// Compress encodes src as a single frame.
func (z *Zstd) Compress(src []byte) []byte {
	return z.encoder.EncodeAll(src, make([]byte, 0, len(src)/2+16))
}

// Decompress decodes all frames in src.
func (z *Zstd) Decompress(src []byte) ([]byte, error) {
	out, err := z.decoder.DecodeAll(src, nil)
	if err != nil {
		return nil, corrupt(NameZstd, "%v", err)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// Close releases encoder and decoder resources.
func (z *Zstd) Close() error {
	z.encoder.Close()
	z.decoder.Close()
	return nil
}
