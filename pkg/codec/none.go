package codec

// None passes payloads through unchanged.
type None struct{}

var _ Codec = None{}

// Name returns "none".
func (None) Name() string { return NameNone }

// Compress returns a copy of src.
func (None) Compress(src []byte) []byte {
	return append([]byte{}, src...)
}

// Decompress returns a copy of src.
func (None) Decompress(src []byte) ([]byte, error) {
	return append([]byte{}, src...), nil
}
