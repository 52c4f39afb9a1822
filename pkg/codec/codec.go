package codec

import (
	"errors"
	"fmt"
	"sort"
)

// Codec names accepted by New.
const (
	NameLZ4  = "lz4"
	NameZstd = "zstd"
	NameS2   = "s2"
	NameNone = "none"
)

// DefaultName is the codec used when none is configured.
const DefaultName = NameLZ4

// MaxDecodedSize bounds the output of a single Decompress call.
// Payloads are single log lines, so anything larger is treated as corrupt.
const MaxDecodedSize = 64 << 20

var (
	// ErrCorrupt is wrapped by every decompression error.
	ErrCorrupt = errors.New("codec: corrupt input")

	// ErrUnknownCodec is returned by New for an unregistered name.
	ErrUnknownCodec = errors.New("codec: unknown codec")
)

// Codec compresses payloads before they enter the store and restores them
// after retrieval.
type Codec interface {
	// Name returns the registry name of the codec.
	Name() string

	// Compress returns the compressed form of src. It never fails.
	Compress(src []byte) []byte

	// Decompress reverses Compress. It returns an error wrapping ErrCorrupt
	// when src was not produced by this codec or has been damaged.
	Decompress(src []byte) ([]byte, error)
}

var registry = map[string]func() (Codec, error){
	NameLZ4:  func() (Codec, error) { return NewLZ4(), nil },
	NameZstd: func() (Codec, error) { return NewZstd() },
	NameS2:   func() (Codec, error) { return NewS2(), nil },
	NameNone: func() (Codec, error) { return None{}, nil },
}

// New returns the codec registered under name.
// An empty name selects DefaultName.
func New(name string) (Codec, error) {
	if name == "" {
		name = DefaultName
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownCodec, name, Names())
	}
	return ctor()
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// corrupt wraps a decompression failure.
func corrupt(codec, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrCorrupt, codec, fmt.Sprintf(format, args...))
}
