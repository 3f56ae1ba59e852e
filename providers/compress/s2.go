package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/apack-format/apack/format"
)

// s2Provider wraps klauspost/compress/s2, adapted from the teacher's
// S2Compressor. S2 has no meaningful level knob in its block API, so every
// level maps to the same encode call, matching the teacher.
type s2Provider struct{}

func newS2Provider() *s2Provider { return &s2Provider{} }

var _ Provider = (*s2Provider)(nil)

func (p *s2Provider) ID() string                      { return "s2" }
func (p *s2Provider) NumericID() format.CompressionID { return format.CompressionS2 }
func (p *s2Provider) DefaultLevel() int               { return 0 }
func (p *s2Provider) MinLevel() int                   { return 0 }
func (p *s2Provider) MaxLevel() int                   { return 0 }

func (p *s2Provider) CompressBlock(data []byte, _ int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (p *s2Provider) DecompressBlock(data []byte, expectedOriginalSize int) ([]byte, error) {
	if len(data) == 0 {
		if expectedOriginalSize != 0 {
			return nil, errMismatchedSize(expectedOriginalSize, 0)
		}

		return nil, nil
	}

	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("compress: s2 decompression failed: %w", err)
	}
	if len(out) != expectedOriginalSize {
		return nil, errMismatchedSize(expectedOriginalSize, len(out))
	}

	return out, nil
}

func (p *s2Provider) MaxCompressedSize(n int) int {
	return s2.MaxEncodedLen(n)
}
