package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/apack-format/apack/format"
)

// lz4Provider wraps pierrec/lz4/v4, adapted from the teacher's
// LZ4Compressor. The teacher always decompressed with an adaptive,
// guess-and-grow buffer because it didn't know the original size up front;
// APACK's chunk header always carries OriginalSize, so DecompressBlock
// allocates exactly once instead.
type lz4Provider struct {
	compressorPool sync.Pool
}

func newLZ4Provider() *lz4Provider {
	return &lz4Provider{
		compressorPool: sync.Pool{
			New: func() any { return &lz4.Compressor{} },
		},
	}
}

var _ Provider = (*lz4Provider)(nil)

func (p *lz4Provider) ID() string                      { return "lz4" }
func (p *lz4Provider) NumericID() format.CompressionID { return format.CompressionLZ4 }
func (p *lz4Provider) DefaultLevel() int               { return 0 }
func (p *lz4Provider) MinLevel() int                   { return 0 }
func (p *lz4Provider) MaxLevel() int                   { return 9 }

func (p *lz4Provider) CompressBlock(data []byte, level int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if level < p.MinLevel() || level > p.MaxLevel() {
		level = p.DefaultLevel()
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	c, _ := p.compressorPool.Get().(*lz4.Compressor)
	defer p.compressorPool.Put(c)

	var n int
	var err error
	if level == 0 {
		n, err = c.CompressBlock(data, dst)
	} else {
		hc := &lz4.CompressorHC{Level: lz4.CompressionLevel(1 << (8 + level))}
		n, err = hc.CompressBlock(data, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("compress: lz4 compression failed: %w", err)
	}
	if n == 0 {
		// incompressible: lz4 signals this by writing nothing, caller falls
		// back to store (§4.3 step 3)
		return nil, errIncompressible
	}

	return dst[:n], nil
}

func (p *lz4Provider) DecompressBlock(data []byte, expectedOriginalSize int) ([]byte, error) {
	if len(data) == 0 {
		if expectedOriginalSize != 0 {
			return nil, errMismatchedSize(expectedOriginalSize, 0)
		}

		return nil, nil
	}

	buf := make([]byte, expectedOriginalSize)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, errMismatchedSize(expectedOriginalSize, n)
		}

		return nil, fmt.Errorf("compress: lz4 decompression failed: %w", err)
	}
	if n != expectedOriginalSize {
		return nil, errMismatchedSize(expectedOriginalSize, n)
	}

	return buf[:n], nil
}

func (p *lz4Provider) MaxCompressedSize(n int) int {
	return lz4.CompressBlockBound(n)
}
