package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/apack-format/apack/format"
)

// zstdProvider wraps klauspost/compress/zstd, adapted from the teacher's
// ZstdCompressor. Unlike the teacher (which only ever used the package's
// default level), APACK exposes the standard zstd level range so callers
// can pick ratio vs. speed, tested at levels 1/3/22 (§8 property 1).
type zstdProvider struct {
	decoderPool sync.Pool
	encoders    sync.Map // level int -> *sync.Pool of *zstd.Encoder
}

func newZstdProvider() *zstdProvider {
	p := &zstdProvider{}
	p.decoderPool.New = func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("compress: failed to create zstd decoder: %v", err))
		}

		return dec
	}

	return p
}

var _ Provider = (*zstdProvider)(nil)

func (p *zstdProvider) ID() string                      { return "zstd" }
func (p *zstdProvider) NumericID() format.CompressionID { return format.CompressionZstd }
func (p *zstdProvider) DefaultLevel() int               { return 3 }
func (p *zstdProvider) MinLevel() int                   { return 1 }
func (p *zstdProvider) MaxLevel() int                   { return 22 }

func (p *zstdProvider) encoderPool(level int) *sync.Pool {
	if pool, ok := p.encoders.Load(level); ok {
		return pool.(*sync.Pool)
	}

	pool := &sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
				zstd.WithEncoderCRC(false), // APACK's own chunk checksum already covers this
			)
			if err != nil {
				panic(fmt.Sprintf("compress: failed to create zstd encoder at level %d: %v", level, err))
			}

			return enc
		},
	}
	actual, _ := p.encoders.LoadOrStore(level, pool)

	return actual.(*sync.Pool)
}

func (p *zstdProvider) CompressBlock(data []byte, level int) ([]byte, error) {
	if level < p.MinLevel() || level > p.MaxLevel() {
		level = p.DefaultLevel()
	}

	pool := p.encoderPool(level)
	enc := pool.Get().(*zstd.Encoder)
	defer pool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (p *zstdProvider) DecompressBlock(data []byte, expectedOriginalSize int) ([]byte, error) {
	if len(data) == 0 {
		if expectedOriginalSize != 0 {
			return nil, errMismatchedSize(expectedOriginalSize, 0)
		}

		return nil, nil
	}

	dec := p.decoderPool.Get().(*zstd.Decoder)
	defer p.decoderPool.Put(dec)

	out, err := dec.DecodeAll(data, make([]byte, 0, expectedOriginalSize))
	if err != nil {
		return nil, fmt.Errorf("compress: zstd decompression failed: %w", err)
	}
	if len(out) != expectedOriginalSize {
		return nil, errMismatchedSize(expectedOriginalSize, len(out))
	}

	return out, nil
}

func (p *zstdProvider) MaxCompressedSize(n int) int {
	// Zstd frame overhead is small and bounded; this matches the headroom
	// klauspost's own encoder reserves internally for incompressible input.
	return n + n/8 + 64
}
