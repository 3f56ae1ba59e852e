package compress

import "github.com/apack-format/apack/format"

// storeProvider is the no-op compressor (format.CompressionNone), adapted
// from the teacher's NoOpCompressor. It's what the chunk pipeline falls
// back to for a chunk whenever the "real" compressor didn't shrink the data
// (§4.3 step 3).
type storeProvider struct{}

func (storeProvider) ID() string                      { return "store" }
func (storeProvider) NumericID() format.CompressionID { return format.CompressionNone }
func (storeProvider) DefaultLevel() int               { return 0 }
func (storeProvider) MinLevel() int                   { return 0 }
func (storeProvider) MaxLevel() int                   { return 0 }

func (storeProvider) CompressBlock(data []byte, _ int) ([]byte, error) {
	return data, nil
}

func (storeProvider) DecompressBlock(data []byte, expectedOriginalSize int) ([]byte, error) {
	if len(data) != expectedOriginalSize {
		return nil, errMismatchedSize(expectedOriginalSize, len(data))
	}

	return data, nil
}

func (storeProvider) MaxCompressedSize(n int) int { return n }
