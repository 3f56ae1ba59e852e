package kdf

import (
	"golang.org/x/crypto/argon2"

	"github.com/apack-format/apack/format"
)

// argon2idProvider is Argon2id, the default KDF for new archives (§4.6).
// Defaults follow the OWASP-recommended minimums for interactive use.
type argon2idProvider struct{}

func newArgon2idProvider() *argon2idProvider { return &argon2idProvider{} }

var _ Provider = (*argon2idProvider)(nil)

func (p *argon2idProvider) ID() string              { return "argon2id" }
func (p *argon2idProvider) NumericID() format.KDFID { return format.KDFArgon2id }
func (p *argon2idProvider) MinSaltLen() int         { return 16 }

func (p *argon2idProvider) DefaultParams() Params {
	return Params{
		Iterations:  3,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
	}
}

func (p *argon2idProvider) Derive(password, salt []byte, keyLen int, params Params) ([]byte, error) {
	time := params.Iterations
	memory := params.MemoryKiB
	parallelism := params.Parallelism
	if time == 0 {
		time = p.DefaultParams().Iterations
	}
	if memory == 0 {
		memory = p.DefaultParams().MemoryKiB
	}
	if parallelism == 0 {
		parallelism = uint32(p.DefaultParams().Parallelism)
	}

	return argon2.IDKey(password, salt, time, memory, uint8(parallelism), uint32(keyLen)), nil
}
