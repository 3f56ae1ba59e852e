package kdf

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	"github.com/apack-format/apack/format"
)

// pbkdf2Provider is PBKDF2-HMAC-SHA256, offered as a lower-memory
// alternative to Argon2id for callers that need FIPS-oriented primitives
// (§4.6). MemoryKiB/Parallelism are unused by PBKDF2 and stay zero.
type pbkdf2Provider struct{}

func newPBKDF2Provider() *pbkdf2Provider { return &pbkdf2Provider{} }

var _ Provider = (*pbkdf2Provider)(nil)

func (p *pbkdf2Provider) ID() string              { return "pbkdf2-hmac-sha256" }
func (p *pbkdf2Provider) NumericID() format.KDFID { return format.KDFPBKDF2HMACSHA256 }
func (p *pbkdf2Provider) MinSaltLen() int         { return 16 }

func (p *pbkdf2Provider) DefaultParams() Params {
	return Params{Iterations: 600_000}
}

func (p *pbkdf2Provider) Derive(password, salt []byte, keyLen int, params Params) ([]byte, error) {
	iterations := params.Iterations
	if iterations == 0 {
		iterations = p.DefaultParams().Iterations
	}

	return pbkdf2.Key(password, salt, int(iterations), keyLen, sha256.New), nil
}
