package compress

import (
	"errors"
	"fmt"
)

func errMismatchedSize(expected, got int) error {
	return fmt.Errorf("compress: decoded length %d does not match expected original size %d", got, expected)
}

// errIncompressible signals that an algorithm couldn't shrink the input at
// all; the chunk pipeline treats this the same as "didn't shrink enough" and
// falls back to store (§4.3 step 3).
var errIncompressible = errors.New("compress: input is incompressible")
