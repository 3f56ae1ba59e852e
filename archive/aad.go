package archive

// chunkAAD builds the associated data fed to the AEAD cipher when a writer
// or reader has AuthenticateHeaders enabled: entry ID, chunk index, declared
// plaintext size, and the last-chunk flag, so reordering or truncating
// chunks surfaces as a CryptoError instead of only a ChecksumError (§9 open
// question). Returns nil when disabled, so the AAD defaults to empty.
func chunkAAD(enabled bool, entryID uint64, index uint32, originalSize uint32, last bool) []byte {
	if !enabled {
		return nil
	}

	aad := make([]byte, 0, 8+4+4+1)
	aad = appendU64(aad, entryID)
	aad = appendU32(aad, index)
	aad = appendU32(aad, originalSize)
	if last {
		aad = append(aad, 1)
	} else {
		aad = append(aad, 0)
	}

	return aad
}

func appendU64(b []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}

func appendU32(b []byte, v uint32) []byte {
	for i := 0; i < 4; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}
