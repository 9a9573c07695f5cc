package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const derivedKeyLength = 32

var keySalt = []byte("toplist session keys")

// DeriveKeys expands secret into independent cookie signing and encryption keys, so a
// single configured secret yields an authenticated and encrypted cookie.
func DeriveKeys(secret []byte) (hashKey, blockKey []byte, err error) {
	if len(secret) == 0 {
		return nil, nil, fmt.Errorf("empty session secret")
	}
	if hashKey, err = expand(secret, "hash"); err != nil {
		return nil, nil, err
	}
	if blockKey, err = expand(secret, "block"); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

func expand(secret []byte, info string) ([]byte, error) {
	h := hkdf.New(sha256.New, secret, keySalt, []byte(info))
	k := make([]byte, derivedKeyLength)
	if _, err := io.ReadFull(h, k); err != nil {
		return nil, fmt.Errorf("reading from HKDF: %w", err)
	}
	return k, nil
}
